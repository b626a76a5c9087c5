package api

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/anggol23/Be-Resonansi/internal/auth"
	"github.com/anggol23/Be-Resonansi/internal/entity/converter"
	"github.com/anggol23/Be-Resonansi/internal/entity/db"
	"github.com/anggol23/Be-Resonansi/internal/entity/dto"
	"github.com/anggol23/Be-Resonansi/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// multipart 表单字段
const (
	formFieldTitle    = "filename"
	formFieldTitleAlt = "title"
	formFieldFile     = "file"
	formFieldImage    = "image"
	formFieldFileURL  = "fileUrl"
	formFieldImageURL = "imageUrl"

	formOverheadBytes = 1 << 20
)

// UploadFile 上传下载区文件。请求体上限为两倍单文件上限加表单开销。
func (h *HTTPHandler) UploadFile(c *gin.Context, identity auth.Identity) {
	policy := h.files.Policy()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 2*policy.MaxBytes+formOverheadBytes)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ErrorResponseWithDetails(c, http.StatusBadRequest, ErrCodeFileTooLarge,
				fmt.Sprintf("File too large: request exceeds the limit of %d bytes", tooLarge.Limit),
				gin.H{"limit": policy.MaxBytes})
			return
		}
		BadRequest(c, ErrCodeInvalidUpload, "invalid multipart form")
		return
	}
	defer func() {
		if err := form.RemoveAll(); err != nil {
			logrus.WithError(err).Warn("failed to remove multipart temp files")
		}
	}()

	req := service.UploadRequest{
		Title:    firstValue(form, formFieldTitle, formFieldTitleAlt),
		File:     uploadPart(form, formFieldFile),
		Image:    uploadPart(form, formFieldImage),
		FileURL:  firstValue(form, formFieldFileURL),
		ImageURL: firstValue(form, formFieldImageURL),
	}

	// 使用请求上下文，客户端断开时中止写入
	file, err := h.files.Upload(c.Request.Context(), &identity, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, converter.FileToSummary(file))
}

func firstValue(form *multipart.Form, keys ...string) string {
	for _, key := range keys {
		if values := form.Value[key]; len(values) > 0 {
			if v := strings.TrimSpace(values[0]); v != "" {
				return v
			}
		}
	}
	return ""
}

func uploadPart(form *multipart.Form, key string) *service.UploadPart {
	headers := form.File[key]
	if len(headers) == 0 {
		return nil
	}
	fh := headers[0]
	return &service.UploadPart{
		OriginalName: fh.Filename,
		ContentType:  fh.Header.Get("Content-Type"),
		Size:         fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func (h *HTTPHandler) ListFiles(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	files, err := h.files.List(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}
	summaries := make([]dto.FileSummary, len(files))
	for i := range files {
		summaries[i] = converter.FileToSummary(&files[i])
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "files": summaries})
}

// DownloadFile streams the attachment, or redirects when it is hosted
// elsewhere.
func (h *HTTPHandler) DownloadFile(c *gin.Context) {
	file, ok := h.loadFile(c)
	if !ok {
		return
	}
	h.serveContent(c, file.Content, file.MimeType, file.OriginalName, file.Size, "attachment")
}

// FileImage serves the thumbnail inline.
func (h *HTTPHandler) FileImage(c *gin.Context) {
	file, ok := h.loadFile(c)
	if !ok {
		return
	}
	if file.Image.IsZero() {
		NotFound(c, service.CodeFileNotFound, "Thumbnail not found")
		return
	}
	h.serveContent(c, file.Image, file.ImageMimeType, "", -1, "inline")
}

func (h *HTTPHandler) DeleteFile(c *gin.Context, identity auth.Identity) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.files.Delete(ctx, id); err != nil {
		h.respondError(c, err)
		return
	}
	logrus.WithFields(logrus.Fields{"file_id": id, "by": identity.UserID}).Info("unduhan deleted")
	c.JSON(http.StatusOK, gin.H{"message": "File has been deleted"})
}

func (h *HTTPHandler) loadFile(c *gin.Context) (*db.UploadedFile, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return nil, false
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	file, err := h.files.Get(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return nil, false
	}
	return file, true
}

func (h *HTTPHandler) serveContent(c *gin.Context, ref db.ContentRef, contentType, name string, size int64, disposition string) {
	if ref.Kind == db.ContentKindURL {
		c.Redirect(http.StatusFound, ref.URL)
		return
	}
	rc, err := h.files.Open(c.Request.Context(), ref)
	if err != nil {
		h.respondError(c, err)
		return
	}
	defer rc.Close()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	headers := map[string]string{}
	if name != "" {
		if value := mime.FormatMediaType(disposition, map[string]string{"filename": name}); value != "" {
			disposition = value
		}
	}
	headers["Content-Disposition"] = disposition
	if size <= 0 {
		size = -1
	}
	c.DataFromReader(http.StatusOK, size, contentType, rc, headers)
}
