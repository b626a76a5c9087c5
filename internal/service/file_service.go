package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/anggol23/Be-Resonansi/internal/auth"
	"github.com/anggol23/Be-Resonansi/internal/entity/db"
	"github.com/anggol23/Be-Resonansi/internal/model"
	"github.com/anggol23/Be-Resonansi/internal/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	MsgTitleRequired = "File title is required"
	MsgFileRequired  = "A file must be uploaded"
	MsgHostedURLOnly = "This storage only accepts hosted file URLs"
)

// 上传结果，用于 uploads_total 指标
const (
	UploadStored   = "stored"
	UploadRejected = "rejected"
	UploadFailed   = "failed"
)

// UploadRecorder counts upload outcomes.
type UploadRecorder interface {
	Upload(result string)
}

// UploadPolicy is checked before any storage backend is touched.
type UploadPolicy struct {
	MaxBytes        int64
	AttachmentTypes map[string]bool
	ImageTypes      map[string]bool
}

// DefaultUploadPolicy allows documents (pdf, doc, docx, octet-stream) and
// jpeg/png thumbnails up to maxBytes each.
func DefaultUploadPolicy(maxBytes int64) UploadPolicy {
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	return UploadPolicy{
		MaxBytes: maxBytes,
		AttachmentTypes: map[string]bool{
			"application/pdf":    true,
			"application/msword": true,
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
			"application/octet-stream": true,
		},
		ImageTypes: map[string]bool{
			"image/jpeg": true,
			"image/png":  true,
			"image/jpg":  true,
		},
	}
}

// UploadPart is one decoded multipart file. Open is only called once the
// part passed the policy.
type UploadPart struct {
	OriginalName string
	ContentType  string
	Size         int64
	Open         func() (io.ReadCloser, error)
}

// UploadRequest is a file upload. File or FileURL must be set; FileURL is
// only accepted by url-kind storage.
type UploadRequest struct {
	Title    string
	File     *UploadPart
	Image    *UploadPart
	FileURL  string
	ImageURL string
}

// FileService 管理下载区文件的上传、读取与删除。
type FileService struct {
	repo     model.Repository
	storage  storage.Storage
	policy   UploadPolicy
	recorder UploadRecorder
	now      func() time.Time
}

func NewFileService(repo model.Repository, store storage.Storage, policy UploadPolicy, recorder UploadRecorder) *FileService {
	return &FileService{repo: repo, storage: store, policy: policy, recorder: recorder, now: time.Now}
}

func (s *FileService) record(result string) {
	if s.recorder != nil {
		s.recorder.Upload(result)
	}
}

// Policy returns the active upload policy.
func (s *FileService) Policy() UploadPolicy {
	return s.policy
}

// Upload validates the request, writes the bytes and then persists the
// record. A failed insert removes the written bytes again.
func (s *FileService) Upload(ctx context.Context, uploader *auth.Identity, req UploadRequest) (*db.UploadedFile, error) {
	file, err := s.upload(ctx, uploader, req)
	switch {
	case err == nil:
		s.record(UploadStored)
	case IsKind(err, KindValidation):
		s.record(UploadRejected)
	default:
		s.record(UploadFailed)
	}
	return file, err
}

func (s *FileService) upload(ctx context.Context, uploader *auth.Identity, req UploadRequest) (*db.UploadedFile, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, Validation(MsgTitleRequired)
	}
	fileURL := strings.TrimSpace(req.FileURL)
	imageURL := strings.TrimSpace(req.ImageURL)
	if req.File == nil && fileURL == "" {
		return nil, Validation(MsgFileRequired)
	}
	if (req.File != nil || req.Image != nil) && !storage.AcceptsBytes(s.storage) {
		return nil, Validation(MsgHostedURLOnly)
	}

	// 先完成所有校验，再调用存储后端
	var fileMIME, originalName string
	if req.File != nil {
		fileMIME = normalizeMIME(req.File.ContentType)
		originalName = strings.TrimSpace(req.File.OriginalName)
		if err := s.checkPart(fileMIME, req.File.Size, s.policy.AttachmentTypes); err != nil {
			return nil, err
		}
	} else {
		if s.storage.Kind() != db.ContentKindURL {
			return nil, Validation(MsgFileRequired)
		}
		name, err := urlFileName(fileURL)
		if err != nil {
			return nil, Validation("Invalid file URL")
		}
		originalName = name
		fileMIME = normalizeMIME(mime.TypeByExtension(path.Ext(name)))
		if err := s.checkPart(fileMIME, 0, s.policy.AttachmentTypes); err != nil {
			return nil, err
		}
	}
	if originalName == "" {
		originalName = title
	}

	var imageMIME string
	if req.Image != nil {
		imageMIME = normalizeMIME(req.Image.ContentType)
		if err := s.checkPart(imageMIME, req.Image.Size, s.policy.ImageTypes); err != nil {
			return nil, err
		}
	} else if imageURL != "" && s.storage.Kind() != db.ContentKindURL {
		return nil, Validation("Thumbnail URLs are not accepted by this storage")
	}

	var fileData, imageData []byte
	var err error
	if req.File != nil {
		if fileData, err = s.readPart(req.File); err != nil {
			return nil, err
		}
	}
	if req.Image != nil {
		if imageData, err = s.readPart(req.Image); err != nil {
			return nil, err
		}
		detected := mimetype.Detect(imageData)
		if !detected.Is("image/jpeg") && !detected.Is("image/png") {
			return nil, ValidationCode(CodeFileTypeNotAllowed, "File type not allowed: "+detected.String())
		}
		imageMIME = detected.String()
	}

	now := s.now()
	storedName := storage.StoredName(originalName, now)
	contentRef, err := s.storage.Save(ctx, storage.Object{
		Category:    storage.CategoryAttachment,
		Name:        storedName,
		ContentType: fileMIME,
		Data:        fileData,
		URL:         fileURL,
	})
	if err != nil {
		return nil, s.storageError(ctx, err)
	}

	var imageRef db.ContentRef
	if req.Image != nil || imageURL != "" {
		imageName := storedName
		if req.Image != nil {
			imageName = storage.StoredName(req.Image.OriginalName, now)
		}
		imageRef, err = s.storage.Save(ctx, storage.Object{
			Category:    storage.CategoryThumbnail,
			Name:        imageName,
			ContentType: imageMIME,
			Data:        imageData,
			URL:         imageURL,
		})
		if err != nil {
			s.discard(contentRef)
			return nil, s.storageError(ctx, err)
		}
	}

	file := &db.UploadedFile{
		Title:         title,
		StoredName:    storedName,
		OriginalName:  originalName,
		Size:          int64(len(fileData)),
		MimeType:      fileMIME,
		Content:       contentRef,
		Image:         imageRef,
		ImageMimeType: imageMIME,
	}
	if uploader != nil && uploader.UserID != 0 {
		id := uploader.UserID
		file.UploadedBy = &id
	}
	if err := s.repo.CreateFile(ctx, file); err != nil {
		s.discard(contentRef)
		s.discard(imageRef)
		return nil, Internal(err)
	}

	logrus.WithFields(logrus.Fields{
		"file_id":     file.ID,
		"stored_name": file.StoredName,
		"size":        file.Size,
		"kind":        contentRef.Kind,
	}).Info("file uploaded")
	return file, nil
}

func (s *FileService) checkPart(contentType string, size int64, allowed map[string]bool) error {
	if !allowed[contentType] {
		return ValidationCode(CodeFileTypeNotAllowed, "File type not allowed: "+contentType).
			WithDetails(map[string]any{"mimeType": contentType})
	}
	if size > s.policy.MaxBytes {
		return s.tooLarge(size)
	}
	return nil
}

func (s *FileService) tooLarge(size int64) error {
	return ValidationCode(CodeFileTooLarge, fmt.Sprintf("File too large: %d bytes exceeds the limit of %d bytes", size, s.policy.MaxBytes)).
		WithDetails(map[string]any{"size": size, "limit": s.policy.MaxBytes})
}

// readPart reads at most MaxBytes+1 so a part that under-reported its size
// is still rejected.
func (s *FileService) readPart(part *UploadPart) ([]byte, error) {
	if part.Open == nil {
		return nil, Validation(MsgFileRequired)
	}
	rc, err := part.Open()
	if err != nil {
		return nil, Internal(err)
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, s.policy.MaxBytes+1))
	if err != nil {
		return nil, Internal(err)
	}
	if int64(len(data)) > s.policy.MaxBytes {
		return nil, s.tooLarge(int64(len(data)))
	}
	if len(data) == 0 {
		return nil, Validation(MsgFileRequired)
	}
	return data, nil
}

func (s *FileService) storageError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return Internal(fmt.Errorf("upload aborted: %w", err))
	}
	if errors.Is(err, storage.ErrNoContent) {
		return Validation(MsgFileRequired)
	}
	if errors.Is(err, storage.ErrBytesNotAccepted) {
		return Validation(MsgHostedURLOnly)
	}
	return Internal(err)
}

// discard is the compensating delete for a write whose record never landed.
// It runs on its own context because the request may already be cancelled.
func (s *FileService) discard(ref db.ContentRef) {
	if ref.IsZero() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.storage.Delete(ctx, ref); err != nil {
		logrus.WithError(err).WithField("kind", ref.Kind).Warn("failed to remove orphaned upload")
	}
}

func (s *FileService) List(ctx context.Context) ([]db.UploadedFile, error) {
	files, err := s.repo.ListFiles(ctx)
	if err != nil {
		return nil, Internal(err)
	}
	return files, nil
}

func (s *FileService) Get(ctx context.Context, id uint) (*db.UploadedFile, error) {
	file, err := s.repo.GetFile(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound(CodeFileNotFound, "File not found")
	}
	if err != nil {
		return nil, Internal(err)
	}
	return file, nil
}

// Open streams the referenced bytes through the configured backend. URL
// references are not opened; callers redirect to ref.URL instead.
func (s *FileService) Open(ctx context.Context, ref db.ContentRef) (io.ReadCloser, error) {
	if ref.IsZero() {
		return nil, NotFound(CodeFileNotFound, "File not found")
	}
	rc, err := s.storage.Open(ctx, ref)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, NotFound(CodeFileNotFound, "File content is missing")
	}
	if err != nil {
		return nil, Internal(err)
	}
	return rc, nil
}

// Delete removes the record first and then its bytes. Blob removal failures
// are logged; the record is already gone.
func (s *FileService) Delete(ctx context.Context, id uint) error {
	file, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteFile(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound(CodeFileNotFound, "File not found")
		}
		return Internal(err)
	}
	for _, ref := range []db.ContentRef{file.Content, file.Image} {
		if ref.IsZero() {
			continue
		}
		if err := s.storage.Delete(ctx, ref); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{"file_id": id, "kind": ref.Kind}).Warn("failed to delete stored bytes")
		}
	}
	logrus.WithField("file_id", id).Info("file deleted")
	return nil
}

func normalizeMIME(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return "application/octet-stream"
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(contentType)
	}
	return strings.ToLower(mediaType)
}

func urlFileName(raw string) (string, error) {
	checked, err := storage.ValidateURL(raw)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(checked)
	if err != nil {
		return "", err
	}
	name := path.Base(u.Path)
	if name == "/" || name == "." {
		name = ""
	}
	return name, nil
}
