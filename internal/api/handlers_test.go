package api

import (
	"bytes"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/anggol23/Be-Resonansi/internal/config"
	"github.com/anggol23/Be-Resonansi/internal/entity/dto"
	"github.com/anggol23/Be-Resonansi/internal/service"
)

var pdfBody = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func storedFiles(t *testing.T, dir string) int {
	t.Helper()
	count := 0
	err := filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			count++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk storage dir: %v", err)
	}
	return count
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil)
	w := srv.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

func TestSignupFlow(t *testing.T) {
	srv := newTestServer(t, nil)

	w := srv.doJSON(http.MethodPost, "/api/auth/signup", dto.SignupRequest{
		Username: "john1", Email: "john@example.com", Password: "secret1",
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Error("response must not contain the password")
	}
	var res dto.AuthResponse
	decodeJSON(t, w, &res)
	if res.Token == "" || res.User.Username != "john1" || res.User.Role != "user" {
		t.Errorf("unexpected auth response %+v", res)
	}
	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == accessTokenCookie {
			cookie = c
		}
	}
	if cookie == nil || !cookie.HttpOnly || cookie.Value != res.Token {
		t.Fatalf("expected http-only access_token cookie, got %+v", cookie)
	}

	tests := []struct {
		name    string
		body    dto.SignupRequest
		code    string
		message string
	}{
		{name: "charset", body: dto.SignupRequest{Username: "john_doe", Email: "jd@example.com", Password: "secret1"}, code: ErrCodeInvalidRequest, message: service.MsgUsernameCharset},
		{name: "duplicate email", body: dto.SignupRequest{Username: "john2", Email: "john@example.com", Password: "secret1"}, code: service.CodeEmailExists, message: service.MsgEmailInUse},
		{name: "duplicate username", body: dto.SignupRequest{Username: "john1", Email: "other@example.com", Password: "secret1"}, code: service.CodeUsernameExists, message: service.MsgUsernameInUse},
		{name: "short password", body: dto.SignupRequest{Username: "john3", Email: "j3@example.com", Password: "123"}, code: ErrCodeInvalidRequest, message: service.MsgPasswordLength},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := srv.doJSON(http.MethodPost, "/api/auth/signup", tt.body, "")
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			response := decodeAPIError(t, w)
			if response.Code != tt.code || response.Message != tt.message {
				t.Errorf("unexpected error %+v", response)
			}
		})
	}

	// 自行申请 admin 角色不会生效
	w = srv.doJSON(http.MethodPost, "/api/auth/signup", dto.SignupRequest{
		Username: "mallory", Email: "mallory@example.com", Password: "secret1", Role: "admin",
	}, "")
	decodeJSON(t, w, &res)
	if res.User.Role != "user" {
		t.Errorf("expected self-requested admin to be ignored, got %s", res.User.Role)
	}
}

func TestSigninFlow(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.signup("john1")

	w := srv.doJSON(http.MethodPost, "/api/auth/signin", dto.SigninRequest{Email: "john1@example.com", Password: "wrong1"}, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "access_token") {
		t.Error("failed signin must not issue a token")
	}
	if got := decodeAPIError(t, w).Message; got != service.MsgInvalidCredential {
		t.Errorf("unexpected message %q", got)
	}

	w = srv.doJSON(http.MethodPost, "/api/auth/signin", dto.SigninRequest{Email: "JOHN1@example.com", Password: "secret1"}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var res dto.AuthResponse
	decodeJSON(t, w, &res)

	w = srv.doJSON(http.MethodGet, "/api/auth/me", nil, res.Token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from me, got %d", w.Code)
	}
}

func TestGoogleSignInWithoutProvider(t *testing.T) {
	srv := newTestServer(t, nil)

	w := srv.doJSON(http.MethodPost, "/api/auth/google", dto.GoogleSignInRequest{IDToken: "abc"}, "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
	w = srv.doJSON(http.MethodPost, "/api/auth/google", dto.GoogleSignInRequest{Email: "g@example.com", GoogleID: "g-1"}, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 when profiles are not trusted, got %d", w.Code)
	}
}

func TestGoogleSignInTrustedProfile(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) { cfg.GoogleAllowUnverifiedProfile = true })

	body := dto.GoogleSignInRequest{Email: "Gina@Example.com", Name: "Gina Putri", GoogleID: "g-1", PhotoURL: "https://example.com/p.png"}
	w := srv.doJSON(http.MethodPost, "/api/auth/google", body, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var first dto.AuthResponse
	decodeJSON(t, w, &first)
	if first.User.AuthProvider != "google" || first.User.Email != "gina@example.com" {
		t.Errorf("unexpected user %+v", first.User)
	}

	// 再次登录返回同一账号
	w = srv.doJSON(http.MethodPost, "/api/auth/google", body, "")
	var second dto.AuthResponse
	decodeJSON(t, w, &second)
	if second.User.ID != first.User.ID {
		t.Errorf("expected the same account, got %d and %d", first.User.ID, second.User.ID)
	}
}

func TestGoogleTrustedProfileRefusesAdmin(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) { cfg.GoogleAllowUnverifiedProfile = true })
	srv.signupAdmin("boss")

	w := srv.doJSON(http.MethodPost, "/api/auth/google", dto.GoogleSignInRequest{Email: "boss@example.com", GoogleID: "g-evil"}, "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), "access_token") {
		t.Error("refused sign-in must not issue a token")
	}
}

func TestPostFlow(t *testing.T) {
	srv := newTestServer(t, nil)
	_, userToken := srv.signup("reader")
	_, adminToken := srv.signupAdmin("editor")

	body := dto.PostCreateRequest{
		Title:    "Pendidikan Gratis",
		Content:  "Akses pendidikan yang merata untuk semua warga negara.",
		Category: "pendidikan",
		Image:    "https://example.com/cover.png",
	}
	if w := srv.doJSON(http.MethodPost, "/api/posts/create", body, userToken); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", w.Code)
	}
	if w := srv.doJSON(http.MethodPost, "/api/posts/create", body, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	w := srv.doJSON(http.MethodPost, "/api/posts/create", body, adminToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var post dto.PostSummary
	decodeJSON(t, w, &post)
	if post.Slug != "pendidikan-gratis" {
		t.Errorf("unexpected slug %q", post.Slug)
	}

	w = srv.doJSON(http.MethodGet, "/api/posts/post/pendidikan-gratis", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 by slug, got %d", w.Code)
	}
	if w := srv.doJSON(http.MethodGet, "/api/posts/post/missing", nil, ""); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if w := srv.doJSON(http.MethodGet, "/api/posts/getpost/abc", nil, ""); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a malformed id, got %d", w.Code)
	}

	w = srv.doJSON(http.MethodGet, "/api/posts/getposts?category=pendidikan", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from list, got %d", w.Code)
	}
	var list dto.PostListResponse
	decodeJSON(t, w, &list)
	if list.TotalPosts != 1 || len(list.Posts) != 1 {
		t.Errorf("unexpected list %+v", list)
	}
}

func TestCommentFlow(t *testing.T) {
	srv := newTestServer(t, nil)
	aliceID, aliceToken := srv.signup("alice")
	_, bobToken := srv.signup("bob")
	_, adminToken := srv.signupAdmin("editor")

	w := srv.doJSON(http.MethodPost, "/api/posts/create", dto.PostCreateRequest{
		Title: "Ekonomi Rakyat", Content: "Koperasi sebagai soko guru perekonomian nasional.",
		Category: "ekonomi", Image: "https://example.com/e.png",
	}, adminToken)
	var post dto.PostSummary
	decodeJSON(t, w, &post)

	w = srv.doJSON(http.MethodPost, "/api/comments/create", dto.CommentCreateRequest{Content: "Setuju", PostID: post.ID}, aliceToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var comment dto.CommentSummary
	decodeJSON(t, w, &comment)
	if comment.UserID != aliceID {
		t.Errorf("expected author %d, got %d", aliceID, comment.UserID)
	}

	path := "/api/comments/likeComment/" + itoa(comment.ID)
	w = srv.doJSON(http.MethodPatch, path, nil, bobToken)
	decodeJSON(t, w, &comment)
	if comment.NumberOfLikes != 1 {
		t.Errorf("expected 1 like, got %d", comment.NumberOfLikes)
	}

	w = srv.doJSON(http.MethodGet, "/api/comments/getPostComments/"+post.Slug, nil, bobToken)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var comments []dto.CommentSummary
	decodeJSON(t, w, &comments)
	if len(comments) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(comments))
	}

	edit := dto.CommentEditRequest{Content: "Sangat setuju"}
	if w := srv.doJSON(http.MethodPut, "/api/comments/editComment/"+itoa(comment.ID), edit, bobToken); w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for a non-owner edit, got %d", w.Code)
	}
	if w := srv.doJSON(http.MethodPut, "/api/comments/editComment/"+itoa(comment.ID), edit, aliceToken); w.Code != http.StatusOK {
		t.Errorf("expected 200 for the owner edit, got %d", w.Code)
	}
	if w := srv.doJSON(http.MethodDelete, "/api/comments/deleteComment/"+itoa(comment.ID), nil, adminToken); w.Code != http.StatusOK {
		t.Errorf("expected admin delete to succeed, got %d", w.Code)
	}
	if w := srv.doJSON(http.MethodPatch, path, nil, bobToken); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", w.Code)
	}
}

func TestUserRoleUpdate(t *testing.T) {
	srv := newTestServer(t, nil)
	userID, userToken := srv.signup("john1")
	adminID, adminToken := srv.signupAdmin("boss")

	if w := srv.doJSON(http.MethodGet, "/api/user/getusers", nil, userToken); w.Code != http.StatusForbidden {
		t.Errorf("expected 403 listing users as non-admin, got %d", w.Code)
	}

	role := dto.UserRoleRequest{Role: "admin"}
	if w := srv.doJSON(http.MethodPut, "/api/user/update-role/"+itoa(userID), role, userToken); w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for non-admin, got %d", w.Code)
	}
	if w := srv.doJSON(http.MethodPut, "/api/user/update-role/"+itoa(adminID), dto.UserRoleRequest{Role: "user"}, adminToken); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 changing own role, got %d", w.Code)
	}
	if w := srv.doJSON(http.MethodPut, "/api/user/update-role/"+itoa(userID), dto.UserRoleRequest{Role: "root"}, adminToken); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for an unknown role, got %d", w.Code)
	}

	w := srv.doJSON(http.MethodPut, "/api/user/update-role/"+itoa(userID), role, adminToken)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var res struct {
		Message string          `json:"message"`
		User    dto.UserSummary `json:"user"`
	}
	decodeJSON(t, w, &res)
	if res.User.Role != "admin" {
		t.Errorf("expected admin role, got %s", res.User.Role)
	}

	// 角色在每次请求时从数据库读取，旧 token 立即获得新权限
	if w := srv.doJSON(http.MethodGet, "/api/user/getusers", nil, userToken); w.Code != http.StatusOK {
		t.Errorf("expected promoted user to list users, got %d", w.Code)
	}
}

func TestDeleteSelfClearsCookie(t *testing.T) {
	srv := newTestServer(t, nil)
	id, token := srv.signup("john1")

	w := srv.doJSON(http.MethodDelete, "/api/user/delete/"+itoa(id), nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	cleared := false
	for _, c := range w.Result().Cookies() {
		if c.Name == accessTokenCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected the cookie to be cleared")
	}
	if w := srv.doJSON(http.MethodGet, "/api/auth/me", nil, token); w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for a deleted account, got %d", w.Code)
	}
}

func TestUnduhanUploadRejections(t *testing.T) {
	srv := newTestServer(t, nil)
	_, token := srv.signup("john1")

	tests := []struct {
		name string
		file formFile
		code string
	}{
		{
			name: "too large",
			file: formFile{field: "file", name: "big.pdf", contentType: "application/pdf", data: bytes.Repeat([]byte("a"), 6<<20)},
			code: service.CodeFileTooLarge,
		},
		{
			name: "mime not allowed",
			file: formFile{field: "file", name: "run.sh", contentType: "application/x-sh", data: []byte("#!/bin/sh\n")},
			code: service.CodeFileTypeNotAllowed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := multipartRequest(t, "/api/unduhan/upload", token, map[string]string{"filename": "Dokumen"}, tt.file)
			w := srv.do(req)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			if got := decodeAPIError(t, w).Code; got != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, got)
			}
			if n := storedFiles(t, srv.storageDir); n != 0 {
				t.Errorf("expected nothing stored, found %d files", n)
			}
		})
	}

	req := multipartRequest(t, "/api/unduhan/upload", token, nil, formFile{field: "file", name: "a.pdf", contentType: "application/pdf", data: pdfBody})
	if w := srv.do(req); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without a title, got %d", w.Code)
	}
	req = multipartRequest(t, "/api/unduhan/upload", token, map[string]string{"filename": "Dokumen"})
	if w := srv.do(req); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without a file, got %d", w.Code)
	}
	req = multipartRequest(t, "/api/unduhan/upload", "", map[string]string{"filename": "Dokumen"}, formFile{field: "file", name: "a.pdf", contentType: "application/pdf", data: pdfBody})
	if w := srv.do(req); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without a token, got %d", w.Code)
	}
}

func TestUnduhanLifecycle(t *testing.T) {
	srv := newTestServer(t, nil)
	_, userToken := srv.signup("john1")
	_, adminToken := srv.signupAdmin("boss")

	png := append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, bytes.Repeat([]byte{0}, 32)...)
	req := multipartRequest(t, "/api/unduhan/upload", userToken,
		map[string]string{"filename": "Modul Ajar"},
		formFile{field: "file", name: "modul ajar.pdf", contentType: "application/pdf", data: pdfBody},
		formFile{field: "image", name: "cover.png", contentType: "image/png", data: png},
	)
	w := srv.do(req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var file dto.FileSummary
	decodeJSON(t, w, &file)
	if file.Title != "Modul Ajar" || file.Size != int64(len(pdfBody)) || file.ImageURL == "" {
		t.Errorf("unexpected summary %+v", file)
	}
	if n := storedFiles(t, srv.storageDir); n != 2 {
		t.Errorf("expected 2 stored objects, found %d", n)
	}

	w = srv.doJSON(http.MethodGet, "/api/unduhan", nil, userToken)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"success":true`) {
		t.Fatalf("unexpected list response %d: %s", w.Code, w.Body.String())
	}
	if w := srv.doJSON(http.MethodGet, "/api/unduhan", nil, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("expected the list to require a token, got %d", w.Code)
	}

	download := "/api/unduhan/download/" + itoa(file.ID)
	w = srv.doJSON(http.MethodGet, download, nil, userToken)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from download, got %d", w.Code)
	}
	if !bytes.Equal(w.Body.Bytes(), pdfBody) {
		t.Error("downloaded bytes differ from the upload")
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment") || !strings.Contains(cd, "modul ajar.pdf") {
		t.Errorf("unexpected Content-Disposition %q", cd)
	}

	w = srv.doJSON(http.MethodGet, "/api/unduhan/image/"+itoa(file.ID), nil, "")
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("unexpected image response %d %q", w.Code, w.Header().Get("Content-Type"))
	}

	if w := srv.doJSON(http.MethodDelete, "/api/unduhan/"+itoa(file.ID), nil, userToken); w.Code != http.StatusForbidden {
		t.Errorf("expected 403 deleting as non-admin, got %d", w.Code)
	}
	if w := srv.doJSON(http.MethodDelete, "/api/unduhan/"+itoa(file.ID), nil, adminToken); w.Code != http.StatusOK {
		t.Fatalf("expected 200 deleting as admin, got %d", w.Code)
	}
	if w := srv.doJSON(http.MethodGet, download, nil, userToken); w.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", w.Code)
	}
	if n := storedFiles(t, srv.storageDir); n != 0 {
		t.Errorf("expected stored objects to be removed, found %d", n)
	}
}

func TestUnduhanPublicList(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) { cfg.UnduhanListPublic = true })
	if w := srv.doJSON(http.MethodGet, "/api/unduhan", nil, ""); w.Code != http.StatusOK {
		t.Errorf("expected a public list, got %d", w.Code)
	}
}

func TestCORSAllowList(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		origin string
		allow  bool
	}{
		{origin: "http://localhost:5173", allow: true},
		{origin: "https://evil.example.com", allow: false},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/api/posts/getposts", nil)
			req.Header.Set("Origin", tt.origin)
			w := srv.do(req)
			if w.Code != http.StatusNoContent {
				t.Fatalf("expected 204 preflight, got %d", w.Code)
			}
			got := w.Header().Get("Access-Control-Allow-Origin")
			if tt.allow && (got != tt.origin || w.Header().Get("Access-Control-Allow-Credentials") != "true") {
				t.Errorf("expected origin to be echoed, got %q", got)
			}
			if !tt.allow && got != "" {
				t.Errorf("expected no allow-origin header, got %q", got)
			}
		})
	}
}
