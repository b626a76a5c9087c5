package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/anggol23/Be-Resonansi/internal/config"
	"github.com/anggol23/Be-Resonansi/internal/entity/db"
	"github.com/anggol23/Be-Resonansi/internal/entity/dto"
	"github.com/anggol23/Be-Resonansi/internal/metrics"
	"github.com/anggol23/Be-Resonansi/internal/model"
	"github.com/anggol23/Be-Resonansi/internal/storage"

	"github.com/gin-gonic/gin"
)

const testSecret = "test-secret"

type testServer struct {
	t          *testing.T
	router     *gin.Engine
	handler    *HTTPHandler
	repo       model.Repository
	storageDir string
}

func testConfig() config.Config {
	return config.Config{
		AppEnv:                config.EnvDevelopment,
		JWTSecret:             testSecret,
		JWTIssuer:             "resonansi",
		JWTExpirationMinutes:  60,
		CookieSameSite:        "strict",
		ClientURLs:            []string{"http://localhost:5173"},
		OAuthSuccessRedirect:  "https://jurnalresonansi.com/",
		StorageMaxUploadBytes: 5 << 20,
	}
}

func newTestServer(t *testing.T, mutate func(*config.Config), deps ...func(*Dependencies)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	repo, err := model.InitRepository(&config.Config{DBType: model.DBTypeSQLite, DBPath: ":memory:"})
	if err != nil {
		t.Fatalf("init repository: %v", err)
	}
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("init storage: %v", err)
	}
	d := Dependencies{Repo: repo, Storage: store, Metrics: metrics.New()}
	for _, fn := range deps {
		fn(&d)
	}
	h, err := NewHTTPHandler(cfg, d)
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}
	return &testServer{t: t, router: h.Router(), handler: h, repo: repo, storageDir: dir}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) doJSON(method, path string, body any, token string) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.do(req)
}

// signup registers a user and returns its id and token.
func (s *testServer) signup(username string) (uint, string) {
	s.t.Helper()
	w := s.doJSON(http.MethodPost, "/api/auth/signup", dto.SignupRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret1",
	}, "")
	if w.Code != http.StatusCreated {
		s.t.Fatalf("signup %s: expected 201, got %d: %s", username, w.Code, w.Body.String())
	}
	var res dto.AuthResponse
	decodeJSON(s.t, w, &res)
	return res.User.ID, res.Token
}

// signupAdmin registers a user and promotes it directly in the store.
func (s *testServer) signupAdmin(username string) (uint, string) {
	s.t.Helper()
	id, token := s.signup(username)
	if err := s.repo.UpdateUser(context.Background(), id, map[string]interface{}{"role": db.UserRoleAdmin}); err != nil {
		s.t.Fatalf("promote %s: %v", username, err)
	}
	return id, token
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response: %v (%s)", err, w.Body.String())
	}
}

type formFile struct {
	field       string
	name        string
	contentType string
	data        []byte
}

func multipartRequest(t *testing.T, path, token string, fields map[string]string, files ...formFile) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for key, value := range fields {
		if err := mw.WriteField(key, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, f := range files {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.name))
		header.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(header)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(f.data); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}
