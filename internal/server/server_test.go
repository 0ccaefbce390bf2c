package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/akave-ai/logviewer/internal/auth"
	"github.com/akave-ai/logviewer/internal/config"
	"github.com/akave-ai/logviewer/internal/logging"
	"github.com/akave-ai/logviewer/internal/logviewer"
	"github.com/akave-ai/logviewer/internal/model"
	"github.com/akave-ai/logviewer/internal/repository"
)

func newTestServer(t *testing.T, authn auth.Authenticator) (*Server, *logging.LevelSwitch) {
	t.Helper()
	dir := t.TempDir()
	levels := logging.NewLevelSwitch(model.LevelInformation)
	store := repository.NewFileSavedSearchStore(filepath.Join(dir, "searches.json"))
	viewer, err := logviewer.New(logviewer.NewJSONFileSource(dir, "app", 0), store, levels)
	if err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{Server: config.ServerConfig{Port: "0"}}
	srv := New(cfg, Deps{Viewer: viewer, Levels: levels, Authenticator: authn, Logger: zerolog.Nop()})
	return srv, levels
}

func serve(s *Server, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

func TestHealthIsPublic(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	srv, _ := newTestServer(t, auth.NewTokenAuthenticator([]string{string(hash)}))
	rec := serve(srv, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get(echo.HeaderXRequestID) == "" {
		t.Error("missing request id")
	}
}

func TestLogViewerRoutesRequireToken(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	srv, _ := newTestServer(t, auth.NewTokenAuthenticator([]string{string(hash)}))

	routes := []string{
		"/api/logviewer/can-view-logs",
		"/api/logviewer/log-level",
		"/api/logviewer/saved-searches",
		"/api/propertyeditors/datetime/config",
	}
	for _, route := range routes {
		if rec := serve(srv, http.MethodGet, route, ""); rec.Code != http.StatusUnauthorized {
			t.Errorf("%s without token: status = %d, want 401", route, rec.Code)
		}
		if rec := serve(srv, http.MethodGet, route, "wrong"); rec.Code != http.StatusUnauthorized {
			t.Errorf("%s with wrong token: status = %d, want 401", route, rec.Code)
		}
		if rec := serve(srv, http.MethodGet, route, "secret"); rec.Code != http.StatusOK {
			t.Errorf("%s with token: status = %d, want 200", route, rec.Code)
		}
	}
}

func TestSetLogLevelThroughServer(t *testing.T) {
	srv, levels := newTestServer(t, auth.AllowAll{})

	rec := serve(srv, http.MethodPost, "/api/logviewer/log-level?eventLevel=Warning", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if levels.MinimumLevel() != model.LevelWarning {
		t.Errorf("level = %v, want Warning", levels.MinimumLevel())
	}

	rec = serve(srv, http.MethodGet, "/api/logviewer/log-level", "")
	var body struct {
		Data string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Data != "Warning" {
		t.Errorf("log-level = %q, want Warning", body.Data)
	}
}

func TestSavedSearchesSeeded(t *testing.T) {
	srv, _ := newTestServer(t, auth.AllowAll{})
	rec := serve(srv, http.MethodGet, "/api/logviewer/saved-searches", "")
	var body struct {
		Data []model.SavedLogSearch `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Data) != len(model.DefaultSavedSearches()) {
		t.Errorf("saved searches = %v", body.Data)
	}
}
