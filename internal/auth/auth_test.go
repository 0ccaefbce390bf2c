package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

func hash(t *testing.T, token string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(h)
}

type noSections struct{}

func (noSections) Authenticate(string) (Principal, error) { return Principal{}, nil }

func serve(authn Authenticator, header string) *httptest.ResponseRecorder {
	e := echo.New()
	e.GET("/guarded", func(c echo.Context) error {
		if _, ok := PrincipalFrom(c); !ok {
			return c.String(http.StatusInternalServerError, "no principal")
		}
		return c.String(http.StatusOK, "ok")
	}, Require(SectionAccessSettings, authn))

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequire(t *testing.T) {
	authn := NewTokenAuthenticator([]string{hash(t, "s3cret"), " "})

	tests := []struct {
		name   string
		authn  Authenticator
		header string
		want   int
	}{
		{"valid token", authn, "Bearer s3cret", http.StatusOK},
		{"cached token", authn, "Bearer s3cret", http.StatusOK},
		{"wrong token", authn, "Bearer nope", http.StatusUnauthorized},
		{"missing header", authn, "", http.StatusUnauthorized},
		{"basic scheme", authn, "Basic czNjcmV0", http.StatusUnauthorized},
		{"no settings section", noSections{}, "Bearer anything", http.StatusForbidden},
		{"auth disabled", AllowAll{}, "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(tt.authn, tt.header)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestTokenSubjectHidesToken(t *testing.T) {
	authn := NewTokenAuthenticator([]string{hash(t, "s3cret")})
	first, err := authn.Authenticate("s3cret")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	cached, err := authn.Authenticate("s3cret")
	if err != nil {
		t.Fatalf("authenticate cached: %v", err)
	}
	if first.Subject == "" || first.Subject != cached.Subject {
		t.Fatalf("subjects = %q, %q", first.Subject, cached.Subject)
	}
	if strings.Contains(first.Subject, "s3cret") {
		t.Fatalf("subject leaks the token: %q", first.Subject)
	}
}
