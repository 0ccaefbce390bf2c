package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/akave-ai/logviewer/internal/response"
)

// SectionSettings is the backoffice section that owns the log viewer.
const SectionSettings = "settings"

// Policy grants access when the caller may use every listed section.
type Policy struct {
	Name     string
	Sections []string
}

// SectionAccessSettings guards the log viewer and the property editor endpoints.
var SectionAccessSettings = Policy{Name: "SectionAccessSettings", Sections: []string{SectionSettings}}

// Principal is an authenticated caller.
type Principal struct {
	// Subject identifies the caller in logs. Tokens are named by a digest
	// prefix, never by their value.
	Subject  string
	Sections []string
}

// HasSection reports whether p may use section.
func (p Principal) HasSection(section string) bool {
	for _, s := range p.Sections {
		if s == section {
			return true
		}
	}
	return false
}

var ErrInvalidToken = errors.New("invalid token")

// Authenticator resolves a bearer token to a principal.
type Authenticator interface {
	Authenticate(token string) (Principal, error)
}

// TokenAuthenticator accepts tokens matching one of a set of bcrypt hashes.
// Every accepted token grants the settings section. Verified tokens are
// remembered by their SHA-256 digest so bcrypt runs once per token.
type TokenAuthenticator struct {
	hashes [][]byte

	mu       sync.RWMutex
	verified map[[sha256.Size]byte]bool
}

func NewTokenAuthenticator(hashes []string) *TokenAuthenticator {
	a := &TokenAuthenticator{verified: make(map[[sha256.Size]byte]bool)}
	for _, h := range hashes {
		if h = strings.TrimSpace(h); h != "" {
			a.hashes = append(a.hashes, []byte(h))
		}
	}
	return a
}

func (a *TokenAuthenticator) Authenticate(token string) (Principal, error) {
	if token == "" {
		return Principal{}, ErrInvalidToken
	}
	digest := sha256.Sum256([]byte(token))

	principal := Principal{
		Subject:  "token:" + hex.EncodeToString(digest[:4]),
		Sections: []string{SectionSettings},
	}

	a.mu.RLock()
	ok := a.verified[digest]
	a.mu.RUnlock()
	if ok {
		return principal, nil
	}

	for _, h := range a.hashes {
		if bcrypt.CompareHashAndPassword(h, []byte(token)) == nil {
			a.mu.Lock()
			a.verified[digest] = true
			a.mu.Unlock()
			return principal, nil
		}
	}
	return Principal{}, ErrInvalidToken
}

// AllowAll authenticates every request with access to every section.
// Used when authentication is disabled by configuration.
type AllowAll struct{}

func (AllowAll) Authenticate(string) (Principal, error) {
	return Principal{Subject: "anonymous", Sections: []string{SectionSettings}}, nil
}

const principalKey = "auth.principal"

// Require returns middleware enforcing policy. Missing or unknown tokens get
// 401, authenticated callers lacking a section get 403.
func Require(policy Policy, authn Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, err := authn.Authenticate(bearerToken(c))
			if err != nil {
				c.Response().Header().Set("WWW-Authenticate", `Bearer realm="logviewer"`)
				return response.Error(c, http.StatusUnauthorized, "unauthorized", err.Error())
			}
			for _, section := range policy.Sections {
				if !principal.HasSection(section) {
					return response.Error(c, http.StatusForbidden, "forbidden", "policy "+policy.Name+" requires section "+section)
				}
			}
			c.Set(principalKey, principal)
			return next(c)
		}
	}
}

// PrincipalFrom returns the principal stored by Require.
func PrincipalFrom(c echo.Context) (Principal, bool) {
	p, ok := c.Get(principalKey).(Principal)
	return p, ok
}

func bearerToken(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}
