package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	accessTokenCookie = "access_token"
	oauthStateCookie  = "oauth_state"
	oauthStateMaxAge  = 10 * time.Minute
)

func (h *HTTPHandler) sameSite() http.SameSite {
	switch strings.ToLower(strings.TrimSpace(h.cfg.CookieSameSite)) {
	case "none":
		return http.SameSiteNoneMode
	case "lax":
		return http.SameSiteLaxMode
	default:
		return http.SameSiteStrictMode
	}
}

// newCookie builds an HttpOnly cookie. Browsers drop SameSite=None cookies
// that are not Secure, so None always sets Secure.
func (h *HTTPHandler) newCookie(name, value, path string, maxAge time.Duration) *http.Cookie {
	sameSite := h.sameSite()
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		HttpOnly: true,
		Secure:   h.cfg.IsProduction() || sameSite == http.SameSiteNoneMode,
		SameSite: sameSite,
	}
	if maxAge > 0 {
		cookie.MaxAge = int(maxAge / time.Second)
		cookie.Expires = time.Now().Add(maxAge)
	} else {
		cookie.MaxAge = -1
		cookie.Expires = time.Unix(0, 0)
	}
	return cookie
}

func (h *HTTPHandler) setAccessTokenCookie(c *gin.Context, token string) {
	http.SetCookie(c.Writer, h.newCookie(accessTokenCookie, token, "/", h.auth.TokenLifetime()))
}

func (h *HTTPHandler) clearAccessTokenCookie(c *gin.Context) {
	http.SetCookie(c.Writer, h.newCookie(accessTokenCookie, "", "/", 0))
}

// tokenFromRequest returns the bearer token, preferring the Authorization
// header over the access_token cookie. Other schemes are ignored.
func tokenFromRequest(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			if token := strings.TrimSpace(parts[1]); token != "" {
				return token
			}
		}
	}
	if cookie, err := c.Cookie(accessTokenCookie); err == nil {
		return strings.TrimSpace(cookie)
	}
	return ""
}
