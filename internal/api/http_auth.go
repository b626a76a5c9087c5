package api

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/anggol23/Be-Resonansi/internal/auth"
	"github.com/anggol23/Be-Resonansi/internal/entity/converter"
	"github.com/anggol23/Be-Resonansi/internal/entity/db"
	"github.com/anggol23/Be-Resonansi/internal/entity/dto"
	"github.com/anggol23/Be-Resonansi/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const googleCallbackPath = "/api/auth/google"

func (h *HTTPHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.auth.Signup(ctx, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.writeAuthResult(c, http.StatusCreated, result)
}

func (h *HTTPHandler) Signin(c *gin.Context) {
	var req dto.SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.auth.Signin(ctx, req)
	if err != nil {
		logrus.WithError(err).WithField("email", strings.ToLower(strings.TrimSpace(req.Email))).Warn("signin failed")
		h.respondError(c, err)
		return
	}
	h.writeAuthResult(c, http.StatusOK, result)
}

// Signout clears the cookie and ends the server side session. It succeeds
// without a token.
func (h *HTTPHandler) Signout(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.auth.Signout(ctx, tokenFromRequest(c)); err != nil {
		h.respondError(c, err)
		return
	}
	h.clearAccessTokenCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "User has been signed out"})
}

func (h *HTTPHandler) Me(c *gin.Context, identity auth.Identity) {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.auth.Me(ctx, identity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, converter.UserToSummary(user))
}

// GoogleSignIn accepts a Google ID token. When the deployment trusts client
// supplied profiles it also accepts {email, name, photoUrl, googleId}.
func (h *HTTPHandler) GoogleSignIn(c *gin.Context) {
	var req dto.GoogleSignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		InvalidPayload(c)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	var identity *auth.ExternalIdentity
	switch {
	case strings.TrimSpace(req.IDToken) != "":
		if h.google == nil {
			ServiceUnavailable(c, "Google sign-in is not configured")
			return
		}
		verified, err := h.google.VerifyIDToken(ctx, strings.TrimSpace(req.IDToken))
		if err != nil {
			logrus.WithError(err).Warn("google id token rejected")
			ErrorResponse(c, http.StatusUnauthorized, ErrCodeGoogleAuth, "Invalid Google credential")
			return
		}
		identity = verified
	case h.cfg.GoogleAllowUnverifiedProfile:
		if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.GoogleID) == "" {
			MissingField(c, "email and googleId")
			return
		}
		identity = &auth.ExternalIdentity{
			Provider:       db.AuthProviderGoogle,
			Subject:        strings.TrimSpace(req.GoogleID),
			Email:          strings.TrimSpace(req.Email),
			Name:           strings.TrimSpace(req.Name),
			Picture:        strings.TrimSpace(req.PhotoURL),
			EmailVerified:  true,
			ClientAsserted: true,
		}
	default:
		MissingField(c, "idToken")
		return
	}

	result, err := h.auth.SignInWithExternalIdentity(ctx, *identity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.writeAuthResult(c, http.StatusOK, result)
}

// GoogleStart begins the authorization code flow.
func (h *HTTPHandler) GoogleStart(c *gin.Context) {
	if h.google == nil {
		ServiceUnavailable(c, "Google sign-in is not configured")
		return
	}
	state := uuid.NewString()
	http.SetCookie(c.Writer, h.oauthStateCookie(state))
	c.Redirect(http.StatusFound, h.google.AuthCodeURL(state))
}

// GoogleCallback finishes the code flow, sets the session cookie and
// redirects to the client.
func (h *HTTPHandler) GoogleCallback(c *gin.Context) {
	if h.google == nil {
		ServiceUnavailable(c, "Google sign-in is not configured")
		return
	}
	expected, _ := c.Cookie(oauthStateCookie)
	http.SetCookie(c.Writer, h.newCookie(oauthStateCookie, "", googleCallbackPath, 0))

	state := c.Query("state")
	if expected == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(state)) != 1 {
		BadRequest(c, ErrCodeInvalidState, "Invalid OAuth state")
		return
	}
	code := strings.TrimSpace(c.Query("code"))
	if code == "" {
		MissingField(c, "code")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*requestTimeout)
	defer cancel()

	identity, err := h.google.Exchange(ctx, code)
	if err != nil {
		logrus.WithError(err).Warn("google code exchange failed")
		ErrorResponse(c, http.StatusUnauthorized, ErrCodeGoogleAuth, "Google sign-in failed")
		return
	}
	result, err := h.auth.SignInWithExternalIdentity(ctx, *identity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.setAccessTokenCookie(c, result.Token)
	c.Redirect(http.StatusFound, h.cfg.OAuthSuccessRedirect)
}

func (h *HTTPHandler) oauthStateCookie(state string) *http.Cookie {
	cookie := h.newCookie(oauthStateCookie, state, googleCallbackPath, oauthStateMaxAge)
	// the callback is a top-level cross-site navigation from Google
	if cookie.SameSite == http.SameSiteStrictMode {
		cookie.SameSite = http.SameSiteLaxMode
	}
	return cookie
}

func (h *HTTPHandler) writeAuthResult(c *gin.Context, status int, result *service.AuthResult) {
	h.setAccessTokenCookie(c, result.Token)
	c.JSON(status, dto.AuthResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      converter.UserToSummary(result.User),
	})
}
