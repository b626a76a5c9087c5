package dto

import "time"

// SignupRequest is the registration payload. Role is accepted for
// compatibility but a self-requested admin role is never honored.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// SigninRequest is the login payload.
type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GoogleSignInRequest carries either a Google ID token or, when the
// deployment trusts client supplied profiles, the profile fields.
type GoogleSignInRequest struct {
	IDToken  string `json:"idToken"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	PhotoURL string `json:"photoUrl"`
	GoogleID string `json:"googleId"`
}

// AuthResponse is returned after successful authentication.
type AuthResponse struct {
	Token     string      `json:"access_token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      UserSummary `json:"user"`
}
