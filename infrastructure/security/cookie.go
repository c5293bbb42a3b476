package security

import (
	"net/http"
)

// AuthTokenCookie carries the room membership token. Only the admission
// gateway writes it.
const AuthTokenCookie = "x-auth-token"

type cookieConfig struct {
	name     string
	value    string
	path     string
	httpOnly bool
	secure   bool
	maxAge   int
}

func setSecureCookie(w http.ResponseWriter, cfg cookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.name,
		Value:    cfg.value,
		Path:     cfg.path,
		HttpOnly: cfg.httpOnly,
		MaxAge:   cfg.maxAge,
		SameSite: http.SameSiteStrictMode,
		Secure:   cfg.secure,
	})
}

// SetAuthToken stores token as a session cookie. secure should be true
// whenever the service is reached over TLS.
func SetAuthToken(w http.ResponseWriter, token string, secure bool) {
	setSecureCookie(w, cookieConfig{
		name:     AuthTokenCookie,
		value:    token,
		path:     "/",
		httpOnly: true,
		secure:   secure,
	})
}

// GetAuthToken returns the presented membership token or "".
func GetAuthToken(r *http.Request) string {
	cookie, err := r.Cookie(AuthTokenCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func ClearAuthToken(w http.ResponseWriter, secure bool) {
	setSecureCookie(w, cookieConfig{
		name:     AuthTokenCookie,
		value:    "",
		path:     "/",
		httpOnly: true,
		secure:   secure,
		maxAge:   -1,
	})
}
