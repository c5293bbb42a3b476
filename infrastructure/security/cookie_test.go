package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSetAuthToken_Attributes(t *testing.T) {
	w := httptest.NewRecorder()
	SetAuthToken(w, "tok", true)

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	c := cookies[0]
	if c.Name != AuthTokenCookie || c.Value != "tok" {
		t.Errorf("cookie = %s=%s, want %s=tok", c.Name, c.Value, AuthTokenCookie)
	}
	if !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteStrictMode || c.Path != "/" {
		t.Errorf("cookie attributes = %+v, want HttpOnly Secure SameSite=Strict Path=/", c)
	}
}

func TestGetAuthToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := GetAuthToken(r); got != "" {
		t.Errorf("GetAuthToken without cookie = %q, want empty", got)
	}

	r.AddCookie(&http.Cookie{Name: AuthTokenCookie, Value: "abc"})
	if got := GetAuthToken(r); got != "abc" {
		t.Errorf("GetAuthToken = %q, want abc", got)
	}
}

func TestClearAuthToken(t *testing.T) {
	w := httptest.NewRecorder()
	ClearAuthToken(w, false)

	c := w.Result().Cookies()[0]
	if c.MaxAge >= 0 {
		t.Errorf("MaxAge = %d, want negative", c.MaxAge)
	}
}
