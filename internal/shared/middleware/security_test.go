package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHSTS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := HSTS(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	got := rr.Header().Get("Strict-Transport-Security")
	if !strings.Contains(got, "max-age=31536000") {
		t.Errorf("Strict-Transport-Security = %q, want max-age=31536000", got)
	}
}

func TestSecureCookies_AddsFlags(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "abc", Path: "/"})
		w.WriteHeader(http.StatusOK)
	})

	handler := SecureCookies(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	cookies := rr.Header()["Set-Cookie"]
	if len(cookies) != 1 {
		t.Fatalf("expected 1 Set-Cookie header, got %d", len(cookies))
	}

	cookie := cookies[0]
	for _, attr := range []string{"Secure", "HttpOnly", "SameSite="} {
		if !strings.Contains(cookie, attr) {
			t.Errorf("cookie %q missing %s attribute", cookie, attr)
		}
	}
}

func TestEnsureSecureCookie_PreservesExistingAttributes(t *testing.T) {
	cookie := "session=xyz; Path=/; SameSite=Lax"
	secured := ensureSecureCookie(cookie)

	if !strings.Contains(secured, "SameSite=Lax") {
		t.Errorf("ensureSecureCookie() dropped existing SameSite: %q", secured)
	}
	if strings.Contains(secured, "SameSite=Strict") {
		t.Errorf("ensureSecureCookie() overrode existing SameSite: %q", secured)
	}
	if !strings.Contains(secured, "Secure") {
		t.Errorf("ensureSecureCookie() did not add Secure: %q", secured)
	}
}

func TestIsHostAllowed(t *testing.T) {
	tests := []struct {
		name         string
		host         string
		allowedHosts []string
		want         bool
	}{
		{name: "empty list allows all", host: "anything.com", allowedHosts: nil, want: true},
		{name: "exact match", host: "plata.example.com", allowedHosts: []string{"plata.example.com"}, want: true},
		{name: "match ignoring port", host: "plata.example.com:443", allowedHosts: []string{"plata.example.com"}, want: true},
		{name: "no match", host: "evil.com", allowedHosts: []string{"plata.example.com"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsHostAllowed(tt.host, tt.allowedHosts); got != tt.want {
				t.Errorf("IsHostAllowed(%q, %v) = %v, want %v", tt.host, tt.allowedHosts, got, tt.want)
			}
		})
	}
}
