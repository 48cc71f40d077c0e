package tokenstore

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestCookies(t *testing.T) *Cookies {
	t.Helper()
	sealer, err := NewSealer("test-secret")
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}
	return NewCookies(sealer, CookieOptions{RememberMaxAge: time.Hour})
}

// replay переносит Set-Cookie ответа в новый запрос, как это сделал бы браузер.
func replay(t *testing.T, rec *httptest.ResponseRecorder) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			continue
		}
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	return req
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// TestCookieBackendDurable проверяет долговременный cookie и чтение в следующем запросе.
func TestCookieBackendDurable(t *testing.T) {
	cookies := newTestCookies(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)

	s := New(cookies.Backend(rec, req), testLogger())
	s.Set("jwt-token", true)

	c := findCookie(rec, DurableCookieName)
	if c == nil {
		t.Fatal("долговременный cookie не выставлен")
	}
	if c.MaxAge != 3600 {
		t.Errorf("MaxAge = %d, ожидалось 3600", c.MaxAge)
	}
	if !c.HttpOnly || c.SameSite != http.SameSiteLaxMode {
		t.Error("cookie должен быть HttpOnly и SameSite=Lax")
	}
	if c.Value == "jwt-token" {
		t.Error("значение cookie должно быть зашифровано")
	}
	if findCookie(rec, SessionCookieName) != nil {
		t.Error("сессионный cookie не должен выставляться при remember=true")
	}

	// Запись видна в рамках того же запроса
	if got, ok := s.Get(); !ok || got != "jwt-token" {
		t.Errorf("Get() в том же запросе = %q, %v", got, ok)
	}

	next := New(cookies.Backend(httptest.NewRecorder(), replay(t, rec)), testLogger())
	if got, ok := next.Get(); !ok || got != "jwt-token" {
		t.Errorf("Get() в следующем запросе = %q, %v", got, ok)
	}
}

// TestCookieBackendSession проверяет сессионный cookie без Max-Age.
func TestCookieBackendSession(t *testing.T) {
	cookies := newTestCookies(t)
	rec := httptest.NewRecorder()

	s := New(cookies.Backend(rec, httptest.NewRequest(http.MethodPost, "/login", nil)), testLogger())
	s.Set("jwt-session", false)

	c := findCookie(rec, SessionCookieName)
	if c == nil {
		t.Fatal("сессионный cookie не выставлен")
	}
	if c.MaxAge != 0 {
		t.Errorf("MaxAge сессионного cookie = %d, ожидалось 0", c.MaxAge)
	}
}

// TestCookieBackendClear проверяет истечение обоих cookie.
func TestCookieBackendClear(t *testing.T) {
	cookies := newTestCookies(t)
	rec := httptest.NewRecorder()

	s := New(cookies.Backend(rec, httptest.NewRequest(http.MethodPost, "/logout", nil)), testLogger())
	s.Clear()

	for _, name := range []string{DurableCookieName, SessionCookieName} {
		c := findCookie(rec, name)
		if c == nil || c.MaxAge >= 0 {
			t.Errorf("cookie %s должен быть истёкшим", name)
		}
	}
	if _, ok := s.Get(); ok {
		t.Error("Get() после Clear должен вернуть false")
	}
}

// TestCookieBackendTampered проверяет, что подделанный cookie трактуется как отсутствие токена.
func TestCookieBackendTampered(t *testing.T) {
	cookies := newTestCookies(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: DurableCookieName, Value: "bm90LXNlYWxlZA=="})

	s := New(cookies.Backend(httptest.NewRecorder(), req), testLogger())
	if _, ok := s.Get(); ok {
		t.Error("подделанный cookie не должен давать токен")
	}
}

// TestCookieBackendForeignKey проверяет, что cookie, зашифрованный другим ключом, не читается.
func TestCookieBackendForeignKey(t *testing.T) {
	other, err := NewSealer("")
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}
	sealed, err := other.Seal("jwt")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sealed})

	s := New(newTestCookies(t).Backend(httptest.NewRecorder(), req), testLogger())
	if _, ok := s.Get(); ok {
		t.Error("cookie с чужим ключом не должен давать токен")
	}
}

func TestSealerRoundTrip(t *testing.T) {
	// base64 32-байтового ключа используется как есть
	sealer, err := NewSealer("MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY=")
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}
	sealed, err := sealer.Seal("payload")
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	got, err := sealer.Open(sealed)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got != "payload" {
		t.Errorf("Open() = %q, ожидалось payload", got)
	}
	if _, err := sealer.Open("!!!"); err == nil {
		t.Error("Open() некорректного base64 должен вернуть ошибку")
	}
}
