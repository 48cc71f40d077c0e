package tokenstore

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Имена cookie. Браузер различает cookie по имени, поэтому у сессионной
// области суффикс; обе хранят один и тот же сырой токен.
const (
	DurableCookieName = Key
	SessionCookieName = Key + "_session"
)

// CookieOptions — параметры cookie токена.
type CookieOptions struct {
	// Secure — флаг Secure (true для HTTPS).
	Secure bool
	// RememberMaxAge — время жизни долговременного cookie.
	RememberMaxAge time.Duration
}

// Cookies создаёт CookieBackend для отдельных HTTP-запросов.
type Cookies struct {
	sealer *Sealer
	opts   CookieOptions
}

// NewCookies создаёт фабрику cookie-бэкендов.
func NewCookies(sealer *Sealer, opts CookieOptions) *Cookies {
	if opts.RememberMaxAge <= 0 {
		opts.RememberMaxAge = 30 * 24 * time.Hour
	}
	return &Cookies{sealer: sealer, opts: opts}
}

// Backend возвращает бэкенд, читающий cookie из r и пишущий их в w.
func (c *Cookies) Backend(w http.ResponseWriter, r *http.Request) *CookieBackend {
	return &CookieBackend{
		cookies: c,
		w:       w,
		r:       r,
		pending: make(map[Scope]string, 2),
	}
}

// CookieBackend — Backend поверх зашифрованных cookie одного запроса.
// Записи, сделанные в рамках запроса, видны последующим Load того же запроса.
type CookieBackend struct {
	cookies *Cookies
	w       http.ResponseWriter
	r       *http.Request
	// pending — значения, записанные в ответ; пустая строка — удалено.
	pending map[Scope]string
}

// Load читает и дешифрует cookie области.
func (b *CookieBackend) Load(scope Scope) (string, error) {
	if v, ok := b.pending[scope]; ok {
		return v, nil
	}

	cookie, err := b.r.Cookie(cookieName(scope))
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", nil
		}
		return "", err
	}
	if cookie.Value == "" {
		return "", nil
	}

	token, err := b.cookies.sealer.Open(cookie.Value)
	if err != nil {
		return "", fmt.Errorf("cookie %s: %w", cookie.Name, err)
	}
	return token, nil
}

// Save шифрует токен и выставляет cookie области.
// Долговременная область получает Max-Age, сессионная — нет.
func (b *CookieBackend) Save(scope Scope, token string) error {
	sealed, err := b.cookies.sealer.Seal(token)
	if err != nil {
		return err
	}

	cookie := b.baseCookie(scope)
	cookie.Value = sealed
	if scope == ScopeDurable {
		cookie.MaxAge = int(b.cookies.opts.RememberMaxAge / time.Second)
	}
	http.SetCookie(b.w, cookie)
	b.pending[scope] = token
	return nil
}

// Delete истекает cookie области.
func (b *CookieBackend) Delete(scope Scope) error {
	cookie := b.baseCookie(scope)
	cookie.MaxAge = -1
	http.SetCookie(b.w, cookie)
	b.pending[scope] = ""
	return nil
}

func (b *CookieBackend) baseCookie(scope Scope) *http.Cookie {
	return &http.Cookie{
		Name:     cookieName(scope),
		Path:     "/",
		HttpOnly: true,
		Secure:   b.cookies.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func cookieName(scope Scope) string {
	if scope == ScopeDurable {
		return DurableCookieName
	}
	return SessionCookieName
}
