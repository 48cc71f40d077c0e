// language.go — обработчик переключения языка UI.
package handlers

import (
	"net/http"
	"time"

	"github.com/bigkaa/goartstore/upload-console/internal/ui/i18n"
)

// langCookieMaxAge — время жизни cookie языка (1 год).
const langCookieMaxAge = 365 * 24 * time.Hour

// HandleSetLanguage обрабатывает POST /set-language.
// Устанавливает cookie "lang" и возвращает на страницу из поля return.
// Неизвестный язык заменяется английским.
func HandleSetLanguage(w http.ResponseWriter, r *http.Request) {
	lang := r.FormValue("lang")
	if !i18n.IsSupported(lang) {
		lang = i18n.DefaultLang
	}

	http.SetCookie(w, &http.Cookie{
		Name:     i18n.LangCookieName,
		Value:    lang,
		Path:     "/",
		MaxAge:   int(langCookieMaxAge / time.Second),
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, safeReturn(r.FormValue("return"), "/"), http.StatusSeeOther)
}
