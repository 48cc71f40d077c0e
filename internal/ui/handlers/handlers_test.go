package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/bigkaa/goartstore/upload-console/internal/domain/model"
	"github.com/bigkaa/goartstore/upload-console/internal/guard"
	"github.com/bigkaa/goartstore/upload-console/internal/listquery"
	"github.com/bigkaa/goartstore/upload-console/internal/service"
	"github.com/bigkaa/goartstore/upload-console/internal/session"
	"github.com/bigkaa/goartstore/upload-console/internal/tokenstore"
	"github.com/bigkaa/goartstore/upload-console/internal/ui/i18n"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func signToken(t *testing.T, id int64, role string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       id,
		"email":    "ann@example.com",
		"role":     role,
		"fullName": "Ann",
	}).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return token
}

// fakeAPI — upload-API в памяти.
type fakeAPI struct {
	mu       sync.Mutex
	token    string
	loginErr error
	files    []model.FileRecord
	rows     []model.Row
	rowsErr  error
	users    []model.UserRecord
	uploaded []string
	deleted  []int64
	// pageCalls и userCalls — число запросов страниц файлов и списка пользователей.
	pageCalls int
	userCalls int
}

func (f *fakeAPI) Login(_ context.Context, _, password string) (string, error) {
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return f.token, nil
}

func (f *fakeAPI) Register(context.Context, string, string, string) error { return nil }

func (f *fakeAPI) ListFiles(context.Context, string) ([]model.FileRecord, error) {
	return f.files, nil
}

func (f *fakeAPI) ListFilesPage(context.Context, string, listquery.Query) (listquery.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pageCalls++
	return listquery.Page{Files: f.files, Total: len(f.files)}, nil
}

func (f *fakeAPI) ListUsers(context.Context, string) ([]model.UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userCalls++
	return f.users, nil
}

func (f *fakeAPI) calls() (pages, users int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pageCalls, f.userCalls
}

func (f *fakeAPI) UploadFile(_ context.Context, _, filename string, content io.Reader) (*model.UploadResult, error) {
	_, _ = io.Copy(io.Discard, content)
	f.mu.Lock()
	f.uploaded = append(f.uploaded, filename)
	f.mu.Unlock()
	return &model.UploadResult{Message: "ok"}, nil
}

func (f *fakeAPI) FileContent(context.Context, string, int64) ([]model.Row, error) {
	return f.rows, f.rowsErr
}

func (f *fakeAPI) DeleteFile(_ context.Context, _ string, id int64) error {
	f.mu.Lock()
	f.deleted = append(f.deleted, id)
	f.mu.Unlock()
	return nil
}

// withSession кладёт в запрос сессию в памяти; пустой token — аноним.
func withSession(t *testing.T, r *http.Request, token string) *http.Request {
	t.Helper()
	sess := session.New(tokenstore.New(tokenstore.NewMemoryBackend(), testLogger()), testLogger())
	if token != "" {
		sess.Login(token, false)
	}
	return r.WithContext(session.WithContext(r.Context(), sess))
}

func newDashboardRouter(api *fakeAPI) http.Handler {
	h := NewDashboardHandler(service.NewFileService(api, 1024, testLogger()), time.Minute, 1024, testLogger())
	r := chi.NewRouter()
	r.Get("/dashboard", h.HandleDashboard)
	r.Get("/dashboard/files", h.HandleFilesFragment)
	r.Post("/dashboard/upload", h.HandleUpload)
	r.Get("/dashboard/files/{id}", h.HandleContent)
	r.Get("/dashboard/files/{id}/delete", h.HandleDeleteConfirm)
	r.Post("/dashboard/files/{id}/delete", h.HandleDelete)
	return r
}

func formRequest(method, target string, form url.Values) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func TestHandleSetLanguage(t *testing.T) {
	tests := []struct {
		name     string
		lang     string
		ret      string
		wantLang string
		wantLoc  string
	}{
		{name: "supported", lang: "id", ret: "/dashboard", wantLang: "id", wantLoc: "/dashboard"},
		{name: "unknown language", lang: "xx", ret: "/login", wantLang: i18n.DefaultLang, wantLoc: "/login"},
		{name: "external return", lang: "en", ret: "//evil.example", wantLang: "en", wantLoc: "/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleSetLanguage(rec, formRequest(http.MethodPost, "/set-language", url.Values{
				"lang": {tt.lang}, "return": {tt.ret},
			}))

			if rec.Code != http.StatusSeeOther {
				t.Fatalf("status = %d, want 303", rec.Code)
			}
			if got := rec.Header().Get("Location"); got != tt.wantLoc {
				t.Errorf("Location = %q, want %q", got, tt.wantLoc)
			}
			var got string
			for _, c := range rec.Result().Cookies() {
				if c.Name == i18n.LangCookieName {
					got = c.Value
				}
			}
			if got != tt.wantLang {
				t.Errorf("cookie lang = %q, want %q", got, tt.wantLang)
			}
		})
	}
}

func TestRootHandler(t *testing.T) {
	dashboard := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("dashboard"))
	})
	tests := []struct {
		name     string
		token    string
		wantLoc  string
		wantBody string
	}{
		{name: "anonymous", wantLoc: "/login"},
		{name: "admin", token: signToken(t, 1, "ADMIN"), wantLoc: "/admin"},
		{name: "user", token: signToken(t, 2, "USER"), wantBody: "dashboard"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RootHandler(guard.DefaultTable(), dashboard)(rec, withSession(t, httptest.NewRequest(http.MethodGet, "/", nil), tt.token))

			if got := rec.Header().Get("Location"); got != tt.wantLoc {
				t.Errorf("Location = %q, want %q", got, tt.wantLoc)
			}
			if tt.wantBody != "" && (rec.Code != http.StatusOK || rec.Body.String() != tt.wantBody) {
				t.Errorf("status = %d, body = %q", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHandleLogin(t *testing.T) {
	table := guard.DefaultTable()

	t.Run("success redirects by role", func(t *testing.T) {
		api := &fakeAPI{token: signToken(t, 1, "USER")}
		h := NewAuthHandler(service.NewAuthService(api, testLogger()), table, testLogger())

		rec := httptest.NewRecorder()
		req := formRequest(http.MethodPost, "/login", url.Values{"email": {"ann@example.com"}, "password": {"x"}})
		h.HandleLogin(rec, withSession(t, req, ""))

		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
			t.Errorf("status = %d, Location = %q", rec.Code, rec.Header().Get("Location"))
		}
	})

	t.Run("validation error rendered", func(t *testing.T) {
		h := NewAuthHandler(service.NewAuthService(&fakeAPI{}, testLogger()), table, testLogger())

		rec := httptest.NewRecorder()
		req := formRequest(http.MethodPost, "/login", url.Values{"email": {"not-an-email"}, "password": {"x"}})
		h.HandleLogin(rec, withSession(t, req, ""))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), service.KeyEmailInvalid) {
			t.Error("нет сообщения о неверном email")
		}
	})

	t.Run("upstream error", func(t *testing.T) {
		api := &fakeAPI{loginErr: errors.New("boom")}
		h := NewAuthHandler(service.NewAuthService(api, testLogger()), table, testLogger())

		rec := httptest.NewRecorder()
		req := formRequest(http.MethodPost, "/login", url.Values{"email": {"ann@example.com"}, "password": {"x"}})
		h.HandleLogin(rec, withSession(t, req, ""))

		if rec.Code != http.StatusBadGateway {
			t.Errorf("status = %d, want 502", rec.Code)
		}
	})

	t.Run("undecodable token stays on login", func(t *testing.T) {
		api := &fakeAPI{token: "opaque"}
		h := NewAuthHandler(service.NewAuthService(api, testLogger()), table, testLogger())

		rec := httptest.NewRecorder()
		req := formRequest(http.MethodPost, "/login", url.Values{"email": {"ann@example.com"}, "password": {"x"}})
		h.HandleLogin(rec, withSession(t, req, ""))

		if rec.Code != http.StatusOK || rec.Header().Get("Location") != "" {
			t.Errorf("status = %d, Location = %q", rec.Code, rec.Header().Get("Location"))
		}
	})
}

func TestHandleRegister(t *testing.T) {
	h := NewAuthHandler(service.NewAuthService(&fakeAPI{}, testLogger()), guard.DefaultTable(), testLogger())

	form := url.Values{
		"email": {"ann@example.com"}, "fullName": {"Ann"},
		"password": {"pw"}, "confirmPassword": {"pw"},
	}
	rec := httptest.NewRecorder()
	h.HandleRegister(rec, withSession(t, formRequest(http.MethodPost, "/register", form), ""))
	if got := rec.Header().Get("Location"); got != "/login?registered=1" {
		t.Errorf("Location = %q", got)
	}

	form.Set("confirmPassword", "other")
	rec = httptest.NewRecorder()
	h.HandleRegister(rec, withSession(t, formRequest(http.MethodPost, "/register", form), ""))
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), service.KeyPasswordMismatch) {
		t.Errorf("status = %d, ожидалась ошибка несовпадения паролей", rec.Code)
	}
}

func TestDashboard_HidesDeletedFiles(t *testing.T) {
	api := &fakeAPI{files: []model.FileRecord{
		{ID: 1, Filename: "alive.csv", Status: "SUCCESS"},
		{ID: 2, Filename: "gone.csv", Status: "DELETED"},
	}}
	token := signToken(t, 1, "USER")

	rec := httptest.NewRecorder()
	newDashboardRouter(api).ServeHTTP(rec, withSession(t, httptest.NewRequest(http.MethodGet, "/dashboard", nil), token))

	body := rec.Body.String()
	if !strings.Contains(body, "alive.csv") {
		t.Error("активный файл не показан")
	}
	if strings.Contains(body, "gone.csv") {
		t.Error("удалённый файл показан")
	}
}

func multipartUpload(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatal(err)
		}
		_, _ = part.Write(content)
	}
	_ = mw.Close()
	r := httptest.NewRequest(http.MethodPost, "/dashboard/upload", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func TestUpload(t *testing.T) {
	token := signToken(t, 1, "USER")

	t.Run("success", func(t *testing.T) {
		api := &fakeAPI{}
		rec := httptest.NewRecorder()
		newDashboardRouter(api).ServeHTTP(rec, withSession(t, multipartUpload(t, "data.csv", []byte("a,b\n1,2\n")), token))

		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/dashboard?uploaded=1" {
			t.Errorf("status = %d, Location = %q", rec.Code, rec.Header().Get("Location"))
		}
		if len(api.uploaded) != 1 || api.uploaded[0] != "data.csv" {
			t.Errorf("uploaded = %v", api.uploaded)
		}
	})

	t.Run("no file", func(t *testing.T) {
		api := &fakeAPI{}
		rec := httptest.NewRecorder()
		newDashboardRouter(api).ServeHTTP(rec, withSession(t, multipartUpload(t, "", nil), token))

		if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), service.KeyNoFileSelected) {
			t.Errorf("status = %d, ожидалась ошибка выбора файла", rec.Code)
		}
		if len(api.uploaded) != 0 {
			t.Error("запрос загрузки отправлен без файла")
		}
	})

	t.Run("too large", func(t *testing.T) {
		api := &fakeAPI{}
		rec := httptest.NewRecorder()
		newDashboardRouter(api).ServeHTTP(rec, withSession(t, multipartUpload(t, "big.csv", bytes.Repeat([]byte("x"), 4096)), token))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
		if len(api.uploaded) != 0 {
			t.Error("слишком большой файл отправлен")
		}
	})
}

func TestContent(t *testing.T) {
	token := signToken(t, 1, "USER")

	var row model.Row
	if err := row.UnmarshalJSON([]byte(`{"name":"x","qty":3}`)); err != nil {
		t.Fatal(err)
	}
	api := &fakeAPI{rows: []model.Row{row}}

	rec := httptest.NewRecorder()
	newDashboardRouter(api).ServeHTTP(rec, withSession(t, httptest.NewRequest(http.MethodGet, "/dashboard/files/5", nil), token))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "qty") {
		t.Errorf("status = %d, колонки не показаны", rec.Code)
	}

	api.rowsErr = errors.New("broken")
	rec = httptest.NewRecorder()
	newDashboardRouter(api).ServeHTTP(rec, withSession(t, httptest.NewRequest(http.MethodGet, "/dashboard/files/5", nil), token))
	if !strings.Contains(rec.Body.String(), service.KeyLoadContentFailed) {
		t.Error("нет сообщения об ошибке загрузки содержимого")
	}
}

func TestDelete_RequiresConfirmation(t *testing.T) {
	token := signToken(t, 1, "USER")
	api := &fakeAPI{}
	router := newDashboardRouter(api)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, withSession(t, formRequest(http.MethodPost, "/dashboard/files/3/delete", url.Values{}), token))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if len(api.deleted) != 0 {
		t.Fatal("удаление отправлено без подтверждения")
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, withSession(t, formRequest(http.MethodPost, "/dashboard/files/3/delete", url.Values{"confirm": {"yes"}}), token))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/dashboard" {
		t.Errorf("status = %d, Location = %q", rec.Code, rec.Header().Get("Location"))
	}
	if len(api.deleted) != 1 || api.deleted[0] != 3 {
		t.Errorf("deleted = %v", api.deleted)
	}
}

func TestSafeReturn(t *testing.T) {
	tests := map[string]string{
		"/admin":          "/admin",
		"":                "/",
		"//evil":          "/",
		"/\\evil":         "/",
		"https://evil.io": "/",
	}
	for in, want := range tests {
		if got := safeReturn(in, "/"); got != want {
			t.Errorf("safeReturn(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestForbiddenHandler_ScriptRequestGetsJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(guard.HeaderScriptRequest, "1")
	rec := httptest.NewRecorder()
	ForbiddenHandler(testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}
}
