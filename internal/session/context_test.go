package session

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bigkaa/goartstore/upload-console/internal/tokenstore"
)

func newTestContext(t *testing.T) (*Context, *tokenstore.MemoryBackend) {
	t.Helper()
	backend := tokenstore.NewMemoryBackend()
	return New(tokenstore.New(backend, testLogger()), testLogger()), backend
}

func TestContextLoginAdmin(t *testing.T) {
	c, _ := newTestContext(t)
	token := signToken(t, jwt.MapClaims{"id": 1, "role": "ADMIN", "email": "a@b.com"})

	snap := c.Login(token, false)
	if !snap.LoggedIn() {
		t.Fatal("LoggedIn() = false после входа")
	}
	if snap.Role() != "ADMIN" {
		t.Errorf("Role() = %q, ожидалось ADMIN", snap.Role())
	}
	if c.Token() != token {
		t.Error("Token() должен вернуть сохранённый токен")
	}
}

func TestSnapshotIdentityCopiesExtra(t *testing.T) {
	c, _ := newTestContext(t)
	snap := c.Login(signToken(t, jwt.MapClaims{"id": 1, "role": "ADMIN", "tenant": "acme"}), false)

	id, ok := snap.Identity()
	if !ok {
		t.Fatal("Identity() = false после входа")
	}
	id.Extra["tenant"] = "other"
	delete(id.Extra, "role")
	id.Extra["injected"] = true

	again, _ := c.Current().Identity()
	if again.Extra["tenant"] != "acme" {
		t.Errorf("Extra[tenant] = %v, ожидалось acme", again.Extra["tenant"])
	}
	if _, ok := again.Extra["injected"]; ok {
		t.Error("правка копии попала в Snapshot")
	}
}

// TestContextLoginMalformed проверяет, что недекодируемый токен оставляет сессию анонимной.
func TestContextLoginMalformed(t *testing.T) {
	for _, token := range []string{"", "garbage", "a.b.c", "x.eyJpZCI6.y"} {
		c, _ := newTestContext(t)
		for _, remember := range []bool{true, false} {
			if snap := c.Login(token, remember); snap.LoggedIn() {
				t.Errorf("Login(%q, %v) дал активную сессию", token, remember)
			}
		}
	}
}

// TestContextLogoutClearsBoth проверяет очистку обеих областей при любом исходном состоянии.
func TestContextLogoutClearsBoth(t *testing.T) {
	c, backend := newTestContext(t)
	_ = backend.Save(tokenstore.ScopeSession, "stale-session")
	c.Login(signToken(t, jwt.MapClaims{"id": 2, "role": "USER"}), true)

	snap := c.Logout()
	if snap.LoggedIn() {
		t.Error("LoggedIn() = true после выхода")
	}
	for _, scope := range []tokenstore.Scope{tokenstore.ScopeDurable, tokenstore.ScopeSession} {
		if v, _ := backend.Load(scope); v != "" {
			t.Errorf("область %s = %q после Logout", scope, v)
		}
	}
	if c.Token() != "" {
		t.Error("Token() должен быть пустым после выхода")
	}
}

// TestContextRestoresFromStore проверяет восстановление сессии при создании.
func TestContextRestoresFromStore(t *testing.T) {
	backend := tokenstore.NewMemoryBackend()
	_ = backend.Save(tokenstore.ScopeDurable, signToken(t, jwt.MapClaims{"id": 5, "role": "USER", "email": "u@x.id"}))

	c := New(tokenstore.New(backend, testLogger()), testLogger())
	id, ok := c.Current().Identity()
	if !ok || id.ID != 5 {
		t.Errorf("Current().Identity() = %+v, %v", id, ok)
	}
}

func TestContextSubscribeOrderAndCancel(t *testing.T) {
	c, _ := newTestContext(t)
	var events []string

	cancelA := c.Subscribe(func(s Snapshot) {
		events = append(events, "a:"+boolStr(s.LoggedIn()))
	})
	c.Subscribe(func(s Snapshot) {
		// Состояние уже изменено к моменту публикации
		if c.Current().LoggedIn() != s.LoggedIn() {
			t.Error("подписчик получил Snapshot до смены состояния")
		}
		events = append(events, "b:"+boolStr(s.LoggedIn()))
	})

	c.Login(signToken(t, jwt.MapClaims{"id": 1, "role": "USER"}), false)
	cancelA()
	cancelA()
	c.Logout()

	want := []string{"a:true", "b:true", "b:false"}
	if len(events) != len(want) {
		t.Fatalf("события = %v, ожидалось %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("событие %d = %q, ожидалось %q", i, events[i], want[i])
		}
	}
}

func TestFromContext(t *testing.T) {
	c, _ := newTestContext(t)
	ctx := WithContext(t.Context(), c)
	got, ok := FromContext(ctx)
	if !ok || got != c {
		t.Error("FromContext() не вернул сохранённый Context")
	}
	if _, ok := FromContext(t.Context()); ok {
		t.Error("FromContext() пустого контекста должен вернуть false")
	}
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
