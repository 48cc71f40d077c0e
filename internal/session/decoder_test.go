package session

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestDecodeKnownClaims(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"id":           1,
		"email":        "a@b.com",
		"role":         "ADMIN",
		"fullName":     "Ani Admin",
		"profileImage": "https://cdn.example/ani.png",
		"iat":          1700000000,
	})

	id, ok := Decode(token)
	if !ok {
		t.Fatal("Decode() = false, ожидалась Identity")
	}
	if id.ID != 1 || id.Email != "a@b.com" || id.Role != "ADMIN" || id.FullName != "Ani Admin" {
		t.Errorf("Identity = %+v", id)
	}

	// Известные поля не дублируются в Extra
	for _, k := range []string{"id", "email", "role", "fullName"} {
		if _, dup := id.Extra[k]; dup {
			t.Errorf("claim %q не должен попадать в Extra", k)
		}
	}
	if id.ProfileImage() != "https://cdn.example/ani.png" {
		t.Errorf("ProfileImage() = %q", id.ProfileImage())
	}
	if n, ok := id.Extra["iat"].(json.Number); !ok || n.String() != "1700000000" {
		t.Errorf("Extra[iat] = %#v, ожидалось json.Number 1700000000", id.Extra["iat"])
	}
}

func TestDecodeNumericStringID(t *testing.T) {
	id, ok := Decode(signToken(t, jwt.MapClaims{"id": "42", "role": "USER", "email": "u@x.id"}))
	if !ok || id.ID != 42 {
		t.Errorf("Decode() = %+v, %v, ожидался id 42", id, ok)
	}
}

func TestDecodeExponentID(t *testing.T) {
	seg := func(s string) string { return base64.RawURLEncoding.EncodeToString([]byte(s)) }
	token := seg(`{"alg":"HS256"}`) + "." + seg(`{"id":1e3,"role":"USER"}`) + ".sig"
	if id, ok := Decode(token); !ok || id.ID != 1000 {
		t.Errorf("Decode() = %+v, %v, ожидался id 1000", id, ok)
	}
}

func TestDecodeFailures(t *testing.T) {
	seg := func(s string) string { return base64.RawURLEncoding.EncodeToString([]byte(s)) }
	header := seg(`{"alg":"HS256","typ":"JWT"}`)

	tests := []struct {
		name  string
		token string
	}{
		{name: "пустая строка", token: ""},
		{name: "один сегмент", token: "abc"},
		{name: "четыре сегмента", token: "a.b.c.d"},
		{name: "пустой payload", token: header + "..sig"},
		{name: "не base64url", token: header + ".%%%.sig"},
		{name: "не JSON", token: header + "." + seg("not json") + ".sig"},
		{name: "JSON-массив", token: header + "." + seg(`[1,2]`) + ".sig"},
		{name: "JSON null", token: header + "." + seg(`null`) + ".sig"},
		{name: "нечисловой id", token: header + "." + seg(`{"id":"abc","role":"USER"}`) + ".sig"},
		{name: "дробный id", token: header + "." + seg(`{"id":1.5}`) + ".sig"},
		{name: "id больше int64", token: header + "." + seg(`{"id":1e30}`) + ".sig"},
		{name: "id меньше int64", token: header + "." + seg(`{"id":-1e30}`) + ".sig"},
		{name: "id 2^63", token: header + "." + seg(`{"id":9.223372036854775808e18}`) + ".sig"},
		{name: "role не строка", token: header + "." + seg(`{"id":1,"role":7}`) + ".sig"},
		{name: "хвост после объекта", token: header + "." + seg(`{"id":1} {}`) + ".sig"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if id, ok := Decode(tt.token); ok {
				t.Errorf("Decode(%q) = %+v, ожидался false", tt.token, id)
			}
		})
	}
}

func TestDecodePaddedSegment(t *testing.T) {
	payload := base64.URLEncoding.EncodeToString([]byte(`{"id":7,"role":"USER"}`))
	id, ok := Decode("h." + payload + ".s")
	if !ok || id.ID != 7 {
		t.Errorf("Decode() с padding = %+v, %v", id, ok)
	}
}
