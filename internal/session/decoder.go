// Пакет session — состояние аутентификации консоли: декодирование
// bearer-токена в Identity и контекст сессии с подписками.
//
// Подпись токена не проверяется. Identity используется только для
// отображения и навигации; авторизацию выполняет upload-API.
package session

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bigkaa/goartstore/upload-console/internal/domain/model"
)

// Имена известных claims.
const (
	claimID       = "id"
	claimEmail    = "email"
	claimRole     = "role"
	claimFullName = "fullName"
)

// segmentParser декодирует base64url-сегменты JWT, допуская padding.
var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// Decode извлекает Identity из payload токена.
// Любая ошибка (не три сегмента, не base64url, не JSON-объект,
// неверный тип известного claim) даёт false, а не частичную Identity.
func Decode(token string) (model.Identity, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[1] == "" {
		return model.Identity{}, false
	}

	payload, err := segmentParser.DecodeSegment(parts[1])
	if err != nil {
		return model.Identity{}, false
	}

	claims, ok := parseClaims(payload)
	if !ok {
		return model.Identity{}, false
	}

	var id model.Identity
	if id.ID, ok = int64Claim(claims[claimID]); !ok {
		return model.Identity{}, false
	}
	if id.Email, ok = stringClaim(claims[claimEmail]); !ok {
		return model.Identity{}, false
	}
	if id.Role, ok = stringClaim(claims[claimRole]); !ok {
		return model.Identity{}, false
	}
	if id.FullName, ok = stringClaim(claims[claimFullName]); !ok {
		return model.Identity{}, false
	}

	for _, k := range []string{claimID, claimEmail, claimRole, claimFullName} {
		delete(claims, k)
	}
	id.Extra = claims
	return id, true
}

// parseClaims разбирает payload как JSON-объект, сохраняя числа как json.Number.
func parseClaims(payload []byte) (map[string]any, bool) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	var claims map[string]any
	if err := dec.Decode(&claims); err != nil || claims == nil {
		return nil, false
	}
	// Хвост после объекта — не JSON-объект
	if dec.More() {
		return nil, false
	}
	return claims, true
}

// int64Claim принимает JSON-число или числовую строку. Отсутствие claim — 0.
func int64Claim(v any) (int64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, true
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, true
		}
		// Целое в записи с экспонентой (1e3) допустимо, если помещается в int64.
		f, err := t.Float64()
		if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, false
		}
		return int64(f), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// stringClaim принимает строку. Отсутствие claim — пустая строка.
func stringClaim(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", true
	case string:
		return t, true
	default:
		return "", false
	}
}
