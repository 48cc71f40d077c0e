// users.go — список пользователей для администратора.
// Кеш на expirable LRU, параллельные загрузки объединяются через singleflight.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/bigkaa/goartstore/upload-console/internal/domain/model"
)

// UsersAPI — операция upload-API над пользователями.
type UsersAPI interface {
	ListUsers(ctx context.Context, token string) ([]model.UserRecord, error)
}

// usersCacheSize — максимум токенов с закешированным списком.
const usersCacheSize = 256

// UserService — загрузка и поиск пользователей.
type UserService struct {
	api    UsersAPI
	cache  *expirable.LRU[string, []model.UserRecord]
	group  singleflight.Group
	logger *slog.Logger
}

// NewUserService создаёт UserService. ttl <= 0 отключает кеширование.
func NewUserService(api UsersAPI, ttl time.Duration, logger *slog.Logger) *UserService {
	s := &UserService{
		api:    api,
		logger: logger.With(slog.String("component", "user_service")),
	}
	if ttl > 0 {
		s.cache = expirable.NewLRU[string, []model.UserRecord](usersCacheSize, nil, ttl)
	}
	return s
}

// List возвращает всех пользователей, видимых владельцу токена.
func (s *UserService) List(ctx context.Context, token string) ([]model.UserRecord, error) {
	key := cacheKey(token)
	if s.cache != nil {
		if users, ok := s.cache.Get(key); ok {
			return users, nil
		}
	}

	ch := s.group.DoChan(key, func() (any, error) {
		users, err := s.api.ListUsers(context.WithoutCancel(ctx), token)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			s.cache.Add(key, users)
		}
		return users, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			s.logger.Warn("Не удалось загрузить пользователей", slog.String("error", res.Err.Error()))
			return nil, fmt.Errorf("список пользователей: %w", res.Err)
		}
		return res.Val.([]model.UserRecord), nil
	}
}

// Search возвращает пользователей, у которых имя или email содержат term.
func (s *UserService) Search(ctx context.Context, token, term string) ([]model.UserRecord, error) {
	users, err := s.List(ctx, token)
	if err != nil {
		return nil, err
	}
	return model.FilterUsers(users, term), nil
}

// Invalidate сбрасывает кеш для токена.
func (s *UserService) Invalidate(token string) {
	if s.cache != nil {
		s.cache.Remove(cacheKey(token))
	}
}

// cacheKey — ключ кеша без хранения самого токена.
func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
