// auth.go — вход и регистрация с валидацией форм (go-playground/validator).
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
)

// AuthAPI — операции upload-API для аутентификации.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, email, fullName, password string) error
}

// LoginForm — форма входа.
type LoginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
	Remember bool
}

// RegisterForm — форма регистрации.
type RegisterForm struct {
	Email           string `validate:"required,email"`
	FullName        string `validate:"required"`
	Password        string `validate:"required"`
	ConfirmPassword string `validate:"eqfield=Password"`
}

// AuthService — вход и регистрация.
type AuthService struct {
	api      AuthAPI
	validate *validator.Validate
	logger   *slog.Logger
}

// NewAuthService создаёт AuthService.
func NewAuthService(api AuthAPI, logger *slog.Logger) *AuthService {
	return &AuthService{
		api:      api,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With(slog.String("component", "auth_service")),
	}
}

// Login проверяет форму и возвращает токен от upload-API.
func (s *AuthService) Login(ctx context.Context, form LoginForm) (string, error) {
	form.Email = strings.TrimSpace(form.Email)
	if err := s.check(form); err != nil {
		return "", err
	}

	token, err := s.api.Login(ctx, form.Email, form.Password)
	if err != nil {
		s.logger.Info("Вход не выполнен",
			slog.String("email", form.Email),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("вход %s: %w", form.Email, err)
	}

	s.logger.Info("Пользователь вошёл", slog.String("email", form.Email))
	return token, nil
}

// Register проверяет форму и регистрирует пользователя.
// Несовпадение паролей отклоняется до обращения к API.
func (s *AuthService) Register(ctx context.Context, form RegisterForm) error {
	form.Email = strings.TrimSpace(form.Email)
	form.FullName = strings.TrimSpace(form.FullName)
	if err := s.check(form); err != nil {
		return err
	}

	if err := s.api.Register(ctx, form.Email, form.FullName, form.Password); err != nil {
		s.logger.Info("Регистрация не выполнена",
			slog.String("email", form.Email),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("регистрация %s: %w", form.Email, err)
	}

	s.logger.Info("Пользователь зарегистрирован", slog.String("email", form.Email))
	return nil
}

// check валидирует форму и переводит первую ошибку поля в ValidationError.
func (s *AuthService) check(form any) error {
	err := s.validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("валидация формы: %w", err)
	}

	fe := fieldErrs[0]
	return NewValidationError(fe.Field(), validationKey(fe.Field(), fe.Tag()))
}

// validationKey сопоставляет поле и правило ключу сообщения.
func validationKey(field, tag string) string {
	switch field {
	case "Email":
		if tag == "email" {
			return KeyEmailInvalid
		}
		return KeyEmailRequired
	case "FullName":
		return KeyFullNameRequired
	case "Password":
		return KeyPasswordRequired
	case "ConfirmPassword":
		return KeyPasswordMismatch
	}
	return "error.invalid_" + strings.ToLower(field)
}
