package validator

import (
	"context"
	"errors"
	"net/http"

	"marketplace/internal/repository"
	"marketplace/internal/usecase"

	"github.com/go-playground/validator/v10"
)

var (
	// 入力が不正
	ErrInvalidInput = errors.New("invalid input")

	// emailが既に使用済み
	ErrEmailAlreadyUsed = errors.New("email already used")
)

type authValidator struct {
	users repository.UserRepository
	v     *validator.Validate
}

// Usecaseは interface を依存注入
func NewAuthValidator(users repository.UserRepository) usecase.AuthValidator {
	return &authValidator{users: users, v: validator.New()}
}

// サインアップの入力を検証
func (a *authValidator) ValidateRegister(ctx context.Context, req usecase.AuthRegisterRequest) error {
	if err := a.v.Struct(req); err != nil {
		return toInvalidInput(err)
	}

	// email重複チェック（DBが必要）
	u, err := a.users.FindByEmail(ctx, req.Email)
	if err == nil && u != nil {
		return &usecase.HTTPError{Status: http.StatusConflict, Message: "email already used", Err: ErrEmailAlreadyUsed}
	}
	return nil
}

// ログインの入力を検証
func (a *authValidator) ValidateLogin(ctx context.Context, req usecase.AuthLoginRequest) error {
	if err := a.v.Struct(req); err != nil {
		return toInvalidInput(err)
	}
	return nil
}
