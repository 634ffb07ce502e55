// Package auth はログイン、アクセストークンの発行と検証を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/ems/internal/model"
	"github.com/hitoshi/ems/internal/repository"
)

// LoginResult はログイン成功時に返すユーザーとトークン。
type LoginResult struct {
	User  *model.User
	Token string
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	users  repository.UserRepository
	tokens *TokenIssuer
}

// NewService はServiceを生成する。
func NewService(users repository.UserRepository, tokens *TokenIssuer) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
	}
}

// Login はメールアドレスとパスワードを検証し、アクセストークンを発行する。
// 未登録、パスワード不一致、無効化済みのユーザーはすべて同じINVALID_CREDENTIALSを返す。
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, model.NewValidationError(missingCredentialFields(email, password))
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, model.NewInvalidCredentialsError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			slog.Error("password hash comparison failed",
				slog.String("user_id", user.ID),
				slog.String("error", err.Error()),
			)
		}
		return nil, model.NewInvalidCredentialsError()
	}

	token, _, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("トークンの発行に失敗しました: %w", err)
	}

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)

	return &LoginResult{User: user, Token: token}, nil
}

// Authenticate はBearerトークンを検証し、呼び出し元を返す。
// トークン発行後に削除または無効化されたユーザーは未認証として扱う。
func (s *Service) Authenticate(ctx context.Context, token string) (model.Caller, error) {
	caller, err := s.tokens.Parse(token)
	if err != nil {
		return model.Caller{}, model.NewUnauthorizedError("Token is not valid")
	}

	user, err := s.users.FindByID(ctx, caller.UserID)
	if err != nil {
		return model.Caller{}, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil || !user.IsActive {
		return model.Caller{}, model.NewUnauthorizedError("Token is not valid")
	}

	return model.Caller{UserID: user.ID, Role: user.Role}, nil
}

// Me は呼び出し元のユーザー情報を返す。
func (s *Service) Me(ctx context.Context, caller model.Caller) (*model.User, error) {
	user, err := s.users.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

func missingCredentialFields(email, password string) []model.FieldError {
	var fields []model.FieldError
	if email == "" {
		fields = append(fields, model.FieldError{Field: "email", Message: "Email is required"})
	}
	if password == "" {
		fields = append(fields, model.FieldError{Field: "password", Message: "Password is required"})
	}
	return fields
}
