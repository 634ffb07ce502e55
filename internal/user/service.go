// Package user はユーザー（ログインアカウント）管理のドメインロジックを提供する。
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/ems/internal/model"
	"github.com/hitoshi/ems/internal/policy"
	"github.com/hitoshi/ems/internal/repository"
)

// CreateInput はユーザー作成リクエストの入力。
type CreateInput struct {
	Username  string     `json:"username" validate:"required,min=3,max=30,alphanum"`
	Email     string     `json:"email" validate:"required,email,max=255"`
	Password  string     `json:"password" validate:"required,min=6,max=72"`
	FirstName string     `json:"firstName" validate:"required,max=50"`
	LastName  string     `json:"lastName" validate:"required,max=50"`
	Role      model.Role `json:"role" validate:"omitempty,oneof=admin manager employee"`
}

// Service はユーザー管理のサービス層。
type Service struct {
	users      repository.UserRepository
	validate   *validator.Validate
	bcryptCost int
	now        func() time.Time
	newID      func() string
}

// NewService はServiceの新しいインスタンスを生成する。
// bcryptCostが範囲外の場合はbcrypt.DefaultCostを使う。
func NewService(users repository.UserRepository, bcryptCost int) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})

	return &Service{
		users:      users,
		validate:   v,
		bcryptCost: bcryptCost,
		now:        time.Now,
		newID:      func() string { return uuid.NewString() },
	}
}

// Create はユーザーを作成する。adminのみ。
// roleを省略した場合はemployeeとして作成する。
// username、emailの重複はストアの一意インデックスで検出する。
func (s *Service) Create(ctx context.Context, caller model.Caller, in CreateInput) (*model.User, error) {
	if !policy.CanCreateUser(caller.Role) {
		return nil, model.NewAccessDeniedError()
	}
	return s.create(ctx, in)
}

// Provision は権限判定を行わずにユーザーを作成する。初期データ投入用。
func (s *Service) Provision(ctx context.Context, in CreateInput) (*model.User, error) {
	return s.create(ctx, in)
}

func (s *Service) create(ctx context.Context, in CreateInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if err := s.validateInput(in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}

	role := in.Role
	if role == "" {
		role = model.RoleEmployee
	}

	now := s.now()
	u := &model.User{
		ID:           s.newID(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	slog.Info("user created",
		slog.String("user_id", u.ID),
		slog.String("username", u.Username),
		slog.String("role", string(u.Role)),
	)
	return u, nil
}

func (s *Service) validateInput(in CreateInput) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("入力の検証に失敗しました: %w", err)
	}

	fields := make([]model.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, model.FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return model.NewValidationError(fields)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Please enter a valid email"
	case "alphanum":
		return "Username can only contain letters and numbers"
	case "oneof":
		return "Invalid role"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
