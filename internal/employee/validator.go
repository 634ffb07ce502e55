package employee

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/ems/internal/model"
)

// phonePattern は国際電話番号の形式（先頭の+は任意、1桁目は1-9、以降最大15桁）。
var phonePattern = regexp.MustCompile(`^\+?[1-9]\d{0,15}$`)

// Validator は社員入力のバリデーションを行う。
// go-playground/validatorにカスタムタグ（department, empstatus, phone）を登録して使う。
type Validator struct {
	v *validator.Validate
}

// NewValidator はカスタムルールを登録したValidatorを生成する。
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// エラーのフィールド名にはJSONキーを使う
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("department", func(fl validator.FieldLevel) bool {
		return model.Department(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("empstatus", func(fl validator.FieldLevel) bool {
		return model.EmployeeStatus(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})

	return &Validator{v: v}
}

// Struct は入力を検証し、違反があればVALIDATION_ERRORを返す。
func (val *Validator) Struct(input any) error {
	err := val.v.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("入力の検証に失敗しました: %w", err)
	}

	fields := make([]model.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, model.FieldError{
			Field:   fieldPath(fe),
			Message: fieldMessage(fe),
		})
	}
	return model.NewValidationError(fields)
}

// fieldPath は先頭の構造体名を除いたフィールドパスを返す（例: education[0].year）。
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "department":
		return "Invalid department"
	case "empstatus":
		return "Invalid status"
	case "phone":
		return "Please enter a valid phone number"
	case "gte":
		return fmt.Sprintf("%s must be a non-negative number", fe.Field())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		if fe.Kind() == reflect.String && fe.Param() == "1" {
			return fmt.Sprintf("%s is required", fe.Field())
		}
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "uuid":
		return fmt.Sprintf("%s must be a valid id", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
