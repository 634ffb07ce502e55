package employee

import (
	"testing"

	"github.com/hitoshi/ems/internal/model"
)

func TestPhonePattern(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"+1234567890", true},
		{"1234567890", true},
		{"+9", true},
		{"+1234567890123456", true},
		{"+12345678901234567", false},
		{"+0123456789", false},
		{"abc", false},
		{"", false},
		{"+1 234 567", false},
	}
	for _, tt := range tests {
		if got := phonePattern.MatchString(tt.phone); got != tt.want {
			t.Errorf("phonePattern(%q) = %v, want %v", tt.phone, got, tt.want)
		}
	}
}

func TestValidator_ReportsAllFieldsSorted(t *testing.T) {
	v := NewValidator()
	in := CreateInput{
		Department:  "Legal",
		Salary:      floatPtr(-1),
		PhoneNumber: "abc",
	}

	err := v.Struct(in)
	apiErr := assertAPIErrorCode(t, err, model.ErrCodeValidation)

	for _, f := range []string{"employeeId", "userId", "department", "position", "salary", "phoneNumber"} {
		if !apiErr.HasField(f) {
			t.Errorf("expected field %q in %+v", f, apiErr.Fields)
		}
	}
	for i := 1; i < len(apiErr.Fields); i++ {
		if apiErr.Fields[i-1].Field > apiErr.Fields[i].Field {
			t.Errorf("fields not sorted: %+v", apiErr.Fields)
			break
		}
	}
}

func TestValidator_Messages(t *testing.T) {
	v := NewValidator()
	in := validCreateInput()
	in.Department = "Legal"

	apiErr := assertAPIErrorCode(t, v.Struct(in), model.ErrCodeValidation)
	if len(apiErr.Fields) != 1 {
		t.Fatalf("fields = %+v, want 1", apiErr.Fields)
	}
	if apiErr.Fields[0].Message != "Invalid department" {
		t.Errorf("Message = %q, want %q", apiErr.Fields[0].Message, "Invalid department")
	}
	if apiErr.Message != "Validation errors: department" {
		t.Errorf("APIError.Message = %q", apiErr.Message)
	}
}

func TestValidator_UpdateInputOptionalFields(t *testing.T) {
	v := NewValidator()

	if err := v.Struct(UpdateInput{}); err != nil {
		t.Errorf("empty update must be valid, got %v", err)
	}

	zero := 0.0
	if err := v.Struct(UpdateInput{Salary: &zero}); err != nil {
		t.Errorf("salary 0 must be valid, got %v", err)
	}

	bad := model.EmployeeStatus("retired")
	apiErr := assertAPIErrorCode(t, v.Struct(UpdateInput{Status: &bad}), model.ErrCodeValidation)
	if !apiErr.HasField("status") {
		t.Errorf("expected status field error, got %+v", apiErr.Fields)
	}
}

func TestValidator_SalaryUpperBound(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name   string
		salary float64
		valid  bool
	}{
		{"上限ちょうど", 9999999999.99, true},
		{"上限超過", 10000000000, false},
		{"0", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validCreateInput()
			in.Salary = floatPtr(tt.salary)
			err := v.Struct(in)
			if tt.valid {
				if err != nil {
					t.Errorf("salary %v must be valid, got %v", tt.salary, err)
				}
				return
			}
			apiErr := assertAPIErrorCode(t, err, model.ErrCodeValidation)
			if !apiErr.HasField("salary") {
				t.Fatalf("expected salary field error, got %+v", apiErr.Fields)
			}
			if want := "salary must be at most 9999999999.99"; apiErr.Fields[0].Message != want {
				t.Errorf("Message = %q, want %q", apiErr.Fields[0].Message, want)
			}
		})
	}

	over := 1e10
	if err := v.Struct(UpdateInput{Salary: &over}); err == nil {
		t.Error("update salary over the bound must be rejected")
	}
}

func TestValidator_EmptyPositionMessage(t *testing.T) {
	v := NewValidator()
	empty := ""
	apiErr := assertAPIErrorCode(t, v.Struct(UpdateInput{Position: &empty}), model.ErrCodeValidation)
	if apiErr.Fields[0].Message != "position is required" {
		t.Errorf("Message = %q, want %q", apiErr.Fields[0].Message, "position is required")
	}
}
