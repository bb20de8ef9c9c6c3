package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// AccountForm carries the fields submitted on signup and account update.
// Password may be left empty on update to keep the current one.
type AccountForm struct {
	LoginID  string `validate:"required"`
	Name     string `validate:"required"`
	Email    string `validate:"required,email,max=254"`
	Password string
}

// Validate runs the struct rules and then the field-specific checks.
// requirePassword is true on signup.
func (f AccountForm) Validate(requirePassword bool) error {
	err := validate.Struct(f)
	if err != nil {
		return formatValidationError(err)
	}

	err = ValidateLoginID(f.LoginID)
	if err != nil {
		return err
	}

	err = ValidateName(f.Name)
	if err != nil {
		return err
	}

	err = ValidateEmail(f.Email)
	if err != nil {
		return err
	}

	if f.Password == "" && !requirePassword {
		return nil
	}

	return ValidatePassword(f.Password)
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return err
	}

	e := validationErrs[0]
	switch e.Tag() {
	case "required":
		return fmt.Errorf("%s is required", fieldLabel(e.Field()))
	case "email":
		return errors.New("invalid email address format")
	case "max":
		return fmt.Errorf("%s is too long", fieldLabel(e.Field()))
	default:
		return fmt.Errorf("%s is invalid", fieldLabel(e.Field()))
	}
}

func fieldLabel(field string) string {
	switch field {
	case "LoginID":
		return "ID"
	case "Email":
		return "email"
	case "Name":
		return "name"
	default:
		return field
	}
}
