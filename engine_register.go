package sessionkit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// FieldError describes one rejected registration field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned by Register when the request breaks an input rule. It
// matches ErrValidationFailed under errors.Is.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidationFailed.Error()
	}
	return ErrValidationFailed.Error() + ": " + e.Fields[0].Message
}

// Is reports whether target is ErrValidationFailed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

type registerInput struct {
	FullName string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Register creates a new identity. The email is stored normalized and the password as an
// Argon2id digest. New identities start unverified, with no groups and an empty role.
//
// Register returns a *ValidationError for bad input and ErrDuplicateIdentity when the
// email is taken. It does not start a session.
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (Identity, error) {
	if e == nil || e.identities == nil || e.passwordHash == nil || e.validate == nil {
		return Identity{}, ErrEngineNotReady
	}

	in := registerInput{
		FullName: strings.TrimSpace(req.FullName),
		Email:    normalizeEmail(req.Email),
		Password: req.Password,
	}
	if verr := e.validateRegistration(in); verr != nil {
		return Identity{}, verr
	}

	_, found, err := e.identities.FindByEmail(ctx, in.Email)
	if err != nil {
		return Identity{}, e.storeError("find_identity", err)
	}
	if found {
		e.metricInc(MetricRegisterDuplicate)
		return Identity{}, ErrDuplicateIdentity
	}

	digest, err := e.passwordHash.Hash(in.Password)
	if err != nil {
		return Identity{}, &ValidationError{Fields: []FieldError{{Field: "password", Message: err.Error()}}}
	}

	rec := IdentityRecord{
		ID:           uuid.NewString(),
		FullName:     in.FullName,
		Email:        in.Email,
		PasswordHash: digest,
		Groups:       []string{},
		CreatedAt:    e.now().UTC(),
	}
	if err := e.identities.Insert(ctx, rec); err != nil {
		if errors.Is(err, ErrDuplicateIdentity) {
			e.metricInc(MetricRegisterDuplicate)
			return Identity{}, ErrDuplicateIdentity
		}
		return Identity{}, e.storeError("insert_identity", err)
	}

	e.metricInc(MetricRegisterSuccess)
	return rec.Identity(), nil
}

func (e *Engine) validateRegistration(in registerInput) *ValidationError {
	var fields []FieldError

	if err := e.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fields = append(fields, fieldError(fe))
			}
		}
	}
	rules := []struct {
		field string
		value string
		min   int
	}{
		{"full_name", in.FullName, e.config.Registration.MinFullNameLength},
		{"password", in.Password, e.config.Registration.MinPasswordLength},
	}
	for _, r := range rules {
		if r.value == "" || hasField(fields, r.field) {
			continue
		}
		if err := e.validate.Var(r.value, fmt.Sprintf("min=%d", r.min)); err != nil {
			fields = append(fields, FieldError{
				Field:   r.field,
				Message: fmt.Sprintf("%s must be at least %d characters", r.field, r.min),
			})
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

func fieldError(fe validator.FieldError) FieldError {
	name := map[string]string{
		"FullName": "full_name",
		"Email":    "email",
		"Password": "password",
	}[fe.Field()]
	switch fe.Tag() {
	case "required":
		return FieldError{Field: name, Message: name + " is required"}
	case "email":
		return FieldError{Field: name, Message: name + " must be a valid email address"}
	default:
		return FieldError{Field: name, Message: name + " is invalid"}
	}
}

func hasField(fields []FieldError, name string) bool {
	for _, f := range fields {
		if f.Field == name {
			return true
		}
	}
	return false
}
