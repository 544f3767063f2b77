package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/test-session-service/internal/models"
)

// ValidationError represents a single field validation failure
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "invalid request"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("%s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("%d field errors", len(ve))
}

// Validator wraps go-playground/validator with the service's custom rules
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
	v.registerBusinessRules()
	return v
}

// Validate runs struct tags and, for known request types, business rules.
// The returned error is always ValidationErrors when non-nil.
func (v *Validator) Validate(s interface{}) error {
	var errs ValidationErrors

	if err := v.validate.Struct(s); err != nil {
		errs = append(errs, ToValidationErrors(err)...)
	}

	if req, ok := s.(*QuestionCreateRequest); ok {
		errs = append(errs, v.validateQuestionBusinessRules(req)...)
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ToValidationErrors converts go-playground errors into ValidationErrors
func ToValidationErrors(err error) ValidationErrors {
	var out ValidationErrors

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{{Field: "request", Message: err.Error(), Rule: "invalid"}}
	}

	for _, fe := range validationErrs {
		out = append(out, ValidationError{
			Field:   toSnakeCase(fe.Field()),
			Message: errorMessage(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return out
}

func (v *Validator) registerBusinessRules() {
	v.validate.RegisterValidation("question_type", func(fl validator.FieldLevel) bool {
		return models.QuestionType(fl.Field().String()).IsValid()
	})

	v.validate.RegisterValidation("not_blank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// validateQuestionBusinessRules checks option/answer consistency per question type
func (v *Validator) validateQuestionBusinessRules(req *QuestionCreateRequest) ValidationErrors {
	var errs ValidationErrors

	switch req.Type {
	case models.MultipleChoice:
		options := req.CleanOptions()
		if len(options) < 2 {
			errs = append(errs, ValidationError{
				Field:   "options",
				Message: "multiple-choice questions need at least 2 options",
				Value:   len(options),
				Rule:    "business_logic",
			})
		}
		if req.Answer == nil || strings.TrimSpace(*req.Answer) == "" {
			errs = append(errs, ValidationError{
				Field:   "answer",
				Message: "multiple-choice questions need a correct answer",
				Rule:    "business_logic",
			})
			break
		}
		found := false
		for _, opt := range options {
			if opt == *req.Answer {
				found = true
				break
			}
		}
		if !found {
			errs = append(errs, ValidationError{
				Field:   "answer",
				Message: "must match one of the options",
				Value:   *req.Answer,
				Rule:    "business_logic",
			})
		}
	case models.OpenEnded:
		if len(req.Options) > 0 || req.Answer != nil {
			errs = append(errs, ValidationError{
				Field:   "options",
				Message: "open-ended questions cannot have options or an answer key",
				Rule:    "business_logic",
			})
		}
	}

	return errs
}

func errorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "question_type":
		return "must be multiple-choice or open-ended"
	case "not_blank":
		return "cannot be blank"
	case "uuid4":
		return "must be a valid id"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func toSnakeCase(s string) string {
	var b strings.Builder
	var prev rune
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			if prev >= 'a' && prev <= 'z' {
				b.WriteByte('_')
			}
			prev = r
			r += 'a' - 'A'
		} else {
			prev = r
		}
		b.WriteRune(r)
	}
	return b.String()
}
