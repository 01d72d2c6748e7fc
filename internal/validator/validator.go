package validator

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ValidationError is one field-level failure.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

var (
	courseCodeRe = regexp.MustCompile(`^[A-Z]{2,6}[0-9]{0,4}$`)
	pinRe        = regexp.MustCompile(`^[0-9]{4,8}$`)
)

// BusinessValidator handles struct tag and business rule validation.
type BusinessValidator struct {
	validate *validator.Validate
}

func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate runs the struct tag rules on any request.
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return bv.toValidationErrors(err)
	}
	return nil
}

// ValidateAssessmentWindow checks that the availability window is
// coherent: a close date, when present, must not precede the open date.
func (bv *BusinessValidator) ValidateAssessmentWindow(openDate time.Time, closeDate *time.Time) ValidationErrors {
	var errors ValidationErrors

	if closeDate != nil && closeDate.Before(openDate) {
		errors = append(errors, ValidationError{
			Field:   "close_date",
			Message: "must not be before the open date",
			Value:   closeDate,
			Rule:    "window",
		})
	}

	return errors
}

// ValidateQuestionShape checks type-dependent question rules that tags
// cannot express: MCQ questions need options and a correct label that
// one of the options actually carries.
func (bv *BusinessValidator) ValidateQuestionShape(req *QuestionCreateRequest) ValidationErrors {
	var errors ValidationErrors

	switch strings.ToUpper(req.Type) {
	case "MCQ":
		if len(req.Options) == 0 {
			errors = append(errors, ValidationError{
				Field:   "options",
				Message: "MCQ questions need at least two options",
				Rule:    "question_shape",
			})
		} else if len(req.Options) < 2 {
			errors = append(errors, ValidationError{
				Field:   "options",
				Message: "MCQ questions need at least two options",
				Value:   len(req.Options),
				Rule:    "question_shape",
			})
		}

		seen := make(map[string]bool)
		for i, opt := range req.Options {
			label := strings.ToUpper(strings.TrimSpace(opt.Label))
			if seen[label] {
				errors = append(errors, ValidationError{
					Field:   fmt.Sprintf("options[%d].label", i),
					Message: "duplicate option label",
					Value:   opt.Label,
					Rule:    "question_shape",
				})
			}
			seen[label] = true
		}

		if req.CorrectOption != nil {
			want := strings.ToUpper(strings.TrimSpace(*req.CorrectOption))
			if !seen[want] {
				errors = append(errors, ValidationError{
					Field:   "correct_option",
					Message: "no option carries this label",
					Value:   *req.CorrectOption,
					Rule:    "question_shape",
				})
			}
		}
	case "TEXT", "CODE":
		if len(req.Options) > 0 {
			errors = append(errors, ValidationError{
				Field:   "options",
				Message: "only MCQ questions carry options",
				Value:   len(req.Options),
				Rule:    "question_shape",
			})
		}
	}

	return errors
}

func (bv *BusinessValidator) registerBusinessRules() {
	// Course codes look like "CS101" or "MATH2".
	bv.validate.RegisterValidation("course_code", func(fl validator.FieldLevel) bool {
		return courseCodeRe.MatchString(fl.Field().String())
	})

	// Portal PINs are short numeric codes.
	bv.validate.RegisterValidation("portal_pin", func(fl validator.FieldLevel) bool {
		return pinRe.MatchString(fl.Field().String())
	})

	bv.validate.RegisterValidation("assessment_kind", func(fl validator.FieldLevel) bool {
		switch strings.ToUpper(fl.Field().String()) {
		case "ASSIGNMENT", "QUIZ", "EXAM":
			return true
		}
		return false
	})

	bv.validate.RegisterValidation("question_type", func(fl validator.FieldLevel) bool {
		switch strings.ToUpper(fl.Field().String()) {
		case "MCQ", "CODE", "TEXT":
			return true
		}
		return false
	})

	bv.validate.RegisterValidation("option_label", func(fl validator.FieldLevel) bool {
		switch strings.ToUpper(strings.TrimSpace(fl.Field().String())) {
		case "A", "B", "C", "D":
			return true
		}
		return false
	})

	// Duration of zero means untimed.
	bv.validate.RegisterValidation("attempt_duration", func(fl validator.FieldLevel) bool {
		d := fl.Field().Int()
		return d >= 0 && d <= 600
	})

	bv.validate.RegisterValidation("max_attempts", func(fl validator.FieldLevel) bool {
		n := fl.Field().Int()
		return n >= 0 && n <= 10
	})

	bv.validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		name := strings.TrimSpace(fl.Field().String())
		return len(name) >= 2 && len(name) <= 64
	})
}

func (bv *BusinessValidator) toValidationErrors(err error) ValidationErrors {
	var errors ValidationErrors

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{{Field: "request", Message: err.Error()}}
	}

	for _, fe := range fieldErrs {
		errors = append(errors, ValidationError{
			Field:   fe.Field(),
			Message: bv.errorMessage(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return errors
}

func (bv *BusinessValidator) errorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "course_code":
		return "must be 2-6 uppercase letters optionally followed by digits"
	case "portal_pin":
		return "must be a 4-8 digit code"
	case "assessment_kind":
		return "must be ASSIGNMENT, QUIZ, or EXAM"
	case "question_type":
		return "must be MCQ, CODE, or TEXT"
	case "option_label":
		return "must be A, B, C, or D"
	case "attempt_duration":
		return "must be between 0 and 600 minutes"
	case "max_attempts":
		return "must be between 0 and 10"
	case "username":
		return "must be between 2 and 64 characters"
	default:
		return fmt.Sprintf("validation failed for rule '%s'", err.Tag())
	}
}
