package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"library-circulation/internal/domain/actor"
	"library-circulation/pkg/id"
)

// rules are the tags request structs use beyond validator's built-ins.
var rules = map[string]validator.Func{
	"hex32": func(fl validator.FieldLevel) bool { return id.Valid(fl.Field().String()) },

	// non-negative, at most two decimal places
	"money": func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && !d.IsNegative() && d.Equal(d.Truncate(2))
	},

	// canonical lowercase spelling only
	"role": func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		r, ok := actor.ParseRole(s)
		return ok && string(r) == s
	},
}

// messages renders a failed tag; param is the tag's argument.
var messages = map[string]func(param string) string{
	"required": func(string) string { return "is required" },
	"hex32":    func(string) string { return "must be 32-char lowercase hex" },
	"money":    func(string) string { return "must be a non-negative amount with at most 2 decimal places" },
	"role":     func(string) string { return "must be one of student, faculty, other, librarian, admin" },
	"datetime": func(string) string { return "must be a date formatted YYYY-MM-DD" },
	"oneof":    func(p string) string { return "must be one of " + p },
	"gt":       func(p string) string { return "must be greater than " + p },
	"gte":      func(p string) string { return "must be greater than or equal to " + p },
	"lt":       func(p string) string { return "must be less than " + p },
	"lte":      func(p string) string { return "must be less than or equal to " + p },
	"min":      func(p string) string { return "must be at least " + p + " characters" },
	"max":      func(p string) string { return "must be at most " + p + " characters" },
	"eqfield":  func(p string) string { return "must match " + p },
}

type CustomValidator struct{ v *validator.Validate }

func NewValidator() *CustomValidator {
	v := validator.New()
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	return &CustomValidator{v: v}
}

func (cv *CustomValidator) Validate(i any) error { return cv.v.Struct(i) }

// ToFieldErrors turns validator output into response details. Any other
// error becomes a single detail on field "_".
func ToFieldErrors(err error) []FieldError {
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ve))
	for _, e := range ve {
		msg := e.Tag() + " validation failed"
		if render, ok := messages[e.Tag()]; ok {
			msg = render(e.Param())
		}
		out = append(out, FieldError{Field: e.Field(), Message: msg})
	}
	return out
}
