package validate

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ErrField struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Msg   string `json:"msg"`
}

type Errs []ErrField

func (e Errs) Error() string {
	var b strings.Builder
	for i, ef := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ef.Field + ": " + ef.Msg)
	}
	return b.String()
}

// Has reports whether any field failed the given rule.
func (e Errs) Has(tag string) bool {
	for _, ef := range e {
		if ef.Tag == tag {
			return true
		}
	}
	return false
}

var (
	passwordCharset = regexp.MustCompile(`^[A-Za-z\d@$!%*#?&]{8,}$`)
	symbolPattern   = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9.\-]{0,9}$`)

	v = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("strongpw", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
	_ = v.RegisterValidation("symbol", func(fl validator.FieldLevel) bool {
		return symbolPattern.MatchString(fl.Field().String())
	})
	return v
}

// StrongPassword requires at least 8 characters from letters, digits and
// @$!%*#?&, with at least one of each class.
func StrongPassword(p string) bool {
	if !passwordCharset.MatchString(p) {
		return false
	}
	return strings.ContainsAny(p, "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz") &&
		strings.ContainsAny(p, "0123456789") &&
		strings.ContainsAny(p, "@$!%*#?&")
}

// Struct validates s by its `validate` tags and returns Errs, or nil.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(Errs, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, ErrField{Field: fe.Field(), Tag: fe.Tag(), Msg: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "eqfield":
		return "must match " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "strongpw":
		return "too weak"
	case "symbol":
		return "not a ticker symbol"
	default:
		return "invalid"
	}
}
