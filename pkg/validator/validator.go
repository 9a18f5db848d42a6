package validator

import (
	"net/url"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	azPhonePattern   = regexp.MustCompile(`^(\+994)(50|51|55|70|77|99)[0-9]{7}$`)
	azLettersPattern = regexp.MustCompile(`^[a-zA-ZəƏöÖüÜşŞçÇğĞıİ\s]+$`)
	azTextPattern    = regexp.MustCompile(`^[a-zA-Z0-9əƏöÖüÜşŞçÇğĞıİ\s.,!?;:'"()\-]+$`)
)

// socialHosts maps the social tag parameter to the accepted host suffix.
var socialHosts = map[string]string{
	"facebook":  "facebook.com",
	"instagram": "instagram.com",
	"tiktok":    "tiktok.com",
	"linkedin":  "linkedin.com",
	"youtube":   "youtube.com",
}

type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New()

	// report fields by their json name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	v.RegisterValidation("az_phone", func(fl validator.FieldLevel) bool {
		return azPhonePattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("az_letters", func(fl validator.FieldLevel) bool {
		return azLettersPattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("az_text", func(fl validator.FieldLevel) bool {
		return azTextPattern.MatchString(fl.Field().String())
	})
	v.RegisterValidation("not_blank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	v.RegisterValidation("password", validPassword)
	v.RegisterValidation("social", validSocialURL)

	return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// validPassword rejects passwords made only of digits.
func validPassword(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// validSocialURL accepts an http(s) URL whose host is the platform named by the tag param.
func validSocialURL(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}

	suffix, ok := socialHosts[fl.Param()]
	if !ok {
		return false
	}

	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return host == suffix || strings.HasSuffix(host, "."+suffix)
}

func (cv *CustomValidator) FormatValidationErrors(err error) map[string]string {
	errors := make(map[string]string)

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			field := e.Field()
			switch e.Tag() {
			case "required":
				errors[field] = field + " is required"
			case "min":
				errors[field] = field + " must be at least " + e.Param() + " characters"
			case "max":
				errors[field] = field + " must be at most " + e.Param() + " characters"
			case "gte":
				errors[field] = field + " must be greater than or equal to " + e.Param()
			case "lte":
				errors[field] = field + " must be less than or equal to " + e.Param()
			case "oneof":
				errors[field] = field + " must be one of: " + e.Param()
			case "eqfield":
				errors[field] = "Passwords do not match"
			case "az_phone":
				errors[field] = "Phone number must look like +994501234567"
			case "az_letters":
				errors[field] = field + " must contain only Azerbaijani letters"
			case "az_text":
				errors[field] = field + " contains unsupported characters"
			case "not_blank":
				errors[field] = field + " must not be blank"
			case "password":
				errors[field] = "Password must not be entirely numeric"
			case "social":
				errors[field] = field + " must be a " + e.Param() + " link"
			default:
				errors[field] = field + " is invalid"
			}
		}
	}

	return errors
}
