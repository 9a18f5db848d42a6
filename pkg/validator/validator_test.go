package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Phone     string `json:"phone_number" validate:"required,az_phone"`
	FullName  string `json:"full_name" validate:"required,max=50,az_letters"`
	Comment   string `json:"comment" validate:"required,not_blank,az_text"`
	Password  string `json:"password" validate:"required,min=8,password"`
	Password2 string `json:"password2" validate:"required,eqfield=Password"`
	Instagram string `json:"instagram_url" validate:"omitempty,social=instagram"`
}

func validSample() sample {
	return sample{
		Phone:     "+994501234567",
		FullName:  "Alı Məmmədov",
		Comment:   "Çox yaxşı usta, tövsiyə edirəm!",
		Password:  "secret123",
		Password2: "secret123",
		Instagram: "https://www.instagram.com/ali",
	}
}

func TestValidateAcceptsValidInput(t *testing.T) {
	assert.NoError(t, NewValidator().Validate(validSample()))
}

func TestValidateReportsJSONFieldNames(t *testing.T) {
	cv := NewValidator()

	tests := []struct {
		name   string
		mutate func(*sample)
		field  string
	}{
		{name: "operator not allowed", mutate: func(s *sample) { s.Phone = "+994631234567" }, field: "phone_number"},
		{name: "digits in name", mutate: func(s *sample) { s.FullName = "Ali 2" }, field: "full_name"},
		{name: "blank comment", mutate: func(s *sample) { s.Comment = "   " }, field: "comment"},
		{name: "markup in comment", mutate: func(s *sample) { s.Comment = "<b>hi</b>" }, field: "comment"},
		{name: "numeric password", mutate: func(s *sample) { s.Password, s.Password2 = "12345678", "12345678" }, field: "password"},
		{name: "mismatch", mutate: func(s *sample) { s.Password2 = "other1234" }, field: "password2"},
		{name: "wrong host", mutate: func(s *sample) { s.Instagram = "https://evil.com/instagram.com" }, field: "instagram_url"},
		{name: "lookalike host", mutate: func(s *sample) { s.Instagram = "https://notinstagram.com/x" }, field: "instagram_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSample()
			tt.mutate(&s)

			err := cv.Validate(s)
			require.Error(t, err)
			errs := cv.FormatValidationErrors(err)
			assert.Contains(t, errs, tt.field)
		})
	}
}
