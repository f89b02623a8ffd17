package entities

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"loremaster/internal/apperr"
)

// Raw is the JSON a client submitted for a nested document. It is stored and
// echoed back verbatim, so unknown keys, key presence and explicit zero values
// all survive a write/read round trip. The typed fields beside it are decoded
// from the same bytes and exist for validation.
type Raw = json.RawMessage

// decodeDocument fills typed from data and returns a compacted copy of data.
func decodeDocument(data []byte, typed any) (Raw, error) {
	if err := json.Unmarshal(data, typed); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encodeDocument returns raw when the document came from a client, otherwise
// the typed fields.
func encodeDocument(typed any, raw Raw) ([]byte, error) {
	if len(raw) > 0 {
		return raw, nil
	}
	return json.Marshal(typed)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks `validate` struct tags, descending into nested documents.
// Failures are returned as apperr Validation errors naming the first bad field.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return apperr.Wrap(apperr.CodeValidation, describeFieldError(verrs[0]), err)
	}
	return apperr.Wrap(apperr.CodeValidation, "invalid input", err)
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "email":
		return field + " must be a valid email address"
	case "hexcolor":
		return field + " must be a hex color such as #aabbcc"
	}
	return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
}
