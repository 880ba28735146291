package transport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"irokart-be/internal/apperr"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
}

const maxBodyBytes = 1 << 20

// DecodeJSON reads a JSON body into dst and runs its validate tags.
// Unknown fields are ignored.
func DecodeJSON(r *http.Request, dst any) error {
	if err := Decode(r, dst); err != nil {
		return err
	}
	return ValidateStruct(dst)
}

// Decode reads a JSON body into dst without validation, for maps and
// partial updates.
func Decode(r *http.Request, dst any) error {
	if r.Body == nil {
		return apperr.Validationf("request body is required")
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validationf("request body is required")
		}
		return apperr.Wrap(apperr.Validation, "invalid JSON body", err)
	}
	return nil
}

func ValidateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return apperr.Wrap(apperr.Validation, validationMessage(verrs[0]), err)
		}
		return apperr.Wrap(apperr.Validation, "invalid request", err)
	}
	return nil
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		if e.Kind() == reflect.String {
			return e.Field() + " must be at least " + e.Param() + " characters"
		}
		return e.Field() + " must be at least " + e.Param()
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	default:
		return e.Field() + " is invalid"
	}
}

// Page parses limit/offset query parameters. Bad or missing values fall back
// to def and 0; limit is capped at max when max > 0.
func Page(r *http.Request, def, max int) (limit, offset int) {
	q := r.URL.Query()

	limit = def
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if max > 0 && limit > max {
		limit = max
	}

	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

func QueryBool(r *http.Request, key string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && v
}
