package procedures

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrUnknownStep is returned for a step name the procedure layer does not accept
	ErrUnknownStep = errors.New("unknown step")
	// ErrInvalidPayload is returned when a payload fails decoding or validation
	ErrInvalidPayload = errors.New("invalid payload")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// byJSONName reports field errors under their wire names
var byJSONName = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// Violation is one failed input constraint, addressed by its JSON path
type Violation struct {
	Field string
	Tag   string
}

// Validate checks an already built input against its constraints.
// It returns nil when in is acceptable.
func Validate(in any) []Violation {
	err := byJSONName.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []Violation{{Tag: err.Error()}}
	}
	out := make([]Violation, 0, len(verrs))
	for _, fe := range verrs {
		_, path, _ := strings.Cut(fe.Namespace(), ".")
		out = append(out, Violation{Field: path, Tag: fe.Tag()})
	}
	return out
}

// Parse strictly decodes raw into T and validates it. Unknown fields,
// trailing data and failed constraints are all rejected.
func Parse[T any](raw []byte) (T, error) {
	var v T
	if err := decodeStrict(raw, &v); err != nil {
		return v, err
	}
	if err := validate.Struct(&v); err != nil {
		return v, fmt.Errorf("%w: %s", ErrInvalidPayload, describe(err))
	}
	return v, nil
}

// ParseStep decodes raw into the input type registered for step
func ParseStep(step string, raw []byte) (any, error) {
	v, ok := newInput(step)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStep, step)
	}
	if err := decodeStrict(raw, v); err != nil {
		return nil, err
	}
	if err := validate.Struct(v); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPayload, describe(err))
	}
	return v, nil
}

func decodeStrict(raw []byte, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return fmt.Errorf("%w: empty body", ErrInvalidPayload)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", ErrInvalidPayload)
	}
	return nil
}

// describe flattens validator errors into "field: tag" pairs
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	var b bytes.Buffer
	for i, fe := range verrs {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s failed %s", fe.Namespace(), fe.Tag())
	}
	return b.String()
}
