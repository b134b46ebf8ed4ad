package codec

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the structure of a document: version, required names and
// ids, unique node ids, unique port names per node and enumerated values.
// Connection targets are not checked; Decode prunes dangling ones.
func Validate(doc *GraphDocument) error {
	if doc == nil {
		return &AggregateError{Errors: []error{&ValidationError{Key: "document", Reason: "is nil"}}}
	}
	err := validatorInstance().Struct(doc)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate document: %w", err)
	}
	out := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, &ValidationError{
			Key:    strings.TrimPrefix(fe.Namespace(), "GraphDocument."),
			Reason: reason(fe),
			Value:  fe.Value(),
		})
	}
	return &AggregateError{Errors: out}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_if":
		return "is required for list ports"
	case "min":
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "unique":
		return "must be unique by " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}
