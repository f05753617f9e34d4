package shared

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// FailedValidationError carries per-field messages keyed by the JSON field name.
type FailedValidationError struct {
	Errors map[string]string
}

func (e *FailedValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	return "validation failed: " + strings.Join(fields, ", ")
}

// NewFailedValidationError translates validator errors for req into a
// FailedValidationError. req must be the validated struct (not a pointer).
func NewFailedValidationError(req any, errs validator.ValidationErrors) error {
	reqType := reflect.TypeOf(req)
	for reqType != nil && reqType.Kind() == reflect.Pointer {
		reqType = reqType.Elem()
	}

	messages := make(map[string]string, len(errs))
	for _, fieldErr := range errs {
		name := jsonFieldName(reqType, fieldErr.StructField())
		messages[name] = validationMessage(name, fieldErr)
	}

	return &FailedValidationError{Errors: messages}
}

func jsonFieldName(t reflect.Type, structField string) string {
	if t == nil || t.Kind() != reflect.Struct {
		return structField
	}
	field, ok := t.FieldByName(structField)
	if !ok {
		return structField
	}
	tag := strings.Split(field.Tag.Get("json"), ",")[0]
	if tag == "" || tag == "-" {
		return structField
	}
	return tag
}

func validationMessage(name string, fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", name, fieldErr.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", name, fieldErr.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", name, fieldErr.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", name)
	case "mongodb":
		return fmt.Sprintf("%s must be a valid id", name)
	case "numeric":
		return fmt.Sprintf("%s must be numeric", name)
	default:
		return fmt.Sprintf("%s failed on the '%s' rule", name, fieldErr.Tag())
	}
}

func ErrorHandler(c *fiber.Ctx, err error) error {
	var validationErr *FailedValidationError
	if errors.As(err, &validationErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"data":    nil,
			"errors":  validationErr.Errors,
		})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"message": fiberErr.Message,
			"data":    nil,
			"errors":  nil,
		})
	}

	slog.Error("Unhandled error", "err", err, "method", c.Method(), "path", c.Path())
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Internal Server Error",
		"data":    nil,
		"errors":  nil,
	})
}
