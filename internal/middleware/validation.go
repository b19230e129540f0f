package middleware

import (
	"ai-teacher/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const (
	ValidatedQuestionIDKey = "validated_question_id"
	ValidatedWidthKey      = "validated_width"
	ValidatedHeightKey     = "validated_height"
)

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validation.NewValidator(),
	}
}

// ValidateQuestionID parses the :questionId path parameter.
func (vm *ValidationMiddleware) ValidateQuestionID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := vm.validator.ParseQuestionID(c.Params("questionId"))
		if err != nil {
			return err // handled by ErrorHandler
		}
		c.Locals(ValidatedQuestionIDKey, id)
		return c.Next()
	}
}

// ValidateChartSize parses the optional width and height query parameters.
func (vm *ValidationMiddleware) ValidateChartSize() fiber.Handler {
	return func(c *fiber.Ctx) error {
		width, err := vm.validator.ParseDimension("width", c.Query("width"))
		if err != nil {
			return err
		}
		height, err := vm.validator.ParseDimension("height", c.Query("height"))
		if err != nil {
			return err
		}
		c.Locals(ValidatedWidthKey, width)
		c.Locals(ValidatedHeightKey, height)
		return c.Next()
	}
}
