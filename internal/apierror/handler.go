package apierror

import (
	"errors"

	"backend-fieldops/internal/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const contentType = "application/problem+json"

// ErrorHandler is installed as fiber.Config.ErrorHandler.
func ErrorHandler(c *fiber.Ctx, err error) error {
	problem := FromError(err)
	problem.Instance = c.Path()
	if id, ok := c.Locals("requestid").(string); ok {
		problem.RequestID = id
	}
	if problem.Status >= fiber.StatusInternalServerError {
		logger.Ctx(c.UserContext()).Error("request failed",
			logger.String("path", c.Path()),
			logger.String("method", c.Method()),
			logger.Err(err),
		)
	}

	return c.Status(problem.Status).JSON(problem, contentType)
}

// FromError converts any error into problem details.
func FromError(err error) *ProblemDetails {
	var problem *ProblemDetails
	if errors.As(err, &problem) {
		cp := *problem
		return &cp
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{Field: fe.Field(), Message: "failed " + fe.Tag() + " check"})
		}
		return Validation(fields...)
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		p := newProblem(typeForStatus(fe.Code), fe.Code, fe.Message)
		if fe.Code >= fiber.StatusInternalServerError {
			p.Detail = ""
		}
		return p
	}
	return Internal()
}
