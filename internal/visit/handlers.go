package visit

import (
	"errors"

	"backend-fieldops/internal/apierror"
	"backend-fieldops/internal/auth"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		principal, ok := auth.CurrentPrincipal(c)
		if !ok {
			return apierror.Unauthorized("missing principal")
		}
		var req CheckInRequest
		if err := c.BodyParser(&req); err != nil {
			return apierror.BadRequest(err.Error())
		}
		if err := apierror.ValidateStruct(req); err != nil {
			return err
		}

		v, err := svc.CheckIn(c.UserContext(), principal.UserID, req)
		if err != nil {
			return toProblem(err)
		}
		return c.Status(fiber.StatusCreated).JSON(v)
	})

	r.Patch("/:id/duration", authMiddleware, func(c *fiber.Ctx) error {
		principal, ok := auth.CurrentPrincipal(c)
		if !ok {
			return apierror.Unauthorized("missing principal")
		}
		var req DurationRequest
		if err := c.BodyParser(&req); err != nil {
			return apierror.BadRequest(err.Error())
		}
		if err := apierror.ValidateStruct(req); err != nil {
			return err
		}

		v, err := svc.SetDuration(c.UserContext(), principal.UserID, c.Params("id"), *req.Duration)
		if err != nil {
			return toProblem(err)
		}
		return c.JSON(v)
	})
}

func toProblem(err error) error {
	switch {
	case errors.Is(err, ErrClientNotFound), errors.Is(err, ErrVisitNotFound):
		return apierror.NotFound(err.Error())
	case errors.Is(err, ErrTooFar):
		return apierror.Forbidden(err.Error())
	case errors.Is(err, ErrNoClientLocation), errors.Is(err, ErrInvalidDuration):
		return apierror.BadRequest(err.Error())
	}
	return err
}
