package attendance

import (
	"errors"

	"backend-fieldops/internal/apierror"
	"backend-fieldops/internal/auth"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/start", authMiddleware, func(c *fiber.Ctx) error {
		userID, req, err := coordinateRequest(c)
		if err != nil {
			return err
		}
		rec, err := svc.StartDay(c.UserContext(), userID, req.Coordinate())
		if err != nil {
			return toProblem(err)
		}
		return c.Status(fiber.StatusCreated).JSON(rec)
	})

	r.Post("/end", authMiddleware, func(c *fiber.Ctx) error {
		userID, req, err := coordinateRequest(c)
		if err != nil {
			return err
		}
		rec, err := svc.EndDay(c.UserContext(), userID, req.Coordinate())
		if err != nil {
			return toProblem(err)
		}
		return c.JSON(rec)
	})

	r.Get("/status", authMiddleware, func(c *fiber.Ctx) error {
		principal, ok := auth.CurrentPrincipal(c)
		if !ok {
			return apierror.Unauthorized("missing principal")
		}
		view, err := svc.GetStatus(c.UserContext(), principal.UserID)
		if err != nil {
			return toProblem(err)
		}
		return c.JSON(view)
	})

	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		principal, ok := auth.CurrentPrincipal(c)
		if !ok {
			return apierror.Unauthorized("missing principal")
		}
		detail, err := svc.GetDayDetail(c.UserContext(), principal.UserID)
		if err != nil {
			return toProblem(err)
		}
		return c.JSON(detail)
	})
}

func coordinateRequest(c *fiber.Ctx) (string, CoordinateRequest, error) {
	principal, ok := auth.CurrentPrincipal(c)
	if !ok {
		return "", CoordinateRequest{}, apierror.Unauthorized("missing principal")
	}
	var req CoordinateRequest
	if err := c.BodyParser(&req); err != nil {
		return "", req, apierror.BadRequest(err.Error())
	}
	if err := apierror.ValidateStruct(req); err != nil {
		return "", req, err
	}
	return principal.UserID, req, nil
}

func toProblem(err error) error {
	switch {
	case errors.Is(err, ErrConflict):
		return apierror.Conflict(err.Error())
	case errors.Is(err, ErrNotFound):
		return apierror.NotFound(err.Error())
	case errors.Is(err, ErrInvalidArgument):
		return apierror.BadRequest(err.Error())
	}
	return err
}
