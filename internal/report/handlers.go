package report

import (
	"bytes"
	"errors"
	"fmt"

	"backend-fieldops/internal/apierror"
	"backend-fieldops/internal/attendance"
	"backend-fieldops/internal/auth"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/range", authMiddleware, func(c *fiber.Ctx) error {
		principal, ok := auth.CurrentPrincipal(c)
		if !ok {
			return apierror.Unauthorized("missing principal")
		}
		var req RangeRequest
		if err := c.BodyParser(&req); err != nil {
			return apierror.BadRequest(err.Error())
		}
		rep, err := svc.GetRangeReport(c.UserContext(), principal.UserID, req.StartDate, req.EndDate)
		if err != nil {
			return toProblem(err)
		}
		return c.JSON(rep)
	})

	r.Get("/range.xlsx", authMiddleware, func(c *fiber.Ctx) error {
		principal, ok := auth.CurrentPrincipal(c)
		if !ok {
			return apierror.Unauthorized("missing principal")
		}
		var req RangeRequest
		if err := c.QueryParser(&req); err != nil {
			return apierror.BadRequest(err.Error())
		}
		rep, err := svc.GetRangeReport(c.UserContext(), principal.UserID, req.StartDate, req.EndDate)
		if err != nil {
			return toProblem(err)
		}

		var buf bytes.Buffer
		if err := WriteXLSX(&buf, rep); err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, xlsxContentType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="report_%s_%s.xlsx"`, req.StartDate, req.EndDate))
		return c.Send(buf.Bytes())
	})
}

func toProblem(err error) error {
	if errors.Is(err, attendance.ErrInvalidArgument) {
		return apierror.BadRequest(err.Error())
	}
	return err
}
