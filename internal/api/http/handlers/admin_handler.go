package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/loto-fleet/internal/api/dto"
	"github.com/spec-kit/loto-fleet/internal/domain"
	"github.com/spec-kit/loto-fleet/internal/service"
	apperrors "github.com/spec-kit/loto-fleet/pkg/util/errorutil"
)

// AdminHandler manages fleet administration: provisioning, force overrides
// and deletion. Overrides bypass the authorization form and leave no history
// entry, so they are kept on a separate route group.
type AdminHandler struct {
	service *service.FleetService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(fleetService *service.FleetService) *AdminHandler {
	return &AdminHandler{service: fleetService}
}

// Provision POST /admin/lockers.
func (h *AdminHandler) Provision(c *fiber.Ctx) error {
	var req dto.ProvisionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	locker, err := h.service.Provision(c.Context(), req.Name, req.Location)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": lockerSummary(&locker)})
}

// BulkProvision POST /admin/lockers/bulk.
func (h *AdminHandler) BulkProvision(c *fiber.Ctx) error {
	var req dto.BulkProvisionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	created, err := h.service.BulkProvision(c.Context(), req.Prefix, req.Start, req.End, req.Location)
	if err != nil {
		return err
	}
	items := make([]dto.LockerSummary, 0, len(created))
	for i := range created {
		items = append(items, lockerSummary(&created[i]))
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": items})
}

// ForceStatus PUT /admin/lockers/:id/status.
func (h *AdminHandler) ForceStatus(c *fiber.Ctx) error {
	var req dto.ForceStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	status, ok := domain.ParseLockerStatus(req.Status)
	if !ok {
		return apperrors.NewValidationError("unknown status", map[string]any{"status": req.Status})
	}
	locker, err := h.service.ForceStatus(c.Context(), c.Params("id"), status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": lockerSummary(&locker)})
}

// DeleteLocker DELETE /admin/lockers/:id.
func (h *AdminHandler) DeleteLocker(c *fiber.Ctx) error {
	h.service.Remove(c.Context(), c.Params("id"))
	return c.SendStatus(http.StatusNoContent)
}
