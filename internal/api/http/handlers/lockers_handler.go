package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/loto-fleet/internal/api/dto"
	"github.com/spec-kit/loto-fleet/internal/domain"
	"github.com/spec-kit/loto-fleet/internal/service"
	apperrors "github.com/spec-kit/loto-fleet/pkg/util/errorutil"
)

// LockersHandler manages the operational endpoints.
type LockersHandler struct {
	service *service.FleetService
}

// NewLockersHandler constructs handler.
func NewLockersHandler(fleetService *service.FleetService) *LockersHandler {
	return &LockersHandler{service: fleetService}
}

// ListLockers GET /lockers.
func (h *LockersHandler) ListLockers(c *fiber.Ctx) error {
	fleet := h.service.List()
	items := make([]dto.LockerSummary, 0, len(fleet))
	for i := range fleet {
		items = append(items, lockerSummary(&fleet[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetLocker GET /lockers/:id.
func (h *LockersHandler) GetLocker(c *fiber.Ctx) error {
	locker, err := h.service.Get(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": lockerDetail(&locker)})
}

// RequestTransition POST /lockers/:id/transition.
func (h *LockersHandler) RequestTransition(c *fiber.Ctx) error {
	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	target, ok := domain.ParseLockerStatus(req.Target)
	if !ok {
		return apperrors.NewValidationError("unknown target status", map[string]any{"target": req.Target})
	}

	auth := domain.AuthContext{
		Technician: req.Technician,
		Supervisor: req.Supervisor,
		Foreman:    req.Foreman,
		Equipment:  req.Equipment,
		Operator:   req.Operator,
		Location:   req.Location,
	}
	locker, entry, err := h.service.RequestTransition(c.Context(), c.Params("id"), target, auth)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"locker": lockerDetail(&locker),
		"entry":  historyEntryResponse(entry),
	}})
}

func lockerSummary(locker *domain.Locker) dto.LockerSummary {
	return dto.LockerSummary{
		ID:            locker.ID,
		Name:          locker.Name,
		Location:      locker.Location,
		Status:        string(locker.Status),
		LastChangedAt: locker.LastChangedAt,
		HistoryCount:  len(locker.History),
	}
}

func lockerDetail(locker *domain.Locker) dto.LockerDetail {
	history := make([]dto.HistoryEntryResponse, 0, len(locker.History))
	for _, entry := range locker.History {
		history = append(history, historyEntryResponse(entry))
	}
	return dto.LockerDetail{
		ID:            locker.ID,
		Name:          locker.Name,
		Location:      locker.Location,
		Status:        string(locker.Status),
		LastChangedAt: locker.LastChangedAt,
		History:       history,
	}
}

func historyEntryResponse(entry domain.HistoryEntry) dto.HistoryEntryResponse {
	return dto.HistoryEntryResponse{
		ID:         entry.ID,
		Timestamp:  entry.Timestamp,
		FromStatus: string(entry.FromStatus),
		ToStatus:   string(entry.ToStatus),
		Technician: entry.Technician,
		Supervisor: entry.Supervisor,
		Foreman:    entry.Foreman,
		Equipment:  entry.Equipment,
		Operator:   entry.Operator,
		Location:   entry.Location,
	}
}
