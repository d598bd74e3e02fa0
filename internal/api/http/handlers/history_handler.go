package handlers

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/loto-fleet/internal/api/dto"
	"github.com/spec-kit/loto-fleet/internal/history"
)

// HistoryHandler serves the aggregated audit feed and its CSV export.
type HistoryHandler struct {
	service *history.Service
}

// NewHistoryHandler constructs handler.
func NewHistoryHandler(historyService *history.Service) *HistoryHandler {
	return &HistoryHandler{service: historyService}
}

// Feed GET /history.
func (h *HistoryHandler) Feed(c *fiber.Ctx) error {
	entries := h.service.Feed()
	items := make([]dto.HistoryFeedEntry, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.HistoryFeedEntry{
			HistoryEntryResponse: historyEntryResponse(entry.HistoryEntry),
			UnitName:             entry.UnitName,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// ExportCSV GET /history/export.
func (h *HistoryHandler) ExportCSV(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.service.WriteCSV(&buf); err != nil {
		return err
	}

	filename := fmt.Sprintf("loto_history_%d.csv", time.Now().UnixMilli())
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(buf.Bytes())
}
