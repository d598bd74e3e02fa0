package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// DependencyPinger reports reachability of an external dependency.
type DependencyPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	storageName string
	storage     DependencyPinger
}

// NewHealthHandler returns a new handler instance. storage may be nil for
// backends with nothing to probe (file, memory).
func NewHealthHandler(serviceName, version, storageName string, storage DependencyPinger) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, storageName: storageName, storage: storage}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness by checking the storage backend.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	depStatus := fiber.Map{}
	ready := true

	if h.storage != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := h.storage.Ping(ctx); err != nil {
			depStatus[h.storageName] = err.Error()
			ready = false
		} else {
			depStatus[h.storageName] = "ok"
		}
	} else {
		depStatus[h.storageName] = "ok"
	}

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "DEPENDENCY_UNAVAILABLE",
			"message": "one or more dependencies unavailable",
			"details": depStatus,
		},
	})
}
