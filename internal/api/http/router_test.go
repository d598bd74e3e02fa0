package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/loto-fleet/internal/api/http/handlers"
	"github.com/spec-kit/loto-fleet/internal/events"
	"github.com/spec-kit/loto-fleet/internal/history"
	"github.com/spec-kit/loto-fleet/internal/observability"
	"github.com/spec-kit/loto-fleet/internal/persistence"
	"github.com/spec-kit/loto-fleet/internal/service"
	"github.com/spec-kit/loto-fleet/internal/store"
	"github.com/spec-kit/loto-fleet/internal/transition"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	blobs := persistence.NewMemoryStore()
	fleetStore := store.NewFleetStore(transition.NewEngine(), blobs, "lockers_data", zap.NewNop())
	historyService := history.NewService(fleetStore, time.Minute)
	fleetService := service.NewFleetService(service.FleetDependencies{
		Store:      fleetStore,
		History:    historyService,
		Dispatcher: events.NewInMemoryDispatcher(),
	})

	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:  handlers.NewHealthHandler("loto-fleet-test", "test", "memory", nil),
		Lockers: handlers.NewLockersHandler(fleetService),
		Admin:   handlers.NewAdminHandler(fleetService),
		History: handlers.NewHistoryHandler(historyService),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	payload := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &payload))
	}
	return resp, payload
}

func TestTransitionFlow(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, fiber.MethodPost, "/admin/lockers/", map[string]any{
		"name": "L-01", "location": "Pump Station A",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := body["data"].(map[string]any)["id"].(string)

	resp, body = doJSON(t, app, fiber.MethodPost, "/lockers/"+id+"/transition", map[string]any{
		"target":     "LOCKED",
		"technician": "Alice",
		"supervisor": "Bob",
		"foreman":    "Carl",
		"equipment":  "Pump-1",
		"operator":   "Dan",
		"location":   "Site A",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	locker := body["data"].(map[string]any)["locker"].(map[string]any)
	assert.Equal(t, "LOCKED", locker["status"])
	assert.Equal(t, "Site A", locker["location"])
	require.Len(t, locker["history"], 1)

	resp, body = doJSON(t, app, fiber.MethodGet, "/history/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	feed := body["data"].([]any)
	require.Len(t, feed, 1)
	assert.Equal(t, "L-01", feed[0].(map[string]any)["unitName"])
}

func TestTransitionValidationEnvelope(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, fiber.MethodPost, "/admin/lockers/", map[string]any{
		"name": "L-01", "location": "Yard",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := body["data"].(map[string]any)["id"].(string)

	// Missing foreman.
	resp, body = doJSON(t, app, fiber.MethodPost, "/lockers/"+id+"/transition", map[string]any{
		"target":     "LOCKED",
		"technician": "Alice",
		"supervisor": "Bob",
		"equipment":  "Pump-1",
		"operator":   "Dan",
		"location":   "Site A",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_FAILED", errBody["code"])
	assert.Equal(t, "foreman", errBody["details"].(map[string]any)["field"])
}

func TestTransitionUnknownLocker(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, fiber.MethodPost, "/lockers/nope/transition", map[string]any{
		"target":     "LOCKED",
		"technician": "Alice",
		"supervisor": "Bob",
		"foreman":    "Carl",
		"equipment":  "Pump-1",
		"operator":   "Dan",
		"location":   "Site A",
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["error"].(map[string]any)["code"])
}

func TestBulkProvisionAndDelete(t *testing.T) {
	app := newTestApp(t)

	resp, body := doJSON(t, app, fiber.MethodPost, "/admin/lockers/bulk", map[string]any{
		"prefix": "L-", "start": 1, "end": 3, "location": "Site A",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := body["data"].([]any)
	require.Len(t, created, 3)
	assert.Equal(t, "L-01", created[0].(map[string]any)["name"])

	id := created[0].(map[string]any)["id"].(string)
	resp, _ = doJSON(t, app, fiber.MethodDelete, "/admin/lockers/"+id, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	// Idempotent: same delete again.
	resp, _ = doJSON(t, app, fiber.MethodDelete, "/admin/lockers/"+id, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = doJSON(t, app, fiber.MethodGet, "/lockers/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["data"], 2)
}

func TestHistoryExportHeaders(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(fiber.MethodGet, "/history/export", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "loto_history_")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Timestamp,Unit,From,To,Technician,Supervisor,Foreman\n", string(raw))
}
