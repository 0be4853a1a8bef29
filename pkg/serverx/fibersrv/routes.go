package fibersrv

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/marcodd23/go-micro-dbx/pkg/dbx"
	"github.com/marcodd23/go-micro-dbx/pkg/metricsx"
)

const (
	HealthPath  = "/health"
	MetricsPath = "/metrics"
)

// HealthResponse - body of the health routes.
type HealthResponse struct {
	Healthy   bool         `json:"healthy"`
	Databases []dbx.Health `json:"databases"`
}

// RegisterDatabaseRoutes mounts the database health routes and, when metrics is not nil,
// the Prometheus scrape endpoint:
//
//	GET /health        every registered database, 503 when one is unhealthy
//	GET /health/:name  a single database, 404 when unknown
//	GET /metrics       Prometheus exposition format
func RegisterDatabaseRoutes(app *fiber.App, registry *dbx.Registry, metrics *metricsx.Metrics) {
	app.Get(HealthPath, healthHandler(registry))
	app.Get(HealthPath+"/:name", databaseHealthHandler(registry))

	if metrics != nil {
		app.Get(MetricsPath, adaptor.HTTPHandler(metrics.Handler()))
	}
}

func healthHandler(registry *dbx.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		statuses, err := registry.Statuses(c.UserContext())
		if err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
		}

		resp := HealthResponse{Healthy: true, Databases: statuses}
		for _, h := range statuses {
			if !h.Healthy {
				resp.Healthy = false
			}
		}

		return c.Status(statusCode(resp.Healthy)).JSON(resp)
	}
}

func databaseHealthHandler(registry *dbx.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		h, ok := registry.Get(c.Params("name"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "unknown database "+c.Params("name"))
		}

		health := h.Status(c.UserContext())

		return c.Status(statusCode(health.Healthy)).JSON(health)
	}
}

func statusCode(healthy bool) int {
	if healthy {
		return fiber.StatusOK
	}

	return fiber.StatusServiceUnavailable
}
