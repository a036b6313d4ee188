package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterHealthRoutes reports the state of every configured backend.
// Mongo and NATS are reported but never fail the check.
func RegisterHealthRoutes(app *fiber.App, d Deps) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		checks := fiber.Map{}
		healthy := true
		if d.DB != nil {
			checks["postgres"] = result(d.DB.Ping(ctx))
			healthy = healthy && checks["postgres"] == "ok"
		}
		if d.Cache != nil {
			checks["redis"] = result(d.Cache.Ping(ctx).Err())
			healthy = healthy && checks["redis"] == "ok"
		}
		if d.Mongo != nil {
			checks["mongo"] = result(d.Mongo.Client().Ping(ctx, nil))
		}
		if d.NATS != nil {
			checks["nats"] = d.NATS.Status().String()
		}

		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		return c.Status(status).JSON(fiber.Map{
			"status":    checks,
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
}

// RegisterMetricsRoute exposes reg in the Prometheus text format.
func RegisterMetricsRoute(app *fiber.App, reg *prometheus.Registry) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
}

func result(err error) string {
	if err != nil {
		return err.Error()
	}
	return "ok"
}
