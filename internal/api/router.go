package api

import (
	"net/http"

	_ "clinical-intel/docs"
	"clinical-intel/internal/api/handlers"
	"clinical-intel/pkg/config"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

type Handlers struct {
	Search     *handlers.SearchHandler
	Patient    *handlers.PatientHandler
	Extraction *handlers.ExtractionHandler
	Analytics  *handlers.AnalyticsHandler
	Admin      *handlers.AdminHandler
}

// SetupRouter builds the HTTP app. metricsHandler may be nil when metrics are
// disabled.
func SetupRouter(h Handlers, cfg *config.ServerConfig, metricsHandler http.Handler, appLogger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			if code >= fiber.StatusInternalServerError {
				appLogger.Error("Unhandled error", zap.Error(err), zap.String("path", c.Path()))
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if metricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(metricsHandler))
	}

	api := app.Group("/api/v1")

	notes := api.Group("/notes")
	notes.Get("/search", h.Search.SearchNotes)
	notes.Post("/:id/extract", h.Extraction.ExtractNote)

	api.Post("/extract", h.Extraction.ExtractText)

	patients := api.Group("/patients")
	patients.Get("/:ref", h.Patient.GetPatient)
	patients.Get("/:ref/similar", h.Patient.SimilarPatients)
	patients.Get("/:ref/cohort/medications", h.Patient.MedicationProfile)
	patients.Get("/:ref/cohort/labs", h.Patient.LabComparison)

	analytics := api.Group("/analytics")
	analytics.Get("/overview", h.Analytics.Overview)
	analytics.Get("/departments", h.Analytics.Departments)
	analytics.Get("/diagnoses", h.Analytics.Diagnoses)
	analytics.Get("/ages", h.Analytics.Ages)
	analytics.Get("/activity", h.Analytics.Activity)

	admin := api.Group("/admin")
	admin.Post("/reindex", h.Admin.Reindex)

	return app
}
