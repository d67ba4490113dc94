package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sigte/autoriza-api/internal/application/autoriza"
	"github.com/sigte/autoriza-api/internal/application/emisor"
	"github.com/sigte/autoriza-api/internal/domain/repository"
	"github.com/sigte/autoriza-api/internal/infrastructure/report"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	EmisorUC   *emisor.UseCase
	AutorizaUC *autoriza.UseCase
	EstRepo    repository.EstadisticaRepository
	Informe    *report.InformeAutorizaciones
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Contribuyentes
	docHandler := NewDocumentoHandler(deps.EmisorUC)
	contribuyentes := api.Group("/contribuyentes")
	contribuyentes.Post("/", docHandler.CreateContribuyente)

	// Documentos (flujo de emisión)
	documentos := api.Group("/documentos")
	documentos.Post("/", docHandler.Create)
	documentos.Get("/:id", docHandler.GetByID)
	documentos.Post("/:id/emitir", docHandler.Emitir)

	// Autorización
	autHandler := NewAutorizacionHandler(deps.AutorizaUC)
	documentos.Post("/:id/autorizar", autHandler.Autorizar)
	documentos.Get("/:id/autorizacion", autHandler.GetByDocumento)

	autorizaciones := api.Group("/autorizaciones")
	autorizaciones.Get("/:id", autHandler.GetByID)
	autorizaciones.Post("/:id/decidir", autHandler.Decidir)

	// Consultas agregadas
	consultaHandler := NewConsultaHandler(deps.EstRepo, deps.Informe)
	estadisticas := api.Group("/estadisticas")
	estadisticas.Get("/", consultaHandler.ListEstadisticas)
	estadisticas.Get("/:fecha", consultaHandler.GetEstadistica)

	informes := api.Group("/informes")
	informes.Get("/autorizaciones", consultaHandler.GetInforme)
}
