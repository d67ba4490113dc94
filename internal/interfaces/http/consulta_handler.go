package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/sigte/autoriza-api/internal/application/dto"
	"github.com/sigte/autoriza-api/internal/domain/entity"
	"github.com/sigte/autoriza-api/internal/domain/repository"
	"github.com/sigte/autoriza-api/internal/infrastructure/report"
)

// ConsultaHandler expone las lecturas agregadas: estadísticas diarias y el
// informe XML de autorizaciones.
type ConsultaHandler struct {
	estRepo repository.EstadisticaRepository
	informe *report.InformeAutorizaciones
}

// NewConsultaHandler construye el handler.
func NewConsultaHandler(estRepo repository.EstadisticaRepository, informe *report.InformeAutorizaciones) *ConsultaHandler {
	return &ConsultaHandler{estRepo: estRepo, informe: informe}
}

// GetEstadistica devuelve los contadores de una fecha (YYYY-MM-DD).
// GET /api/estadisticas/:fecha
func (h *ConsultaHandler) GetEstadistica(c *fiber.Ctx) error {
	fecha, err := time.Parse("2006-01-02", c.Params("fecha"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "fecha inválida, se espera YYYY-MM-DD"})
	}
	est, err := h.estRepo.Get(c.Context(), fecha)
	if err != nil {
		return mapError(c, err)
	}
	if est == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "sin estadísticas para la fecha"})
	}
	return c.JSON(toEstadisticaResponse(est))
}

// ListEstadisticas devuelve todas las fechas con actividad.
// GET /api/estadisticas
func (h *ConsultaHandler) ListEstadisticas(c *fiber.Ctx) error {
	list, err := h.estRepo.ListAll(c.Context())
	if err != nil {
		return mapError(c, err)
	}
	resp := make([]dto.EstadisticaResponse, 0, len(list))
	for _, est := range list {
		resp = append(resp, toEstadisticaResponse(est))
	}
	return c.JSON(resp)
}

// GetInforme devuelve el informe LISTAAUTORIZACIONES en XML.
// GET /api/informes/autorizaciones
func (h *ConsultaHandler) GetInforme(c *fiber.Ctx) error {
	xml, err := h.informe.Generar(c.Context())
	if err != nil {
		return mapError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/xml; charset=utf-8")
	return c.Send(xml)
}

func toEstadisticaResponse(est *entity.EstadisticaDiaria) dto.EstadisticaResponse {
	return dto.EstadisticaResponse{
		Fecha:                      est.Fecha.Format("2006-01-02"),
		FacturasRecibidas:          est.FacturasRecibidas,
		ErroresNITEmisor:           est.ErroresNITEmisor,
		ErroresNITReceptor:         est.ErroresNITReceptor,
		ErroresIVA:                 est.ErroresIVA,
		ErroresTotal:               est.ErroresTotal,
		ErroresReferenciaDuplicada: est.ErroresReferenciaDuplicada,
		FacturasCorrectas:          est.FacturasCorrectas,
		CantidadEmisores:           est.CantidadEmisores,
		CantidadReceptores:         est.CantidadReceptores,
	}
}
