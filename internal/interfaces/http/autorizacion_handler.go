package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sigte/autoriza-api/internal/application/autoriza"
	"github.com/sigte/autoriza-api/internal/application/dto"
	"github.com/sigte/autoriza-api/internal/domain/entity"
)

// AutorizacionHandler expone la máquina de autorización: solicitar, reintentar
// y consultar decisiones.
type AutorizacionHandler struct {
	uc *autoriza.UseCase
}

// NewAutorizacionHandler construye el handler.
func NewAutorizacionHandler(uc *autoriza.UseCase) *AutorizacionHandler {
	return &AutorizacionHandler{uc: uc}
}

// Autorizar solicita la autorización de un documento EMITIDO. La decisión es
// inmediata: la respuesta ya trae el estado terminal.
// POST /api/documentos/:id/autorizar
func (h *AutorizacionHandler) Autorizar(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	resultado, err := h.uc.Solicitar(c.Context(), id)
	if err != nil {
		return mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toAutorizacionResponse(resultado.Autorizacion))
}

// Decidir reintenta la decisión de una autorización que quedó PENDIENTE.
// POST /api/autorizaciones/:id/decidir
func (h *AutorizacionHandler) Decidir(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	resultado, err := h.uc.Decidir(c.Context(), id)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(toAutorizacionResponse(resultado.Autorizacion))
}

// GetByID consulta una autorización con sus errores.
// GET /api/autorizaciones/:id
func (h *AutorizacionHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	aut, err := h.uc.Consultar(c.Context(), id)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(toAutorizacionResponse(aut))
}

// GetByDocumento consulta la autorización de un documento.
// GET /api/documentos/:id/autorizacion
func (h *AutorizacionHandler) GetByDocumento(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	aut, err := h.uc.ConsultarPorDocumento(c.Context(), id)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(toAutorizacionResponse(aut))
}

func toAutorizacionResponse(aut *entity.Autorizacion) dto.AutorizacionResponse {
	resp := dto.AutorizacionResponse{
		ID:                 aut.ID,
		DocumentoID:        aut.DocumentoID,
		Estado:             aut.Estado,
		NumeroAutorizacion: aut.NumeroAutorizacion,
		Correlativo:        aut.Correlativo,
	}
	if aut.FechaAutorizacion != nil {
		resp.FechaAutorizacion = aut.FechaAutorizacion.Format("2006-01-02T15:04:05Z07:00")
	}
	for _, e := range aut.Errores {
		resp.Errores = append(resp.Errores, dto.ErrorValidacionResponse{Codigo: e.Codigo, Detalle: e.Detalle})
	}
	return resp
}
