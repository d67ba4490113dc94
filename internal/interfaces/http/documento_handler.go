package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/sigte/autoriza-api/internal/application/dto"
	"github.com/sigte/autoriza-api/internal/application/emisor"
	"github.com/sigte/autoriza-api/internal/domain"
	"github.com/sigte/autoriza-api/internal/domain/entity"
)

// DocumentoHandler maneja el flujo de emisión: contribuyentes, borradores y
// emisión de documentos.
type DocumentoHandler struct {
	uc *emisor.UseCase
}

// NewDocumentoHandler construye el handler.
func NewDocumentoHandler(uc *emisor.UseCase) *DocumentoHandler {
	return &DocumentoHandler{uc: uc}
}

// CreateContribuyente registra un contribuyente.
// POST /api/contribuyentes
func (h *DocumentoHandler) CreateContribuyente(c *fiber.Ctx) error {
	var in dto.CrearContribuyenteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	contrib, err := h.uc.RegistrarContribuyente(c.Context(), in)
	if err != nil {
		return mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toContribuyenteResponse(contrib))
}

// Create crea un documento tributario en borrador con sus líneas.
// POST /api/documentos
func (h *DocumentoHandler) Create(c *fiber.Ctx) error {
	var in dto.CrearDocumentoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	doc, lineas, err := h.uc.CrearBorrador(c.Context(), in)
	if err != nil {
		return mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toDocumentoResponse(doc, lineas))
}

// Emitir finaliza un borrador (BORRADOR → EMITIDO).
// POST /api/documentos/:id/emitir
func (h *DocumentoHandler) Emitir(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	doc, err := h.uc.Emitir(c.Context(), id)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(toDocumentoResponse(doc, nil))
}

// GetByID obtiene un documento con sus líneas.
// GET /api/documentos/:id
func (h *DocumentoHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	doc, lineas, err := h.uc.Consultar(c.Context(), id)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(toDocumentoResponse(doc, lineas))
}

// mapError traduce errores de dominio a códigos HTTP.
func mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	case errors.Is(err, domain.ErrEstadoInvalido):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_STATE", Message: err.Error()})
	case errors.Is(err, domain.ErrYaDecidida):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_DECIDED", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

func toContribuyenteResponse(contrib *entity.Contribuyente) dto.ContribuyenteResponse {
	return dto.ContribuyenteResponse{
		ID:              contrib.ID,
		NIT:             contrib.NIT,
		Nombre:          contrib.Nombre,
		NombreComercial: contrib.NombreComercial,
		Direccion:       contrib.Direccion,
		Correo:          contrib.Correo,
		Telefono:        contrib.Telefono,
	}
}

func toDocumentoResponse(doc *entity.DocumentoTributario, lineas []*entity.LineaDocumento) dto.DocumentoResponse {
	resp := dto.DocumentoResponse{
		ID:                doc.ID,
		ReferenciaInterna: doc.ReferenciaInterna,
		EmisorID:          doc.EmisorID,
		EmisorNIT:         doc.EmisorNIT,
		ReceptorID:        doc.ReceptorID,
		ReceptorNIT:       doc.ReceptorNIT,
		FechaEmision:      doc.FechaEmision.Format("2006-01-02T15:04:05Z07:00"),
		Moneda:            doc.Moneda,
		Subtotal:          doc.Subtotal,
		Descuento:         doc.Descuento,
		IVA:               doc.IVA,
		Total:             doc.Total,
		Estado:            doc.Estado,
		Observaciones:     doc.Observaciones,
	}
	for _, l := range lineas {
		resp.Lineas = append(resp.Lineas, dto.LineaResponse{
			ID:             l.ID,
			Descripcion:    l.Descripcion,
			Cantidad:       l.Cantidad,
			PrecioUnitario: l.PrecioUnitario,
			Descuento:      l.Descuento,
			Subtotal:       l.Subtotal,
		})
	}
	return resp
}
