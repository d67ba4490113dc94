package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un documento tributario electrónico.
const (
	EstadoDocBorrador   = "BORRADOR"   // Editable por el emisor
	EstadoDocEmitido    = "EMITIDO"    // Finalizado; único estado desde el que se solicita autorización
	EstadoDocAutorizado = "AUTORIZADO" // Autorización aprobada
	EstadoDocRechazado  = "RECHAZADO"  // Autorización rechazada
	EstadoDocAnulado    = "ANULADO"
)

// DocumentoTributario es la cabecera de un documento tributario electrónico.
// Los montos derivados (subtotal, iva, total) se recalculan siempre con
// documento.Calculadora; nunca se confían tal como llegan del emisor.
type DocumentoTributario struct {
	ID                string
	ReferenciaInterna string // única por (emisor, día calendario de emisión)
	EmisorID          string
	EmisorNIT         string
	ReceptorID        string
	ReceptorNIT       string
	FechaEmision      time.Time
	Moneda            string // GTQ
	Subtotal          decimal.Decimal
	Descuento         decimal.Decimal
	IVA               decimal.Decimal
	Total             decimal.Decimal
	Estado            string
	Observaciones     string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// LineaDocumento es una línea de detalle; inmutable cuando el documento
// deja de ser borrador.
type LineaDocumento struct {
	ID             string
	DocumentoID    string
	Descripcion    string
	Cantidad       decimal.Decimal
	PrecioUnitario decimal.Decimal
	Descuento      decimal.Decimal
	Subtotal       decimal.Decimal // cantidad × precio_unitario − descuento
}
