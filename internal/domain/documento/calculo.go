// Package documento contiene la aritmética pura de documentos tributarios:
// subtotales de línea, IVA (12 %) y total, siempre con 2 decimales.
package documento

import (
	"github.com/shopspring/decimal"

	"github.com/sigte/autoriza-api/internal/domain"
	"github.com/sigte/autoriza-api/internal/domain/entity"
)

// TasaIVA es la tasa vigente del impuesto al valor agregado.
var TasaIVA = decimal.NewFromFloat(0.12)

// CalcularSubtotalLinea devuelve cantidad × precio_unitario − descuento.
// Falla con ErrSubtotalNegativo si el descuento excede el monto de la línea.
func CalcularSubtotalLinea(linea *entity.LineaDocumento) (decimal.Decimal, error) {
	bruto := linea.Cantidad.Mul(linea.PrecioUnitario)
	subtotal := bruto.Sub(linea.Descuento)
	if subtotal.IsNegative() {
		return decimal.Decimal{}, domain.ErrSubtotalNegativo
	}
	return subtotal.Round(2), nil
}

// CalcularIVA devuelve round(0.12 × (subtotal − descuento), 2) sobre la base
// imponible del documento. Redondeo mitad hacia arriba a 2 decimales (el de
// moneda en este dominio; Round de decimal redondea mitades alejándose de
// cero, equivalente para montos no negativos).
func CalcularIVA(doc *entity.DocumentoTributario) decimal.Decimal {
	base := doc.Subtotal.Sub(doc.Descuento)
	return base.Mul(TasaIVA).Round(2)
}

// CalcularTotal devuelve subtotal − descuento + iva, usando el IVA almacenado
// en el documento.
func CalcularTotal(doc *entity.DocumentoTributario) decimal.Decimal {
	return doc.Subtotal.Sub(doc.Descuento).Add(doc.IVA).Round(2)
}

// SumarLineas devuelve la suma de subtotales de línea (recalculados, no los
// almacenados). Falla si alguna línea tiene descuento mayor a su monto.
func SumarLineas(lineas []*entity.LineaDocumento) (decimal.Decimal, error) {
	suma := decimal.Zero
	for _, l := range lineas {
		s, err := CalcularSubtotalLinea(l)
		if err != nil {
			return decimal.Decimal{}, err
		}
		suma = suma.Add(s)
	}
	return suma.Round(2), nil
}
