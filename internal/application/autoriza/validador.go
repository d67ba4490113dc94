package autoriza

import (
	"context"
	"fmt"

	"github.com/sigte/autoriza-api/internal/domain/documento"
	"github.com/sigte/autoriza-api/internal/domain/entity"
	"github.com/sigte/autoriza-api/pkg/sat"
)

// ErrorDetectado es el resultado de una regla que falló: código del catálogo
// más detalle legible para el emisor.
type ErrorDetectado struct {
	Codigo  string
	Detalle string
}

// Validador ejecuta el conjunto fijo de reglas de validación contra un
// documento. Las reglas corren todas, siempre, en orden fijo: NIT del emisor,
// NIT del receptor, IVA, total y referencia duplicada. Cada una aporta a lo
// sumo un error; una lista vacía significa documento válido.
type Validador struct{}

// NewValidador construye el validador.
func NewValidador() *Validador {
	return &Validador{}
}

// Ejecutar corre las cinco reglas contra el documento. El error de retorno es
// solo de infraestructura (búsqueda de duplicados); los fallos de validación
// son datos, no excepciones.
func (v *Validador) Ejecutar(ctx context.Context, doc *entity.DocumentoTributario, dups BuscadorDuplicados) ([]ErrorDetectado, error) {
	var errores []ErrorDetectado

	// 1. NIT del emisor
	if err := sat.ValidateNIT(doc.EmisorNIT); err != nil {
		errores = append(errores, ErrorDetectado{
			Codigo:  entity.ErrorNITEmisor,
			Detalle: err.Error(),
		})
	}

	// 2. NIT del receptor
	if err := sat.ValidateNIT(doc.ReceptorNIT); err != nil {
		errores = append(errores, ErrorDetectado{
			Codigo:  entity.ErrorNITReceptor,
			Detalle: err.Error(),
		})
	}

	// 3. IVA almacenado vs recalculado
	ivaCalculado := documento.CalcularIVA(doc)
	if !doc.IVA.Equal(ivaCalculado) {
		errores = append(errores, ErrorDetectado{
			Codigo: entity.ErrorIVA,
			Detalle: fmt.Sprintf("el IVA reportado no coincide con el calculado: %s vs %s",
				doc.IVA.StringFixed(2), ivaCalculado.StringFixed(2)),
		})
	}

	// 4. Total almacenado vs recalculado
	totalCalculado := documento.CalcularTotal(doc)
	if !doc.Total.Equal(totalCalculado) {
		errores = append(errores, ErrorDetectado{
			Codigo: entity.ErrorTotal,
			Detalle: fmt.Sprintf("el total reportado no coincide con el calculado: %s vs %s",
				doc.Total.StringFixed(2), totalCalculado.StringFixed(2)),
		})
	}

	// 5. Referencia única por emisor y día calendario de emisión
	duplicado, err := dups.ExisteReferencia(ctx, doc.EmisorID, doc.ReferenciaInterna, doc.FechaEmision, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("buscar referencia duplicada: %w", err)
	}
	if duplicado {
		errores = append(errores, ErrorDetectado{
			Codigo: entity.ErrorReferenciaDuplicada,
			Detalle: fmt.Sprintf("ya existe un documento del emisor con la referencia %s emitido el %s",
				doc.ReferenciaInterna, doc.FechaEmision.Format("2006-01-02")),
		})
	}

	return errores, nil
}
