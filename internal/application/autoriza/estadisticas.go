package autoriza

import (
	"context"

	"github.com/sigte/autoriza-api/internal/domain/entity"
	"github.com/sigte/autoriza-api/internal/domain/repository"
)

// actualizarEstadisticas registra una decisión en el acumulado del día de
// emisión del documento. No es idempotente: cada llamada incrementa; el caso
// de uso la invoca exactamente una vez por decisión, dentro de la misma
// transacción. La fila del día se obtiene bloqueada (GetForUpdate) para que
// dos decisiones concurrentes no pierdan actualizaciones.
func actualizarEstadisticas(
	ctx context.Context,
	docRepo repository.DocumentoRepository,
	estRepo repository.EstadisticaRepository,
	doc *entity.DocumentoTributario,
	aprobada bool,
	errores []ErrorDetectado,
) error {
	fecha := doc.FechaEmision

	est, err := estRepo.GetForUpdate(ctx, fecha)
	if err != nil {
		return err
	}

	est.FacturasRecibidas++
	if aprobada {
		est.FacturasCorrectas++
	} else {
		// Un incremento por cada código presente en la decisión.
		for _, e := range errores {
			est.IncrementarError(e.Codigo)
		}
	}

	// Recuento exacto de partes distintas del día, no incremental: correcto
	// bajo cualquier orden de llegada.
	emisores, receptores, err := docRepo.ContarPartesDistintas(ctx, fecha)
	if err != nil {
		return err
	}
	est.CantidadEmisores = emisores
	est.CantidadReceptores = receptores

	return estRepo.Save(ctx, est)
}
