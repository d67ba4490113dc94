package repository

import (
	"context"
	"time"
)

// SecuenciaRepository genera el correlativo diario de aprobaciones.
type SecuenciaRepository interface {
	// Siguiente devuelve el próximo correlativo para la fecha calendario dada,
	// empezando en 1 y sin huecos entre aprobaciones exitosas. Debe ejecutarse
	// bajo exclusión mutua por fecha: dos aprobaciones concurrentes del mismo
	// día nunca observan el mismo último correlativo antes de confirmar.
	// Solo la aprobación consume un valor; un rechazo o rollback no avanza la
	// secuencia.
	Siguiente(ctx context.Context, fecha time.Time) (int64, error)
}
