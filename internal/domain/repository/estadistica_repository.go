package repository

import (
	"context"
	"time"

	"github.com/sigte/autoriza-api/internal/domain/entity"
)

// EstadisticaRepository define el puerto de persistencia del acumulado diario.
type EstadisticaRepository interface {
	// GetForUpdate obtiene la fila de la fecha, creándola en cero si no existe,
	// y la bloquea para evitar actualizaciones perdidas entre decisiones
	// concurrentes del mismo día.
	GetForUpdate(ctx context.Context, fecha time.Time) (*entity.EstadisticaDiaria, error)
	Save(ctx context.Context, est *entity.EstadisticaDiaria) error
	Get(ctx context.Context, fecha time.Time) (*entity.EstadisticaDiaria, error)
	// ListAll devuelve todas las filas ordenadas por fecha ascendente.
	ListAll(ctx context.Context) ([]*entity.EstadisticaDiaria, error)
}
