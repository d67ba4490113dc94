package repository

import (
	"context"

	"github.com/sigte/autoriza-api/internal/domain/entity"
)

// ContribuyenteRepository define el puerto de persistencia de contribuyentes.
type ContribuyenteRepository interface {
	Create(ctx context.Context, c *entity.Contribuyente) error
	GetByID(ctx context.Context, id string) (*entity.Contribuyente, error)
	GetByNIT(ctx context.Context, nit string) (*entity.Contribuyente, error)
}
