package repository

import (
	"context"
	"time"

	"github.com/sigte/autoriza-api/internal/domain/entity"
)

// AprobacionDelDia es la vista de lectura de una aprobación para el informe
// de autorizaciones (colaborador de reporte, solo lectura).
type AprobacionDelDia struct {
	NITEmisor          string
	ReferenciaInterna  string
	NumeroAutorizacion string
}

// AutorizacionRepository define el puerto de persistencia de autorizaciones
// y sus errores de validación registrados.
type AutorizacionRepository interface {
	Create(ctx context.Context, aut *entity.Autorizacion) error
	// Update persiste estado, número, correlativo y fecha de autorización.
	Update(ctx context.Context, aut *entity.Autorizacion) error
	CreateError(ctx context.Context, e *entity.ErrorAutorizacion) error
	GetByID(ctx context.Context, id string) (*entity.Autorizacion, error)
	// GetByIDForUpdate obtiene la autorización bloqueando su fila hasta el fin
	// de la transacción: dos decisiones sobre la misma autorización se
	// serializan aquí y la segunda observa el estado terminal de la primera.
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Autorizacion, error)
	GetByDocumentoID(ctx context.Context, documentoID string) (*entity.Autorizacion, error)
	GetErrores(ctx context.Context, autorizacionID string) ([]entity.ErrorAutorizacion, error)

	// ListAprobacionesPorFecha lista las aprobaciones cuya fecha de
	// autorización cae en la fecha calendario dada, ordenadas por correlativo.
	ListAprobacionesPorFecha(ctx context.Context, fecha time.Time) ([]AprobacionDelDia, error)
}
