package repository

import (
	"context"
	"time"

	"github.com/sigte/autoriza-api/internal/domain/entity"
)

// DocumentoRepository define el puerto de persistencia para documentos
// tributarios y sus líneas.
type DocumentoRepository interface {
	Create(ctx context.Context, doc *entity.DocumentoTributario) error
	CreateLinea(ctx context.Context, linea *entity.LineaDocumento) error
	GetByID(ctx context.Context, id string) (*entity.DocumentoTributario, error)
	GetLineas(ctx context.Context, documentoID string) ([]*entity.LineaDocumento, error)
	UpdateEstado(ctx context.Context, id, estado string) error

	// ExisteReferencia indica si otro documento del mismo emisor, con la misma
	// referencia interna y el mismo día calendario de emisión, ya existe
	// (excluyendo excluirID). Día calendario exacto, no ventana de 24 h.
	ExisteReferencia(ctx context.Context, emisorID, referencia string, fecha time.Time, excluirID string) (bool, error)

	// ContarPartesDistintas cuenta emisores y receptores distintos entre todos
	// los documentos emitidos en la fecha. Recuento exacto, no incremental.
	ContarPartesDistintas(ctx context.Context, fecha time.Time) (emisores, receptores int64, err error)
}
