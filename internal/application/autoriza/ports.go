package autoriza

import (
	"context"
	"time"

	"github.com/sigte/autoriza-api/internal/domain/repository"
)

// TxRunner ejecuta una función con los repositorios del motor atados a una
// misma transacción. Todas las mutaciones de una decisión (autorización,
// documento, correlativo y estadística) confirman o revierten juntas.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		docRepo repository.DocumentoRepository,
		autRepo repository.AutorizacionRepository,
		estRepo repository.EstadisticaRepository,
		secRepo repository.SecuenciaRepository,
	) error) error
}

// BuscadorDuplicados es la capacidad mínima que necesita la regla de
// referencia duplicada; la satisface DocumentoRepository.
type BuscadorDuplicados interface {
	ExisteReferencia(ctx context.Context, emisorID, referencia string, fecha time.Time, excluirID string) (bool, error)
}
