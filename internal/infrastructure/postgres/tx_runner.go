package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sigte/autoriza-api/internal/application/autoriza"
	"github.com/sigte/autoriza-api/internal/application/emisor"
	"github.com/sigte/autoriza-api/internal/domain/repository"
)

// Ensure TxRunner implements autoriza.TxRunner and emisor.TxRunner.
var _ autoriza.TxRunner = (*TxRunner)(nil)
var _ emisor.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción con los repositorios del motor de autorización
// atados a la tx y hace Commit o Rollback. Es la unidad atómica de una
// decisión: autorización, documento, correlativo y estadística.
func (r *TxRunner) Run(ctx context.Context, fn func(
	docRepo repository.DocumentoRepository,
	autRepo repository.AutorizacionRepository,
	estRepo repository.EstadisticaRepository,
	secRepo repository.SecuenciaRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	docRepo := NewDocumentoRepository(tx)
	autRepo := NewAutorizacionRepository(tx)
	estRepo := NewEstadisticaRepository(tx)
	secRepo := NewSecuenciaRepository(tx)

	if err := fn(docRepo, autRepo, estRepo, secRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunEmision inicia una transacción con los repositorios de emisión
// (documento + contribuyente) para crear documento y líneas juntos.
func (r *TxRunner) RunEmision(ctx context.Context, fn func(
	docRepo repository.DocumentoRepository,
	contribRepo repository.ContribuyenteRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewDocumentoRepository(tx), NewContribuyenteRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
