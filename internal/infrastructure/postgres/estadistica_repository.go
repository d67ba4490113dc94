package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sigte/autoriza-api/internal/domain/entity"
	"github.com/sigte/autoriza-api/internal/domain/repository"
)

var _ repository.EstadisticaRepository = (*EstadisticaRepo)(nil)

// EstadisticaRepo implementación de EstadisticaRepository (usable con pool o tx).
type EstadisticaRepo struct {
	q Querier
}

// NewEstadisticaRepository construye el adaptador. Pasar pool o tx (Querier).
func NewEstadisticaRepository(q Querier) *EstadisticaRepo {
	return &EstadisticaRepo{q: q}
}

const estadisticaColumns = `
	fecha, facturas_recibidas, errores_nit_emisor, errores_nit_receptor, errores_iva,
	errores_total, errores_referencia_duplicada, facturas_correctas,
	cantidad_emisores, cantidad_receptores`

// GetForUpdate obtiene la fila de la fecha, creándola en cero si no existe, y
// la bloquea (SELECT FOR UPDATE) contra decisiones concurrentes del mismo día.
// Debe llamarse dentro de una transacción.
func (r *EstadisticaRepo) GetForUpdate(ctx context.Context, fecha time.Time) (*entity.EstadisticaDiaria, error) {
	insert := `
		INSERT INTO estadisticas_diarias (fecha)
		VALUES ($1::date)
		ON CONFLICT (fecha) DO NOTHING`
	if _, err := r.q.Exec(ctx, insert, fecha); err != nil {
		return nil, fmt.Errorf("upsert estadistica: %w", err)
	}

	query := `
		SELECT ` + estadisticaColumns + `
		FROM estadisticas_diarias WHERE fecha = $1::date
		FOR UPDATE`
	return r.scanOne(r.q.QueryRow(ctx, query, fecha))
}

// Save persiste todos los contadores de la fila.
func (r *EstadisticaRepo) Save(ctx context.Context, est *entity.EstadisticaDiaria) error {
	query := `
		UPDATE estadisticas_diarias
		SET facturas_recibidas           = $2,
		    errores_nit_emisor           = $3,
		    errores_nit_receptor         = $4,
		    errores_iva                  = $5,
		    errores_total                = $6,
		    errores_referencia_duplicada = $7,
		    facturas_correctas           = $8,
		    cantidad_emisores            = $9,
		    cantidad_receptores          = $10
		WHERE fecha = $1::date`
	_, err := r.q.Exec(ctx, query,
		est.Fecha, est.FacturasRecibidas, est.ErroresNITEmisor, est.ErroresNITReceptor,
		est.ErroresIVA, est.ErroresTotal, est.ErroresReferenciaDuplicada,
		est.FacturasCorrectas, est.CantidadEmisores, est.CantidadReceptores,
	)
	if err != nil {
		return fmt.Errorf("update estadistica: %w", err)
	}
	return nil
}

// Get obtiene la fila de una fecha; nil si no existe.
func (r *EstadisticaRepo) Get(ctx context.Context, fecha time.Time) (*entity.EstadisticaDiaria, error) {
	query := `SELECT ` + estadisticaColumns + ` FROM estadisticas_diarias WHERE fecha = $1::date`
	est, err := r.scanOne(r.q.QueryRow(ctx, query, fecha))
	if err != nil {
		return nil, err
	}
	return est, nil
}

// ListAll devuelve todas las filas ordenadas por fecha ascendente.
func (r *EstadisticaRepo) ListAll(ctx context.Context) ([]*entity.EstadisticaDiaria, error) {
	query := `SELECT ` + estadisticaColumns + ` FROM estadisticas_diarias ORDER BY fecha`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list estadisticas: %w", err)
	}
	defer rows.Close()
	var list []*entity.EstadisticaDiaria
	for rows.Next() {
		var e entity.EstadisticaDiaria
		if err := rows.Scan(
			&e.Fecha, &e.FacturasRecibidas, &e.ErroresNITEmisor, &e.ErroresNITReceptor,
			&e.ErroresIVA, &e.ErroresTotal, &e.ErroresReferenciaDuplicada,
			&e.FacturasCorrectas, &e.CantidadEmisores, &e.CantidadReceptores,
		); err != nil {
			return nil, fmt.Errorf("scan estadistica: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}

func (r *EstadisticaRepo) scanOne(row pgx.Row) (*entity.EstadisticaDiaria, error) {
	var e entity.EstadisticaDiaria
	err := row.Scan(
		&e.Fecha, &e.FacturasRecibidas, &e.ErroresNITEmisor, &e.ErroresNITReceptor,
		&e.ErroresIVA, &e.ErroresTotal, &e.ErroresReferenciaDuplicada,
		&e.FacturasCorrectas, &e.CantidadEmisores, &e.CantidadReceptores,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get estadistica: %w", err)
	}
	return &e, nil
}
