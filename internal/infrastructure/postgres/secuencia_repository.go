package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/sigte/autoriza-api/internal/domain/repository"
)

var _ repository.SecuenciaRepository = (*SecuenciaRepo)(nil)

// SecuenciaRepo genera el correlativo diario sobre una fila por fecha en
// secuencias_diarias, bloqueada con SELECT FOR UPDATE: dos aprobaciones
// concurrentes del mismo día se serializan en este punto y nunca observan el
// mismo último correlativo. Fechas distintas no se bloquean entre sí.
type SecuenciaRepo struct {
	q Querier
}

// NewSecuenciaRepository construye el adaptador. Debe usarse dentro de la
// transacción de la decisión: el correlativo consumido confirma o revierte
// junto con la aprobación.
func NewSecuenciaRepository(q Querier) *SecuenciaRepo {
	return &SecuenciaRepo{q: q}
}

// Siguiente devuelve el próximo correlativo de la fecha (1 si es el primero).
func (r *SecuenciaRepo) Siguiente(ctx context.Context, fecha time.Time) (int64, error) {
	insert := `
		INSERT INTO secuencias_diarias (fecha, ultimo_correlativo)
		VALUES ($1::date, 0)
		ON CONFLICT (fecha) DO NOTHING`
	if _, err := r.q.Exec(ctx, insert, fecha); err != nil {
		return 0, fmt.Errorf("upsert secuencia: %w", err)
	}

	// Bloquea la fila del día; el UPDATE es visible solo si la transacción
	// de la aprobación confirma, por eso la secuencia queda sin huecos.
	var ultimo int64
	lock := `
		SELECT ultimo_correlativo FROM secuencias_diarias
		WHERE fecha = $1::date
		FOR UPDATE`
	if err := r.q.QueryRow(ctx, lock, fecha).Scan(&ultimo); err != nil {
		return 0, fmt.Errorf("bloquear secuencia: %w", err)
	}

	siguiente := ultimo + 1
	update := `UPDATE secuencias_diarias SET ultimo_correlativo = $2 WHERE fecha = $1::date`
	if _, err := r.q.Exec(ctx, update, fecha, siguiente); err != nil {
		return 0, fmt.Errorf("avanzar secuencia: %w", err)
	}
	return siguiente, nil
}
