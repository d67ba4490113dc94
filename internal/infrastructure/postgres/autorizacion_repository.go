package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sigte/autoriza-api/internal/domain"
	"github.com/sigte/autoriza-api/internal/domain/entity"
	"github.com/sigte/autoriza-api/internal/domain/repository"
)

var _ repository.AutorizacionRepository = (*AutorizacionRepo)(nil)

// AutorizacionRepo implementación de AutorizacionRepository (usable con pool o tx).
type AutorizacionRepo struct {
	q Querier
}

// NewAutorizacionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAutorizacionRepository(q Querier) *AutorizacionRepo {
	return &AutorizacionRepo{q: q}
}

// Create persiste una autorización recién creada (PENDIENTE). documento_id es
// único: un documento tiene a lo sumo una autorización.
func (r *AutorizacionRepo) Create(ctx context.Context, aut *entity.Autorizacion) error {
	if aut.ID == "" {
		aut.ID = uuid.New().String()
	}
	query := `
		INSERT INTO autorizaciones (id, documento_id, estado, numero_autorizacion, fecha_autorizacion, correlativo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		aut.ID, aut.DocumentoID, aut.Estado,
		nullIfEmpty(aut.NumeroAutorizacion), aut.FechaAutorizacion, nullIfZero(aut.Correlativo),
		aut.CreatedAt, aut.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: el documento ya tiene autorización", domain.ErrDuplicate)
		}
		return fmt.Errorf("insert autorizacion: %w", err)
	}
	return nil
}

// Update persiste estado, número, correlativo y fecha de autorización.
func (r *AutorizacionRepo) Update(ctx context.Context, aut *entity.Autorizacion) error {
	query := `
		UPDATE autorizaciones
		SET estado              = $2,
		    numero_autorizacion = $3,
		    fecha_autorizacion  = $4,
		    correlativo         = $5,
		    updated_at          = $6
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		aut.ID, aut.Estado, nullIfEmpty(aut.NumeroAutorizacion), aut.FechaAutorizacion,
		nullIfZero(aut.Correlativo), aut.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: número de autorización repetido", domain.ErrDuplicate)
		}
		return fmt.Errorf("update autorizacion: %w", err)
	}
	return nil
}

// CreateError registra un error de validación contra la autorización.
func (r *AutorizacionRepo) CreateError(ctx context.Context, e *entity.ErrorAutorizacion) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	query := `
		INSERT INTO errores_autorizacion (id, autorizacion_id, codigo, detalle, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query, e.ID, e.AutorizacionID, e.Codigo, e.Detalle, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert error autorizacion: %w", err)
	}
	return nil
}

const autorizacionColumns = `
	id, documento_id, estado, COALESCE(numero_autorizacion, ''), fecha_autorizacion,
	COALESCE(correlativo, 0), created_at, updated_at`

// GetByID obtiene una autorización por ID; nil si no existe.
func (r *AutorizacionRepo) GetByID(ctx context.Context, id string) (*entity.Autorizacion, error) {
	query := `SELECT ` + autorizacionColumns + ` FROM autorizaciones WHERE id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, id))
}

// GetByIDForUpdate obtiene una autorización bloqueando su fila (SELECT FOR
// UPDATE); nil si no existe. Debe llamarse dentro de una transacción.
func (r *AutorizacionRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Autorizacion, error) {
	query := `SELECT ` + autorizacionColumns + ` FROM autorizaciones WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRow(ctx, query, id))
}

// GetByDocumentoID obtiene la autorización de un documento; nil si no existe.
func (r *AutorizacionRepo) GetByDocumentoID(ctx context.Context, documentoID string) (*entity.Autorizacion, error) {
	query := `SELECT ` + autorizacionColumns + ` FROM autorizaciones WHERE documento_id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, documentoID))
}

func (r *AutorizacionRepo) scanOne(row pgx.Row) (*entity.Autorizacion, error) {
	var aut entity.Autorizacion
	err := row.Scan(
		&aut.ID, &aut.DocumentoID, &aut.Estado, &aut.NumeroAutorizacion, &aut.FechaAutorizacion,
		&aut.Correlativo, &aut.CreatedAt, &aut.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get autorizacion: %w", err)
	}
	return &aut, nil
}

// GetErrores obtiene los errores registrados, en orden de registro.
func (r *AutorizacionRepo) GetErrores(ctx context.Context, autorizacionID string) ([]entity.ErrorAutorizacion, error) {
	query := `
		SELECT id, autorizacion_id, codigo, detalle, created_at
		FROM errores_autorizacion WHERE autorizacion_id = $1 ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, autorizacionID)
	if err != nil {
		return nil, fmt.Errorf("list errores autorizacion: %w", err)
	}
	defer rows.Close()
	var list []entity.ErrorAutorizacion
	for rows.Next() {
		var e entity.ErrorAutorizacion
		if err := rows.Scan(&e.ID, &e.AutorizacionID, &e.Codigo, &e.Detalle, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan error autorizacion: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// ListAprobacionesPorFecha lista las aprobaciones del día para el informe,
// ordenadas por correlativo.
func (r *AutorizacionRepo) ListAprobacionesPorFecha(ctx context.Context, fecha time.Time) ([]repository.AprobacionDelDia, error) {
	query := `
		SELECT c.nit, d.referencia_interna, a.numero_autorizacion
		FROM autorizaciones a
		JOIN documentos d     ON d.id = a.documento_id
		JOIN contribuyentes c ON c.id = d.emisor_id
		WHERE a.estado = $1 AND a.fecha_autorizacion::date = $2::date
		ORDER BY a.correlativo`
	rows, err := r.q.Query(ctx, query, entity.EstadoAutAprobado, fecha)
	if err != nil {
		return nil, fmt.Errorf("list aprobaciones: %w", err)
	}
	defer rows.Close()
	var list []repository.AprobacionDelDia
	for rows.Next() {
		var a repository.AprobacionDelDia
		if err := rows.Scan(&a.NITEmisor, &a.ReferenciaInterna, &a.NumeroAutorizacion); err != nil {
			return nil, fmt.Errorf("scan aprobacion: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullIfZero(n int64) *int64 {
	if n == 0 {
		return nil
	}
	return &n
}
