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

var _ repository.DocumentoRepository = (*DocumentoRepo)(nil)

// DocumentoRepo implementación de DocumentoRepository (usable con pool o tx).
// Los documentos se leen con join a contribuyentes para exponer los NIT de
// emisor y receptor sin otra vuelta a la base.
type DocumentoRepo struct {
	q Querier
}

// NewDocumentoRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentoRepository(q Querier) *DocumentoRepo {
	return &DocumentoRepo{q: q}
}

// Create persiste la cabecera del documento.
func (r *DocumentoRepo) Create(ctx context.Context, doc *entity.DocumentoTributario) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	query := `
		INSERT INTO documentos (id, referencia_interna, emisor_id, receptor_id, fecha_emision,
		                        moneda, subtotal, descuento, iva, total, estado, observaciones,
		                        created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		doc.ID, doc.ReferenciaInterna, doc.EmisorID, doc.ReceptorID, doc.FechaEmision,
		doc.Moneda, doc.Subtotal, doc.Descuento, doc.IVA, doc.Total, doc.Estado, doc.Observaciones,
		doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: referencia %s del emisor en la fecha", domain.ErrDuplicate, doc.ReferenciaInterna)
		}
		return fmt.Errorf("insert documento: %w", err)
	}
	return nil
}

// CreateLinea persiste una línea de detalle.
func (r *DocumentoRepo) CreateLinea(ctx context.Context, linea *entity.LineaDocumento) error {
	if linea.ID == "" {
		linea.ID = uuid.New().String()
	}
	query := `
		INSERT INTO lineas_documento (id, documento_id, descripcion, cantidad, precio_unitario, descuento, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		linea.ID, linea.DocumentoID, linea.Descripcion, linea.Cantidad, linea.PrecioUnitario,
		linea.Descuento, linea.Subtotal,
	)
	if err != nil {
		return fmt.Errorf("insert linea documento: %w", err)
	}
	return nil
}

const documentoColumns = `
	d.id, d.referencia_interna, d.emisor_id, e.nit, d.receptor_id, rc.nit,
	d.fecha_emision, d.moneda, d.subtotal, d.descuento, d.iva, d.total,
	d.estado, d.observaciones, d.created_at, d.updated_at`

// GetByID obtiene un documento con los NIT de sus partes; nil si no existe.
func (r *DocumentoRepo) GetByID(ctx context.Context, id string) (*entity.DocumentoTributario, error) {
	query := `
		SELECT ` + documentoColumns + `
		FROM documentos d
		JOIN contribuyentes e  ON e.id  = d.emisor_id
		JOIN contribuyentes rc ON rc.id = d.receptor_id
		WHERE d.id = $1`
	var doc entity.DocumentoTributario
	err := r.q.QueryRow(ctx, query, id).Scan(
		&doc.ID, &doc.ReferenciaInterna, &doc.EmisorID, &doc.EmisorNIT, &doc.ReceptorID, &doc.ReceptorNIT,
		&doc.FechaEmision, &doc.Moneda, &doc.Subtotal, &doc.Descuento, &doc.IVA, &doc.Total,
		&doc.Estado, &doc.Observaciones, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get documento: %w", err)
	}
	return &doc, nil
}

// GetLineas obtiene todas las líneas de un documento en orden de inserción.
func (r *DocumentoRepo) GetLineas(ctx context.Context, documentoID string) ([]*entity.LineaDocumento, error) {
	query := `
		SELECT id, documento_id, descripcion, cantidad, precio_unitario, descuento, subtotal
		FROM lineas_documento WHERE documento_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, documentoID)
	if err != nil {
		return nil, fmt.Errorf("list lineas documento: %w", err)
	}
	defer rows.Close()
	var list []*entity.LineaDocumento
	for rows.Next() {
		var l entity.LineaDocumento
		if err := rows.Scan(&l.ID, &l.DocumentoID, &l.Descripcion, &l.Cantidad, &l.PrecioUnitario, &l.Descuento, &l.Subtotal); err != nil {
			return nil, fmt.Errorf("scan linea: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// UpdateEstado cambia el estado del documento.
func (r *DocumentoRepo) UpdateEstado(ctx context.Context, id, estado string) error {
	query := `UPDATE documentos SET estado = $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, estado)
	if err != nil {
		return fmt.Errorf("update estado documento: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ExisteReferencia busca otro documento del mismo emisor con la misma
// referencia interna y el mismo día calendario de emisión (excluyendo
// excluirID). Día exacto, no ventana de 24 h.
func (r *DocumentoRepo) ExisteReferencia(ctx context.Context, emisorID, referencia string, fecha time.Time, excluirID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM documentos
			WHERE emisor_id = $1
			  AND referencia_interna = $2
			  AND fecha_emision::date = $3::date
			  AND id <> $4
		)`
	var existe bool
	err := r.q.QueryRow(ctx, query, emisorID, referencia, fecha, excluirID).Scan(&existe)
	if err != nil {
		return false, fmt.Errorf("existe referencia: %w", err)
	}
	return existe, nil
}

// ContarPartesDistintas cuenta emisores y receptores distintos entre los
// documentos emitidos en la fecha calendario dada.
func (r *DocumentoRepo) ContarPartesDistintas(ctx context.Context, fecha time.Time) (int64, int64, error) {
	query := `
		SELECT COUNT(DISTINCT emisor_id), COUNT(DISTINCT receptor_id)
		FROM documentos
		WHERE fecha_emision::date = $1::date`
	var emisores, receptores int64
	err := r.q.QueryRow(ctx, query, fecha).Scan(&emisores, &receptores)
	if err != nil {
		return 0, 0, fmt.Errorf("contar partes distintas: %w", err)
	}
	return emisores, receptores, nil
}
