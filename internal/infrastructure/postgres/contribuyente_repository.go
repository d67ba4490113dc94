package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sigte/autoriza-api/internal/domain"
	"github.com/sigte/autoriza-api/internal/domain/entity"
	"github.com/sigte/autoriza-api/internal/domain/repository"
)

var _ repository.ContribuyenteRepository = (*ContribuyenteRepo)(nil)

// ContribuyenteRepo implementación de ContribuyenteRepository (usable con pool o tx).
type ContribuyenteRepo struct {
	q Querier
}

// NewContribuyenteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewContribuyenteRepository(q Querier) *ContribuyenteRepo {
	return &ContribuyenteRepo{q: q}
}

// Create persiste un contribuyente. El NIT es único.
func (r *ContribuyenteRepo) Create(ctx context.Context, c *entity.Contribuyente) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	query := `
		INSERT INTO contribuyentes (id, nit, nombre, nombre_comercial, direccion, correo, telefono, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.NIT, c.Nombre, c.NombreComercial, c.Direccion, c.Correo, c.Telefono,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: nit %s", domain.ErrDuplicate, c.NIT)
		}
		return fmt.Errorf("insert contribuyente: %w", err)
	}
	return nil
}

// GetByID obtiene un contribuyente por ID; nil si no existe.
func (r *ContribuyenteRepo) GetByID(ctx context.Context, id string) (*entity.Contribuyente, error) {
	return r.getBy(ctx, "id", id)
}

// GetByNIT obtiene un contribuyente por NIT; nil si no existe.
func (r *ContribuyenteRepo) GetByNIT(ctx context.Context, nit string) (*entity.Contribuyente, error) {
	return r.getBy(ctx, "nit", nit)
}

func (r *ContribuyenteRepo) getBy(ctx context.Context, col, val string) (*entity.Contribuyente, error) {
	query := fmt.Sprintf(`
		SELECT id, nit, nombre, nombre_comercial, direccion, correo, telefono, created_at, updated_at
		FROM contribuyentes WHERE %s = $1`, col)
	var c entity.Contribuyente
	err := r.q.QueryRow(ctx, query, val).Scan(
		&c.ID, &c.NIT, &c.Nombre, &c.NombreComercial, &c.Direccion, &c.Correo, &c.Telefono,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get contribuyente: %w", err)
	}
	return &c, nil
}
