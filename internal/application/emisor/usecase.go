// Package emisor implementa el flujo de emisión: registro de contribuyentes,
// creación de documentos en borrador y su emisión (BORRADOR → EMITIDO), el
// prerequisito para solicitar autorización.
package emisor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sigte/autoriza-api/internal/application/dto"
	"github.com/sigte/autoriza-api/internal/domain"
	"github.com/sigte/autoriza-api/internal/domain/documento"
	"github.com/sigte/autoriza-api/internal/domain/entity"
	"github.com/sigte/autoriza-api/internal/domain/repository"
	"github.com/sigte/autoriza-api/pkg/sat"
)

// MonedaPorDefecto es la moneda de los documentos (quetzal guatemalteco).
const MonedaPorDefecto = "GTQ"

// TxRunner ejecuta una función con los repositorios de emisión en una
// transacción (documento y líneas se guardan juntos).
type TxRunner interface {
	RunEmision(ctx context.Context, fn func(
		docRepo repository.DocumentoRepository,
		contribRepo repository.ContribuyenteRepository,
	) error) error
}

// UseCase crea y emite documentos tributarios.
type UseCase struct {
	txRunner    TxRunner
	docRepo     repository.DocumentoRepository
	contribRepo repository.ContribuyenteRepository
	now         func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner TxRunner, docRepo repository.DocumentoRepository, contribRepo repository.ContribuyenteRepository) *UseCase {
	return &UseCase{
		txRunner:    txRunner,
		docRepo:     docRepo,
		contribRepo: contribRepo,
		now:         time.Now,
	}
}

// RegistrarContribuyente da de alta un contribuyente; el NIT se valida antes
// de persistir.
func (uc *UseCase) RegistrarContribuyente(ctx context.Context, in dto.CrearContribuyenteRequest) (*entity.Contribuyente, error) {
	if in.NIT == "" || in.Nombre == "" || in.Direccion == "" || in.Correo == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := sat.ValidateNIT(in.NIT); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, err.Error())
	}
	ahora := uc.now()
	c := &entity.Contribuyente{
		ID:              uuid.New().String(),
		NIT:             in.NIT,
		Nombre:          in.Nombre,
		NombreComercial: in.NombreComercial,
		Direccion:       in.Direccion,
		Correo:          in.Correo,
		Telefono:        in.Telefono,
		CreatedAt:       ahora,
		UpdatedAt:       ahora,
	}
	if err := uc.contribRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// CrearBorrador crea un documento en BORRADOR con sus líneas. Los subtotales
// de línea y el subtotal del documento se calculan siempre; IVA y total se
// calculan solo si el emisor no los reporta (si los reporta se almacenan tal
// cual y el motor de autorización los verificará).
func (uc *UseCase) CrearBorrador(ctx context.Context, in dto.CrearDocumentoRequest) (*entity.DocumentoTributario, []*entity.LineaDocumento, error) {
	if in.ReferenciaInterna == "" || in.EmisorID == "" || in.ReceptorID == "" || len(in.Lineas) == 0 {
		return nil, nil, domain.ErrInvalidInput
	}
	if in.Descuento.IsNegative() {
		return nil, nil, domain.ErrInvalidInput
	}

	emisor, err := uc.contribRepo.GetByID(ctx, in.EmisorID)
	if err != nil {
		return nil, nil, err
	}
	receptor, err := uc.contribRepo.GetByID(ctx, in.ReceptorID)
	if err != nil {
		return nil, nil, err
	}
	if emisor == nil || receptor == nil {
		return nil, nil, domain.ErrNotFound
	}

	ahora := uc.now()
	fechaEmision := ahora
	if in.FechaEmision != "" {
		f, err := time.Parse(time.RFC3339, in.FechaEmision)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: fecha_emision inválida", domain.ErrInvalidInput)
		}
		fechaEmision = f
	}

	docID := uuid.New().String()
	lineas := make([]*entity.LineaDocumento, 0, len(in.Lineas))
	for _, l := range in.Lineas {
		if l.Descripcion == "" || !l.Cantidad.IsPositive() || !l.PrecioUnitario.IsPositive() || l.Descuento.IsNegative() {
			return nil, nil, domain.ErrInvalidInput
		}
		linea := &entity.LineaDocumento{
			ID:             uuid.New().String(),
			DocumentoID:    docID,
			Descripcion:    l.Descripcion,
			Cantidad:       l.Cantidad,
			PrecioUnitario: l.PrecioUnitario,
			Descuento:      l.Descuento,
		}
		subtotal, err := documento.CalcularSubtotalLinea(linea)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: línea %q: %s", domain.ErrInvalidInput, l.Descripcion, err.Error())
		}
		linea.Subtotal = subtotal
		lineas = append(lineas, linea)
	}

	subtotal, err := documento.SumarLineas(lineas)
	if err != nil {
		return nil, nil, err
	}
	if in.Descuento.GreaterThan(subtotal) {
		return nil, nil, fmt.Errorf("%w: el descuento excede el subtotal", domain.ErrInvalidInput)
	}

	doc := &entity.DocumentoTributario{
		ID:                docID,
		ReferenciaInterna: in.ReferenciaInterna,
		EmisorID:          emisor.ID,
		EmisorNIT:         emisor.NIT,
		ReceptorID:        receptor.ID,
		ReceptorNIT:       receptor.NIT,
		FechaEmision:      fechaEmision,
		Moneda:            MonedaPorDefecto,
		Subtotal:          subtotal,
		Descuento:         in.Descuento.Round(2),
		Estado:            entity.EstadoDocBorrador,
		Observaciones:     in.Observaciones,
		CreatedAt:         ahora,
		UpdatedAt:         ahora,
	}
	if in.IVA != nil {
		doc.IVA = in.IVA.Round(2)
	} else {
		doc.IVA = documento.CalcularIVA(doc)
	}
	if in.Total != nil {
		doc.Total = in.Total.Round(2)
	} else {
		doc.Total = documento.CalcularTotal(doc)
	}

	err = uc.txRunner.RunEmision(ctx, func(
		docRepo repository.DocumentoRepository,
		_ repository.ContribuyenteRepository,
	) error {
		if err := docRepo.Create(ctx, doc); err != nil {
			return err
		}
		for _, linea := range lineas {
			if err := docRepo.CreateLinea(ctx, linea); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return doc, lineas, nil
}

// Emitir finaliza un borrador (BORRADOR → EMITIDO); a partir de aquí el
// documento y sus líneas son inmutables.
func (uc *UseCase) Emitir(ctx context.Context, documentoID string) (*entity.DocumentoTributario, error) {
	doc, err := uc.docRepo.GetByID(ctx, documentoID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	if doc.Estado != entity.EstadoDocBorrador {
		return nil, fmt.Errorf("%w: solo se emiten borradores, actual %s", domain.ErrEstadoInvalido, doc.Estado)
	}
	if err := uc.docRepo.UpdateEstado(ctx, doc.ID, entity.EstadoDocEmitido); err != nil {
		return nil, err
	}
	doc.Estado = entity.EstadoDocEmitido
	return doc, nil
}

// Consultar devuelve el documento con sus líneas.
func (uc *UseCase) Consultar(ctx context.Context, documentoID string) (*entity.DocumentoTributario, []*entity.LineaDocumento, error) {
	doc, err := uc.docRepo.GetByID(ctx, documentoID)
	if err != nil {
		return nil, nil, err
	}
	if doc == nil {
		return nil, nil, domain.ErrNotFound
	}
	lineas, err := uc.docRepo.GetLineas(ctx, documentoID)
	if err != nil {
		return nil, nil, err
	}
	return doc, lineas, nil
}
