package autoriza

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sigte/autoriza-api/internal/domain"
	"github.com/sigte/autoriza-api/internal/domain/entity"
	"github.com/sigte/autoriza-api/internal/domain/repository"
	"github.com/sigte/autoriza-api/pkg/logger"
)

// Resultado es el desenlace de una decisión de autorización.
type Resultado struct {
	Aprobada     bool
	Autorizacion *entity.Autorizacion
}

// UseCase es la máquina de estados de autorización: PENDIENTE →
// APROBADO | RECHAZADO, ambos terminales. Solicitar es el único punto de
// entrada visible para el flujo de emisión; crea la autorización y decide de
// inmediato en una sola transacción.
type UseCase struct {
	txRunner  TxRunner
	autRepo   repository.AutorizacionRepository
	validador *Validador
	log       *logger.Logger
	now       func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner TxRunner, autRepo repository.AutorizacionRepository, validador *Validador, log *logger.Logger) *UseCase {
	return &UseCase{
		txRunner:  txRunner,
		autRepo:   autRepo,
		validador: validador,
		log:       log,
		now:       time.Now,
	}
}

// Solicitar crea una solicitud de autorización para un documento EMITIDO y la
// decide en la misma transacción. Falla con ErrDuplicate si el documento ya
// tiene autorización y con ErrEstadoInvalido si no está EMITIDO.
func (uc *UseCase) Solicitar(ctx context.Context, documentoID string) (*Resultado, error) {
	var resultado *Resultado
	err := uc.txRunner.Run(ctx, func(
		docRepo repository.DocumentoRepository,
		autRepo repository.AutorizacionRepository,
		estRepo repository.EstadisticaRepository,
		secRepo repository.SecuenciaRepository,
	) error {
		doc, err := docRepo.GetByID(ctx, documentoID)
		if err != nil {
			return err
		}
		if doc == nil {
			return domain.ErrNotFound
		}
		// La solicitud repetida se detecta antes que el estado: un documento ya
		// decidido falla con ErrDuplicate, no con el estado terminal que dejó.
		if existente, err := autRepo.GetByDocumentoID(ctx, documentoID); err != nil {
			return err
		} else if existente != nil {
			return domain.ErrDuplicate
		}
		if doc.Estado != entity.EstadoDocEmitido {
			return fmt.Errorf("%w: solo se autorizan documentos en estado EMITIDO, actual %s",
				domain.ErrEstadoInvalido, doc.Estado)
		}

		ahora := uc.now()
		aut := &entity.Autorizacion{
			ID:          uuid.New().String(),
			DocumentoID: doc.ID,
			Estado:      entity.EstadoAutPendiente,
			CreatedAt:   ahora,
			UpdatedAt:   ahora,
		}
		if err := autRepo.Create(ctx, aut); err != nil {
			return err
		}

		resultado, err = uc.decidir(ctx, docRepo, autRepo, estRepo, secRepo, aut, doc)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("documento_id", documentoID).
		Bool("aprobada", resultado.Aprobada).
		Str("numero", resultado.Autorizacion.NumeroAutorizacion).
		Msg("autorización decidida")
	return resultado, nil
}

// Decidir decide una autorización PENDIENTE existente (reintento de una
// decisión que falló por un error de recurso). Falla con ErrYaDecidida si la
// autorización ya alcanzó un estado terminal.
func (uc *UseCase) Decidir(ctx context.Context, autorizacionID string) (*Resultado, error) {
	var resultado *Resultado
	err := uc.txRunner.Run(ctx, func(
		docRepo repository.DocumentoRepository,
		autRepo repository.AutorizacionRepository,
		estRepo repository.EstadisticaRepository,
		secRepo repository.SecuenciaRepository,
	) error {
		// Bloquea la fila de la autorización antes de leer el estado: una
		// decisión concurrente espera aquí y encuentra el estado terminal.
		aut, err := autRepo.GetByIDForUpdate(ctx, autorizacionID)
		if err != nil {
			return err
		}
		if aut == nil {
			return domain.ErrNotFound
		}
		doc, err := docRepo.GetByID(ctx, aut.DocumentoID)
		if err != nil {
			return err
		}
		if doc == nil {
			return domain.ErrNotFound
		}
		resultado, err = uc.decidir(ctx, docRepo, autRepo, estRepo, secRepo, aut, doc)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resultado, nil
}

// decidir corre las reglas y conduce la autorización a su estado terminal.
// Debe invocarse dentro de la transacción del TxRunner.
func (uc *UseCase) decidir(
	ctx context.Context,
	docRepo repository.DocumentoRepository,
	autRepo repository.AutorizacionRepository,
	estRepo repository.EstadisticaRepository,
	secRepo repository.SecuenciaRepository,
	aut *entity.Autorizacion,
	doc *entity.DocumentoTributario,
) (*Resultado, error) {
	if aut.Estado != entity.EstadoAutPendiente {
		return nil, domain.ErrYaDecidida
	}

	errores, err := uc.validador.Ejecutar(ctx, doc, docRepo)
	if err != nil {
		return nil, err
	}

	aprobada := len(errores) == 0
	if aprobada {
		if err := uc.aprobar(ctx, docRepo, autRepo, secRepo, aut); err != nil {
			return nil, err
		}
	} else {
		if err := uc.rechazar(ctx, docRepo, autRepo, aut, errores); err != nil {
			return nil, err
		}
	}

	if err := actualizarEstadisticas(ctx, docRepo, estRepo, doc, aprobada, errores); err != nil {
		return nil, err
	}
	return &Resultado{Aprobada: aprobada, Autorizacion: aut}, nil
}

// aprobar consume el siguiente correlativo del día, genera el número de
// autorización (YYYYMMDD + correlativo a 8 dígitos) y pasa documento y
// autorización a sus estados aprobados. El correlativo solo se consume aquí.
func (uc *UseCase) aprobar(
	ctx context.Context,
	docRepo repository.DocumentoRepository,
	autRepo repository.AutorizacionRepository,
	secRepo repository.SecuenciaRepository,
	aut *entity.Autorizacion,
) error {
	ahora := uc.now()
	correlativo, err := secRepo.Siguiente(ctx, ahora)
	if err != nil {
		return fmt.Errorf("generar correlativo: %w", err)
	}

	aut.Correlativo = correlativo
	aut.NumeroAutorizacion = fmt.Sprintf("%s%08d", ahora.Format("20060102"), correlativo)
	aut.FechaAutorizacion = &ahora
	aut.Estado = entity.EstadoAutAprobado
	aut.UpdatedAt = ahora
	if err := autRepo.Update(ctx, aut); err != nil {
		return err
	}
	return docRepo.UpdateEstado(ctx, aut.DocumentoID, entity.EstadoDocAutorizado)
}

// rechazar registra cada error detectado contra la autorización y pasa
// documento y autorización a RECHAZADO. No toca número ni correlativo.
func (uc *UseCase) rechazar(
	ctx context.Context,
	docRepo repository.DocumentoRepository,
	autRepo repository.AutorizacionRepository,
	aut *entity.Autorizacion,
	errores []ErrorDetectado,
) error {
	ahora := uc.now()
	for _, e := range errores {
		registro := entity.ErrorAutorizacion{
			ID:             uuid.New().String(),
			AutorizacionID: aut.ID,
			Codigo:         e.Codigo,
			Detalle:        e.Detalle,
			CreatedAt:      ahora,
		}
		if err := autRepo.CreateError(ctx, &registro); err != nil {
			return err
		}
		aut.Errores = append(aut.Errores, registro)
	}

	aut.FechaAutorizacion = &ahora
	aut.Estado = entity.EstadoAutRechazado
	aut.UpdatedAt = ahora
	if err := autRepo.Update(ctx, aut); err != nil {
		return err
	}
	return docRepo.UpdateEstado(ctx, aut.DocumentoID, entity.EstadoDocRechazado)
}

// Consultar devuelve la autorización con sus errores registrados.
func (uc *UseCase) Consultar(ctx context.Context, autorizacionID string) (*entity.Autorizacion, error) {
	aut, err := uc.autRepo.GetByID(ctx, autorizacionID)
	if err != nil {
		return nil, err
	}
	if aut == nil {
		return nil, domain.ErrNotFound
	}
	errores, err := uc.autRepo.GetErrores(ctx, aut.ID)
	if err != nil {
		return nil, err
	}
	aut.Errores = errores
	return aut, nil
}

// ConsultarPorDocumento devuelve la autorización de un documento, con errores.
func (uc *UseCase) ConsultarPorDocumento(ctx context.Context, documentoID string) (*entity.Autorizacion, error) {
	aut, err := uc.autRepo.GetByDocumentoID(ctx, documentoID)
	if err != nil {
		return nil, err
	}
	if aut == nil {
		return nil, domain.ErrNotFound
	}
	errores, err := uc.autRepo.GetErrores(ctx, aut.ID)
	if err != nil {
		return nil, err
	}
	aut.Errores = errores
	return aut, nil
}
