package autoriza

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigte/autoriza-api/internal/domain"
	"github.com/sigte/autoriza-api/internal/domain/entity"
	"github.com/sigte/autoriza-api/internal/domain/repository"
	"github.com/sigte/autoriza-api/pkg/logger"
)

// memStore es el estado compartido de los repos en memoria. Los métodos toman
// su propio lock; la exclusión entre decisiones la da memTxRunner.
type memStore struct {
	mu          sync.Mutex
	docs        map[string]*entity.DocumentoTributario
	auts        map[string]*entity.Autorizacion
	errores     map[string][]entity.ErrorAutorizacion
	estadistica map[string]*entity.EstadisticaDiaria
	secuencia   map[string]int64
}

func newMemStore() *memStore {
	return &memStore{
		docs:        make(map[string]*entity.DocumentoTributario),
		auts:        make(map[string]*entity.Autorizacion),
		errores:     make(map[string][]entity.ErrorAutorizacion),
		estadistica: make(map[string]*entity.EstadisticaDiaria),
		secuencia:   make(map[string]int64),
	}
}

func fechaKey(t time.Time) string { return t.Format("2006-01-02") }

type memDocRepo struct{ s *memStore }

func (r *memDocRepo) Create(_ context.Context, doc *entity.DocumentoTributario) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	copia := *doc
	r.s.docs[doc.ID] = &copia
	return nil
}

func (r *memDocRepo) CreateLinea(context.Context, *entity.LineaDocumento) error { return nil }

func (r *memDocRepo) GetByID(_ context.Context, id string) (*entity.DocumentoTributario, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	doc, ok := r.s.docs[id]
	if !ok {
		return nil, nil
	}
	copia := *doc
	return &copia, nil
}

func (r *memDocRepo) GetLineas(context.Context, string) ([]*entity.LineaDocumento, error) {
	return nil, nil
}

func (r *memDocRepo) UpdateEstado(_ context.Context, id, estado string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	doc, ok := r.s.docs[id]
	if !ok {
		return domain.ErrNotFound
	}
	doc.Estado = estado
	return nil
}

func (r *memDocRepo) ExisteReferencia(_ context.Context, emisorID, referencia string, fecha time.Time, excluirID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, doc := range r.s.docs {
		if doc.ID != excluirID && doc.EmisorID == emisorID && doc.ReferenciaInterna == referencia &&
			fechaKey(doc.FechaEmision) == fechaKey(fecha) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memDocRepo) ContarPartesDistintas(_ context.Context, fecha time.Time) (int64, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	emisores := make(map[string]struct{})
	receptores := make(map[string]struct{})
	for _, doc := range r.s.docs {
		if fechaKey(doc.FechaEmision) == fechaKey(fecha) {
			emisores[doc.EmisorID] = struct{}{}
			receptores[doc.ReceptorID] = struct{}{}
		}
	}
	return int64(len(emisores)), int64(len(receptores)), nil
}

type memAutRepo struct{ s *memStore }

func (r *memAutRepo) Create(_ context.Context, aut *entity.Autorizacion) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existente := range r.s.auts {
		if existente.DocumentoID == aut.DocumentoID {
			return domain.ErrDuplicate
		}
	}
	copia := *aut
	r.s.auts[aut.ID] = &copia
	return nil
}

func (r *memAutRepo) Update(_ context.Context, aut *entity.Autorizacion) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	copia := *aut
	r.s.auts[aut.ID] = &copia
	return nil
}

func (r *memAutRepo) CreateError(_ context.Context, e *entity.ErrorAutorizacion) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.errores[e.AutorizacionID] = append(r.s.errores[e.AutorizacionID], *e)
	return nil
}

func (r *memAutRepo) GetByID(_ context.Context, id string) (*entity.Autorizacion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	aut, ok := r.s.auts[id]
	if !ok {
		return nil, nil
	}
	copia := *aut
	return &copia, nil
}

func (r *memAutRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Autorizacion, error) {
	return r.GetByID(ctx, id)
}

func (r *memAutRepo) GetByDocumentoID(_ context.Context, documentoID string) (*entity.Autorizacion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, aut := range r.s.auts {
		if aut.DocumentoID == documentoID {
			copia := *aut
			return &copia, nil
		}
	}
	return nil, nil
}

func (r *memAutRepo) GetErrores(_ context.Context, autorizacionID string) ([]entity.ErrorAutorizacion, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]entity.ErrorAutorizacion(nil), r.s.errores[autorizacionID]...), nil
}

func (r *memAutRepo) ListAprobacionesPorFecha(_ context.Context, fecha time.Time) ([]repository.AprobacionDelDia, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var auts []*entity.Autorizacion
	for _, aut := range r.s.auts {
		if aut.Estado == entity.EstadoAutAprobado && aut.FechaAutorizacion != nil &&
			fechaKey(*aut.FechaAutorizacion) == fechaKey(fecha) {
			auts = append(auts, aut)
		}
	}
	sort.Slice(auts, func(i, j int) bool { return auts[i].Correlativo < auts[j].Correlativo })
	var list []repository.AprobacionDelDia
	for _, aut := range auts {
		doc := r.s.docs[aut.DocumentoID]
		list = append(list, repository.AprobacionDelDia{
			NITEmisor:          doc.EmisorNIT,
			ReferenciaInterna:  doc.ReferenciaInterna,
			NumeroAutorizacion: aut.NumeroAutorizacion,
		})
	}
	return list, nil
}

type memEstRepo struct{ s *memStore }

func (r *memEstRepo) GetForUpdate(_ context.Context, fecha time.Time) (*entity.EstadisticaDiaria, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := fechaKey(fecha)
	est, ok := r.s.estadistica[key]
	if !ok {
		est = &entity.EstadisticaDiaria{Fecha: fecha}
		r.s.estadistica[key] = est
	}
	copia := *est
	return &copia, nil
}

func (r *memEstRepo) Save(_ context.Context, est *entity.EstadisticaDiaria) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	copia := *est
	r.s.estadistica[fechaKey(est.Fecha)] = &copia
	return nil
}

func (r *memEstRepo) Get(_ context.Context, fecha time.Time) (*entity.EstadisticaDiaria, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	est, ok := r.s.estadistica[fechaKey(fecha)]
	if !ok {
		return nil, nil
	}
	copia := *est
	return &copia, nil
}

func (r *memEstRepo) ListAll(_ context.Context) ([]*entity.EstadisticaDiaria, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.EstadisticaDiaria
	for _, est := range r.s.estadistica {
		copia := *est
		list = append(list, &copia)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Fecha.Before(list[j].Fecha) })
	return list, nil
}

type memSecRepo struct{ s *memStore }

func (r *memSecRepo) Siguiente(_ context.Context, fecha time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := fechaKey(fecha)
	r.s.secuencia[key]++
	return r.s.secuencia[key], nil
}

// memTxRunner serializa decisiones completas, como lo hace la base con el
// bloqueo de fila de secuencia y estadística.
type memTxRunner struct {
	mu sync.Mutex
	s  *memStore
}

func (tr *memTxRunner) Run(_ context.Context, fn func(
	repository.DocumentoRepository,
	repository.AutorizacionRepository,
	repository.EstadisticaRepository,
	repository.SecuenciaRepository,
) error) error {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return fn(&memDocRepo{tr.s}, &memAutRepo{tr.s}, &memEstRepo{tr.s}, &memSecRepo{tr.s})
}

// rowLockTxRunner no serializa decisiones completas: cada Run corre en
// paralelo (read committed) y la única exclusión es el bloqueo de fila que
// toma GetByIDForUpdate, liberado al terminar la transacción.
type rowLockTxRunner struct {
	s      *memStore
	lockMu sync.Mutex
	filas  map[string]*sync.Mutex
}

func (tr *rowLockTxRunner) filaDe(id string) *sync.Mutex {
	tr.lockMu.Lock()
	defer tr.lockMu.Unlock()
	if tr.filas == nil {
		tr.filas = make(map[string]*sync.Mutex)
	}
	if _, ok := tr.filas[id]; !ok {
		tr.filas[id] = &sync.Mutex{}
	}
	return tr.filas[id]
}

type lockingAutRepo struct {
	memAutRepo
	tr        *rowLockTxRunner
	adquirido []*sync.Mutex
}

func (r *lockingAutRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.Autorizacion, error) {
	fila := r.tr.filaDe(id)
	fila.Lock()
	r.adquirido = append(r.adquirido, fila)
	return r.memAutRepo.GetByID(ctx, id)
}

func (tr *rowLockTxRunner) Run(_ context.Context, fn func(
	repository.DocumentoRepository,
	repository.AutorizacionRepository,
	repository.EstadisticaRepository,
	repository.SecuenciaRepository,
) error) error {
	autRepo := &lockingAutRepo{memAutRepo: memAutRepo{tr.s}, tr: tr}
	defer func() {
		for _, fila := range autRepo.adquirido {
			fila.Unlock()
		}
	}()
	return fn(&memDocRepo{tr.s}, autRepo, &memEstRepo{tr.s}, &memSecRepo{tr.s})
}

func nuevoMotor(s *memStore, ahora time.Time) *UseCase {
	uc := NewUseCase(&memTxRunner{s: s}, &memAutRepo{s}, NewValidador(), logger.Nop())
	uc.now = func() time.Time { return ahora }
	return uc
}

func sembrarDocumento(s *memStore, id, referencia string, fecha time.Time) *entity.DocumentoTributario {
	doc := &entity.DocumentoTributario{
		ID:                id,
		ReferenciaInterna: referencia,
		EmisorID:          "em-1",
		EmisorNIT:         "123456789",
		ReceptorID:        "re-1",
		ReceptorNIT:       "6K",
		FechaEmision:      fecha,
		Moneda:            "GTQ",
		Subtotal:          decimal.RequireFromString("100.00"),
		Descuento:         decimal.Zero,
		IVA:               decimal.RequireFromString("12.00"),
		Total:             decimal.RequireFromString("112.00"),
		Estado:            entity.EstadoDocEmitido,
	}
	s.mu.Lock()
	s.docs[id] = doc
	s.mu.Unlock()
	return doc
}

func TestSolicitar_Aprobacion(t *testing.T) {
	fecha := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	s := newMemStore()
	sembrarDocumento(s, "doc-1", "FAC-001", fecha)
	uc := nuevoMotor(s, fecha)

	resultado, err := uc.Solicitar(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.True(t, resultado.Aprobada)
	assert.Equal(t, entity.EstadoAutAprobado, resultado.Autorizacion.Estado)
	assert.Equal(t, "2024031500000001", resultado.Autorizacion.NumeroAutorizacion,
		"número = fecha de aprobación + correlativo a 8 dígitos")
	assert.Equal(t, int64(1), resultado.Autorizacion.Correlativo)
	require.NotNil(t, resultado.Autorizacion.FechaAutorizacion)

	assert.Equal(t, entity.EstadoDocAutorizado, s.docs["doc-1"].Estado)

	est := s.estadistica[fechaKey(fecha)]
	require.NotNil(t, est)
	assert.Equal(t, int64(1), est.FacturasRecibidas)
	assert.Equal(t, int64(1), est.FacturasCorrectas)
	assert.Equal(t, int64(0), est.TotalErrores())
	assert.Equal(t, int64(1), est.CantidadEmisores)
	assert.Equal(t, int64(1), est.CantidadReceptores)

	// Segunda aprobación del mismo día: correlativo consecutivo.
	sembrarDocumento(s, "doc-2", "FAC-002", fecha)
	resultado2, err := uc.Solicitar(context.Background(), "doc-2")
	require.NoError(t, err)
	assert.Equal(t, "2024031500000002", resultado2.Autorizacion.NumeroAutorizacion)
}

func TestSolicitar_Rechazo(t *testing.T) {
	fecha := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	s := newMemStore()
	doc := sembrarDocumento(s, "doc-1", "FAC-001", fecha)
	doc.IVA = decimal.RequireFromString("5.00")
	doc.Total = decimal.RequireFromString("105.00") // coherente con su IVA; solo falla la regla de IVA
	uc := nuevoMotor(s, fecha)

	resultado, err := uc.Solicitar(context.Background(), "doc-1")
	require.NoError(t, err, "un rechazo es una decisión, no un error")
	assert.False(t, resultado.Aprobada)
	assert.Equal(t, entity.EstadoAutRechazado, resultado.Autorizacion.Estado)
	assert.Empty(t, resultado.Autorizacion.NumeroAutorizacion, "un rechazo no lleva número")
	assert.Zero(t, resultado.Autorizacion.Correlativo)
	require.Len(t, resultado.Autorizacion.Errores, 1)
	assert.Equal(t, entity.ErrorIVA, resultado.Autorizacion.Errores[0].Codigo)

	assert.Equal(t, entity.EstadoDocRechazado, s.docs["doc-1"].Estado)

	est := s.estadistica[fechaKey(fecha)]
	require.NotNil(t, est)
	assert.Equal(t, int64(1), est.FacturasRecibidas)
	assert.Equal(t, int64(0), est.FacturasCorrectas)
	assert.Equal(t, int64(1), est.ErroresIVA)

	// El rechazo no consumió correlativo: la primera aprobación sigue siendo 1.
	sembrarDocumento(s, "doc-2", "FAC-002", fecha)
	resultado2, err := uc.Solicitar(context.Background(), "doc-2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), resultado2.Autorizacion.Correlativo,
		"la secuencia no avanza con rechazos")
}

func TestSolicitar_EstadosInvalidos(t *testing.T) {
	fecha := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	s := newMemStore()
	doc := sembrarDocumento(s, "doc-1", "FAC-001", fecha)
	doc.Estado = entity.EstadoDocBorrador
	uc := nuevoMotor(s, fecha)

	_, err := uc.Solicitar(context.Background(), "doc-1")
	assert.ErrorIs(t, err, domain.ErrEstadoInvalido, "solo se autorizan documentos EMITIDOS")

	_, err = uc.Solicitar(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSolicitar_UnaAutorizacionPorDocumento(t *testing.T) {
	fecha := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	s := newMemStore()
	sembrarDocumento(s, "doc-1", "FAC-001", fecha)
	uc := nuevoMotor(s, fecha)

	_, err := uc.Solicitar(context.Background(), "doc-1")
	require.NoError(t, err)

	_, err = uc.Solicitar(context.Background(), "doc-1")
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	// La solicitud rechazada no tocó el acumulado: sigue contando una sola.
	est := s.estadistica[fechaKey(fecha)]
	assert.Equal(t, int64(1), est.FacturasRecibidas, "el duplicado no se cuenta dos veces")
}

func TestDecidir_PendienteYTerminal(t *testing.T) {
	fecha := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	s := newMemStore()
	sembrarDocumento(s, "doc-1", "FAC-001", fecha)
	s.auts["aut-1"] = &entity.Autorizacion{
		ID:          "aut-1",
		DocumentoID: "doc-1",
		Estado:      entity.EstadoAutPendiente,
		CreatedAt:   fecha,
		UpdatedAt:   fecha,
	}
	uc := nuevoMotor(s, fecha)

	resultado, err := uc.Decidir(context.Background(), "aut-1")
	require.NoError(t, err)
	assert.True(t, resultado.Aprobada)
	assert.Equal(t, "2024031500000001", resultado.Autorizacion.NumeroAutorizacion)

	// Los estados terminales son inmutables: no hay segunda decisión.
	_, err = uc.Decidir(context.Background(), "aut-1")
	assert.ErrorIs(t, err, domain.ErrYaDecidida)

	est := s.estadistica[fechaKey(fecha)]
	assert.Equal(t, int64(1), est.FacturasRecibidas, "el reintento no duplica el conteo")
}

// Dos decisiones concurrentes sobre la misma autorización PENDIENTE, sin
// serializar las transacciones completas: el bloqueo de fila de la
// autorización garantiza que exactamente una aprueba; la otra encuentra el
// estado terminal, falla con ErrYaDecidida y no consume correlativo ni
// incrementa la estadística.
func TestDecidir_ConcurrenteSobreLaMismaAutorizacion(t *testing.T) {
	fecha := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	s := newMemStore()
	sembrarDocumento(s, "doc-1", "FAC-001", fecha)
	s.auts["aut-1"] = &entity.Autorizacion{
		ID:          "aut-1",
		DocumentoID: "doc-1",
		Estado:      entity.EstadoAutPendiente,
		CreatedAt:   fecha,
		UpdatedAt:   fecha,
	}
	uc := NewUseCase(&rowLockTxRunner{s: s}, &memAutRepo{s}, NewValidador(), logger.Nop())
	uc.now = func() time.Time { return fecha }

	var wg sync.WaitGroup
	resultados := make([]*Resultado, 2)
	fallos := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resultados[i], fallos[i] = uc.Decidir(context.Background(), "aut-1")
		}(i)
	}
	wg.Wait()

	var aprobadas, yaDecididas int
	for i := range fallos {
		switch {
		case fallos[i] == nil:
			aprobadas++
			assert.Equal(t, int64(1), resultados[i].Autorizacion.Correlativo)
			assert.Equal(t, "2024031500000001", resultados[i].Autorizacion.NumeroAutorizacion)
		case errors.Is(fallos[i], domain.ErrYaDecidida):
			yaDecididas++
		default:
			t.Fatalf("error inesperado: %v", fallos[i])
		}
	}
	assert.Equal(t, 1, aprobadas, "exactamente una decisión debe aprobar")
	assert.Equal(t, 1, yaDecididas, "la otra debe fallar con ErrYaDecidida")
	assert.Equal(t, int64(1), s.secuencia[fechaKey(fecha)], "solo se consume un correlativo")
	est := s.estadistica[fechaKey(fecha)]
	require.NotNil(t, est)
	assert.Equal(t, int64(1), est.FacturasRecibidas, "el documento se cuenta una sola vez")
	assert.Equal(t, int64(1), est.FacturasCorrectas)
}

// Aprobaciones concurrentes del mismo día reciben correlativos distintos y
// consecutivos desde 1.
func TestSolicitar_ConcurrenciaMismaFecha(t *testing.T) {
	const n = 8
	fecha := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	s := newMemStore()
	for i := 0; i < n; i++ {
		sembrarDocumento(s, fmt.Sprintf("doc-%d", i), fmt.Sprintf("FAC-%03d", i), fecha)
	}
	uc := nuevoMotor(s, fecha)

	var wg sync.WaitGroup
	resultados := make([]*Resultado, n)
	fallos := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resultados[i], fallos[i] = uc.Solicitar(context.Background(), fmt.Sprintf("doc-%d", i))
		}(i)
	}
	wg.Wait()

	vistos := make(map[int64]bool)
	for i, resultado := range resultados {
		require.NoError(t, fallos[i])
		assert.True(t, resultado.Aprobada)
		assert.False(t, vistos[resultado.Autorizacion.Correlativo], "correlativo repetido")
		vistos[resultado.Autorizacion.Correlativo] = true
	}
	for c := int64(1); c <= n; c++ {
		assert.True(t, vistos[c], "falta el correlativo %d: la secuencia tiene huecos", c)
	}

	est := s.estadistica[fechaKey(fecha)]
	assert.Equal(t, int64(n), est.FacturasRecibidas)
	assert.Equal(t, int64(n), est.FacturasCorrectas)
}

func TestConsultar(t *testing.T) {
	fecha := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	s := newMemStore()
	doc := sembrarDocumento(s, "doc-1", "FAC-001", fecha)
	doc.EmisorNIT = "123456780" // dígito verificador incorrecto
	uc := nuevoMotor(s, fecha)

	resultado, err := uc.Solicitar(context.Background(), "doc-1")
	require.NoError(t, err)
	require.False(t, resultado.Aprobada)

	aut, err := uc.Consultar(context.Background(), resultado.Autorizacion.ID)
	require.NoError(t, err)
	require.Len(t, aut.Errores, 1)
	assert.Equal(t, entity.ErrorNITEmisor, aut.Errores[0].Codigo)

	porDoc, err := uc.ConsultarPorDocumento(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, aut.ID, porDoc.ID)

	_, err = uc.Consultar(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
