package entity

import "time"

// Estados de una autorización. PENDIENTE es el inicial; APROBADO y RECHAZADO
// son terminales y no admiten transición posterior.
const (
	EstadoAutPendiente = "PENDIENTE"
	EstadoAutAprobado  = "APROBADO"
	EstadoAutRechazado = "RECHAZADO"
)

// Catálogo fijo de códigos de error de validación.
const (
	ErrorNITEmisor           = "NIT_EMISOR"
	ErrorNITReceptor         = "NIT_RECEPTOR"
	ErrorIVA                 = "IVA"
	ErrorTotal               = "TOTAL"
	ErrorReferenciaDuplicada = "REFERENCIA_DUPLICADA"
)

// CodigosError lista el catálogo en el orden en que se evalúan las reglas.
var CodigosError = []string{
	ErrorNITEmisor,
	ErrorNITReceptor,
	ErrorIVA,
	ErrorTotal,
	ErrorReferenciaDuplicada,
}

// Autorizacion registra la decisión sobre un documento (uno a uno).
// Invariante: NumeroAutorizacion y Correlativo son no nulos si y solo si
// Estado es APROBADO. Una vez fuera de PENDIENTE la autorización es inmutable.
type Autorizacion struct {
	ID                 string
	DocumentoID        string
	Estado             string
	NumeroAutorizacion string // YYYYMMDD + correlativo de 8 dígitos; "" hasta aprobar
	FechaAutorizacion  *time.Time
	Correlativo        int64 // 0 hasta aprobar
	Errores            []ErrorAutorizacion
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ErrorAutorizacion es un error de validación registrado contra la
// autorización, con detalle legible para el emisor.
type ErrorAutorizacion struct {
	ID             string
	AutorizacionID string
	Codigo         string
	Detalle        string
	CreatedAt      time.Time
}
