package dto

// ErrorValidacionResponse es un error registrado contra una autorización.
type ErrorValidacionResponse struct {
	Codigo  string `json:"codigo"`
	Detalle string `json:"detalle"`
}

// AutorizacionResponse es el handle que el flujo de emisión consulta.
type AutorizacionResponse struct {
	ID                 string                    `json:"id"`
	DocumentoID        string                    `json:"documento_id"`
	Estado             string                    `json:"estado"`
	NumeroAutorizacion string                    `json:"numero_autorizacion,omitempty"`
	Correlativo        int64                     `json:"correlativo,omitempty"`
	FechaAutorizacion  string                    `json:"fecha_autorizacion,omitempty"`
	Errores            []ErrorValidacionResponse `json:"errores,omitempty"`
}

// EstadisticaResponse es la fila diaria de estadísticas.
type EstadisticaResponse struct {
	Fecha                      string `json:"fecha"`
	FacturasRecibidas          int64  `json:"facturas_recibidas"`
	ErroresNITEmisor           int64  `json:"errores_nit_emisor"`
	ErroresNITReceptor         int64  `json:"errores_nit_receptor"`
	ErroresIVA                 int64  `json:"errores_iva"`
	ErroresTotal               int64  `json:"errores_total"`
	ErroresReferenciaDuplicada int64  `json:"errores_referencia_duplicada"`
	FacturasCorrectas          int64  `json:"facturas_correctas"`
	CantidadEmisores           int64  `json:"cantidad_emisores"`
	CantidadReceptores         int64  `json:"cantidad_receptores"`
}
