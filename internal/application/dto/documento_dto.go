package dto

import "github.com/shopspring/decimal"

// LineaRequest es una línea de detalle del documento a crear.
type LineaRequest struct {
	Descripcion    string          `json:"descripcion"`
	Cantidad       decimal.Decimal `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Descuento      decimal.Decimal `json:"descuento"`
}

// CrearDocumentoRequest crea un documento tributario en borrador.
// IVA y Total son opcionales: si faltan se calculan; si vienen se almacenan
// tal cual y el motor de autorización los verificará contra el recálculo.
type CrearDocumentoRequest struct {
	ReferenciaInterna string           `json:"referencia_interna"`
	EmisorID          string           `json:"emisor_id"`
	ReceptorID        string           `json:"receptor_id"`
	FechaEmision      string           `json:"fecha_emision"` // RFC 3339; vacío = ahora
	Descuento         decimal.Decimal  `json:"descuento"`
	IVA               *decimal.Decimal `json:"iva,omitempty"`
	Total             *decimal.Decimal `json:"total,omitempty"`
	Observaciones     string           `json:"observaciones"`
	Lineas            []LineaRequest   `json:"lineas"`
}

// LineaResponse es una línea de detalle en la respuesta.
type LineaResponse struct {
	ID             string          `json:"id"`
	Descripcion    string          `json:"descripcion"`
	Cantidad       decimal.Decimal `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Descuento      decimal.Decimal `json:"descuento"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

// DocumentoResponse es la vista completa de un documento.
type DocumentoResponse struct {
	ID                string          `json:"id"`
	ReferenciaInterna string          `json:"referencia_interna"`
	EmisorID          string          `json:"emisor_id"`
	EmisorNIT         string          `json:"emisor_nit"`
	ReceptorID        string          `json:"receptor_id"`
	ReceptorNIT       string          `json:"receptor_nit"`
	FechaEmision      string          `json:"fecha_emision"`
	Moneda            string          `json:"moneda"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	Descuento         decimal.Decimal `json:"descuento"`
	IVA               decimal.Decimal `json:"iva"`
	Total             decimal.Decimal `json:"total"`
	Estado            string          `json:"estado"`
	Observaciones     string          `json:"observaciones,omitempty"`
	Lineas            []LineaResponse `json:"lineas,omitempty"`
}

// CrearContribuyenteRequest registra un contribuyente.
type CrearContribuyenteRequest struct {
	NIT             string `json:"nit"`
	Nombre          string `json:"nombre"`
	NombreComercial string `json:"nombre_comercial"`
	Direccion       string `json:"direccion"`
	Correo          string `json:"correo"`
	Telefono        string `json:"telefono"`
}

// ContribuyenteResponse es la vista de un contribuyente.
type ContribuyenteResponse struct {
	ID              string `json:"id"`
	NIT             string `json:"nit"`
	Nombre          string `json:"nombre"`
	NombreComercial string `json:"nombre_comercial,omitempty"`
	Direccion       string `json:"direccion"`
	Correo          string `json:"correo"`
	Telefono        string `json:"telefono,omitempty"`
}
