package entity

import "time"

// Contribuyente es una parte tributaria identificada por NIT; puede actuar
// como emisor o receptor de documentos.
type Contribuyente struct {
	ID              string
	NIT             string
	Nombre          string
	NombreComercial string
	Direccion       string
	Correo          string
	Telefono        string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
