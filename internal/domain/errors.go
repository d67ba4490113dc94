package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound         = errors.New("recurso no encontrado")
	ErrInvalidInput     = errors.New("entrada inválida")
	ErrDuplicate        = errors.New("recurso duplicado")
	ErrEstadoInvalido   = errors.New("operación no permitida en el estado actual")
	ErrYaDecidida       = errors.New("la autorización ya fue decidida")
	ErrSubtotalNegativo = errors.New("el descuento excede el monto de la línea")
)
