package entity

import "time"

// EstadisticaDiaria es el acumulado de autorizaciones de una fecha calendario.
// Los contadores solo crecen; CantidadEmisores y CantidadReceptores son
// recuentos exactos al momento de la última actualización, no incrementales.
type EstadisticaDiaria struct {
	Fecha                      time.Time // fecha calendario (sin hora)
	FacturasRecibidas          int64
	ErroresNITEmisor           int64
	ErroresNITReceptor         int64
	ErroresIVA                 int64
	ErroresTotal               int64
	ErroresReferenciaDuplicada int64
	FacturasCorrectas          int64
	CantidadEmisores           int64
	CantidadReceptores         int64
}

// TotalErrores suma los contadores de errores detectados.
func (e *EstadisticaDiaria) TotalErrores() int64 {
	return e.ErroresNITEmisor + e.ErroresNITReceptor + e.ErroresIVA +
		e.ErroresTotal + e.ErroresReferenciaDuplicada
}

// IncrementarError aumenta el contador correspondiente al código; códigos
// fuera del catálogo se ignoran.
func (e *EstadisticaDiaria) IncrementarError(codigo string) {
	switch codigo {
	case ErrorNITEmisor:
		e.ErroresNITEmisor++
	case ErrorNITReceptor:
		e.ErroresNITReceptor++
	case ErrorIVA:
		e.ErroresIVA++
	case ErrorTotal:
		e.ErroresTotal++
	case ErrorReferenciaDuplicada:
		e.ErroresReferenciaDuplicada++
	}
}
