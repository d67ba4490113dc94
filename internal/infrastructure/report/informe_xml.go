// Package report genera el informe XML de autorizaciones para los
// colaboradores de consulta. Lee autorizaciones y estadísticas; no aplica
// ninguna regla de negocio.
package report

import (
	"context"
	"fmt"
	"strconv"

	"github.com/beevik/etree"

	"github.com/sigte/autoriza-api/internal/domain/repository"
)

// InformeAutorizaciones arma el documento LISTAAUTORIZACIONES: una entrada
// por fecha con contadores del día y el listado de aprobaciones.
type InformeAutorizaciones struct {
	estRepo repository.EstadisticaRepository
	autRepo repository.AutorizacionRepository
}

// NewInformeAutorizaciones construye el generador con repos de solo lectura.
func NewInformeAutorizaciones(estRepo repository.EstadisticaRepository, autRepo repository.AutorizacionRepository) *InformeAutorizaciones {
	return &InformeAutorizaciones{estRepo: estRepo, autRepo: autRepo}
}

// Generar produce el XML con declaración e indentado.
func (s *InformeAutorizaciones) Generar(ctx context.Context) ([]byte, error) {
	estadisticas, err := s.estRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listar estadísticas: %w", err)
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("LISTAAUTORIZACIONES")

	for _, est := range estadisticas {
		aut := root.CreateElement("AUTORIZACION")
		aut.CreateElement("FECHA").SetText(est.Fecha.Format("02/01/2006"))
		aut.CreateElement("FACTURAS_RECIBIDAS").SetText(formatInt(est.FacturasRecibidas))

		errores := aut.CreateElement("ERRORES")
		errores.CreateElement("NIT_EMISOR").SetText(formatInt(est.ErroresNITEmisor))
		errores.CreateElement("NIT_RECEPTOR").SetText(formatInt(est.ErroresNITReceptor))
		errores.CreateElement("IVA").SetText(formatInt(est.ErroresIVA))
		errores.CreateElement("TOTAL").SetText(formatInt(est.ErroresTotal))
		errores.CreateElement("REFERENCIA_DUPLICADA").SetText(formatInt(est.ErroresReferenciaDuplicada))

		aut.CreateElement("FACTURAS_CORRECTAS").SetText(formatInt(est.FacturasCorrectas))
		aut.CreateElement("CANTIDAD_EMISORES").SetText(formatInt(est.CantidadEmisores))
		aut.CreateElement("CANTIDAD_RECEPTORES").SetText(formatInt(est.CantidadReceptores))

		listado := aut.CreateElement("LISTADO_AUTORIZACIONES")
		aprobaciones, err := s.autRepo.ListAprobacionesPorFecha(ctx, est.Fecha)
		if err != nil {
			return nil, fmt.Errorf("listar aprobaciones del %s: %w", est.Fecha.Format("2006-01-02"), err)
		}
		for _, ap := range aprobaciones {
			aprobacion := listado.CreateElement("APROBACION")
			nit := aprobacion.CreateElement("NIT_EMISOR")
			nit.CreateAttr("ref", ap.ReferenciaInterna)
			nit.SetText(ap.NITEmisor)
			aprobacion.CreateElement("CODIGO_APROBACION").SetText(ap.NumeroAutorizacion)
		}
		listado.CreateElement("TOTAL_APROBACIONES").SetText(strconv.Itoa(len(aprobaciones)))
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}
