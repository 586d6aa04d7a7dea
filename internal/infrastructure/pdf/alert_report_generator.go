// Package pdf implementa el reporte imprimible de alertas de bajo stock.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Empresa  │  Fecha de corte + filtro de bodega      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: total de alertas / faults del lote                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Sev | SKU | Producto | Bodega | Stock | Umbral |     │
//	│         Días | Proveedor | Razones                           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: faults por producto (si los hay)                    │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/stockflow-api/internal/application/alerts"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorAlert   = &props.Color{Red: 170, Green: 30, Blue: 30}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// AlertReportGenerator genera el reporte PDF de alertas usando Maroto v2.
type AlertReportGenerator struct{}

// NewAlertReportGenerator construye el generador.
func NewAlertReportGenerator() *AlertReportGenerator { return &AlertReportGenerator{} }

// GenerateAlertReport genera el PDF del lote de alertas y devuelve sus bytes.
// warehouseID vacío = todas las bodegas.
func (g *AlertReportGenerator) GenerateAlertReport(
	company *entity.Company,
	result *alerts.BatchResult,
	warehouseID string,
	generatedAt time.Time,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de alertas de bajo stock", true).
		WithAuthor(company.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(company, warehouseID, generatedAt))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(result))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableAlertRows(result.Alerts) {
		m.AddRows(r)
	}
	if len(result.Alerts) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("Sin alertas: todos los productos evaluados están sobre su umbral.", props.Text{
				Size: 9, Align: align.Center, Top: 2, Color: colorGray,
			}),
		)))
	}

	if len(result.Faults) > 0 {
		m.AddRows(line.NewRow(3))
		m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
		for _, r := range faultRows(result.Faults) {
			m.AddRows(r)
		}
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar reporte de alertas: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: empresa (izq) y fecha de corte + filtro (der).
func headerRow(company *entity.Company, warehouseID string, generatedAt time.Time) core.Row {
	scope := "Todas las bodegas"
	if warehouseID != "" {
		scope = "Bodega: " + warehouseID
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(company.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(scope, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("ALERTAS DE BAJO STOCK", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("Corte: "+generatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

// summaryRow: conteos del lote.
func summaryRow(result *alerts.BatchResult) core.Row {
	return row.New(10).Add(
		col.New(12).Add(
			text.New(fmt.Sprintf("%d alertas emitidas   |   %d productos con fault", len(result.Alerts), len(result.Faults)), props.Text{
				Style: fontstyle.Bold, Size: 9, Top: 2,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de alertas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Sev.", 1, align.Center),
		h("SKU", 2, align.Left),
		h("Producto", 3, align.Left),
		h("Bodega", 1, align.Center),
		h("Stock", 1, align.Right),
		h("Umbral", 1, align.Right),
		h("Días", 1, align.Right),
		h("Razones", 2, align.Left),
	)
}

// tableAlertRows: una fila por alerta, en el orden de urgencia del motor.
func tableAlertRows(list []entity.Alert) []core.Row {
	result := make([]core.Row, 0, len(list))
	for i := range list {
		a := &list[i]
		days := "-"
		if a.DaysOfSupply != nil {
			days = a.DaysOfSupply.StringFixed(1)
		}
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				fmt.Sprintf("%d", a.Severity),
				props.Text{Size: 8, Align: align.Center, Top: 1, Color: colorAlert, Style: fontstyle.Bold},
			)),
			col.New(2).Add(text.New(
				a.SKU,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(3).Add(text.New(
				a.ProductName,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(1).Add(text.New(
				a.WarehouseID,
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(1).Add(text.New(
				a.OnHand.StringFixed(0),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(1).Add(text.New(
				a.Threshold.StringFixed(0),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(1).Add(text.New(
				days,
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(2).Add(text.New(
				strings.Join(a.ReasonCodes, ", "),
				props.Text{Size: 7, Align: align.Left, Top: 1, Left: 1, Color: colorGray},
			)),
		))
	}
	return result
}

// faultRows: productos que no pudieron evaluarse en este lote.
func faultRows(faults []alerts.ProductFault) []core.Row {
	rows := []core.Row{
		row.New(8).Add(col.New(12).Add(
			text.New("PRODUCTOS NO EVALUADOS", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorAlert, Top: 2,
			}),
		)),
	}
	for _, f := range faults {
		rows = append(rows, row.New(6).Add(
			col.New(12).Add(text.New(
				fmt.Sprintf("%s (%s): %s", f.SKU, f.Kind, f.Detail),
				props.Text{Size: 7, Top: 1, Color: colorGray},
			)),
		))
	}
	return rows
}
