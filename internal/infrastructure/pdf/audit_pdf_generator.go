// Package pdf genera el reporte PDF del log de auditoría de movimientos.
//
// Layout de la página A4 (horizontal):
//
//	┌──────────────────────────────────────────────────────────────┐
//	│  HEADER: título + fecha de generación                        │
//	│  FILTROS: búsqueda / actor / motivo / rango de fechas        │
//	│  ──────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | SKU | Tipo | Origen→Destino | Ant | Δ | Act  │
//	│  ──────────────────────────────────────────────────────────  │
//	│  FOOTER: total de filas                                      │
//	└──────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strconv"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 170, Green: 30, Blue: 30}
	colorGreen   = &props.Color{Red: 20, Green: 120, Blue: 50}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ inventory.AuditPDFGenerator = (*AuditPDFGenerator)(nil)

// AuditPDFGenerator implementa inventory.AuditPDFGenerator usando Maroto v2.
type AuditPDFGenerator struct {
	title string
}

// NewAuditPDFGenerator construye el generador. title aparece en el encabezado y metadatos.
func NewAuditPDFGenerator(title string) *AuditPDFGenerator {
	return &AuditPDFGenerator{title: nonEmpty(title, "Log de auditoría de inventario")}
}

// GenerateAuditLog genera el PDF y devuelve sus bytes.
func (g *AuditPDFGenerator) GenerateAuditLog(
	entries []dto.StockMovementResponse,
	filter repository.MovementFilter,
	generatedAt time.Time,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Horizontal).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle(g.title, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.title, generatedAt))
	m.AddRows(filterRow(filter))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableRows(entries) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(row.New(6).Add(col.New(12).Add(
		text.New(fmt.Sprintf("Total de movimientos: %d", len(entries)), props.Text{
			Style: fontstyle.Bold, Size: 8, Align: align.Right, Top: 1,
		}),
	)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(title string, generatedAt time.Time) core.Row {
	return row.New(14).Add(
		col.New(8).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(4).Add(
			text.New("Generado: "+generatedAt.Format("02/01/2006 15:04")+" UTC", props.Text{
				Size: 8, Align: align.Right, Top: 3, Color: colorGray,
			}),
		),
	)
}

// filterRow resume los filtros aplicados ("-" cuando no hay).
func filterRow(f repository.MovementFilter) core.Row {
	actor, reason, from, to := "-", "-", "-", "-"
	if f.ActorID != nil {
		actor = *f.ActorID
	}
	if f.Reason != nil {
		reason = string(*f.Reason)
	}
	if f.From != nil {
		from = f.From.Format("02/01/2006")
	}
	if f.To != nil {
		to = f.To.Format("02/01/2006")
	}
	return row.New(8).Add(col.New(12).Add(
		text.New(fmt.Sprintf("Búsqueda: %s   |   Actor: %s   |   Motivo: %s   |   Desde: %s   |   Hasta: %s",
			nonEmpty(f.Search, "-"), actor, reason, from, to,
		), props.Text{Size: 8, Top: 1, Color: colorGray}),
	))
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 2, align.Left),
		h("SKU / Producto", 3, align.Left),
		h("Tipo", 2, align.Left),
		h("Origen → Destino", 2, align.Left),
		h("Motivo", 1, align.Left),
		h("Ant.", 1, align.Right),
		h("Δ / Act.", 1, align.Right),
	)
}

func tableRows(entries []dto.StockMovementResponse) []core.Row {
	result := make([]core.Row, 0, len(entries))
	for _, e := range entries {
		deltaColor := colorGreen
		if e.QuantityChange < 0 {
			deltaColor = colorRed
		}
		result = append(result, row.New(6).Add(
			col.New(2).Add(text.New(e.At.Format("02/01/2006 15:04"), props.Text{Size: 7, Top: 1})),
			col.New(3).Add(text.New(nonEmpty(e.ItemSKU, e.ItemID)+" "+e.ItemName, props.Text{Size: 7, Top: 1})),
			col.New(2).Add(text.New(e.LocationType, props.Text{Size: 7, Top: 1})),
			col.New(2).Add(text.New(codeOf(e.FromLocationCode)+" → "+codeOf(e.ToLocationCode), props.Text{Size: 7, Top: 1})),
			col.New(1).Add(text.New(e.Reason, props.Text{Size: 7, Top: 1})),
			col.New(1).Add(text.New(strconv.Itoa(e.PreviousQuantity), props.Text{Size: 7, Align: align.Right, Top: 1})),
			col.New(1).Add(text.New(signed(e.QuantityChange)+" / "+strconv.Itoa(e.CurrentQuantity), props.Text{
				Size: 7, Align: align.Right, Top: 1, Color: deltaColor,
			})),
		))
	}
	return result
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func codeOf(c *string) string {
	if c == nil {
		return "-"
	}
	return *c
}

// signed antepone "+" a los positivos. Ej: 3 → "+3", -2 → "-2".
func signed(n int) string {
	if n > 0 {
		return "+" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
