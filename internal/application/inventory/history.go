package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// maxPDFEntries tope de filas del PDF de auditoría.
const maxPDFEntries = 1000

// History página del historial de un producto, más reciente primero.
func (e *MovementEngine) History(ctx context.Context, productID string, page dto.PageRequest) (*dto.StockMovementPage, error) {
	if productID == "" {
		return nil, domain.Invalid("itemId es obligatorio")
	}
	page.DefaultPage()
	list, total, err := e.reads.Movements.ListByProduct(ctx, productID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items, err := e.toResponses(ctx, list, nil)
	if err != nil {
		return nil, err
	}
	return &dto.StockMovementPage{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// HistoryAll historial completo de un producto, sin paginar.
func (e *MovementEngine) HistoryAll(ctx context.Context, productID string) ([]dto.StockMovementResponse, error) {
	if productID == "" {
		return nil, domain.Invalid("itemId es obligatorio")
	}
	list, err := e.reads.Movements.ListAllByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return e.toResponses(ctx, list, nil)
}

// AuditLog log de auditoría filtrado, con datos de producto y códigos de ubicación.
func (e *MovementEngine) AuditLog(ctx context.Context, q dto.AuditLogQuery) (*dto.StockMovementPage, error) {
	filter, err := ParseAuditFilter(q)
	if err != nil {
		return nil, err
	}
	page := dto.PageRequest{Limit: q.Limit, Offset: q.Offset}
	page.DefaultPage()
	views, total, err := e.reads.Movements.Search(ctx, filter, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items, err := e.viewResponses(ctx, views)
	if err != nil {
		return nil, err
	}
	return &dto.StockMovementPage{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// AuditLogPDF exporta el log filtrado (hasta maxPDFEntries filas) como PDF.
func (e *MovementEngine) AuditLogPDF(ctx context.Context, q dto.AuditLogQuery) ([]byte, error) {
	if e.pdf == nil {
		return nil, domain.Invalid("exportación PDF no habilitada")
	}
	filter, err := ParseAuditFilter(q)
	if err != nil {
		return nil, err
	}
	views, _, err := e.reads.Movements.Search(ctx, filter, maxPDFEntries, 0)
	if err != nil {
		return nil, err
	}
	items, err := e.viewResponses(ctx, views)
	if err != nil {
		return nil, err
	}
	return e.pdf.GenerateAuditLog(items, filter, e.now())
}

// ParseAuditFilter valida los filtros de la consulta. toDate con solo fecha incluye el día completo.
func ParseAuditFilter(q dto.AuditLogQuery) (repository.MovementFilter, error) {
	f := repository.MovementFilter{Search: strings.TrimSpace(q.Search)}
	if a := strings.TrimSpace(q.ActorID); a != "" {
		f.ActorID = &a
	}
	if r := strings.TrimSpace(q.Reason); r != "" {
		reason := entity.MovementReason(strings.ToUpper(r))
		if !reason.Valid() {
			return f, domain.Invalid("motivo inválido: %q", r)
		}
		f.Reason = &reason
	}
	if q.FromDate != "" {
		from, _, err := parseDate(q.FromDate)
		if err != nil {
			return f, domain.Invalid("fromDate inválida: %q", q.FromDate)
		}
		f.From = &from
	}
	if q.ToDate != "" {
		to, dateOnly, err := parseDate(q.ToDate)
		if err != nil {
			return f, domain.Invalid("toDate inválida: %q", q.ToDate)
		}
		if dateOnly {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		f.To = &to
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return f, domain.Invalid("fromDate es posterior a toDate")
	}
	return f, nil
}

func parseDate(s string) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	t, err := time.Parse("2006-01-02", s)
	return t, true, err
}

func (e *MovementEngine) viewResponses(ctx context.Context, views []*entity.StockMovementView) ([]dto.StockMovementResponse, error) {
	list := make([]*entity.StockMovement, 0, len(views))
	for _, v := range views {
		m := v.StockMovement
		list = append(list, &m)
	}
	return e.toResponses(ctx, list, views)
}

// toResponses mapea a DTO resolviendo códigos de ubicación con una consulta por tipo.
func (e *MovementEngine) toResponses(ctx context.Context, list []*entity.StockMovement, views []*entity.StockMovementView) ([]dto.StockMovementResponse, error) {
	idsByKind := make(map[entity.LocationKind][]string)
	for _, m := range list {
		if m.FromLocationID != nil {
			idsByKind[m.FromKind()] = append(idsByKind[m.FromKind()], *m.FromLocationID)
		}
		if m.ToLocationID != nil {
			idsByKind[m.ToKind()] = append(idsByKind[m.ToKind()], *m.ToLocationID)
		}
	}
	codes := make(map[entity.LocationKind]map[string]string, len(idsByKind))
	for kind, ids := range idsByKind {
		if _, err := e.reads.Stores.Get(kind); err != nil {
			continue
		}
		c, err := e.reads.Locations.CodesByIDs(ctx, kind, dedupe(ids))
		if err != nil {
			return nil, err
		}
		codes[kind] = c
	}

	out := make([]dto.StockMovementResponse, 0, len(list))
	for i, m := range list {
		r := ToMovementResponse(m)
		if m.FromLocationID != nil {
			r.FromLocationCode = lookupCode(codes, m.FromKind(), *m.FromLocationID)
		}
		if m.ToLocationID != nil {
			r.ToLocationCode = lookupCode(codes, m.ToKind(), *m.ToLocationID)
		}
		if views != nil {
			r.ItemSKU = views[i].ItemSKU
			r.ItemName = views[i].ItemName
		}
		out = append(out, r)
	}
	return out, nil
}

// ToMovementResponse mapea la entidad al DTO de la API (sin códigos de ubicación).
func ToMovementResponse(m *entity.StockMovement) dto.StockMovementResponse {
	return dto.StockMovementResponse{
		ID:               m.ID,
		ItemID:           m.ItemID,
		LocationType:     string(m.LocationKind),
		FromLocationID:   m.FromLocationID,
		ToLocationID:     m.ToLocationID,
		PreviousQuantity: m.PreviousQuantity,
		CurrentQuantity:  m.CurrentQuantity,
		QuantityChange:   m.QuantityChange,
		Reason:           string(m.Reason),
		ActorID:          m.ActorID,
		At:               m.At,
		Metadata:         m.Metadata,
	}
}

func lookupCode(codes map[entity.LocationKind]map[string]string, kind entity.LocationKind, id string) *string {
	if c, ok := codes[kind][id]; ok {
		return &c
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
