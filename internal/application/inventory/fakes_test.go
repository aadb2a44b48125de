package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// memState base de datos en memoria; fakeTx la copia y la restaura si fn falla.
type memState struct {
	mu          sync.Mutex
	inventories map[entity.LocationKind]map[string]entity.LocationInventory
	locations   map[entity.LocationKind]map[string]entity.Location
	products    map[string]entity.Product
	movements   []*entity.StockMovement
	outbox      []*entity.OutboxEvent

	failOutbox bool // Create del outbox devuelve error
	conflicts  int  // próximos Run que fallan con ErrConflict
	runs       int
}

var movableKinds = []entity.LocationKind{
	entity.LocationBoxBin, entity.LocationSingleClawMachine, entity.LocationDoubleClawMachine,
	entity.LocationKeychainMachine, entity.LocationFourCornerMachine, entity.LocationPusherMachine,
	entity.LocationCabinet, entity.LocationRack,
}

func newMemState() *memState {
	st := &memState{
		inventories: map[entity.LocationKind]map[string]entity.LocationInventory{},
		locations:   map[entity.LocationKind]map[string]entity.Location{},
		products:    map[string]entity.Product{},
	}
	for _, k := range movableKinds {
		st.inventories[k] = map[string]entity.LocationInventory{}
		st.locations[k] = map[string]entity.Location{}
	}
	return st
}

func (st *memState) addProduct(id, sku string, reorderPoint int) {
	st.products[id] = entity.Product{ID: id, SKU: sku, Name: "Producto " + sku, ReorderPoint: reorderPoint}
}

func (st *memState) addLocation(kind entity.LocationKind, id, code string) {
	st.locations[kind][id] = entity.Location{ID: id, Kind: kind, Code: code}
}

func (st *memState) addInventory(kind entity.LocationKind, id, locationID, productID string, qty int) {
	st.inventories[kind][id] = entity.LocationInventory{ID: id, Kind: kind, LocationID: locationID, ProductID: productID, Quantity: qty}
}

func (st *memState) qty(kind entity.LocationKind, id string) int {
	return st.inventories[kind][id].Quantity
}

func (st *memState) total(productID string) int {
	n := 0
	for _, byID := range st.inventories {
		for _, inv := range byID {
			if inv.ProductID == productID {
				n += inv.Quantity
			}
		}
	}
	return n
}

type snapshot struct {
	inventories map[entity.LocationKind]map[string]entity.LocationInventory
	movements   []*entity.StockMovement
	outbox      []*entity.OutboxEvent
}

func (st *memState) snapshot() snapshot {
	inv := make(map[entity.LocationKind]map[string]entity.LocationInventory, len(st.inventories))
	for k, byID := range st.inventories {
		cp := make(map[string]entity.LocationInventory, len(byID))
		for id, v := range byID {
			cp[id] = v
		}
		inv[k] = cp
	}
	return snapshot{
		inventories: inv,
		movements:   append([]*entity.StockMovement(nil), st.movements...),
		outbox:      append([]*entity.OutboxEvent(nil), st.outbox...),
	}
}

func (st *memState) restore(s snapshot) {
	st.inventories = s.inventories
	st.movements = s.movements
	st.outbox = s.outbox
}

func (st *memState) repos() ports.Repos {
	stores := ports.Stores{}
	for _, k := range movableKinds {
		stores[k] = &memStore{st: st, kind: k}
	}
	return ports.Repos{
		Stores:    stores,
		Movements: &memMovements{st: st},
		Outbox:    &memOutbox{st: st},
		Locations: &memLocations{st: st},
		Products:  &memProducts{st: st},
	}
}

// ── TxRunner ──────────────────────────────────────────────────────────────────

type fakeTx struct {
	st *memState
}

func (f *fakeTx) Run(ctx context.Context, fn func(repos ports.Repos) error) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	f.st.runs++
	if f.st.conflicts > 0 {
		f.st.conflicts--
		return fmt.Errorf("%w: deadlock detectado", domain.ErrConflict)
	}
	snap := f.st.snapshot()
	if err := fn(f.st.repos()); err != nil {
		f.st.restore(snap)
		return err
	}
	return nil
}

// ── Stores ────────────────────────────────────────────────────────────────────

type memStore struct {
	st   *memState
	kind entity.LocationKind
}

func (s *memStore) Kind() entity.LocationKind { return s.kind }

func (s *memStore) GetByID(_ context.Context, id string) (*entity.LocationInventory, error) {
	inv, ok := s.st.inventories[s.kind][id]
	if !ok {
		return nil, nil
	}
	return &inv, nil
}

func (s *memStore) GetForUpdate(ctx context.Context, id string) (*entity.LocationInventory, error) {
	return s.GetByID(ctx, id)
}

func (s *memStore) FindByLocationAndProduct(_ context.Context, locationID, productID string) (*entity.LocationInventory, error) {
	for _, inv := range s.st.inventories[s.kind] {
		if inv.LocationID == locationID && inv.ProductID == productID {
			cp := inv
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) Create(_ context.Context, inv *entity.LocationInventory) error {
	if _, ok := s.st.inventories[s.kind][inv.ID]; ok {
		return fmt.Errorf("%w: duplicado", domain.ErrConflict)
	}
	s.st.inventories[s.kind][inv.ID] = *inv
	return nil
}

func (s *memStore) UpdateQuantity(_ context.Context, inv *entity.LocationInventory) error {
	cur, ok := s.st.inventories[s.kind][inv.ID]
	if !ok {
		return domain.NotFound("registro %s", inv.ID)
	}
	if inv.Quantity < 0 {
		return errors.New("check violation: quantity >= 0")
	}
	cur.Quantity = inv.Quantity
	cur.UpdatedAt = inv.UpdatedAt
	s.st.inventories[s.kind][inv.ID] = cur
	return nil
}

func (s *memStore) SumByProduct(_ context.Context, productID string) (int, error) {
	n := 0
	for _, inv := range s.st.inventories[s.kind] {
		if inv.ProductID == productID {
			n += inv.Quantity
		}
	}
	return n, nil
}

// ── Ledger ────────────────────────────────────────────────────────────────────

type memMovements struct{ st *memState }

func (m *memMovements) Create(_ context.Context, mv *entity.StockMovement) error {
	m.st.movements = append(m.st.movements, mv)
	return nil
}

func (m *memMovements) byProduct(productID string) []*entity.StockMovement {
	var out []*entity.StockMovement
	for i := len(m.st.movements) - 1; i >= 0; i-- {
		if m.st.movements[i].ItemID == productID {
			out = append(out, m.st.movements[i])
		}
	}
	return out
}

func (m *memMovements) ListByProduct(_ context.Context, productID string, limit, offset int) ([]*entity.StockMovement, int, error) {
	all := m.byProduct(productID)
	total := len(all)
	if offset >= total {
		return []*entity.StockMovement{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *memMovements) ListAllByProduct(_ context.Context, productID string) ([]*entity.StockMovement, error) {
	return m.byProduct(productID), nil
}

func (m *memMovements) Search(_ context.Context, f repository.MovementFilter, limit, offset int) ([]*entity.StockMovementView, int, error) {
	var out []*entity.StockMovementView
	for i := len(m.st.movements) - 1; i >= 0; i-- {
		mv := m.st.movements[i]
		p := m.st.products[mv.ItemID]
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Name+" "+p.SKU), strings.ToLower(f.Search)) {
			continue
		}
		if f.Reason != nil && mv.Reason != *f.Reason {
			continue
		}
		if f.ActorID != nil && (mv.ActorID == nil || *mv.ActorID != *f.ActorID) {
			continue
		}
		out = append(out, &entity.StockMovementView{StockMovement: *mv, ItemSKU: p.SKU, ItemName: p.Name})
	}
	total := len(out)
	if offset >= total {
		return []*entity.StockMovementView{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return out[offset:end], total, nil
}

func (m *memMovements) UnitsSoldSince(_ context.Context, since time.Time) (map[string]int, error) {
	sold := map[string]int{}
	for _, mv := range m.st.movements {
		if mv.Reason == entity.ReasonSale && !mv.At.Before(since) && mv.QuantityChange < 0 {
			sold[mv.ItemID] += -mv.QuantityChange
		}
	}
	return sold, nil
}

// ── Outbox ────────────────────────────────────────────────────────────────────

type memOutbox struct{ st *memState }

func (o *memOutbox) Create(_ context.Context, e *entity.OutboxEvent) error {
	if o.st.failOutbox {
		return errors.New("outbox no disponible")
	}
	o.st.outbox = append(o.st.outbox, e)
	return nil
}

func (o *memOutbox) GetByID(_ context.Context, id string) (*entity.OutboxEvent, error) {
	for _, e := range o.st.outbox {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, nil
}

func (o *memOutbox) FetchPending(_ context.Context, now time.Time, limit int) ([]*entity.OutboxEvent, error) {
	var out []*entity.OutboxEvent
	for _, e := range o.st.outbox {
		if e.Status == entity.OutboxPending && !e.NextAttemptAt.After(now) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (o *memOutbox) MarkPublished(_ context.Context, id string, at time.Time) (bool, error) {
	return false, errors.New("no usado")
}

func (o *memOutbox) RecordFailure(_ context.Context, id string, f repository.OutboxFailure) error {
	return errors.New("no usado")
}

func (o *memOutbox) ListDeadLetters(_ context.Context, limit, offset int) ([]*entity.OutboxEvent, error) {
	return nil, nil
}

func (o *memOutbox) Requeue(_ context.Context, id string, at time.Time) (bool, error) {
	return false, nil
}

// ── Catálogos ─────────────────────────────────────────────────────────────────

type memLocations struct{ st *memState }

func (l *memLocations) GetByID(_ context.Context, kind entity.LocationKind, id string) (*entity.Location, error) {
	loc, ok := l.st.locations[kind][id]
	if !ok {
		return nil, nil
	}
	return &loc, nil
}

func (l *memLocations) CodesByIDs(_ context.Context, kind entity.LocationKind, ids []string) (map[string]string, error) {
	codes := map[string]string{}
	for _, id := range ids {
		if loc, ok := l.st.locations[kind][id]; ok {
			codes[id] = loc.Code
		}
	}
	return codes, nil
}

type memProducts struct{ st *memState }

func (p *memProducts) GetByID(_ context.Context, id string) (*entity.Product, error) {
	prod, ok := p.st.products[id]
	if !ok {
		return nil, nil
	}
	return &prod, nil
}
