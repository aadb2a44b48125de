package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-ledger/internal/application/ports"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	domaininv "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// AdjustInput ajuste de cantidad sobre un registro de inventario.
type AdjustInput struct {
	Kind           entity.LocationKind
	InventoryID    string
	QuantityChange int
	Reason         entity.MovementReason
	ActorID        *string
	Notes          *string
}

// TransferInput traslado entre registros. El destino se indica por id de registro o por
// id de ubicación (se reutiliza o crea el registro del producto en esa ubicación).
type TransferInput struct {
	SourceKind             entity.LocationKind
	SourceInventoryID      string
	DestinationKind        entity.LocationKind
	DestinationInventoryID string
	DestinationLocationID  string
	Quantity               int
	ActorID                *string
	Notes                  *string
}

// TransferResult movimientos de retiro y depósito.
type TransferResult struct {
	Withdrawal *entity.StockMovement
	Deposit    *entity.StockMovement
}

// MovementEngine aplica ajustes y transferencias: bloquea filas (SELECT FOR UPDATE),
// valida, guarda cantidades, escribe el ledger y el outbox en una sola transacción.
type MovementEngine struct {
	tx         ports.TxRunner
	reads      ports.Repos
	recorder   EventRecorder
	pdf        AuditPDFGenerator
	log        *logger.Logger
	maxRetries int
	now        func() time.Time
	newID      func() string
}

// NewMovementEngine construye el motor. reads son repos sobre el pool para consultas.
func NewMovementEngine(tx ports.TxRunner, reads ports.Repos, recorder EventRecorder, log *logger.Logger, maxRetries int) *MovementEngine {
	if log == nil {
		log = logger.NewNop()
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &MovementEngine{
		tx:         tx,
		reads:      reads,
		recorder:   recorder,
		log:        log,
		maxRetries: maxRetries,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      func() string { return uuid.New().String() },
	}
}

// WithPDFGenerator habilita la exportación del log de auditoría.
func (e *MovementEngine) WithPDFGenerator(g AuditPDFGenerator) *MovementEngine {
	e.pdf = g
	return e
}

// WithClock reemplaza el reloj (tests).
func (e *MovementEngine) WithClock(now func() time.Time) *MovementEngine {
	e.now = now
	return e
}

// Adjust suma QuantityChange (positivo o negativo) al registro indicado.
func (e *MovementEngine) Adjust(ctx context.Context, in AdjustInput) (*entity.StockMovement, error) {
	if _, err := e.reads.Stores.Get(in.Kind); err != nil {
		return nil, err
	}
	if in.InventoryID == "" {
		return nil, domain.Invalid("inventoryId es obligatorio")
	}
	if in.QuantityChange == 0 {
		return nil, domain.Invalid("quantityChange no puede ser cero")
	}
	if !in.Reason.Valid() {
		return nil, domain.Invalid("motivo inválido: %q", in.Reason)
	}

	var movement *entity.StockMovement
	err := e.withRetry(ctx, "adjust", func(repos ports.Repos) error {
		store, err := repos.Stores.Get(in.Kind)
		if err != nil {
			return err
		}
		inv, err := store.GetForUpdate(ctx, in.InventoryID)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.NotFound("registro de inventario %s en %s", in.InventoryID, in.Kind)
		}
		if !inv.HasProduct() {
			return domain.Invalid("el registro %s no tiene producto asignado", inv.ID)
		}

		previous := inv.Quantity
		next, err := domaininv.ApplyDelta(previous, in.QuantityChange)
		if err != nil {
			return err
		}
		now := e.now()
		inv.Quantity = next
		inv.UpdatedAt = now
		if err := store.UpdateQuantity(ctx, inv); err != nil {
			return err
		}

		m := &entity.StockMovement{
			ID:               e.newID(),
			ItemID:           inv.ProductID,
			LocationKind:     in.Kind,
			PreviousQuantity: previous,
			CurrentQuantity:  next,
			QuantityChange:   in.QuantityChange,
			Reason:           in.Reason,
			ActorID:          in.ActorID,
			At:               now,
			Metadata:         map[string]any{entity.MetaInventoryID: inv.ID},
		}
		location := inv.LocationID
		if in.QuantityChange > 0 {
			m.ToLocationID = &location
		} else {
			m.FromLocationID = &location
		}
		if in.Notes != nil && *in.Notes != "" {
			m.Metadata[entity.MetaNotes] = *in.Notes
		}
		if err := e.record(ctx, repos, m); err != nil {
			return err
		}
		movement = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info().Str("movement_id", movement.ID).Str("item_id", movement.ItemID).
		Str("location_type", string(movement.LocationKind)).Int("quantity_change", movement.QuantityChange).
		Str("reason", string(movement.Reason)).Msg("ajuste de inventario registrado")
	return movement, nil
}

// Transfer mueve Quantity unidades del origen al destino: dos filas de ledger y dos
// eventos, todo o nada.
func (e *MovementEngine) Transfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	if in.Quantity <= 0 {
		return nil, domain.Invalid("quantity debe ser mayor que cero")
	}
	if in.SourceInventoryID == "" {
		return nil, domain.Invalid("sourceInventoryId es obligatorio")
	}
	if in.DestinationInventoryID == "" && in.DestinationLocationID == "" {
		return nil, domain.Invalid("se requiere destinationInventoryId o destinationLocationId")
	}
	if _, err := e.reads.Stores.Get(in.SourceKind); err != nil {
		return nil, err
	}
	if _, err := e.reads.Stores.Get(in.DestinationKind); err != nil {
		return nil, err
	}
	if in.DestinationInventoryID != "" && in.SourceKind == in.DestinationKind && in.SourceInventoryID == in.DestinationInventoryID {
		return nil, domain.Invalid("origen y destino son el mismo registro")
	}

	var result *TransferResult
	err := e.withRetry(ctx, "transfer", func(repos ports.Repos) error {
		src, dst, err := e.lockTransferRows(ctx, repos, in)
		if err != nil {
			return err
		}

		srcStore, _ := repos.Stores.Get(in.SourceKind)
		dstStore, _ := repos.Stores.Get(in.DestinationKind)
		now := e.now()

		srcPrev := src.Quantity
		srcNext, err := domaininv.Withdraw(srcPrev, in.Quantity)
		if err != nil {
			return err
		}
		dstPrev := dst.Quantity
		dstNext := dstPrev + in.Quantity

		from, to := src.LocationID, dst.LocationID
		newLeg := func(kind entity.LocationKind, inventoryID string, prev, next, change int) *entity.StockMovement {
			meta := map[string]any{
				entity.MetaTransfer:    true,
				entity.MetaInventoryID: inventoryID,
				entity.MetaFromKind:    string(in.SourceKind),
				entity.MetaToKind:      string(in.DestinationKind),
			}
			if in.Notes != nil && *in.Notes != "" {
				meta[entity.MetaNotes] = *in.Notes
			}
			return &entity.StockMovement{
				ID:               e.newID(),
				ItemID:           src.ProductID,
				LocationKind:     kind,
				FromLocationID:   &from,
				ToLocationID:     &to,
				PreviousQuantity: prev,
				CurrentQuantity:  next,
				QuantityChange:   change,
				Reason:           entity.ReasonTransfer,
				ActorID:          in.ActorID,
				At:               now,
				Metadata:         meta,
			}
		}

		// retiro
		src.Quantity = srcNext
		src.UpdatedAt = now
		if err := srcStore.UpdateQuantity(ctx, src); err != nil {
			return err
		}
		withdrawal := newLeg(in.SourceKind, src.ID, srcPrev, srcNext, -in.Quantity)
		if err := e.record(ctx, repos, withdrawal); err != nil {
			return err
		}

		// depósito
		dst.Quantity = dstNext
		dst.UpdatedAt = now
		if err := dstStore.UpdateQuantity(ctx, dst); err != nil {
			return err
		}
		deposit := newLeg(in.DestinationKind, dst.ID, dstPrev, dstNext, in.Quantity)
		if err := e.record(ctx, repos, deposit); err != nil {
			return err
		}

		result = &TransferResult{Withdrawal: withdrawal, Deposit: deposit}
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info().Str("item_id", result.Withdrawal.ItemID).Int("quantity", in.Quantity).
		Str("from", string(in.SourceKind)).Str("to", string(in.DestinationKind)).
		Msg("transferencia de inventario registrada")
	return result, nil
}

// lockTransferRows bloquea origen y destino. Con ambos ids se bloquean en orden
// (tipo, id) para que dos transferencias cruzadas no se bloqueen mutuamente.
func (e *MovementEngine) lockTransferRows(ctx context.Context, repos ports.Repos, in TransferInput) (src, dst *entity.LocationInventory, err error) {
	srcStore, err := repos.Stores.Get(in.SourceKind)
	if err != nil {
		return nil, nil, err
	}
	dstStore, err := repos.Stores.Get(in.DestinationKind)
	if err != nil {
		return nil, nil, err
	}

	lockSource := func() error {
		src, err = srcStore.GetForUpdate(ctx, in.SourceInventoryID)
		if err != nil {
			return err
		}
		if src == nil {
			return domain.NotFound("registro de origen %s en %s", in.SourceInventoryID, in.SourceKind)
		}
		if !src.HasProduct() {
			return domain.Invalid("el registro de origen %s no tiene producto asignado", src.ID)
		}
		return nil
	}

	if in.DestinationInventoryID != "" {
		lockDest := func() error {
			dst, err = dstStore.GetForUpdate(ctx, in.DestinationInventoryID)
			if err != nil {
				return err
			}
			if dst == nil {
				return domain.NotFound("registro de destino %s en %s", in.DestinationInventoryID, in.DestinationKind)
			}
			return nil
		}
		first, second := lockSource, lockDest
		if lockKey(in.DestinationKind, in.DestinationInventoryID) < lockKey(in.SourceKind, in.SourceInventoryID) {
			first, second = lockDest, lockSource
		}
		if err := first(); err != nil {
			return nil, nil, err
		}
		if err := second(); err != nil {
			return nil, nil, err
		}
	} else {
		if err := lockSource(); err != nil {
			return nil, nil, err
		}
		dst, err = e.resolveDestinationByLocation(ctx, repos, in, src)
		if err != nil {
			return nil, nil, err
		}
	}

	if in.SourceKind == in.DestinationKind && src.ID == dst.ID {
		return nil, nil, domain.Invalid("origen y destino son el mismo registro")
	}
	if dst.ProductID != src.ProductID {
		return nil, nil, domain.Invalid("el registro de destino %s contiene otro producto", dst.ID)
	}
	return src, dst, nil
}

// resolveDestinationByLocation reutiliza el registro (ubicación, producto) o crea uno en cero.
func (e *MovementEngine) resolveDestinationByLocation(ctx context.Context, repos ports.Repos, in TransferInput, src *entity.LocationInventory) (*entity.LocationInventory, error) {
	location, err := repos.Locations.GetByID(ctx, in.DestinationKind, in.DestinationLocationID)
	if err != nil {
		return nil, err
	}
	if location == nil {
		return nil, domain.NotFound("ubicación de destino %s en %s", in.DestinationLocationID, in.DestinationKind)
	}

	dstStore, _ := repos.Stores.Get(in.DestinationKind)
	existing, err := dstStore.FindByLocationAndProduct(ctx, location.ID, src.ProductID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := e.now()
	created := &entity.LocationInventory{
		ID:          e.newID(),
		Kind:        in.DestinationKind,
		LocationID:  location.ID,
		ProductID:   src.ProductID,
		Category:    src.Category,
		Subcategory: src.Subcategory,
		Quantity:    0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := dstStore.Create(ctx, created); err != nil {
		return nil, err
	}
	return created, nil
}

func lockKey(kind entity.LocationKind, id string) string {
	return string(kind) + "/" + id
}

func (e *MovementEngine) record(ctx context.Context, repos ports.Repos, m *entity.StockMovement) error {
	if err := repos.Movements.Create(ctx, m); err != nil {
		return err
	}
	return e.recorder.Record(ctx, repos, m)
}

// withRetry ejecuta fn en una transacción y la repite completa ante ErrConflict
// (serialización, deadlock o registro creado en paralelo).
func (e *MovementEngine) withRetry(ctx context.Context, op string, fn func(repos ports.Repos) error) error {
	var err error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		err = e.tx.Run(ctx, fn)
		if err == nil || !errors.Is(err, domain.ErrConflict) {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
		e.log.Warn().Err(err).Str("op", op).Int("attempt", attempt+1).Msg("conflicto de concurrencia, reintentando")
	}
	return err
}
