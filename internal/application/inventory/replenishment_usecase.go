package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// ReplenishmentUseCase genera la lista de reposición sobre el stock total de todas las ubicaciones.
// Prioriza por margen y por ventas recientes registradas en el ledger (reason SALE).
type ReplenishmentUseCase struct {
	levelRepo    repository.InventoryLevelRepository
	movementRepo repository.StockMovementRepository
	now          func() time.Time
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(
	levelRepo repository.InventoryLevelRepository,
	movementRepo repository.StockMovementRepository,
) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{
		levelRepo:    levelRepo,
		movementRepo: movementRepo,
		now:          time.Now,
	}
}

// GenerateReplenishmentList devuelve los productos en o bajo su punto de reorden con la cantidad
// sugerida de pedido y un ranking de prioridad.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context) ([]dto.ReplenishmentSuggestionDTO, error) {
	rawItems, err := uc.levelRepo.GetProductsBelowReorderPoint(ctx)
	if err != nil {
		return nil, err
	}
	if len(rawItems) == 0 {
		return []dto.ReplenishmentSuggestionDTO{}, nil
	}

	// Ventas de los últimos 90 días; si la consulta falla se prioriza solo por margen.
	sold, err := uc.movementRepo.UnitsSoldSince(ctx, uc.now().AddDate(0, 0, -90))
	if err != nil {
		sold = map[string]int{}
	}

	hundred := decimal.NewFromInt(100)
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(rawItems))
	for _, item := range rawItems {
		ideal := decimal.NewFromInt(int64(item.ReorderPoint)).Mul(decimal.NewFromFloat(1.5)).Ceil().IntPart()
		suggested := int(ideal) - item.CurrentStock
		if suggested < 0 {
			suggested = 0
		}

		var margin decimal.Decimal
		if item.Price.GreaterThan(decimal.Zero) {
			margin = item.Price.Sub(item.UnitCost).Div(item.Price).Mul(hundred).Round(2)
		}

		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ProductID:           item.ProductID,
			SKU:                 item.SKU,
			ProductName:         item.ProductName,
			CurrentStock:        item.CurrentStock,
			ReorderPoint:        item.ReorderPoint,
			IdealStock:          int(ideal),
			SuggestedOrderQty:   suggested,
			UnitCost:            item.UnitCost,
			EstimatedOrderCost:  item.UnitCost.Mul(decimal.NewFromInt(int64(suggested))),
			GrossMarginPct:      margin,
			UnitsSoldLast90Days: sold[item.ProductID],
		})
	}

	// Mayor margen, luego mayor volumen de ventas, luego mayor déficit.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if !a.GrossMarginPct.Equal(b.GrossMarginPct) {
			return a.GrossMarginPct.GreaterThan(b.GrossMarginPct)
		}
		if a.UnitsSoldLast90Days != b.UnitsSoldLast90Days {
			return a.UnitsSoldLast90Days > b.UnitsSoldLast90Days
		}
		return a.ReorderPoint-a.CurrentStock > b.ReorderPoint-b.CurrentStock
	})

	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
