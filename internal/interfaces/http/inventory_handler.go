package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// ReplenishmentService lista de reposición.
type ReplenishmentService interface {
	GenerateReplenishmentList(ctx context.Context) ([]dto.ReplenishmentSuggestionDTO, error)
}

// InventoryHandler consultas agregadas de inventario (protegido).
type InventoryHandler struct {
	replenishment ReplenishmentService
	log           *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(replenishment ReplenishmentService, log *logger.Logger) *InventoryHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &InventoryHandler{replenishment: replenishment, log: log}
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  Devuelve los productos cuyo total en todas las ubicaciones está en o por debajo
//
//	del punto de reorden, con la cantidad sugerida de pedido.
//
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/replenishment-list [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": list,
	})
}
