package http

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// MovementService operaciones del motor de movimientos que expone la API.
type MovementService interface {
	Adjust(ctx context.Context, in inventory.AdjustInput) (*entity.StockMovement, error)
	Transfer(ctx context.Context, in inventory.TransferInput) (*inventory.TransferResult, error)
	History(ctx context.Context, productID string, page dto.PageRequest) (*dto.StockMovementPage, error)
	HistoryAll(ctx context.Context, productID string) ([]dto.StockMovementResponse, error)
	AuditLog(ctx context.Context, q dto.AuditLogQuery) (*dto.StockMovementPage, error)
	AuditLogPDF(ctx context.Context, q dto.AuditLogQuery) ([]byte, error)
}

// StockMovementHandler maneja ajustes, transferencias e historial (protegido).
type StockMovementHandler struct {
	svc MovementService
	log *logger.Logger
}

// NewStockMovementHandler construye el handler.
func NewStockMovementHandler(svc MovementService, log *logger.Logger) *StockMovementHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &StockMovementHandler{svc: svc, log: log}
}

// Adjust godoc
// @Summary      Ajustar cantidad de un registro de inventario
// @Tags         stock-movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        locationType  path  string             true  "Tipo de ubicación (BOX_BIN, RACK, CABINET, ...)"
// @Param        inventoryId   path  string             true  "ID del registro de inventario"
// @Param        body          body  dto.AdjustRequest  true  "quantityChange, reason, actorId?, notes?"
// @Success      201  {object}  dto.StockMovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock-movements/{locationType}/{inventoryId}/adjust [post]
func (h *StockMovementHandler) Adjust(c *fiber.Ctx) error {
	kind, ok := entity.ParseLocationKind(c.Params("locationType"))
	if !ok {
		return writeError(c, h.log, domain.Invalid("tipo de ubicación desconocido: %s", c.Params("locationType")))
	}
	var in dto.AdjustRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	m, err := h.svc.Adjust(c.UserContext(), inventory.AdjustInput{
		Kind:           kind,
		InventoryID:    c.Params("inventoryId"),
		QuantityChange: in.QuantityChange,
		Reason:         entity.MovementReason(in.Reason),
		ActorID:        h.actor(c, in.ActorID),
		Notes:          in.Notes,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(inventory.ToMovementResponse(m))
}

// Transfer godoc
// @Summary      Transferir unidades entre ubicaciones
// @Description  Se requiere destinationInventoryId o destinationLocationId.
// @Tags         stock-movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "origen, destino y cantidad"
// @Success      201  {object}  dto.TransferResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock-movements/transfer [post]
func (h *StockMovementHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	srcKind, ok := entity.ParseLocationKind(in.SourceLocationType)
	if !ok {
		return writeError(c, h.log, domain.Invalid("tipo de ubicación de origen desconocido: %s", in.SourceLocationType))
	}
	dstKind, ok := entity.ParseLocationKind(in.DestinationLocationType)
	if !ok {
		return writeError(c, h.log, domain.Invalid("tipo de ubicación de destino desconocido: %s", in.DestinationLocationType))
	}
	res, err := h.svc.Transfer(c.UserContext(), inventory.TransferInput{
		SourceKind:             srcKind,
		SourceInventoryID:      in.SourceInventoryID,
		DestinationKind:        dstKind,
		DestinationInventoryID: in.DestinationInventoryID,
		DestinationLocationID:  in.DestinationLocationID,
		Quantity:               in.Quantity,
		ActorID:                h.actor(c, in.ActorID),
		Notes:                  in.Notes,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.TransferResponse{
		Withdrawal: inventory.ToMovementResponse(res.Withdrawal),
		Deposit:    inventory.ToMovementResponse(res.Deposit),
	})
}

// History godoc
// @Summary      Historial paginado de un producto (más reciente primero)
// @Tags         stock-movements
// @Security     Bearer
// @Produce      json
// @Param        itemId  path   string  true   "ID del producto"
// @Param        limit   query  int     false  "Tamaño de página (20 por defecto)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.StockMovementPage
// @Router       /api/stock-movements/history/{itemId} [get]
func (h *StockMovementHandler) History(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return writeError(c, h.log, domain.Invalid("paginación inválida"))
	}
	res, err := h.svc.History(c.UserContext(), c.Params("itemId"), page)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(res)
}

// HistoryAll godoc
// @Summary      Historial completo de un producto
// @Tags         stock-movements
// @Security     Bearer
// @Produce      json
// @Param        itemId  path  string  true  "ID del producto"
// @Success      200  {array}  dto.StockMovementResponse
// @Router       /api/stock-movements/history/{itemId}/all [get]
func (h *StockMovementHandler) HistoryAll(c *fiber.Ctx) error {
	list, err := h.svc.HistoryAll(c.UserContext(), c.Params("itemId"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(list)
}

// AuditLog godoc
// @Summary      Log de auditoría filtrado
// @Tags         stock-movements
// @Security     Bearer
// @Produce      json
// @Param        search    query  string  false  "SKU o nombre del producto"
// @Param        actorId   query  string  false  "Actor"
// @Param        reason    query  string  false  "Motivo"
// @Param        fromDate  query  string  false  "Desde (RFC3339 o YYYY-MM-DD)"
// @Param        toDate    query  string  false  "Hasta (RFC3339 o YYYY-MM-DD)"
// @Param        limit     query  int     false  "Tamaño de página"
// @Param        offset    query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.StockMovementPage
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock-movements/audit-log [get]
func (h *StockMovementHandler) AuditLog(c *fiber.Ctx) error {
	var q dto.AuditLogQuery
	if err := c.QueryParser(&q); err != nil {
		return writeError(c, h.log, domain.Invalid("filtros inválidos"))
	}
	res, err := h.svc.AuditLog(c.UserContext(), q)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(res)
}

// AuditLogPDF godoc
// @Summary      Exportar log de auditoría en PDF
// @Tags         stock-movements
// @Security     Bearer
// @Produce      application/pdf
// @Param        search    query  string  false  "SKU o nombre del producto"
// @Param        actorId   query  string  false  "Actor"
// @Param        reason    query  string  false  "Motivo"
// @Param        fromDate  query  string  false  "Desde"
// @Param        toDate    query  string  false  "Hasta"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock-movements/audit-log/pdf [get]
func (h *StockMovementHandler) AuditLogPDF(c *fiber.Ctx) error {
	var q dto.AuditLogQuery
	if err := c.QueryParser(&q); err != nil {
		return writeError(c, h.log, domain.Invalid("filtros inválidos"))
	}
	out, err := h.svc.AuditLogPDF(c.UserContext(), q)
	if err != nil {
		return writeError(c, h.log, err)
	}
	filename := fmt.Sprintf("auditoria-%s.pdf", time.Now().UTC().Format("20060102-150405"))
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(out)
}

// actor usa el actorId del body; si falta, el usuario del token.
func (h *StockMovementHandler) actor(c *fiber.Ctx, fromBody *string) *string {
	if fromBody != nil && *fromBody != "" {
		return fromBody
	}
	if id := GetUserID(c); id != "" {
		return &id
	}
	return nil
}
