package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// DeadLetterService operación manual sobre eventos en DEAD_LETTER.
type DeadLetterService interface {
	List(ctx context.Context, page dto.PageRequest) ([]dto.OutboxEventResponse, error)
	Retry(ctx context.Context, id string) error
}

// OutboxHandler administración del outbox (solo admin).
type OutboxHandler struct {
	svc DeadLetterService
	log *logger.Logger
}

// NewOutboxHandler construye el handler.
func NewOutboxHandler(svc DeadLetterService, log *logger.Logger) *OutboxHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &OutboxHandler{svc: svc, log: log}
}

// ListDeadLetters godoc
// @Summary      Eventos que agotaron los reintentos de publicación
// @Tags         outbox
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Tamaño de página"
// @Param        offset  query  int  false  "Desplazamiento"
// @Success      200  {array}   dto.OutboxEventResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/outbox/dead-letters [get]
func (h *OutboxHandler) ListDeadLetters(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return writeError(c, h.log, domain.Invalid("paginación inválida"))
	}
	list, err := h.svc.List(c.UserContext(), page)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(list)
}

// RetryDeadLetter godoc
// @Summary      Reencolar un evento en DEAD_LETTER
// @Tags         outbox
// @Security     Bearer
// @Param        id  path  string  true  "ID del evento"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/outbox/dead-letters/{id}/retry [post]
func (h *OutboxHandler) RetryDeadLetter(c *fiber.Ctx) error {
	if err := h.svc.Retry(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
