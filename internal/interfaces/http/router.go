package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-ledger/pkg/jwt"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Movements     MovementService
	Replenishment ReplenishmentService
	DeadLetters   DeadLetterService
	JWTSecret     string
	Logger        *logger.Logger
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Movimientos: escritura para admin/operador, lectura también para auditor
	writers := RequireRole(jwt.RoleAdmin, jwt.RoleOperator)
	readers := RequireRole(jwt.RoleAdmin, jwt.RoleOperator, jwt.RoleAuditor)

	mv := api.Group("/stock-movements")
	movementHandler := NewStockMovementHandler(deps.Movements, deps.Logger)
	mv.Post("/transfer", writers, movementHandler.Transfer)
	mv.Get("/history/:itemId", readers, movementHandler.History)
	mv.Get("/history/:itemId/all", readers, movementHandler.HistoryAll)
	mv.Get("/audit-log", readers, movementHandler.AuditLog)
	mv.Get("/audit-log/pdf", readers, movementHandler.AuditLogPDF)
	mv.Post("/:locationType/:inventoryId/adjust", writers, movementHandler.Adjust)

	inv := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Replenishment, deps.Logger)
	inv.Get("/replenishment-list", readers, inventoryHandler.GetReplenishmentList)

	if deps.DeadLetters != nil {
		ob := api.Group("/outbox", RequireRole(jwt.RoleAdmin))
		outboxHandler := NewOutboxHandler(deps.DeadLetters, deps.Logger)
		ob.Get("/dead-letters", outboxHandler.ListDeadLetters)
		ob.Post("/dead-letters/:id/retry", outboxHandler.RetryDeadLetter)
	}
}
