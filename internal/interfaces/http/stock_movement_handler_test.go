package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	apphttp "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// fakeMovements registra la última entrada y devuelve err si está definido.
type fakeMovements struct {
	err          error
	lastAdjust   inventory.AdjustInput
	lastTransfer inventory.TransferInput
	lastQuery    dto.AuditLogQuery
}

func (f *fakeMovements) Adjust(_ context.Context, in inventory.AdjustInput) (*entity.StockMovement, error) {
	f.lastAdjust = in
	if f.err != nil {
		return nil, f.err
	}
	to := in.InventoryID
	return &entity.StockMovement{
		ID: "m1", ItemID: "p1", LocationKind: in.Kind, ToLocationID: &to,
		PreviousQuantity: 0, CurrentQuantity: in.QuantityChange, QuantityChange: in.QuantityChange,
		Reason: in.Reason, ActorID: in.ActorID, At: time.Now().UTC(),
	}, nil
}

func (f *fakeMovements) Transfer(_ context.Context, in inventory.TransferInput) (*inventory.TransferResult, error) {
	f.lastTransfer = in
	if f.err != nil {
		return nil, f.err
	}
	return &inventory.TransferResult{
		Withdrawal: &entity.StockMovement{ID: "w", ItemID: "p1", LocationKind: in.SourceKind, QuantityChange: -in.Quantity, Reason: entity.ReasonTransfer},
		Deposit:    &entity.StockMovement{ID: "d", ItemID: "p1", LocationKind: in.DestinationKind, QuantityChange: in.Quantity, Reason: entity.ReasonTransfer},
	}, nil
}

func (f *fakeMovements) History(_ context.Context, _ string, page dto.PageRequest) (*dto.StockMovementPage, error) {
	page.DefaultPage()
	return &dto.StockMovementPage{Items: []dto.StockMovementResponse{}, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset}}, f.err
}

func (f *fakeMovements) HistoryAll(context.Context, string) ([]dto.StockMovementResponse, error) {
	return []dto.StockMovementResponse{{ID: "m1"}}, f.err
}

func (f *fakeMovements) AuditLog(_ context.Context, q dto.AuditLogQuery) (*dto.StockMovementPage, error) {
	f.lastQuery = q
	if f.err != nil {
		return nil, f.err
	}
	return &dto.StockMovementPage{Items: []dto.StockMovementResponse{}}, nil
}

func (f *fakeMovements) AuditLogPDF(_ context.Context, q dto.AuditLogQuery) ([]byte, error) {
	f.lastQuery = q
	return []byte("%PDF-1.3 fake"), f.err
}

type fakeReplenishment struct{}

func (fakeReplenishment) GenerateReplenishmentList(context.Context) ([]dto.ReplenishmentSuggestionDTO, error) {
	return []dto.ReplenishmentSuggestionDTO{{ProductID: "p1", SKU: "PEL-001"}}, nil
}

type fakeDeadLetters struct {
	retried string
	err     error
}

func (f *fakeDeadLetters) List(context.Context, dto.PageRequest) ([]dto.OutboxEventResponse, error) {
	return []dto.OutboxEventResponse{{ID: "e1", Status: string(entity.OutboxDeadLetter)}}, nil
}

func (f *fakeDeadLetters) Retry(_ context.Context, id string) error {
	f.retried = id
	return f.err
}

func newRouterApp(mv *fakeMovements, dl *fakeDeadLetters) *fiber.App {
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Movements:     mv,
		Replenishment: fakeReplenishment{},
		DeadLetters:   dl,
		JWTSecret:     testJWTSecret,
		Logger:        logger.NewNop(),
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, role string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestAdjust_Created_ActorDefaultsToToken(t *testing.T) {
	mv := &fakeMovements{}
	app := newRouterApp(mv, &fakeDeadLetters{})

	resp := call(t, app, http.MethodPost, "/api/stock-movements/box-bin/inv-1/adjust", "operador",
		dto.AdjustRequest{QuantityChange: 5, Reason: "RESTOCK"})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, entity.LocationBoxBin, mv.lastAdjust.Kind)
	assert.Equal(t, "inv-1", mv.lastAdjust.InventoryID)
	require.NotNil(t, mv.lastAdjust.ActorID)
	assert.Equal(t, testUserID, *mv.lastAdjust.ActorID)

	var out dto.StockMovementResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, 5, out.CurrentQuantity)
	assert.Equal(t, "BOX_BIN", out.LocationType)
}

func TestAdjust_ExplicitActorWins(t *testing.T) {
	mv := &fakeMovements{}
	app := newRouterApp(mv, &fakeDeadLetters{})
	actor := "u-42"

	resp := call(t, app, http.MethodPost, "/api/stock-movements/RACK/inv-1/adjust", "admin",
		dto.AdjustRequest{QuantityChange: 1, Reason: "RESTOCK", ActorID: &actor})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "u-42", *mv.lastAdjust.ActorID)
}

func TestAdjust_UnknownLocationType(t *testing.T) {
	app := newRouterApp(&fakeMovements{}, &fakeDeadLetters{})
	resp := call(t, app, http.MethodPost, "/api/stock-movements/shelf/inv-1/adjust", "admin",
		dto.AdjustRequest{QuantityChange: 1, Reason: "RESTOCK"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdjust_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"insuficiente", &domain.InsufficientInventoryError{Requested: 10, Current: 2}, http.StatusBadRequest, "INSUFFICIENT_INVENTORY"},
		{"validación", domain.Invalid("motivo inválido"), http.StatusBadRequest, "VALIDATION"},
		{"no encontrado", domain.NotFound("registro inv-1"), http.StatusNotFound, "NOT_FOUND"},
		{"conflicto", domain.ErrConflict, http.StatusConflict, "CONFLICT"},
		{"interno", assert.AnError, http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newRouterApp(&fakeMovements{err: tc.err}, &fakeDeadLetters{})
			resp := call(t, app, http.MethodPost, "/api/stock-movements/RACK/inv-1/adjust", "admin",
				dto.AdjustRequest{QuantityChange: -10, Reason: "SALE"})
			defer resp.Body.Close()

			assert.Equal(t, tc.status, resp.StatusCode)
			var body dto.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tc.code, body.Code)
		})
	}
}

func TestAdjust_AuditorCannotWrite(t *testing.T) {
	app := newRouterApp(&fakeMovements{}, &fakeDeadLetters{})
	resp := call(t, app, http.MethodPost, "/api/stock-movements/RACK/inv-1/adjust", "auditor",
		dto.AdjustRequest{QuantityChange: 1, Reason: "RESTOCK"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestTransfer_Created(t *testing.T) {
	mv := &fakeMovements{}
	app := newRouterApp(mv, &fakeDeadLetters{})

	resp := call(t, app, http.MethodPost, "/api/stock-movements/transfer", "operador", dto.TransferRequest{
		SourceLocationType:      "RACK",
		SourceInventoryID:       "r-inv",
		DestinationLocationType: "CABINET",
		DestinationLocationID:   "cab-1",
		Quantity:                4,
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, entity.LocationRack, mv.lastTransfer.SourceKind)
	assert.Equal(t, entity.LocationCabinet, mv.lastTransfer.DestinationKind)
	assert.Equal(t, "cab-1", mv.lastTransfer.DestinationLocationID)

	var out dto.TransferResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, -4, out.Withdrawal.QuantityChange)
	assert.Equal(t, 4, out.Deposit.QuantityChange)
}

func TestHistoryAndAuditLog(t *testing.T) {
	mv := &fakeMovements{}
	app := newRouterApp(mv, &fakeDeadLetters{})

	resp := call(t, app, http.MethodGet, "/api/stock-movements/history/p1?limit=5", "auditor", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page dto.StockMovementPage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	assert.Equal(t, 5, page.Page.Limit)

	resp2 := call(t, app, http.MethodGet, "/api/stock-movements/history/p1/all", "auditor", nil)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)

	resp3 := call(t, app, http.MethodGet, "/api/stock-movements/audit-log?search=PEL&reason=SALE&actorId=u1&fromDate=2024-01-01", "auditor", nil)
	defer resp3.Body.Close()
	assert.Equal(t, http.StatusOK, resp3.StatusCode)
	assert.Equal(t, "PEL", mv.lastQuery.Search)
	assert.Equal(t, "SALE", mv.lastQuery.Reason)
	assert.Equal(t, "u1", mv.lastQuery.ActorID)
	assert.Equal(t, "2024-01-01", mv.lastQuery.FromDate)
}

func TestAuditLogPDF(t *testing.T) {
	app := newRouterApp(&fakeMovements{}, &fakeDeadLetters{})
	resp := call(t, app, http.MethodGet, "/api/stock-movements/audit-log/pdf", "admin", nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "auditoria-")
}

func TestRoutes_RequireToken(t *testing.T) {
	app := newRouterApp(&fakeMovements{}, &fakeDeadLetters{})
	resp := call(t, app, http.MethodGet, "/api/stock-movements/audit-log", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestReplenishmentList(t *testing.T) {
	app := newRouterApp(&fakeMovements{}, &fakeDeadLetters{})
	resp := call(t, app, http.MethodGet, "/api/inventory/replenishment-list", "operador", nil)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.EqualValues(t, 1, body["total"])
}

func TestDeadLetters_AdminOnly(t *testing.T) {
	dl := &fakeDeadLetters{}
	app := newRouterApp(&fakeMovements{}, dl)

	resp := call(t, app, http.MethodGet, "/api/outbox/dead-letters", "operador", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp2 := call(t, app, http.MethodGet, "/api/outbox/dead-letters", "admin", nil)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)

	resp3 := call(t, app, http.MethodPost, "/api/outbox/dead-letters/e1/retry", "admin", nil)
	defer resp3.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp3.StatusCode)
	assert.Equal(t, "e1", dl.retried)
}

func TestDeadLetters_RetryConflict(t *testing.T) {
	app := newRouterApp(&fakeMovements{}, &fakeDeadLetters{err: domain.ErrConflict})
	resp := call(t, app, http.MethodPost, "/api/outbox/dead-letters/e1/retry", "admin", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}
