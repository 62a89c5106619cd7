package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/cache"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/stock-ledger/internal/interfaces/http"
)

// buildLedgerApp arma el router completo sobre el store en memoria.
func buildLedgerApp(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	store.Seed(
		[]entity.Item{{ID: "A", SKU: "SKU-A", Name: "Tornillo", MinQuantity: 10, Active: true}},
		[]entity.Location{{ID: "L1", Name: "Bodega", Active: true}, {ID: "L2", Name: "Tienda", Active: true}},
		map[string]map[string]int64{"A": {"L1": 50}},
		"seed",
	)
	idem := cache.NewMemoryIdempotencyStore(0)
	t.Cleanup(func() { _ = idem.Close() })

	ledger := inventory.NewLedgerUseCase(
		memory.NewTxRunner(store), store.Items(), store.Locations(), store.Levels(), store.Movements(),
		idem, inventory.DefaultLedgerConfig(), zerolog.Nop(),
	)
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Ledger:     ledger,
		Status:     inventory.NewStockStatusUseCase(store.StockQuery()),
		Movements:  inventory.NewMovementQueryUseCase(store.Movements()),
		Statistics: analytics.NewStatisticsUseCase(store.StockQuery()),
		JWTSecret:  testJWTSecret,
	})
	return app
}

func send(t *testing.T, app *fiber.App, method, path, auth string, body any, headers ...string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", auth)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestLedgerHTTP_AjusteRegistraActorDelToken(t *testing.T) {
	app := buildLedgerApp(t)
	resp := send(t, app, http.MethodPost, "/api/ledger/adjustments", tokenForRole(t, "bodeguero"),
		dto.AdjustRequest{ItemID: "A", LocationID: "L1", Delta: 20, Type: "purchase"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	mov := decode[dto.MovementResponse](t, resp)
	assert.Equal(t, int64(50), mov.QuantityBefore)
	assert.Equal(t, int64(70), mov.QuantityAfter)
	assert.Equal(t, testUserID, mov.ActorID)
}

func TestLedgerHTTP_StockInsuficienteDevuelve409ConDetalle(t *testing.T) {
	app := buildLedgerApp(t)
	resp := send(t, app, http.MethodPost, "/api/ledger/adjustments", tokenForRole(t, "bodeguero"),
		dto.AdjustRequest{ItemID: "A", LocationID: "L1", Delta: -60, Type: "sale"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	assert.EqualValues(t, 50, body.Details["available"])
	assert.EqualValues(t, 60, body.Details["requested"])
}

func TestLedgerHTTP_Validaciones(t *testing.T) {
	app := buildLedgerApp(t)
	auth := tokenForRole(t, "bodeguero")

	resp := send(t, app, http.MethodPost, "/api/ledger/adjustments", auth,
		dto.AdjustRequest{ItemID: "A", LocationID: "L1", Delta: 1, Type: "transfer-in"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode[dto.ErrorResponse](t, resp).Code)

	resp = send(t, app, http.MethodPost, "/api/ledger/adjustments", auth,
		dto.AdjustRequest{ItemID: "A", LocationID: "L1", Delta: 0, Type: "sale"})
	assert.Equal(t, "INVALID_QUANTITY", decode[dto.ErrorResponse](t, resp).Code)

	resp = send(t, app, http.MethodPost, "/api/ledger/adjustments", auth,
		dto.AdjustRequest{ItemID: "Z", LocationID: "L1", Delta: 1, Type: "purchase"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "ITEM_NOT_FOUND", decode[dto.ErrorResponse](t, resp).Code)

	resp = send(t, app, http.MethodPost, "/api/ledger/transfers", auth,
		dto.TransferRequest{ItemID: "A", FromLocationID: "L1", ToLocationID: "L1", Quantity: 1})
	assert.Equal(t, "SAME_LOCATION", decode[dto.ErrorResponse](t, resp).Code)

	resp = send(t, app, http.MethodPost, "/api/ledger/counts", auth,
		map[string]any{"item_id": "A", "location_id": "L1", "reason": "conteo"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Contains(t, body.Details, "new_quantity")
}

func TestLedgerHTTP_PermitirNegativoSoloAdmin(t *testing.T) {
	app := buildLedgerApp(t)
	req := dto.AdjustRequest{ItemID: "A", LocationID: "L1", Delta: -55, Type: "correction", Reason: "merma", AllowNegative: true}

	resp := send(t, app, http.MethodPost, "/api/ledger/adjustments", tokenForRole(t, "bodeguero"), req)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = send(t, app, http.MethodPost, "/api/ledger/adjustments", tokenForRole(t, "admin"), req)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, int64(-5), decode[dto.MovementResponse](t, resp).QuantityAfter)
}

func TestLedgerHTTP_AuditorNoPuedeEscribir(t *testing.T) {
	app := buildLedgerApp(t)
	resp := send(t, app, http.MethodPost, "/api/ledger/adjustments", tokenForRole(t, "auditor"),
		dto.AdjustRequest{ItemID: "A", LocationID: "L1", Delta: 1, Type: "purchase"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestLedgerHTTP_IdempotencyKeyRepetida(t *testing.T) {
	app := buildLedgerApp(t)
	auth := tokenForRole(t, "bodeguero")
	req := dto.AdjustRequest{ItemID: "A", LocationID: "L1", Delta: -5, Type: "sale", ReferenceID: "V-1001"}

	resp := send(t, app, http.MethodPost, "/api/ledger/adjustments", auth, req, apphttp.HeaderIdempotencyKey, "venta-1001")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = send(t, app, http.MethodPost, "/api/ledger/adjustments", auth, req, apphttp.HeaderIdempotencyKey, "venta-1001")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE_REQUEST", decode[dto.ErrorResponse](t, resp).Code)

	resp = send(t, app, http.MethodGet, "/api/ledger/stock/A/L1", auth, nil)
	assert.Equal(t, int64(45), decode[dto.StockQuantityResponse](t, resp).Quantity)
}

func TestLedgerHTTP_TrasladoYConsultas(t *testing.T) {
	app := buildLedgerApp(t)
	auth := tokenForRole(t, "bodeguero")

	resp := send(t, app, http.MethodPost, "/api/ledger/transfers", auth,
		dto.TransferRequest{ItemID: "A", FromLocationID: "L1", ToLocationID: "L2", Quantity: 45})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	transfer := decode[dto.TransferResponse](t, resp)
	assert.Equal(t, transfer.ReferenceID, transfer.In.ReferenceID)

	resp = send(t, app, http.MethodGet, "/api/ledger/movements/reference/"+transfer.ReferenceID, auth, nil)
	assert.Len(t, decode[[]dto.MovementResponse](t, resp), 2)

	resp = send(t, app, http.MethodGet, "/api/ledger/status?status=low_stock", auth, nil)
	status := decode[struct {
		Total int                  `json:"total"`
		Items []dto.StockStatusRow `json:"items"`
	}](t, resp)
	require.Equal(t, 1, status.Total)
	assert.Equal(t, "L1", status.Items[0].LocationID)

	resp = send(t, app, http.MethodGet, "/api/ledger/movements?location_id=L1&page_size=1", auth, nil)
	page := decode[dto.MovementPage](t, resp)
	assert.Equal(t, int64(2), page.Page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "transfer-out", page.Items[0].Type)

	resp = send(t, app, http.MethodGet, "/api/ledger/movements/totals?item_id=A", auth, nil)
	totals := decode[dto.MovementTotalsDTO](t, resp)
	assert.Equal(t, int64(50), totals.Net)

	resp = send(t, app, http.MethodGet, "/api/ledger/statistics", tokenForRole(t, "auditor"), nil)
	stats := decode[dto.StatisticsDTO](t, resp)
	assert.Equal(t, int64(50), stats.TotalQuantity)

	resp = send(t, app, http.MethodGet, "/api/ledger/stock/A/L2/verify", tokenForRole(t, "admin"), nil)
	assert.True(t, decode[dto.ConsistencyReport](t, resp).Consistent)
}

func TestLedgerHTTP_FiltrosInvalidos(t *testing.T) {
	app := buildLedgerApp(t)
	auth := tokenForRole(t, "auditor")

	resp := send(t, app, http.MethodGet, "/api/ledger/status?status=raro", auth, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = send(t, app, http.MethodGet, "/api/ledger/movements?date_from=ayer", auth, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = send(t, app, http.MethodGet, "/api/ledger/movements?page_size=500", auth, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
