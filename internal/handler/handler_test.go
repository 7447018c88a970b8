package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/kallerup/pickline/internal/domain/catalog"
	"github.com/kallerup/pickline/internal/domain/order"
	"github.com/kallerup/pickline/internal/fulfill"
)

type stubDispatcher struct{}

func (stubDispatcher) ReleaseAndRun(context.Context) error { return nil }

type stubRobot struct {
	err      error
	messages []string
}

func (s *stubRobot) Stop(context.Context) error { return s.err }

func (s *stubRobot) TextMsg(_ context.Context, text string) error {
	s.messages = append(s.messages, text)
	return s.err
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestAPI(t *testing.T, rc *stubRobot) *http.ServeMux {
	t.Helper()

	ledger := catalog.NewLedger()
	ledger.Register(catalog.NewDiscreteItem("hydraulic pump", dec("8500"), dec("12")), dec("5"))
	ledger.Register(catalog.NewDiscreteItem("PLC module", dec("1200"), dec("0.4")), dec("10"))

	coord := fulfill.NewCoordinator(ledger, order.NewBook(), stubDispatcher{}, zaptest.NewLogger(t))
	t.Cleanup(coord.Close)

	mux := http.NewServeMux()
	NewHandler(coord, rc).Routes(mux)
	return mux
}

func call(t *testing.T, mux *http.ServeMux, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

func TestRegisterItem(t *testing.T) {
	mux := newTestAPI(t, &stubRobot{})

	w, body := call(t, mux, http.MethodPost, "/api/items",
		`{"name":"hydraulic oil","price":40,"kind":"bulk","unit":"litre","initial_stock":20}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "hydraulic oil", body["name"])
	assert.Equal(t, "bulk", body["kind"])
	assert.Equal(t, 20.0, body["stock"])
}

func TestRegisterItem_Validation(t *testing.T) {
	mux := newTestAPI(t, &stubRobot{})

	w, _ := call(t, mux, http.MethodPost, "/api/items", `{"price":40}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = call(t, mux, http.MethodPost, "/api/items", `{"name":"x","kind":"liquid"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = call(t, mux, http.MethodPost, "/api/items", `{"name":"x","price":-1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListItems(t *testing.T) {
	mux := newTestAPI(t, &stubRobot{})

	w, body := call(t, mux, http.MethodGet, "/api/items", "")

	require.Equal(t, http.StatusOK, w.Code)
	items := body["items"].([]any)
	require.Len(t, items, 2)
	first := items[0].(map[string]any)
	assert.Equal(t, "PLC module", first["name"])
}

func TestCreditStock(t *testing.T) {
	mux := newTestAPI(t, &stubRobot{})

	w, body := call(t, mux, http.MethodPost, "/api/stock/credit",
		`{"name":"hydraulic pump","amount":3}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 8.0, body["stock"])
}

func TestDebitStock_Insufficient(t *testing.T) {
	mux := newTestAPI(t, &stubRobot{})

	w, body := call(t, mux, http.MethodPost, "/api/stock/debit",
		`{"name":"hydraulic pump","amount":99}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, 5.0, body["stock"])
}

func TestLowStock(t *testing.T) {
	mux := newTestAPI(t, &stubRobot{})

	w, body := call(t, mux, http.MethodGet, "/api/stock/low?threshold=6", "")

	require.Equal(t, http.StatusOK, w.Code)
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "hydraulic pump", items[0].(map[string]any)["name"])
}

func TestEnqueue_UnknownItem(t *testing.T) {
	mux := newTestAPI(t, &stubRobot{})

	w, _ := call(t, mux, http.MethodPost, "/api/orders",
		`{"item":"flux capacitor","quantity":1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestEnqueue_NonPositiveQuantity(t *testing.T) {
	mux := newTestAPI(t, &stubRobot{})

	w, _ := call(t, mux, http.MethodPost, "/api/orders",
		`{"item":"hydraulic pump","quantity":0}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestEnqueueAndFulfill(t *testing.T) {
	mux := newTestAPI(t, &stubRobot{})

	w, body := call(t, mux, http.MethodPost, "/api/orders",
		`{"item":"hydraulic pump","quantity":2}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 1.0, body["pending"])

	w, body = call(t, mux, http.MethodPost, "/api/fulfillments", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["processed"])
	assert.Equal(t, 17000.0, body["revenue"])
	assert.Len(t, body["committed"].([]any), 1)
	assert.Empty(t, body["pending"].([]any))

	w, body = call(t, mux, http.MethodGet, "/api/revenue", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 17000.0, body["revenue"])
}

func TestFulfill_EmptyQueue(t *testing.T) {
	mux := newTestAPI(t, &stubRobot{})

	w, body := call(t, mux, http.MethodPost, "/api/fulfillments", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["processed"])
}

func TestFulfill_ShortageDiscards(t *testing.T) {
	mux := newTestAPI(t, &stubRobot{})

	_, _ = call(t, mux, http.MethodPost, "/api/orders",
		`{"item":"PLC module","quantity":12}`)

	w, body := call(t, mux, http.MethodPost, "/api/fulfillments", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["processed"])
	assert.Empty(t, body["pending"].([]any))
	assert.Empty(t, body["committed"].([]any))

	_, body = call(t, mux, http.MethodGet, "/api/orders/pending", "")
	assert.Empty(t, body["orders"].([]any))
}

func TestRobotStop_Unreachable(t *testing.T) {
	mux := newTestAPI(t, &stubRobot{err: errors.New("connection refused")})

	w, _ := call(t, mux, http.MethodPost, "/api/robot/stop", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestRobotMessage(t *testing.T) {
	rc := &stubRobot{}
	mux := newTestAPI(t, rc)

	w, _ := call(t, mux, http.MethodPost, "/api/robot/message", `{"text":"low stock"}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, []string{"low stock"}, rc.messages)

	w, _ = call(t, mux, http.MethodPost, "/api/robot/message", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
