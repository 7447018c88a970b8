package handler

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/kallerup/pickline/internal/domain/catalog"
)

type registerItemRequest struct {
	name    string
	price   float64
	kind    string
	weight  float64
	unit    string
	initial float64
}

func (h *Handler) registerItem(w http.ResponseWriter, r *http.Request) {
	var req registerItemRequest
	err := decodeObj(r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "name":
			req.name, err = d.Str()
		case "price":
			req.price, err = d.Float64()
		case "kind":
			req.kind, err = d.Str()
		case "weight":
			req.weight, err = d.Float64()
		case "unit":
			req.unit, err = d.Str()
		case "initial_stock":
			req.initial, err = d.Float64()
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.price < 0 {
		writeError(w, http.StatusBadRequest, "price must not be negative")
		return
	}

	price := decimal.NewFromFloat(req.price)
	var item catalog.Item
	switch req.kind {
	case "bulk":
		if req.unit == "" {
			writeError(w, http.StatusBadRequest, "unit is required for bulk items")
			return
		}
		item = catalog.NewBulkItem(req.name, price, req.unit)
	case "", "discrete":
		item = catalog.NewDiscreteItem(req.name, price, decimal.NewFromFloat(req.weight))
	default:
		writeError(w, http.StatusBadRequest, "kind must be discrete or bulk")
		return
	}

	ledger := h.coord.Ledger()
	ledger.Register(item, decimal.NewFromFloat(req.initial))

	var e jx.Encoder
	encodeItem(&e, item, ledger)
	writeJSON(w, http.StatusCreated, &e)
}

func (h *Handler) listItems(w http.ResponseWriter, _ *http.Request) {
	ledger := h.coord.Ledger()

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("items")
	e.ArrStart()
	for _, it := range ledger.Items() {
		encodeItem(&e, it, ledger)
	}
	e.ArrEnd()
	e.ObjEnd()
	writeJSON(w, http.StatusOK, &e)
}

type stockRequest struct {
	name   string
	amount float64
}

func decodeStockRequest(r *http.Request) (stockRequest, error) {
	var req stockRequest
	err := decodeObj(r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "name":
			req.name, err = d.Str()
		case "amount":
			req.amount, err = d.Float64()
		default:
			err = d.Skip()
		}
		return err
	})
	return req, err
}

func (h *Handler) creditStock(w http.ResponseWriter, r *http.Request) {
	req, err := decodeStockRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	ledger := h.coord.Ledger()
	ledger.Credit(req.name, decimal.NewFromFloat(req.amount))
	q, _ := ledger.Quantity(req.name)

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("name")
	e.Str(req.name)
	e.FieldStart("stock")
	e.Float64(q.InexactFloat64())
	e.ObjEnd()
	writeJSON(w, http.StatusOK, &e)
}

func (h *Handler) debitStock(w http.ResponseWriter, r *http.Request) {
	req, err := decodeStockRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	ledger := h.coord.Ledger()
	ok := ledger.Debit(req.name, decimal.NewFromFloat(req.amount))
	q, _ := ledger.Quantity(req.name)

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("ok")
	e.Bool(ok)
	e.FieldStart("name")
	e.Str(req.name)
	e.FieldStart("stock")
	e.Float64(q.InexactFloat64())
	e.ObjEnd()
	writeJSON(w, http.StatusOK, &e)
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	threshold := catalog.DefaultLowStockThreshold
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid threshold")
			return
		}
		threshold = parsed
	}

	ledger := h.coord.Ledger()

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("threshold")
	e.Float64(threshold.InexactFloat64())
	e.FieldStart("items")
	e.ArrStart()
	for _, it := range ledger.LowStock(threshold) {
		encodeItem(&e, it, ledger)
	}
	e.ArrEnd()
	e.ObjEnd()
	writeJSON(w, http.StatusOK, &e)
}
