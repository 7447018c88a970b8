package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kallerup/pickline/internal/domain/order"
	"github.com/kallerup/pickline/internal/fulfill"
)

func (h *Handler) enqueueOrder(w http.ResponseWriter, r *http.Request) {
	var (
		name     string
		quantity float64
	)
	err := decodeObj(r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "item":
			name, err = d.Str()
		case "quantity":
			quantity, err = d.Float64()
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if name == "" {
		writeError(w, http.StatusBadRequest, "item is required")
		return
	}

	o, err := h.coord.Enqueue(name, decimal.NewFromFloat(quantity))
	if err != nil {
		mapEnqueueError(w, err)
		return
	}

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("order")
	encodeOrder(&e, o)
	e.FieldStart("pending")
	e.Int(len(h.coord.Snapshot().Pending))
	e.ObjEnd()
	writeJSON(w, http.StatusAccepted, &e)
}

func mapEnqueueError(w http.ResponseWriter, err error) {
	var iqErr *order.InvalidQuantityError
	switch {
	case errors.Is(err, fulfill.ErrUnknownItem):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &iqErr):
		writeError(w, http.StatusUnprocessableEntity, iqErr.Error())
	case errors.Is(err, order.ErrNoItem):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) fulfillNext(w http.ResponseWriter, r *http.Request) {
	res := h.coord.FulfillNext(r.Context())

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("processed")
	e.Bool(res.Processed)
	encodeSnapshot(&e, res.Snapshot)
	e.ObjEnd()
	writeJSON(w, http.StatusOK, &e)
}

func (h *Handler) pendingOrders(w http.ResponseWriter, _ *http.Request) {
	var e jx.Encoder
	e.ObjStart()
	encodeOrders(&e, "orders", h.coord.Snapshot().Pending)
	e.ObjEnd()
	writeJSON(w, http.StatusOK, &e)
}

func (h *Handler) committedOrders(w http.ResponseWriter, _ *http.Request) {
	var e jx.Encoder
	e.ObjStart()
	encodeOrders(&e, "orders", h.coord.Snapshot().Committed)
	e.ObjEnd()
	writeJSON(w, http.StatusOK, &e)
}

func (h *Handler) revenue(w http.ResponseWriter, _ *http.Request) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("revenue")
	e.Float64(h.coord.Snapshot().Revenue.InexactFloat64())
	e.ObjEnd()
	writeJSON(w, http.StatusOK, &e)
}

func (h *Handler) robotStop(w http.ResponseWriter, r *http.Request) {
	if err := h.robot.Stop(r.Context()); err != nil {
		zctx.From(r.Context()).Warn("robot stop failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "robot unreachable")
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) robotMessage(w http.ResponseWriter, r *http.Request) {
	var text string
	err := decodeObj(r, func(d *jx.Decoder, key string) error {
		var err error
		if key == "text" {
			text, err = d.Str()
			return err
		}
		return d.Skip()
	})
	if err != nil || text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	if err := h.robot.TextMsg(r.Context(), text); err != nil {
		zctx.From(r.Context()).Warn("robot message failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "robot unreachable")
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
