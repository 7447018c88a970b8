package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/jx"

	"github.com/kallerup/pickline/internal/domain/catalog"
	"github.com/kallerup/pickline/internal/domain/order"
	"github.com/kallerup/pickline/internal/fulfill"
)

func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func writeError(w http.ResponseWriter, status int, message string) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("code")
	e.Int(status)
	e.FieldStart("message")
	e.Str(message)
	e.ObjEnd()
	writeJSON(w, status, &e)
}

// decodeObj reads the request body and decodes it as a single JSON object,
// passing each field to fn.
func decodeObj(r *http.Request, fn func(d *jx.Decoder, key string) error) error {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	return jx.DecodeBytes(data).Obj(fn)
}

func encodeItem(e *jx.Encoder, it catalog.Item, stock *catalog.Ledger) {
	e.ObjStart()
	e.FieldStart("name")
	e.Str(it.Name)
	e.FieldStart("price")
	e.Float64(it.Price.InexactFloat64())
	switch it.Kind {
	case catalog.Bulk:
		e.FieldStart("kind")
		e.Str("bulk")
		e.FieldStart("unit")
		e.Str(it.Unit)
	default:
		e.FieldStart("kind")
		e.Str("discrete")
		e.FieldStart("weight")
		e.Float64(it.Weight.InexactFloat64())
	}
	e.FieldStart("description")
	e.Str(it.Describe())
	if stock != nil {
		if q, ok := stock.Quantity(it.Name); ok {
			e.FieldStart("stock")
			e.Float64(q.InexactFloat64())
		}
	}
	e.ObjEnd()
}

func encodeOrder(e *jx.Encoder, o order.Order) {
	e.ObjStart()
	e.FieldStart("item")
	e.Str(o.Item().Name)
	e.FieldStart("quantity")
	e.Float64(o.Quantity().InexactFloat64())
	e.FieldStart("total_price")
	e.Float64(o.TotalPrice().InexactFloat64())
	e.ObjEnd()
}

func encodeOrders(e *jx.Encoder, field string, orders []order.Order) {
	e.FieldStart(field)
	e.ArrStart()
	for _, o := range orders {
		encodeOrder(e, o)
	}
	e.ArrEnd()
}

func encodeSnapshot(e *jx.Encoder, snap fulfill.Snapshot) {
	encodeOrders(e, "pending", snap.Pending)
	encodeOrders(e, "committed", snap.Committed)
	e.FieldStart("revenue")
	e.Float64(snap.Revenue.InexactFloat64())
}
