// Package handler exposes the fulfillment coordinator over a small JSON API.
// This is the surface the external UI collaborator drives; it contains no
// business rules of its own.
package handler

import (
	"context"
	"net/http"

	"github.com/kallerup/pickline/internal/fulfill"
)

// RobotControl covers the auxiliary one-shot robot commands exposed next to
// the fulfillment API. Implemented by robot.Client.
type RobotControl interface {
	Stop(ctx context.Context) error
	TextMsg(ctx context.Context, text string) error
}

// Handler holds the API dependencies.
type Handler struct {
	coord *fulfill.Coordinator
	robot RobotControl
}

// NewHandler constructs a Handler.
func NewHandler(coord *fulfill.Coordinator, robot RobotControl) *Handler {
	return &Handler{coord: coord, robot: robot}
}

// Routes registers all API endpoints on mux under /api.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/items", h.registerItem)
	mux.HandleFunc("GET /api/items", h.listItems)
	mux.HandleFunc("POST /api/stock/credit", h.creditStock)
	mux.HandleFunc("POST /api/stock/debit", h.debitStock)
	mux.HandleFunc("GET /api/stock/low", h.lowStock)

	mux.HandleFunc("POST /api/orders", h.enqueueOrder)
	mux.HandleFunc("GET /api/orders/pending", h.pendingOrders)
	mux.HandleFunc("GET /api/orders/committed", h.committedOrders)
	mux.HandleFunc("GET /api/revenue", h.revenue)
	mux.HandleFunc("POST /api/fulfillments", h.fulfillNext)

	mux.HandleFunc("POST /api/robot/stop", h.robotStop)
	mux.HandleFunc("POST /api/robot/message", h.robotMessage)
}
