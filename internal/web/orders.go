package web

import (
	"net/http"

	"github.com/roach88/foodsheet/internal/model"
	"github.com/roach88/foodsheet/internal/order"
)

// orderEntry is one row of the management listing.
type orderEntry struct {
	Number  int         `json:"number"`
	Summary string      `json:"summary"`
	Order   model.Order `json:"order"`
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.orders.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	entries := make([]orderEntry, len(orders))
	for i, o := range orders {
		entries[i] = orderEntry{Number: i + 1, Summary: order.Summary(i+1, o), Order: o}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := s.orders.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (s *Server) setOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	o, err := s.orders.SetStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}
