package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/roach88/foodsheet/internal/cart"
	"github.com/roach88/foodsheet/internal/model"
	"github.com/roach88/foodsheet/internal/session"
)

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Create(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Debug("session created", "session_id", sess.ID)
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	unlock := s.locks.Lock(id)
	defer unlock()

	if err := s.sessions.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type pageRequest struct {
	Page string `json:"page"`
}

func (s *Server) setPage(w http.ResponseWriter, r *http.Request) {
	var req pageRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	page, err := session.ParsePage(req.Page)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.withSession(w, r, func(sess *session.Session) (any, int, error) {
		sess.Page = page
		return sess, http.StatusOK, nil
	})
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Cart)
}

type quantityRequest struct {
	Quantity json.Number `json:"quantity"`
}

// parseQuantity accepts a non-negative JSON integer.
func parseQuantity(n json.Number) (int, error) {
	if n == "" {
		return 0, badRequest("quantity", "quantity is required")
	}
	if strings.ContainsAny(string(n), ".eE") {
		return 0, badRequest("quantity", "quantity must be an integer, got %s", n)
	}
	q, err := n.Int64()
	if err != nil {
		return 0, badRequest("quantity", "quantity must be an integer, got %s", n)
	}
	if q < 0 {
		return 0, badRequest("quantity", "quantity must not be negative, got %d", q)
	}
	if q > 1_000_000 {
		return 0, badRequest("quantity", "quantity %d is too large", q)
	}
	return int(q), nil
}

func (s *Server) setQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	quantity, err := parseQuantity(req.Quantity)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	productID := r.PathValue("productId")

	s.withSession(w, r, func(sess *session.Session) (any, int, error) {
		if quantity == 0 {
			// The product may have left the catalog since it was added.
			sess.Cart.Remove(productID)
			return sess.Cart, http.StatusOK, nil
		}

		p, err := s.catalog.Get(r.Context(), productID)
		if err != nil {
			return nil, 0, err
		}
		if err := sess.Cart.SetQuantity(p, quantity); err != nil {
			return nil, 0, err
		}
		return sess.Cart, http.StatusOK, nil
	})
}

type submitRequest struct {
	CustomerName        string `json:"customer_name"`
	SpecialInstructions string `json:"special_instructions"`
}

type submitResponse struct {
	Order model.Order `json:"order"`
	Cart  *cart.Cart  `json:"cart"`
}

func (s *Server) submitOrder(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	// The order is recorded once Submit returns; a failed session save
	// does not fail the request.
	s.updateSession(w, r, true, func(sess *session.Session) (any, int, error) {
		o, err := s.checkout.Submit(r.Context(), sess.Cart, req.CustomerName, req.SpecialInstructions)
		if err != nil {
			return nil, 0, err
		}
		return submitResponse{Order: o, Cart: sess.Cart}, http.StatusCreated, nil
	})
}

// withSession loads the session under its lock, runs fn and saves the
// session if fn succeeds. On error nothing is saved.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(*session.Session) (any, int, error)) {
	s.updateSession(w, r, false, fn)
}

// updateSession is withSession for operations that have already committed
// their effect elsewhere when fn returns. With committed set, a save
// failure is logged and fn's response is still written.
func (s *Server) updateSession(w http.ResponseWriter, r *http.Request, committed bool, fn func(*session.Session) (any, int, error)) {
	id := r.PathValue("id")
	unlock := s.locks.Lock(id)
	defer unlock()

	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	body, status, err := fn(sess)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.sessions.Save(r.Context(), sess); err != nil {
		if !committed {
			s.writeError(w, r, err)
			return
		}
		s.logger.ErrorContext(r.Context(), "session not saved after commit",
			"session", id, "error", err)
	}
	writeJSON(w, status, body)
}
