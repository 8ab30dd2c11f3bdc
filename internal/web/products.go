package web

import (
	"net/http"
	"strconv"

	"github.com/roach88/foodsheet/internal/catalog"
	"github.com/roach88/foodsheet/internal/model"
)

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var products []model.Product
	var err error
	switch q.Get("status") {
	case "":
		products, err = s.catalog.List(r.Context())
	case string(model.ProductActive):
		products, err = s.catalog.ListActive(r.Context())
	default:
		err = badRequest("status", "status filter must be active, got %q", q.Get("status"))
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if c := q.Get("category"); c != "" {
		category, err := model.ParseCategory(c)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		filtered := []model.Product{}
		for _, p := range products {
			if p.Category == category {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}

	writeJSON(w, http.StatusOK, products)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.catalog.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type addProductRequest struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Price    model.Amount `json:"price"`
	Category string       `json:"category"`
	ImageURL string       `json:"image_url"`
	Brand    string       `json:"brand"`
}

func (s *Server) addProduct(w http.ResponseWriter, r *http.Request) {
	var req addProductRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	category, err := model.ParseCategory(req.Category)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := s.catalog.Add(r.Context(), model.Product{
		ID:       req.ID,
		Name:     req.Name,
		Price:    req.Price,
		Category: category,
		ImageURL: req.ImageURL,
		Brand:    req.Brand,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

type updateProductRequest struct {
	Version  int64         `json:"version"`
	Name     *string       `json:"name"`
	Price    *model.Amount `json:"price"`
	Category *string       `json:"category"`
	Status   *string       `json:"status"`
	ImageURL *string       `json:"image_url"`
	Brand    *string       `json:"brand"`
}

func (req updateProductRequest) changes() (catalog.Changes, error) {
	c := catalog.Changes{
		Name:     req.Name,
		Price:    req.Price,
		ImageURL: req.ImageURL,
		Brand:    req.Brand,
	}
	if req.Category != nil {
		category, err := model.ParseCategory(*req.Category)
		if err != nil {
			return catalog.Changes{}, err
		}
		c.Category = &category
	}
	if req.Status != nil {
		status, err := model.ParseProductStatus(*req.Status)
		if err != nil {
			return catalog.Changes{}, err
		}
		c.Status = &status
	}
	return c, nil
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req updateProductRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Version < 0 {
		s.writeError(w, r, badRequest("version", "version must not be negative"))
		return
	}
	changes, err := req.changes()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := s.catalog.Update(r.Context(), r.PathValue("id"), req.Version, changes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) removeProduct(w http.ResponseWriter, r *http.Request) {
	var version int64
	if v := r.URL.Query().Get("version"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			s.writeError(w, r, badRequest("version", "version must be a non-negative integer, got %q", v))
			return
		}
		version = n
	}

	if err := s.catalog.Remove(r.Context(), r.PathValue("id"), version); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
