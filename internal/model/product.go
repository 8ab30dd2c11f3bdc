package model

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Category is the menu section a product is listed under.
type Category string

const (
	CategoryMainDish   Category = "main-dish"
	CategorySnack      Category = "snack"
	CategoryBeverage   Category = "beverage"
	CategoryDessert    Category = "dessert"
	CategoryLuckyCharm Category = "lucky-charm"
)

// Categories lists every category in menu order.
var Categories = []Category{
	CategoryMainDish,
	CategorySnack,
	CategoryBeverage,
	CategoryDessert,
	CategoryLuckyCharm,
}

var categoryLabels = map[Category]string{
	CategoryMainDish:   "อาหารจานหลัก",
	CategorySnack:      "ของทานเล่น",
	CategoryBeverage:   "เครื่องดื่ม",
	CategoryDessert:    "ของหวาน",
	CategoryLuckyCharm: "ไม้มงคล",
}

// Label returns the Thai display label for the category.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// ParseCategory accepts an enum key ("main-dish") or its Thai label.
func ParseCategory(s string) (Category, error) {
	s = NormalizeText(s)
	if c := Category(strings.ToLower(s)); c.Valid() {
		return c, nil
	}
	for c, label := range categoryLabels {
		if label == s {
			return c, nil
		}
	}
	return "", NewValidationError(ErrCodeInvalidCategory, "category", "unknown category "+s)
}

// ProductStatus controls whether a product is offered for ordering.
type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductInactive ProductStatus = "inactive"
)

// ParseProductStatus parses "active" or "inactive".
func ParseProductStatus(s string) (ProductStatus, error) {
	switch ProductStatus(strings.ToLower(strings.TrimSpace(s))) {
	case ProductActive:
		return ProductActive, nil
	case ProductInactive:
		return ProductInactive, nil
	}
	return "", NewValidationError(ErrCodeInvalidStatus, "status", "unknown product status "+s)
}

// Product is one catalog record. ID is user-assigned and stable; Version is
// bumped by the store on every update.
type Product struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Price    Amount        `json:"price"`
	Category Category      `json:"category"`
	Status   ProductStatus `json:"status"`
	ImageURL string        `json:"image_url"`
	Brand    string        `json:"brand"`
	Version  int64         `json:"version"`
}

// Active reports whether the product may be ordered.
func (p Product) Active() bool {
	return p.Status == ProductActive
}

// Normalize trims and NFC-normalizes the free-text fields. Thai names typed
// on different keyboards otherwise compare unequal.
func (p Product) Normalize() Product {
	p.ID = NormalizeText(p.ID)
	p.Name = NormalizeText(p.Name)
	p.Brand = NormalizeText(p.Brand)
	p.ImageURL = strings.TrimSpace(p.ImageURL)
	return p
}

// ValidateNew checks the fields a new catalog entry needs: id, name,
// price > 0, known category, image reference and brand.
func (p Product) ValidateNew() error {
	if p.ID == "" {
		return MissingFieldError("id")
	}
	if p.Name == "" {
		return MissingFieldError("name")
	}
	if p.Price <= 0 {
		return NewValidationError(ErrCodeInvalidPrice, "price", "price must be greater than 0")
	}
	if !p.Category.Valid() {
		return NewValidationError(ErrCodeInvalidCategory, "category", "unknown category "+string(p.Category))
	}
	if p.ImageURL == "" {
		return MissingFieldError("image_url")
	}
	if p.Brand == "" {
		return MissingFieldError("brand")
	}
	return nil
}

// ValidateStored checks the invariants every stored record keeps.
func (p Product) ValidateStored() error {
	if p.ID == "" {
		return MissingFieldError("id")
	}
	if p.Name == "" {
		return MissingFieldError("name")
	}
	if p.Price < 0 {
		return NewValidationError(ErrCodeInvalidPrice, "price", "price must not be negative")
	}
	if !p.Category.Valid() {
		return NewValidationError(ErrCodeInvalidCategory, "category", "unknown category "+string(p.Category))
	}
	if p.Status != ProductActive && p.Status != ProductInactive {
		return NewValidationError(ErrCodeInvalidStatus, "status", "unknown product status "+string(p.Status))
	}
	return nil
}

// NormalizeText trims surrounding space and applies Unicode NFC.
func NormalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
