package menu

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/foodsheet/internal/model"
)

// CompileError is a problem with one product, positioned in its CUE source.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	msg := e.Field + ": " + e.Message
	if !e.Pos.IsValid() {
		return msg
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), msg)
}

// CompileProduct builds one catalog record from a product value already
// unified with the schema. id is the product's label in the menu.
func CompileProduct(id string, v cue.Value) (model.Product, error) {
	if err := v.Err(); err != nil {
		return model.Product{}, formatCUEError(err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return model.Product{}, formatCUEError(err)
	}

	p := model.Product{ID: id}
	if model.NormalizeText(id) == "" {
		return model.Product{}, &CompileError{Field: "id", Message: "product id is required", Pos: v.Pos()}
	}

	var err error
	if p.Name, err = lookupString(v, "name"); err != nil {
		return model.Product{}, err
	}
	if p.Brand, err = lookupString(v, "brand"); err != nil {
		return model.Product{}, err
	}
	if p.ImageURL, err = lookupString(v, "image_url"); err != nil {
		return model.Product{}, err
	}

	priceVal := v.LookupPath(cue.ParsePath("price"))
	p.Price, err = model.ParseAmount(fmt.Sprint(priceVal))
	if err != nil {
		return model.Product{}, &CompileError{Field: "price", Message: err.Error(), Pos: priceVal.Pos()}
	}

	categoryVal := v.LookupPath(cue.ParsePath("category"))
	category, err := categoryVal.String()
	if err != nil {
		return model.Product{}, formatCUEError(err)
	}
	if p.Category, err = model.ParseCategory(category); err != nil {
		return model.Product{}, &CompileError{Field: "category", Message: fmt.Sprintf("unknown category %q", category), Pos: categoryVal.Pos()}
	}

	statusVal := v.LookupPath(cue.ParsePath("status"))
	status, err := statusVal.String()
	if err != nil {
		return model.Product{}, formatCUEError(err)
	}
	if p.Status, err = model.ParseProductStatus(status); err != nil {
		return model.Product{}, &CompileError{Field: "status", Message: err.Error(), Pos: statusVal.Pos()}
	}

	return p.Normalize(), nil
}

func lookupString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &CompileError{Field: field, Message: field + " is required", Pos: v.Pos()}
	}
	s, err := fv.String()
	if err != nil {
		return "", &CompileError{Field: field, Message: err.Error(), Pos: fv.Pos()}
	}
	return s, nil
}

// formatCUEError turns the first CUE error into a CompileError named after
// the last element of its path ("cue" when it has none).
func formatCUEError(err error) error {
	list := errors.Errors(err)
	if len(list) == 0 {
		return err
	}
	e := list[0]
	ce := &CompileError{Field: "cue", Message: e.Error()}
	if path := e.Path(); len(path) > 0 {
		ce.Field = path[len(path)-1]
	}
	if pos := errors.Positions(e); len(pos) > 0 {
		ce.Pos = pos[0]
	}
	return ce
}
