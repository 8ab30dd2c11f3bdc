package menu

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/foodsheet/internal/model"
)

//go:embed schema.cue
var schemaCUE string

// LoadMode selects whether Load stops at the first bad product.
type LoadMode int

const (
	LoadModeFailFast LoadMode = iota
	LoadModeCollectAll
)

// Error codes shared with the CLI output envelope.
const (
	ErrCodeGeneric     = "E001"
	ErrCodeScanError   = "E002" // walking the directory failed
	ErrCodeNoFiles     = "E003"
	ErrCodeLoadFailed  = "E004" // CUE package did not load
	ErrCodeNotFound    = "E005" // directory missing or not a directory
	ErrCodeBuildFailed = "E006" // CUE evaluation or schema error

	ErrCodeNoProducts      = "E100" // Menu declares no products
	ErrCodeProductName     = "E101" // Missing or invalid name
	ErrCodeProductPrice    = "E102" // Missing or invalid price
	ErrCodeProductCategory = "E103" // Unknown category
	ErrCodeProductStatus   = "E104" // Unknown status
	ErrCodeProductField    = "E105" // Other missing or invalid field
)

// Menu is a compiled menu directory.
type Menu struct {
	Products  []model.Product
	FileCount int // Number of CUE files found
}

// LoadError is a menu problem with its CUE position, if known.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	msg := e.Code + ": " + e.Message
	if !e.Pos.IsValid() {
		return msg
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), msg)
}

// Load reads the CUE package in dir, unifies it with the product schema and
// compiles every declared product.
//
// A nil *Menu means nothing could be loaded. A non-nil *Menu with errors
// holds the products that compiled; in LoadModeFailFast it stops at the
// first bad product.
func Load(dir string, mode LoadMode) (*Menu, []error) {
	files, lerr := scanDir(dir)
	if lerr != nil {
		return nil, []error{lerr}
	}

	insts := load.Instances([]string{"."}, &load.Config{Dir: dir})
	switch {
	case len(insts) == 0:
		return nil, []error{fail(ErrCodeLoadFailed, "no CUE package in %s", dir)}
	case insts[0].Err != nil:
		return nil, []error{fail(ErrCodeLoadFailed, "load %s: %v", dir, insts[0].Err)}
	}

	cctx := cuecontext.New()
	menuVal := cctx.BuildInstance(insts[0])
	if err := menuVal.Err(); err != nil {
		return nil, []error{toLoadError(formatCUEError(err), ErrCodeBuildFailed)}
	}
	schema := cctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, []error{fail(ErrCodeBuildFailed, "product schema: %v", err)}
	}

	products, errs := Compile(schema.Unify(menuVal), mode)
	return &Menu{Products: products, FileCount: len(files)}, errs
}

func fail(code, format string, args ...any) *LoadError {
	return &LoadError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// scanDir checks that dir is a directory holding at least one .cue file and
// returns those files.
func scanDir(dir string) ([]string, *LoadError) {
	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fail(ErrCodeNotFound, "menu directory not found: %s", dir)
	case err != nil:
		return nil, fail(ErrCodeNotFound, "stat %s: %v", dir, err)
	case !info.IsDir():
		return nil, fail(ErrCodeNotFound, "not a directory: %s", dir)
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() && strings.HasSuffix(d.Name(), ".cue") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fail(ErrCodeScanError, "scan %s: %v", dir, err)
	}
	if len(files) == 0 {
		return nil, fail(ErrCodeNoFiles, "no CUE files found in %s", dir)
	}
	return files, nil
}

// Compile builds the products declared under the product field of v, in
// declaration order.
func Compile(v cue.Value, mode LoadMode) ([]model.Product, []error) {
	var errs []error
	products := []model.Product{}

	productsVal := v.LookupPath(cue.ParsePath("product"))
	if !productsVal.Exists() {
		return products, []error{&LoadError{Code: ErrCodeNoProducts, Message: "no products declared", Pos: v.Pos()}}
	}

	iter, err := productsVal.Fields()
	if err != nil {
		return products, []error{toLoadError(formatCUEError(err), ErrCodeGeneric)}
	}

	for iter.Next() {
		p, err := CompileProduct(iter.Label(), iter.Value())
		if err != nil {
			errs = append(errs, toLoadError(err, ErrCodeGeneric))
			if mode == LoadModeFailFast {
				return products, errs
			}
			continue
		}
		products = append(products, p)
	}

	if len(products) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeNoProducts, Message: "no products declared", Pos: productsVal.Pos()})
	}
	return products, errs
}

// toLoadError converts a compile error to a LoadError with position info.
func toLoadError(err error, fallback string) *LoadError {
	var le *LoadError
	if errors.As(err, &le) {
		return le
	}
	var ce *CompileError
	if errors.As(err, &ce) {
		return &LoadError{Code: fieldCode(ce.Field), Message: ce.Message, Pos: ce.Pos}
	}
	return &LoadError{Code: fallback, Message: err.Error()}
}
}

// fieldCodes maps the field a product failed on to its error code.
var fieldCodes = map[string]string{
	"name":      ErrCodeProductName,
	"price":     ErrCodeProductPrice,
	"category":  ErrCodeProductCategory,
	"status":    ErrCodeProductStatus,
	"id":        ErrCodeProductField,
	"brand":     ErrCodeProductField,
	"image_url": ErrCodeProductField,
	"cue":       ErrCodeBuildFailed,
}

func fieldCode(field string) string {
	if code, ok := fieldCodes[field]; ok {
		return code
	}
	return ErrCodeGeneric
}
