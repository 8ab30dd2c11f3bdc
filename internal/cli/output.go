package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/foodsheet/internal/menu"
	"github.com/roach88/foodsheet/internal/model"
	"github.com/roach88/foodsheet/internal/store"
)

// Process exit codes.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // operation rejected: validation, conflict, missing record, bad menu
	ExitCommandError = 2 // command could not run: config, store, flags
)

// Envelope error codes. Menu problems carry the E0xx/E1xx codes of package
// menu instead.
const (
	ErrCodeConfig     = "E010"
	ErrCodeStore      = "E011"
	ErrCodeNotFound   = "E012"
	ErrCodeConflict   = "E013" // stale version or duplicate id
	ErrCodeValidation = "E014"
	ErrCodeUsage      = "E015"
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error

	// Reported means the failure is already on the command's output and
	// main should not print it again.
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError returns an ExitError without a cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError returns an ExitError caused by err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns the code of the first ExitError in err's chain, or
// ExitFailure.
func GetExitCode(err error) int {
	if ee, ok := asExitError(err); ok {
		return ee.Code
	}
	return ExitFailure
}

// IsReported reports whether err was already rendered.
func IsReported(err error) bool {
	ee, ok := asExitError(err)
	return ok && ee.Reported
}

func asExitError(err error) (*ExitError, bool) {
	var ee *ExitError
	ok := errors.As(err, &ee)
	return ee, ok
}

// OutputFormatter renders command results as text or as a JSON envelope.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // VerboseLog target; Writer when nil
	Verbose   bool
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// CLIResponse is the JSON envelope every command writes with --format json.
type CLIResponse struct {
	Status string    `json:"status"` // ok | error
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error half of the envelope.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Success writes data in the configured format. In text mode, text renders
// the output; a nil text prints data with fmt.
func (f *OutputFormatter) Success(data any, text func(w io.Writer) error) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}
	if text == nil {
		_, err := fmt.Fprintln(f.Writer, data)
		return err
	}
	return text(f.Writer)
}

// Error renders a failure. Text mode prints details only when verbose.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}
	if _, err := fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message); err != nil {
		return err
	}
	if f.Verbose && details != nil {
		_, err := fmt.Fprintf(f.Writer, "Details: %v\n", details)
		return err
	}
	return nil
}

// Fail renders err and returns the ExitError the command should return.
func (f *OutputFormatter) Fail(message string, err error) error {
	code, exit, details := classify(err)
	_ = f.Error(code, fmt.Sprintf("%s: %v", message, err), details)
	return &ExitError{Code: exit, Message: message, Err: err, Reported: true}
}

// VerboseLog prints a diagnostic line when --verbose is set.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetEscapeHTML(false)
	return enc.Encode(resp)
}

// classify maps an error to an envelope code, exit code and details.
func classify(err error) (string, int, any) {
	var ve *model.ValidationError
	var le *menu.LoadError
	var ee *ExitError

	switch {
	case errors.As(err, &ve):
		details := map[string]string{"code": string(ve.Code)}
		if ve.Field != "" {
			details["field"] = ve.Field
		}
		return ErrCodeValidation, ExitFailure, details
	case errors.As(err, &le):
		return le.Code, ExitFailure, nil
	case errors.Is(err, model.ErrNotConnected):
		return ErrCodeStore, ExitCommandError, nil
	case errors.Is(err, store.ErrNotFound):
		return ErrCodeNotFound, ExitFailure, nil
	case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrDuplicate):
		return ErrCodeConflict, ExitFailure, nil
	case model.IsPersistence(err):
		return ErrCodeStore, ExitCommandError, nil
	case errors.As(err, &ee):
		return menu.ErrCodeGeneric, ee.Code, nil
	default:
		return menu.ErrCodeGeneric, ExitFailure, nil
	}
}

// newTable returns a tabwriter for column-aligned text output. Callers
// must Flush it.
func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}
