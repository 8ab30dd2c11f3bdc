package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/foodsheet/internal/menu"
)

// MenuIssue is one problem found in a menu directory.
type MenuIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// MenuResult holds menu validation results.
type MenuResult struct {
	Valid    bool        `json:"valid"`
	Files    int         `json:"files"`
	Products int         `json:"products"`
	Errors   []MenuIssue `json:"errors,omitempty"`
}

// NewMenuCommand creates the menu command group.
func NewMenuCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Work with CUE menu directories",
	}
	cmd.AddCommand(newMenuValidateCommand(rootOpts))
	return cmd
}

func newMenuValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <menu-dir>",
		Short: "Check a menu directory without touching the store",
		Long: `Load every .cue file in a directory, unify it with the product schema and
report all problems with their file positions.

Example:
  foodsheet menu validate ./menu
  foodsheet menu validate ./menu --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMenuValidate(rootOpts, args[0], cmd)
		},
	}
}

func runMenuValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	out := newFormatter(opts, cmd)

	m, errs := menu.Load(dir, menu.LoadModeCollectAll)
	if m == nil {
		return outputMenuLoadFailure(out, errs)
	}
	out.VerboseLog("Found %d CUE file(s) in %s", m.FileCount, dir)

	if len(errs) > 0 {
		return outputMenuIssues(out, m, errs)
	}

	result := MenuResult{Valid: true, Files: m.FileCount, Products: len(m.Products)}
	return out.Success(result, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ Menu valid: %d product(s) in %d file(s)\n", result.Products, result.Files)
		return err
	})
}

// outputMenuLoadFailure reports a directory that could not be loaded at all.
func outputMenuLoadFailure(out *OutputFormatter, errs []error) error {
	issue := toMenuIssue(errs[0])
	_ = out.Error(issue.Code, issue.Message, nil)
	return &ExitError{
		Code:     ExitCommandError,
		Message:  fmt.Sprintf("%s: %s", issue.Code, issue.Message),
		Err:      errs[0],
		Reported: true,
	}
}

// outputMenuIssues reports per-product problems.
func outputMenuIssues(out *OutputFormatter, m *menu.Menu, errs []error) error {
	issues := make([]MenuIssue, len(errs))
	for i, err := range errs {
		issues[i] = toMenuIssue(err)
	}
	fail := &ExitError{
		Code:     ExitFailure,
		Message:  fmt.Sprintf("menu invalid with %d error(s)", len(issues)),
		Reported: true,
	}

	if out.Format == "json" {
		enc := json.NewEncoder(out.Writer)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		err := enc.Encode(CLIResponse{
			Status: "error",
			Data: MenuResult{
				Valid:    false,
				Files:    m.FileCount,
				Products: len(m.Products),
				Errors:   issues,
			},
			Error: &CLIError{Code: issues[0].Code, Message: issues[0].Message},
		})
		if err != nil {
			return err
		}
		return fail
	}

	fmt.Fprintln(out.Writer, "✗ Menu invalid")
	fmt.Fprintln(out.Writer)
	for _, issue := range issues {
		if issue.Line > 0 {
			fmt.Fprintf(out.Writer, "%s:%d:%d\n", issue.File, issue.Line, issue.Column)
		}
		fmt.Fprintf(out.Writer, "  %s: %s\n\n", issue.Code, issue.Message)
	}
	return fail
}

func toMenuIssue(err error) MenuIssue {
	var le *menu.LoadError
	if !errors.As(err, &le) {
		return MenuIssue{Code: menu.ErrCodeGeneric, Message: err.Error()}
	}
	issue := MenuIssue{Code: le.Code, Message: le.Message}
	if le.Pos.IsValid() {
		issue.File = le.Pos.Filename()
		issue.Line = le.Pos.Line()
		issue.Column = le.Pos.Column()
	}
	return issue
}
