package errors

import (
	"fmt"
	"log/slog"
	"os"
)

// CLIErrorAdapter handles error presentation and exit code determination for the CLI.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
	}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}

	se, ok := err.(*SiteError)
	if !ok {
		return 1
	}

	switch se.Category {
	case CategoryValidation:
		return 2 // Invalid usage
	case CategoryConfig:
		return 7 // Configuration error
	case CategoryGit:
		return 8 // External system error
	case CategoryParse, CategoryRender, CategoryIndex, CategoryFileSystem:
		return 11 // Build error
	case CategoryDaemon:
		return 12 // Runtime error
	case CategoryInternal:
		return 10 // Internal error
	default:
		return 1 // General error
	}
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}

	se, ok := err.(*SiteError)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}

	if a.verbose {
		return se.Error()
	}

	switch se.Category {
	case CategoryConfig, CategoryValidation:
		return se.Message
	default:
		return fmt.Sprintf("%s: %s", se.Category, se.Message)
	}
}

// HandleError processes an error and exits the program with appropriate code.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}

	if se, ok := err.(*SiteError); ok && (a.verbose || se.Category == CategoryInternal) {
		a.logger.LogAttrs(nil, slog.LevelError, se.Message,
			slog.String("category", string(se.Category)),
			slog.String("severity", string(se.Severity)))
	}

	fmt.Fprintf(os.Stderr, "%s\n", a.FormatError(err))
	os.Exit(a.ExitCodeFor(err))
}
