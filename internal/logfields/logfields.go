package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyDocID      = "doc_id"
	KeyDocType    = "doc_type"
	KeyTemplate   = "template"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyCount      = "count"
	KeyBuildID    = "build_id"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func DocID(id string) slog.Attr       { return slog.String(KeyDocID, id) }
func DocType(t string) slog.Attr      { return slog.String(KeyDocType, t) }
func Template(name string) slog.Attr  { return slog.String(KeyTemplate, name) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
