package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPath         = "path"
	KeyOutput       = "output"
	KeyBackend      = "backend"
	KeyCells        = "cells"
	KeyCodeCells    = "code_cells"
	KeyMarkdownCell = "markdown_cells"
	KeyCellKind     = "cell_kind"
	KeyCellID       = "cell_id"
	KeyStage        = "stage"
	KeyDurationMS   = "duration_ms"
	KeyURL          = "url"
	KeyStatus       = "status"
	KeyEvent        = "event"
	KeyHash         = "hash"
	KeyError        = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Path(p string) slog.Attr { return slog.String(KeyPath, p) }
func Output(p string) slog.Attr { return slog.String(KeyOutput, p) }
func Backend(b string) slog.Attr { return slog.String(KeyBackend, b) }
func Cells(n int) slog.Attr { return slog.Int(KeyCells, n) }
func CodeCells(n int) slog.Attr { return slog.Int(KeyCodeCells, n) }
func MarkdownCells(n int) slog.Attr { return slog.Int(KeyMarkdownCell, n) }
func CellKind(k string) slog.Attr { return slog.String(KeyCellKind, k) }
func CellID(id string) slog.Attr { return slog.String(KeyCellID, id) }
func Stage(name string) slog.Attr { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func URL(u string) slog.Attr { return slog.String(KeyURL, u) }
func Status(code int) slog.Attr { return slog.Int(KeyStatus, code) }
func Event(op string) slog.Attr { return slog.String(KeyEvent, op) }
func Hash(h string) slog.Attr { return slog.String(KeyHash, h) }

// Duration reports d in milliseconds under the canonical duration key.
func Duration(d time.Duration) slog.Attr {
	return DurationMS(float64(d.Microseconds()) / 1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
