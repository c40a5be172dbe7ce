package batch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/MeKo-Tech/bardec/internal/barcode"
)

// Record is the JSON shape written for every decoded code. Field order is
// part of the output contract.
type Record struct {
	Type        string        `json:"type"`
	Data        string        `json:"data"`
	Orientation *int          `json:"orientation"`
	Points      []RecordPoint `json:"points"`
}

// RecordPoint is one geometry point of a Record.
type RecordPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewRecord converts a decoded code into its report form.
func NewRecord(res barcode.Result) Record {
	rec := Record{
		Type:        res.Format.String(),
		Data:        res.Text,
		Orientation: res.Orientation,
		Points:      make([]RecordPoint, 0, len(res.Points)),
	}
	for _, p := range res.Points {
		rec.Points = append(rec.Points, RecordPoint{X: p.X, Y: p.Y})
	}
	return rec
}

// FormatRecord serializes one result as a single newline-terminated JSON line.
func FormatRecord(res barcode.Result) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(NewRecord(res)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Reporter writes decode results. It is shared by all workers; each JSON
// line reaches the writer in a single Write under the reporter's lock.
type Reporter struct {
	mu          sync.Mutex
	out         io.Writer
	dumpResults bool
	logger      *slog.Logger
}

// NewReporter creates a reporter writing JSON lines to out. With
// dumpResults set it also writes a sibling .txt file per input.
func NewReporter(out io.Writer, dumpResults bool, logger *slog.Logger) *Reporter {
	if out == nil {
		out = os.Stdout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{out: out, dumpResults: dumpResults, logger: logger}
}

// Report writes one JSON line per result, in decoder order, and the
// optional sibling file. Sibling failures are logged and never returned.
func (r *Reporter) Report(input string, results []barcode.Result) error {
	for _, res := range results {
		line, err := FormatRecord(res)
		if err != nil {
			return fmt.Errorf("failed to encode result for %s: %w", input, err)
		}
		if err := r.writeLine(line); err != nil {
			return fmt.Errorf("failed to write result for %s: %w", input, err)
		}
	}

	if r.dumpResults && len(results) > 0 {
		path, ok := SiblingPath(input)
		if !ok {
			r.logger.Debug("no sibling results file for remote input", "input", input)
			return nil
		}
		if err := writeSibling(path, results); err != nil {
			r.logger.Warn("failed to write sibling results file", "input", input, "error", err)
		}
	}
	return nil
}

func (r *Reporter) writeLine(line []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.out.Write(line)
	return err
}

// SiblingPath returns the text file written next to input: its extension
// replaced with ".txt". URLs have no sibling file.
func SiblingPath(input string) (string, bool) {
	if IsURL(input) {
		return "", false
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".txt", true
}

func writeSibling(path string, results []barcode.Result) error {
	var buf bytes.Buffer
	for _, res := range results {
		buf.WriteString(res.Text)
		buf.WriteByte('\n')
	}
	return os.WriteFile(path, buf.Bytes(), 0o600)
}
