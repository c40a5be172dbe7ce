package batch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/bardec/internal/barcode"
)

func intPtr(v int) *int { return &v }

func TestFormatRecord(t *testing.T) {
	tests := []struct {
		name   string
		result barcode.Result
		want   string
	}{
		{
			name:   "no points no orientation",
			result: barcode.Result{Format: barcode.FormatQR, Text: "HELLO"},
			want:   `{"type":"QR_CODE","data":"HELLO","orientation":null,"points":[]}`,
		},
		{
			name: "points and orientation",
			result: barcode.Result{
				Format:      barcode.FormatEAN13,
				Text:        "4006381333931",
				Points:      []barcode.Point{{X: 12, Y: 40.5}, {X: 180, Y: 40.5}},
				Orientation: intPtr(90),
			},
			want: `{"type":"EAN_13","data":"4006381333931","orientation":90,"points":[{"x":12,"y":40.5},{"x":180,"y":40.5}]}`,
		},
		{
			name:   "quotes and markup are escaped for JSON only",
			result: barcode.Result{Format: barcode.FormatCode128, Text: `a "b" <c&d>`},
			want:   `{"type":"CODE_128","data":"a \"b\" <c&d>","orientation":null,"points":[]}`,
		},
		{
			name:   "control characters",
			result: barcode.Result{Format: barcode.FormatDataMatrix, Text: "line1\nline2"},
			want:   `{"type":"DATA_MATRIX","data":"line1\nline2","orientation":null,"points":[]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, err := FormatRecord(tt.result)
			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", string(line))
		})
	}
}

func TestSiblingPath(t *testing.T) {
	path, ok := SiblingPath("/data/scans/label.png")
	assert.True(t, ok)
	assert.Equal(t, "/data/scans/label.txt", path)

	path, ok = SiblingPath("archive.tar.gz")
	assert.True(t, ok)
	assert.Equal(t, "archive.tar.txt", path)

	path, ok = SiblingPath("noext")
	assert.True(t, ok)
	assert.Equal(t, "noext.txt", path)

	_, ok = SiblingPath("https://example.com/code.png")
	assert.False(t, ok)
}

func TestReporter_ConcurrentLinesDoNotInterleave(t *testing.T) {
	out := &syncBuffer{}
	r := NewReporter(out, false, discardLogger())

	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results := []barcode.Result{
				{Format: barcode.FormatQR, Text: fmt.Sprintf("item-%d-a", i)},
				{Format: barcode.FormatQR, Text: fmt.Sprintf("item-%d-b", i)},
			}
			assert.NoError(t, r.Report(fmt.Sprintf("in-%d.png", i), results))
		}()
	}
	wg.Wait()

	lines := out.Lines()
	require.Len(t, lines, 64)
	for _, line := range lines {
		var rec Record
		assert.NoError(t, json.Unmarshal([]byte(line), &rec), line)
	}
}

func TestReporter_NoSiblingWhenDisabledOrEmpty(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "a.png")

	r := NewReporter(&syncBuffer{}, false, discardLogger())
	require.NoError(t, r.Report(input, []barcode.Result{{Format: barcode.FormatQR, Text: "x"}}))
	_, err := os.Stat(filepath.Join(dir, "a.txt"))
	assert.True(t, os.IsNotExist(err))

	r = NewReporter(&syncBuffer{}, true, discardLogger())
	require.NoError(t, r.Report(input, nil))
	_, err = os.Stat(filepath.Join(dir, "a.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestReporter_SiblingFailureDoesNotFail(t *testing.T) {
	input := filepath.Join(t.TempDir(), "no-such-dir", "a.png")
	out := &syncBuffer{}
	r := NewReporter(out, true, discardLogger())

	err := r.Report(input, []barcode.Result{{Format: barcode.FormatQR, Text: "x"}})
	require.NoError(t, err)
	assert.Len(t, out.Lines(), 1)
}

func TestReporter_URLInputSkipsSiblingQuietly(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	out := &syncBuffer{}
	r := NewReporter(out, true, logger)

	err := r.Report("https://example.com/code.png", []barcode.Result{{Format: barcode.FormatQR, Text: "x"}})
	require.NoError(t, err)
	assert.Len(t, out.Lines(), 1)

	assert.Contains(t, logs.String(), `"level":"DEBUG"`)
	assert.Contains(t, logs.String(), "no sibling results file for remote input")
	assert.NotContains(t, logs.String(), `"level":"WARN"`)
}
