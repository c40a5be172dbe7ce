package cmd

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/bardec/internal/testutil"
)

type record struct {
	Type        string `json:"type"`
	Data        string `json:"data"`
	Orientation *int   `json:"orientation"`
	Points      []struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	} `json:"points"`
}

func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := GetRootCommand()
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func parseRecords(t *testing.T, out string) []record {
	t.Helper()

	var records []record
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		var rec record
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec), sc.Text())
		records = append(records, rec)
	}
	return records
}

func TestRootCommand(t *testing.T) {
	cmd := GetRootCommand()
	assert.True(t, strings.HasPrefix(cmd.Use, "bardec"))
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.Contains(t, names, "version")
	assert.Contains(t, names, "config")
}

func TestRootCommandHelp(t *testing.T) {
	out, _, err := executeCommand(t, "--help")
	require.NoError(t, err)

	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "--crop")
	assert.Contains(t, out, "--threads")
	assert.Contains(t, out, "--dump-results")
}

func TestRootCommandNoArgsPrintsUsage(t *testing.T) {
	out, _, err := executeCommand(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")

	// The help text shows an indented example record; emitted records start
	// at column 0.
	for _, line := range strings.Split(out, "\n") {
		var rec record
		if strings.HasPrefix(line, "{") && json.Unmarshal([]byte(line), &rec) == nil {
			t.Errorf("help output contains a decode record: %q", line)
		}
	}
}

func TestRootCommandAcceptsInputArguments(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	first := testutil.WriteQRCodePNG(t, dir, "first.png", "ONE")
	second := testutil.WriteQRCodePNG(t, dir, "second.png", "TWO")

	out, _, err := executeCommand(t, "--threads=2", first, second)
	require.NoError(t, err)

	records := parseRecords(t, out)
	require.Len(t, records, 2)
	assert.ElementsMatch(t, []string{"ONE", "TWO"}, []string{records[0].Data, records[1].Data})
}

func TestRootCommandSubcommandsStillResolve(t *testing.T) {
	out, _, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "bardec version")
}

func TestRootCommandInvalidFlag(t *testing.T) {
	cmd := GetRootCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--bogus", "a.png"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown flag")
	assert.Contains(t, buf.String(), "Usage:")
}

func TestRootCommandDecodesQRCode(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	qr := testutil.WriteQRCodePNG(t, dir, "qr.png", "HELLO")

	out, stderr, err := executeCommand(t, qr)
	require.NoError(t, err)

	records := parseRecords(t, out)
	require.Len(t, records, 1)
	assert.Equal(t, "QR_CODE", records[0].Type)
	assert.Equal(t, "HELLO", records[0].Data)
	assert.NotEmpty(t, records[0].Points)

	assert.Contains(t, stderr, `"run_id"`)
	assert.NotContains(t, out, "run_id")
}

func TestRootCommandMissingFileDoesNotAbort(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	qr := testutil.WriteQRCodePNG(t, dir, "qr.png", "STILL HERE")
	missing := filepath.Join(dir, "missing.png")

	out, stderr, err := executeCommand(t, "--threads=2", missing, qr)
	require.NoError(t, err)

	records := parseRecords(t, out)
	require.Len(t, records, 1)
	assert.Equal(t, "STILL HERE", records[0].Data)
	assert.Contains(t, stderr, "missing.png")
}

func TestRootCommandThreadsClamp(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	a := testutil.WriteQRCodePNG(t, dir, "a.png", "A")
	b := testutil.WriteQRCodePNG(t, dir, "b.png", "B")

	out, stderr, err := executeCommand(t, "--threads=0", "--summary", a, b)
	require.NoError(t, err)

	assert.Len(t, parseRecords(t, out), 2)
	assert.Contains(t, stderr, "decoded 2/2 inputs with 1 workers")
}

func TestRootCommandInvalidCrop(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	qr := testutil.WriteQRCodePNG(t, dir, "qr.png", "HELLO")

	for _, crop := range []string{"1,2,3", "a,b,c,d", "0,0,-5,10"} {
		out, _, err := executeCommand(t, "--crop="+crop, qr)
		require.Error(t, err, crop)
		assert.Contains(t, err.Error(), "invalid crop")
		assert.NotContains(t, out, `"type"`)
	}
}

func TestRootCommandCropWithoutCode(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	qr := testutil.WriteQRCodePNG(t, dir, "qr.png", "HELLO")

	out, _, err := executeCommand(t, "--crop=0,0,20,20", qr)
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(out))
}

func TestRootCommandInvalidFormat(t *testing.T) {
	_, _, err := executeCommand(t, "--formats=qr,hologram", "a.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid formats")
}

func TestRootCommandDumpResults(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	qr := testutil.WriteQRCodePNG(t, dir, "label.png", "SIBLING")

	_, _, err := executeCommand(t, "--dump-results", qr)
	require.NoError(t, err)

	assert.Equal(t, "SIBLING\n", testutil.ReadFile(t, filepath.Join(dir, "label.txt")))
}

func TestRootCommandDirectoryInput(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	testutil.WriteQRCodePNG(t, dir, "one.png", "ONE")
	testutil.WriteBlankPNG(t, dir, "blank.png")
	require.NoError(t, testutil.EnsureDir(filepath.Join(dir, "nested")))
	testutil.WriteQRCodePNG(t, filepath.Join(dir, "nested"), "two.png", "TWO")

	out, _, err := executeCommand(t, dir)
	require.NoError(t, err)
	assert.Len(t, parseRecords(t, out), 1)

	out, _, err = executeCommand(t, "--recursive", "--threads=4", dir)
	require.NoError(t, err)

	var texts []string
	for _, rec := range parseRecords(t, out) {
		texts = append(texts, rec.Data)
	}
	assert.ElementsMatch(t, []string{"ONE", "TWO"}, texts)
}

func TestRootCommandMetricsFile(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	qr := testutil.WriteQRCodePNG(t, dir, "qr.png", "METRICS")
	metricsFile := filepath.Join(dir, "bardec.prom")

	_, _, err := executeCommand(t, "--metrics-file="+metricsFile, qr)
	require.NoError(t, err)

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `bardec_items_total{status="decoded"} 1`)
	assert.Contains(t, string(data), `bardec_codes_total{type="QR_CODE"} 1`)
}

func TestRootCommandConfigFile(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	qr := testutil.WriteQRCodePNG(t, dir, "qr.png", "HELLO")
	cfgFile := filepath.Join(dir, "bardec.yaml")
	require.NoError(t, testutil.WriteFile(cfgFile, "decode:\n  formats: [ean13]\n"))

	out, _, err := executeCommand(t, "--config", cfgFile, qr)
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(out), "QR codes are excluded by the configured formats")

	out, _, err = executeCommand(t, "--config", cfgFile, "--formats=qr", qr)
	require.NoError(t, err)
	assert.Len(t, parseRecords(t, out), 1)
}

func TestRootCommandVersionFlag(t *testing.T) {
	out, _, err := executeCommand(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "commit:")
}

func TestRootCommandSummary(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	qr := testutil.WriteQRCodePNG(t, dir, "qr.png", "SUMMARY")
	blank := testutil.WriteBlankPNG(t, dir, "blank.png")
	missing := filepath.Join(dir, "missing.png")

	out, stderr, err := executeCommand(t, "--summary", "--threads=3", qr, blank, missing)
	require.NoError(t, err)

	require.Len(t, parseRecords(t, out), 1)
	assert.Contains(t, stderr, "decoded 1/3 inputs with 3 workers: 1 codes, 1 failed, 1 empty")
}
