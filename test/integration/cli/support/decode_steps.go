package support

import (
	"bufio"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cucumber/godog"

	"github.com/MeKo-Tech/bardec/internal/testutil"
)

// codeRecord mirrors one JSON line written by bardec.
type codeRecord struct {
	Type        string `json:"type"`
	Data        string `json:"data"`
	Orientation *int   `json:"orientation"`
	Points      []struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	} `json:"points"`
}

func (testCtx *TestContext) fixturePath(name string) string {
	return filepath.Join(testCtx.TempDir, filepath.FromSlash(name))
}

// aQRCodeImageContaining writes a QR code fixture below the temp directory.
func (testCtx *TestContext) aQRCodeImageContaining(name, content string) error {
	return testutil.WriteQRCodeFile(testCtx.fixturePath(name), content)
}

// aBlankImage writes an image without any code.
func (testCtx *TestContext) aBlankImage(name string) error {
	return testutil.WriteBlankFile(testCtx.fixturePath(name))
}

// aTextFile writes a non-image file.
func (testCtx *TestContext) aTextFile(name, content string) error {
	return testutil.WriteFile(testCtx.fixturePath(name), content)
}

// records parses stdout as JSON lines; anything else is an error.
func (testCtx *TestContext) records() ([]codeRecord, error) {
	var records []codeRecord
	sc := bufio.NewScanner(strings.NewReader(testCtx.LastStdout))
	for sc.Scan() {
		line := sc.Text()
		var rec codeRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, fmt.Errorf("stdout line is not a JSON record: %q: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, sc.Err()
}

// theOutputShouldHaveRecords verifies the number of JSON lines on stdout.
func (testCtx *TestContext) theOutputShouldHaveRecords(n int) error {
	records, err := testCtx.records()
	if err != nil {
		return err
	}
	if len(records) != n {
		return fmt.Errorf("expected %d records, got %d\nstdout: %s\nstderr: %s",
			n, len(records), testCtx.LastStdout, testCtx.LastStderr)
	}
	return nil
}

// theOutputShouldContainRecord looks for a record with the given type and data.
func (testCtx *TestContext) theOutputShouldContainRecord(symbology, data string) error {
	records, err := testCtx.records()
	if err != nil {
		return err
	}
	for _, rec := range records {
		if rec.Type == symbology && rec.Data == data {
			return nil
		}
	}
	return fmt.Errorf("no %s record with data %q in stdout: %s", symbology, data, testCtx.LastStdout)
}

// everyRecordShouldHaveGeometry verifies that each record carries points.
func (testCtx *TestContext) everyRecordShouldHaveGeometry() error {
	records, err := testCtx.records()
	if err != nil {
		return err
	}
	for _, rec := range records {
		if len(rec.Points) == 0 {
			return fmt.Errorf("record %q has no points", rec.Data)
		}
	}
	return nil
}

// eachValueShouldAppearOnce verifies exactly-once output for a comma list.
func (testCtx *TestContext) eachValueShouldAppearOnce(values string) error {
	records, err := testCtx.records()
	if err != nil {
		return err
	}
	counts := make(map[string]int)
	for _, rec := range records {
		counts[rec.Data]++
	}
	for _, v := range strings.Split(values, ",") {
		v = strings.TrimSpace(v)
		if counts[v] != 1 {
			return fmt.Errorf("value %q reported %d times", v, counts[v])
		}
	}
	return nil
}

// RegisterDecodeSteps registers fixture and record steps.
func (testCtx *TestContext) RegisterDecodeSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a QR code image "([^"]*)" containing "([^"]*)"$`, testCtx.aQRCodeImageContaining)
	sc.Step(`^a blank image "([^"]*)"$`, testCtx.aBlankImage)
	sc.Step(`^a text file "([^"]*)" containing "([^"]*)"$`, testCtx.aTextFile)
	sc.Step(`^the output should have (\d+) records?$`, testCtx.theOutputShouldHaveRecords)
	sc.Step(`^the output should contain a "([^"]*)" record with data "([^"]*)"$`, testCtx.theOutputShouldContainRecord)
	sc.Step(`^every record should have geometry$`, testCtx.everyRecordShouldHaveGeometry)
	sc.Step(`^each of "([^"]*)" should be reported exactly once$`, testCtx.eachValueShouldAppearOnce)
}
