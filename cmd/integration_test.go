package cmd

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/nfrscope-cli/internal/dataset"
	"github.com/KaramelBytes/nfrscope-cli/internal/stats"
)

// resetFlags restores every flag to its default so Changed state does not
// leak between invocations of the shared rootCmd.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and returns stdout, stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil
	color.Enable = false
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// runCmd is a helper to execute the root command with args; it fails the test on error.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, err := execute(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\nstderr:\n%s", args, err, errOut)
	}
	return out
}

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	return home
}

func writeCSV(t *testing.T, dir, name string, n int) string {
	t.Helper()
	classes := []string{"F", "F", "SE", "US", "PE"}
	var b strings.Builder
	b.WriteString("ProjectID,RequirementText,class\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%d,\"%s\",%s\n", i%4+1, strings.Repeat("x", i+1), classes[i%len(classes)])
	}
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(b.String()), 0o644))
	return p
}

func TestCLI_AnalyzeToStdout(t *testing.T) {
	home := isolateHome(t)
	path := writeCSV(t, home, "nfr.csv", 100)

	out := runCmd(t, "analyze", path)
	assert.Contains(t, out, "[DATASET SUMMARY]")
	assert.Contains(t, out, "Rows: 100")
	assert.Contains(t, out, "Projects: 4")
	assert.Contains(t, out, "Functional (F)")
	assert.Contains(t, out, "[BELOW 95TH PERCENTILE] (length < 95.05, 95 of 100 rows)")
}

func TestCLI_AnalyzeOutDirCollisions(t *testing.T) {
	home := isolateHome(t)
	d1 := filepath.Join(home, "d1")
	d2 := filepath.Join(home, "d2")
	require.NoError(t, os.MkdirAll(d1, 0o755))
	require.NoError(t, os.MkdirAll(d2, 0o755))
	writeCSV(t, d1, "nfr.csv", 20)
	writeCSV(t, d2, "nfr.csv", 30)
	outDir := filepath.Join(home, "reports")

	runCmd(t, "analyze", filepath.Join(home, "d*", "nfr.csv"), "--out-dir", outDir, "--format", "json", "--quiet")

	_, err := os.Stat(filepath.Join(outDir, "nfr.report.json"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(outDir, "nfr__2.report.json"))
	require.NoError(t, err)
}

func TestCLI_AnalyzeOutputRejectsMultipleInputs(t *testing.T) {
	home := isolateHome(t)
	a := writeCSV(t, home, "a.csv", 5)
	b := writeCSV(t, home, "b.csv", 5)
	_, _, err := execute(t, "analyze", a, b, "-o", filepath.Join(home, "out.md"))
	assert.Error(t, err)
}

func TestCLI_AnalyzeErrors(t *testing.T) {
	home := isolateHome(t)

	_, _, err := execute(t, "analyze", filepath.Join(home, "missing.csv"))
	var ioErr *dataset.IOError
	assert.True(t, errors.As(err, &ioErr), "got %v", err)

	bad := filepath.Join(home, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("text,label\nhello,F\n"), 0o644))
	_, _, err = execute(t, "analyze", bad)
	var schemaErr *dataset.SchemaError
	assert.True(t, errors.As(err, &schemaErr), "got %v", err)

	path := writeCSV(t, home, "nfr.csv", 10)
	_, _, err = execute(t, "analyze", path, "--quantile", "1.2")
	var valErr *stats.ValueError
	assert.True(t, errors.As(err, &valErr), "got %v", err)
}

func TestCLI_AnalyzeCustomColumns(t *testing.T) {
	home := isolateHome(t)
	p := filepath.Join(home, "custom.csv")
	require.NoError(t, os.WriteFile(p, []byte("text;label\nThe system shall log in;SE\nIt shall be fast;PE\n"), 0o644))
	out := runCmd(t, "analyze", p, "--text-column", "text", "--class-column", "label", "--delimiter", ";")
	assert.Contains(t, out, "Security (SE)")
	assert.NotContains(t, out, "Projects:")
}

func TestCLI_Categories(t *testing.T) {
	home := isolateHome(t)
	path := writeCSV(t, home, "nfr.csv", 10)
	out := runCmd(t, "categories", path, "--charts")
	assert.Contains(t, out, "Functional (F)")
	assert.Contains(t, out, "40.00%")
	assert.Contains(t, out, "# F (40.00%)")

	out = runCmd(t, "categories", path, "--json")
	assert.Contains(t, out, `"class": "F"`)
}

func TestCLI_Lengths(t *testing.T) {
	home := isolateHome(t)
	path := writeCSV(t, home, "nfr.csv", 100)
	out := runCmd(t, "lengths", path, "--below-quantile", "0.95", "--by-class")
	assert.Contains(t, out, "Kept 95 of 100 rows with length < 95.05")
	assert.Contains(t, out, "outliers")

	_, _, err := execute(t, "lengths", path, "--below-quantile", "0")
	var valErr *stats.ValueError
	assert.True(t, errors.As(err, &valErr))
}

func TestCLI_LabelsAndConfig(t *testing.T) {
	home := isolateHome(t)
	out := runCmd(t, "labels")
	assert.Contains(t, out, "Portability")
	assert.Contains(t, out, "625")

	runCmd(t, "config", "set", "quantile", "0.9")
	_, err := os.Stat(filepath.Join(home, ".nfrscope", "config.yaml"))
	require.NoError(t, err)
	out = runCmd(t, "config", "show")
	assert.Contains(t, out, "quantile: 0.9")

	_, _, err = execute(t, "config", "set", "quantile", "2")
	assert.Error(t, err)
}

// writeWorkbook stores rows as the sheet named "Reqs" of a minimal workbook.
func writeWorkbook(t *testing.T, dir, name, rows string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	parts := map[string]string{
		"xl/workbook.xml": `<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" ` +
			`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">` +
			`<sheets><sheet name="Reqs" sheetId="1" r:id="rId1"/></sheets></workbook>`,
		"xl/_rels/workbook.xml.rels": `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Target="worksheets/sheet1.xml"/></Relationships>`,
		"xl/worksheets/sheet1.xml": `<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>` +
			rows + `</sheetData></worksheet>`,
	}
	for name, body := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return p
}

func TestCLI_AnalyzeOutDirUsesConfiguredSheet(t *testing.T) {
	home := isolateHome(t)
	p := writeWorkbook(t, home, "nfr.xlsx",
		`<row r="1"><c r="A1" t="inlineStr"><is><t>RequirementText</t></is></c><c r="B1" t="inlineStr"><is><t>class</t></is></c></row>`+
			`<row r="2"><c r="A2" t="inlineStr"><is><t>The system shall log in</t></is></c><c r="B2" t="inlineStr"><is><t>SE</t></is></c></row>`)
	t.Setenv("NFRSCOPE_SHEET_NAME", "reqs")
	outDir := filepath.Join(home, "reports")

	runCmd(t, "analyze", p, "--out-dir", outDir, "--quiet")

	_, err := os.Stat(filepath.Join(outDir, "nfr__sheet-reqs.report.md"))
	require.NoError(t, err)
}

func TestCLI_BinsOutOfRange(t *testing.T) {
	home := isolateHome(t)
	path := writeCSV(t, home, "nfr.csv", 10)
	for _, args := range [][]string{
		{"analyze", path, "--bins", "2000000000"},
		{"lengths", path, "--histogram", "--bins", "501"},
		{"analyze", path, "--bins", "-1"},
	} {
		_, _, err := execute(t, args...)
		var valErr *stats.ValueError
		assert.True(t, errors.As(err, &valErr), "%v: got %v", args, err)
	}
}
