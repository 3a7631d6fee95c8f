package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags clears values and Changed state that persist across invocations.
func resetFlags(c *cobra.Command) {
	c.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	cfg = nil
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\n%s", args, err, out)
	}
	return out
}

// isolate points HOME at a temp dir so no user config is read.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestCLI_Calc(t *testing.T) {
	isolate(t)
	out := runCmd(t, "calc", "--height", "1,60", "--weight", "120")
	if !strings.Contains(out, "46.88") || !strings.Contains(out, "Obesity III") {
		t.Fatalf("unexpected calc output: %q", out)
	}

	out = runCmd(t, "calc", "--height", "1.70", "--weight", "70", "--sex", "f", "--json")
	var p map[string]any
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		t.Fatalf("calc --json: %v\n%s", err, out)
	}
	if p["bmi"] != 24.22 || p["sex"] != "Female" {
		t.Fatalf("unexpected record: %v", p)
	}

	if _, err := execCmd(t, "calc", "--height", "2.8", "--weight", "70"); err == nil {
		t.Fatalf("expected out-of-range height to fail")
	}
	if _, err := execCmd(t, "calc", "--height", "abc", "--weight", "70"); err == nil {
		t.Fatalf("expected non-numeric height to fail")
	}
}

func TestCLI_GenerateIsReproducible(t *testing.T) {
	home := isolate(t)
	a := filepath.Join(home, "a.csv")
	b := filepath.Join(home, "b.csv")
	runCmd(t, "generate", "-n", "12", "--seed", "7", "-o", a)
	runCmd(t, "generate", "-n", "12", "--seed", "7", "-o", b)

	ba, err := os.ReadFile(a)
	if err != nil {
		t.Fatalf("read a: %v", err)
	}
	bb, err := os.ReadFile(b)
	if err != nil {
		t.Fatalf("read b: %v", err)
	}
	if !bytes.Equal(ba, bb) {
		t.Fatalf("same seed produced different data")
	}
	lines := strings.Split(strings.TrimSpace(string(ba)), "\n")
	if len(lines) != 13 {
		t.Fatalf("expected header + 12 rows, got %d lines", len(lines))
	}
	if lines[0] != "name,sex,age,height_m,weight_kg,race_or_ethnicity,bmi,category" {
		t.Fatalf("unexpected header: %s", lines[0])
	}

	out := runCmd(t, "generate", "-n", "3")
	if got := len(strings.Split(strings.TrimSpace(out), "\n")); got != 4 {
		t.Fatalf("expected 4 lines on stdout, got %d", got)
	}
}

func TestCLI_ProcessAvoidsOverwrite(t *testing.T) {
	home := isolate(t)
	d1 := filepath.Join(home, "d1")
	d2 := filepath.Join(home, "d2")
	for _, d := range []string{d1, d2} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	csv := "name,height_m,weight_kg,notes\nAna,1.70,70,front desk\nBo,1.60,120,\nCy,,80,no height\n"
	if err := os.WriteFile(filepath.Join(d1, "members.csv"), []byte(csv), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(d2, "members.csv"), []byte(strings.ReplaceAll(csv, ",", ";")), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	outDir := filepath.Join(home, "out")
	runCmd(t, "process", filepath.Join(home, "d*", "members.csv"), "--out-dir", outDir, "--quiet")

	first, err := os.ReadFile(filepath.Join(outDir, "members.bmi.csv"))
	if err != nil {
		t.Fatalf("missing first output: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "members__2.bmi.csv")); err != nil {
		t.Fatalf("missing second output: %v", err)
	}
	want := "name,height_m,weight_kg,notes,bmi,category\n" +
		"Ana,1.7,70,front desk,24.22,Normal weight\n" +
		"Bo,1.6,120,,46.88,Obesity III\n" +
		"Cy,,80,no height,,—\n"
	if string(first) != want {
		t.Fatalf("unexpected output:\n%s", first)
	}
}

func TestCLI_ProcessRejectsMissingColumns(t *testing.T) {
	home := isolate(t)
	p := filepath.Join(home, "bad.csv")
	if err := os.WriteFile(p, []byte("name,weight_kg\nAna,70\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := execCmd(t, "process", p)
	if err == nil || !strings.Contains(err.Error(), "height_m") {
		t.Fatalf("expected missing height_m error, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, "bad.bmi.csv")); !os.IsNotExist(err) {
		t.Fatalf("no output should be written for an invalid table")
	}
}

func TestCLI_DashboardJSONAndCharts(t *testing.T) {
	home := isolate(t)
	chartsDir := filepath.Join(home, "charts")
	out := runCmd(t, "dashboard", "--generate", "--format", "json", "--charts", "--charts-dir", chartsDir)

	start := strings.Index(out, "{")
	end := strings.LastIndex(out, "}")
	if start < 0 || end < start {
		t.Fatalf("no JSON in output: %s", out)
	}
	var d map[string]any
	if err := json.Unmarshal([]byte(out[start:end+1]), &d); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}
	if d["source"] != "synthetic" || d["total"] != float64(30) {
		t.Fatalf("unexpected dashboard header: source=%v total=%v", d["source"], d["total"])
	}
	for _, k := range []string{"histogram", "categories", "race", "scatter", "boxplot"} {
		if _, err := os.Stat(filepath.Join(chartsDir, k+".png")); err != nil {
			t.Fatalf("missing chart %s: %v", k, err)
		}
	}
}

func TestCLI_DashboardFiltersFile(t *testing.T) {
	home := isolate(t)
	p := filepath.Join(home, "members.csv")
	csv := "name,sex,age,height_m,weight_kg\nAna,F,30,1.70,70\nBo,M,40,1.80,100\nCy,F,70,1.60,50\n"
	if err := os.WriteFile(p, []byte(csv), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	reportPath := filepath.Join(home, "report.md")
	runCmd(t, "dashboard", p, "--sex", "female", "--age-max", "60", "-o", reportPath)
	b, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	md := string(b)
	if !strings.Contains(md, "[KPIS]") || !strings.Contains(md, "24.22") {
		t.Fatalf("unexpected report:\n%s", md)
	}

	out := runCmd(t, "dashboard", p, "--category", "Obesity III")
	if !strings.Contains(out, "No data after filters.") {
		t.Fatalf("expected empty dashboard, got:\n%s", out)
	}

	if _, err := execCmd(t, "dashboard", p, "--age-min", "50", "--age-max", "10"); err == nil {
		t.Fatalf("expected inverted age range to fail")
	}
	if _, err := execCmd(t, "dashboard"); err == nil {
		t.Fatalf("expected an error without input")
	}
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "config.yaml")
	runCmd(t, "config", "set", "histogram_bins", "12", "--config", path)
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(b), "histogram_bins: 12") {
		t.Fatalf("config not saved:\n%s", b)
	}
	if _, err := execCmd(t, "config", "set", "histogram_bins", "99", "--config", path); err == nil {
		t.Fatalf("expected out-of-range bins to fail")
	}
	if _, err := execCmd(t, "config", "set", "nope", "1", "--config", path); err == nil {
		t.Fatalf("expected unknown key to fail")
	}
	out := runCmd(t, "config", "show")
	if !strings.Contains(out, "server_addr: 127.0.0.1:8080") {
		t.Fatalf("unexpected config show output:\n%s", out)
	}
}
