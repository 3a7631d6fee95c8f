package config

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *c != *Default() {
		t.Fatalf("got %+v, want defaults", c)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.yaml")
	c := Default()
	c.DemoCount = 200
	c.ChartsDir = "out/charts"
	if err := Save(c, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.DemoCount != 200 || got.ChartsDir != "out/charts" || got.HistogramBins != 20 {
		t.Fatalf("unexpected config: %+v", got)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GYMBMI_HISTOGRAM_BINS", "35")
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.HistogramBins != 35 {
		t.Fatalf("histogram_bins = %d", c.HistogramBins)
	}
}

func TestInitLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := InitLogger("debug", "json", &buf)
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("hello", "rows", 3)
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("not json: %q", buf.String())
	}
	if rec["msg"] != "hello" || rec["rows"] != float64(3) {
		t.Fatalf("record = %v", rec)
	}

	buf.Reset()
	logger, err = InitLogger("warn", "text", &buf)
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("dropped")
	if strings.Contains(buf.String(), "dropped") {
		t.Fatal("info record should be filtered at warn level")
	}
	if _, err := InitLogger("loud", "text", &buf); err == nil {
		t.Fatal("expected invalid level error")
	}
	if _, err := InitLogger("info", "xml", &buf); err == nil {
		t.Fatal("expected invalid format error")
	}
}
