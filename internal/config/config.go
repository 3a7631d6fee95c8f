package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Demo data
	DemoCount int   `mapstructure:"demo_count" yaml:"demo_count"`
	DemoSeed  int64 `mapstructure:"demo_seed" yaml:"demo_seed"`

	// Dashboard defaults
	HistogramBins int `mapstructure:"histogram_bins" yaml:"histogram_bins"`
	AgeMin        int `mapstructure:"age_min" yaml:"age_min"`
	AgeMax        int `mapstructure:"age_max" yaml:"age_max"`

	// Chart output
	ChartsDir   string `mapstructure:"charts_dir" yaml:"charts_dir"`
	ChartWidth  int    `mapstructure:"chart_width" yaml:"chart_width"`
	ChartHeight int    `mapstructure:"chart_height" yaml:"chart_height"`

	ServerAddr string `mapstructure:"server_addr" yaml:"server_addr"`
	ExportDir  string `mapstructure:"export_dir" yaml:"export_dir"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Default returns the built-in configuration.
func Default() *Global {
	return &Global{
		DemoCount:     30,
		DemoSeed:      42,
		HistogramBins: 20,
		AgeMin:        0,
		AgeMax:        100,
		ChartsDir:     "charts",
		ChartWidth:    800,
		ChartHeight:   400,
		ServerAddr:    "127.0.0.1:8080",
		ExportDir:     ".",
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// Dir returns ~/.gymbmi.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".gymbmi"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.gymbmi/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("GYMBMI")
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("demo_count", d.DemoCount)
	v.SetDefault("demo_seed", d.DemoSeed)
	v.SetDefault("histogram_bins", d.HistogramBins)
	v.SetDefault("age_min", d.AgeMin)
	v.SetDefault("age_max", d.AgeMax)
	v.SetDefault("charts_dir", d.ChartsDir)
	v.SetDefault("chart_width", d.ChartWidth)
	v.SetDefault("chart_height", d.ChartHeight)
	v.SetDefault("server_addr", d.ServerAddr)
	v.SetDefault("export_dir", d.ExportDir)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
