package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/csvinsight-cli/internal/utils"
)

const (
	envPrefix = "CSVINSIGHT"
	dirName   = ".csvinsight"
)

// Global configuration structure.
type Global struct {
	DataDir      string `mapstructure:"data_dir" yaml:"data_dir"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat    string `mapstructure:"log_format" yaml:"log_format"`
	OutputFormat string `mapstructure:"output_format" yaml:"output_format"`

	// Persistence limits
	PersistRowCap     int `mapstructure:"persist_row_cap" yaml:"persist_row_cap"`
	PersistSampleRows int `mapstructure:"persist_sample_rows" yaml:"persist_sample_rows"`

	// Chart generation
	HistogramBins int `mapstructure:"histogram_bins" yaml:"histogram_bins"`
	MaxCharts     int `mapstructure:"max_charts" yaml:"max_charts"`
	ScatterCap    int `mapstructure:"scatter_cap" yaml:"scatter_cap"`
	TopCategories int `mapstructure:"top_categories" yaml:"top_categories"`

	BatchWorkers int `mapstructure:"batch_workers" yaml:"batch_workers"`
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.csvinsight/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := defaultDir()
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
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	v.SetDefault("data_dir", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("output_format", "markdown")
	v.SetDefault("persist_row_cap", 2000)
	v.SetDefault("persist_sample_rows", 200)
	v.SetDefault("histogram_bins", 12)
	v.SetDefault("max_charts", 6)
	v.SetDefault("scatter_cap", 2000)
	v.SetDefault("top_categories", 10)
	v.SetDefault("batch_workers", 4)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := defaultDir()
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
	// Resolve data_dir default: ~/.csvinsight/data
	if c.DataDir == "" {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		c.DataDir = filepath.Join(dir, "data")
	}
	dataDir, err := utils.ExpandHome(c.DataDir)
	if err != nil {
		return nil, err
	}
	c.DataDir = dataDir
	return &c, nil
}
