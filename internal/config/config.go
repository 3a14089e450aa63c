package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/menta2k/mask-evaluator/internal/utils"
)

// Environment variables that override file and default settings
const (
	EnvPredDir    = "MASK_IOU_PRED_DIR"
	EnvTruthDir   = "MASK_IOU_TRUTH_DIR"
	EnvOutputFile = "MASK_IOU_OUTPUT"
	EnvCSVFile    = "MASK_IOU_CSV"
	EnvExtensions = "MASK_IOU_EXTENSIONS"
)

// Config holds the application configuration
type Config struct {
	Evaluation EvaluationConfig `json:"evaluation"`
	Output     OutputConfig     `json:"output"`
}

// EvaluationConfig holds the input side of an evaluation run
type EvaluationConfig struct {
	PredDir    string   `json:"pred_dir"`
	TruthDir   string   `json:"truth_dir"`
	Extensions []string `json:"extensions"`
	AutoOrient bool     `json:"auto_orient"`
}

// OutputConfig holds configuration for report generation
type OutputConfig struct {
	ReportFile string `json:"report_file"`
	CSVFile    string `json:"csv_file"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Evaluation: EvaluationConfig{
			PredDir:    "predictions",
			TruthDir:   "ground_truth",
			Extensions: append([]string(nil), utils.DefaultMaskExtensions...),
		},
		Output: OutputConfig{
			ReportFile: "./iou_results.txt",
		},
	}
}

// LoadFromFile loads configuration from a JSON file. Fields absent from the
// file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Resolve loads the config file at path. With an empty path it falls back to
// GetConfigPath when that file exists, and to Default otherwise. The second
// return value is the file that was loaded, or "" for defaults.
func Resolve(path string) (*Config, string, error) {
	if path == "" {
		path = GetConfigPath()
		if !utils.FileExists(path) {
			return Default(), "", nil
		}
	}

	config, err := LoadFromFile(path)
	if err != nil {
		return nil, "", err
	}
	return config, path, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	if err := utils.EnsureDir(filepath.Dir(filename)); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv loads a .env file when one is present and overrides settings
// from the MASK_IOU_* environment variables.
func (c *Config) ApplyEnv(envFiles ...string) {
	// Missing .env files are fine
	_ = godotenv.Load(envFiles...)

	if v := os.Getenv(EnvPredDir); v != "" {
		c.Evaluation.PredDir = v
	}
	if v := os.Getenv(EnvTruthDir); v != "" {
		c.Evaluation.TruthDir = v
	}
	if v := os.Getenv(EnvOutputFile); v != "" {
		c.Output.ReportFile = v
	}
	if v := os.Getenv(EnvCSVFile); v != "" {
		c.Output.CSVFile = v
	}
	if exts := utils.SplitList(os.Getenv(EnvExtensions)); len(exts) > 0 {
		c.Evaluation.Extensions = exts
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Evaluation.PredDir == "" {
		return fmt.Errorf("evaluation.pred_dir cannot be empty")
	}

	if c.Evaluation.TruthDir == "" {
		return fmt.Errorf("evaluation.truth_dir cannot be empty")
	}

	if !utils.DirExists(c.Evaluation.PredDir) {
		return fmt.Errorf("evaluation.pred_dir %q is not a directory", c.Evaluation.PredDir)
	}

	if !utils.DirExists(c.Evaluation.TruthDir) {
		return fmt.Errorf("evaluation.truth_dir %q is not a directory", c.Evaluation.TruthDir)
	}

	if len(utils.NormalizeExtensions(c.Evaluation.Extensions)) == 0 {
		return fmt.Errorf("evaluation.extensions cannot be empty")
	}

	if c.Output.ReportFile == "" {
		return fmt.Errorf("output.report_file cannot be empty")
	}

	if c.Output.CSVFile != "" && c.Output.CSVFile == c.Output.ReportFile {
		return fmt.Errorf("output.csv_file must differ from output.report_file")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "mask-evaluator", "config.json")
}
