package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "tablenorm/internal/errors"
)

// Config represents the complete configuration of a tablenorm run
type Config struct {
	Input     InputConfig     `yaml:"input" envconfig:"INPUT"`
	Output    OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Cleaning  CleaningConfig  `yaml:"cleaning" envconfig:"CLEANING"`
	Workers   int             `yaml:"workers" envconfig:"WORKERS" validate:"min=1,max=64"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// InputConfig describes where the raw table comes from
type InputConfig struct {
	File      string `yaml:"file" envconfig:"FILE"`
	Dir       string `yaml:"dir" envconfig:"DIR"`
	Delimiter string `yaml:"delimiter" envconfig:"DELIMITER" validate:"omitempty,delimiter"`
	Encoding  string `yaml:"encoding" envconfig:"ENCODING" validate:"omitempty,oneof=utf-8 utf8 latin1 latin-1 iso-8859-1 windows-1252 cp1252"`
	Sheet     string `yaml:"sheet" envconfig:"SHEET"`
}

// OutputConfig describes where the cleaned table goes
type OutputConfig struct {
	File        string `yaml:"file" envconfig:"FILE"`
	Dir         string `yaml:"dir" envconfig:"DIR"`
	BOM         bool   `yaml:"bom" envconfig:"BOM"`
	Delimiter   string `yaml:"delimiter" envconfig:"DELIMITER" validate:"omitempty,delimiter"`
	SQLiteTable string `yaml:"sqlite_table" envconfig:"SQLITE_TABLE" validate:"required,identifier"`
	Sheet       string `yaml:"sheet" envconfig:"SHEET" validate:"required,max=31"`
}

// CleaningConfig controls the normalization pipeline
type CleaningConfig struct {
	Fill           string            `yaml:"fill" envconfig:"FILL" validate:"oneof=none constant mean median"`
	FillValue      float64           `yaml:"fill_value" envconfig:"FILL_VALUE" validate:"finite"`
	Case           string            `yaml:"case" envconfig:"CASE" validate:"oneof=title lower upper none"`
	DateOrder      string            `yaml:"date_order" envconfig:"DATE_ORDER" validate:"oneof=DMY MDY"`
	PreferredOrder []string          `yaml:"preferred_order" envconfig:"PREFERRED_ORDER"`
	Synonyms       map[string]string `yaml:"synonyms" envconfig:"SYNONYMS"`
	// Rules replace the built-in employee rules when non-empty. They can only
	// be set from a file.
	Rules []RuleConfig `yaml:"rules" ignored:"true" validate:"dive"`
}

// RuleConfig is the file representation of one column rule
type RuleConfig struct {
	Column    string  `yaml:"column" validate:"required"`
	Type      string  `yaml:"type" validate:"required,oneof=string integer number date"`
	Case      string  `yaml:"case" validate:"omitempty,oneof=title lower upper none"`
	Fill      string  `yaml:"fill" validate:"omitempty,oneof=none constant mean median"`
	FillValue float64 `yaml:"fill_value" validate:"finite"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format      string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output      string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// TelemetryConfig enables the trace and metrics files. Empty paths disable
// the corresponding exporter.
type TelemetryConfig struct {
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	TraceFile   string `yaml:"trace_file" envconfig:"TRACE_FILE"`
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Load builds the configuration from defaults, the optional YAML file at path
// (or the first default location that exists when path is empty) and
// TABLENORM_* environment variables, in increasing order of precedence.
// The result is not validated so that command line flags can still be applied;
// call Validate once they are.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, apperrors.NewConfigError(fmt.Sprintf("config file %s not readable", path), err)
	}

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, apperrors.NewConfigError(fmt.Sprintf("failed to load config from %s", path), err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML document at filePath onto cfg. Keys missing
// from the document keep their current values.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(data, cfg)
}

func findConfigFile() string {
	for _, candidate := range DefaultConfigFiles {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// Validate checks every field against its constraints and returns a
// validation error listing the offending fields.
func (c *Config) Validate() error {
	err := newValidator().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewConfigError("config validation failed", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return apperrors.NewValidationError("invalid configuration: " + strings.Join(msgs, "; "))
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("delimiter", isDelimiter)
	v.RegisterValidation("identifier", isIdentifier)
	v.RegisterValidation("finite", isFinite)
	return v
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required", "required_unless":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fmt.Sprint(fe.Value()))
	case "min", "max":
		return fmt.Sprintf("%s must satisfy %s=%s, got %v", field, fe.Tag(), fe.Param(), fe.Value())
	case "delimiter":
		return fmt.Sprintf("%s must be a single character or \"tab\", got %q", field, fmt.Sprint(fe.Value()))
	case "finite":
		return fmt.Sprintf("%s must be a finite number, got %v", field, fe.Value())
	case "identifier":
		return fmt.Sprintf("%s must be a letter or underscore followed by letters, digits or underscores, got %q", field, fmt.Sprint(fe.Value()))
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

func isDelimiter(fl validator.FieldLevel) bool {
	_, err := ParseDelimiter(fl.Field().String())
	return err == nil
}

func isFinite(fl validator.FieldLevel) bool {
	f := fl.Field().Float()
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func isIdentifier(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// ParseDelimiter converts a configured delimiter to a rune. The empty string
// yields 0, meaning the format's own separator. "tab" and "\t" both mean a
// tab character.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case "tab", `\t`, "\t":
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}
	return r, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			SQLiteTable: DefaultSQLiteTable,
			Sheet:       DefaultSheet,
		},
		Cleaning: CleaningConfig{
			Fill:      "median",
			Case:      "title",
			DateOrder: "DMY",
		},
		Workers: DefaultWorkers,
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: DefaultLogFile,
		},
		Telemetry: TelemetryConfig{
			ServiceName: AppName,
		},
	}
}
