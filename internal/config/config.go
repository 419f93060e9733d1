package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"energyreport/internal/apperr"
)

// EnvPrefix is the prefix of every environment override, e.g. REPORT_OUTPUT.
const EnvPrefix = "REPORT"

// ImageFormats lists the output extensions the assembler can encode.
var ImageFormats = []string{"png", "jpg", "jpeg", "tif", "tiff", "svg", "pdf", "eps"}

// Config represents the complete report configuration
type Config struct {
	Input          string        `yaml:"input" envconfig:"INPUT" validate:"required"`
	Sheet          string        `yaml:"sheet" envconfig:"SHEET"`
	Output         string        `yaml:"output" envconfig:"OUTPUT" validate:"required,imageformat"`
	Workbook       string        `yaml:"workbook" envconfig:"WORKBOOK"`
	Markdown       string        `yaml:"markdown" envconfig:"MARKDOWN"`
	PanelsDir      string        `yaml:"panels_dir" envconfig:"PANELS_DIR"`
	Countries      []string      `yaml:"countries" envconfig:"COUNTRIES" validate:"required,min=1,dive,required"`
	MilestoneYears []int         `yaml:"milestone_years" envconfig:"MILESTONE_YEARS" validate:"required,min=1"`
	FocusYear      int           `yaml:"focus_year" envconfig:"FOCUS_YEAR" validate:"required"`
	Explode        ExplodeConfig `yaml:"explode" envconfig:"EXPLODE"`
	Charts         ChartsConfig  `yaml:"charts" envconfig:"CHARTS"`
	Report         ReportConfig  `yaml:"report" envconfig:"REPORT"`
	Logging        LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
}

// ExplodeConfig selects the pie wedge pulled away from the others
type ExplodeConfig struct {
	Country string  `yaml:"country" envconfig:"COUNTRY"`
	Offset  float64 `yaml:"offset" envconfig:"OFFSET" validate:"gte=0,lte=1"`
}

// ChartsConfig holds one panel per quadrant of the report
type ChartsConfig struct {
	Bar  PanelConfig `yaml:"bar" envconfig:"BAR"`
	Pie  PanelConfig `yaml:"pie" envconfig:"PIE"`
	Line PanelConfig `yaml:"line" envconfig:"LINE"`
	HBar PanelConfig `yaml:"hbar" envconfig:"HBAR"`
}

// PanelConfig names the indicator a panel draws and its labels.
// Title and labels may contain {year}, replaced by the focus year.
type PanelConfig struct {
	Indicator string `yaml:"indicator" envconfig:"INDICATOR" validate:"required"`
	Title     string `yaml:"title" envconfig:"TITLE"`
	XLabel    string `yaml:"x_label" envconfig:"X_LABEL"`
	YLabel    string `yaml:"y_label" envconfig:"Y_LABEL"`
}

// ReportConfig contains the composite figure text and size
type ReportConfig struct {
	Title      string  `yaml:"title" envconfig:"TITLE" validate:"required"`
	Commentary string  `yaml:"commentary" envconfig:"COMMENTARY"`
	Author     string  `yaml:"author" envconfig:"AUTHOR"`
	StudentID  string  `yaml:"student_id" envconfig:"STUDENT_ID"`
	Width      float64 `yaml:"width" envconfig:"WIDTH" validate:"gt=0"`
	Height     float64 `yaml:"height" envconfig:"HEIGHT" validate:"gt=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" envconfig:"FORMAT" validate:"oneof=text json"`
}

// Load builds the configuration from defaults, the optional YAML file at path
// and REPORT_* environment variables, in that order, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperr.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return apperr.NewConfigError("failed to read config file", err).WithContext("path", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return apperr.NewConfigError("failed to parse config file", err).WithContext("path", path)
	}
	return nil
}

// Validate checks struct tags and cross-field rules
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.RegisterValidation("imageformat", validateImageFormat); err != nil {
		return apperr.NewConfigError("failed to register validation", err)
	}
	if err := v.Struct(c); err != nil {
		return apperr.NewConfigError("config validation failed", err)
	}

	if c.Explode.Country != "" && !contains(c.Countries, c.Explode.Country) {
		return apperr.NewConfigError(
			fmt.Sprintf("exploded country %q is not in the country list", c.Explode.Country), nil)
	}
	return nil
}

// OutputFormat returns the image format implied by the output extension
func (c *Config) OutputFormat() string {
	return formatOf(c.Output)
}

// Resolve replaces the {year} placeholder in every text field of the panel
func (p PanelConfig) Resolve(year int) PanelConfig {
	y := strconv.Itoa(year)
	p.Title = strings.ReplaceAll(p.Title, "{year}", y)
	p.XLabel = strings.ReplaceAll(p.XLabel, "{year}", y)
	p.YLabel = strings.ReplaceAll(p.YLabel, "{year}", y)
	return p
}

func validateImageFormat(fl validator.FieldLevel) bool {
	return contains(ImageFormats, formatOf(fl.Field().String()))
}

func formatOf(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
