package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/menta2k/image-fitter/internal/utils"
	"github.com/menta2k/image-fitter/pkg/batch"
	"github.com/menta2k/image-fitter/pkg/types"
)

// Config holds the application configuration
type Config struct {
	Target    TargetConfig    `json:"target" yaml:"target"`
	Fill      FillConfig      `json:"fill" yaml:"fill"`
	Output    OutputConfig    `json:"output" yaml:"output"`
	Watermark WatermarkConfig `json:"watermark" yaml:"watermark"`
	Outpaint  OutpaintConfig  `json:"outpaint" yaml:"outpaint"`
	Log       LogConfig       `json:"log" yaml:"log"`
}

// TargetConfig is the canvas every image is fitted to
type TargetConfig struct {
	Width  int `json:"width" yaml:"width" env:"FITTER_TARGET_WIDTH" validate:"gt=0"`
	Height int `json:"height" yaml:"height" env:"FITTER_TARGET_HEIGHT" validate:"gt=0"`
}

// FillConfig selects the fill method
type FillConfig struct {
	Method     string `json:"method" yaml:"method" env:"FITTER_FILL_METHOD" validate:"required"`
	Background string `json:"background" yaml:"background" env:"FITTER_FILL_BACKGROUND"`
	// CropPrimaryAxis has no default; crop requires it
	CropPrimaryAxis string `json:"crop_primary_axis" yaml:"crop_primary_axis" env:"FITTER_FILL_CROP_PRIMARY_AXIS" validate:"omitempty,oneof=width height"`
}

// OutputConfig holds input/output folders and JPEG quality
type OutputConfig struct {
	InputDir string `json:"input_dir" yaml:"input_dir" env:"FITTER_INPUT_DIR"`
	// OutputDir defaults to <input_dir>/processed_<timestamp>
	OutputDir string `json:"output_dir" yaml:"output_dir" env:"FITTER_OUTPUT_DIR"`
	Quality   int    `json:"quality" yaml:"quality" env:"FITTER_QUALITY" validate:"gte=1,lte=12"`
}

// WatermarkConfig holds the optional watermark step
type WatermarkConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled" env:"FITTER_WATERMARK_ENABLED"`
	File      string `json:"file" yaml:"file" env:"FITTER_WATERMARK_FILE" validate:"required_if=Enabled true"`
	Opacity   int    `json:"opacity" yaml:"opacity" env:"FITTER_WATERMARK_OPACITY" validate:"gte=10,lte=100"`
	BlendMode string `json:"blend_mode" yaml:"blend_mode" env:"FITTER_WATERMARK_BLEND_MODE"`
	Sizing    string `json:"sizing" yaml:"sizing" env:"FITTER_WATERMARK_SIZING" validate:"omitempty,oneof=original contain cover"`
}

// OutpaintConfig lists the outpaint methods to try, in order
type OutpaintConfig struct {
	Probes         []string `json:"probes" yaml:"probes" env:"FITTER_OUTPAINT_PROBES" env-separator:"," validate:"dive,oneof=generative blur edge"`
	InpaintURL     string   `json:"inpaint_url" yaml:"inpaint_url" env:"FITTER_INPAINT_URL" validate:"omitempty,url"`
	Prompt         string   `json:"prompt" yaml:"prompt" env:"FITTER_INPAINT_PROMPT"`
	TimeoutSeconds int      `json:"timeout_seconds" yaml:"timeout_seconds" env:"FITTER_INPAINT_TIMEOUT" validate:"gte=0"`
}

// LogConfig controls the logger
type LogConfig struct {
	Level  string `json:"level" yaml:"level" env:"FITTER_LOG_LEVEL" validate:"omitempty,oneof=debug info warn error"`
	Pretty bool   `json:"pretty" yaml:"pretty" env:"FITTER_LOG_PRETTY"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Target: TargetConfig{
			Width:  1600,
			Height: 2400,
		},
		Fill: FillConfig{
			Method:     string(types.FillLetterbox),
			Background: "#FFFFFF",
		},
		Output: OutputConfig{
			Quality: 12,
		},
		Watermark: WatermarkConfig{
			Opacity:   100,
			BlendMode: string(types.BlendNormal),
			Sizing:    string(types.SizingOriginal),
		},
		Outpaint: OutpaintConfig{
			Probes:         []string{"generative", "blur"},
			TimeoutSeconds: 300,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadFromFile loads a JSON or YAML file over the defaults, then applies
// FITTER_* environment overrides
func LoadFromFile(filename string) (*Config, error) {
	cfg := Default()
	if err := cleanenv.ReadConfig(filename, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	return cfg, nil
}

// Load reads filename when it is set and exists, otherwise only the environment
func Load(filename string) (*Config, error) {
	if filename != "" && utils.FileExists(filename) {
		return LoadFromFile(filename)
	}
	cfg := Default()
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return cfg, nil
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

var validate = validator.New()

// Validate normalizes the enumerated fields, checks ranges with struct
// tags, then the cross-field rules
func (c *Config) Validate() error {
	c.normalize()
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param())
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	method, err := types.ParseFillMethod(c.Fill.Method)
	if err != nil {
		return fmt.Errorf("fill.method: %w", err)
	}
	switch method {
	case types.FillLetterbox:
		if !types.IsValidHex(c.Fill.Background) {
			return fmt.Errorf("fill.background %q must be a #RRGGBB hex color", c.Fill.Background)
		}
	case types.FillCrop:
		if c.Fill.CropPrimaryAxis == "" {
			return fmt.Errorf("fill.crop_primary_axis is required for the crop method")
		}
	}
	if _, err := types.ParseBlendMode(c.Watermark.BlendMode); err != nil {
		return fmt.Errorf("watermark.blend_mode: %w", err)
	}
	if len(c.Outpaint.Probes) == 0 && method == types.FillOutpaint {
		return fmt.Errorf("outpaint.probes must list at least one method")
	}
	return nil
}

// normalize lower-cases the fields matched against fixed names so the tag
// checks agree with the types.Parse* functions
func (c *Config) normalize() {
	norm := func(v string) string { return strings.ToLower(strings.TrimSpace(v)) }
	c.Fill.Method = norm(c.Fill.Method)
	c.Fill.CropPrimaryAxis = norm(c.Fill.CropPrimaryAxis)
	c.Watermark.Sizing = norm(c.Watermark.Sizing)
	c.Log.Level = norm(c.Log.Level)
	for i, p := range c.Outpaint.Probes {
		c.Outpaint.Probes[i] = norm(p)
	}
}

// ResolveOutputDir returns output.output_dir, or the per-run folder under
// the input folder when it is empty
func (c *Config) ResolveOutputDir(now time.Time) string {
	if c.Output.OutputDir != "" {
		return c.Output.OutputDir
	}
	return utils.OutputFolder(c.Output.InputDir, now)
}

// Job converts a validated configuration into a batch job for files
func (c *Config) Job(files []string, now time.Time) (batch.Job, error) {
	method, err := types.ParseFillMethod(c.Fill.Method)
	if err != nil {
		return batch.Job{}, err
	}
	job := batch.Job{
		InputFiles:   files,
		OutputFolder: c.ResolveOutputDir(now),
		Quality:      c.Output.Quality,
		Target:       types.Dimensions{Width: c.Target.Width, Height: c.Target.Height},
		Method:       method,
		Background:   strings.ToUpper(c.Fill.Background),
	}
	if method == types.FillCrop {
		if job.PrimaryAxis, err = types.ParseAxis(c.Fill.CropPrimaryAxis); err != nil {
			return batch.Job{}, err
		}
	}
	if c.Watermark.Enabled {
		mode, err := types.ParseBlendMode(c.Watermark.BlendMode)
		if err != nil {
			return batch.Job{}, err
		}
		sizing, err := types.ParseSizingMode(c.Watermark.Sizing)
		if err != nil {
			return batch.Job{}, err
		}
		job.Watermark = &types.WatermarkSettings{
			Enabled:   true,
			Source:    c.Watermark.File,
			Opacity:   c.Watermark.Opacity,
			BlendMode: mode,
			Sizing:    sizing,
		}
	}
	return job, nil
}

// InpaintTimeout is the generative probe's request timeout
func (c *Config) InpaintTimeout() time.Duration {
	return time.Duration(c.Outpaint.TimeoutSeconds) * time.Second
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "image-fitter", "config.json")
}
