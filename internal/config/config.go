// Package config loads recognizer settings from a YAML file and CAPTION_*
// environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultAlphabet is the ordered character set the glyph library renders.
const DefaultAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ123456789"

// Config holds all recognizer configuration.
type Config struct {
	Glyphs  GlyphConfig   `yaml:"glyphs"`
	Segment SegmentConfig `yaml:"segment"`
	Layout  LayoutConfig  `yaml:"layout"`
	Resolve ResolveConfig `yaml:"resolve"`

	// DictionaryPath points at a newline-separated word list. Empty means
	// no dictionary; every word falls back to its best guess.
	DictionaryPath string `yaml:"dictionary_path"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// GlyphConfig controls how reference glyphs are produced.
type GlyphConfig struct {
	Alphabet     string `yaml:"alphabet"`
	CanvasWidth  int    `yaml:"canvas_width"`
	CanvasHeight int    `yaml:"canvas_height"`
	FontSize     int    `yaml:"font_size"`

	// FontPath is a TTF/OTF file. Empty selects the embedded Go Bold face.
	FontPath string `yaml:"font_path"`

	// Directory holds pre-rendered <char>.png bitmaps. When set it takes
	// precedence over font rendering.
	Directory string `yaml:"directory"`

	// OffsetY is the vertical draw offset of the glyph's ascent line.
	OffsetY int `yaml:"offset_y"`

	// ReferenceHeight is the box height every template is scaled against.
	// Zero measures it per glyph from the template's ink.
	ReferenceHeight float64 `yaml:"reference_height"`
}

// SegmentConfig controls seed selection and flood fill.
type SegmentConfig struct {
	SeedRowStride int     `yaml:"seed_row_stride"`
	SeedColStride int     `yaml:"seed_col_stride"`
	RegionBudget  int     `yaml:"region_budget"`
	StripFraction float64 `yaml:"strip_fraction"`
}

// LayoutConfig controls line clustering and token insertion.
type LayoutConfig struct {
	LineYTolerance        int     `yaml:"line_y_tolerance_px"`
	SpaceGapRatio         float64 `yaml:"space_gap_ratio"`
	ApostropheHeightRatio float64 `yaml:"apostrophe_height_ratio"`
	PunctHeightRatio      float64 `yaml:"punct_height_ratio"`
}

// ResolveConfig controls dictionary backtracking.
type ResolveConfig struct {
	AcceptScoreThreshold float64 `yaml:"accept_score_threshold"`
	MaxCombinations      int     `yaml:"max_combinations"`
	Simple               bool    `yaml:"simple"`
}

// Default returns the tuned defaults. The height ratios and seed strides are
// heuristics fitted against a small sample of captioned images.
func Default() Config {
	return Config{
		Glyphs: GlyphConfig{
			Alphabet:        DefaultAlphabet,
			CanvasWidth:     100,
			CanvasHeight:    110,
			FontSize:        124,
			OffsetY:         -25,
			ReferenceHeight: 0,
		},
		Segment: SegmentConfig{
			SeedRowStride: 10,
			SeedColStride: 5,
			RegionBudget:  30000,
			StripFraction: 0.25,
		},
		Layout: LayoutConfig{
			LineYTolerance:        5,
			SpaceGapRatio:         0.3,
			ApostropheHeightRatio: 0.5,
			PunctHeightRatio:      0.9,
		},
		Resolve: ResolveConfig{
			AcceptScoreThreshold: 0.8,
			MaxCombinations:      4096,
		},
		LogLevel: "info",
	}
}

// Load reads an optional YAML file over the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	c.Glyphs.Alphabet = getEnvOrDefault("CAPTION_ALPHABET", c.Glyphs.Alphabet)
	c.Glyphs.FontPath = getEnvOrDefault("CAPTION_FONT_PATH", c.Glyphs.FontPath)
	c.Glyphs.Directory = getEnvOrDefault("CAPTION_GLYPH_DIR", c.Glyphs.Directory)
	c.Glyphs.FontSize = getEnvAsIntOrDefault("CAPTION_FONT_SIZE", c.Glyphs.FontSize)
	c.Segment.RegionBudget = getEnvAsIntOrDefault("CAPTION_REGION_BUDGET", c.Segment.RegionBudget)
	c.Segment.SeedRowStride = getEnvAsIntOrDefault("CAPTION_SEED_ROW_STRIDE", c.Segment.SeedRowStride)
	c.Segment.SeedColStride = getEnvAsIntOrDefault("CAPTION_SEED_COL_STRIDE", c.Segment.SeedColStride)
	c.Resolve.AcceptScoreThreshold = getEnvAsFloatOrDefault("CAPTION_ACCEPT_THRESHOLD", c.Resolve.AcceptScoreThreshold)
	c.DictionaryPath = getEnvOrDefault("CAPTION_DICTIONARY", c.DictionaryPath)
	c.LogLevel = getEnvOrDefault("CAPTION_MCP_LOG_LEVEL", c.LogLevel)
}

// Validate checks that every option is usable.
func (c *Config) Validate() error {
	g := c.Glyphs
	if g.Alphabet == "" {
		return fmt.Errorf("glyphs.alphabet must not be empty")
	}
	if g.CanvasWidth <= 0 || g.CanvasHeight <= 0 {
		return fmt.Errorf("glyph canvas must be positive, got %dx%d", g.CanvasWidth, g.CanvasHeight)
	}
	if g.FontSize <= 0 {
		return fmt.Errorf("glyphs.font_size must be positive, got %d", g.FontSize)
	}
	if g.ReferenceHeight < 0 {
		return fmt.Errorf("glyphs.reference_height must not be negative, got %v", g.ReferenceHeight)
	}

	s := c.Segment
	if s.SeedRowStride <= 0 || s.SeedColStride <= 0 {
		return fmt.Errorf("seed strides must be positive, got row=%d col=%d", s.SeedRowStride, s.SeedColStride)
	}
	if s.RegionBudget <= 1 {
		return fmt.Errorf("segment.region_budget must be greater than 1, got %d", s.RegionBudget)
	}
	if s.StripFraction <= 0 || s.StripFraction > 0.5 {
		return fmt.Errorf("segment.strip_fraction must be in (0, 0.5], got %v", s.StripFraction)
	}

	l := c.Layout
	if l.LineYTolerance < 0 {
		return fmt.Errorf("layout.line_y_tolerance_px must not be negative, got %d", l.LineYTolerance)
	}
	for name, v := range map[string]float64{
		"layout.space_gap_ratio":         l.SpaceGapRatio,
		"layout.apostrophe_height_ratio": l.ApostropheHeightRatio,
		"layout.punct_height_ratio":      l.PunctHeightRatio,
	} {
		if v <= 0 || v > 1 {
			return fmt.Errorf("%s must be in (0, 1], got %v", name, v)
		}
	}
	if l.ApostropheHeightRatio > l.PunctHeightRatio {
		return fmt.Errorf("layout.apostrophe_height_ratio (%v) exceeds layout.punct_height_ratio (%v)",
			l.ApostropheHeightRatio, l.PunctHeightRatio)
	}

	r := c.Resolve
	if r.AcceptScoreThreshold < 0 || r.AcceptScoreThreshold > 1 {
		return fmt.Errorf("resolve.accept_score_threshold must be in [0, 1], got %v", r.AcceptScoreThreshold)
	}
	if r.MaxCombinations <= 0 {
		return fmt.Errorf("resolve.max_combinations must be positive, got %d", r.MaxCombinations)
	}

	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}
