package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ironsheep/caption-ocr-mcp/internal/config"
	"github.com/ironsheep/caption-ocr-mcp/internal/dictionary"
	"github.com/ironsheep/caption-ocr-mcp/internal/logging"
	"github.com/ironsheep/caption-ocr-mcp/internal/ocr"
)

var (
	configPath string
	envFile    string
	logLevel   string
	dictPath   string
)

// RootCmd serves MCP over stdio when run without a subcommand.
var RootCmd = &cobra.Command{
	Use:   "caption-mcp",
	Short: "Meme caption OCR over MCP",
	Long: `caption-mcp reads the white block captions at the top and bottom of meme
images by matching rendered glyph templates and correcting words against a
dictionary. Without a subcommand it serves MCP over stdin/stdout.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	RootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config (missing file is ignored)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides config)")
	RootCmd.PersistentFlags().StringVar(&dictPath, "dictionary", "", "word list, one word per line (overrides config)")
}

// loadConfig applies the dotenv file, the config file and the flag
// overrides, in that order.
func loadConfig() (*config.Config, error) {
	if envFile != "" {
		// a missing .env is normal outside development
		_ = godotenv.Load(envFile)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if dictPath != "" {
		cfg.DictionaryPath = dictPath
	}
	return cfg, nil
}

// buildRecognizer loads the glyph library and the optional dictionary.
func buildRecognizer(cfg *config.Config, log *logging.Logger) (*ocr.Recognizer, ocr.WordSet, error) {
	lib, err := ocr.LoadLibrary(cfg.Glyphs)
	if err != nil {
		return nil, nil, err
	}
	rec := ocr.NewRecognizer(lib, *cfg, log)

	if cfg.DictionaryPath == "" {
		return rec, nil, nil
	}
	d, err := dictionary.Load(cfg.DictionaryPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load dictionary: %w", err)
	}
	log.Debug("dictionary loaded", "words", d.Len())
	return rec, d, nil
}
