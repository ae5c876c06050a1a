package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/spf13/cobra"

	"github.com/ironsheep/caption-ocr-mcp/internal/imaging"
	"github.com/ironsheep/caption-ocr-mcp/internal/logging"
	"github.com/ironsheep/caption-ocr-mcp/internal/ocr"
)

var (
	dumpDir    string
	jsonOutput bool
	simple     bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <image>...",
	Short: "Print the caption of each image",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runExtract,
}

func init() {
	RootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVar(&dumpDir, "dump-dir", "", "write threshold and annotated PNGs here")
	extractCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the full result as JSON")
	extractCmd.Flags().BoolVar(&simple, "simple", false, "skip dictionary correction")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logging.New("extract", cfg.LogLevel)

	rec, words, err := buildRecognizer(cfg, log)
	if err != nil {
		return err
	}
	if simple {
		rec = rec.WithSimple(true)
	}

	cache := imaging.NewImageCache()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	out := cmd.OutOrStdout()
	for _, path := range args {
		buf, err := cache.LoadBuffer(path)
		if err != nil {
			return ocr.NewResourceError(path, err)
		}

		an, err := rec.Analyze(ctx, buf)
		if err != nil {
			return err
		}
		res := rec.Resolve(an, words)

		if dumpDir != "" {
			if err := dump(cache, path, an); err != nil {
				log.Warn("failed to write debug images", "path", path, "error", err)
			}
		}

		if jsonOutput {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return err
			}
			continue
		}
		if len(args) > 1 {
			fmt.Fprintf(out, "==> %s <==\n", path)
		}
		fmt.Fprintln(out, res.Caption)
	}
	return nil
}

// dump writes <name>.threshold.png and <name>.boxes.png into dumpDir.
func dump(cache *imaging.ImageCache, path string, an *ocr.Analysis) error {
	if err := os.MkdirAll(dumpDir, 0o755); err != nil {
		return err
	}
	base := filepath.Join(dumpDir, stem(path))

	if an.Threshold != nil {
		if err := imgio.Save(base+".threshold.png", an.Threshold.Image(), imgio.PNGEncoder()); err != nil {
			return err
		}
	}

	img, err := cache.Load(path)
	if err != nil {
		return err
	}
	boxes := imaging.DrawBoxes(img, an.Annotations(), "#FF0000")
	return imgio.Save(base+".boxes.png", boxes, imgio.PNGEncoder())
}

func stem(path string) string {
	name := filepath.Base(path)
	return name[:len(name)-len(filepath.Ext(name))]
}
