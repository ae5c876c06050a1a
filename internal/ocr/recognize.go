package ocr

import (
	"context"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/caption-ocr-mcp/internal/config"
	"github.com/ironsheep/caption-ocr-mcp/internal/detection"
	"github.com/ironsheep/caption-ocr-mcp/internal/imaging"
	"github.com/ironsheep/caption-ocr-mcp/internal/logging"
)

// Recognizer runs the caption pipeline: threshold, segment, match, lay out
// and resolve. It holds no per-image state and is safe for concurrent use.
type Recognizer struct {
	lib     *Library
	matcher *Matcher
	cfg     config.Config
	log     *logging.Logger
}

// NewRecognizer creates a recognizer over lib. A nil logger discards output.
func NewRecognizer(lib *Library, cfg config.Config, log *logging.Logger) *Recognizer {
	if log == nil {
		log = logging.Discard()
	}
	return &Recognizer{
		lib:     lib,
		matcher: NewMatcher(lib, cfg.Glyphs.ReferenceHeight),
		cfg:     cfg,
		log:     log,
	}
}

// WithSimple returns a recognizer sharing r's templates whose resolver skips
// the dictionary search and keeps every best guess.
func (r *Recognizer) WithSimple(simple bool) *Recognizer {
	c := *r
	c.cfg.Resolve.Simple = simple
	return &c
}

// Library returns the glyph templates in use.
func (r *Recognizer) Library() *Library { return r.lib }

// Analysis is everything the pipeline knows about an image before words are
// resolved.
type Analysis struct {
	RunID        string
	Threshold    *imaging.PixelBuffer
	Segmentation *detection.Segmentation
	Boxes        []detection.Bounds
	Candidates   []CandidateList
	Lines        []detection.Line

	// Degenerate is set when no pixel survived thresholding.
	Degenerate bool
}

// RegionResult summarizes one finalized region.
type RegionResult struct {
	ID         int              `json:"id"`
	Bounds     detection.Bounds `json:"bounds"`
	Pixels     int              `json:"pixels"`
	Candidates CandidateList    `json:"candidates"`
}

// Regions lists each finalized region with its leading candidates.
func (a *Analysis) Regions(topN int) []RegionResult {
	out := make([]RegionResult, len(a.Segmentation.Regions))
	for i, reg := range a.Segmentation.Regions {
		out[i] = RegionResult{
			ID:         reg.ID,
			Bounds:     reg.Bounds,
			Pixels:     reg.Size(),
			Candidates: a.Candidates[i].Top(topN),
		}
	}
	return out
}

// Annotations returns one labelled box per finalized region.
func (a *Analysis) Annotations() []imaging.Box {
	boxes := make([]imaging.Box, len(a.Boxes))
	for i, b := range a.Boxes {
		boxes[i] = imaging.Box{X1: b.X1, Y1: b.Y1, X2: b.X2, Y2: b.Y2}
		if ch := a.Candidates[i].Best(); ch != 0 {
			boxes[i].Label = string(ch)
		}
	}
	return boxes
}

// LineText renders each line with the best guess for every region, before
// any dictionary correction.
func (a *Analysis) LineText() []string {
	out := make([]string, len(a.Lines))
	for i, l := range a.Lines {
		var sb strings.Builder
		for _, tok := range l.Tokens {
			ch := tok.Sentinel()
			if tok.Kind == detection.TokenRegion {
				ch = a.Candidates[tok.Region].Best()
			}
			if ch != 0 {
				sb.WriteRune(ch)
			}
		}
		out[i] = sb.String()
	}
	return out
}

// Result is the outcome of one recognition run.
type Result struct {
	RunID      string         `json:"run_id"`
	Caption    string         `json:"caption"`
	Raw        string         `json:"raw"`
	Regions    []RegionResult `json:"regions"`
	Rejected   int            `json:"rejected"`
	Noise      int            `json:"noise"`
	Degenerate bool           `json:"degenerate"`
	Quality    float64        `json:"quality"`
	Stats      ResolveStats   `json:"stats"`
	DurationMs int64          `json:"duration_ms"`
}

// Analyze thresholds src and finds, matches and lays out its regions.
func (r *Recognizer) Analyze(ctx context.Context, src *imaging.PixelBuffer) (*Analysis, error) {
	a := &Analysis{RunID: uuid.NewString()}
	log := r.log.With("run_id", a.RunID)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("recognition cancelled: %w", err)
	}

	a.Threshold = imaging.Threshold(src)
	if a.Threshold.InkCount() == 0 {
		a.Degenerate = true
		a.Segmentation = &detection.Segmentation{Width: src.Width(), Height: src.Height()}
		log.Debug("empty threshold", "error", NewDegenerateInputError(a.RunID, src.Width(), src.Height()))
		return a, nil
	}

	seg := r.cfg.Segment
	a.Segmentation = detection.Segment(a.Threshold, detection.SegmentOptions{
		RowStride:     seg.SeedRowStride,
		ColStride:     seg.SeedColStride,
		Budget:        seg.RegionBudget,
		StripFraction: seg.StripFraction,
	})
	if log.DebugEnabled() {
		for _, rej := range a.Segmentation.Rejected {
			log.Debug("region discarded", "error", NewBudgetExceededError(a.RunID, rej.Size(), seg.RegionBudget))
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("recognition cancelled: %w", err)
	}

	a.Boxes = make([]detection.Bounds, len(a.Segmentation.Regions))
	for i, reg := range a.Segmentation.Regions {
		a.Boxes[i] = reg.Bounds
	}
	a.Candidates = r.matcher.MatchAll(a.Threshold, a.Boxes)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("recognition cancelled: %w", err)
	}

	best := make([]rune, len(a.Candidates))
	for i, c := range a.Candidates {
		best[i] = c.Best()
	}
	lay := r.cfg.Layout
	a.Lines = detection.Assemble(a.Boxes, best, detection.LayoutOptions{
		YTolerance:      lay.LineYTolerance,
		SpaceGapRatio:   lay.SpaceGapRatio,
		ApostropheRatio: lay.ApostropheHeightRatio,
		PunctRatio:      lay.PunctHeightRatio,
	})

	log.Debug("analysis complete",
		"regions", len(a.Segmentation.Regions),
		"rejected", len(a.Segmentation.Rejected),
		"noise", a.Segmentation.Noise,
		"lines", len(a.Lines))
	return a, nil
}

// Recognize extracts the caption from img. words may be nil, in which case
// every word keeps its best guess. Only resource and context errors are
// returned; an image without ink yields an empty caption.
func (r *Recognizer) Recognize(ctx context.Context, img image.Image, words WordSet) (*Result, error) {
	return r.RecognizeBuffer(ctx, imaging.FromImage(img), words)
}

// RecognizeBuffer is Recognize over an already decoded buffer.
func (r *Recognizer) RecognizeBuffer(ctx context.Context, src *imaging.PixelBuffer, words WordSet) (*Result, error) {
	start := time.Now()

	a, err := r.Analyze(ctx, src)
	if err != nil {
		return nil, err
	}
	res := r.Resolve(a, words)
	res.DurationMs = time.Since(start).Milliseconds()

	r.log.Debug("caption resolved",
		"run_id", res.RunID,
		"caption", res.Caption,
		"words", res.Stats.Words,
		"corrected", res.Stats.Corrected,
		"duration_ms", res.DurationMs)
	return res, nil
}

// Resolve turns an analysis into caption text.
func (r *Recognizer) Resolve(a *Analysis, words WordSet) *Result {
	res := &Result{
		RunID:      a.RunID,
		Regions:    a.Regions(5),
		Rejected:   len(a.Segmentation.Rejected),
		Noise:      a.Segmentation.Noise,
		Degenerate: a.Degenerate,
	}
	if a.Degenerate {
		return res
	}

	rc := r.cfg.Resolve
	raw := &Resolver{Words: words, Simple: true}
	res.Raw, _ = raw.Resolve(a.Lines, a.Candidates)

	full := &Resolver{
		Words:           words,
		Threshold:       rc.AcceptScoreThreshold,
		MaxCombinations: rc.MaxCombinations,
		Simple:          rc.Simple,
	}
	res.Caption, res.Stats = full.Resolve(a.Lines, a.Candidates)

	if r.log.DebugEnabled() {
		for _, w := range res.Stats.MissedWords {
			r.log.Debug("word kept as guessed", "error", NewNoDictionaryMatchError(a.RunID, w))
		}
	}
	if words != nil {
		res.Quality = Quality(res.Caption, words)
	}
	return res
}
