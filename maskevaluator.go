// Package maskevaluator scores binary segmentation masks against ground truth.
//
// Prediction and ground truth masks live in two directories and are paired by
// identical filename. Every pair is loaded, binarized and scored with
// Intersection-over-Union; the per-image scores and their mean are streamed to
// the console and to a plain text report.
//
// Basic usage:
//
//	package main
//
//	import (
//		"log"
//
//		maskevaluator "github.com/menta2k/mask-evaluator"
//	)
//
//	func main() {
//		evaluator := maskevaluator.New()
//
//		result, err := evaluator.Evaluate("predictions", "ground_truth", "iou_results.txt")
//		if err != nil {
//			log.Fatal(err)
//		}
//		log.Printf("mean IoU %.4f over %d images", result.Summary.MeanIoU, result.Summary.Count)
//	}
//
// The package consists of four components:
//
// 1. Pairing (pkg/pairing): discovers mask files and matches them by name
// 2. Mask (pkg/mask): decodes images and binarizes them
// 3. Metric (pkg/metric): computes intersection, union and IoU
// 4. Report (pkg/report): writes the text report and optional CSV export
//
// Masks saved as 0/1 images and masks saved as 0/255 images are both
// accepted; the loader picks the threshold from the brightest pixel.
package maskevaluator

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/stat"

	"github.com/menta2k/mask-evaluator/pkg/mask"
	"github.com/menta2k/mask-evaluator/pkg/metric"
	"github.com/menta2k/mask-evaluator/pkg/pairing"
	"github.com/menta2k/mask-evaluator/pkg/report"
	"github.com/menta2k/mask-evaluator/pkg/types"
)

// Version of the mask evaluator
const Version = "1.0.0"

// ErrEmptyInput is returned when no mask files were found to pair. The mean
// over zero images is undefined, so no report is written.
var ErrEmptyInput = errors.New("no mask images found to evaluate")

// Evaluator drives pairing, loading, scoring and reporting
type Evaluator struct {
	pairer  *pairing.Pairer
	loader  *mask.Loader
	console io.Writer
	csvFile string
}

// Options configures an Evaluator
type Options struct {
	// Extensions accepted during pairing; png, jpg and jpeg when empty
	Extensions []string
	// Console receives every report line; os.Stdout when nil
	Console io.Writer
	// CSVFile, when set, receives the per-image scores as CSV
	CSVFile string
	// AutoOrient applies EXIF orientation when decoding
	AutoOrient bool
}

// New creates a new Evaluator with default configuration
func New() *Evaluator {
	return NewWithOptions(Options{})
}

// NewWithOptions creates a new Evaluator with custom options
func NewWithOptions(opts Options) *Evaluator {
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	return &Evaluator{
		pairer:  pairing.NewWithConfig(pairing.Config{Extensions: opts.Extensions}),
		loader:  mask.NewWithConfig(mask.Config{AutoOrient: opts.AutoOrient}),
		console: console,
		csvFile: opts.CSVFile,
	}
}

// ScorePair loads both masks of a pair and computes their IoU
func (e *Evaluator) ScorePair(file pairing.ImageFile) (types.ImageScore, error) {
	predMask, err := e.loader.Load(file.PredPath)
	if err != nil {
		return types.ImageScore{}, err
	}
	trueMask, err := e.loader.Load(file.TruthPath)
	if err != nil {
		return types.ImageScore{}, err
	}

	overlap, err := metric.Compute(trueMask, predMask)
	if err != nil {
		return types.ImageScore{}, fmt.Errorf("%s: %w", file.Name, err)
	}

	return types.ImageScore{
		Name:         file.Name,
		IoU:          overlap.IoU(),
		Intersection: overlap.Intersection,
		Union:        overlap.Union,
	}, nil
}

// Evaluate scores every mask pair in sorted filename order and writes the
// report to outputFile. Pairing failures and empty input return before the
// report file is created.
func (e *Evaluator) Evaluate(predDir, truthDir, outputFile string) (*types.Report, error) {
	files, err := e.pairer.Pair(predDir, truthDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrEmptyInput
	}

	w, err := report.Create(outputFile, e.console)
	if err != nil {
		return nil, err
	}
	defer w.Close()

	result := &types.Report{Scores: make([]types.ImageScore, 0, len(files))}
	ious := make([]float64, 0, len(files))

	for _, file := range files {
		score, err := e.ScorePair(file)
		if err != nil {
			return nil, err
		}
		if err := w.WriteScore(score); err != nil {
			return nil, err
		}
		result.Scores = append(result.Scores, score)
		ious = append(ious, score.IoU)
	}

	result.Summary = types.Summary{
		Count:   len(ious),
		MeanIoU: stat.Mean(ious, nil),
	}
	if err := w.WriteSummary(result.Summary); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	if e.csvFile != "" {
		if err := report.WriteCSV(e.csvFile, result.Scores); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
