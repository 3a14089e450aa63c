package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/menta2k/mask-evaluator/internal/utils"
	"github.com/menta2k/mask-evaluator/pkg/types"
)

// FormatScoreLine renders the report line for one image
func FormatScoreLine(name string, iou float64) string {
	return fmt.Sprintf("%s IoU: %.4f", name, iou)
}

// FormatSummaryLine renders the final mean line
func FormatSummaryLine(count int, mean float64) string {
	return fmt.Sprintf("Mean IoU over %d images: %.4f", count, mean)
}

// Writer streams report lines to the console and to a report file. Each
// line is written as soon as it is produced.
type Writer struct {
	path    string
	file    *os.File
	console io.Writer
	closed  bool
}

// Create truncates or creates the report file at path. A nil console
// disables console output.
func Create(path string, console io.Writer) (*Writer, error) {
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}

	if console == nil {
		console = io.Discard
	}
	return &Writer{path: path, file: file, console: console}, nil
}

// Path returns the report file location
func (w *Writer) Path() string {
	return w.path
}

// WriteScore emits the per-image line
func (w *Writer) WriteScore(score types.ImageScore) error {
	return w.writeLine(FormatScoreLine(score.Name, score.IoU))
}

// WriteSummary emits the mean line
func (w *Writer) WriteSummary(summary types.Summary) error {
	return w.writeLine(FormatSummaryLine(summary.Count, summary.MeanIoU))
}

func (w *Writer) writeLine(line string) error {
	if w.closed {
		return fmt.Errorf("report %s is closed", w.path)
	}
	if _, err := fmt.Fprintln(w.console, line); err != nil {
		return fmt.Errorf("failed to write console line: %w", err)
	}
	if _, err := fmt.Fprintln(w.file, line); err != nil {
		return fmt.Errorf("failed to write report line: %w", err)
	}
	return nil
}

// Close closes the report file. Calling it twice is a no-op.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("failed to close report: %w", err)
	}
	return nil
}

// WriteCSV exports per-image scores as CSV with a header row
func WriteCSV(path string, scores []types.ImageScore) error {
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to create csv directory: %w", err)
	}

	fo, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer fo.Close()

	if err := gocsv.Marshal(scores, fo); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return fo.Close()
}
