package pairing

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/menta2k/mask-evaluator/internal/utils"
)

// ImageFile is a mask filename present in both directories
type ImageFile struct {
	Name      string
	PredPath  string
	TruthPath string
}

// MismatchError reports that the two directories hold different mask names
type MismatchError struct {
	PredDir     string
	TruthDir    string
	OnlyInPred  []string
	OnlyInTruth []string
}

func (e *MismatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "prediction and ground truth filenames do not match (%s vs %s)", e.PredDir, e.TruthDir)
	if len(e.OnlyInPred) > 0 {
		fmt.Fprintf(&b, "; missing from ground truth: %s", strings.Join(e.OnlyInPred, ", "))
	}
	if len(e.OnlyInTruth) > 0 {
		fmt.Fprintf(&b, "; missing from predictions: %s", strings.Join(e.OnlyInTruth, ", "))
	}
	return b.String()
}

// Pairer matches prediction masks to ground truth masks by filename
type Pairer struct {
	config Config
}

// Config holds configuration for file discovery
type Config struct {
	Extensions []string
}

// New creates a Pairer accepting png, jpg and jpeg files
func New() *Pairer {
	return &Pairer{
		config: Config{Extensions: utils.DefaultMaskExtensions},
	}
}

// NewWithConfig creates a Pairer with custom configuration
func NewWithConfig(config Config) *Pairer {
	if len(config.Extensions) == 0 {
		config.Extensions = utils.DefaultMaskExtensions
	}
	return &Pairer{config: config}
}

// ListImageFiles returns the sorted names of the regular files in dir whose
// extension is accepted. Subdirectories are not descended into.
func (p *Pairer) ListImageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if !utils.HasExtension(name, p.config.Extensions) {
			continue
		}
		if !utils.IsRegularFile(filepath.Join(dir, name)) {
			continue
		}
		names = append(names, name)
	}

	sort.Strings(names)
	return names, nil
}

// Pair lists both directories and requires their mask names to be identical
func (p *Pairer) Pair(predDir, truthDir string) ([]ImageFile, error) {
	predNames, err := p.ListImageFiles(predDir)
	if err != nil {
		return nil, err
	}
	truthNames, err := p.ListImageFiles(truthDir)
	if err != nil {
		return nil, err
	}

	if !slices.Equal(predNames, truthNames) {
		return nil, &MismatchError{
			PredDir:     predDir,
			TruthDir:    truthDir,
			OnlyInPred:  difference(predNames, truthNames),
			OnlyInTruth: difference(truthNames, predNames),
		}
	}

	files := make([]ImageFile, 0, len(predNames))
	for _, name := range predNames {
		files = append(files, ImageFile{
			Name:      name,
			PredPath:  filepath.Join(predDir, name),
			TruthPath: filepath.Join(truthDir, name),
		})
	}
	return files, nil
}

// difference returns the names in a that are absent from b, in a's order
func difference(a, b []string) []string {
	seen := make(map[string]struct{}, len(b))
	for _, name := range b {
		seen[name] = struct{}{}
	}
	var out []string
	for _, name := range a {
		if _, ok := seen[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}
