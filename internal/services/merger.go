package services

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/Lllllllleong/resultwatch/internal/models"
)

func init() {
	// pdfcpu otherwise creates a config dir under $HOME, which is read-only
	// on Cloud Functions.
	api.DisableConfigDir()
}

// Merger combines every PDF in a directory into one file inside the same
// directory.
type Merger struct {
	output string
}

func NewMerger(output string) *Merger {
	return &Merger{output: output}
}

// Merge concatenates the PDFs in dir in filename order, leaving out a
// previous merge output. With no inputs nothing is written and the result is
// empty.
func (m *Merger) Merge(dir string) (models.MergeResult, error) {
	logCtx := slog.With("dir", dir, "output", m.output)

	files, _, err := listPDFs(dir)
	if err != nil {
		return models.MergeResult{}, err
	}

	var inputs []string
	for _, f := range files {
		if f.Name == m.output {
			continue
		}
		inputs = append(inputs, f.Name)
	}
	if len(inputs) == 0 {
		logCtx.Info("No PDFs to merge.")
		return models.MergeResult{}, nil
	}

	paths := make([]string, len(inputs))
	for i, name := range inputs {
		paths[i] = filepath.Join(dir, name)
	}

	tmpDir, err := os.MkdirTemp(dir, ".merge-*")
	if err != nil {
		return models.MergeResult{}, fmt.Errorf("failed to create merge workspace: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	tmp := filepath.Join(tmpDir, m.output)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.MergeCreateFile(paths, tmp, false, conf); err != nil {
		return models.MergeResult{}, fmt.Errorf("failed to merge %d PDFs: %w", len(paths), err)
	}

	out := filepath.Join(dir, m.output)
	if err := os.Rename(tmp, out); err != nil {
		return models.MergeResult{}, fmt.Errorf("failed to move merged PDF into place: %w", err)
	}

	logCtx.Info("Merged PDFs.", "files", len(inputs))
	return models.MergeResult{Files: inputs, Output: out}, nil
}
