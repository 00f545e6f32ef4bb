package services

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

type pdfFile struct {
	Name    string
	ModTime time.Time
}

func isPDF(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".pdf")
}

// listPDFs returns the PDF files directly inside dir, sorted by name, and
// the names of browser downloads still in progress.
func listPDFs(dir string) ([]pdfFile, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var files []pdfFile
	var partial []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".crdownload") {
			partial = append(partial, name)
			continue
		}
		if !isPDF(name) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		files = append(files, pdfFile{Name: name, ModTime: info.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, partial, nil
}

func newestOf(files []pdfFile) string {
	var best pdfFile
	for _, f := range files {
		if best.Name == "" || f.ModTime.After(best.ModTime) {
			best = f
		}
	}
	return best.Name
}
