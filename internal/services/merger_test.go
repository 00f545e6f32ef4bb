package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/require"
)

func TestMergeEmptyDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	res, err := NewMerger("merged_all.pdf").Merge(dir)
	require.NoError(t, err)
	require.Empty(t, res.Output)
	require.Empty(t, res.Files)
	require.NoFileExists(t, filepath.Join(dir, "merged_all.pdf"))
}

func TestMergeOrderAndIdempotence(t *testing.T) {
	dir := t.TempDir()
	// written out of order; widths identify each page
	writePDF(t, filepath.Join(dir, "24UECC8003.pdf"), 300)
	writePDF(t, filepath.Join(dir, "24UECC8001.pdf"), 100)
	writePDF(t, filepath.Join(dir, "24UECC8002.PDF"), 200)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "24UECC8004.pdf.crdownload"), []byte("partial"), 0o644))

	m := NewMerger("merged_all.pdf")
	first, err := m.Merge(dir)
	require.NoError(t, err)
	require.Equal(t, []string{"24UECC8001.pdf", "24UECC8002.PDF", "24UECC8003.pdf"}, first.Files)
	require.Equal(t, filepath.Join(dir, "merged_all.pdf"), first.Output)

	dims, err := api.PageDimsFile(first.Output)
	require.NoError(t, err)
	require.Len(t, dims, 3)
	require.Equal(t, 100.0, dims[0].Width)
	require.Equal(t, 200.0, dims[1].Width)
	require.Equal(t, 300.0, dims[2].Width)

	second, err := m.Merge(dir)
	require.NoError(t, err)
	require.Equal(t, first.Files, second.Files)

	n, err := api.PageCountFile(second.Output)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		require.False(t, e.IsDir(), "merge workspace %s left behind", e.Name())
	}
}

func TestMergeCorruptInput(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pdf"), []byte("<html>error</html>"), 0o644))

	_, err := NewMerger("merged_all.pdf").Merge(dir)
	require.Error(t, err)
	require.NoFileExists(t, filepath.Join(dir, "merged_all.pdf"))
}
