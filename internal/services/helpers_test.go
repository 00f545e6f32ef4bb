package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/resultwatch/internal/config"
	"github.com/Lllllllleong/resultwatch/internal/models"
	"github.com/Lllllllleong/resultwatch/internal/site"
	"github.com/Lllllllleong/resultwatch/internal/site/sitetest"
)

// writePDF writes a one-page PDF whose MediaBox width identifies it.
func writePDF(t *testing.T, path string, width int) {
	t.Helper()
	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d 400] /Resources << >> >>", width),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)

	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func fastTiming() config.TimingConfig {
	return config.TimingConfig{
		StepTimeout:    300 * time.Millisecond,
		RetapAfter:     30 * time.Millisecond,
		PollInterval:   5 * time.Millisecond,
		DownloadSettle: 200 * time.Millisecond,
	}
}

func fastAdapter() site.Adapter {
	a := site.Default()
	for i := range a.Steps {
		a.Steps[i].Settle = 0
	}
	return a
}

// formPage is a fixture already sitting on the lookup form.
func formPage() *sitetest.Page {
	return sitetest.Recorded().Alias("home", "form")
}

// slipWriter simulates the site answering a submit with a PDF download.
func slipWriter(t *testing.T, dir string) func(string) error {
	return func(roll string) error {
		writePDF(t, filepath.Join(dir, roll+".pdf"), 300)
		return nil
	}
}

type sentDoc struct {
	Path    string
	Caption string
}

type fakeNotifier struct {
	mu    sync.Mutex
	texts []string
	docs  []sentDoc
}

func (f *fakeNotifier) Text(_ context.Context, msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, msg)
}

func (f *fakeNotifier) Document(_ context.Context, path, caption string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs = append(f.docs, sentDoc{Path: path, Caption: caption})
}

type fakeDisabler struct {
	calls int
	err   error
}

func (f *fakeDisabler) Disable(context.Context) error {
	f.calls++
	return f.err
}

type fakeLedger struct {
	published bool
	records   []models.RunRecord
}

func (f *fakeLedger) Published(context.Context) (bool, string, error) {
	return f.published, "earlier-run", nil
}

func (f *fakeLedger) Record(_ context.Context, rec models.RunRecord) error {
	f.records = append(f.records, rec)
	return nil
}

type fakeArchiver struct {
	runID string
	path  string
}

func (f *fakeArchiver) Archive(_ context.Context, runID, localPath string) (string, error) {
	f.runID, f.path = runID, localPath
	return "gs://archive/" + runID + "/" + filepath.Base(localPath), nil
}

type fakeHandoff struct {
	payloads []models.HandoffPayload
}

func (f *fakeHandoff) Start(_ context.Context, p models.HandoffPayload) (string, error) {
	f.payloads = append(f.payloads, p)
	return "executions/1", nil
}

type fixtureSession struct {
	*sitetest.Page
	closed bool
}

func (s *fixtureSession) Close() error {
	s.closed = true
	return nil
}
