package models

// RunOutcome is the result of one polling attempt. It is not persisted
// between invocations; the external scheduler re-runs the check until
// Success.
type RunOutcome int

const (
	NotReady RunOutcome = iota
	Success
	Failed
)

func (o RunOutcome) String() string {
	switch o {
	case NotReady:
		return "not-ready"
	case Success:
		return "success"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// ItemStatus records what happened to one roll number in the download loop.
type ItemStatus string

const (
	ItemDownloaded ItemStatus = "downloaded"
	ItemSkipped    ItemStatus = "skipped"
)

// ItemResult is the per-roll outcome of the download loop. Skipped items
// carry the reason so a single bad lookup is visible without aborting the
// batch.
type ItemResult struct {
	Roll   int        `json:"roll"`
	Label  string     `json:"label"`
	Status ItemStatus `json:"status"`
	Reason string     `json:"reason,omitempty"`
	File   string     `json:"file,omitempty"`
}

// BatchReport is the ordered list of item results for one run.
type BatchReport struct {
	Items []ItemResult `json:"items"`
}

func (b BatchReport) Downloaded() int {
	return b.count(ItemDownloaded)
}

func (b BatchReport) Skipped() int {
	return b.count(ItemSkipped)
}

func (b BatchReport) count(s ItemStatus) int {
	n := 0
	for _, it := range b.Items {
		if it.Status == s {
			n++
		}
	}
	return n
}

// MergeResult lists the files that went into the combined PDF. Output is
// empty when there was nothing to merge.
type MergeResult struct {
	Files  []string `json:"files"`
	Output string   `json:"output,omitempty"`
}
