package site

import "time"

// Step is one locate-and-activate hop on the way to the lookup form.
type Step struct {
	Name    string
	Locator Locator
	// Optional steps are skipped when the element never shows up, e.g. an
	// accordion panel that is already expanded.
	Optional bool
	// Gate steps decide readiness: a missing gate element means the result
	// has not been published yet.
	Gate bool
	// Settle is an extra pause after activation for client-side animation.
	Settle time.Duration
}

// Adapter holds every site-specific locator so structural changes on the
// results site touch this package only.
type Adapter struct {
	HomeURL   string
	Steps     []Step
	Marker    Locator
	RollInput Locator
	Submit    Locator
}

const (
	DefaultHomeURL   = "https://mbmiums.in/"
	RollInputID      = "txtRollNo"
	SubmitButtonID   = "btnGetResult"
	examResultHref   = "ExamResult.aspx"
	semesterTabLabel = "View Semester Results"
)

// DefaultSteps is the navigation path observed on the MBM results portal.
func DefaultSteps(sessionText, branchText, branchAlt []string) []Step {
	return []Step{
		{
			Name:    "exam results",
			Locator: Locator{HrefContains: examResultHref},
		},
		{
			Name:     "semester tab",
			Locator:  Locator{TextAll: []string{semesterTabLabel}},
			Optional: true,
			Settle:   2 * time.Second,
		},
		{
			Name:    "session",
			Locator: Locator{TextAll: sessionText},
		},
		{
			Name:    "branch",
			Locator: Locator{TextAll: branchText, TextAny: branchAlt},
			Gate:    true,
		},
	}
}

// Default returns the adapter for the MBM portal, odd semester 2024, ECC
// third semester.
func Default() Adapter {
	return Adapter{
		HomeURL:   DefaultHomeURL,
		Steps:     DefaultSteps([]string{"Odd", "2024"}, []string{"ECC"}, []string{"III", "3rd"}),
		Marker:    ByID(RollInputID),
		RollInput: ByID(RollInputID),
		Submit:    ByID(SubmitButtonID),
	}
}
