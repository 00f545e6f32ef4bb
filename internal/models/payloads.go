package models

// CheckResponse is the JSON body returned by the HTTP function entry point.
type CheckResponse struct {
	RunID      string `json:"runId"`
	Outcome    string `json:"outcome"`
	Downloaded int    `json:"downloaded"`
	Skipped    int    `json:"skipped"`
	Merged     int    `json:"merged"`
	Error      string `json:"error,omitempty"`
}

// HandoffPayload is the argument passed to the post-publish Cloud Workflow.
type HandoffPayload struct {
	RunID     string `json:"runId"`
	MergedURI string `json:"mergedUri"`
	FileCount int    `json:"fileCount"`
}
