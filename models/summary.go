package models

// SummaryResponse is the success body of POST /api/summarize-pdf
type SummaryResponse struct {
	Summary        string `json:"summary"`
	Model          string `json:"model"`
	CharsProcessed int    `json:"chars_processed"`
}

// SummaryErrorResponse is the failure body of POST /api/summarize-pdf
type SummaryErrorResponse struct {
	Error    string `json:"error"`
	Details  string `json:"details,omitempty"`
	Solution string `json:"solution,omitempty"`
}
