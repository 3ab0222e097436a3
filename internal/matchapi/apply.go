package matchapi

type applyRequest struct {
	JobID      int64 `json:"job_id"`
	AutoSubmit bool  `json:"auto_submit"`
}

// ApplyResult describes an application prepared by the service.
type ApplyResult struct {
	JobID           int64    `json:"job_id"`
	ApplicationID   int64    `json:"application_id,omitempty"`
	Status          string   `json:"status"`
	MatchScore      *float64 `json:"match_score,omitempty"`
	ResumePath      string   `json:"resume_path,omitempty"`
	CoverLetterPath string   `json:"cover_letter_path,omitempty"`
	Notes           string   `json:"notes,omitempty"`
	AutoSubmitted   bool     `json:"auto_submitted"`
	SubmittedAt     string   `json:"submitted_at,omitempty"`
}
