package responses

// FindingDTO is one validation finding as returned to the caller.
type FindingDTO struct {
	Level   string `json:"level"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SubmitCarePlanResponse reports the gate outcome. JobID is set only when
// the request was admitted; Findings carries every collected item so the
// caller sees all problems at once.
type SubmitCarePlanResponse struct {
	Outcome  string       `json:"outcome"`
	JobID    string       `json:"jobId,omitempty"`
	Findings []FindingDTO `json:"findings,omitempty"`
}

type CarePlanStatusResponse struct {
	JobID      string `json:"jobId"`
	Status     string `json:"status"`
	Content    string `json:"content,omitempty"`
	RetryCount int    `json:"retryCount"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

type CarePlanStatsResponse struct {
	Pending     int64 `json:"pending"`
	Processing  int64 `json:"processing"`
	Completed   int64 `json:"completed"`
	Failed      int64 `json:"failed"`
	QueueLength int   `json:"queueLength"`
}
