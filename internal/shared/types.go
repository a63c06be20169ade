package shared

// Asynq task types. Notification tasks are enqueued by the API process
// after the owning transaction commits and consumed by cmd/worker.
const (
	TypeNotifySubmissionReceived = "notify:submission_received"
	TypeNotifySubmissionReviewed = "notify:submission_reviewed"
	TypeNotifyPendingDigest      = "notify:pending_digest"
)

// Queue names with their worker priorities configured in cmd/worker.
const (
	QueueHigh    = "high"
	QueueDefault = "default"
	QueueLow     = "low"
)

// SubmissionReceivedPayload is the "new submission" notification event.
type SubmissionReceivedPayload struct {
	SubmissionID string `json:"submissionId"`
	Title        string `json:"title"`
	AuthorName   string `json:"authorName"`
	AuthorEmail  string `json:"authorEmail"`
}

// SubmissionReviewedPayload covers both approval and rejection events.
// ArticleSlug and ArticleURL are set only when Status is "approved".
type SubmissionReviewedPayload struct {
	SubmissionID string `json:"submissionId"`
	Title        string `json:"title"`
	AuthorName   string `json:"authorName"`
	AuthorEmail  string `json:"authorEmail"`
	Status       string `json:"status"`
	AdminNotes   string `json:"adminNotes,omitempty"`
	ArticleSlug  string `json:"articleSlug,omitempty"`
	ArticleURL   string `json:"articleUrl,omitempty"`
}
