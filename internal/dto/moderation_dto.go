package dto

type CreateReportRequest struct {
	ContentType string `json:"content_type"`
	ContentID   string `json:"content_id"`
	Reason      string `json:"reason"`
	Description string `json:"description,omitempty"`
}

type ProcessReportRequest struct {
	Action    string `json:"action"`
	AdminNote string `json:"admin_note"`
}

type ScanContentRequest struct {
	ContentType string `json:"content_type"`
	ContentID   string `json:"content_id"`
	Text        string `json:"text"`
}

type CreateFilterRequest struct {
	Keyword  string `json:"keyword"`
	Severity string `json:"severity"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
