package models

// WebSocket message types
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type GenerationEvent struct {
	VideoID     string        `json:"videoId"`
	ContentType ContentType   `json:"contentType"`
	Path        GeneratorPath `json:"path"`
	Step        int           `json:"step"`
	TotalSteps  int           `json:"totalSteps"`
	Error       string        `json:"error,omitempty"`
}

type ErrorResponse struct {
	Error      string            `json:"error"`
	Code       string            `json:"code,omitempty"`
	Details    string            `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
	RequestID  string            `json:"requestId,omitempty"`

	TranscriptLength *int   `json:"transcriptLength,omitempty"`
	VideoID          string `json:"videoId,omitempty"`
}
