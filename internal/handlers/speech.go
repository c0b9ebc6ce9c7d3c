package handlers

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/euii-ii/ContentCapsule/internal/models"
	"github.com/euii-ii/ContentCapsule/internal/services"
)

// SpeechHandler prepares markdown for the browser's speech synthesis.
type SpeechHandler struct{}

func NewSpeechHandler() *SpeechHandler {
	return &SpeechHandler{}
}

func (h *SpeechHandler) Prepare(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireIdentity(w, r); !ok {
		return
	}

	var req models.SpeechRequest
	if !decodeJSON(r, &req) {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Content is required", map[string]string{"content": "required"}, r))
		return
	}

	voice := req.Voice
	if voice == "" {
		voice = "default"
	}
	speed := 1.0
	if req.Speed != nil {
		if *req.Speed <= 0 {
			writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Speed must be greater than 0", map[string]string{"speed": "must be positive"}, r))
			return
		}
		speed = *req.Speed
	}

	cleaned := services.PrepareForSpeech(req.Content)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": models.PreparedSpeech{
			CleanedContent:    cleaned,
			ClientContent:     services.PrepareForSpeechClient(req.Content),
			OriginalLength:    utf8.RuneCountInString(req.Content),
			CleanedLength:     utf8.RuneCountInString(cleaned),
			EstimatedDuration: services.EstimateDurationSeconds(cleaned, speed),
			Title:             req.Title,
			Voice:             voice,
			Speed:             speed,
			Instructions: models.SpeechInstructions{
				Browser: "Use browser's speechSynthesis API for immediate playback",
				Future:  "Enhanced TTS services will be integrated for better quality audio generation",
			},
		},
		"message": "Content prepared for audio synthesis",
	})
}

// Info serves ?action=voices|stats and the default service description.
func (h *SpeechHandler) Info(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireIdentity(w, r); !ok {
		return
	}

	var data interface{}
	switch r.URL.Query().Get("action") {
	case "voices":
		data = map[string]interface{}{
			"browserVoices": "Available through speechSynthesis.getVoices()",
			"features": map[string][]string{
				"current": {
					"Browser-based text-to-speech",
					"Multiple voice selection",
					"Speed control (0.5x - 2x)",
					"Volume control",
					"Play/pause/stop controls",
				},
			},
		}
	case "stats":
		data = map[string]interface{}{
			"totalGenerated":     0,
			"totalListeningTime": 0,
			"favoriteVoice":      "default",
			"averageSpeed":       1.0,
		}
	default:
		data = map[string]interface{}{
			"service": "Speech preparation API",
			"version": "1.0.0",
			"status":  "active",
			"features": []string{
				"Content preparation for TTS",
				"Duration estimation",
				"Voice information",
				"Browser-based synthesis support",
			},
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": data})
}
