package chat

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"docchat-backend/internal/shared/metrics"
	"docchat-backend/internal/shared/server/respond"
	"docchat-backend/internal/shared/telemetry"
)

const (
	defaultMaxUploadSize = 10 << 20 // 10MB
	maxMessageBytes      = 1 << 20

	endpointChat      = "chat"
	endpointAudioChat = "audio_chat"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc           *Service
	MaxUploadSize int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, maxUploadSize int64) *Handler {
	if maxUploadSize <= 0 {
		maxUploadSize = defaultMaxUploadSize
	}
	return &Handler{Svc: svc, MaxUploadSize: maxUploadSize}
}

// RegisterRoutes attaches chat routes to the router.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/chat", h.chat)
	r.POST("/audio-chat", h.audioChat)
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Message  string `json:"message"`
	AudioURL string `json:"audioUrl"`
}

type audioChatResponse struct {
	UserMessage   string `json:"userMessage"`
	Message       string `json:"message"`
	Transcription string `json:"transcription"`
	AudioURL      string `json:"audioUrl"`
}

func (h *Handler) chat(c *gin.Context) {
	metrics.IncChatRequest(endpointChat)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxMessageBytes)

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		metrics.IncChatFailed(endpointChat, "request")
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "Message exceeds size limit", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "bad_request", "unable to read request body", nil)
		return
	}

	var req chatRequest
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := binding.JSON.BindBody(raw, &req); err != nil {
			metrics.IncChatFailed(endpointChat, "request")
			respond.Error(c, http.StatusBadRequest, "bad_request", "invalid JSON body", nil)
			return
		}
	}

	start := time.Now()
	reply, err := h.Svc.Reply(c.Request.Context(), req.Message)
	metrics.ObservePipelineDurationMs(metrics.SinceMillis(start))
	if err != nil {
		h.fail(c, endpointChat, "chat_processing_error", "Failed to process message", err)
		return
	}

	respond.OK(c, chatResponse{Message: reply.Message, AudioURL: reply.AudioURL})
}

func (h *Handler) audioChat(c *gin.Context) {
	metrics.IncChatRequest(endpointAudioChat)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadSize)

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		metrics.IncChatFailed(endpointAudioChat, "request")
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "Audio exceeds upload limit", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "bad_request", "No audio file provided", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		metrics.IncChatFailed(endpointAudioChat, "request")
		respond.Error(c, http.StatusBadRequest, "bad_request", "unable to read audio file", nil)
		return
	}
	defer file.Close()

	start := time.Now()
	reply, err := h.Svc.ReplyToAudio(c.Request.Context(), fileHeader.Filename, file)
	metrics.ObservePipelineDurationMs(metrics.SinceMillis(start))
	if err != nil {
		h.fail(c, endpointAudioChat, "audio_processing_error", "Failed to process audio", err)
		return
	}

	respond.OK(c, audioChatResponse{
		UserMessage:   reply.Transcription,
		Message:       reply.Message,
		Transcription: reply.Transcription,
		AudioURL:      reply.AudioURL,
	})
}

// fail logs the cause with its stage and responds with the stage name only.
func (h *Handler) fail(c *gin.Context, endpoint, code, message string, err error) {
	stage := "unknown"
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		stage = string(stageErr.Stage)
	}
	metrics.IncChatFailed(endpoint, stage)
	telemetry.Error("chat.failed", map[string]any{
		"endpoint":   endpoint,
		"stage":      stage,
		"error":      err,
		"request_id": c.GetString("requestId"),
	})
	respond.Error(c, http.StatusInternalServerError, code, message, gin.H{"stage": stage})
}
