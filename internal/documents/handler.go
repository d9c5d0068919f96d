package documents

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"docchat-backend/internal/extract"
	"docchat-backend/internal/shared/metrics"
	"docchat-backend/internal/shared/server/respond"
)

const defaultMaxUploadSize = 10 << 20 // 10MB

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

// RegisterRoutes attaches document routes to the router.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/upload", h.upload)
	r.GET("/documents", h.list)
	r.GET("/documents/current", h.current)
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		metrics.IncUploadFailed("bad_request")
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "File exceeds upload limit", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "bad_request", "No file part", nil)
		return
	}
	if fileHeader.Filename == "" {
		metrics.IncUploadFailed("bad_request")
		respond.Error(c, http.StatusBadRequest, "bad_request", "No file selected", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		metrics.IncUploadFailed("bad_request")
		respond.Error(c, http.StatusBadRequest, "bad_request", "unable to read file", nil)
		return
	}
	defer file.Close()

	doc, err := h.Svc.Upload(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		var procErr *ProcessingError
		switch {
		case errors.Is(err, ErrInvalidInput):
			metrics.IncUploadFailed("bad_request")
			respond.Error(c, http.StatusBadRequest, "bad_request", err.Error(), nil)
		case errors.Is(err, extract.ErrUnsupportedFormat):
			metrics.IncUploadFailed("unsupported_format")
			respond.Error(c, http.StatusBadRequest, "unsupported_format", "Unsupported file format", nil)
		case errors.Is(err, extract.ErrDecode):
			metrics.IncUploadFailed("decode_error")
			respond.Error(c, http.StatusInternalServerError, "decode_error", "Error processing file: "+err.Error(), nil)
		case errors.As(err, &procErr):
			metrics.IncUploadFailed("processing_error")
			respond.Error(c, http.StatusInternalServerError, "processing_error", "Error processing file: "+err.Error(), gin.H{"format": procErr.Format})
		default:
			metrics.IncUploadFailed("internal")
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to store upload", nil)
		}
		return
	}

	c.Set("documentId", doc.ID)
	metrics.IncUploadSucceeded()
	respond.OK(c, uploadResponse{
		Success:    true,
		Message:    "File uploaded and processed successfully",
		DocumentID: doc.ID,
	})
}

func (h *Handler) current(c *gin.Context) {
	doc, err := h.Svc.Current(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "no document uploaded", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch document", nil)
		}
		return
	}

	c.Set("documentId", doc.ID)
	respond.OK(c, toResponse(doc))
}

func (h *Handler) list(c *gin.Context) {
	limit := 20
	offset := 0

	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}

	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	docs, err := h.Svc.List(c.Request.Context(), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list documents", nil)
		return
	}

	resp := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, toResponse(doc))
	}
	respond.OK(c, resp)
}
