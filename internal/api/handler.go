package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"waisdom/internal/interests"
	"waisdom/internal/models"
	"waisdom/internal/pipeline"
	"waisdom/internal/store"
	"waisdom/pkg/logger"
)

// maxPDFUploadBytes caps PDF uploads at 25MB.
const maxPDFUploadBytes = 25 << 20

// Handler exposes the pipeline over REST.
type Handler struct {
	processor *pipeline.Processor
	registry  interests.Registry
	log       *logger.Logger
}

// NewHandler creates the REST handler.
func NewHandler(processor *pipeline.Processor, registry interests.Registry, log *logger.Logger) *Handler {
	return &Handler{processor: processor, registry: registry, log: log}
}

// Register mounts all routes on the engine.
func (h *Handler) Register(r *gin.Engine) {
	r.POST("/content/url", h.processURL)
	r.POST("/content/text", h.processText)
	r.POST("/content/pdf", h.processPDF)
	r.GET("/content", h.listContent)
	r.GET("/content/:id", h.getContent)
	r.DELETE("/content/:id", h.deleteContent)
	r.GET("/search", h.search)
	r.POST("/ask", h.ask)
	r.GET("/digest", h.digest)
	r.GET("/recommendations", h.recommendations)
	r.GET("/interests", h.getInterests)
	r.PUT("/interests", h.setInterests)
}

type urlRequest struct {
	URL string `json:"url" binding:"required"`
}

func (h *Handler) processURL(c *gin.Context) {
	var req urlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.processor.ProcessURL(c.Request.Context(), req.URL)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type textRequest struct {
	Text   string `json:"text" binding:"required"`
	Source string `json:"source"`
}

func (h *Handler) processText(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.processor.ProcessText(c.Request.Context(), req.Text, req.Source)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *Handler) processPDF(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing 'file' upload"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxPDFUploadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload"})
		return
	}

	result, err := h.processor.ProcessPDF(c.Request.Context(), data, header.Filename, c.PostForm("url"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *Handler) listContent(c *gin.Context) {
	opts := store.DefaultListOptions()
	opts.Limit = intQuery(c, "limit", opts.Limit)
	opts.Offset = intQuery(c, "offset", 0)
	if sortBy := c.Query("sort_by"); sortBy != "" {
		opts.SortBy = sortBy
	}
	if c.Query("asc") == "true" {
		opts.SortDesc = false
	}

	filter := make(map[string]interface{})
	if tag := c.Query("tag"); tag != "" {
		filter["tags"] = tag
	}
	if contentType := c.Query("content_type"); contentType != "" {
		filter["content_type"] = contentType
	}
	if raw := c.Query("min_priority"); raw != "" {
		minPriority, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'min_priority'"})
			return
		}
		filter["priority_score"] = map[string]interface{}{"gte": minPriority}
	}
	if len(filter) > 0 {
		opts.Filter = filter
	}

	records, err := h.processor.List(c.Request.Context(), opts)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": records, "count": len(records)})
}

func (h *Handler) getContent(c *gin.Context) {
	record, err := h.processor.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "content not found"})
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) deleteContent(c *gin.Context) {
	existed, err := h.processor.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if !existed {
		c.JSON(http.StatusNotFound, gin.H{"error": "content not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter 'q'"})
		return
	}

	hits, err := h.processor.Search(c.Request.Context(), query, intQuery(c, "n", 0))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": hits, "count": len(hits)})
}

type askRequest struct {
	Question string `json:"question" binding:"required"`
}

func (h *Handler) ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answer, err := h.processor.Ask(c.Request.Context(), req.Question)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}

func (h *Handler) digest(c *gin.Context) {
	items, err := h.processor.DailyDigest(c.Request.Context(), intQuery(c, "limit", 0))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func (h *Handler) recommendations(c *gin.Context) {
	userInterests, err := h.registry.Get(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	recommendations, err := h.processor.Recommendations(c.Request.Context(), userInterests, intQuery(c, "limit", 0))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": recommendations})
}

func (h *Handler) getInterests(c *gin.Context) {
	userInterests, err := h.registry.Get(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"interests": userInterests})
}

type interestsRequest struct {
	Interests []string `json:"interests" binding:"required"`
}

func (h *Handler) setInterests(c *gin.Context) {
	var req interestsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.registry.Set(c.Request.Context(), req.Interests); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"interests": req.Interests})
}

// writeError maps pipeline errors to HTTP statuses: submissions that cannot
// be extracted or come from an unsupported source are the client's problem,
// everything else is ours.
func (h *Handler) writeError(c *gin.Context, err error) {
	var (
		extractionErr  *models.ExtractionError
		unsupportedErr *models.UnsupportedSourceError
	)
	switch {
	case errors.As(err, &unsupportedErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": unsupportedErr.Error()})
	case errors.As(err, &extractionErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": extractionErr.Error()})
	default:
		h.log.Error(fmt.Sprintf("Request failed: %v", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
