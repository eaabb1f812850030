package reviews

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"contract-validator/internal/contracts"
	"contract-validator/internal/docx"
	"contract-validator/internal/shared/server/middleware"
	"contract-validator/internal/shared/server/respond"
	"contract-validator/internal/shared/telemetry"
	"contract-validator/internal/submissions"
)

const (
	multipartOverhead = 1 << 20
	archiveTimeout    = 10 * time.Second
)

// Handler serves the analyze endpoint.
type Handler struct {
	Svc     *Service
	Archive *submissions.Service
}

// NewHandler constructs a Handler. archive may be nil.
func NewHandler(svc *Service, archive *submissions.Service) *Handler {
	return &Handler{Svc: svc, Archive: archive}
}

// RegisterRoutes attaches the analyze route; mw runs before the handler.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, mw ...gin.HandlerFunc) {
	handlers := append(append([]gin.HandlerFunc{}, mw...), h.analyze)
	rg.POST("/analyze-contract", handlers...)
}

func (h *Handler) analyze(c *gin.Context) {
	start := time.Now()
	maxSize := h.maxFileSize()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize+multipartOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(c, docx.ErrFileTooLarge, "", nil, start)
			return
		}
		h.fail(c, errMissingFile, "", nil, start)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.fail(c, errMissingFile, fileHeader.Filename, nil, start)
		return
	}
	defer file.Close()

	// One byte past the limit is enough for the reader to reject it.
	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		h.fail(c, err, fileHeader.Filename, nil, start)
		return
	}

	req := Request{
		RequestID:    middleware.RequestIDFromContext(c),
		FileName:     fileHeader.Filename,
		Data:         data,
		Description:  formValue(c, "description"),
		ContractType: formValue(c, "contract_type"),
		Jurisdiction: formValue(c, "jurisdiction"),
	}

	result, err := h.Svc.Review(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, req.FileName, data, start)
		return
	}

	h.archive(c, submissions.Outcome{
		RequestID: req.RequestID,
		FileName:  req.FileName,
		Data:      data,
		Analysis:  &result,
		Duration:  time.Since(start),
	})
	respond.Analysis(c, result)
}

var errMissingFile = errors.New("file is required")

func (h *Handler) fail(c *gin.Context, err error, fileName string, data []byte, start time.Time) {
	f := Classify(err, h.maxFileSize())
	if errors.Is(err, errMissingFile) {
		f = Failure{Status: http.StatusBadRequest, Code: contracts.CodeValidation, Message: "A DOCX file is required in the 'file' form field"}
	}
	c.Set(middleware.ErrorCodeKey, f.Code)
	if fileName != "" {
		h.archive(c, submissions.Outcome{
			RequestID: middleware.RequestIDFromContext(c),
			FileName:  fileName,
			Data:      data,
			ErrorCode: f.Code,
			Duration:  time.Since(start),
		})
	}
	respond.Error(c, f.Status, f.Code, f.Message, f.Details)
}

func (h *Handler) archive(c *gin.Context, out submissions.Outcome) {
	if h.Archive == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), archiveTimeout)
	defer cancel()

	sub, err := h.Archive.Record(ctx, out)
	if err != nil {
		telemetry.Warn("submissions.record.failed", map[string]any{
			"request_id": out.RequestID,
			"error":      err,
		})
		return
	}
	c.Set(middleware.SubmissionIDKey, sub.ID)
	c.Header("X-Submission-ID", sub.ID)
}

func (h *Handler) maxFileSize() int64 {
	if h.Svc != nil && h.Svc.Reader != nil && h.Svc.Reader.MaxFileSize > 0 {
		return h.Svc.Reader.MaxFileSize
	}
	return docx.DefaultMaxFileSize
}

func formValue(c *gin.Context, key string) string {
	if v := strings.TrimSpace(c.PostForm(key)); v != "" {
		return v
	}
	return strings.TrimSpace(c.Query(key))
}
