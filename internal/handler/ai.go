package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/inkgen/inkgen/internal/auth"
	"github.com/inkgen/inkgen/internal/gateway"
	"github.com/inkgen/inkgen/internal/handler/dto"
	"github.com/inkgen/inkgen/internal/middleware"
	"github.com/inkgen/inkgen/internal/model"
	"github.com/inkgen/inkgen/internal/quota"
	"github.com/inkgen/inkgen/internal/service"
)

// maxUploadMemory bounds how much of a multipart body is held in memory
// before spilling to disk.
const maxUploadMemory = 10 << 20

// GenerationRunner runs one generation request end to end.
type GenerationRunner interface {
	Generate(ctx context.Context, id model.Identity, input service.GenerateInput) (*model.Creation, error)
}

// AIHandler handles HTTP requests for the generation endpoints.
type AIHandler struct {
	svc    GenerationRunner
	logger *slog.Logger
}

// NewAIHandler creates a new AIHandler.
func NewAIHandler(svc GenerationRunner, logger *slog.Logger) *AIHandler {
	return &AIHandler{
		svc:    svc,
		logger: logger,
	}
}

// GenerateArticle handles POST /api/ai/generate-article.
func (h *AIHandler) GenerateArticle(w http.ResponseWriter, r *http.Request) {
	var req dto.GenerateArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.run(w, r, service.GenerateInput{
		Capability: gateway.CapabilityArticle,
		Prompt:     req.Prompt,
		Length:     req.Length,
	})
}

// GenerateBlogTitle handles POST /api/ai/generate-blog-title.
func (h *AIHandler) GenerateBlogTitle(w http.ResponseWriter, r *http.Request) {
	var req dto.GenerateBlogTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.run(w, r, service.GenerateInput{
		Capability: gateway.CapabilityBlogTitle,
		Prompt:     req.Prompt,
	})
}

// GenerateImage handles POST /api/ai/generate-image.
func (h *AIHandler) GenerateImage(w http.ResponseWriter, r *http.Request) {
	var req dto.GenerateImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.run(w, r, service.GenerateInput{
		Capability: gateway.CapabilityImage,
		Prompt:     req.Prompt,
		Publish:    req.Publish,
	})
}

// RemoveImageBackground handles POST /api/ai/remove-image-background.
// The image arrives as the multipart field "image".
func (h *AIHandler) RemoveImageBackground(w http.ResponseWriter, r *http.Request) {
	upload, ok := h.formUpload(w, r, "image")
	if !ok {
		return
	}

	h.run(w, r, service.GenerateInput{
		Capability: gateway.CapabilityBackgroundRemoval,
		Upload:     upload,
	})
}

// RemoveImageObject handles POST /api/ai/remove-image-object. The image
// arrives as the multipart field "image" and the object description as the
// form field "object".
func (h *AIHandler) RemoveImageObject(w http.ResponseWriter, r *http.Request) {
	upload, ok := h.formUpload(w, r, "image")
	if !ok {
		return
	}

	h.run(w, r, service.GenerateInput{
		Capability: gateway.CapabilityObjectRemoval,
		Object:     r.FormValue("object"),
		Upload:     upload,
	})
}

// ResumeReview handles POST /api/ai/resume-review. The document arrives as
// the multipart field "resume".
func (h *AIHandler) ResumeReview(w http.ResponseWriter, r *http.Request) {
	upload, ok := h.formUpload(w, r, "resume")
	if !ok {
		return
	}

	h.run(w, r, service.GenerateInput{
		Capability: gateway.CapabilityResumeReview,
		Upload:     upload,
	})
}

// run executes the generation and writes the envelope. All six endpoints
// share the same success shape and failure mapping.
func (h *AIHandler) run(w http.ResponseWriter, r *http.Request, input service.GenerateInput) {
	id := auth.MustIdentityFromContext(r.Context())

	creation, err := h.svc.Generate(r.Context(), id, input)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ContentResponse{Success: true, Content: creation.Content})
}

// formUpload extracts one multipart file. A missing file yields a nil upload
// so the capability's own validation produces the specific message.
func (h *AIHandler) formUpload(w http.ResponseWriter, r *http.Request, field string) (*gateway.Upload, bool) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid multipart form")
		return nil, false
	}

	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, true
	}
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid multipart form")
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Unable to read uploaded file")
		return nil, false
	}

	return &gateway.Upload{
		Filename: header.Filename,
		Size:     header.Size,
		Data:     data,
	}, true
}

// writeFailure maps generation errors onto status codes. Quota denials are
// a business outcome, not a transport error, so they go out as 200 with
// success=false.
func (h *AIHandler) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, quota.ErrQuotaExceeded) {
		writeJSON(w, http.StatusOK, dto.MessageResponse{Success: false, Message: quota.LimitMessage})
		return
	}

	var gwErr *gateway.Error
	if errors.As(err, &gwErr) {
		switch gwErr.Kind {
		case gateway.FailurePlanRequired:
			writeMessage(w, http.StatusForbidden, gwErr.UserMessage())
		case gateway.FailureValidation, gateway.FailurePayloadTooLarge:
			writeMessage(w, http.StatusBadRequest, gwErr.UserMessage())
		default:
			writeMessage(w, http.StatusInternalServerError, gwErr.UserMessage())
		}
		return
	}

	h.logger.Error("generation failed",
		slog.String("request_id", middleware.GetRequestID(r.Context())),
		slog.String("error", err.Error()),
	)
	writeMessage(w, http.StatusInternalServerError, "Internal server error")
}
