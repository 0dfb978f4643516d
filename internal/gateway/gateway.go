// Package gateway provides a uniform interface over the external AI
// generation providers and media storage. Each capability is invoked
// through one tagged request type; failures come back structured so the
// HTTP layer never leaks raw provider errors.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/inkgen/inkgen/internal/model"
)

// Capability is one distinct kind of AI-backed operation.
type Capability string

const (
	CapabilityArticle           Capability = "article"
	CapabilityBlogTitle         Capability = "blog-title"
	CapabilityImage             Capability = "image"
	CapabilityBackgroundRemoval Capability = "background-removal"
	CapabilityObjectRemoval     Capability = "object-removal"
	CapabilityResumeReview      Capability = "resume-review"
)

// PremiumOnly reports whether the capability is restricted to the premium
// plan. Text capabilities are open to free users under the usage quota.
func (c Capability) PremiumOnly() bool {
	switch c {
	case CapabilityImage, CapabilityBackgroundRemoval, CapabilityObjectRemoval:
		return true
	}
	return false
}

// Token bounds per text capability.
const (
	defaultArticleTokens = 800
	blogTitleTokens      = 100
	resumeReviewTokens   = 1000
)

// MaxResumeBytes is the upload ceiling for resume review documents.
const MaxResumeBytes = 5 * 1024 * 1024

// PlanRequiredMessage is returned when a free-tier caller invokes a
// premium-only capability.
const PlanRequiredMessage = "This feature is only available for premium subscriptions"

const resumePromptTemplate = "Review the following resume and provide constructive feedback on its strengths, weaknesses, and areas for improvement. Resume content:\n\n%s"

// Upload carries an uploaded file through the gateway.
type Upload struct {
	Filename string
	Size     int64
	Data     []byte
}

// Request is the tagged input for one gateway invocation.
type Request struct {
	Capability Capability
	Plan       string
	Prompt     string
	MaxTokens  int
	Object     string
	Upload     *Upload
}

// Result is the normalized output of a successful invocation: generated
// prose, or a durable URL for media capabilities.
type Result struct {
	Content string
}

// Gateway dispatches gateway requests to the provider clients. It performs
// no persistence; network calls to the providers and media storage are its
// only side effects.
type Gateway struct {
	llm    *LLMClient
	images *ImageGenClient
	media  *MediaClient
	logger *slog.Logger
}

// New creates a Gateway over the given provider clients.
func New(llm *LLMClient, images *ImageGenClient, media *MediaClient, logger *slog.Logger) *Gateway {
	return &Gateway{
		llm:    llm,
		images: images,
		media:  media,
		logger: logger,
	}
}

// Invoke runs one generation capability. Premium gating and input
// validation happen before any external call is made.
func (g *Gateway) Invoke(ctx context.Context, req Request) (*Result, error) {
	if req.Capability.PremiumOnly() && req.Plan != model.PlanPremium {
		return nil, &Error{Kind: FailurePlanRequired, Message: PlanRequiredMessage}
	}

	if err := validateRequest(req); err != nil {
		return nil, err
	}

	switch req.Capability {
	case CapabilityArticle:
		return g.complete(ctx, req.Prompt, articleTokens(req.MaxTokens))
	case CapabilityBlogTitle:
		return g.complete(ctx, req.Prompt, blogTitleTokens)
	case CapabilityResumeReview:
		return g.reviewResume(ctx, req.Upload.Data)
	case CapabilityImage:
		return g.generateImage(ctx, req.Prompt)
	case CapabilityBackgroundRemoval:
		return g.removeBackground(ctx, req.Upload.Data)
	case CapabilityObjectRemoval:
		return g.removeObject(ctx, req.Upload.Data, req.Object)
	default:
		return nil, validationError(fmt.Sprintf("Unknown capability %q.", req.Capability))
	}
}

func validateRequest(req Request) error {
	switch req.Capability {
	case CapabilityArticle, CapabilityBlogTitle:
		if strings.TrimSpace(req.Prompt) == "" {
			return validationError("Prompt is required.")
		}
	case CapabilityImage:
		if strings.TrimSpace(req.Prompt) == "" {
			return validationError("Prompt is required to generate an image.")
		}
	case CapabilityBackgroundRemoval:
		if req.Upload == nil || len(req.Upload.Data) == 0 {
			return validationError("Image file is required to remove the background.")
		}
	case CapabilityObjectRemoval:
		if req.Upload == nil || len(req.Upload.Data) == 0 {
			return validationError("Image file is required to remove an object.")
		}
		if strings.TrimSpace(req.Object) == "" {
			return validationError("Object description is required.")
		}
	case CapabilityResumeReview:
		if req.Upload == nil || len(req.Upload.Data) == 0 {
			return validationError("Resume file is required.")
		}
		if req.Upload.Size > MaxResumeBytes || int64(len(req.Upload.Data)) > MaxResumeBytes {
			return &Error{Kind: FailurePayloadTooLarge, Message: "Resume file size exceeds allowed size (5MB)."}
		}
	}
	return nil
}

func articleTokens(requested int) int {
	if requested <= 0 {
		return defaultArticleTokens
	}
	return requested
}

func (g *Gateway) complete(ctx context.Context, prompt string, maxTokens int) (*Result, error) {
	content, err := g.llm.Complete(ctx, prompt, maxTokens)
	if err != nil {
		return nil, asGatewayError(err)
	}
	return &Result{Content: content}, nil
}

func (g *Gateway) reviewResume(ctx context.Context, document []byte) (*Result, error) {
	text, err := extractPDFText(document)
	if err != nil {
		return nil, validationError("Could not read the uploaded resume. Please upload a valid PDF.")
	}

	return g.complete(ctx, fmt.Sprintf(resumePromptTemplate, text), resumeReviewTokens)
}

func (g *Gateway) generateImage(ctx context.Context, prompt string) (*Result, error) {
	image, err := g.images.Generate(ctx, prompt)
	if err != nil {
		return nil, asGatewayError(err)
	}

	uploaded, err := g.media.Upload(ctx, image, "")
	if err != nil {
		return nil, asGatewayError(err)
	}

	return &Result{Content: uploaded.SecureURL}, nil
}

func (g *Gateway) removeBackground(ctx context.Context, image []byte) (*Result, error) {
	uploaded, err := g.media.Upload(ctx, image, TransformationBackgroundRemoval)
	if err != nil {
		return nil, asGatewayError(err)
	}
	return &Result{Content: uploaded.SecureURL}, nil
}

func (g *Gateway) removeObject(ctx context.Context, image []byte, object string) (*Result, error) {
	uploaded, err := g.media.Upload(ctx, image, "")
	if err != nil {
		return nil, asGatewayError(err)
	}
	return &Result{Content: g.media.ObjectRemovalURL(uploaded.SecureURL, object)}, nil
}

// asGatewayError guarantees the caller always sees a structured *Error.
func asGatewayError(err error) error {
	if _, ok := err.(*Error); ok {
		return err
	}
	return upstreamError("", err)
}
