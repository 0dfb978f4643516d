package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/inkgen/inkgen/internal/gateway"
	"github.com/inkgen/inkgen/internal/metrics"
	"github.com/inkgen/inkgen/internal/model"
	"github.com/inkgen/inkgen/internal/quota"
)

type fakeGenerator struct {
	invoked  int
	lastReq  gateway.Request
	result   *gateway.Result
	invokeFn func(req gateway.Request) (*gateway.Result, error)
}

func (f *fakeGenerator) Invoke(_ context.Context, req gateway.Request) (*gateway.Result, error) {
	f.invoked++
	f.lastReq = req
	if f.invokeFn != nil {
		return f.invokeFn(req)
	}
	if f.result != nil {
		return f.result, nil
	}
	return &gateway.Result{Content: "generated content"}, nil
}

type fakeStore struct {
	created   []*model.Creation
	createErr error

	byID      map[string]*model.Creation
	published []*model.Creation
	owned     []*model.Creation
	listErr   error

	updatedLikes map[string][]string
	updateErr    error
}

func (f *fakeStore) CreateCreation(_ context.Context, c *model.Creation) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, c)
	return nil
}

func (f *fakeStore) GetCreationByID(_ context.Context, id string) (*model.Creation, error) {
	if c, ok := f.byID[id]; ok {
		return c, nil
	}
	return nil, errNotFoundForTest()
}

func (f *fakeStore) ListPublishedCreations(_ context.Context) ([]*model.Creation, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.published, nil
}

func (f *fakeStore) ListCreationsByOwner(_ context.Context, _ string) ([]*model.Creation, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.owned, nil
}

func (f *fakeStore) UpdateCreationLikes(_ context.Context, id string, likes []string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if f.updatedLikes == nil {
		f.updatedLikes = make(map[string][]string)
	}
	f.updatedLikes[id] = likes
	return nil
}

type fakeLedger struct {
	checkErr   error
	checked    int
	consumed   int
	consumeErr error
	lastID     model.Identity
}

func (f *fakeLedger) Check(id model.Identity) error {
	f.checked++
	f.lastID = id
	return f.checkErr
}

func (f *fakeLedger) Consume(_ context.Context, id model.Identity) error {
	f.consumed++
	f.lastID = id
	return f.consumeErr
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func freeIdentity(usage int) model.Identity {
	return model.Identity{UserID: "user_1", Plan: model.PlanFree, FreeUsage: usage}
}

func TestGenerationService_Generate_StoresAndConsumes(t *testing.T) {
	gw := &fakeGenerator{result: &gateway.Result{Content: "an article"}}
	store := &fakeStore{}
	ledger := &fakeLedger{}
	recorder := metrics.NewInMemory()
	svc := NewGenerationService(gw, store, ledger, testLogger(), recorder)

	creation, err := svc.Generate(context.Background(), freeIdentity(9), GenerateInput{
		Capability: gateway.CapabilityArticle,
		Prompt:     "Write about Go",
		Length:     800,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if creation.ID == "" {
		t.Error("creation ID is empty")
	}
	if creation.Type != model.CreationTypeArticle {
		t.Errorf("Type = %q, want %q", creation.Type, model.CreationTypeArticle)
	}
	if creation.Prompt != "Write about Go" {
		t.Errorf("Prompt = %q, want input prompt", creation.Prompt)
	}
	if creation.Content != "an article" {
		t.Errorf("Content = %q, want gateway result", creation.Content)
	}
	if creation.Publish {
		t.Error("article creation must not be published")
	}
	if creation.Likes == nil || len(creation.Likes) != 0 {
		t.Errorf("Likes = %v, want empty slice", creation.Likes)
	}
	if len(store.created) != 1 {
		t.Fatalf("stored %d creations, want 1", len(store.created))
	}
	if ledger.checked != 1 || ledger.consumed != 1 {
		t.Errorf("ledger checked=%d consumed=%d, want 1/1", ledger.checked, ledger.consumed)
	}
	if got := recorder.Snapshot().CreationsStored; got != 1 {
		t.Errorf("CreationsStored = %d, want 1", got)
	}
}

func TestGenerationService_Generate_QuotaDeniedBeforeGateway(t *testing.T) {
	gw := &fakeGenerator{}
	ledger := &fakeLedger{checkErr: quota.ErrQuotaExceeded}
	recorder := metrics.NewInMemory()
	svc := NewGenerationService(gw, &fakeStore{}, ledger, testLogger(), recorder)

	_, err := svc.Generate(context.Background(), freeIdentity(10), GenerateInput{
		Capability: gateway.CapabilityArticle,
		Prompt:     "Write about Go",
	})
	if !errors.Is(err, quota.ErrQuotaExceeded) {
		t.Fatalf("Generate() error = %v, want ErrQuotaExceeded", err)
	}
	if gw.invoked != 0 {
		t.Error("gateway invoked despite quota denial")
	}
	if got := recorder.Snapshot().QuotaDenials; got != 1 {
		t.Errorf("QuotaDenials = %d, want 1", got)
	}
}

func TestGenerationService_Generate_PremiumOnlySkipsQuota(t *testing.T) {
	gw := &fakeGenerator{
		invokeFn: func(gateway.Request) (*gateway.Result, error) {
			return nil, &gateway.Error{Kind: gateway.FailurePlanRequired, Message: gateway.PlanRequiredMessage}
		},
	}
	ledger := &fakeLedger{checkErr: quota.ErrQuotaExceeded}
	svc := NewGenerationService(gw, &fakeStore{}, ledger, testLogger(), nil)

	_, err := svc.Generate(context.Background(), freeIdentity(10), GenerateInput{
		Capability: gateway.CapabilityImage,
		Prompt:     "a lighthouse",
	})

	var gwErr *gateway.Error
	if !errors.As(err, &gwErr) || gwErr.Kind != gateway.FailurePlanRequired {
		t.Fatalf("Generate() error = %v, want plan_required gateway error", err)
	}
	if ledger.checked != 0 {
		t.Error("quota checked for a premium-only capability")
	}
	if ledger.consumed != 0 {
		t.Error("quota consumed for a failed premium-only request")
	}
}

func TestGenerationService_Generate_PersistFailureSkipsConsume(t *testing.T) {
	store := &fakeStore{createErr: errors.New("connection reset")}
	ledger := &fakeLedger{}
	svc := NewGenerationService(&fakeGenerator{}, store, ledger, testLogger(), nil)

	_, err := svc.Generate(context.Background(), freeIdentity(3), GenerateInput{
		Capability: gateway.CapabilityArticle,
		Prompt:     "Write about Go",
	})
	if err == nil {
		t.Fatal("Generate() error = nil, want persistence error")
	}
	if ledger.consumed != 0 {
		t.Error("usage consumed despite persistence failure")
	}
}

func TestGenerationService_Generate_ConsumeFailureStillSucceeds(t *testing.T) {
	store := &fakeStore{}
	ledger := &fakeLedger{consumeErr: errors.New("provider unavailable")}
	svc := NewGenerationService(&fakeGenerator{}, store, ledger, testLogger(), nil)

	creation, err := svc.Generate(context.Background(), freeIdentity(3), GenerateInput{
		Capability: gateway.CapabilityBlogTitle,
		Prompt:     "Titles about Go",
	})
	if err != nil {
		t.Fatalf("Generate() error = %v, want success despite consume failure", err)
	}
	if creation == nil || len(store.created) != 1 {
		t.Fatal("creation not stored")
	}
}

func TestGenerationService_Generate_GatewayFailureNotStored(t *testing.T) {
	gw := &fakeGenerator{
		invokeFn: func(gateway.Request) (*gateway.Result, error) {
			return nil, &gateway.Error{Kind: gateway.FailureUpstream, Message: "model overloaded"}
		},
	}
	store := &fakeStore{}
	ledger := &fakeLedger{}
	recorder := metrics.NewInMemory()
	svc := NewGenerationService(gw, store, ledger, testLogger(), recorder)

	_, err := svc.Generate(context.Background(), freeIdentity(3), GenerateInput{
		Capability: gateway.CapabilityArticle,
		Prompt:     "Write about Go",
	})
	if err == nil {
		t.Fatal("Generate() error = nil, want upstream error")
	}
	if len(store.created) != 0 {
		t.Error("creation stored despite gateway failure")
	}
	if ledger.consumed != 0 {
		t.Error("usage consumed despite gateway failure")
	}
	if got := recorder.Snapshot().GenerationsFailed; got != 1 {
		t.Errorf("GenerationsFailed = %d, want 1", got)
	}
}

func TestGenerationService_Generate_StoredPrompts(t *testing.T) {
	tests := []struct {
		name       string
		input      GenerateInput
		wantPrompt string
		wantType   model.CreationType
	}{
		{
			name: "background removal stores fixed description",
			input: GenerateInput{
				Capability: gateway.CapabilityBackgroundRemoval,
				Upload:     &gateway.Upload{Filename: "photo.png", Size: 10, Data: []byte("0123456789")},
			},
			wantPrompt: "Remove background from image",
			wantType:   model.CreationTypeImage,
		},
		{
			name: "object removal names the object",
			input: GenerateInput{
				Capability: gateway.CapabilityObjectRemoval,
				Object:     "watermark",
				Upload:     &gateway.Upload{Filename: "photo.png", Size: 10, Data: []byte("0123456789")},
			},
			wantPrompt: "Removed watermark from image",
			wantType:   model.CreationTypeImage,
		},
		{
			name: "resume review stores fixed description",
			input: GenerateInput{
				Capability: gateway.CapabilityResumeReview,
				Upload:     &gateway.Upload{Filename: "resume.pdf", Size: 10, Data: []byte("0123456789")},
			},
			wantPrompt: "Review the uploaded resume",
			wantType:   model.CreationTypeResumeReview,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			svc := NewGenerationService(&fakeGenerator{}, store, &fakeLedger{}, testLogger(), nil)

			creation, err := svc.Generate(context.Background(), model.Identity{UserID: "user_1", Plan: model.PlanPremium}, tt.input)
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if creation.Prompt != tt.wantPrompt {
				t.Errorf("Prompt = %q, want %q", creation.Prompt, tt.wantPrompt)
			}
			if creation.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", creation.Type, tt.wantType)
			}
		})
	}
}

func TestGenerationService_Generate_PublishOnlyForImages(t *testing.T) {
	store := &fakeStore{}
	svc := NewGenerationService(&fakeGenerator{}, store, &fakeLedger{}, testLogger(), nil)

	premium := model.Identity{UserID: "user_1", Plan: model.PlanPremium}

	img, err := svc.Generate(context.Background(), premium, GenerateInput{
		Capability: gateway.CapabilityImage,
		Prompt:     "a lighthouse",
		Publish:    true,
	})
	if err != nil {
		t.Fatalf("Generate(image) error = %v", err)
	}
	if !img.Publish {
		t.Error("image with publish=true stored unpublished")
	}

	art, err := svc.Generate(context.Background(), premium, GenerateInput{
		Capability: gateway.CapabilityArticle,
		Prompt:     "Write about Go",
		Publish:    true,
	})
	if err != nil {
		t.Fatalf("Generate(article) error = %v", err)
	}
	if art.Publish {
		t.Error("publish flag honored for a text capability")
	}
}

func TestGenerationService_Generate_PassesPlanToGateway(t *testing.T) {
	gw := &fakeGenerator{}
	svc := NewGenerationService(gw, &fakeStore{}, &fakeLedger{}, testLogger(), nil)

	id := model.Identity{UserID: "user_1", Plan: model.PlanPremium}
	if _, err := svc.Generate(context.Background(), id, GenerateInput{
		Capability: gateway.CapabilityArticle,
		Prompt:     "Write about Go",
		Length:     1200,
	}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if gw.lastReq.Plan != model.PlanPremium {
		t.Errorf("gateway plan = %q, want premium", gw.lastReq.Plan)
	}
	if gw.lastReq.MaxTokens != 1200 {
		t.Errorf("gateway max tokens = %d, want 1200", gw.lastReq.MaxTokens)
	}
	if gw.lastReq.Capability != gateway.CapabilityArticle {
		t.Errorf("gateway capability = %q, want %q", gw.lastReq.Capability, gateway.CapabilityArticle)
	}
}
