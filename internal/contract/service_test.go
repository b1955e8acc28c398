package contract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/danielcasamentos/priceus-sub002/internal/profile"
)

var testSecret = []byte("test-draft-secret")

func newTestService(t *testing.T) (*Service, *MockRepository, *MockRenderer, *MockUploader) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	renderer := NewMockRenderer(ctrl)
	uploader := NewMockUploader(ctrl)

	svc := NewService(repo, ServiceOptions{
		Renderer:     renderer,
		Uploader:     uploader,
		DraftSecret:  testSecret,
		PublicOrigin: "https://app.example.com",
	})

	return svc, repo, renderer, uploader
}

func pendingBundle(now time.Time) *Bundle {
	return &Bundle{
		Contract: &Contract{
			ID:         uuid.New(),
			UserID:     uuid.New(),
			TemplateID: uuid.New(),
			Token:      "tok-abc",
			Status:     StatusPending,
			LeadData: LeadData{
				ClientName: "Maria Souza",
				Total:      350000,
			},
			UserSignatureImage: "dXNlcg==",
			ExpiresAt:          now.Add(72 * time.Hour),
		},
		Template: &Template{
			ID:   uuid.New(),
			Name: "Contrato de Cobertura",
			Body: "Contratante: {{CLIENT_NAME}}. Valor: {{TOTAL}}.",
		},
		Issuer: &profile.Profile{BusinessName: "Estúdio Luz"},
	}
}

func validClient() ClientData {
	return ClientData{
		FullName: "Maria de Souza Lima",
		Document: "123.456.789-00",
		Address:  "Rua das Flores, 10",
	}
}

func TestServiceIssue(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	t.Run("creates pending contract with fresh token", func(t *testing.T) {
		svc, repo, _, _ := newTestService(t)

		userID := uuid.New()
		templateID := uuid.New()

		repo.EXPECT().
			GetTemplate(ctx, userID, templateID).
			Return(&Template{ID: templateID, UserID: userID}, nil)

		var created *Contract
		repo.EXPECT().
			CreateContract(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, c *Contract) error {
				created = c
				return nil
			})

		c, err := svc.Issue(ctx, IssueParams{
			UserID:     userID,
			TemplateID: templateID,
			LeadData:   LeadData{ClientName: "Maria Souza"},
			ExpiresAt:  now.Add(7 * 24 * time.Hour),
		}, now)
		require.NoError(t, err)

		assert.Same(t, created, c)
		assert.Equal(t, StatusPending, c.Status)
		assert.NotEmpty(t, c.Token)
		assert.GreaterOrEqual(t, len(c.Token), 40)
	})

	t.Run("rejects expiry in the past", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)

		_, err := svc.Issue(ctx, IssueParams{
			UserID:     uuid.New(),
			TemplateID: uuid.New(),
			ExpiresAt:  now.Add(-time.Hour),
		}, now)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("rejects template the user does not own", func(t *testing.T) {
		svc, repo, _, _ := newTestService(t)

		repo.EXPECT().
			GetTemplate(ctx, gomock.Any(), gomock.Any()).
			Return(nil, ErrTemplateNotFound)

		_, err := svc.Issue(ctx, IssueParams{
			UserID:     uuid.New(),
			TemplateID: uuid.New(),
			ExpiresAt:  now.Add(time.Hour),
		}, now)
		assert.ErrorIs(t, err, ErrTemplateNotFound)
	})
}

func TestServicePublicBundle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	t.Run("returns bundle while pending and unexpired", func(t *testing.T) {
		svc, repo, _, _ := newTestService(t)

		bundle := pendingBundle(now)
		repo.EXPECT().GetBundle(ctx, "tok-abc").Return(bundle, nil)

		got, err := svc.PublicBundle(ctx, "tok-abc", now)
		require.NoError(t, err)
		assert.Same(t, bundle, got)
	})

	t.Run("rejects expired pending contract", func(t *testing.T) {
		svc, repo, _, _ := newTestService(t)

		bundle := pendingBundle(now)
		bundle.Contract.ExpiresAt = now.Add(-time.Minute)
		repo.EXPECT().GetBundle(ctx, "tok-abc").Return(bundle, nil)

		_, err := svc.PublicBundle(ctx, "tok-abc", now)
		assert.ErrorIs(t, err, ErrExpired)
	})

	t.Run("exact expiry instant is already expired", func(t *testing.T) {
		svc, repo, _, _ := newTestService(t)

		bundle := pendingBundle(now)
		bundle.Contract.ExpiresAt = now
		repo.EXPECT().GetBundle(ctx, "tok-abc").Return(bundle, nil)

		_, err := svc.PublicBundle(ctx, "tok-abc", now)
		assert.ErrorIs(t, err, ErrExpired)
	})

	t.Run("rejects already signed contract even past expiry", func(t *testing.T) {
		svc, repo, _, _ := newTestService(t)

		signedAt := now.Add(-48 * time.Hour)
		bundle := pendingBundle(now)
		bundle.Contract.Status = StatusSigned
		bundle.Contract.SignedAt = &signedAt
		bundle.Contract.ExpiresAt = now.Add(-time.Hour)
		repo.EXPECT().GetBundle(ctx, "tok-abc").Return(bundle, nil)

		_, err := svc.PublicBundle(ctx, "tok-abc", now)
		assert.ErrorIs(t, err, ErrAlreadySigned)
	})

	t.Run("unknown token", func(t *testing.T) {
		svc, repo, _, _ := newTestService(t)

		repo.EXPECT().GetBundle(ctx, "nope").Return(nil, ErrNotFound)

		_, err := svc.PublicBundle(ctx, "nope", now)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestServiceStartDraft(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	t.Run("issues draft token bound to contract and ip", func(t *testing.T) {
		svc, repo, _, _ := newTestService(t)

		bundle := pendingBundle(now)
		repo.EXPECT().GetBundle(ctx, "tok-abc").Return(bundle, nil)

		draft, err := svc.StartDraft(ctx, "tok-abc", validClient(), "c2ln", "203.0.113.9", now)
		require.NoError(t, err)
		require.NotEmpty(t, draft)

		claims, err := svc.parseDraft(draft, bundle.Contract.ID, now)
		require.NoError(t, err)
		assert.Equal(t, "203.0.113.9", claims.ClientIP)
	})

	t.Run("rejects incomplete client data", func(t *testing.T) {
		svc, repo, _, _ := newTestService(t)

		repo.EXPECT().GetBundle(ctx, "tok-abc").Return(pendingBundle(now), nil)

		client := validClient()
		client.Document = ""

		_, err := svc.StartDraft(ctx, "tok-abc", client, "c2ln", "203.0.113.9", now)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("rejects missing signature", func(t *testing.T) {
		svc, repo, _, _ := newTestService(t)

		repo.EXPECT().GetBundle(ctx, "tok-abc").Return(pendingBundle(now), nil)

		_, err := svc.StartDraft(ctx, "tok-abc", validClient(), "", "203.0.113.9", now)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("draft token expires", func(t *testing.T) {
		svc, repo, _, _ := newTestService(t)

		bundle := pendingBundle(now)
		repo.EXPECT().GetBundle(ctx, "tok-abc").Return(bundle, nil)

		draft, err := svc.StartDraft(ctx, "tok-abc", validClient(), "c2ln", "203.0.113.9", now)
		require.NoError(t, err)

		_, err = svc.parseDraft(draft, bundle.Contract.ID, now.Add(31*time.Minute))
		assert.ErrorIs(t, err, ErrInvalidDraft)
	})
}

func TestServiceFinalize(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	startDraft := func(t *testing.T, svc *Service, repo *MockRepository, bundle *Bundle) string {
		t.Helper()

		repo.EXPECT().GetBundle(ctx, "tok-abc").Return(bundle, nil)

		draft, err := svc.StartDraft(ctx, "tok-abc", validClient(), "c2ln", "203.0.113.9", now)
		require.NoError(t, err)

		return draft
	}

	t.Run("renders, archives and persists atomically", func(t *testing.T) {
		svc, repo, renderer, uploader := newTestService(t)

		bundle := pendingBundle(now)
		draft := startDraft(t, svc, repo, bundle)

		repo.EXPECT().GetBundle(ctx, "tok-abc").Return(bundle, nil)

		renderer.EXPECT().
			Render(gomock.Any()).
			DoAndReturn(func(doc Document) ([]byte, error) {
				assert.Contains(t, doc.Body, "Maria de Souza Lima")
				assert.Contains(t, doc.Body, "R$ 3.500,00")
				assert.Equal(t, "203.0.113.9", doc.SignerIP)
				assert.Equal(t, "https://app.example.com/verify/tok-abc", doc.VerifyURL)
				return []byte("%PDF-1.4 fake"), nil
			})

		uploader.EXPECT().
			Upload(ctx, "contracts/"+bundle.Contract.ID.String()+".pdf", gomock.Any(), "application/pdf").
			Return("https://cdn.example.com/contracts/x.pdf", nil)

		repo.EXPECT().
			FinalizeContract(ctx, bundle.Contract.ID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, fin Finalization) error {
				assert.Equal(t, validClient(), fin.ClientData)
				assert.Equal(t, "c2ln", fin.SignatureImage)
				assert.Equal(t, "203.0.113.9", fin.ClientIP)
				assert.Equal(t, "https://cdn.example.com/contracts/x.pdf", fin.PDFURL)
				assert.True(t, fin.SignedAt.Equal(now))
				return nil
			})

		res, err := svc.Finalize(ctx, "tok-abc", draft, validClient(), "c2ln", now)
		require.NoError(t, err)

		assert.Equal(t, []byte("%PDF-1.4 fake"), res.PDF)
		assert.Equal(t, "contrato-20250310.pdf", res.FileName)
		assert.Equal(t, "https://cdn.example.com/contracts/x.pdf", res.PDFURL)
		assert.Equal(t, StatusSigned, res.Contract.Status)
		require.NotNil(t, res.Contract.SignedAt)
	})

	t.Run("archival failure does not block signing", func(t *testing.T) {
		svc, repo, renderer, uploader := newTestService(t)

		bundle := pendingBundle(now)
		draft := startDraft(t, svc, repo, bundle)

		repo.EXPECT().GetBundle(ctx, "tok-abc").Return(bundle, nil)
		renderer.EXPECT().Render(gomock.Any()).Return([]byte("pdf"), nil)
		uploader.EXPECT().
			Upload(ctx, gomock.Any(), gomock.Any(), gomock.Any()).
			Return("", errors.New("bucket unavailable"))

		repo.EXPECT().
			FinalizeContract(ctx, bundle.Contract.ID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, fin Finalization) error {
				assert.Empty(t, fin.PDFURL)
				return nil
			})

		res, err := svc.Finalize(ctx, "tok-abc", draft, validClient(), "c2ln", now)
		require.NoError(t, err)

		assert.Equal(t, []byte("pdf"), res.PDF)
		assert.Empty(t, res.PDFURL)
	})

	t.Run("concurrent signer loses the guarded update", func(t *testing.T) {
		svc, repo, renderer, uploader := newTestService(t)

		bundle := pendingBundle(now)
		draft := startDraft(t, svc, repo, bundle)

		repo.EXPECT().GetBundle(ctx, "tok-abc").Return(bundle, nil)
		renderer.EXPECT().Render(gomock.Any()).Return([]byte("pdf"), nil)
		uploader.EXPECT().
			Upload(ctx, gomock.Any(), gomock.Any(), gomock.Any()).
			Return("https://cdn.example.com/x.pdf", nil)
		repo.EXPECT().
			FinalizeContract(ctx, bundle.Contract.ID, gomock.Any()).
			Return(ErrAlreadySigned)

		_, err := svc.Finalize(ctx, "tok-abc", draft, validClient(), "c2ln", now)
		assert.ErrorIs(t, err, ErrAlreadySigned)
	})

	t.Run("rejects draft token bound to another contract", func(t *testing.T) {
		svc, repo, _, _ := newTestService(t)

		other := pendingBundle(now)
		draft := startDraft(t, svc, repo, other)

		bundle := pendingBundle(now)
		repo.EXPECT().GetBundle(ctx, "tok-abc").Return(bundle, nil)

		_, err := svc.Finalize(ctx, "tok-abc", draft, validClient(), "c2ln", now)
		assert.ErrorIs(t, err, ErrInvalidDraft)
	})

	t.Run("rejects signing after expiry", func(t *testing.T) {
		svc, repo, _, _ := newTestService(t)

		bundle := pendingBundle(now)
		draft := startDraft(t, svc, repo, bundle)

		bundle.Contract.ExpiresAt = now.Add(-time.Second)
		repo.EXPECT().GetBundle(ctx, "tok-abc").Return(bundle, nil)

		_, err := svc.Finalize(ctx, "tok-abc", draft, validClient(), "c2ln", now)
		assert.ErrorIs(t, err, ErrExpired)
	})
}

func TestServiceVerify(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	t.Run("signed contract is authentic", func(t *testing.T) {
		svc, repo, _, _ := newTestService(t)

		signedAt := now.Add(-24 * time.Hour)
		bundle := pendingBundle(now)
		bundle.Contract.Status = StatusSigned
		bundle.Contract.SignedAt = &signedAt
		bundle.Contract.ClientData = &ClientData{FullName: "Maria de Souza Lima", Document: "123"}
		repo.EXPECT().GetBundle(ctx, "tok-abc").Return(bundle, nil)

		v, err := svc.Verify(ctx, "tok-abc")
		require.NoError(t, err)

		assert.Equal(t, bundle.Contract.ID, v.ContractID)
		assert.Equal(t, "Maria de Souza Lima", v.SignerName)
		assert.Equal(t, "Estúdio Luz", v.BusinessName)
		assert.True(t, v.SignedAt.Equal(signedAt))
	})

	t.Run("pending contract is not authentic", func(t *testing.T) {
		svc, repo, _, _ := newTestService(t)

		repo.EXPECT().GetBundle(ctx, "tok-abc").Return(pendingBundle(now), nil)

		_, err := svc.Verify(ctx, "tok-abc")
		assert.ErrorIs(t, err, ErrNotAuthentic)
	})

	t.Run("unknown token is not authentic", func(t *testing.T) {
		svc, repo, _, _ := newTestService(t)

		repo.EXPECT().GetBundle(ctx, "garbage").Return(nil, ErrNotFound)

		_, err := svc.Verify(ctx, "garbage")
		assert.ErrorIs(t, err, ErrNotAuthentic)
	})
}

func TestServiceStatus(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	t.Run("pending past expiry reads as expired", func(t *testing.T) {
		svc, repo, _, _ := newTestService(t)

		c := pendingBundle(now).Contract
		c.ExpiresAt = now.Add(-time.Hour)
		repo.EXPECT().GetContractByToken(ctx, "tok-abc").Return(c, nil)

		status, err := svc.Status(ctx, "tok-abc", now)
		require.NoError(t, err)
		assert.Equal(t, StatusExpired, status)
	})

	t.Run("signed stays signed past expiry", func(t *testing.T) {
		svc, repo, _, _ := newTestService(t)

		signedAt := now.Add(-time.Hour)
		c := pendingBundle(now).Contract
		c.Status = StatusSigned
		c.SignedAt = &signedAt
		c.ExpiresAt = now.Add(-time.Minute)
		repo.EXPECT().GetContractByToken(ctx, "tok-abc").Return(c, nil)

		status, err := svc.Status(ctx, "tok-abc", now)
		require.NoError(t, err)
		assert.Equal(t, StatusSigned, status)
	})
}

func TestServiceTemplates(t *testing.T) {
	ctx := context.Background()

	t.Run("create validates name and body", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)

		_, err := svc.CreateTemplate(ctx, TemplateParams{UserID: uuid.New(), Name: "Contrato"})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("create persists", func(t *testing.T) {
		svc, repo, _, _ := newTestService(t)

		repo.EXPECT().CreateTemplate(ctx, gomock.Any()).Return(nil)

		tmpl, err := svc.CreateTemplate(ctx, TemplateParams{
			UserID: uuid.New(),
			Name:   "Contrato",
			Body:   "Contratante: {{CLIENT_NAME}}",
		})
		require.NoError(t, err)
		assert.Equal(t, "Contrato", tmpl.Name)
	})
}
