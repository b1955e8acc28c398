package contract

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/danielcasamentos/priceus-sub002/internal/profile"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=contract
type Repository interface {
	CreateContract(ctx context.Context, c *Contract) error
	GetContractByToken(ctx context.Context, token string) (*Contract, error)
	ListContracts(ctx context.Context, userID uuid.UUID) ([]*Contract, error)

	// GetBundle resolves token to the contract, its template and the
	// issuer's business profile in one public lookup.
	GetBundle(ctx context.Context, token string) (*Bundle, error)

	// FinalizeContract performs the one-shot pending->signed
	// transition. All finalization fields are written in a single
	// statement guarded by status = 'pending'; it returns
	// ErrAlreadySigned when the guard does not match.
	FinalizeContract(ctx context.Context, id uuid.UUID, fin Finalization) error

	CreateTemplate(ctx context.Context, t *Template) error
	GetTemplate(ctx context.Context, userID, id uuid.UUID) (*Template, error)
	ListTemplates(ctx context.Context, userID uuid.UUID) ([]*Template, error)
	UpdateTemplate(ctx context.Context, t *Template) error
}

// Bundle is everything the public signing page needs, fetched by
// token in a single call.
type Bundle struct {
	Contract *Contract
	Template *Template
	Issuer   *profile.Profile
}

// Finalization carries the fields written by the signing transition.
type Finalization struct {
	ClientData     ClientData
	SignatureImage string
	ClientIP       string
	PDFURL         string // empty when archival failed
	SignedAt       time.Time
}

// Renderer produces the signed document artifact.
type Renderer interface {
	Render(doc Document) ([]byte, error)
}

// Document is the in-memory visual tree handed to the renderer.
type Document struct {
	Title              string
	Body               string
	UserSignaturePNG   string // base64
	ClientSignaturePNG string // base64
	ContractID         uuid.UUID
	SignedAt           time.Time
	SignerIP           string
	VerifyURL          string
}

// Uploader archives the rendered artifact. Upload has upsert
// semantics and returns a public URL.
type Uploader interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
}

type Service struct {
	repo         Repository
	renderer     Renderer
	uploader     Uploader
	draftSecret  []byte
	draftTTL     time.Duration
	publicOrigin string
	logger       *slog.Logger
}

type ServiceOptions struct {
	Renderer     Renderer
	Uploader     Uploader
	DraftSecret  []byte
	DraftTTL     time.Duration
	PublicOrigin string // e.g. https://app.priceus.com.br
	Logger       *slog.Logger
}

func NewService(repo Repository, opts ServiceOptions) *Service {
	ttl := opts.DraftTTL
	if ttl == 0 {
		ttl = 30 * time.Minute
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		repo:         repo,
		renderer:     opts.Renderer,
		uploader:     opts.Uploader,
		draftSecret:  opts.DraftSecret,
		draftTTL:     ttl,
		publicOrigin: opts.PublicOrigin,
		logger:       logger,
	}
}

type IssueParams struct {
	UserID             uuid.UUID
	TemplateID         uuid.UUID
	LeadData           LeadData
	UserSignatureImage string
	ExpiresAt          time.Time
}

// Issue creates a pending contract with a fresh unguessable token.
func (s *Service) Issue(ctx context.Context, params IssueParams, now time.Time) (*Contract, error) {
	if !params.ExpiresAt.After(now) {
		return nil, fmt.Errorf("%w: expiry must be in the future", ErrValidation)
	}

	if _, err := s.repo.GetTemplate(ctx, params.UserID, params.TemplateID); err != nil {
		return nil, err
	}

	token, err := newToken()
	if err != nil {
		return nil, err
	}

	c := &Contract{
		UserID:             params.UserID,
		TemplateID:         params.TemplateID,
		Token:              token,
		Status:             StatusPending,
		LeadData:           params.LeadData,
		UserSignatureImage: params.UserSignatureImage,
		ExpiresAt:          params.ExpiresAt,
	}
	if err := s.repo.CreateContract(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*Contract, error) {
	return s.repo.ListContracts(ctx, userID)
}

// PublicBundle is the signing-flow entry check: it resolves the token
// and rejects anything that is missing, expired, or no longer
// pending. No contract data leaves before the checks pass.
func (s *Service) PublicBundle(ctx context.Context, token string, now time.Time) (*Bundle, error) {
	bundle, err := s.repo.GetBundle(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := signableErr(bundle.Contract, now); err != nil {
		return nil, err
	}

	return bundle, nil
}

func signableErr(c *Contract, now time.Time) error {
	if !now.Before(c.ExpiresAt) && c.Status == StatusPending {
		return ErrExpired
	}

	if c.Status != StatusPending {
		return ErrAlreadySigned
	}

	return nil
}

type draftClaims struct {
	ContractID string `json:"cid"`
	ClientIP   string `json:"cip"`
	jwt.RegisteredClaims
}

// StartDraft validates the signer's input and hands back a
// short-lived token binding the drafted signing session to the
// contract, so the review step survives a page reload.
func (s *Service) StartDraft(ctx context.Context, token string, client ClientData, signatureImage, clientIP string, now time.Time) (string, error) {
	bundle, err := s.repo.GetBundle(ctx, token)
	if err != nil {
		return "", err
	}

	if err := signableErr(bundle.Contract, now); err != nil {
		return "", err
	}

	if err := validateClient(client, signatureImage); err != nil {
		return "", err
	}

	claims := draftClaims{
		ContractID: bundle.Contract.ID.String(),
		ClientIP:   clientIP,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.draftTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.draftSecret)
	if err != nil {
		return "", fmt.Errorf("signing draft token: %w", err)
	}

	return signed, nil
}

func validateClient(client ClientData, signatureImage string) error {
	if client.FullName == "" {
		return fmt.Errorf("%w: full name", ErrValidation)
	}

	if client.Document == "" {
		return fmt.Errorf("%w: document", ErrValidation)
	}

	if signatureImage == "" {
		return fmt.Errorf("%w: signature", ErrValidation)
	}

	return nil
}

func (s *Service) parseDraft(draftToken string, contractID uuid.UUID, now time.Time) (*draftClaims, error) {
	var claims draftClaims

	_, err := jwt.ParseWithClaims(draftToken, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}

		return s.draftSecret, nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDraft, err)
	}

	if claims.ContractID != contractID.String() {
		return nil, fmt.Errorf("%w: token bound to another contract", ErrInvalidDraft)
	}

	return &claims, nil
}

// FinalizeResult carries the rendered artifact back to the signer.
// PDF is always returned for direct download; PDFURL is empty when
// archival failed.
type FinalizeResult struct {
	Contract *Contract
	PDF      []byte
	FileName string
	PDFURL   string
}

// Finalize drives the irreversible pending->signed transition: render
// the substituted document, deliver it, archive it best-effort, then
// persist the signing fields atomically.
func (s *Service) Finalize(ctx context.Context, token, draftToken string, client ClientData, signatureImage string, now time.Time) (*FinalizeResult, error) {
	bundle, err := s.repo.GetBundle(ctx, token)
	if err != nil {
		return nil, err
	}

	c := bundle.Contract

	if err := signableErr(c, now); err != nil {
		return nil, err
	}

	if err := validateClient(client, signatureImage); err != nil {
		return nil, err
	}

	claims, err := s.parseDraft(draftToken, c.ID, now)
	if err != nil {
		return nil, err
	}

	body := Substitute(bundle.Template.Body, SubstitutionInput{
		Issuer:   bundle.Issuer,
		Lead:     c.LeadData,
		Client:   &client,
		SignedAt: now,
	})

	pdf, err := s.renderer.Render(Document{
		Title:              bundle.Template.Name,
		Body:               body,
		UserSignaturePNG:   c.UserSignatureImage,
		ClientSignaturePNG: signatureImage,
		ContractID:         c.ID,
		SignedAt:           now,
		SignerIP:           claims.ClientIP,
		VerifyURL:          s.VerifyURL(c.Token),
	})
	if err != nil {
		return nil, fmt.Errorf("rendering contract document: %w", err)
	}

	// Archival is best effort: the signer receives the artifact
	// directly, so an upload failure must not block finalization.
	var pdfURL string

	if s.uploader != nil {
		path := fmt.Sprintf("contracts/%s.pdf", c.ID)

		url, upErr := s.uploader.Upload(ctx, path, pdf, "application/pdf")
		if upErr != nil {
			s.logger.Warn("contract archival failed, finalizing without pdf url",
				"contract_id", c.ID, "error", upErr)
		} else {
			pdfURL = url
		}
	}

	fin := Finalization{
		ClientData:     client,
		SignatureImage: signatureImage,
		ClientIP:       claims.ClientIP,
		PDFURL:         pdfURL,
		SignedAt:       now,
	}
	if err := s.repo.FinalizeContract(ctx, c.ID, fin); err != nil {
		return nil, err
	}

	c.Status = StatusSigned
	c.ClientData = &client
	c.ClientSignatureImage = signatureImage
	c.ClientIP = claims.ClientIP
	c.PDFURL = pdfURL
	c.SignedAt = &now

	return &FinalizeResult{
		Contract: c,
		PDF:      pdf,
		FileName: fmt.Sprintf("contrato-%s.pdf", now.Format("20060102")),
		PDFURL:   pdfURL,
	}, nil
}

// SigningURL builds the public signing page URL shared with the
// client.
func (s *Service) SigningURL(token string) string {
	return fmt.Sprintf("%s/sign/%s", s.publicOrigin, token)
}

// VerifyURL builds the public verification URL encoded in the QR.
func (s *Service) VerifyURL(token string) string {
	return fmt.Sprintf("%s/verify/%s", s.publicOrigin, token)
}

// Verification is the read-only authenticity report. It never carries
// the signer IP, signature images, or any other contract field.
type Verification struct {
	ContractID   uuid.UUID
	SignerName   string
	BusinessName string
	SignedAt     time.Time
}

// Verify resolves a verification token. A token that does not map to
// a signed contract yields ErrNotAuthentic, with no distinction
// between unknown and merely unsigned.
func (s *Service) Verify(ctx context.Context, token string) (*Verification, error) {
	bundle, err := s.repo.GetBundle(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotAuthentic
		}

		return nil, err
	}

	c := bundle.Contract

	if c.Status != StatusSigned || c.SignedAt == nil {
		return nil, ErrNotAuthentic
	}

	v := &Verification{
		ContractID: c.ID,
		SignerName: c.SignerName(),
		SignedAt:   *c.SignedAt,
	}

	if bundle.Issuer != nil {
		v.BusinessName = bundle.Issuer.BusinessName
	}

	return v, nil
}

// Status returns the read-time classification for the confirmation
// page's polling.
func (s *Service) Status(ctx context.Context, token string, now time.Time) (Status, error) {
	c, err := s.repo.GetContractByToken(ctx, token)
	if err != nil {
		return "", err
	}

	return c.EffectiveStatus(now), nil
}

type TemplateParams struct {
	UserID uuid.UUID
	Name   string
	Body   string
}

func (s *Service) CreateTemplate(ctx context.Context, params TemplateParams) (*Template, error) {
	if params.Name == "" || params.Body == "" {
		return nil, fmt.Errorf("%w: template name and body", ErrValidation)
	}

	t := &Template{
		UserID: params.UserID,
		Name:   params.Name,
		Body:   params.Body,
	}
	if err := s.repo.CreateTemplate(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

func (s *Service) GetTemplate(ctx context.Context, userID, id uuid.UUID) (*Template, error) {
	return s.repo.GetTemplate(ctx, userID, id)
}

func (s *Service) ListTemplates(ctx context.Context, userID uuid.UUID) ([]*Template, error) {
	return s.repo.ListTemplates(ctx, userID)
}

func (s *Service) UpdateTemplate(ctx context.Context, t *Template) error {
	if t.Name == "" || t.Body == "" {
		return fmt.Errorf("%w: template name and body", ErrValidation)
	}

	return s.repo.UpdateTemplate(ctx, t)
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}
