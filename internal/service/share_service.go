package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"onboarding/internal/errors"
	"onboarding/internal/model"
	"onboarding/internal/notify"
	"onboarding/internal/repository"
)

// timeNow is the clock used for expiry decisions.
var timeNow = time.Now

// IssueShareInput is the request to share a snapshot of the caller's content.
type IssueShareInput struct {
	Title         string
	Description   string
	ExpiresInDays int
	MaxClones     int
	VersionID     *uuid.UUID
	InviteEmails  []string
	// Origin is used to build the invite URL when no public base URL is configured.
	Origin string
}

// IssuedShare is returned to the owner after issuing a share.
type IssuedShare struct {
	ShareID     uuid.UUID  `json:"shareId"`
	InviteToken string     `json:"inviteToken"`
	InviteURL   string     `json:"inviteUrl"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ExpiresAt   *time.Time `json:"expiresAt"`
	MaxClones   *int       `json:"maxClones"`
	VersionID   *uuid.UUID `json:"versionId,omitempty"`
}

// ShareInfo is the public metadata of a share.
type ShareInfo struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	OwnerName   string     `json:"ownerName"`
	OwnerEmail  string     `json:"ownerEmail"`
	CloneCount  int        `json:"cloneCount"`
	MaxClones   *int       `json:"maxClones"`
	ExpiresAt   *time.Time `json:"expiresAt"`
	VersionID   *uuid.UUID `json:"versionId,omitempty"`
}

// SharedSnapshot is the read-only projection behind an invite token.
type SharedSnapshot struct {
	ShareInfo     ShareInfo                `json:"shareInfo"`
	Templates     []model.TemplateItem     `json:"templates"`
	JTBDResources []model.ResourceCategory `json:"jtbdResources"`
}

// OwnedShare is a share record as listed to its owner.
type OwnedShare struct {
	model.ShareRecord
	InviteURL string `json:"inviteUrl"`
}

// ShareService issues, resolves and revokes invite links.
type ShareService interface {
	Issue(ctx context.Context, ownerID uuid.UUID, in IssueShareInput) (*IssuedShare, error)
	// Resolve never writes; it can be called any number of times.
	Resolve(ctx context.Context, token string) (*SharedSnapshot, error)
	ListMine(ctx context.Context, callerID, ownerID uuid.UUID, origin string) ([]OwnedShare, error)
	Revoke(ctx context.Context, ownerID, shareID uuid.UUID) error
	ListCloneLogs(ctx context.Context, ownerID, shareID uuid.UUID) ([]model.CloneLog, error)
}

type shareService struct {
	shares     repository.ShareRepository
	cloneLogs  repository.CloneLogRepository
	templates  repository.TemplateRepository
	categories repository.CategoryRepository
	versions   repository.VersionRepository
	users      UserService
	mailer     notify.Mailer
	baseURL    string
	log        zerolog.Logger
}

// NewShareService creates a new share service. baseURL may be empty, in
// which case invite URLs are built from the request origin.
func NewShareService(
	shares repository.ShareRepository,
	cloneLogs repository.CloneLogRepository,
	templates repository.TemplateRepository,
	categories repository.CategoryRepository,
	versions repository.VersionRepository,
	users UserService,
	mailer notify.Mailer,
	baseURL string,
	log zerolog.Logger,
) ShareService {
	return &shareService{
		shares:     shares,
		cloneLogs:  cloneLogs,
		templates:  templates,
		categories: categories,
		versions:   versions,
		users:      users,
		mailer:     mailer,
		baseURL:    baseURL,
		log:        log,
	}
}

func (s *shareService) Issue(ctx context.Context, ownerID uuid.UUID, in IssueShareInput) (*IssuedShare, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, errors.NewValidationError("title", "is required")
	}
	if in.ExpiresInDays < 0 {
		return nil, errors.NewValidationError("expiresInDays", "must not be negative")
	}
	if in.MaxClones < 0 {
		return nil, errors.NewValidationError("maxClones", "must not be negative")
	}

	owner, err := s.users.GetUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := ensureOwnVersion(ctx, s.versions, ownerID, in.VersionID); err != nil {
		return nil, err
	}

	// Count what the link will expose: the version, or un-versioned content.
	scope := model.Unversioned()
	if in.VersionID != nil {
		scope = model.InVersion(*in.VersionID)
	}
	templateCount, err := s.templates.CountByUser(ctx, ownerID, scope)
	if err != nil {
		return nil, errors.Store("count templates", err)
	}
	categoryCount, err := s.categories.CountByUser(ctx, ownerID, scope)
	if err != nil {
		return nil, errors.Store("count categories", err)
	}
	if templateCount == 0 && categoryCount == 0 {
		return nil, errors.ErrEmptyContent
	}

	share := &model.ShareRecord{
		OwnerUserID: ownerID,
		VersionID:   in.VersionID,
		InviteToken: uuid.NewString(),
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		IsActive:    true,
	}
	if in.ExpiresInDays > 0 {
		expiresAt := timeNow().UTC().Add(time.Duration(in.ExpiresInDays) * 24 * time.Hour)
		share.ExpiresAt = &expiresAt
	}
	if in.MaxClones > 0 {
		maxClones := in.MaxClones
		share.MaxClones = &maxClones
	}
	if err := s.shares.Create(ctx, share); err != nil {
		return nil, errors.Store("create share", err)
	}

	issued := &IssuedShare{
		ShareID:     share.ID,
		InviteToken: share.InviteToken,
		InviteURL:   s.inviteURL(in.Origin, share.InviteToken),
		Title:       share.Title,
		Description: share.Description,
		ExpiresAt:   share.ExpiresAt,
		MaxClones:   share.MaxClones,
		VersionID:   share.VersionID,
	}
	s.log.Info().
		Str("share_id", share.ID.String()).
		Str("owner_id", ownerID.String()).
		Msg("share issued")

	s.sendInvites(ctx, owner, issued, in.InviteEmails)
	return issued, nil
}

// sendInvites mails the invite URL. Delivery problems never fail the issue.
func (s *shareService) sendInvites(ctx context.Context, owner *model.User, issued *IssuedShare, to []string) {
	if len(to) == 0 || s.mailer == nil || !s.mailer.Enabled() {
		return
	}
	err := s.mailer.SendInvite(ctx, notify.Invite{
		To:          to,
		OwnerName:   owner.Name,
		Title:       issued.Title,
		Description: issued.Description,
		InviteURL:   issued.InviteURL,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("share_id", issued.ShareID.String()).Msg("send invite mail failed")
	}
}

func (s *shareService) Resolve(ctx context.Context, token string) (*SharedSnapshot, error) {
	share, err := s.findLive(ctx, token)
	if err != nil {
		return nil, err
	}

	owner, err := s.users.GetUser(ctx, share.OwnerUserID)
	if err != nil {
		return nil, err
	}
	items, categories, err := loadSnapshot(ctx, s.templates, s.categories, share)
	if err != nil {
		return nil, err
	}

	return &SharedSnapshot{
		ShareInfo: ShareInfo{
			Title:       share.Title,
			Description: share.Description,
			OwnerName:   owner.Name,
			OwnerEmail:  owner.Email,
			CloneCount:  share.CloneCount,
			MaxClones:   share.MaxClones,
			ExpiresAt:   share.ExpiresAt,
			VersionID:   share.VersionID,
		},
		Templates:     items,
		JTBDResources: categories,
	}, nil
}

func (s *shareService) findLive(ctx context.Context, token string) (*model.ShareRecord, error) {
	return findLiveShare(ctx, s.shares, token, timeNow())
}

func (s *shareService) ListMine(ctx context.Context, callerID, ownerID uuid.UUID, origin string) ([]OwnedShare, error) {
	if callerID != ownerID {
		return nil, errors.ErrUnauthorized
	}
	shares, err := s.shares.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, errors.Store("list shares", err)
	}
	owned := make([]OwnedShare, 0, len(shares))
	for _, share := range shares {
		owned = append(owned, OwnedShare{
			ShareRecord: share,
			InviteURL:   s.inviteURL(origin, share.InviteToken),
		})
	}
	return owned, nil
}

func (s *shareService) Revoke(ctx context.Context, ownerID, shareID uuid.UUID) error {
	if err := s.shares.Deactivate(ctx, shareID, ownerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.NewNotFoundError("share")
		}
		return errors.Store("revoke share", err)
	}
	s.log.Info().Str("share_id", shareID.String()).Msg("share revoked")
	return nil
}

func (s *shareService) ListCloneLogs(ctx context.Context, ownerID, shareID uuid.UUID) ([]model.CloneLog, error) {
	share, err := s.shares.FindByID(ctx, shareID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("share")
		}
		return nil, errors.Store("find share", err)
	}
	if share.OwnerUserID != ownerID {
		return nil, errors.NewNotFoundError("share")
	}
	logs, err := s.cloneLogs.ListByShare(ctx, shareID)
	if err != nil {
		return nil, errors.Store("list clone logs", err)
	}
	return logs, nil
}

func (s *shareService) inviteURL(origin, token string) string {
	base := s.baseURL
	if base == "" {
		base = origin
	}
	return strings.TrimRight(base, "/") + "/invite/" + token
}

// findLiveShare loads an active share and rejects it when expired or used up.
func findLiveShare(ctx context.Context, shares repository.ShareRepository, token string, now time.Time) (*model.ShareRecord, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.NewNotFoundError("share")
	}
	share, err := shares.FindActiveByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("share")
		}
		return nil, errors.Store("find share", err)
	}
	if share.Expired(now) {
		return nil, errors.ErrExpired
	}
	if share.LimitReached() {
		return nil, errors.ErrLimitReached
	}
	return share, nil
}

// shareScope is the content partition a share exposes: its version, or
// un-versioned content for shares issued without one.
func shareScope(share *model.ShareRecord) model.Scope {
	if share.VersionID == nil {
		return model.Unversioned()
	}
	return model.InVersion(*share.VersionID)
}

func loadSnapshot(ctx context.Context, templates repository.TemplateRepository, categories repository.CategoryRepository, share *model.ShareRecord) ([]model.TemplateItem, []model.ResourceCategory, error) {
	scope := shareScope(share)
	items, err := templates.ListByUser(ctx, share.OwnerUserID, scope)
	if err != nil {
		return nil, nil, errors.Store("load shared templates", err)
	}
	cats, err := categories.ListByUser(ctx, share.OwnerUserID, scope)
	if err != nil {
		return nil, nil, errors.Store("load shared categories", err)
	}
	return items, cats, nil
}
