package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboarding/internal/errors"
	"onboarding/internal/model"
	"onboarding/internal/notify"
)

type recordingMailer struct {
	sent []notify.Invite
	err  error
}

func (m *recordingMailer) Enabled() bool { return true }

func (m *recordingMailer) SendInvite(_ context.Context, invite notify.Invite) error {
	m.sent = append(m.sent, invite)
	return m.err
}

func newShareServiceForTest(store *memStore, mailer notify.Mailer) ShareService {
	users := NewUserService(store.Users(), nil)
	return NewShareService(
		store.Shares(), store.CloneLogs(), store.Templates(), store.Categories(), store.Versions(),
		users, mailer, "https://onboard.example.com", zerolog.Nop(),
	)
}

func addItem(t *testing.T, store *memStore, userID uuid.UUID, title string, period model.Period, versionID *uuid.UUID) {
	t.Helper()
	require.NoError(t, store.Templates().Create(context.Background(), &model.TemplateItem{
		UserID: userID, VersionID: versionID, Title: title, Period: period, Priority: model.PriorityMedium,
	}))
}

func addCategory(t *testing.T, store *memStore, userID uuid.UUID, label string, versionID *uuid.UUID, resources ...model.Resource) {
	t.Helper()
	require.NoError(t, store.Categories().Create(context.Background(), &model.ResourceCategory{
		UserID: userID, VersionID: versionID, Category: label, Resources: resources,
	}))
}

func withClock(t *testing.T, now time.Time) {
	t.Helper()
	prev := timeNow
	timeNow = func() time.Time { return now }
	t.Cleanup(func() { timeNow = prev })
}

func TestShareService_Issue(t *testing.T) {
	ctx := context.Background()

	t.Run("empty title", func(t *testing.T) {
		store := newMemStore()
		owner := store.addUser("alice")
		svc := newShareServiceForTest(store, nil)

		_, err := svc.Issue(ctx, owner.ID, IssueShareInput{Title: "   "})
		var validationErr *errors.ValidationError
		assert.True(t, errors.As(err, &validationErr))
	})

	t.Run("unknown user", func(t *testing.T) {
		store := newMemStore()
		svc := newShareServiceForTest(store, nil)

		_, err := svc.Issue(ctx, uuid.New(), IssueShareInput{Title: "Team kit"})
		var notFound *errors.NotFoundError
		assert.True(t, errors.As(err, &notFound))
	})

	t.Run("empty account", func(t *testing.T) {
		store := newMemStore()
		owner := store.addUser("alice")
		svc := newShareServiceForTest(store, nil)

		_, err := svc.Issue(ctx, owner.ID, IssueShareInput{Title: "Team kit"})
		assert.ErrorIs(t, err, errors.ErrEmptyContent)
		assert.Empty(t, store.shares)
	})

	t.Run("only versioned content without version id", func(t *testing.T) {
		store := newMemStore()
		owner := store.addUser("alice")
		version := &model.Version{UserID: owner.ID, Name: "v2"}
		require.NoError(t, store.Versions().Create(ctx, version))
		addItem(t, store, owner.ID, "Versioned only", model.PeriodFirstDay, &version.ID)
		addCategory(t, store, owner.ID, "Tools", &version.ID)
		svc := newShareServiceForTest(store, nil)

		_, err := svc.Issue(ctx, owner.ID, IssueShareInput{Title: "Team kit"})
		assert.ErrorIs(t, err, errors.ErrEmptyContent)
		assert.Empty(t, store.shares)

		issued, err := svc.Issue(ctx, owner.ID, IssueShareInput{Title: "Team kit", VersionID: &version.ID})
		require.NoError(t, err)
		assert.NotEmpty(t, issued.InviteToken)
	})

	t.Run("empty version", func(t *testing.T) {
		store := newMemStore()
		owner := store.addUser("alice")
		addItem(t, store, owner.ID, "Setup laptop", model.PeriodFirstDay, nil)
		version := &model.Version{UserID: owner.ID, Name: "v2"}
		require.NoError(t, store.Versions().Create(ctx, version))
		svc := newShareServiceForTest(store, nil)

		_, err := svc.Issue(ctx, owner.ID, IssueShareInput{Title: "Team kit", VersionID: &version.ID})
		assert.ErrorIs(t, err, errors.ErrEmptyContent)
	})

	t.Run("foreign version", func(t *testing.T) {
		store := newMemStore()
		owner := store.addUser("alice")
		other := store.addUser("bob")
		addItem(t, store, owner.ID, "Setup laptop", model.PeriodFirstDay, nil)
		version := &model.Version{UserID: other.ID, Name: "bob's"}
		require.NoError(t, store.Versions().Create(ctx, version))
		svc := newShareServiceForTest(store, nil)

		_, err := svc.Issue(ctx, owner.ID, IssueShareInput{Title: "Team kit", VersionID: &version.ID})
		var notFound *errors.NotFoundError
		assert.True(t, errors.As(err, &notFound))
	})

	t.Run("success", func(t *testing.T) {
		store := newMemStore()
		owner := store.addUser("alice")
		addItem(t, store, owner.ID, "Setup laptop", model.PeriodFirstDay, nil)
		now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		withClock(t, now)
		mailer := &recordingMailer{}
		svc := newShareServiceForTest(store, mailer)

		issued, err := svc.Issue(ctx, owner.ID, IssueShareInput{
			Title:         "Team kit",
			Description:   "for new designers",
			ExpiresInDays: 7,
			MaxClones:     3,
			InviteEmails:  []string{"new@example.com"},
		})
		require.NoError(t, err)

		assert.NotEmpty(t, issued.InviteToken)
		assert.Equal(t, "https://onboard.example.com/invite/"+issued.InviteToken, issued.InviteURL)
		require.NotNil(t, issued.ExpiresAt)
		assert.Equal(t, now.Add(7*24*time.Hour), *issued.ExpiresAt)
		require.NotNil(t, issued.MaxClones)
		assert.Equal(t, 3, *issued.MaxClones)

		stored := store.share(issued.ShareID)
		assert.True(t, stored.IsActive)
		assert.Equal(t, 0, stored.CloneCount)

		require.Len(t, mailer.sent, 1)
		assert.Equal(t, issued.InviteURL, mailer.sent[0].InviteURL)
		assert.Equal(t, "alice", mailer.sent[0].OwnerName)
	})

	t.Run("zero expiry and limit are absent", func(t *testing.T) {
		store := newMemStore()
		owner := store.addUser("alice")
		addCategory(t, store, owner.ID, "Tools", nil)
		svc := newShareServiceForTest(store, nil)

		issued, err := svc.Issue(ctx, owner.ID, IssueShareInput{Title: "Team kit"})
		require.NoError(t, err)
		assert.Nil(t, issued.ExpiresAt)
		assert.Nil(t, issued.MaxClones)
	})

	t.Run("mail failure does not fail issue", func(t *testing.T) {
		store := newMemStore()
		owner := store.addUser("alice")
		addItem(t, store, owner.ID, "Setup laptop", model.PeriodFirstDay, nil)
		svc := newShareServiceForTest(store, &recordingMailer{err: assert.AnError})

		_, err := svc.Issue(ctx, owner.ID, IssueShareInput{Title: "Team kit", InviteEmails: []string{"x@example.com"}})
		assert.NoError(t, err)
	})

	t.Run("tokens are unique", func(t *testing.T) {
		store := newMemStore()
		owner := store.addUser("alice")
		addItem(t, store, owner.ID, "Setup laptop", model.PeriodFirstDay, nil)
		svc := newShareServiceForTest(store, nil)

		seen := map[string]bool{}
		for i := 0; i < 50; i++ {
			issued, err := svc.Issue(ctx, owner.ID, IssueShareInput{Title: "Team kit"})
			require.NoError(t, err)
			assert.False(t, seen[issued.InviteToken])
			seen[issued.InviteToken] = true
		}
	})
}

func TestShareService_Resolve(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	setup := func(t *testing.T) (*memStore, ShareService, model.User) {
		store := newMemStore()
		owner := store.addUser("alice")
		addItem(t, store, owner.ID, "Setup laptop", model.PeriodFirstDay, nil)
		addCategory(t, store, owner.ID, "Tools", nil, model.Resource{Name: "Figma", Type: model.ResourceTypeTool, URL: "https://figma.com"})
		return store, newShareServiceForTest(store, nil), owner
	}

	t.Run("unknown token", func(t *testing.T) {
		_, svc, _ := setup(t)
		_, err := svc.Resolve(ctx, "nope")
		var notFound *errors.NotFoundError
		assert.True(t, errors.As(err, &notFound))
	})

	t.Run("legacy share returns un-versioned content", func(t *testing.T) {
		store, svc, owner := setup(t)
		version := &model.Version{UserID: owner.ID, Name: "v2"}
		require.NoError(t, store.Versions().Create(ctx, version))
		addItem(t, store, owner.ID, "Versioned only", model.PeriodFirstWeek, &version.ID)

		issued, err := svc.Issue(ctx, owner.ID, IssueShareInput{Title: "Kit"})
		require.NoError(t, err)

		snap, err := svc.Resolve(ctx, issued.InviteToken)
		require.NoError(t, err)
		require.Len(t, snap.Templates, 1)
		assert.Equal(t, "Setup laptop", snap.Templates[0].Title)
		require.Len(t, snap.JTBDResources, 1)
		assert.Len(t, snap.JTBDResources[0].Resources, 1)
		assert.Equal(t, "alice", snap.ShareInfo.OwnerName)
		assert.Equal(t, "alice@example.com", snap.ShareInfo.OwnerEmail)
	})

	t.Run("version share returns only that version", func(t *testing.T) {
		store, svc, owner := setup(t)
		version := &model.Version{UserID: owner.ID, Name: "v2"}
		require.NoError(t, store.Versions().Create(ctx, version))
		addItem(t, store, owner.ID, "Versioned only", model.PeriodFirstWeek, &version.ID)

		issued, err := svc.Issue(ctx, owner.ID, IssueShareInput{Title: "Kit", VersionID: &version.ID})
		require.NoError(t, err)

		snap, err := svc.Resolve(ctx, issued.InviteToken)
		require.NoError(t, err)
		require.Len(t, snap.Templates, 1)
		assert.Equal(t, "Versioned only", snap.Templates[0].Title)
		assert.Empty(t, snap.JTBDResources)
	})

	t.Run("expired even when under limit", func(t *testing.T) {
		store, svc, owner := setup(t)
		withClock(t, now)
		issued, err := svc.Issue(ctx, owner.ID, IssueShareInput{Title: "Kit", ExpiresInDays: 1, MaxClones: 5})
		require.NoError(t, err)

		withClock(t, now.Add(48*time.Hour))
		_, err = svc.Resolve(ctx, issued.InviteToken)
		assert.ErrorIs(t, err, errors.ErrExpired)
		assert.Equal(t, 0, store.share(issued.ShareID).CloneCount)
	})

	t.Run("limit reached", func(t *testing.T) {
		store, svc, owner := setup(t)
		issued, err := svc.Issue(ctx, owner.ID, IssueShareInput{Title: "Kit", MaxClones: 1})
		require.NoError(t, err)
		ok, err := store.Shares().ReserveClone(ctx, issued.ShareID, time.Now())
		require.NoError(t, err)
		require.True(t, ok)

		_, err = svc.Resolve(ctx, issued.InviteToken)
		assert.ErrorIs(t, err, errors.ErrLimitReached)
	})

	t.Run("idempotent", func(t *testing.T) {
		store, svc, owner := setup(t)
		issued, err := svc.Issue(ctx, owner.ID, IssueShareInput{Title: "Kit", MaxClones: 1})
		require.NoError(t, err)
		rows := store.rowCount()

		for i := 0; i < 5; i++ {
			_, err := svc.Resolve(ctx, issued.InviteToken)
			require.NoError(t, err)
		}
		assert.Equal(t, 0, store.share(issued.ShareID).CloneCount)
		assert.Equal(t, rows, store.rowCount())
	})

	t.Run("revoked share is not found", func(t *testing.T) {
		_, svc, owner := setup(t)
		issued, err := svc.Issue(ctx, owner.ID, IssueShareInput{Title: "Kit"})
		require.NoError(t, err)
		require.NoError(t, svc.Revoke(ctx, owner.ID, issued.ShareID))

		_, err = svc.Resolve(ctx, issued.InviteToken)
		var notFound *errors.NotFoundError
		assert.True(t, errors.As(err, &notFound))
	})
}

func TestShareService_RevokeAndList(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	owner := store.addUser("alice")
	intruder := store.addUser("mallory")
	addItem(t, store, owner.ID, "Setup laptop", model.PeriodFirstDay, nil)
	svc := NewShareService(
		store.Shares(), store.CloneLogs(), store.Templates(), store.Categories(), store.Versions(),
		NewUserService(store.Users(), nil), nil, "", zerolog.Nop(),
	)

	issued, err := svc.Issue(ctx, owner.ID, IssueShareInput{Title: "Kit", Origin: "http://localhost:8080/"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/invite/"+issued.InviteToken, issued.InviteURL)

	err = svc.Revoke(ctx, intruder.ID, issued.ShareID)
	var notFound *errors.NotFoundError
	assert.True(t, errors.As(err, &notFound))
	assert.True(t, store.share(issued.ShareID).IsActive)

	_, err = svc.ListMine(ctx, intruder.ID, owner.ID, "http://localhost:8080")
	assert.ErrorIs(t, err, errors.ErrUnauthorized)

	mine, err := svc.ListMine(ctx, owner.ID, owner.ID, "http://localhost:8080")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, issued.InviteURL, mine[0].InviteURL)

	_, err = svc.ListCloneLogs(ctx, intruder.ID, issued.ShareID)
	assert.True(t, errors.As(err, &notFound))
}

func TestShareService_ListCloneLogsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	owner := store.addUser("alice")
	addItem(t, store, owner.ID, "Setup laptop", model.PeriodFirstDay, nil)
	svc := newShareServiceForTest(store, nil)

	issued, err := svc.Issue(ctx, owner.ID, IssueShareInput{Title: "Kit"})
	require.NoError(t, err)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	var targets []uuid.UUID
	for i := 0; i < 3; i++ {
		target := store.addUser("member")
		targets = append(targets, target.ID)
		require.NoError(t, store.CloneLogs().Create(ctx, &model.CloneLog{
			ShareID:      issued.ShareID,
			TargetUserID: target.ID,
			Policy:       "versioned",
			Status:       model.CloneStatusCompleted,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}))
	}

	logs, err := svc.ListCloneLogs(ctx, owner.ID, issued.ShareID)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, targets[2], logs[0].TargetUserID)
	assert.Equal(t, targets[1], logs[1].TargetUserID)
	assert.Equal(t, targets[0], logs[2].TargetUserID)
}
