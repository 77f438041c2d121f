package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"onboarding/internal/model"
	"onboarding/internal/repository"
)

// memStore is an in-memory stand-in for the gorm repositories. One mutex
// guards every table, which gives ReserveClone the same atomicity as the
// conditional UPDATE it replaces.
type memStore struct {
	mu         sync.Mutex
	users      map[uuid.UUID]model.User
	templates  []model.TemplateItem
	categories []model.ResourceCategory
	resources  []model.Resource
	versions   []model.Version
	shares     []model.ShareRecord
	cloneLogs  []model.CloneLog

	// failResourceName makes CreateResource fail for that resource name.
	failResourceName string
}

func newMemStore() *memStore {
	return &memStore{users: map[uuid.UUID]model.User{}}
}

func (s *memStore) addUser(name string) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := model.User{ID: uuid.New(), Email: name + "@example.com", Name: name}
	s.users[u.ID] = u
	return u
}

// rowCount totals every content row, used to assert that nothing was written.
func (s *memStore) rowCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.templates) + len(s.categories) + len(s.resources) + len(s.versions)
}

func (s *memStore) share(id uuid.UUID) model.ShareRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sh := range s.shares {
		if sh.ID == id {
			return sh
		}
	}
	return model.ShareRecord{}
}

func (s *memStore) Users() repository.UserRepository { return memUsers{s} }
func (s *memStore) Templates() repository.TemplateRepository { return memTemplates{s} }
func (s *memStore) Categories() repository.CategoryRepository { return memCategories{s} }
func (s *memStore) Versions() repository.VersionRepository { return memVersions{s} }
func (s *memStore) Shares() repository.ShareRepository { return memShares{s} }
func (s *memStore) CloneLogs() repository.CloneLogRepository { return memCloneLogs{s} }

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r memUsers) Update(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[user.ID] = *user
	return nil
}

func (r memUsers) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r memUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memUsers) DeleteCascade(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.users, id)
	r.s.templates = filter(r.s.templates, func(t model.TemplateItem) bool { return t.UserID != id })
	owned := map[uuid.UUID]bool{}
	for _, c := range r.s.categories {
		if c.UserID == id {
			owned[c.ID] = true
		}
	}
	r.s.categories = filter(r.s.categories, func(c model.ResourceCategory) bool { return c.UserID != id })
	r.s.resources = filter(r.s.resources, func(res model.Resource) bool { return !owned[res.CategoryID] })
	r.s.versions = filter(r.s.versions, func(v model.Version) bool { return v.UserID != id })
	ownedShares := map[uuid.UUID]bool{}
	for _, sh := range r.s.shares {
		if sh.OwnerUserID == id {
			ownedShares[sh.ID] = true
		}
	}
	r.s.cloneLogs = filter(r.s.cloneLogs, func(l model.CloneLog) bool { return !ownedShares[l.ShareID] })
	r.s.shares = filter(r.s.shares, func(sh model.ShareRecord) bool { return sh.OwnerUserID != id })
	return nil
}

type memTemplates struct{ s *memStore }

func (r memTemplates) Create(_ context.Context, item *model.TemplateItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.CreatedAt = time.Now()
	r.s.templates = append(r.s.templates, *item)
	return nil
}

func (r memTemplates) CreateBatch(ctx context.Context, items []model.TemplateItem) error {
	for i := range items {
		if err := r.Create(ctx, &items[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r memTemplates) Update(_ context.Context, item *model.TemplateItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.templates {
		if r.s.templates[i].ID == item.ID {
			r.s.templates[i].Title = item.Title
			r.s.templates[i].Completed = item.Completed
			r.s.templates[i].Priority = item.Priority
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r memTemplates) Delete(_ context.Context, id, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	before := len(r.s.templates)
	r.s.templates = filter(r.s.templates, func(t model.TemplateItem) bool { return !(t.ID == id && t.UserID == userID) })
	if len(r.s.templates) == before {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r memTemplates) FindByID(_ context.Context, id uuid.UUID) (*model.TemplateItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.templates {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memTemplates) ListByUser(_ context.Context, userID uuid.UUID, scope model.Scope) ([]model.TemplateItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.TemplateItem
	for _, t := range r.s.templates {
		if t.UserID == userID && scope.Matches(t.VersionID) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r memTemplates) CountByUser(ctx context.Context, userID uuid.UUID, scope model.Scope) (int64, error) {
	items, _ := r.ListByUser(ctx, userID, scope)
	return int64(len(items)), nil
}

type memCategories struct{ s *memStore }

func (r memCategories) Create(_ context.Context, category *model.ResourceCategory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	for i := range category.Resources {
		if category.Resources[i].ID == uuid.Nil {
			category.Resources[i].ID = uuid.New()
		}
		category.Resources[i].CategoryID = category.ID
		r.s.resources = append(r.s.resources, category.Resources[i])
	}
	stored := *category
	stored.Resources = nil
	r.s.categories = append(r.s.categories, stored)
	return nil
}

func (r memCategories) withResources(c model.ResourceCategory) model.ResourceCategory {
	c.Resources = nil
	for _, res := range r.s.resources {
		if res.CategoryID == c.ID {
			c.Resources = append(c.Resources, res)
		}
	}
	return c
}

func (r memCategories) FindByID(_ context.Context, id uuid.UUID) (*model.ResourceCategory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.categories {
		if c.ID == id {
			c = r.withResources(c)
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memCategories) ListByUser(_ context.Context, userID uuid.UUID, scope model.Scope) ([]model.ResourceCategory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.ResourceCategory
	for _, c := range r.s.categories {
		if c.UserID == userID && scope.Matches(c.VersionID) {
			out = append(out, r.withResources(c))
		}
	}
	return out, nil
}

func (r memCategories) CountByUser(ctx context.Context, userID uuid.UUID, scope model.Scope) (int64, error) {
	cats, _ := r.ListByUser(ctx, userID, scope)
	return int64(len(cats)), nil
}

func (r memCategories) Delete(_ context.Context, id, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	before := len(r.s.categories)
	r.s.categories = filter(r.s.categories, func(c model.ResourceCategory) bool { return !(c.ID == id && c.UserID == userID) })
	if len(r.s.categories) == before {
		return gorm.ErrRecordNotFound
	}
	r.s.resources = filter(r.s.resources, func(res model.Resource) bool { return res.CategoryID != id })
	return nil
}

func (r memCategories) CreateResource(_ context.Context, resource *model.Resource) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failResourceName != "" && resource.Name == r.s.failResourceName {
		return gorm.ErrInvalidData
	}
	if resource.ID == uuid.Nil {
		resource.ID = uuid.New()
	}
	r.s.resources = append(r.s.resources, *resource)
	return nil
}

func (r memCategories) DeleteResource(_ context.Context, id, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	owned := map[uuid.UUID]bool{}
	for _, c := range r.s.categories {
		if c.UserID == userID {
			owned[c.ID] = true
		}
	}
	before := len(r.s.resources)
	r.s.resources = filter(r.s.resources, func(res model.Resource) bool { return !(res.ID == id && owned[res.CategoryID]) })
	if len(r.s.resources) == before {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type memVersions struct{ s *memStore }

func (r memVersions) Create(_ context.Context, version *model.Version) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[version.UserID]; !ok {
		return gorm.ErrRecordNotFound
	}
	if version.ID == uuid.Nil {
		version.ID = uuid.New()
	}
	version.IsDefault = true
	for _, v := range r.s.versions {
		if v.UserID == version.UserID && v.IsDefault {
			version.IsDefault = false
		}
	}
	r.s.versions = append(r.s.versions, *version)
	return nil
}

func (r memVersions) FindByID(_ context.Context, id uuid.UUID) (*model.Version, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.versions {
		if v.ID == id {
			return &v, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memVersions) ListByUser(_ context.Context, userID uuid.UUID) ([]model.Version, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Version
	for _, v := range r.s.versions {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r memVersions) SetDefault(_ context.Context, userID, versionID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	found := false
	for _, v := range r.s.versions {
		if v.ID == versionID && v.UserID == userID {
			found = true
		}
	}
	if !found {
		return gorm.ErrRecordNotFound
	}
	for i := range r.s.versions {
		if r.s.versions[i].UserID == userID {
			r.s.versions[i].IsDefault = r.s.versions[i].ID == versionID
		}
	}
	return nil
}

func (r memVersions) DeleteCascade(_ context.Context, userID, versionID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	idx := -1
	for i, v := range r.s.versions {
		if v.ID == versionID && v.UserID == userID {
			idx = i
		}
	}
	if idx < 0 {
		return gorm.ErrRecordNotFound
	}
	if r.s.versions[idx].IsDefault {
		return repository.ErrVersionIsDefault
	}
	inVersion := func(id *uuid.UUID) bool { return id != nil && *id == versionID }
	dropped := map[uuid.UUID]bool{}
	for _, c := range r.s.categories {
		if inVersion(c.VersionID) {
			dropped[c.ID] = true
		}
	}
	r.s.resources = filter(r.s.resources, func(res model.Resource) bool { return !dropped[res.CategoryID] })
	r.s.categories = filter(r.s.categories, func(c model.ResourceCategory) bool { return !inVersion(c.VersionID) })
	r.s.templates = filter(r.s.templates, func(t model.TemplateItem) bool { return !inVersion(t.VersionID) })
	for i := range r.s.shares {
		if inVersion(r.s.shares[i].VersionID) {
			r.s.shares[i].IsActive = false
		}
	}
	r.s.versions = append(r.s.versions[:idx], r.s.versions[idx+1:]...)
	return nil
}

type memShares struct{ s *memStore }

func (r memShares) Create(_ context.Context, share *model.ShareRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if share.ID == uuid.Nil {
		share.ID = uuid.New()
	}
	r.s.shares = append(r.s.shares, *share)
	return nil
}

func (r memShares) FindByID(_ context.Context, id uuid.UUID) (*model.ShareRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sh := range r.s.shares {
		if sh.ID == id {
			return &sh, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memShares) FindActiveByToken(_ context.Context, token string) (*model.ShareRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sh := range r.s.shares {
		if sh.InviteToken == token && sh.IsActive {
			return &sh, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memShares) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]model.ShareRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.ShareRecord
	for _, sh := range r.s.shares {
		if sh.OwnerUserID == ownerID {
			out = append(out, sh)
		}
	}
	return out, nil
}

func (r memShares) Deactivate(_ context.Context, id, ownerID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.shares {
		if r.s.shares[i].ID == id && r.s.shares[i].OwnerUserID == ownerID {
			r.s.shares[i].IsActive = false
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r memShares) ReserveClone(_ context.Context, id uuid.UUID, now time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.shares {
		sh := &r.s.shares[i]
		if sh.ID != id {
			continue
		}
		if !sh.IsActive || sh.LimitReached() || sh.Expired(now) {
			return false, nil
		}
		sh.CloneCount++
		return true, nil
	}
	return false, nil
}

type memCloneLogs struct{ s *memStore }

func (r memCloneLogs) Create(_ context.Context, log *model.CloneLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	r.s.cloneLogs = append(r.s.cloneLogs, *log)
	return nil
}

func (r memCloneLogs) ListByShare(_ context.Context, shareID uuid.UUID) ([]model.CloneLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.CloneLog
	for _, l := range r.s.cloneLogs {
		if l.ShareID == shareID {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func filter[T any](in []T, keep func(T) bool) []T {
	out := in[:0]
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}
