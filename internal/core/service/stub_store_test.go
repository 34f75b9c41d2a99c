package service

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/marsone/crew-api/internal/core/domain"
	"github.com/marsone/crew-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub store. WithinTx hands fn a copy of the state and only swaps
// it in when fn succeeds, which mirrors commit/rollback.
// ---------------------------------------------------------------------------

type stubState struct {
	users      map[int64]domain.User
	jobs       map[int64]domain.Job
	categories map[int64]domain.Category
	links      map[int64][]int64
	nextID     int64
}

func (s *stubState) clone() *stubState {
	c := &stubState{
		users:      maps.Clone(s.users),
		jobs:       maps.Clone(s.jobs),
		categories: maps.Clone(s.categories),
		links:      make(map[int64][]int64, len(s.links)),
		nextID:     s.nextID,
	}
	for k, v := range s.links {
		c.links[k] = slices.Clone(v)
	}
	return c
}

type stubStore struct {
	mu      sync.Mutex
	state   *stubState
	txCount int

	// failUserDelete, if set, is returned by Users().Delete.
	failUserDelete error
	// beforeTx, if set, runs at the start of every WithinTx before the lock.
	beforeTx func()
}

func newStubStore() *stubStore {
	return &stubStore{state: &stubState{
		users:      map[int64]domain.User{},
		jobs:       map[int64]domain.Job{},
		categories: map[int64]domain.Category{},
		links:      map[int64][]int64{},
	}}
}

func (s *stubStore) WithinTx(_ context.Context, fn func(uow ports.UnitOfWork) error) error {
	if s.beforeTx != nil {
		s.beforeTx()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txCount++
	work := s.state.clone()
	if err := fn(&stubUoW{st: work, store: s}); err != nil {
		return err
	}
	s.state = work
	return nil
}

// seedUser inserts a user directly, bypassing the services.
func (s *stubStore) seedUser(name, email string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.nextID++
	id := s.state.nextID
	s.state.users[id] = domain.User{ID: id, Name: name, Email: email, PasswordHash: "x", ModifiedDate: time.Unix(0, 0).UTC()}
	return id
}

func (s *stubStore) seedCategory(name string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.nextID++
	id := s.state.nextID
	s.state.categories[id] = domain.Category{ID: id, Name: name}
	return id
}

func (s *stubStore) jobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.jobs)
}

func (s *stubStore) userCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.users)
}

type stubUoW struct {
	st    *stubState
	store *stubStore
}

func (u *stubUoW) Users() ports.UserRepository          { return stubUsers{u} }
func (u *stubUoW) Jobs() ports.JobRepository            { return stubJobs{u} }
func (u *stubUoW) Categories() ports.CategoryRepository { return stubCategories{u} }

type stubUsers struct{ *stubUoW }

func (r stubUsers) FindByID(_ context.Context, id int64) (*domain.User, error) {
	usr, ok := r.st.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &usr, nil
}

func (r stubUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, usr := range r.st.users {
		if usr.Email == email {
			return &usr, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r stubUsers) List(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(r.st.users))
	for _, id := range slices.Sorted(maps.Keys(r.st.users)) {
		out = append(out, r.st.users[id])
	}
	return out, nil
}

func (r stubUsers) Create(_ context.Context, usr *domain.User) error {
	for _, other := range r.st.users {
		if other.Email == usr.Email {
			return domain.ErrConflict
		}
	}
	r.st.nextID++
	usr.ID = r.st.nextID
	r.st.users[usr.ID] = *usr
	return nil
}

func (r stubUsers) Update(_ context.Context, usr *domain.User) error {
	if _, ok := r.st.users[usr.ID]; !ok {
		return domain.ErrNotFound
	}
	for _, other := range r.st.users {
		if other.ID != usr.ID && other.Email == usr.Email {
			return domain.ErrConflict
		}
	}
	r.st.users[usr.ID] = *usr
	return nil
}

func (r stubUsers) Delete(_ context.Context, id int64) error {
	if r.store.failUserDelete != nil {
		return r.store.failUserDelete
	}
	if _, ok := r.st.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.st.users, id)
	return nil
}

type stubJobs struct{ *stubUoW }

func (r stubJobs) load(id int64) (*domain.Job, bool) {
	job, ok := r.st.jobs[id]
	if !ok {
		return nil, false
	}
	job.Categories = nil
	for _, cid := range r.st.links[id] {
		job.Categories = append(job.Categories, r.st.categories[cid])
	}
	return &job, true
}

func (r stubJobs) FindByID(_ context.Context, id int64) (*domain.Job, error) {
	job, ok := r.load(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return job, nil
}

func (r stubJobs) List(_ context.Context) ([]domain.Job, error) {
	out := make([]domain.Job, 0, len(r.st.jobs))
	for _, id := range slices.Sorted(maps.Keys(r.st.jobs)) {
		job, _ := r.load(id)
		out = append(out, *job)
	}
	return out, nil
}

func (r stubJobs) Create(_ context.Context, job *domain.Job) error {
	if _, ok := r.st.users[job.TeamLeaderID]; !ok {
		return domain.ErrIntegrityViolation
	}
	r.st.nextID++
	job.ID = r.st.nextID
	stored := *job
	stored.Categories = nil
	r.st.jobs[job.ID] = stored
	ids := make([]int64, 0, len(job.Categories))
	for _, c := range job.Categories {
		ids = append(ids, c.ID)
	}
	r.st.links[job.ID] = ids
	return nil
}

func (r stubJobs) Update(_ context.Context, job *domain.Job) error {
	if _, ok := r.st.jobs[job.ID]; !ok {
		return domain.ErrNotFound
	}
	stored := *job
	stored.Categories = nil
	r.st.jobs[job.ID] = stored
	return nil
}

func (r stubJobs) ReplaceCategories(_ context.Context, jobID int64, ids []int64) error {
	for _, id := range ids {
		if _, ok := r.st.categories[id]; !ok {
			return domain.ErrIntegrityViolation
		}
	}
	r.st.links[jobID] = slices.Clone(ids)
	return nil
}

func (r stubJobs) Delete(_ context.Context, id int64) error {
	if _, ok := r.st.jobs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.st.jobs, id)
	delete(r.st.links, id)
	return nil
}

func (r stubJobs) CountByLeader(_ context.Context, userID int64) (int64, error) {
	var n int64
	for _, job := range r.st.jobs {
		if job.TeamLeaderID == userID {
			n++
		}
	}
	return n, nil
}

type stubCategories struct{ *stubUoW }

func (r stubCategories) FindByID(_ context.Context, id int64) (*domain.Category, error) {
	c, ok := r.st.categories[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (r stubCategories) List(_ context.Context) ([]domain.Category, error) {
	out := make([]domain.Category, 0, len(r.st.categories))
	for _, id := range slices.Sorted(maps.Keys(r.st.categories)) {
		out = append(out, r.st.categories[id])
	}
	return out, nil
}

func (r stubCategories) Create(_ context.Context, c *domain.Category) error {
	r.st.nextID++
	c.ID = r.st.nextID
	r.st.categories[c.ID] = *c
	return nil
}

// ---------------------------------------------------------------------------
// Audit and idempotency stubs
// ---------------------------------------------------------------------------

type stubAudit struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
	err     error
}

func (a *stubAudit) Record(_ context.Context, e domain.AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.entries = append(a.entries, e)
	return nil
}

func (a *stubAudit) all() []domain.AuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.entries)
}

// pendingClaim marks a key claimed by a create that has not finished.
const pendingClaim = -1

type stubIdempotency struct {
	mu   sync.Mutex
	keys map[string]int64
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{keys: map[string]int64{}}
}

func (s *stubIdempotency) Claim(_ context.Context, scope, key string) (bool, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.keys[scope+"/"+key]; ok {
		if id == pendingClaim {
			return false, 0, nil
		}
		return false, id, nil
	}
	s.keys[scope+"/"+key] = pendingClaim
	return true, 0, nil
}

func (s *stubIdempotency) Remember(_ context.Context, scope, key string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[scope+"/"+key] = id
	return nil
}

func (s *stubIdempotency) Release(_ context.Context, scope, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, scope+"/"+key)
	return nil
}

func (s *stubIdempotency) held(scope, key string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.keys[scope+"/"+key]
	return id, ok
}
