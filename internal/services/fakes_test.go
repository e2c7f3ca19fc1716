package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"propertystore/internal/models"
	"propertystore/internal/realtime"
	"propertystore/internal/repositories"
)

func quietLog() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func fixedNow(t time.Time) func() time.Time { return func() time.Time { return t } }

type fakeDeals struct {
	mu       sync.Mutex
	deals    map[string]models.Deal
	history  map[string][]models.DealHistory
	requests *fakeRequests
}

func newFakeDeals(requests *fakeRequests) *fakeDeals {
	return &fakeDeals{deals: map[string]models.Deal{}, history: map[string][]models.DealHistory{}, requests: requests}
}

func (f *fakeDeals) Create(_ context.Context, d *models.Deal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *d
	cp.History = nil
	f.deals[d.ID] = cp
	f.history[d.ID] = append([]models.DealHistory(nil), d.History...)
	return nil
}

func (f *fakeDeals) CreateFromRequest(ctx context.Context, d *models.Deal, requestID string) error {
	f.requests.mu.Lock()
	req, ok := f.requests.items[requestID]
	if !ok {
		f.requests.mu.Unlock()
		return repositories.ErrNotFound
	}
	if req.Status == models.RequestCompleted {
		f.requests.mu.Unlock()
		return repositories.ErrRequestCompleted
	}
	req.Status = models.RequestCompleted
	f.requests.items[requestID] = req
	f.requests.mu.Unlock()
	return f.Create(ctx, d)
}

func (f *fakeDeals) GetByID(_ context.Context, id string) (*models.Deal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.deals[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (f *fakeDeals) History(_ context.Context, id string) ([]models.DealHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.DealHistory{}, f.history[id]...), nil
}

func (f *fakeDeals) List(_ context.Context, flt models.DealFilter) ([]models.Deal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Deal{}
	for _, d := range f.deals {
		if flt.PipelineID != nil && d.PipelineID != *flt.PipelineID {
			continue
		}
		if flt.ClientID != nil && d.ClientID != *flt.ClientID {
			continue
		}
		if flt.ActiveOnly && !d.IsActive {
			continue
		}
		if flt.CreatedFrom != nil && d.CreatedAt.Before(*flt.CreatedFrom) {
			continue
		}
		if flt.CreatedTo != nil && d.CreatedAt.After(*flt.CreatedTo) {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeDeals) Update(_ context.Context, d *models.Deal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.deals[d.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *d
	cp.History = nil
	f.deals[d.ID] = cp
	return nil
}

func (f *fakeDeals) Transition(_ context.Context, id string, mutate func(d *models.Deal) (*models.DealHistory, error)) (*models.Deal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.deals[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	d.History = f.history[id]
	h, err := mutate(&d)
	if err != nil {
		return nil, err
	}
	if h != nil {
		f.history[id] = append(f.history[id], *h)
	}
	stored := d
	stored.History = nil
	f.deals[id] = stored
	return &d, nil
}

func (f *fakeDeals) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.deals[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.deals, id)
	return nil
}

func (f *fakeDeals) ListOverdue(_ context.Context, now time.Time) ([]models.Deal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Deal{}
	for _, d := range f.deals {
		if d.IsActive && d.StageDeadline != nil && d.StageDeadline.Before(now) {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakePipelines struct {
	pipelines map[string]models.Pipeline
	stages    map[string]models.DealStage
}

func newFakePipelines() *fakePipelines {
	return &fakePipelines{pipelines: map[string]models.Pipeline{}, stages: map[string]models.DealStage{}}
}

func (f *fakePipelines) Create(_ context.Context, p *models.Pipeline) error {
	f.pipelines[p.ID] = *p
	return nil
}

func (f *fakePipelines) List(context.Context) ([]models.Pipeline, error) {
	out := []models.Pipeline{}
	for _, p := range f.pipelines {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePipelines) GetByID(_ context.Context, id string) (*models.Pipeline, error) {
	p, ok := f.pipelines[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakePipelines) ListStages(_ context.Context, pipelineID string) ([]models.DealStage, error) {
	out := []models.DealStage{}
	for _, s := range f.stages {
		if s.PipelineID == pipelineID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakePipelines) GetStage(_ context.Context, id string) (*models.DealStage, error) {
	s, ok := f.stages[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (f *fakePipelines) CreateStage(_ context.Context, st *models.DealStage) error {
	f.stages[st.ID] = *st
	return nil
}

type fakeClients struct {
	mu    sync.Mutex
	items map[string]models.Client
}

func newFakeClients(cs ...models.Client) *fakeClients {
	f := &fakeClients{items: map[string]models.Client{}}
	for _, c := range cs {
		f.items[c.ID] = c
	}
	return f
}

func (f *fakeClients) Create(_ context.Context, c *models.Client) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[c.ID] = *c
	return nil
}

func (f *fakeClients) Update(_ context.Context, c *models.Client) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[c.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.items[c.ID] = *c
	return nil
}

func (f *fakeClients) GetByID(_ context.Context, id string) (*models.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (f *fakeClients) GetByPhone(_ context.Context, phone string) (*models.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.items {
		if c.Phone == phone {
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeClients) List(context.Context, int, int) ([]models.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Client{}
	for _, c := range f.items {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeClients) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, id)
	return nil
}

func (f *fakeClients) SetConsent(_ context.Context, id string, consent bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.items[id]
	if !ok {
		return repositories.ErrNotFound
	}
	c.ConsentToPersonalData = consent
	f.items[id] = c
	return nil
}

type fakeRequests struct {
	mu    sync.Mutex
	items map[string]models.Request
	order []string
}

func newFakeRequests() *fakeRequests {
	return &fakeRequests{items: map[string]models.Request{}}
}

func (f *fakeRequests) Create(_ context.Context, r *models.Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[r.ID] = *r
	f.order = append(f.order, r.ID)
	return nil
}

func (f *fakeRequests) GetByID(_ context.Context, id string) (*models.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (f *fakeRequests) List(context.Context) ([]models.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Request{}
	for _, id := range f.order {
		out = append(out, f.items[id])
	}
	return out, nil
}

func (f *fakeRequests) ListByStatus(ctx context.Context, st models.RequestStatus) ([]models.Request, error) {
	all, _ := f.List(ctx)
	out := []models.Request{}
	for _, r := range all {
		if r.Status == st {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRequests) ListByClient(ctx context.Context, clientID string) ([]models.Request, error) {
	all, _ := f.List(ctx)
	out := []models.Request{}
	for _, r := range all {
		if r.ClientID == clientID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRequests) UpdateStatus(_ context.Context, id string, st models.RequestStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.items[id]
	if !ok {
		return repositories.ErrNotFound
	}
	r.Status = st
	f.items[id] = r
	return nil
}

func (f *fakeRequests) Count(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items), nil
}

type fakeAccounts struct {
	items map[string]models.ClientAccount
}

func newFakeAccounts() *fakeAccounts { return &fakeAccounts{items: map[string]models.ClientAccount{}} }

func (f *fakeAccounts) Activate(_ context.Context, a *models.ClientAccount) error {
	f.items[a.ClientID] = *a
	return nil
}

func (f *fakeAccounts) GetByLogin(_ context.Context, login string) (*models.ClientAccount, error) {
	for _, a := range f.items {
		if strings.EqualFold(a.Login, login) {
			return &a, nil
		}
	}
	return nil, nil
}

func (f *fakeAccounts) GetByClientID(_ context.Context, id string) (*models.ClientAccount, error) {
	a, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (f *fakeAccounts) UpdatePassword(_ context.Context, id, hash string) error {
	a, ok := f.items[id]
	if !ok {
		return repositories.ErrNotFound
	}
	a.PasswordHash = hash
	a.MustChangePassword = false
	f.items[id] = a
	return nil
}

func (f *fakeAccounts) SaveConsent(_ context.Context, id string, at time.Time, ip, ua string) error {
	a, ok := f.items[id]
	if !ok {
		return repositories.ErrNotFound
	}
	a.ConsentGiven = true
	a.ConsentAt = &at
	a.ConsentIP = &ip
	a.ConsentUserAgent = &ua
	f.items[id] = a
	return nil
}

type fakeDocs struct {
	items map[string]models.ClientDocument
}

func newFakeDocs() *fakeDocs { return &fakeDocs{items: map[string]models.ClientDocument{}} }

func (f *fakeDocs) Create(_ context.Context, d *models.ClientDocument) error {
	f.items[d.ID] = *d
	return nil
}

func (f *fakeDocs) GetByID(_ context.Context, id string) (*models.ClientDocument, error) {
	d, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (f *fakeDocs) ListByClient(_ context.Context, clientID string, dealID *string) ([]models.ClientDocument, error) {
	out := []models.ClientDocument{}
	for _, d := range f.items {
		if d.ClientID != clientID {
			continue
		}
		if dealID != nil && (d.DealID == nil || *d.DealID != *dealID) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeDocs) Delete(_ context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

type fakeUsers struct {
	items map[string]models.User
}

func newFakeUsers() *fakeUsers { return &fakeUsers{items: map[string]models.User{}} }

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	f.items[u.ID] = *u
	return nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, name string) (*models.User, error) {
	for _, u := range f.items {
		if strings.EqualFold(u.Username, name) {
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	u, ok := f.items[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (f *fakeUsers) Count(context.Context) (int, error) { return len(f.items), nil }

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type recordingBoard struct {
	mu   sync.Mutex
	msgs []realtime.BoardMessage
}

func (b *recordingBoard) Broadcast(m realtime.BoardMessage) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msgs = append(b.msgs, m)
}

type recordingNotifier struct {
	requests  []string
	activated []string
}

func (n *recordingNotifier) NewRequest(_ context.Context, r *models.Request) error {
	n.requests = append(n.requests, r.ID)
	return nil
}

func (n *recordingNotifier) AccountActivated(_ context.Context, c *models.Client, login, _ string) error {
	n.activated = append(n.activated, login)
	return nil
}
