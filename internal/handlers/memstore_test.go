package handlers

import (
	"context"
	"sync"
	"time"

	"propertystore/internal/models"
	"propertystore/internal/repositories"
)

// In-memory stores, enough for the HTTP tests. Exported for handlers_test.

var StatusFor = statusFor

type MemStores struct {
	Deals     *MemDeals
	Pipelines *MemPipelines
	Clients   *MemClients
	Requests  *MemRequests
}

func NewMemStores() MemStores {
	reqs := &MemRequests{items: map[string]models.Request{}}
	return MemStores{
		Deals:     &MemDeals{deals: map[string]models.Deal{}, history: map[string][]models.DealHistory{}, requests: reqs},
		Pipelines: &MemPipelines{Pipelines: map[string]models.Pipeline{}, Stages: map[string]models.DealStage{}},
		Clients:   &MemClients{Items: map[string]models.Client{}},
		Requests:  reqs,
	}
}

// Reassign moves a deal to another client.
func (m *MemDeals) Reassign(id, clientID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.deals[id]
	d.ClientID = clientID
	m.deals[id] = d
}

type MemDeals struct {
	mu       sync.Mutex
	deals    map[string]models.Deal
	history  map[string][]models.DealHistory
	requests *MemRequests
}

func (m *MemDeals) Create(_ context.Context, d *models.Deal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *d
	cp.History = nil
	m.deals[d.ID] = cp
	m.history[d.ID] = append([]models.DealHistory(nil), d.History...)
	return nil
}

func (m *MemDeals) CreateFromRequest(ctx context.Context, d *models.Deal, requestID string) error {
	m.requests.mu.Lock()
	r, ok := m.requests.items[requestID]
	switch {
	case !ok:
		m.requests.mu.Unlock()
		return repositories.ErrNotFound
	case r.Status == models.RequestCompleted:
		m.requests.mu.Unlock()
		return repositories.ErrRequestCompleted
	}
	r.Status = models.RequestCompleted
	m.requests.items[requestID] = r
	m.requests.mu.Unlock()
	return m.Create(ctx, d)
}

func (m *MemDeals) GetByID(_ context.Context, id string) (*models.Deal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.deals[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (m *MemDeals) History(_ context.Context, id string) ([]models.DealHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.DealHistory{}, m.history[id]...), nil
}

func (m *MemDeals) List(_ context.Context, f models.DealFilter) ([]models.Deal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Deal{}
	for _, d := range m.deals {
		if f.PipelineID != nil && d.PipelineID != *f.PipelineID {
			continue
		}
		if f.ActiveOnly && !d.IsActive {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (m *MemDeals) Update(_ context.Context, d *models.Deal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.deals[d.ID]; !ok {
		return repositories.ErrNotFound
	}
	m.deals[d.ID] = *d
	return nil
}

func (m *MemDeals) Transition(_ context.Context, id string, mutate func(d *models.Deal) (*models.DealHistory, error)) (*models.Deal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.deals[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	d.History = m.history[id]
	h, err := mutate(&d)
	if err != nil {
		return nil, err
	}
	if h != nil {
		m.history[id] = append(m.history[id], *h)
	}
	stored := d
	stored.History = nil
	m.deals[id] = stored
	return &d, nil
}

func (m *MemDeals) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.deals[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.deals, id)
	return nil
}

func (m *MemDeals) ListOverdue(context.Context, time.Time) ([]models.Deal, error) {
	return []models.Deal{}, nil
}

type MemPipelines struct {
	Pipelines map[string]models.Pipeline
	Stages    map[string]models.DealStage
}

func (m *MemPipelines) Create(_ context.Context, p *models.Pipeline) error {
	m.Pipelines[p.ID] = *p
	return nil
}

func (m *MemPipelines) List(context.Context) ([]models.Pipeline, error) {
	out := []models.Pipeline{}
	for _, p := range m.Pipelines {
		out = append(out, p)
	}
	return out, nil
}

func (m *MemPipelines) GetByID(_ context.Context, id string) (*models.Pipeline, error) {
	p, ok := m.Pipelines[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *MemPipelines) ListStages(_ context.Context, pipelineID string) ([]models.DealStage, error) {
	out := []models.DealStage{}
	for _, s := range m.Stages {
		if s.PipelineID == pipelineID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *MemPipelines) GetStage(_ context.Context, id string) (*models.DealStage, error) {
	s, ok := m.Stages[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *MemPipelines) CreateStage(_ context.Context, st *models.DealStage) error {
	m.Stages[st.ID] = *st
	return nil
}

type MemClients struct {
	mu    sync.Mutex
	Items map[string]models.Client
}

func (m *MemClients) Create(_ context.Context, c *models.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Items[c.ID] = *c
	return nil
}

func (m *MemClients) Update(_ context.Context, c *models.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Items[c.ID] = *c
	return nil
}

func (m *MemClients) GetByID(_ context.Context, id string) (*models.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Items[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *MemClients) GetByPhone(_ context.Context, phone string) (*models.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.Items {
		if c.Phone == phone {
			return &c, nil
		}
	}
	return nil, nil
}

func (m *MemClients) List(context.Context, int, int) ([]models.Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Client{}
	for _, c := range m.Items {
		out = append(out, c)
	}
	return out, nil
}

func (m *MemClients) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Items, id)
	return nil
}

func (m *MemClients) SetConsent(_ context.Context, id string, consent bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.Items[id]; ok {
		c.ConsentToPersonalData = consent
		m.Items[id] = c
	}
	return nil
}

type MemRequests struct {
	mu    sync.Mutex
	items map[string]models.Request
}

func (m *MemRequests) Create(_ context.Context, r *models.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[r.ID] = *r
	return nil
}

func (m *MemRequests) GetByID(_ context.Context, id string) (*models.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *MemRequests) List(context.Context) ([]models.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Request{}
	for _, r := range m.items {
		out = append(out, r)
	}
	return out, nil
}

func (m *MemRequests) ListByStatus(ctx context.Context, st models.RequestStatus) ([]models.Request, error) {
	all, _ := m.List(ctx)
	out := []models.Request{}
	for _, r := range all {
		if r.Status == st {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MemRequests) ListByClient(ctx context.Context, clientID string) ([]models.Request, error) {
	all, _ := m.List(ctx)
	out := []models.Request{}
	for _, r := range all {
		if r.ClientID == clientID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MemRequests) UpdateStatus(_ context.Context, id string, st models.RequestStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok {
		return repositories.ErrNotFound
	}
	r.Status = st
	m.items[id] = r
	return nil
}

func (m *MemRequests) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items), nil
}
