package booking

import (
	"context"
	"sync"
	"time"

	accountRepo "lawdesk/database/repository/account"
	bookingRepo "lawdesk/database/repository/booking"
	lawyerRepo "lawdesk/database/repository/lawyer"
	"lawdesk/models"
	"lawdesk/services/payment"
)

type memBookings struct {
	mu   sync.Mutex
	byID map[string]models.Booking
}

func newMemBookings() *memBookings { return &memBookings{byID: map[string]models.Booking{}} }

func (m *memBookings) Create(ctx context.Context, b *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[b.ID] = *b
	return nil
}

func (m *memBookings) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.byID[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	return &b, nil
}

func (m *memBookings) GetByOrderID(ctx context.Context, orderID string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.byID {
		if b.GatewayOrderID == orderID {
			return &b, nil
		}
	}
	return nil, bookingRepo.ErrNotFound
}

func (m *memBookings) UpdateStatus(ctx context.Context, id string, change bookingRepo.StatusChange) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.byID[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	if b.Status != change.From {
		return nil, bookingRepo.ErrStatusConflict
	}
	b.Status = change.To
	if change.StartedAt != nil {
		b.StartedAt = change.StartedAt
	}
	if change.EndedAt != nil {
		b.EndedAt = change.EndedAt
	}
	m.byID[id] = b
	return &b, nil
}

func (m *memBookings) MarkVerified(ctx context.Context, id, paymentID string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.byID[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	if b.Verified {
		return nil, bookingRepo.ErrAlreadyVerified
	}
	b.Verified = true
	b.GatewayPaymentID = paymentID
	m.byID[id] = b
	return &b, nil
}

func (m *memBookings) ListByClient(ctx context.Context, clientID string) ([]models.Booking, error) {
	return m.filter(func(b models.Booking) bool { return b.ClientID == clientID }), nil
}

func (m *memBookings) ListByLawyer(ctx context.Context, lawyerID string) ([]models.Booking, error) {
	return m.filter(func(b models.Booking) bool { return b.LawyerID == lawyerID }), nil
}

func (m *memBookings) filter(keep func(models.Booking) bool) []models.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Booking{}
	for _, b := range m.byID {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}

type memLawyers map[string]models.Lawyer

func (m memLawyers) List(ctx context.Context, f lawyerRepo.ListFilter) ([]models.Lawyer, error) {
	out := []models.Lawyer{}
	for _, l := range m {
		out = append(out, l)
	}
	return out, nil
}

func (m memLawyers) GetByLawyerID(ctx context.Context, id string) (*models.Lawyer, error) {
	l, ok := m[id]
	if !ok {
		return nil, lawyerRepo.ErrNotFound
	}
	return &l, nil
}

func (m memLawyers) Update(ctx context.Context, id string, u lawyerRepo.LawyerUpdate) (*models.Lawyer, error) {
	l, ok := m[id]
	if !ok {
		return nil, lawyerRepo.ErrNotFound
	}
	if u.ConsultationFee != nil {
		l.ConsultationFee = *u.ConsultationFee
	}
	if u.Status != nil {
		l.Status = *u.Status
	}
	m[id] = l
	return &l, nil
}

func (m memLawyers) SetVerified(ctx context.Context, id string, verified bool) (*models.Lawyer, error) {
	l, ok := m[id]
	if !ok {
		return nil, lawyerRepo.ErrNotFound
	}
	l.Verified = verified
	m[id] = l
	return &l, nil
}

func (m memLawyers) Delete(ctx context.Context, id string) error {
	if _, ok := m[id]; !ok {
		return lawyerRepo.ErrNotFound
	}
	delete(m, id)
	return nil
}

type memAccounts map[string]models.Account

func (m memAccounts) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return nil, accountRepo.ErrNotFound
}

func (m memAccounts) GetByID(ctx context.Context, id string) (*models.Account, error) {
	a, ok := m[id]
	if !ok {
		return nil, accountRepo.ErrNotFound
	}
	return &a, nil
}

func (m memAccounts) UpdateFCMToken(ctx context.Context, id, token string) error { return nil }

func (m memAccounts) List(ctx context.Context, role string) ([]models.Account, error) {
	out := []models.Account{}
	for _, a := range m {
		if role == "" || a.Role == role {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeGateway struct {
	mu        sync.Mutex
	barrier   *sync.WaitGroup
	orderID   string
	orderErr  error
	verifyErr error
	verified  int
	lastOrder models.OrderRequest
}

func (g *fakeGateway) Name() string { return "fake" }

func (g *fakeGateway) CreateOrder(ctx context.Context, req models.OrderRequest) (*models.Order, error) {
	g.lastOrder = req
	if g.orderErr != nil {
		return nil, g.orderErr
	}
	paise, _ := payment.ToPaise(req.Amount)
	return &models.Order{ID: g.orderID, AmountPaise: paise, Currency: req.Currency, Gateway: "fake"}, nil
}

// VerifyPayment waits at barrier, when set, so concurrent callers overlap.
func (g *fakeGateway) VerifyPayment(ctx context.Context, v models.PaymentVerification) error {
	if g.barrier != nil {
		g.barrier.Done()
		g.barrier.Wait()
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verified++
	return g.verifyErr
}

type signal struct {
	Room    string
	Event   string
	Payload interface{}
}

type recordingSignaler struct {
	mu     sync.Mutex
	sent   []signal
	online map[string]bool
}

func (r *recordingSignaler) Emit(ctx context.Context, room, event string, payload interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, signal{Room: room, Event: event, Payload: payload})
	return nil
}

func (r *recordingSignaler) Online(room string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.online[room]
}

func (r *recordingSignaler) events(room string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, s := range r.sent {
		if s.Room == room {
			out = append(out, s.Event)
		}
	}
	return out
}

func (r *recordingSignaler) count(event string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.sent {
		if s.Event == event {
			n++
		}
	}
	return n
}

type recordingPusher struct {
	mu     sync.Mutex
	tokens []string
}

func (p *recordingPusher) Push(ctx context.Context, token, title, body string, data map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokens = append(p.tokens, token)
	return nil
}

type recordingEvents struct {
	mu    sync.Mutex
	types []string
}

func (e *recordingEvents) Publish(ctx context.Context, ev models.BookingEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.types = append(e.types, ev.Type)
	return nil
}

type recordingExpiry struct {
	at map[string]time.Time
}

func (e *recordingExpiry) ScheduleExpiry(ctx context.Context, bookingID string, at time.Time) error {
	if e.at == nil {
		e.at = map[string]time.Time{}
	}
	e.at[bookingID] = at
	return nil
}
