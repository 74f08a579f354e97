package request

import (
	"context"
	"strings"
	"sync"
	"testing"

	accountRepo "lawdesk/database/repository/account"
	lawyerRepo "lawdesk/database/repository/lawyer"
	requestRepo "lawdesk/database/repository/request"
	"lawdesk/models"
	"lawdesk/services/signaling"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRequests struct {
	mu   sync.Mutex
	byID map[string]models.LawyerRequest
}

func (m *memRequests) Create(ctx context.Context, r *models.LawyerRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[r.ID] = *r
	return nil
}

func (m *memRequests) GetByID(ctx context.Context, id string) (*models.LawyerRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return nil, requestRepo.ErrNotFound
	}
	return &r, nil
}

func (m *memRequests) filter(keep func(models.LawyerRequest) bool) []models.LawyerRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.LawyerRequest{}
	for _, r := range m.byID {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (m *memRequests) ListByClient(ctx context.Context, id string) ([]models.LawyerRequest, error) {
	return m.filter(func(r models.LawyerRequest) bool { return r.ClientID == id }), nil
}

func (m *memRequests) ListByLawyer(ctx context.Context, id string) ([]models.LawyerRequest, error) {
	return m.filter(func(r models.LawyerRequest) bool { return r.LawyerID == id }), nil
}

func (m *memRequests) UpdateStatus(ctx context.Context, id, from, to string) (*models.LawyerRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return nil, requestRepo.ErrNotFound
	}
	if r.Status != from {
		return nil, requestRepo.ErrStatusConflict
	}
	r.Status = to
	m.byID[id] = r
	return &r, nil
}

type oneLawyer struct {
	lawyerRepo.LawyerRepository
	lawyer models.Lawyer
}

func (o oneLawyer) GetByLawyerID(ctx context.Context, id string) (*models.Lawyer, error) {
	if id != o.lawyer.LawyerID {
		return nil, lawyerRepo.ErrNotFound
	}
	l := o.lawyer
	return &l, nil
}

type accounts struct {
	accountRepo.AccountRepository
	byID map[string]models.Account
}

func (a accounts) GetByID(ctx context.Context, id string) (*models.Account, error) {
	acc, ok := a.byID[id]
	if !ok {
		return nil, accountRepo.ErrNotFound
	}
	return &acc, nil
}

type emitted struct {
	room, event string
	payload     interface{}
}

type recordingSignaler struct {
	mu   sync.Mutex
	sent []emitted
}

func (r *recordingSignaler) Emit(ctx context.Context, room, event string, payload interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, emitted{room, event, payload})
	return nil
}

type recordingPusher struct {
	tokens []string
}

func (p *recordingPusher) Push(ctx context.Context, token, title, body string, data map[string]string) error {
	p.tokens = append(p.tokens, token)
	return nil
}

type harness struct {
	svc     *DefaultRequestService
	store   *memRequests
	signals *recordingSignaler
	pusher  *recordingPusher
}

var (
	client = Actor{AccountID: "u1", Role: models.RoleClient, Name: "Asha"}
	lawyer = Actor{AccountID: "acc-l", Role: models.RoleLawyer, LawyerID: "Lawyer046"}
)

func newHarness() *harness {
	h := &harness{
		store:   &memRequests{byID: map[string]models.LawyerRequest{}},
		signals: &recordingSignaler{},
		pusher:  &recordingPusher{},
	}
	accs := accounts{byID: map[string]models.Account{
		"u1":    {ID: "u1", Name: "Asha Verma", Email: "asha@example.com", FCMToken: "fcm-u"},
		"acc-l": {ID: "acc-l", Name: "Adv. Rao", FCMToken: "fcm-l"},
	}}
	lawyers := oneLawyer{lawyer: models.Lawyer{LawyerID: "Lawyer046", AccountID: "acc-l", Name: "Adv. Rao"}}
	h.svc = NewDefaultRequestService(h.store, lawyers, accs, h.signals, h.pusher, nil)
	return h
}

func TestSendNotifiesLawyer(t *testing.T) {
	h := newHarness()
	r, err := h.svc.Send(context.Background(), client, "Lawyer046", "  Need help with a lease dispute ")
	require.NoError(t, err)

	assert.Equal(t, models.RequestPending, r.Status)
	assert.Equal(t, "Need help with a lease dispute", r.Message)
	assert.Equal(t, "Asha Verma", r.ClientName)
	assert.Equal(t, "asha@example.com", r.ClientEmail)

	require.Len(t, h.signals.sent, 1)
	assert.Equal(t, signaling.LawyerRoom("Lawyer046"), h.signals.sent[0].room)
	assert.Equal(t, models.EventLawyerRequest, h.signals.sent[0].event)
	assert.Equal(t, []string{"fcm-l"}, h.pusher.tokens)

	stored, err := h.store.GetByID(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", stored.ClientID)
}

func TestSendValidation(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	_, err := h.svc.Send(ctx, client, "Lawyer046", "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = h.svc.Send(ctx, client, "Lawyer046", strings.Repeat("a", MaxMessageLength+1))
	assert.ErrorIs(t, err, ErrLongMessage)

	_, err = h.svc.Send(ctx, client, "Nobody", "hello")
	assert.ErrorIs(t, err, lawyerRepo.ErrNotFound)

	_, err = h.svc.Send(ctx, lawyer, "Lawyer046", "hello")
	assert.ErrorIs(t, err, ErrForbidden)

	assert.Empty(t, h.store.byID)
	assert.Empty(t, h.signals.sent)
}

func TestListsAreScopedToOwner(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	_, err := h.svc.Send(ctx, client, "Lawyer046", "hello")
	require.NoError(t, err)

	mine, err := h.svc.ListForClient(ctx, client, "u1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	inbox, err := h.svc.ListForLawyer(ctx, lawyer, "Lawyer046")
	require.NoError(t, err)
	assert.Len(t, inbox, 1)

	_, err = h.svc.ListForClient(ctx, client, "u2")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = h.svc.ListForLawyer(ctx, lawyer, "Lawyer999")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = h.svc.ListForLawyer(ctx, Actor{AccountID: "u1", Role: models.RoleClient, LawyerID: "Lawyer046"}, "Lawyer046")
	assert.ErrorIs(t, err, ErrForbidden)

	admin := Actor{AccountID: "root", Role: models.RoleAdmin}
	all, err := h.svc.ListForLawyer(ctx, admin, "Lawyer046")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRespondAnswersOnce(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	r, err := h.svc.Send(ctx, client, "Lawyer046", "hello")
	require.NoError(t, err)

	_, err = h.svc.Respond(ctx, lawyer, r.ID, "maybe")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	other := Actor{AccountID: "acc-x", Role: models.RoleLawyer, LawyerID: "Lawyer999"}
	_, err = h.svc.Respond(ctx, other, r.ID, models.RequestAccepted)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := h.svc.Respond(ctx, lawyer, r.ID, models.RequestAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.RequestAccepted, got.Status)

	last := h.signals.sent[len(h.signals.sent)-1]
	assert.Equal(t, signaling.UserRoom("u1"), last.room)
	assert.Equal(t, []string{"fcm-l", "fcm-u"}, h.pusher.tokens)

	again, err := h.svc.Respond(ctx, lawyer, r.ID, models.RequestAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.RequestAccepted, again.Status)

	_, err = h.svc.Respond(ctx, lawyer, r.ID, models.RequestRejected)
	assert.ErrorIs(t, err, requestRepo.ErrStatusConflict)

	_, err = h.svc.Respond(ctx, lawyer, "missing", models.RequestRejected)
	assert.ErrorIs(t, err, requestRepo.ErrNotFound)
}
