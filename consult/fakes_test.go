package consult

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"lawdesk/models"

	"github.com/stretchr/testify/require"
)

type emitted struct {
	Event   string
	Payload interface{}
}

// fakeSignal is an in-memory Signal. fire delivers an inbound event.
type fakeSignal struct {
	mu       sync.Mutex
	handlers map[string]map[int]Handler
	next     int
	emits    []emitted
	emitErr  error
}

func newFakeSignal() *fakeSignal {
	return &fakeSignal{handlers: make(map[string]map[int]Handler)}
}

func (f *fakeSignal) On(event string, fn Handler) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	id := f.next
	if f.handlers[event] == nil {
		f.handlers[event] = make(map[int]Handler)
	}
	f.handlers[event][id] = fn
	return func() {
		f.mu.Lock()
		delete(f.handlers[event], id)
		f.mu.Unlock()
	}
}

func (f *fakeSignal) Emit(event string, payload interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.emitErr != nil {
		return f.emitErr
	}
	f.emits = append(f.emits, emitted{Event: event, Payload: payload})
	return nil
}

func (f *fakeSignal) fire(t *testing.T, event string, payload interface{}) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	f.mu.Lock()
	var fns []Handler
	for _, fn := range f.handlers[event] {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(data)
	}
}

func (f *fakeSignal) subscribers(event string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handlers[event])
}

func (f *fakeSignal) emitted(event string) []interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []interface{}
	for _, e := range f.emits {
		if e.Event == event {
			out = append(out, e.Payload)
		}
	}
	return out
}

type fakeTrack struct {
	kind    string
	enabled bool
	stopped bool
}

func (t *fakeTrack) Kind() string { return t.kind }
func (t *fakeTrack) SetEnabled(enabled bool) error {
	t.enabled = enabled
	return nil
}
func (t *fakeTrack) Enabled() bool { return t.enabled }
func (t *fakeTrack) Stop()         { t.stopped = true }

type fakeDevices struct {
	micErr, camErr error
	mic, cam       *fakeTrack
	acquired       int
}

func (d *fakeDevices) Microphone(ctx context.Context) (Track, error) {
	if d.micErr != nil {
		return nil, d.micErr
	}
	d.acquired++
	d.mic = &fakeTrack{kind: KindAudio, enabled: true}
	return d.mic, nil
}

func (d *fakeDevices) Camera(ctx context.Context) (Track, error) {
	if d.camErr != nil {
		return nil, d.camErr
	}
	d.acquired++
	d.cam = &fakeTrack{kind: KindVideo, enabled: true}
	return d.cam, nil
}

type fakeRoom struct {
	joined    bool
	joins     int
	published []Track
	leaves    int
	joinErr   error
	block     chan struct{}
}

func (r *fakeRoom) Join(ctx context.Context, creds models.MediaCredentials) error {
	if r.block != nil {
		<-r.block
	}
	if r.joinErr != nil {
		return r.joinErr
	}
	r.joins++
	r.joined = true
	return nil
}

func (r *fakeRoom) Publish(ctx context.Context, tracks ...Track) error {
	r.published = append(r.published, tracks...)
	return nil
}

func (r *fakeRoom) Leave(ctx context.Context) error {
	r.leaves++
	r.joined = false
	return nil
}

type memStore struct {
	mu      sync.Mutex
	byID    map[string]models.Message
	order   []string
	sendErr error
}

func newMemStore() *memStore { return &memStore{byID: map[string]models.Message{}} }

func (s *memStore) SendMessage(ctx context.Context, msg models.Message) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return nil, s.sendErr
	}
	if _, ok := s.byID[msg.ID]; !ok {
		s.order = append(s.order, msg.ID)
	}
	s.byID[msg.ID] = msg
	return &msg, nil
}

func (s *memStore) History(ctx context.Context, bookingID string) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Message
	for _, id := range s.order {
		if m := s.byID[id]; m.BookingID == bookingID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeTransport struct {
	mu      sync.Mutex
	onMsg   func(models.Message)
	sent    []models.Message
	closed  bool
	connErr error
}

func (t *fakeTransport) Connect(ctx context.Context, token *models.ChatToken) error { return t.connErr }
func (t *fakeTransport) Send(ctx context.Context, msg models.Message) error {
	t.mu.Lock()
	t.sent = append(t.sent, msg)
	t.mu.Unlock()
	return nil
}
func (t *fakeTransport) OnMessage(fn func(models.Message)) { t.onMsg = fn }
func (t *fakeTransport) Close() error {
	t.closed = true
	return nil
}

type fakeTokens struct{ err error }

func (f fakeTokens) ChatToken(ctx context.Context, username string) (*models.ChatToken, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.ChatToken{AppKey: "k", Username: username, AccessToken: "t"}, nil
}

var errBoom = errors.New("boom")
