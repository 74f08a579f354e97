package consult

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"lawdesk/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// signalServer accepts websocket connections, records inbound envelopes and
// keeps the latest connection so tests can push events or drop it.
type signalServer struct {
	*httptest.Server

	mu      sync.Mutex
	conns   []*websocket.Conn
	auth    []string
	inbound chan models.Envelope
}

func newSignalServer(t *testing.T) *signalServer {
	s := &signalServer{inbound: make(chan models.Envelope, 16)}
	upgrader := websocket.Upgrader{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns = append(s.conns, conn)
		s.auth = append(s.auth, r.Header.Get("Authorization"))
		s.mu.Unlock()
		for {
			var env models.Envelope
			if err := conn.ReadJSON(&env); err != nil {
				return
			}
			s.inbound <- env
		}
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *signalServer) wsURL() string { return "ws" + strings.TrimPrefix(s.URL, "http") }

func (s *signalServer) latest() *websocket.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.conns) == 0 {
		return nil
	}
	return s.conns[len(s.conns)-1]
}

func (s *signalServer) connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *signalServer) push(t *testing.T, event string, payload interface{}) {
	t.Helper()
	env, err := models.NewEnvelope(event, payload)
	require.NoError(t, err)
	require.NoError(t, s.latest().WriteJSON(env))
}

func (s *signalServer) next(t *testing.T) models.Envelope {
	t.Helper()
	select {
	case env := <-s.inbound:
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("no frame received")
		return models.Envelope{}
	}
}

func dialTest(t *testing.T, url, role string, opts Options) *Channel {
	t.Helper()
	ch, err := Dial(context.Background(), Credentials{URL: url, Token: "jwt", ID: "acc-1", Role: role}, opts)
	require.NoError(t, err)
	t.Cleanup(ch.Disconnect)
	return ch
}

func waitReady(t *testing.T, ch *Channel) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, ch.Wait(ctx))
}

func TestDialValidatesCredentials(t *testing.T) {
	_, err := Dial(context.Background(), Credentials{Role: models.RoleClient}, Options{})
	assert.Error(t, err)
	_, err = Dial(context.Background(), Credentials{URL: "ws://x", Role: models.RoleAdmin}, Options{})
	assert.Error(t, err)
}

func TestChannelAnnouncesIdentity(t *testing.T) {
	for role, event := range map[string]string{models.RoleClient: models.EventJoinUser, models.RoleLawyer: models.EventJoinLawyer} {
		t.Run(role, func(t *testing.T) {
			srv := newSignalServer(t)
			ch := dialTest(t, srv.wsURL(), role, Options{})
			waitReady(t, ch)

			env := srv.next(t)
			assert.Equal(t, event, env.Event)
			var p models.JoinPayload
			require.NoError(t, json.Unmarshal(env.Data, &p))
			assert.Equal(t, "acc-1", p.ID)
			assert.Equal(t, StatusConnected, ch.Status())

			srv.mu.Lock()
			assert.Equal(t, "Bearer jwt", srv.auth[0])
			srv.mu.Unlock()
		})
	}
}

func TestChannelDeliversEventsAndUnsubscribes(t *testing.T) {
	srv := newSignalServer(t)
	ch := dialTest(t, srv.wsURL(), models.RoleClient, Options{})

	got := make(chan models.SessionStartedPayload, 2)
	unsub := ch.On(models.EventSessionStarted, func(data json.RawMessage) {
		var p models.SessionStartedPayload
		if json.Unmarshal(data, &p) == nil {
			got <- p
		}
	})
	waitReady(t, ch)
	srv.next(t)

	srv.push(t, models.EventSessionStarted, models.SessionStartedPayload{BookingID: "b1", Duration: 900})
	select {
	case p := <-got:
		assert.Equal(t, "b1", p.BookingID)
		assert.Equal(t, 900, p.Duration)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}

	unsub()
	srv.push(t, models.EventSessionStarted, models.SessionStartedPayload{BookingID: "b2", Duration: 900})
	// a following round trip proves the second frame was read and dropped
	require.NoError(t, ch.Emit(models.EventJoinBooking, models.JoinBookingPayload{BookingID: "b1"}))
	srv.next(t)
	assert.Empty(t, got)
}

func TestChannelEmit(t *testing.T) {
	srv := newSignalServer(t)
	ch := dialTest(t, srv.wsURL(), models.RoleClient, Options{})
	waitReady(t, ch)
	srv.next(t)

	require.NoError(t, ch.Emit(models.EventTyping, models.TypingPayload{BookingID: "b1", SenderID: "acc-1", Typing: true}))
	env := srv.next(t)
	assert.Equal(t, models.EventTyping, env.Event)
	payload, err := models.DecodeEvent(env.Event, env.Data)
	require.NoError(t, err)
	assert.True(t, payload.(*models.TypingPayload).Typing)
}

func TestEmitBeforeConnect(t *testing.T) {
	srv := newSignalServer(t)
	srv.Close()
	ch := dialTest(t, srv.wsURL(), models.RoleClient, Options{MaxAttempts: 1, Backoff: time.Millisecond})
	assert.ErrorIs(t, ch.Emit(models.EventJoinBooking, models.JoinBookingPayload{BookingID: "b1"}), ErrNotConnected)
}

func TestChannelGivesUpAfterMaxAttempts(t *testing.T) {
	srv := newSignalServer(t)
	url := srv.wsURL()
	srv.Close()

	ch := dialTest(t, url, models.RoleClient, Options{MaxAttempts: 3, Backoff: time.Millisecond})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.ErrorIs(t, ch.Wait(ctx), ErrNotConnected)
	assert.Equal(t, StatusFailed, ch.Status())
}

func TestChannelReconnects(t *testing.T) {
	srv := newSignalServer(t)
	ch := dialTest(t, srv.wsURL(), models.RoleLawyer, Options{Backoff: time.Millisecond})

	var mu sync.Mutex
	connects, disconnects := 0, 0
	ch.On(EventConnect, func(json.RawMessage) { mu.Lock(); connects++; mu.Unlock() })
	ch.On(EventDisconnect, func(json.RawMessage) { mu.Lock(); disconnects++; mu.Unlock() })

	waitReady(t, ch)
	srv.next(t)
	require.NoError(t, srv.latest().Close())

	// the reconnect announces the identity room again
	env := srv.next(t)
	assert.Equal(t, models.EventJoinLawyer, env.Event)
	assert.Equal(t, 2, srv.connections())
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return connects == 2
	}, 2*time.Second, time.Millisecond)
	assert.Equal(t, StatusConnected, ch.Status())

	mu.Lock()
	assert.Equal(t, 1, disconnects)
	mu.Unlock()
}

func TestDisconnectStopsChannel(t *testing.T) {
	srv := newSignalServer(t)
	ch := dialTest(t, srv.wsURL(), models.RoleClient, Options{})
	waitReady(t, ch)
	srv.next(t)

	ch.Disconnect()
	assert.Equal(t, StatusDisconnected, ch.Status())
	assert.ErrorIs(t, ch.Emit(models.EventTyping, models.TypingPayload{BookingID: "b1"}), ErrNotConnected)
	assert.Equal(t, 1, srv.connections())
}

func TestDisconnectFromHandler(t *testing.T) {
	srv := newSignalServer(t)
	ch := dialTest(t, srv.wsURL(), models.RoleClient, Options{})

	returned := make(chan struct{})
	ch.On(models.EventSessionEnded, func(json.RawMessage) {
		ch.Disconnect()
		close(returned)
	})
	waitReady(t, ch)
	srv.next(t)

	srv.push(t, models.EventSessionEnded, models.SessionEndedPayload{BookingID: "b1"})
	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("Disconnect blocked inside a handler")
	}
	select {
	case <-ch.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("channel did not stop")
	}
	assert.Equal(t, StatusDisconnected, ch.Status())
	assert.Equal(t, 1, srv.connections())
}
