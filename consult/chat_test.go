package consult

import (
	"context"
	"testing"
	"time"

	"lawdesk/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatRig struct {
	sig       *fakeSignal
	store     *memStore
	transport *fakeTransport
	ticks     chan time.Time
	session   *ChatSession
}

func newChatRig(t *testing.T, configure func(*ChatConfig)) *chatRig {
	t.Helper()
	r := &chatRig{sig: newFakeSignal(), store: newMemStore(), ticks: make(chan time.Time)}
	cfg := ChatConfig{
		Booking: models.Booking{ID: "b1", ClientID: "u1", LawyerID: "L", Mode: models.ModeChat, Status: models.StatusActive, DurationSeconds: 900},
		Self:    Participant{ID: "u1", Name: "Asha", Role: models.RoleClient},
		Signal:  r.sig,
		Store:   r.store,
		Ticks:   r.ticks,
	}
	if configure != nil {
		configure(&cfg)
	}
	if tr, ok := cfg.Transport.(*fakeTransport); ok {
		r.transport = tr
	}
	r.session = NewChatSession(cfg)
	require.NoError(t, r.session.Start(context.Background()))
	t.Cleanup(func() { r.session.Close() })
	return r
}

func (r *chatRig) tick(n int) {
	for i := 0; i < n; i++ {
		r.ticks <- time.Now()
	}
}

func TestSendIsOptimisticAndPersistedOnce(t *testing.T) {
	r := newChatRig(t, nil)

	msg, err := r.session.Send(context.Background(), "  hello  ")
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Content)
	assert.Equal(t, models.MessageText, msg.Type)

	shown := r.session.Messages()
	require.Len(t, shown, 1)
	assert.Equal(t, msg.ID, shown[0].ID)

	relayed := r.sig.emitted(models.EventChatMessage)
	require.Len(t, relayed, 1)
	assert.Equal(t, msg.ID, relayed[0].(models.Message).ID)

	// the server echo of our own message must not duplicate it
	r.sig.fire(t, models.EventNewMessage, *msg)
	assert.Len(t, r.session.Messages(), 1)

	history, err := r.store.History(context.Background(), "b1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, msg.ID, history[0].ID)
}

func TestSendRejectsEmpty(t *testing.T) {
	r := newChatRig(t, nil)
	_, err := r.session.Send(context.Background(), "   ")
	assert.Error(t, err)
	assert.Empty(t, r.session.Messages())
}

func TestSendFileMessage(t *testing.T) {
	r := newChatRig(t, nil)
	msg, err := r.session.Send(context.Background(), "", models.FileAttach{FileURL: "https://cdn/x.pdf", FileType: "application/pdf", FileName: "x.pdf"})
	require.NoError(t, err)
	assert.Equal(t, models.MessageFile, msg.Type)
}

func TestStartLoadsHistoryInOrder(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	r := newChatRig(t, func(cfg *ChatConfig) {
		store := newMemStore()
		store.SendMessage(context.Background(), models.Message{ID: "m2", BookingID: "b1", Content: "second", Timestamp: base.Add(time.Minute)})
		store.SendMessage(context.Background(), models.Message{ID: "m1", BookingID: "b1", Content: "first", Timestamp: base})
		store.SendMessage(context.Background(), models.Message{ID: "x", BookingID: "other", Content: "elsewhere", Timestamp: base})
		cfg.Store = store
	})

	shown := r.session.Messages()
	require.Len(t, shown, 2)
	assert.Equal(t, "m1", shown[0].ID)
	assert.Equal(t, "m2", shown[1].ID)
}

func TestMessagesDeduplicatedAcrossTransports(t *testing.T) {
	r := newChatRig(t, func(cfg *ChatConfig) {
		cfg.Transport = &fakeTransport{}
		cfg.Tokens = fakeTokens{}
	})
	require.True(t, r.session.UsingTransport())

	incoming := models.Message{ID: "m1", BookingID: "b1", SenderID: "acc-L", Content: "hi", Timestamp: time.Now()}
	r.transport.onMsg(incoming)
	r.sig.fire(t, models.EventNewMessage, incoming)
	r.transport.onMsg(models.Message{ID: "m9", BookingID: "other", Content: "nope"})

	shown := r.session.Messages()
	require.Len(t, shown, 1)
	assert.Equal(t, "m1", shown[0].ID)
}

func TestSendUsesHostedTransport(t *testing.T) {
	r := newChatRig(t, func(cfg *ChatConfig) {
		cfg.Transport = &fakeTransport{}
		cfg.Tokens = fakeTokens{}
	})

	msg, err := r.session.Send(context.Background(), "over the hosted service")
	require.NoError(t, err)
	require.Len(t, r.transport.sent, 1)
	assert.Equal(t, msg.ID, r.transport.sent[0].ID)
	assert.Empty(t, r.sig.emitted(models.EventChatMessage))
}

func TestTransportFallsBackToSignaling(t *testing.T) {
	for name, configure := range map[string]func(*ChatConfig){
		"token error": func(cfg *ChatConfig) {
			cfg.Transport = &fakeTransport{}
			cfg.Tokens = fakeTokens{err: errBoom}
		},
		"connect error": func(cfg *ChatConfig) {
			cfg.Transport = &fakeTransport{connErr: errBoom}
			cfg.Tokens = fakeTokens{}
		},
	} {
		t.Run(name, func(t *testing.T) {
			r := newChatRig(t, configure)
			assert.False(t, r.session.UsingTransport())

			_, err := r.session.Send(context.Background(), "hi")
			require.NoError(t, err)
			assert.Len(t, r.sig.emitted(models.EventChatMessage), 1)
			assert.Empty(t, r.transport.sent)
		})
	}
}

func TestCountdownEndsSessionAtZero(t *testing.T) {
	r := newChatRig(t, nil)

	r.tick(899)
	require.Eventually(t, func() bool { return r.session.Remaining() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, models.StatusActive, r.session.Status())
	assert.Empty(t, r.sig.emitted(models.EventEndSession))

	r.tick(1)
	require.Eventually(t, func() bool { return r.session.Status() == models.StatusEnded }, time.Second, time.Millisecond)
	assert.Equal(t, 0, r.session.Remaining())
	ends := r.sig.emitted(models.EventEndSession)
	require.Len(t, ends, 1)
	assert.Equal(t, models.EndSessionPayload{BookingID: "b1"}, ends[0])

	_, err := r.session.Send(context.Background(), "too late")
	assert.ErrorIs(t, err, ErrSessionLocked)
}

func TestCustomDuration(t *testing.T) {
	r := newChatRig(t, func(cfg *ChatConfig) { cfg.Duration = 3 })
	r.tick(3)
	require.Eventually(t, func() bool { return r.session.Status() == models.StatusEnded }, time.Second, time.Millisecond)
}

func TestRemoteEndLocksWithoutEcho(t *testing.T) {
	r := newChatRig(t, nil)

	r.sig.fire(t, models.EventSessionEnded, models.SessionEndedPayload{BookingID: "other"})
	assert.Equal(t, models.StatusActive, r.session.Status())

	r.sig.fire(t, models.EventSessionEnded, models.SessionEndedPayload{BookingID: "b1", Reason: "expired"})
	assert.Equal(t, models.StatusEnded, r.session.Status())
	assert.Empty(t, r.sig.emitted(models.EventEndSession))

	_, err := r.session.Send(context.Background(), "hello?")
	assert.ErrorIs(t, err, ErrSessionLocked)
}

func TestCallStatusEndedLocks(t *testing.T) {
	r := newChatRig(t, nil)
	r.sig.fire(t, models.EventCallStatus, models.CallStatusPayload{BookingID: "b1", Status: models.CallEnded})
	assert.Equal(t, models.StatusEnded, r.session.Status())
}

func TestEndEmitsOnce(t *testing.T) {
	r := newChatRig(t, nil)
	require.NoError(t, r.session.End())
	assert.ErrorIs(t, r.session.End(), ErrSessionLocked)
	assert.Len(t, r.sig.emitted(models.EventEndSession), 1)
}

func TestTypingIndicatorClearsItself(t *testing.T) {
	r := newChatRig(t, func(cfg *ChatConfig) { cfg.TypingTimeout = 20 * time.Millisecond })

	r.sig.fire(t, models.EventTyping, models.TypingPayload{BookingID: "b1", SenderID: "acc-L", Typing: true})
	r.sig.fire(t, models.EventTyping, models.TypingPayload{BookingID: "b1", SenderID: "u1", Typing: true})
	assert.Equal(t, []string{"acc-L"}, r.session.TypingUsers())

	require.Eventually(t, func() bool { return len(r.session.TypingUsers()) == 0 }, time.Second, 5*time.Millisecond)
}

func TestTypingClearedByMessage(t *testing.T) {
	r := newChatRig(t, nil)
	r.sig.fire(t, models.EventTyping, models.TypingPayload{BookingID: "b1", SenderID: "acc-L", Typing: true})
	r.sig.fire(t, models.EventNewMessage, models.Message{ID: "m1", BookingID: "b1", SenderID: "acc-L", Content: "done", Timestamp: time.Now()})
	assert.Empty(t, r.session.TypingUsers())
}

func TestTypingEmits(t *testing.T) {
	r := newChatRig(t, nil)
	require.NoError(t, r.session.Typing(true))
	assert.Equal(t, []interface{}{models.TypingPayload{BookingID: "b1", SenderID: "u1", Typing: true}}, r.sig.emitted(models.EventTyping))
}

func TestGroupsByDay(t *testing.T) {
	day1 := time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC)
	r := newChatRig(t, func(cfg *ChatConfig) {
		store := newMemStore()
		store.SendMessage(context.Background(), models.Message{ID: "a", BookingID: "b1", Content: "late", Timestamp: day1})
		store.SendMessage(context.Background(), models.Message{ID: "b", BookingID: "b1", Content: "next day", Timestamp: day1.Add(time.Hour)})
		cfg.Store = store
	})

	groups := r.session.Groups(time.UTC)
	require.Len(t, groups, 2)
	assert.Equal(t, "2026-03-01", groups[0].Day)
	assert.Equal(t, "2026-03-02", groups[1].Day)
}

func TestCloseReleasesTransportAndSubscriptions(t *testing.T) {
	r := newChatRig(t, func(cfg *ChatConfig) {
		cfg.Transport = &fakeTransport{}
		cfg.Tokens = fakeTokens{}
	})
	require.NoError(t, r.session.Close())
	assert.True(t, r.transport.closed)
	assert.Zero(t, r.sig.subscribers(models.EventNewMessage))
}
