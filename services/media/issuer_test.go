package media

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	iss := NewIssuer("app-1", "cert", "chat-key", time.Hour)

	creds, err := iss.Issue("bk-1", "acc-1", "publisher")
	require.NoError(t, err)
	assert.Equal(t, "app-1", creds.AppID)
	assert.Equal(t, "booking_bk-1", creds.ChannelName)
	assert.Equal(t, ParticipantUID("acc-1"), creds.UID)
	assert.NotEmpty(t, creds.Token)

	assert.NoError(t, iss.Verify(creds.Token, "booking_bk-1", creds.UID))
	assert.ErrorIs(t, iss.Verify(creds.Token, "booking_bk-2", creds.UID), ErrInvalidCredential)
	assert.ErrorIs(t, iss.Verify(creds.Token, "booking_bk-1", creds.UID+1), ErrInvalidCredential)

	other := NewIssuer("app-1", "other-cert", "chat-key", time.Hour)
	assert.ErrorIs(t, other.Verify(creds.Token, "booking_bk-1", creds.UID), ErrInvalidCredential)
}

func TestExpiredCredentialRejected(t *testing.T) {
	iss := NewIssuer("app-1", "cert", "", time.Minute)
	iss.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	creds, err := iss.Issue("bk-1", "acc-1", "publisher")
	require.NoError(t, err)
	assert.ErrorIs(t, iss.Verify(creds.Token, "booking_bk-1", creds.UID), ErrInvalidCredential)
}

func TestParticipantUIDStableAndDistinct(t *testing.T) {
	assert.Equal(t, ParticipantUID("acc-1"), ParticipantUID("acc-1"))
	assert.NotEqual(t, ParticipantUID("acc-1"), ParticipantUID("acc-2"))
	assert.NotZero(t, ParticipantUID(""))
}

func TestChatToken(t *testing.T) {
	iss := NewIssuer("app-1", "cert", "chat-key", time.Hour)
	tok, err := iss.ChatToken("asha")
	require.NoError(t, err)
	assert.Equal(t, "chat-key", tok.AppKey)
	assert.Equal(t, "asha", tok.Username)
	assert.NotEmpty(t, tok.AccessToken)

	_, err = iss.ChatToken("")
	assert.Error(t, err)

	_, err = NewIssuer("app-1", "cert", "", time.Hour).ChatToken("asha")
	assert.ErrorIs(t, err, ErrChatDisabled)
}
