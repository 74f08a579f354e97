// Package media issues credentials for booking media rooms and the hosted chat transport.
package media

import (
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"lawdesk/models"

	"github.com/golang-jwt/jwt"
)

var (
	ErrInvalidCredential = errors.New("invalid media credential")
	ErrChatDisabled      = errors.New("hosted chat transport is not configured")
)

// ChannelName is the media room name of a booking.
func ChannelName(bookingID string) string {
	return "booking_" + bookingID
}

// ParticipantUID maps a participant id onto the numeric uid space of media rooms.
// The mapping is stable so reconnecting participants keep their uid.
func ParticipantUID(participantID string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(participantID))
	uid := h.Sum32()
	if uid == 0 {
		uid = 1
	}
	return uid
}

// Issuer signs room and chat credentials with the app certificate.
type Issuer struct {
	appID       string
	certificate []byte
	chatAppKey  string
	ttl         time.Duration
	now         func() time.Time
}

func NewIssuer(appID, certificate, chatAppKey string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Issuer{
		appID:       appID,
		certificate: []byte(certificate),
		chatAppKey:  chatAppKey,
		ttl:         ttl,
		now:         time.Now,
	}
}

type roomClaims struct {
	Channel string `json:"chn"`
	UID     uint32 `json:"uid"`
	Role    string `json:"role"`
	jwt.StandardClaims
}

// Issue returns the credentials participantID needs to join the booking's room.
func (i *Issuer) Issue(bookingID, participantID, role string) (*models.MediaCredentials, error) {
	if bookingID == "" || participantID == "" {
		return nil, fmt.Errorf("%w: booking and participant are required", ErrInvalidCredential)
	}
	now := i.now()
	expires := now.Add(i.ttl)
	claims := roomClaims{
		Channel: ChannelName(bookingID),
		UID:     ParticipantUID(participantID),
		Role:    role,
		StandardClaims: jwt.StandardClaims{
			Issuer:    i.appID,
			Subject:   participantID,
			IssuedAt:  now.Unix(),
			ExpiresAt: expires.Unix(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.certificate)
	if err != nil {
		return nil, fmt.Errorf("sign media token: %w", err)
	}
	return &models.MediaCredentials{
		AppID:       i.appID,
		ChannelName: claims.Channel,
		UID:         claims.UID,
		Token:       token,
		ExpiresAt:   expires,
	}, nil
}

// Verify checks that token admits uid into channel.
func (i *Issuer) Verify(token, channel string, uid uint32) error {
	claims := &roomClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.certificate, nil
	})
	if err != nil || !parsed.Valid {
		return fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if claims.Channel != channel || claims.UID != uid {
		return fmt.Errorf("%w: wrong channel or uid", ErrInvalidCredential)
	}
	return nil
}

// ChatToken issues an access token for the hosted chat transport.
func (i *Issuer) ChatToken(username string) (*models.ChatToken, error) {
	if i.chatAppKey == "" || len(i.certificate) == 0 {
		return nil, ErrChatDisabled
	}
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidCredential)
	}
	now := i.now()
	expires := now.Add(i.ttl)
	claims := jwt.StandardClaims{
		Audience:  i.chatAppKey,
		Subject:   username,
		IssuedAt:  now.Unix(),
		ExpiresAt: expires.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.certificate)
	if err != nil {
		return nil, fmt.Errorf("sign chat token: %w", err)
	}
	return &models.ChatToken{AppKey: i.chatAppKey, Username: username, AccessToken: token, ExpiresAt: expires}, nil
}
