// Package chat persists consultation messages and relays them to the booking room.
package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "lawdesk/database/repository/booking"
	messageRepo "lawdesk/database/repository/message"
	"lawdesk/models"
	"lawdesk/services/signaling"
	"lawdesk/services/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultChatService implements ChatService. Store may be nil, in which case
// inline attachments are refused.
type DefaultChatService struct {
	messages messageRepo.MessageRepository
	bookings bookingRepo.BookingRepository
	store    storage.AttachmentStore
	relay    Relay
	logger   *zap.Logger
	now      func() time.Time
}

func NewDefaultChatService(
	messages messageRepo.MessageRepository,
	bookings bookingRepo.BookingRepository,
	store storage.AttachmentStore,
	relay Relay,
	logger *zap.Logger,
) *DefaultChatService {
	if logger == nil {
		logger = zap.L().Named("chat")
	}
	return &DefaultChatService{
		messages: messages,
		bookings: bookings,
		store:    store,
		relay:    relay,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *DefaultChatService) participant(ctx context.Context, actor Actor, bookingID string) (*models.Booking, string, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if errors.Is(err, bookingRepo.ErrNotFound) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}
	switch {
	case actor.AccountID == b.ClientID:
		return b, models.RoleClient, nil
	case actor.Role == models.RoleLawyer && actor.LawyerID == b.LawyerID:
		return b, models.RoleLawyer, nil
	case actor.Role == models.RoleAdmin:
		return b, models.RoleAdmin, nil
	}
	return nil, "", ErrForbidden
}

// Send stores msg once by id and relays it to the booking room. A message that
// was already stored is returned without relaying it again.
func (s *DefaultChatService) Send(ctx context.Context, sender Actor, msg models.Message) (*models.Message, error) {
	b, role, err := s.participant(ctx, sender, msg.BookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.StatusActive && b.Status != models.StatusAccepted {
		return nil, ErrSessionNotActive
	}
	if msg.Content == "" && len(msg.Files) == 0 {
		return nil, ErrEmptyMessage
	}

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.now()
	}
	msg.SenderID = sender.AccountID
	msg.SenderRole = role
	if msg.SenderName == "" {
		msg.SenderName = sender.Name
	}
	msg.Type = models.MessageText
	if len(msg.Files) > 0 {
		msg.Type = models.MessageFile
	}

	uploaded, err := s.hostFiles(ctx, &msg)
	if err != nil {
		s.discard(ctx, uploaded)
		return nil, err
	}

	created, err := s.messages.Save(ctx, &msg)
	if err != nil {
		s.discard(ctx, uploaded)
		return nil, err
	}
	if !created {
		s.discard(ctx, uploaded)
		s.logger.Debug("duplicate message ignored", zap.String("messageId", msg.ID), zap.String("bookingId", msg.BookingID))
		return &msg, nil
	}

	if err := s.relay.Emit(ctx, signaling.BookingRoom(msg.BookingID), models.EventNewMessage, &msg); err != nil {
		s.logger.Warn("message not relayed", zap.String("messageId", msg.ID), zap.Error(err))
	}
	return &msg, nil
}

// hostFiles replaces inline data URLs with hosted copies.
func (s *DefaultChatService) hostFiles(ctx context.Context, msg *models.Message) ([]string, error) {
	var uploaded []string
	for i := range msg.Files {
		f := &msg.Files[i]
		if !storage.IsDataURL(f.FileURL) {
			continue
		}
		if s.store == nil {
			return uploaded, fmt.Errorf("attachments are not enabled")
		}
		data, err := storage.ParseDataURL(f.FileURL)
		if err != nil {
			return uploaded, err
		}
		att, err := s.store.Upload(ctx, "chat/"+msg.BookingID, data)
		if err != nil {
			return uploaded, fmt.Errorf("upload %s: %w", f.FileName, err)
		}
		uploaded = append(uploaded, att.ID)
		f.FileURL = att.URL
		if f.FileType == "" {
			f.FileType = data.ContentType
		}
	}
	return uploaded, nil
}

func (s *DefaultChatService) discard(ctx context.Context, ids []string) {
	for _, id := range ids {
		if err := s.store.Delete(ctx, id); err != nil {
			s.logger.Warn("orphaned attachment", zap.String("id", id), zap.Error(err))
		}
	}
}

// History returns the booking's messages oldest first.
func (s *DefaultChatService) History(ctx context.Context, actor Actor, bookingID string) ([]models.Message, error) {
	if _, _, err := s.participant(ctx, actor, bookingID); err != nil {
		return nil, err
	}
	msgs, err := s.messages.History(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	models.SortMessages(msgs)
	return msgs, nil
}

// RegisterSignalHandlers stores chat-message events sent over signaling.
func (s *DefaultChatService) RegisterSignalHandlers(hub *signaling.Hub) {
	hub.Handle(models.EventChatMessage, func(ctx context.Context, from signaling.Identity, payload interface{}) error {
		_, err := s.Send(ctx, from, *payload.(*models.Message))
		return err
	})
}
