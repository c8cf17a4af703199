package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/campusmarket/campusmarket-backend/internal/common"
	"github.com/campusmarket/campusmarket-backend/internal/domain"
	"github.com/campusmarket/campusmarket-backend/internal/notify"
	"github.com/campusmarket/campusmarket-backend/internal/repository"
	pkglogger "github.com/campusmarket/campusmarket-backend/pkg/logger"
	"gorm.io/gorm"
)

// Publisher fans a serialized message payload out to the live subscribers
// of one thread. *ws.Hub satisfies it.
type Publisher interface {
	Publish(threadID string, payload []byte)
}

// MessageService appends to and reads a thread's conversation log
type MessageService interface {
	Post(threadID, senderID, body string) (*domain.MessageResponse, error)
	List(threadID, requesterID string) ([]*domain.MessageResponse, error)
}

type messageService struct {
	repo       repository.MessageRepository
	threadRepo repository.ThreadRepository
	publisher  Publisher
	dispatcher notify.Dispatcher
}

// NewMessageService creates a new MessageService
func NewMessageService(
	repo repository.MessageRepository,
	threadRepo repository.ThreadRepository,
	publisher Publisher,
	dispatcher notify.Dispatcher,
) MessageService {
	return &messageService{
		repo:       repo,
		threadRepo: threadRepo,
		publisher:  publisher,
		dispatcher: dispatcher,
	}
}

// Post appends a message and bumps the thread's last activity in one
// transaction. After the commit it hands the message to the live hub and
// the notification queue; both are fire-and-forget and cannot fail or
// delay the response. A sender who is not a participant gets the same
// ErrThreadNotFound as a missing thread.
func (s *messageService) Post(threadID, senderID, body string) (*domain.MessageResponse, error) {
	thread, err := s.threadRepo.FindByID(threadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrThreadNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	if !thread.IsParticipant(senderID) {
		return nil, common.ErrThreadNotFound
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, common.ErrEmptyBody
	}

	msg := &domain.Message{
		ThreadID: threadID,
		SenderID: senderID,
		Body:     body,
	}
	if err := s.repo.CreateInThread(msg); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}

	// Attach the sender from the already-loaded thread participants
	if thread.Buyer != nil && thread.Buyer.ID == senderID {
		msg.Sender = thread.Buyer
	} else if thread.Seller != nil && thread.Seller.ID == senderID {
		msg.Sender = thread.Seller
	}

	resp := msg.ToResponse()
	go s.fanOut(resp)
	go s.notifyRecipient(thread, senderID)

	return resp, nil
}

// List returns the full history ascending by creation order. Visibility
// follows the same rule as Post.
func (s *messageService) List(threadID, requesterID string) ([]*domain.MessageResponse, error) {
	thread, err := s.threadRepo.FindByID(threadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrThreadNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	if !thread.IsParticipant(requesterID) {
		return nil, common.ErrThreadNotFound
	}

	messages, err := s.repo.ListByThread(threadID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}

	responses := make([]*domain.MessageResponse, len(messages))
	for i, m := range messages {
		responses[i] = m.ToResponse()
	}
	return responses, nil
}

func (s *messageService) fanOut(resp *domain.MessageResponse) {
	payload, err := json.Marshal(resp)
	if err != nil {
		pkglogger.GetLogger().Error().Err(err).
			Str("thread_id", resp.ThreadID).
			Msg("marshal message for fan-out")
		return
	}
	s.publisher.Publish(resp.ThreadID, payload)
}

// notifyRecipient queues an email job for the offline counterpart.
// Failures are logged and swallowed; the message is already committed.
func (s *messageService) notifyRecipient(thread *domain.Thread, senderID string) {
	recipient := thread.Seller
	senderRole := "a potential buyer"
	if senderID == thread.SellerID {
		recipient = thread.Buyer
		senderRole = "the seller"
	}
	if recipient == nil {
		return
	}

	job := &notify.Job{
		RecipientID:    recipient.ID,
		RecipientEmail: recipient.Email,
		Kind:           notify.KindNewMessage,
		Context: map[string]string{
			"recipient_name": recipient.Name,
			"sender_role":    senderRole,
		},
	}
	if thread.Listing != nil {
		job.Context["listing_title"] = thread.Listing.Title
	}

	if err := s.dispatcher.Dispatch(context.Background(), job); err != nil {
		pkglogger.GetLogger().Warn().Err(err).
			Str("thread_id", thread.ID).
			Str("recipient_id", recipient.ID).
			Msg("enqueue new-message notification")
	}
}
