package content

import (
	"context"
	"errors"
	"time"

	"github.com/folio-space/folio/internal/models"
	"github.com/folio-space/folio/internal/pkg/mail"
	"github.com/folio-space/folio/internal/pkg/metrics"
	"github.com/folio-space/folio/internal/repository"
	"go.uber.org/zap"
)

// Notifier delivers the owner notification for a new contact message.
type Notifier interface {
	SendContactNotify(data mail.ContactNotifyData) error
}

// Notifiers fans a notification out to every member and joins their errors.
type Notifiers []Notifier

func (ns Notifiers) SendContactNotify(data mail.ContactNotifyData) error {
	var errs []error
	for _, n := range ns {
		if err := n.SendContactNotify(data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ContactService stores contact form submissions and notifies the owner.
type ContactService struct {
	messages  *repository.Collection[models.ContactMessage]
	notifier  Notifier
	siteTitle string
	logger    *zap.Logger
	// notified, when set, observes every finished notification.
	notified func(err error)
}

func NewContactService(messages *repository.Collection[models.ContactMessage], notifier Notifier, siteTitle string, logger *zap.Logger) *ContactService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactService{messages: messages, notifier: notifier, siteTitle: siteTitle, logger: logger}
}

// Submit validates and stores the message. The notification is sent in the
// background and never fails the submission.
func (s *ContactService) Submit(ctx context.Context, in ContactInput, ip string) (models.ContactMessage, error) {
	rec, err := in.Record()
	if err != nil {
		metrics.IncContact("rejected")
		return models.ContactMessage{}, err
	}
	rec.IP = ip
	saved, err := s.messages.Add(ctx, rec)
	if err != nil {
		metrics.IncContact("failed")
		return models.ContactMessage{}, err
	}
	metrics.IncContact("stored")

	if s.notifier != nil {
		go s.notify(saved)
	}
	return saved, nil
}

func (s *ContactService) notify(msg models.ContactMessage) {
	at := msg.CreatedAt
	if at.IsZero() {
		at = time.Now()
	}
	err := s.notifier.SendContactNotify(mail.ContactNotifyData{
		SiteTitle: s.siteTitle,
		Name:      msg.Name,
		Email:     msg.Email,
		Message:   msg.Message,
		IP:        msg.IP,
		At:        at,
	})
	if err != nil {
		s.logger.Warn("contact notification failed", zap.String("message_id", msg.ID), zap.Error(err))
	}
	if s.notified != nil {
		s.notified(err)
	}
}
