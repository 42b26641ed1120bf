package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/yourusername/gym-portal/internal/logging"
	"github.com/yourusername/gym-portal/internal/model"
	"github.com/yourusername/gym-portal/internal/storage"
)

// ContactFinder は ID で問い合わせを取得します。
type ContactFinder interface {
	FindByID(ctx context.Context, id uint) (*model.Contact, error)
}

// Notifier は問い合わせを担当者へ通知します。
type Notifier interface {
	NotifyContact(ctx context.Context, contact *model.Contact) error
}

// LogNotifier は問い合わせをログに出力するだけの Notifier です。
type LogNotifier struct {
	Logger logging.Logger
}

func (n LogNotifier) NotifyContact(ctx context.Context, contact *model.Contact) error {
	n.Logger.Info(ctx, "new contact request",
		"contact_id", contact.ID,
		"name", contact.Name,
		"email", contact.Email,
		"phone", contact.Phone,
	)
	return nil
}

// Processor は通知タスクを処理します。
type Processor struct {
	contacts ContactFinder
	notifier Notifier
	logger   logging.Logger
}

// NewProcessor は Processor を作成します。
func NewProcessor(contacts ContactFinder, notifier Notifier, logger logging.Logger) *Processor {
	return &Processor{
		contacts: contacts,
		notifier: notifier,
		logger:   logger.With("component", "jobs"),
	}
}

// ProcessTask は asynq.Handler の実装です。
// ペイロード不正や問い合わせが存在しない場合は再試行しません。
func (p *Processor) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload ContactPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.ContactID == 0 {
		return fmt.Errorf("missing contactId in payload: %w", asynq.SkipRetry)
	}

	contact, err := p.contacts.FindByID(ctx, payload.ContactID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			p.logger.Warn(ctx, "contact for notification not found", "contact_id", payload.ContactID)
			return fmt.Errorf("contact %d: %v: %w", payload.ContactID, err, asynq.SkipRetry)
		}
		return err
	}

	if err := p.notifier.NotifyContact(ctx, contact); err != nil {
		p.logger.Error(ctx, "contact notification failed", "contact_id", contact.ID, "error", err)
		return err
	}
	return nil
}
