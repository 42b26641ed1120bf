// Package contact は問い合わせフォームの受付を提供します。
package contact

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yourusername/gym-portal/internal/apperr"
	"github.com/yourusername/gym-portal/internal/logging"
	"github.com/yourusername/gym-portal/internal/model"
	"github.com/yourusername/gym-portal/internal/storage"
)

// ErrReadBack は保存直後の読み戻しに失敗したことを表します。
var ErrReadBack = errors.New("unable to read back saved contact")

// Input は問い合わせフォームの入力です。
type Input struct {
	Name    string `form:"name" validate:"required"`
	Age     string `form:"age" validate:"required,number"`
	Gender  string `form:"gender" validate:"required"`
	Address string `form:"address" validate:"required"`
	Email   string `form:"email" validate:"required"`
	Phone   string `form:"phone" validate:"required"`
}

// Enqueuer は保存済みの問い合わせについて通知タスクを投入します。
type Enqueuer interface {
	EnqueueContact(ctx context.Context, contactID uint) (string, error)
}

// Service は問い合わせの検証と保存を行います。
type Service struct {
	contacts storage.ContactRepository
	validate *validator.Validate
	notifier Enqueuer
	logger   logging.Logger
}

// NewService は Service を作成します。notifier は nil でも構いません。
func NewService(contacts storage.ContactRepository, notifier Enqueuer, logger logging.Logger) *Service {
	return &Service{
		contacts: contacts,
		validate: validator.New(),
		notifier: notifier,
		logger:   logger.With("component", "contact"),
	}
}

// Submit は問い合わせを検証して保存し、保存された内容を返します。
// 入力不備は apperr.ErrValidationFailed、保存・読み戻しの失敗は apperr.ErrPersistenceFailed です。
func (s *Service) Submit(ctx context.Context, in Input) (*model.Contact, error) {
	in = trimInput(in)
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrValidationFailed, err)
	}
	age, err := strconv.Atoi(in.Age)
	if err != nil || age < 0 {
		return nil, fmt.Errorf("%w: invalid age %q", apperr.ErrValidationFailed, in.Age)
	}

	contact := &model.Contact{
		Name:    in.Name,
		Age:     age,
		Gender:  in.Gender,
		Address: in.Address,
		Email:   in.Email,
		Phone:   in.Phone,
	}
	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrPersistenceFailed, err)
	}

	// 直前の挿入で採番された ID で読み戻す
	saved, err := s.contacts.FindByID(ctx, contact.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %v", apperr.ErrPersistenceFailed, ErrReadBack, err)
	}

	s.enqueue(ctx, saved.ID)
	return saved, nil
}

// Latest は最後に保存された問い合わせを返します。
func (s *Service) Latest(ctx context.Context) (*model.Contact, error) {
	contact, err := s.contacts.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrPersistenceFailed, err)
	}
	return contact, nil
}

func (s *Service) enqueue(ctx context.Context, id uint) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.EnqueueContact(ctx, id); err != nil {
		s.logger.Warn(ctx, "enqueue contact notification failed", "contact_id", id, "error", err)
	}
}

func trimInput(in Input) Input {
	return Input{
		Name:    strings.TrimSpace(in.Name),
		Age:     strings.TrimSpace(in.Age),
		Gender:  strings.TrimSpace(in.Gender),
		Address: strings.TrimSpace(in.Address),
		Email:   strings.TrimSpace(in.Email),
		Phone:   strings.TrimSpace(in.Phone),
	}
}
