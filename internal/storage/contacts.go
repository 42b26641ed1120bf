package storage

import (
	"context"

	"gorm.io/gorm"

	"github.com/yourusername/gym-portal/internal/model"
)

// ContactRepository は問い合わせの永続化操作を定義します。
type ContactRepository interface {
	Create(ctx context.Context, contact *model.Contact) error
	FindByID(ctx context.Context, id uint) (*model.Contact, error)
	Latest(ctx context.Context) (*model.Contact, error)
}

// ContactStore は GORM による問い合わせストアです。
type ContactStore struct {
	db *gorm.DB
}

var _ ContactRepository = (*ContactStore)(nil)

// NewContactStore は ContactStore を作成します。
func NewContactStore(db *gorm.DB) *ContactStore {
	return &ContactStore{db: db}
}

// Create は問い合わせを保存し、採番された ID を contact.ID に設定します。
func (s *ContactStore) Create(ctx context.Context, contact *model.Contact) error {
	if err := s.db.WithContext(ctx).Create(contact).Error; err != nil {
		return wrapError(err, "create contact")
	}
	return nil
}

func (s *ContactStore) FindByID(ctx context.Context, id uint) (*model.Contact, error) {
	var contact model.Contact
	if err := s.db.WithContext(ctx).First(&contact, id).Error; err != nil {
		return nil, wrapError(err, "find contact")
	}
	return &contact, nil
}

// Latest は最後に挿入された問い合わせを返します。
func (s *ContactStore) Latest(ctx context.Context) (*model.Contact, error) {
	var contact model.Contact
	if err := s.db.WithContext(ctx).Order("id DESC").First(&contact).Error; err != nil {
		return nil, wrapError(err, "find latest contact")
	}
	return &contact, nil
}
