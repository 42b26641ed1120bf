package storage

import (
	"context"

	"gorm.io/gorm"

	"github.com/yourusername/gym-portal/internal/model"
)

// UserRepository はアカウントの永続化操作を定義します。
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByUserID(ctx context.Context, userID string) (*model.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	UserIDExists(ctx context.Context, userID string) (bool, error)
}

// UserStore は GORM によるアカウントストアです。
type UserStore struct {
	db *gorm.DB
}

var _ UserRepository = (*UserStore)(nil)

// NewUserStore は UserStore を作成します。
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// Create はユーザーを保存します。ユーザー名または userid が重複すると ErrDuplicate を返します。
func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return wrapError(err, "create user")
	}
	return nil
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, wrapError(err, "find user by username")
	}
	return &user, nil
}

func (s *UserStore) FindByUserID(ctx context.Context, userID string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("userid = ?", userID).First(&user).Error; err != nil {
		return nil, wrapError(err, "find user by userid")
	}
	return &user, nil
}

func (s *UserStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	return s.exists(ctx, "username = ?", username)
}

func (s *UserStore) UserIDExists(ctx context.Context, userID string) (bool, error) {
	return s.exists(ctx, "userid = ?", userID)
}

func (s *UserStore) exists(ctx context.Context, query string, arg any) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where(query, arg).Count(&count).Error; err != nil {
		return false, wrapError(err, "count users")
	}
	return count > 0, nil
}
