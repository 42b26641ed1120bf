// Package auth はアカウント登録・ログイン認証と、認証状態によるアクセス制御を提供します。
package auth

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/gym-portal/internal/apperr"
	"github.com/yourusername/gym-portal/internal/model"
	"github.com/yourusername/gym-portal/internal/storage"
)

const (
	bcryptCost = 10

	// userid の数値サフィックスは [userIDSuffixMin, userIDSuffixMax) の範囲
	userIDSuffixMin = 1000
	userIDSuffixMax = 101000

	maxUserIDAttempts = 5
)

var (
	// ErrPasswordMismatch はパスワードと確認用パスワードが一致しない場合のエラーです。
	ErrPasswordMismatch = errors.New("password confirmation does not match")
	// ErrUsernameTaken はユーザー名が既に使われている場合のエラーです。
	ErrUsernameTaken = errors.New("username already taken")
	// ErrUserNotFound は userid に対応するユーザーが存在しない場合のエラーです。
	ErrUserNotFound = storage.ErrNotFound
)

// ユーザーが存在しない場合にも同じコストの比較を行うためのダミーハッシュ
var dummyHash = sync.OnceValue(func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("gym-portal-dummy-password"), bcryptCost)
	if err != nil {
		panic(err)
	}
	return h
})

// RegisterInput はサインアップフォームの入力です。
type RegisterInput struct {
	FirstName       string
	LastName        string
	Username        string
	Password        string
	ConfirmPassword string
}

// Service はアカウントの登録と認証を行います。
type Service struct {
	users storage.UserRepository
	intN  func(n int) int
}

// NewService は認証サービスを作成します。
func NewService(users storage.UserRepository) *Service {
	return &Service{
		users: users,
		intN:  rand.IntN,
	}
}

// Register は新しいアカウントを作成します。
// 入力不備・確認用パスワード不一致・ユーザー名重複は apperr.ErrValidationFailed、
// 保存に失敗した場合は apperr.ErrPersistenceFailed を返します。
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Username = strings.TrimSpace(in.Username)

	if err := validateRegister(in); err != nil {
		return nil, err
	}

	taken, err := s.users.UsernameExists(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrPersistenceFailed, err)
	}
	if taken {
		return nil, fmt.Errorf("%w: %w", apperr.ErrValidationFailed, ErrUsernameTaken)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%w: hash password: %v", apperr.ErrValidationFailed, err)
	}

	for attempt := 0; attempt < maxUserIDAttempts; attempt++ {
		userID := DeriveUserID(in.FirstName, in.LastName, s.userIDSuffix())

		exists, err := s.users.UserIDExists(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrPersistenceFailed, err)
		}
		if exists {
			continue
		}

		user := &model.User{
			FirstName:    in.FirstName,
			LastName:     in.LastName,
			Username:     in.Username,
			PasswordHash: string(hash),
			UserID:       userID,
		}
		err = s.users.Create(ctx, user)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, storage.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %v", apperr.ErrPersistenceFailed, err)
		}

		// 同時登録で先を越された場合はユーザー名の重複として扱う
		if taken, checkErr := s.users.UsernameExists(ctx, in.Username); checkErr == nil && taken {
			return nil, fmt.Errorf("%w: %w", apperr.ErrValidationFailed, ErrUsernameTaken)
		}
	}

	return nil, fmt.Errorf("%w: could not derive a unique userid after %d attempts", apperr.ErrPersistenceFailed, maxUserIDAttempts)
}

// Verify はユーザー名とパスワードを検証します。
// ユーザーが存在しない場合とパスワード不一致の場合は同一の apperr.ErrAuthFailure を返します。
func (s *Service) Verify(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperr.ErrAuthFailure
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
			return nil, apperr.ErrAuthFailure
		}
		return nil, fmt.Errorf("%w: %v", apperr.ErrPersistenceFailed, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.ErrAuthFailure
	}
	return user, nil
}

// FindByUserID は userid でユーザーを取得します。存在しない場合は ErrUserNotFound です。
func (s *Service) FindByUserID(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", apperr.ErrPersistenceFailed, err)
	}
	return user, nil
}

// DeriveUserID は姓名とサフィックスから userid を生成します。
// 姓名は空白を除去して小文字化されます。
func DeriveUserID(firstName, lastName string, suffix int) string {
	return normalizeName(firstName) + normalizeName(lastName) + strconv.Itoa(suffix)
}

func normalizeName(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	return strings.ToLower(s)
}

func (s *Service) userIDSuffix() int {
	return userIDSuffixMin + s.intN(userIDSuffixMax-userIDSuffixMin)
}

func validateRegister(in RegisterInput) error {
	var missing []string
	if in.FirstName == "" {
		missing = append(missing, "first name")
	}
	if in.LastName == "" {
		missing = append(missing, "last name")
	}
	if in.Username == "" {
		missing = append(missing, "username")
	}
	if in.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", apperr.ErrValidationFailed, strings.Join(missing, ", "))
	}
	if in.Password != in.ConfirmPassword {
		return fmt.Errorf("%w: %w", apperr.ErrValidationFailed, ErrPasswordMismatch)
	}
	return nil
}
