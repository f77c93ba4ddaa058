//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"pairchat/domain"
	"pairchat/errors"
)

// Key layout:
//
//	user:{id}           profile record, including the password hash
//	user-email:{email}  unique index from login email to user id
const (
	userPrefix      = "user:"
	userEmailPrefix = "user-email:"
)

type IUserRepository interface {
	CreateUser(ctx context.Context, email, displayName, passwordHash string) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, string, error)
	UpdateProfile(ctx context.Context, id string, displayName, statusText, avatarRef *string) (domain.User, error)
	Disable(ctx context.Context, id string) error
	ListUsers(ctx context.Context, excludeID string) ([]domain.User, error)
}

// UserRepository persists profiles in BadgerDB. Users are never hard
// deleted; Disable flips a soft flag that hides them from lookups.
type UserRepository struct {
	db  *badger.DB
	now func() time.Time
}

func NewUserRepository(db *badger.DB) *UserRepository {
	return &UserRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *UserRepository) CreateUser(ctx context.Context, email, displayName, passwordHash string) (domain.User, error) {
	user := domain.User{
		ID:          uuid.NewString(),
		Email:       email,
		DisplayName: displayName,
		StatusText:  domain.DefaultStatusText,
		CreatedAt:   r.now(),
	}

	err := r.db.Update(func(txn *badger.Txn) error {
		emailKey := []byte(userEmailPrefix + email)
		if _, err := txn.Get(emailKey); err == nil {
			return errors.ErrUserAlreadyExists
		}
		data, err := json.Marshal(fromUser(user, passwordHash))
		if err != nil {
			return err
		}
		if err := txn.Set([]byte(userPrefix+user.ID), data); err != nil {
			return err
		}
		return txn.Set(emailKey, []byte(user.ID))
	})
	if err != nil {
		return domain.User{}, storeErr(err)
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	var rec diskUser
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		rec, err = getUserRecord(txn, id)
		return err
	})
	if err != nil {
		return domain.User{}, storeErr(err)
	}
	if rec.Disabled {
		return domain.User{}, fmt.Errorf("user %s: %w", id, errors.ErrNotFound)
	}
	return toUser(rec), nil
}

// GetByEmail also returns the stored password hash for credential checks.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (domain.User, string, error) {
	var rec diskUser
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(userEmailPrefix + email))
		if err != nil {
			if stderrors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("email %s: %w", email, errors.ErrNotFound)
			}
			return err
		}
		var id string
		if err := item.Value(func(val []byte) error {
			id = string(val)
			return nil
		}); err != nil {
			return err
		}
		rec, err = getUserRecord(txn, id)
		return err
	})
	if err != nil {
		return domain.User{}, "", storeErr(err)
	}
	if rec.Disabled {
		return domain.User{}, "", fmt.Errorf("email %s: %w", email, errors.ErrNotFound)
	}
	return toUser(rec), rec.PasswordHash, nil
}

// UpdateProfile applies the non-nil fields and returns the updated user.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, displayName, statusText, avatarRef *string) (domain.User, error) {
	var rec diskUser
	err := r.db.Update(func(txn *badger.Txn) error {
		var err error
		rec, err = getUserRecord(txn, id)
		if err != nil {
			return err
		}
		if rec.Disabled {
			return fmt.Errorf("user %s: %w", id, errors.ErrNotFound)
		}
		if displayName != nil {
			rec.DisplayName = *displayName
		}
		if statusText != nil {
			rec.StatusText = *statusText
		}
		if avatarRef != nil {
			rec.AvatarRef = *avatarRef
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return txn.Set([]byte(userPrefix+id), data)
	})
	if err != nil {
		return domain.User{}, storeErr(err)
	}
	return toUser(rec), nil
}

func (r *UserRepository) Disable(ctx context.Context, id string) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		rec, err := getUserRecord(txn, id)
		if err != nil {
			return err
		}
		rec.Disabled = true
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return txn.Set([]byte(userPrefix+id), data)
	})
	return storeErr(err)
}

// ListUsers returns every enabled profile except excludeID, sorted by
// display name for stable contact lists.
func (r *UserRepository) ListUsers(ctx context.Context, excludeID string) ([]domain.User, error) {
	var users []domain.User
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(userPrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec diskUser
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			if rec.Disabled || rec.ID == excludeID {
				continue
			}
			users = append(users, toUser(rec))
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}

	sort.Slice(users, func(i, j int) bool {
		if users[i].DisplayName != users[j].DisplayName {
			return users[i].DisplayName < users[j].DisplayName
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

func getUserRecord(txn *badger.Txn, id string) (diskUser, error) {
	item, err := txn.Get([]byte(userPrefix + id))
	if err != nil {
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return diskUser{}, fmt.Errorf("user %s: %w", id, errors.ErrNotFound)
		}
		return diskUser{}, err
	}
	var rec diskUser
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	}); err != nil {
		return diskUser{}, err
	}
	return rec, nil
}
