package repositories

import (
	"context"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"pairchat/domain"
	"pairchat/errors"
)

func newTestUserRepository(t *testing.T) *UserRepository {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewUserRepository(db)
}

func Test_CreateUser_And_Lookups(t *testing.T) {
	req := require.New(t)
	repo := newTestUserRepository(t)
	ctx := context.Background()

	created, err := repo.CreateUser(ctx, "alice@example.com", "Alice", "hash-1")
	req.NoError(err)
	req.NotEmpty(created.ID)
	req.Equal(domain.DefaultStatusText, created.StatusText)
	req.False(created.CreatedAt.IsZero())

	byID, err := repo.GetByID(ctx, created.ID)
	req.NoError(err)
	req.Equal(created.Email, byID.Email)

	byEmail, hash, err := repo.GetByEmail(ctx, "alice@example.com")
	req.NoError(err)
	req.Equal(created.ID, byEmail.ID)
	req.Equal("hash-1", hash)

	_, err = repo.GetByID(ctx, "missing")
	req.ErrorIs(err, errors.ErrNotFound)
	_, _, err = repo.GetByEmail(ctx, "nobody@example.com")
	req.ErrorIs(err, errors.ErrNotFound)
}

func Test_CreateUser_Rejects_Duplicate_Email(t *testing.T) {
	req := require.New(t)
	repo := newTestUserRepository(t)
	ctx := context.Background()

	_, err := repo.CreateUser(ctx, "alice@example.com", "Alice", "hash-1")
	req.NoError(err)

	_, err = repo.CreateUser(ctx, "alice@example.com", "Other Alice", "hash-2")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func Test_UpdateProfile_Applies_Only_Set_Fields(t *testing.T) {
	req := require.New(t)
	repo := newTestUserRepository(t)
	ctx := context.Background()

	created, err := repo.CreateUser(ctx, "alice@example.com", "Alice", "hash-1")
	req.NoError(err)

	updated, err := repo.UpdateProfile(ctx, created.ID, nil, lo.ToPtr("Busy"), nil)
	req.NoError(err)
	req.Equal("Alice", updated.DisplayName)
	req.Equal("Busy", updated.StatusText)
	req.Empty(updated.AvatarRef)

	updated, err = repo.UpdateProfile(ctx, created.ID, lo.ToPtr("Alice B"), nil, lo.ToPtr("ref-1"))
	req.NoError(err)
	req.Equal("Alice B", updated.DisplayName)
	req.Equal("Busy", updated.StatusText)
	req.Equal("ref-1", updated.AvatarRef)

	// The credential stays intact through profile edits.
	_, hash, err := repo.GetByEmail(ctx, "alice@example.com")
	req.NoError(err)
	req.Equal("hash-1", hash)

	_, err = repo.UpdateProfile(ctx, "missing", lo.ToPtr("X"), nil, nil)
	req.ErrorIs(err, errors.ErrNotFound)
}

func Test_Disable_Hides_User_From_Reads(t *testing.T) {
	req := require.New(t)
	repo := newTestUserRepository(t)
	ctx := context.Background()

	created, err := repo.CreateUser(ctx, "alice@example.com", "Alice", "hash-1")
	req.NoError(err)
	req.NoError(repo.Disable(ctx, created.ID))

	_, err = repo.GetByID(ctx, created.ID)
	req.ErrorIs(err, errors.ErrNotFound)
	_, _, err = repo.GetByEmail(ctx, "alice@example.com")
	req.ErrorIs(err, errors.ErrNotFound)
	_, err = repo.UpdateProfile(ctx, created.ID, lo.ToPtr("X"), nil, nil)
	req.ErrorIs(err, errors.ErrNotFound)
}

func Test_ListUsers_Sorted_Excluding_Caller_And_Disabled(t *testing.T) {
	req := require.New(t)
	repo := newTestUserRepository(t)
	ctx := context.Background()

	carol, err := repo.CreateUser(ctx, "carol@example.com", "Carol", "h")
	req.NoError(err)
	alice, err := repo.CreateUser(ctx, "alice@example.com", "Alice", "h")
	req.NoError(err)
	bob, err := repo.CreateUser(ctx, "bob@example.com", "Bob", "h")
	req.NoError(err)
	req.NoError(repo.Disable(ctx, bob.ID))

	users, err := repo.ListUsers(ctx, carol.ID)
	req.NoError(err)
	req.Equal([]string{alice.ID}, lo.Map(users, func(u domain.User, _ int) string { return u.ID }))

	users, err = repo.ListUsers(ctx, "")
	req.NoError(err)
	req.Equal([]string{"Alice", "Carol"}, lo.Map(users, func(u domain.User, _ int) string { return u.DisplayName }))
}
