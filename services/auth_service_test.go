package services

import (
	"context"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"pairchat/auth"
	"pairchat/domain"
	"pairchat/errors"
	"pairchat/mocks"
)

const strongPassword = "Str0ng!Passw0rd"

func newAuthFixture(t *testing.T) (*AuthService, *mocks.MockIUserRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	users := mocks.NewMockIUserRepository(ctrl)
	tokens := auth.NewTokenManager([]byte("test-secret"), time.Hour)
	return NewAuthService(users, tokens), users
}

func Test_Register_Hashes_Password_And_Issues_Token(t *testing.T) {
	req := require.New(t)
	service, users := newAuthFixture(t)
	ctx := context.Background()

	users.EXPECT().
		CreateUser(ctx, "alice@example.com", "Alice", gomock.Any()).
		DoAndReturn(func(_ context.Context, email, displayName, passwordHash string) (domain.User, error) {
			req.NotEqual(strongPassword, passwordHash, "password must never be stored raw")
			match, err := auth.ComparePassword(strongPassword, passwordHash)
			req.NoError(err)
			req.True(match)
			return domain.User{ID: "user-1", Email: email, DisplayName: displayName}, nil
		})

	token, user, err := service.Register(ctx, "alice@example.com", "Alice", strongPassword)
	req.NoError(err)
	req.Equal("user-1", user.ID)
	req.NotEmpty(token)
}

func Test_Register_Rejects_Weak_Input(t *testing.T) {
	req := require.New(t)
	service, _ := newAuthFixture(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		email    string
		display  string
		password string
	}{
		{"no uppercase", "alice@example.com", "Alice", "str0ng!passw0rd"},
		{"no digit", "alice@example.com", "Alice", "Strong!Password"},
		{"no symbol", "alice@example.com", "Alice", "Str0ngPassw0rd"},
		{"too short", "alice@example.com", "Alice", "S!0rt"},
		{"bad email", "not-an-email", "Alice", strongPassword},
		{"missing name", "alice@example.com", "", strongPassword},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := service.Register(ctx, tc.email, tc.display, tc.password)
			req.Error(err)
		})
	}
}

func Test_Register_Propagates_Duplicate_User(t *testing.T) {
	req := require.New(t)
	service, users := newAuthFixture(t)
	ctx := context.Background()

	users.EXPECT().
		CreateUser(ctx, "alice@example.com", "Alice", gomock.Any()).
		Return(domain.User{}, errors.ErrUserAlreadyExists)

	_, _, err := service.Register(ctx, "alice@example.com", "Alice", strongPassword)
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func Test_Login_Verifies_Credentials(t *testing.T) {
	req := require.New(t)
	service, users := newAuthFixture(t)
	ctx := context.Background()

	hash, err := auth.HashPassword(strongPassword)
	req.NoError(err)
	user := domain.User{ID: "user-1", Email: "alice@example.com"}

	users.EXPECT().GetByEmail(ctx, "alice@example.com").Return(user, hash, nil).Times(2)

	token, got, err := service.Login(ctx, "alice@example.com", strongPassword)
	req.NoError(err)
	req.Equal(user.ID, got.ID)
	req.NotEmpty(token)

	_, _, err = service.Login(ctx, "alice@example.com", "wrong-password")
	req.ErrorIs(err, errors.ErrInvalidCredentials)
}

func Test_Login_Hides_Unknown_Accounts(t *testing.T) {
	req := require.New(t)
	service, users := newAuthFixture(t)
	ctx := context.Background()

	users.EXPECT().GetByEmail(ctx, "nobody@example.com").
		Return(domain.User{}, "", errors.ErrNotFound)

	_, _, err := service.Login(ctx, "nobody@example.com", strongPassword)
	req.ErrorIs(err, errors.ErrInvalidCredentials, "lookup failures must not be distinguishable")
}

func Test_UpdateProfile_Validates_Then_Delegates(t *testing.T) {
	req := require.New(t)
	service, users := newAuthFixture(t)
	ctx := context.Background()

	users.EXPECT().
		UpdateProfile(ctx, "user-1", lo.ToPtr("Alice B"), nil, nil).
		Return(domain.User{ID: "user-1", DisplayName: "Alice B"}, nil)

	user, err := service.UpdateProfile(ctx, "user-1", lo.ToPtr("Alice B"), nil, nil)
	req.NoError(err)
	req.Equal("Alice B", user.DisplayName)

	_, err = service.UpdateProfile(ctx, "user-1", lo.ToPtr(""), nil, nil)
	req.Error(err, "empty display name must not reach the repository")
}

func Test_Verify_Round_Trips_Session_Tokens(t *testing.T) {
	req := require.New(t)
	service, users := newAuthFixture(t)
	ctx := context.Background()

	hash, err := auth.HashPassword(strongPassword)
	req.NoError(err)
	user := domain.User{ID: "user-1", Email: "alice@example.com"}
	users.EXPECT().GetByEmail(ctx, "alice@example.com").Return(user, hash, nil)
	users.EXPECT().GetByID(ctx, "user-1").Return(user, nil)

	token, _, err := service.Login(ctx, "alice@example.com", strongPassword)
	req.NoError(err)

	userID, err := service.Verify(ctx, string(token))
	req.NoError(err)
	req.Equal("user-1", userID)

	_, err = service.Verify(ctx, "not-a-token")
	req.ErrorIs(err, errors.ErrAuthFailure)
}

func Test_Verify_Rejects_Token_For_Vanished_User(t *testing.T) {
	req := require.New(t)
	service, users := newAuthFixture(t)
	ctx := context.Background()

	tokens := auth.NewTokenManager([]byte("test-secret"), time.Hour)
	token, err := tokens.Generate("ghost")
	req.NoError(err)

	users.EXPECT().GetByID(ctx, "ghost").Return(domain.User{}, errors.ErrNotFound)

	_, err = service.Verify(ctx, token)
	req.ErrorIs(err, errors.ErrAuthFailure)
}
