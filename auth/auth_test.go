package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func Test_HashPassword_Round_Trip(t *testing.T) {
	req := require.New(t)

	hash, err := HashPassword("Str0ng!Passw0rd")
	req.NoError(err)
	req.NotContains(hash, "Str0ng!Passw0rd")

	match, err := ComparePassword("Str0ng!Passw0rd", hash)
	req.NoError(err)
	req.True(match)

	match, err = ComparePassword("wrong-password", hash)
	req.NoError(err)
	req.False(match)
}

func Test_HashPassword_Salts_Every_Hash(t *testing.T) {
	req := require.New(t)

	first, err := HashPassword("Str0ng!Passw0rd")
	req.NoError(err)
	second, err := HashPassword("Str0ng!Passw0rd")
	req.NoError(err)
	req.NotEqual(first, second)
}

func Test_ComparePassword_Rejects_Malformed_Hash(t *testing.T) {
	_, err := ComparePassword("anything", "not-an-encoded-hash")
	require.Error(t, err)
}

func Test_Token_Generate_And_Validate(t *testing.T) {
	req := require.New(t)
	manager := NewTokenManager([]byte("test-secret"), time.Hour)

	token, err := manager.Generate("user-1")
	req.NoError(err)

	claims, err := manager.Validate(token)
	req.NoError(err)
	req.Equal("user-1", claims.UserID)
	req.Equal(issuer, claims.Issuer)
}

func Test_Token_Rejects_Wrong_Secret(t *testing.T) {
	req := require.New(t)

	token, err := NewTokenManager([]byte("secret-a"), time.Hour).Generate("user-1")
	req.NoError(err)

	_, err = NewTokenManager([]byte("secret-b"), time.Hour).Validate(token)
	req.Error(err)
}

func Test_Token_Rejects_Expired(t *testing.T) {
	req := require.New(t)
	manager := NewTokenManager([]byte("test-secret"), -time.Minute)

	token, err := manager.Generate("user-1")
	req.NoError(err)

	_, err = manager.Validate(token)
	req.ErrorIs(err, jwt.ErrTokenExpired)
}

func Test_Token_Rejects_Foreign_Issuer(t *testing.T) {
	req := require.New(t)
	secret := []byte("test-secret")

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, &CustomClaims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    "someone-else",
		},
	})
	signed, err := foreign.SignedString(secret)
	req.NoError(err)

	_, err = NewTokenManager(secret, time.Hour).Validate(signed)
	req.Error(err)
}

func Test_ValidateRegister_Enforces_Complexity(t *testing.T) {
	req := require.New(t)

	valid := RegisterRequest{
		Email:       "alice@example.com",
		DisplayName: "Alice",
		Password:    "Str0ng!Passw0rd",
	}
	req.NoError(ValidateRegister(valid))

	weak := valid
	weak.Password = "alllowercase1234"
	req.Error(ValidateRegister(weak))

	short := valid
	short.Password = "S!0rt"
	req.Error(ValidateRegister(short))
}

func Test_ValidateProfileUpdate_Bounds(t *testing.T) {
	req := require.New(t)

	req.NoError(ValidateProfileUpdate(ProfileUpdateRequest{}))
	req.NoError(ValidateProfileUpdate(ProfileUpdateRequest{
		DisplayName: lo.ToPtr("Alice"),
		StatusText:  lo.ToPtr("Out for lunch"),
	}))

	req.Error(ValidateProfileUpdate(ProfileUpdateRequest{DisplayName: lo.ToPtr("")}))

	long := make([]byte, 141)
	for i := range long {
		long[i] = 'x'
	}
	req.Error(ValidateProfileUpdate(ProfileUpdateRequest{StatusText: lo.ToPtr(string(long))}))
}
