package user

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func register(t *testing.T, svc *Service) User {
	t.Helper()
	u, err := svc.Register(User{
		Email:     "jane@example.com",
		Password:  "s3cret-pass",
		FirstName: "Jane",
		LastName:  "Doe",
	})
	require.NoError(t, err)
	return u
}

func TestRegisterHashesPasswordAndDefaultsRole(t *testing.T) {
	svc := NewService(NewInMemoryRepository(nil))

	u := register(t, svc)
	require.Equal(t, RoleUser, u.Role)
	require.True(t, u.Enabled)
	require.NotEqual(t, "s3cret-pass", u.Password)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("s3cret-pass")))
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := NewService(NewInMemoryRepository(nil))
	register(t, svc)

	_, err := svc.Register(User{Email: "jane@example.com", Password: "other", FirstName: "J", LastName: "D"})
	require.ErrorIs(t, err, ErrEmailExists)
}

func TestAuthenticate(t *testing.T) {
	svc := NewService(NewInMemoryRepository(nil))
	register(t, svc)

	u, err := svc.Authenticate("jane@example.com", "s3cret-pass")
	require.NoError(t, err)
	require.Equal(t, "jane@example.com", u.Email)

	_, err = svc.Authenticate("jane@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate("nobody@example.com", "s3cret-pass")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateProfileKeepsUnsetFields(t *testing.T) {
	svc := NewService(NewInMemoryRepository(nil))
	u := register(t, svc)

	first := "Janet"
	updated, err := svc.UpdateProfile(u.ID, &first, nil, nil)
	require.NoError(t, err)
	require.Equal(t, "Janet", updated.FirstName)
	require.Equal(t, "Doe", updated.LastName)
}

func TestChangePassword(t *testing.T) {
	svc := NewService(NewInMemoryRepository(nil))
	u := register(t, svc)

	require.ErrorIs(t, svc.ChangePassword(u.ID, "wrong", "new-pass"), ErrInvalidCredentials)
	require.NoError(t, svc.ChangePassword(u.ID, "s3cret-pass", "new-pass"))

	_, err := svc.Authenticate("jane@example.com", "new-pass")
	require.NoError(t, err)
	_, err = svc.Authenticate("jane@example.com", "s3cret-pass")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
