package address

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validRequest() WriteRequest {
	return WriteRequest{
		FullName:   "Jane Doe",
		Phone:      "0812345678",
		Line1:      "42 Sukhumvit Rd",
		City:       "Bangkok",
		PostalCode: "10110",
		Country:    "TH",
	}
}

func TestCreateRejectsMissingFields(t *testing.T) {
	svc := NewService(NewInMemoryRepository())

	req := validRequest()
	req.City = ""
	_, err := svc.Create(1, req)
	require.EqualError(t, err, "city is required")
}

func TestDefaultFlipClearsPreviousDefault(t *testing.T) {
	svc := NewService(NewInMemoryRepository())

	req := validRequest()
	req.IsDefault = true
	first, err := svc.Create(1, req)
	require.NoError(t, err)
	require.True(t, first.IsDefault)

	second, err := svc.Create(1, validRequest())
	require.NoError(t, err)

	promoted, err := svc.SetDefault(1, second.ID)
	require.NoError(t, err)
	require.True(t, promoted.IsDefault)

	all, err := svc.List(1)
	require.NoError(t, err)
	defaults := 0
	for _, a := range all {
		if a.IsDefault {
			defaults++
			require.Equal(t, second.ID, a.ID)
		}
	}
	require.Equal(t, 1, defaults)
}

func TestMutationsEnforceOwnership(t *testing.T) {
	svc := NewService(NewInMemoryRepository())

	a, err := svc.Create(1, validRequest())
	require.NoError(t, err)

	_, err = svc.Update(2, a.ID, validRequest())
	require.ErrorIs(t, err, ErrAccessDenied)
	require.ErrorIs(t, svc.Delete(2, a.ID), ErrAccessDenied)
	_, err = svc.SetDefault(2, a.ID)
	require.ErrorIs(t, err, ErrAccessDenied)

	require.NoError(t, svc.Delete(1, a.ID))
	_, err = svc.SetDefault(1, a.ID)
	require.ErrorIs(t, err, ErrNotFound)
}
