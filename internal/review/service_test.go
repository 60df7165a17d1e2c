package review

import (
	"testing"

	"github.com/patcharw/ecommerce-backend/internal/product"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *InMemoryRepository, *product.InMemoryRepository) {
	t.Helper()
	products := product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "Plain Tee", Active: true},
	})
	repo := NewInMemoryRepository()
	return NewService(repo, product.NewService(products)), repo, products
}

func TestCreateReviewAggregatesRating(t *testing.T) {
	svc, _, products := newTestService(t)

	_, err := svc.Create(7, "Jane Doe", WriteRequest{ProductID: 1, Rating: 5, Title: "Great"})
	require.NoError(t, err)
	_, err = svc.Create(8, "John Roe", WriteRequest{ProductID: 1, Rating: 2})
	require.NoError(t, err)

	p, err := products.GetByID(1)
	require.NoError(t, err)
	require.Equal(t, 2, p.ReviewCount)
	require.InDelta(t, 3.5, p.AverageRating, 0.001)
}

func TestCreateReviewMarksVerifiedPurchase(t *testing.T) {
	svc, repo, _ := newTestService(t)
	repo.MarkDelivered(7, 1)

	verified, err := svc.Create(7, "Jane Doe", WriteRequest{ProductID: 1, Rating: 4})
	require.NoError(t, err)
	require.True(t, verified.VerifiedPurchase)

	unverified, err := svc.Create(8, "John Roe", WriteRequest{ProductID: 1, Rating: 4})
	require.NoError(t, err)
	require.False(t, unverified.VerifiedPurchase)
}

func TestCreateReviewRejectsDuplicateAndBadRating(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(7, "Jane Doe", WriteRequest{ProductID: 1, Rating: 6})
	require.ErrorIs(t, err, ErrInvalidRating)

	_, err = svc.Create(7, "Jane Doe", WriteRequest{ProductID: 1, Rating: 4})
	require.NoError(t, err)
	_, err = svc.Create(7, "Jane Doe", WriteRequest{ProductID: 1, Rating: 3})
	require.ErrorIs(t, err, ErrAlreadyExists)
}

func TestUpdateAndDeleteEnforceOwnership(t *testing.T) {
	svc, _, products := newTestService(t)

	rev, err := svc.Create(7, "Jane Doe", WriteRequest{ProductID: 1, Rating: 5})
	require.NoError(t, err)

	_, err = svc.Update(8, rev.ID, WriteRequest{ProductID: 1, Rating: 1})
	require.ErrorIs(t, err, ErrAccessDenied)

	updated, err := svc.Update(7, rev.ID, WriteRequest{ProductID: 1, Rating: 3, Comment: "changed my mind"})
	require.NoError(t, err)
	require.Equal(t, 3, updated.Rating)

	require.ErrorIs(t, svc.Delete(8, rev.ID), ErrAccessDenied)
	require.NoError(t, svc.Delete(7, rev.ID))

	p, err := products.GetByID(1)
	require.NoError(t, err)
	require.Equal(t, 0, p.ReviewCount)
	require.Equal(t, float64(0), p.AverageRating)
}
