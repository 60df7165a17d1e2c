package review

import (
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	ErrAccessDenied  = errors.New("review does not belong to user")
)

// ratingSink receives the recomputed aggregate after every mutation. The
// product service satisfies it.
type ratingSink interface {
	UpdateRating(productID int, average float64, count int) error
}

type Service struct {
	repo     Repository
	products ratingSink
}

type ServiceInterface interface {
	ListByProduct(productID, page, size int) ([]Review, int, error)
	Create(userID int, reviewerName string, req WriteRequest) (Review, error)
	Update(userID, reviewID int, req WriteRequest) (Review, error)
	Delete(userID, reviewID int) error
}

type WriteRequest struct {
	ProductID int    `json:"productId"`
	Rating    int    `json:"rating"`
	Title     string `json:"title"`
	Comment   string `json:"comment"`
}

func NewService(repo Repository, products ratingSink) *Service {
	return &Service{repo: repo, products: products}
}

func (s *Service) ListByProduct(productID, page, size int) ([]Review, int, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 10
	}
	if size > 50 {
		size = 50
	}
	return s.repo.ListByProduct(productID, page, size)
}

func (s *Service) Create(userID int, reviewerName string, req WriteRequest) (Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return Review{}, ErrInvalidRating
	}

	verified, err := s.repo.HasDeliveredOrder(userID, req.ProductID)
	if err != nil {
		return Review{}, err
	}

	rev, err := s.repo.Create(Review{
		ProductID:        req.ProductID,
		UserID:           userID,
		ReviewerName:     reviewerName,
		Rating:           req.Rating,
		Title:            strings.TrimSpace(req.Title),
		Comment:          strings.TrimSpace(req.Comment),
		VerifiedPurchase: verified,
	})
	if err != nil {
		return Review{}, err
	}

	s.refreshRating(req.ProductID)
	return rev, nil
}

func (s *Service) Update(userID, reviewID int, req WriteRequest) (Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return Review{}, ErrInvalidRating
	}

	rev, err := s.repo.GetByID(reviewID)
	if err != nil {
		return Review{}, err
	}
	if rev.UserID != userID {
		return Review{}, ErrAccessDenied
	}

	rev.Rating = req.Rating
	rev.Title = strings.TrimSpace(req.Title)
	rev.Comment = strings.TrimSpace(req.Comment)
	updated, err := s.repo.Update(rev)
	if err != nil {
		return Review{}, err
	}

	s.refreshRating(rev.ProductID)
	return updated, nil
}

func (s *Service) Delete(userID, reviewID int) error {
	rev, err := s.repo.GetByID(reviewID)
	if err != nil {
		return err
	}
	if rev.UserID != userID {
		return ErrAccessDenied
	}

	if err := s.repo.Delete(reviewID); err != nil {
		return err
	}
	s.refreshRating(rev.ProductID)
	return nil
}

// refreshRating pushes the new aggregate onto the product row. A failure
// here never fails the review mutation itself.
func (s *Service) refreshRating(productID int) {
	summary, err := s.repo.Summarize(productID)
	if err == nil {
		err = s.products.UpdateRating(productID, summary.Average, summary.Count)
	}
	if err != nil {
		log.Warn().Err(err).Int("product_id", productID).Msg("rating refresh failed")
	}
}
