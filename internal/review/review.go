package review

import "time"

// Review is one user's rating of one product. A user gets a single review
// per product; writing again replaces it.
type Review struct {
	ID               int       `json:"reviewId"`
	ProductID        int       `json:"productId"`
	UserID           int       `json:"userId"`
	ReviewerName     string    `json:"reviewerName"`
	Rating           int       `json:"rating"`
	Title            string    `json:"title"`
	Comment          string    `json:"comment"`
	VerifiedPurchase bool      `json:"verifiedPurchase"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// RatingSummary is the aggregate pushed back onto the product row after
// every mutation.
type RatingSummary struct {
	Average float64
	Count   int
}
