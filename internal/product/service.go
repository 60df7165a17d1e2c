package product

import "github.com/rs/zerolog/log"

// Service provides catalog business logic.
type Service struct {
	repo Repository
}

// ServiceInterface is the catalog surface other packages depend on.
type ServiceInterface interface {
	List(filter ListFilter) ([]Product, int, error)
	Get(id int) (Product, error)
	ListByIDs(ids []int) ([]Product, error)
	Create(p Product) (Product, error)
	Update(id int, p Product) (Product, error)
	Deactivate(id int) error
	UpdateRating(id int, average float64, count int) error
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(filter ListFilter) ([]Product, int, error) {
	if filter.Size <= 0 || filter.Size > 100 {
		filter.Size = 20
	}
	if filter.Page < 0 {
		filter.Page = 0
	}
	return s.repo.List(filter)
}

// Get returns a product and bumps its view counter. A counter failure is
// not worth failing the read.
func (s *Service) Get(id int) (Product, error) {
	p, err := s.repo.GetByID(id)
	if err != nil {
		return Product{}, err
	}
	if err := s.repo.IncrementViewCount(id); err != nil {
		log.Warn().Err(err).Int("product_id", id).Msg("view count update failed")
	} else {
		p.ViewCount++
	}
	return p, nil
}

func (s *Service) ListByIDs(ids []int) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}
	return s.repo.ListByIDs(ids)
}

func (s *Service) Create(p Product) (Product, error) {
	if !p.Price.IsPositive() {
		return Product{}, ErrInvalidPrice
	}
	if p.Stock < 0 {
		return Product{}, ErrNegativeStock
	}
	return s.repo.Create(p)
}

func (s *Service) Update(id int, p Product) (Product, error) {
	if !p.Price.IsPositive() {
		return Product{}, ErrInvalidPrice
	}
	if p.Stock < 0 {
		return Product{}, ErrNegativeStock
	}
	return s.repo.Update(id, p)
}

func (s *Service) Deactivate(id int) error {
	return s.repo.Deactivate(id)
}

func (s *Service) UpdateRating(id int, average float64, count int) error {
	return s.repo.UpdateRating(id, average, count)
}
