package address

import (
	"errors"
	"strings"
)

var ErrAccessDenied = errors.New("address does not belong to user")

type WriteRequest struct {
	FullName   string  `json:"fullName"`
	Phone      string  `json:"phone"`
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2"`
	City       string  `json:"city"`
	State      *string `json:"state"`
	PostalCode string  `json:"postalCode"`
	Country    string  `json:"country"`
	IsDefault  bool    `json:"isDefault"`
}

func (r WriteRequest) validate() error {
	for field, val := range map[string]string{
		"fullName":   r.FullName,
		"line1":      r.Line1,
		"city":       r.City,
		"postalCode": r.PostalCode,
		"country":    r.Country,
	} {
		if strings.TrimSpace(val) == "" {
			return errors.New(field + " is required")
		}
	}
	return nil
}

type Service struct {
	repo Repository
}

type ServiceInterface interface {
	List(userID int) ([]Address, error)
	Create(userID int, req WriteRequest) (Address, error)
	Update(userID, addressID int, req WriteRequest) (Address, error)
	Delete(userID, addressID int) error
	SetDefault(userID, addressID int) (Address, error)
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(userID int) ([]Address, error) {
	return s.repo.ListByUser(userID)
}

func (s *Service) Create(userID int, req WriteRequest) (Address, error) {
	if err := req.validate(); err != nil {
		return Address{}, err
	}
	if req.IsDefault {
		if err := s.repo.ClearDefault(userID); err != nil {
			return Address{}, err
		}
	}
	return s.repo.Create(fromRequest(userID, req))
}

func (s *Service) Update(userID, addressID int, req WriteRequest) (Address, error) {
	if err := req.validate(); err != nil {
		return Address{}, err
	}
	existing, err := s.owned(userID, addressID)
	if err != nil {
		return Address{}, err
	}
	if req.IsDefault && !existing.IsDefault {
		if err := s.repo.ClearDefault(userID); err != nil {
			return Address{}, err
		}
	}

	a := fromRequest(userID, req)
	a.ID = addressID
	return s.repo.Update(a)
}

func (s *Service) Delete(userID, addressID int) error {
	if _, err := s.owned(userID, addressID); err != nil {
		return err
	}
	return s.repo.Delete(addressID)
}

// SetDefault makes the address the user's default, clearing any previous
// one.
func (s *Service) SetDefault(userID, addressID int) (Address, error) {
	a, err := s.owned(userID, addressID)
	if err != nil {
		return Address{}, err
	}
	if a.IsDefault {
		return a, nil
	}
	if err := s.repo.ClearDefault(userID); err != nil {
		return Address{}, err
	}
	a.IsDefault = true
	return s.repo.Update(a)
}

func (s *Service) owned(userID, addressID int) (Address, error) {
	a, err := s.repo.GetByID(addressID)
	if err != nil {
		return Address{}, err
	}
	if a.UserID != userID {
		return Address{}, ErrAccessDenied
	}
	return a, nil
}

func fromRequest(userID int, req WriteRequest) Address {
	return Address{
		UserID:     userID,
		FullName:   req.FullName,
		Phone:      req.Phone,
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		IsDefault:  req.IsDefault,
	}
}
