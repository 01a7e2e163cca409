package service

import (
	"github.com/crewdigital/promptgate/internal/models"
	"github.com/crewdigital/promptgate/internal/rbac"
	"gorm.io/gorm"
)

// AccountService contains read operations over accounts.
type AccountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountService.
func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db}
}

// ListAccounts returns accounts ordered by id, with roles loaded.
func (s *AccountService) ListAccounts(page Page) ([]models.User, error) {
	page, err := page.normalize(DefaultAccountLimit)
	if err != nil {
		return nil, err
	}

	var users []models.User
	err = rbac.WithRole(s.db).Order("id ASC").
		Offset(page.Offset).Limit(page.Limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
