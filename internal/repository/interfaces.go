package repository

import (
	"roadwatch/internal/models"
)

// SignRepository defines the interface for sign metadata operations.
type SignRepository interface {
	// Create operations
	Insert(info *models.SignInfo) error

	// Read operations
	FindBySign(sign string) (*models.SignInfo, error)
	GetAll() ([]models.SignInfo, error)
	Count() (int, error)
}
