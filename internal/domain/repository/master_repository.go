package repository

import (
	"time"

	"masters-marketplace/internal/domain/entity"

	"gorm.io/gorm"
)

type MasterRepository interface {
	Create(db *gorm.DB, master *entity.Master) error
	// FindByID loads the master with every relation the API and index need.
	FindByID(db *gorm.DB, id uint) (*entity.Master, error)
	FindByPhone(db *gorm.DB, phone string) (*entity.Master, error)
	FindActive(db *gorm.DB, filter entity.MasterListFilter, offset, limit int) ([]entity.Master, int64, error)
	FindTopRated(db *gorm.DB, offset, limit int) ([]entity.Master, int64, error)
	// FindIndexableAfter returns up to limit indexable masters with id > afterID, ordered by id.
	FindIndexableAfter(db *gorm.DB, afterID uint, limit int) ([]entity.Master, error)
	FindIDsReferencing(db *gorm.DB, kind entity.EntityKind, refID uint) ([]uint, error)
	SlugExists(db *gorm.DB, slug string) (bool, error)
	Update(db *gorm.DB, master *entity.Master) error
	// ReplaceAssociations makes the stored cities, districts and languages equal the master's slices.
	ReplaceAssociations(db *gorm.DB, master *entity.Master) error
	UpdateLastLogin(db *gorm.DB, id uint, at time.Time) error
	UpdatePassword(db *gorm.DB, id uint, hash string) error
	Delete(db *gorm.DB, id uint) (int64, error)
}
