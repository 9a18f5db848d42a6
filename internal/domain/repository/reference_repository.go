package repository

import (
	"masters-marketplace/internal/domain/entity"

	"gorm.io/gorm"
)

type ReferenceRepository interface {
	FindAll(db *gorm.DB, kind entity.EntityKind) ([]entity.Reference, error)
	FindByID(db *gorm.DB, kind entity.EntityKind, id uint) (*entity.Reference, error)
	FindServicesByCategory(db *gorm.DB, categoryID uint) ([]entity.Reference, error)
	FindCitiesByIDs(db *gorm.DB, ids []uint) ([]entity.City, error)
	FindDistrictsByIDs(db *gorm.DB, ids []uint) ([]entity.District, error)
	FindLanguagesByIDs(db *gorm.DB, ids []uint) ([]entity.Language, error)
	FindServiceByID(db *gorm.DB, id uint) (*entity.Service, error)
	// CityNameTaken reports whether another city already uses name.
	CityNameTaken(db *gorm.DB, name string, exceptID uint) (bool, error)
	FindEducationByID(db *gorm.DB, id uint) (*entity.Education, error)
	Create(db *gorm.DB, kind entity.EntityKind, ref *entity.Reference) error
	Update(db *gorm.DB, kind entity.EntityKind, ref *entity.Reference) error
	Delete(db *gorm.DB, kind entity.EntityKind, id uint) (int64, error)
}
