package repository

import (
	"masters-marketplace/internal/domain/entity"

	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(db *gorm.DB, review *entity.Review) error
	FindByID(db *gorm.DB, id uint) (*entity.Review, error)
	FindByMasterAndReviewer(db *gorm.DB, masterID, reviewerID uint) (*entity.Review, error)
	FindByMaster(db *gorm.DB, masterID uint, order entity.ReviewOrder, offset, limit int) ([]entity.Review, int64, error)
	Update(db *gorm.DB, review *entity.Review) error
	Delete(db *gorm.DB, id uint) (int64, error)
	// RatingStats returns the aggregate per master; masters without reviews are absent.
	RatingStats(db *gorm.DB, masterIDs []uint) (map[uint]entity.RatingStats, error)
	// FindMasterIDsByReviewer lists the other masters the reviewer has rated.
	FindMasterIDsByReviewer(db *gorm.DB, reviewerID uint) ([]uint, error)
}
