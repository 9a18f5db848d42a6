package repository

import (
	"errors"

	"masters-marketplace/internal/domain/entity"
	domainRepo "masters-marketplace/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type reviewRepository struct{}

func NewReviewRepository() domainRepo.ReviewRepository {
	return &reviewRepository{}
}

func (r *reviewRepository) Create(db *gorm.DB, review *entity.Review) error {
	return db.Omit(clause.Associations).Create(review).Error
}

func (r *reviewRepository) FindByID(db *gorm.DB, id uint) (*entity.Review, error) {
	var review entity.Review
	err := db.Where("id = ?", id).First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) FindByMasterAndReviewer(db *gorm.DB, masterID, reviewerID uint) (*entity.Review, error) {
	var review entity.Review
	err := db.Where("master_id = ? AND reviewer_id = ?", masterID, reviewerID).First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) FindByMaster(db *gorm.DB, masterID uint, order entity.ReviewOrder, offset, limit int) ([]entity.Review, int64, error) {
	query := db.Model(&entity.Review{}).Where("master_id = ?", masterID).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := "created_at DESC, id DESC"
	if order == entity.ReviewOrderOldest {
		orderBy = "created_at ASC, id ASC"
	}

	var reviews []entity.Review
	err := query.Order(orderBy).Offset(offset).Limit(limit).Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *reviewRepository) Update(db *gorm.DB, review *entity.Review) error {
	return db.Omit(clause.Associations).Save(review).Error
}

func (r *reviewRepository) Delete(db *gorm.DB, id uint) (int64, error) {
	result := db.Delete(&entity.Review{}, id)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *reviewRepository) RatingStats(db *gorm.DB, masterIDs []uint) (map[uint]entity.RatingStats, error) {
	stats := make(map[uint]entity.RatingStats, len(masterIDs))
	if len(masterIDs) == 0 {
		return stats, nil
	}

	var rows []entity.RatingStats
	err := db.Model(&entity.Review{}).
		Select("master_id, SUM(rating) AS rating_sum, COUNT(*) AS review_count").
		Where("master_id IN ?", masterIDs).
		Group("master_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		stats[row.MasterID] = row
	}
	return stats, nil
}

func (r *reviewRepository) FindMasterIDsByReviewer(db *gorm.DB, reviewerID uint) ([]uint, error) {
	var ids []uint
	err := db.Model(&entity.Review{}).
		Where("reviewer_id = ? AND master_id <> ?", reviewerID, reviewerID).
		Distinct().
		Order("master_id").
		Pluck("master_id", &ids).Error
	return ids, err
}
