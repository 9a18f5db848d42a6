package repository

import (
	"errors"
	"time"

	"masters-marketplace/internal/domain/entity"
	domainRepo "masters-marketplace/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type masterRepository struct{}

func NewMasterRepository() domainRepo.MasterRepository {
	return &masterRepository{}
}

// withRelations preloads everything a master response or search document needs.
// Collections are ordered by id so repeated loads are identical.
func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("ProfessionCategory").
		Preload("ProfessionService").
		Preload("Education").
		Preload("Cities", func(db *gorm.DB) *gorm.DB { return db.Order("cities.id") }).
		Preload("Districts", func(db *gorm.DB) *gorm.DB { return db.Order("districts.id") }).
		Preload("Languages", func(db *gorm.DB) *gorm.DB { return db.Order("languages.id") })
}

func activeMasters(db *gorm.DB) *gorm.DB {
	return db.Model(&entity.Master{}).
		Where("masters.user_role = ? AND masters.is_active_on_main_page = ?", entity.RoleMaster, true)
}

func (r *masterRepository) Create(db *gorm.DB, master *entity.Master) error {
	return db.Omit(clause.Associations).Create(master).Error
}

func (r *masterRepository) FindByID(db *gorm.DB, id uint) (*entity.Master, error) {
	var master entity.Master
	err := withRelations(db).Where("id = ?", id).First(&master).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &master, nil
}

func (r *masterRepository) FindByPhone(db *gorm.DB, phone string) (*entity.Master, error) {
	var master entity.Master
	err := db.Where("phone_number = ?", phone).First(&master).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &master, nil
}

func (r *masterRepository) FindActive(db *gorm.DB, filter entity.MasterListFilter, offset, limit int) ([]entity.Master, int64, error) {
	query := activeMasters(db)
	if filter.CategoryID != nil {
		query = query.Where("masters.profession_category_id = ?", *filter.CategoryID)
	}
	if filter.ServiceID != nil {
		query = query.Where("masters.profession_service_id = ?", *filter.ServiceID)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var masters []entity.Master
	err := withRelations(query).
		Order("masters.id").
		Offset(offset).
		Limit(limit).
		Find(&masters).Error
	if err != nil {
		return nil, 0, err
	}
	return masters, total, nil
}

// FindTopRated orders by rounded average, review count, last login, then id.
// The average is compared as round(100*sum/count) in integer arithmetic so ties
// match the two-decimal value clients see.
func (r *masterRepository) FindTopRated(db *gorm.DB, offset, limit int) ([]entity.Master, int64, error) {
	query := activeMasters(db).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	stats := db.Model(&entity.Review{}).
		Select("master_id, SUM(rating) AS rating_sum, COUNT(*) AS review_count").
		Group("master_id")

	var masters []entity.Master
	err := withRelations(query).
		Select("masters.*").
		Joins("LEFT JOIN (?) AS r ON r.master_id = masters.id", stats).
		Order("COALESCE((r.rating_sum * 200 + r.review_count) / (2 * r.review_count), -1) DESC").
		Order("COALESCE(r.review_count, 0) DESC").
		Order("masters.last_login DESC NULLS LAST").
		Order("masters.id ASC").
		Offset(offset).
		Limit(limit).
		Find(&masters).Error
	if err != nil {
		return nil, 0, err
	}
	return masters, total, nil
}

func (r *masterRepository) FindIndexableAfter(db *gorm.DB, afterID uint, limit int) ([]entity.Master, error) {
	var masters []entity.Master
	err := withRelations(activeMasters(db)).
		Where("masters.id > ?", afterID).
		Order("masters.id").
		Limit(limit).
		Find(&masters).Error
	if err != nil {
		return nil, err
	}
	return masters, nil
}

func (r *masterRepository) FindIDsReferencing(db *gorm.DB, kind entity.EntityKind, refID uint) ([]uint, error) {
	var ids []uint
	var err error

	switch kind {
	case entity.KindCategory:
		err = db.Model(&entity.Master{}).Where("profession_category_id = ?", refID).Order("id").Pluck("id", &ids).Error
	case entity.KindService:
		err = db.Model(&entity.Master{}).Where("profession_service_id = ?", refID).Order("id").Pluck("id", &ids).Error
	case entity.KindCity:
		err = db.Table("master_cities").Where("city_id = ?", refID).Order("master_id").Pluck("master_id", &ids).Error
	case entity.KindDistrict:
		err = db.Table("master_districts").Where("district_id = ?", refID).Order("master_id").Pluck("master_id", &ids).Error
	default:
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *masterRepository) SlugExists(db *gorm.DB, slug string) (bool, error) {
	var count int64
	err := db.Model(&entity.Master{}).Where("slug = ?", slug).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *masterRepository) Update(db *gorm.DB, master *entity.Master) error {
	return db.Omit(clause.Associations).Save(master).Error
}

func (r *masterRepository) ReplaceAssociations(db *gorm.DB, master *entity.Master) error {
	if err := replaceAssociation(db, master, "Cities", master.Cities); err != nil {
		return err
	}
	if err := replaceAssociation(db, master, "Districts", master.Districts); err != nil {
		return err
	}
	return replaceAssociation(db, master, "Languages", master.Languages)
}

func (r *masterRepository) UpdateLastLogin(db *gorm.DB, id uint, at time.Time) error {
	return db.Model(&entity.Master{}).Where("id = ?", id).UpdateColumn("last_login", at).Error
}

func (r *masterRepository) UpdatePassword(db *gorm.DB, id uint, hash string) error {
	return db.Model(&entity.Master{}).Where("id = ?", id).Update("password", hash).Error
}

func (r *masterRepository) Delete(db *gorm.DB, id uint) (int64, error) {
	result := db.Delete(&entity.Master{}, id)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func replaceAssociation[T any](db *gorm.DB, master *entity.Master, name string, values []T) error {
	assoc := db.Model(master).Association(name)
	if len(values) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(values)
}
