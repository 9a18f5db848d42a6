package repository

import (
	"errors"
	"fmt"

	"masters-marketplace/internal/domain/entity"
	domainRepo "masters-marketplace/internal/domain/repository"

	"gorm.io/gorm"
)

// ErrUnknownReferenceKind is returned for kinds that are not lookup tables.
var ErrUnknownReferenceKind = errors.New("unknown reference kind")

// referenceModel is satisfied by every lookup table entity.
type referenceModel interface {
	entity.City | entity.District | entity.Education | entity.Language | entity.Category | entity.Service
	Reference() entity.Reference
}

type referenceRepository struct{}

func NewReferenceRepository() domainRepo.ReferenceRepository {
	return &referenceRepository{}
}

func (r *referenceRepository) FindAll(db *gorm.DB, kind entity.EntityKind) ([]entity.Reference, error) {
	switch kind {
	case entity.KindCity:
		return findAllRefs[entity.City](db)
	case entity.KindDistrict:
		return findAllRefs[entity.District](db)
	case entity.KindEducation:
		return findAllRefs[entity.Education](db)
	case entity.KindLanguage:
		return findAllRefs[entity.Language](db)
	case entity.KindCategory:
		return findAllRefs[entity.Category](db)
	case entity.KindService:
		return findAllRefs[entity.Service](db)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownReferenceKind, kind)
}

func (r *referenceRepository) FindByID(db *gorm.DB, kind entity.EntityKind, id uint) (*entity.Reference, error) {
	switch kind {
	case entity.KindCity:
		return findRef[entity.City](db, id)
	case entity.KindDistrict:
		return findRef[entity.District](db, id)
	case entity.KindEducation:
		return findRef[entity.Education](db, id)
	case entity.KindLanguage:
		return findRef[entity.Language](db, id)
	case entity.KindCategory:
		return findRef[entity.Category](db, id)
	case entity.KindService:
		return findRef[entity.Service](db, id)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownReferenceKind, kind)
}

func (r *referenceRepository) FindServicesByCategory(db *gorm.DB, categoryID uint) ([]entity.Reference, error) {
	return findAllRefs[entity.Service](db.Where("category_id = ?", categoryID))
}

func (r *referenceRepository) FindCitiesByIDs(db *gorm.DB, ids []uint) ([]entity.City, error) {
	var cities []entity.City
	if len(ids) == 0 {
		return cities, nil
	}
	if err := db.Where("id IN ?", ids).Order("id").Find(&cities).Error; err != nil {
		return nil, err
	}
	return cities, nil
}

func (r *referenceRepository) FindDistrictsByIDs(db *gorm.DB, ids []uint) ([]entity.District, error) {
	var districts []entity.District
	if len(ids) == 0 {
		return districts, nil
	}
	if err := db.Preload("City").Where("id IN ?", ids).Order("id").Find(&districts).Error; err != nil {
		return nil, err
	}
	return districts, nil
}

func (r *referenceRepository) FindLanguagesByIDs(db *gorm.DB, ids []uint) ([]entity.Language, error) {
	var languages []entity.Language
	if len(ids) == 0 {
		return languages, nil
	}
	if err := db.Where("id IN ?", ids).Order("id").Find(&languages).Error; err != nil {
		return nil, err
	}
	return languages, nil
}

func (r *referenceRepository) FindServiceByID(db *gorm.DB, id uint) (*entity.Service, error) {
	var service entity.Service
	err := db.Where("id = ?", id).First(&service).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &service, nil
}

func (r *referenceRepository) FindEducationByID(db *gorm.DB, id uint) (*entity.Education, error) {
	var education entity.Education
	err := db.Where("id = ?", id).First(&education).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &education, nil
}

func (r *referenceRepository) CityNameTaken(db *gorm.DB, name string, exceptID uint) (bool, error) {
	var count int64
	err := db.Model(&entity.City{}).Where("name = ? AND id <> ?", name, exceptID).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *referenceRepository) Create(db *gorm.DB, kind entity.EntityKind, ref *entity.Reference) error {
	switch kind {
	case entity.KindCity:
		return createRef(db, &entity.City{Name: ref.Name, DisplayName: ref.DisplayName}, ref)
	case entity.KindDistrict:
		return createRef(db, &entity.District{CityID: ref.ParentID, Name: ref.Name, DisplayName: ref.DisplayName}, ref)
	case entity.KindEducation:
		return createRef(db, &entity.Education{Name: ref.Name, DisplayName: ref.DisplayName}, ref)
	case entity.KindLanguage:
		return createRef(db, &entity.Language{Name: ref.Name, DisplayName: ref.DisplayName}, ref)
	case entity.KindCategory:
		return createRef(db, &entity.Category{Name: ref.Name, DisplayName: ref.DisplayName}, ref)
	case entity.KindService:
		if ref.ParentID == nil {
			return errors.New("service requires a category")
		}
		return createRef(db, &entity.Service{CategoryID: *ref.ParentID, Name: ref.Name, DisplayName: ref.DisplayName}, ref)
	}
	return fmt.Errorf("%w: %s", ErrUnknownReferenceKind, kind)
}

func (r *referenceRepository) Update(db *gorm.DB, kind entity.EntityKind, ref *entity.Reference) error {
	values := map[string]interface{}{
		"name":         ref.Name,
		"display_name": ref.DisplayName,
	}

	switch kind {
	case entity.KindCity:
		return updateRef[entity.City](db, ref.ID, values)
	case entity.KindDistrict:
		values["city_id"] = ref.ParentID
		return updateRef[entity.District](db, ref.ID, values)
	case entity.KindEducation:
		return updateRef[entity.Education](db, ref.ID, values)
	case entity.KindLanguage:
		return updateRef[entity.Language](db, ref.ID, values)
	case entity.KindCategory:
		return updateRef[entity.Category](db, ref.ID, values)
	case entity.KindService:
		if ref.ParentID == nil {
			return errors.New("service requires a category")
		}
		values["category_id"] = *ref.ParentID
		return updateRef[entity.Service](db, ref.ID, values)
	}
	return fmt.Errorf("%w: %s", ErrUnknownReferenceKind, kind)
}

func (r *referenceRepository) Delete(db *gorm.DB, kind entity.EntityKind, id uint) (int64, error) {
	switch kind {
	case entity.KindCity:
		return deleteRef[entity.City](db, id)
	case entity.KindDistrict:
		return deleteRef[entity.District](db, id)
	case entity.KindEducation:
		return deleteRef[entity.Education](db, id)
	case entity.KindLanguage:
		return deleteRef[entity.Language](db, id)
	case entity.KindCategory:
		return deleteRef[entity.Category](db, id)
	case entity.KindService:
		return deleteRef[entity.Service](db, id)
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownReferenceKind, kind)
}

func findAllRefs[T referenceModel](db *gorm.DB) ([]entity.Reference, error) {
	var rows []T
	if err := db.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}

	refs := make([]entity.Reference, len(rows))
	for i, row := range rows {
		refs[i] = row.Reference()
	}
	return refs, nil
}

func findRef[T referenceModel](db *gorm.DB, id uint) (*entity.Reference, error) {
	var row T
	err := db.Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	ref := row.Reference()
	return &ref, nil
}

func createRef[T referenceModel](db *gorm.DB, row *T, ref *entity.Reference) error {
	if err := db.Create(row).Error; err != nil {
		return err
	}
	*ref = (*row).Reference()
	return nil
}

func updateRef[T referenceModel](db *gorm.DB, id uint, values map[string]interface{}) error {
	var model T
	return db.Model(&model).Where("id = ?", id).Updates(values).Error
}

func deleteRef[T referenceModel](db *gorm.DB, id uint) (int64, error) {
	var model T
	result := db.Delete(&model, id)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
