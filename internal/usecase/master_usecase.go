package usecase

import (
	"context"
	"errors"
	"time"

	"masters-marketplace/internal/converter"
	"masters-marketplace/internal/delivery/dto"
	"masters-marketplace/internal/domain/entity"
	"masters-marketplace/internal/domain/repository"
	"masters-marketplace/internal/service"
	"masters-marketplace/pkg/pagination"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrMasterNotFound   = errors.New("master not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrServiceNotFound  = errors.New("service not found")
)

type MasterUsecase interface {
	ListMasters(ctx context.Context, page pagination.Params) ([]dto.MasterResponse, int64, error)
	ListTopRated(ctx context.Context, page pagination.Params) ([]dto.MasterResponse, int64, error)
	ListByCategory(ctx context.Context, categoryID uint, page pagination.Params) ([]dto.MasterResponse, int64, error)
	ListByService(ctx context.Context, serviceID uint, page pagination.Params) ([]dto.MasterResponse, int64, error)
	GetMaster(ctx context.Context, id uint) (*dto.MasterResponse, error)
	UpdateMaster(ctx context.Context, id uint, req *dto.UpdateMasterRequest) (*dto.MasterResponse, error)
	DeleteMaster(ctx context.Context, id uint) error
}

type masterUsecase struct {
	db            *gorm.DB
	log           *logrus.Logger
	masterRepo    repository.MasterRepository
	reviewRepo    repository.ReviewRepository
	referenceRepo repository.ReferenceRepository
	rules         *profileRules
	auditService  service.AuditService
	publisher     service.ChangePublisher
}

func NewMasterUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	masterRepo repository.MasterRepository,
	reviewRepo repository.ReviewRepository,
	referenceRepo repository.ReferenceRepository,
	auditService service.AuditService,
	publisher service.ChangePublisher,
	capitalCity string,
) MasterUsecase {
	return &masterUsecase{
		db:            db,
		log:           log,
		masterRepo:    masterRepo,
		reviewRepo:    reviewRepo,
		referenceRepo: referenceRepo,
		rules:         newProfileRules(referenceRepo, capitalCity),
		auditService:  auditService,
		publisher:     publisher,
	}
}

func (u *masterUsecase) ListMasters(ctx context.Context, page pagination.Params) ([]dto.MasterResponse, int64, error) {
	return u.listActive(ctx, entity.MasterListFilter{}, page)
}

func (u *masterUsecase) ListTopRated(ctx context.Context, page pagination.Params) ([]dto.MasterResponse, int64, error) {
	db := u.db.WithContext(ctx)

	masters, total, err := u.masterRepo.FindTopRated(db, page.Offset(), page.PageSize)
	if err != nil {
		u.log.Warnf("Failed to find top rated masters: %+v", err)
		return nil, 0, err
	}

	return u.withRatings(db, masters, total)
}

func (u *masterUsecase) ListByCategory(ctx context.Context, categoryID uint, page pagination.Params) ([]dto.MasterResponse, int64, error) {
	category, err := u.referenceRepo.FindByID(u.db.WithContext(ctx), entity.KindCategory, categoryID)
	if err != nil {
		u.log.Warnf("Failed to find category: %+v", err)
		return nil, 0, err
	}
	if category == nil {
		return nil, 0, ErrCategoryNotFound
	}

	return u.listActive(ctx, entity.MasterListFilter{CategoryID: &categoryID}, page)
}

func (u *masterUsecase) ListByService(ctx context.Context, serviceID uint, page pagination.Params) ([]dto.MasterResponse, int64, error) {
	svc, err := u.referenceRepo.FindServiceByID(u.db.WithContext(ctx), serviceID)
	if err != nil {
		u.log.Warnf("Failed to find service: %+v", err)
		return nil, 0, err
	}
	if svc == nil {
		return nil, 0, ErrServiceNotFound
	}

	return u.listActive(ctx, entity.MasterListFilter{ServiceID: &serviceID}, page)
}

func (u *masterUsecase) listActive(ctx context.Context, filter entity.MasterListFilter, page pagination.Params) ([]dto.MasterResponse, int64, error) {
	db := u.db.WithContext(ctx)

	masters, total, err := u.masterRepo.FindActive(db, filter, page.Offset(), page.PageSize)
	if err != nil {
		u.log.Warnf("Failed to find active masters: %+v", err)
		return nil, 0, err
	}

	return u.withRatings(db, masters, total)
}

func (u *masterUsecase) withRatings(db *gorm.DB, masters []entity.Master, total int64) ([]dto.MasterResponse, int64, error) {
	ids := make([]uint, len(masters))
	for i := range masters {
		ids[i] = masters[i].ID
	}

	stats, err := u.reviewRepo.RatingStats(db, ids)
	if err != nil {
		u.log.Warnf("Failed to aggregate ratings: %+v", err)
		return nil, 0, err
	}

	return converter.MastersToResponses(masters, stats), total, nil
}

func (u *masterUsecase) GetMaster(ctx context.Context, id uint) (*dto.MasterResponse, error) {
	db := u.db.WithContext(ctx)

	master, err := u.masterRepo.FindByID(db, id)
	if err != nil {
		u.log.Warnf("Failed to find master by ID: %+v", err)
		return nil, err
	}
	if !master.Indexable() {
		return nil, ErrMasterNotFound
	}

	rating, err := u.ratingOf(db, id)
	if err != nil {
		return nil, err
	}

	return converter.MasterToResponse(master, rating), nil
}

func (u *masterUsecase) UpdateMaster(ctx context.Context, id uint, req *dto.UpdateMasterRequest) (*dto.MasterResponse, error) {
	caller, ok := actorFromContext(ctx)
	if !ok {
		return nil, ErrForbidden
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	master, err := u.masterRepo.FindByID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find master by ID: %+v", err)
		return nil, err
	}
	if master == nil {
		return nil, ErrMasterNotFound
	}
	if !master.CanBeModifiedBy(caller.ID, caller.IsStaff) {
		return nil, ErrForbidden
	}

	oldValue := masterAuditValue(master)

	if err := u.applyUpdate(tx, master, req); err != nil {
		return nil, err
	}

	if err := u.masterRepo.Update(tx, master); err != nil {
		u.log.Warnf("Failed to update master: %+v", err)
		return nil, err
	}
	if err := u.masterRepo.ReplaceAssociations(tx, master); err != nil {
		u.log.Warnf("Failed to update master associations: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogUpdate(ctx, tx, &caller.ID, entity.AuditActionMasterUpdate, "master", master.ID, oldValue, masterAuditValue(master)); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.publisher.Publish(ctx, entity.ChangeEvent{Kind: entity.KindMaster, ID: master.ID, Action: entity.ChangeUpdated})

	// Reload so the response carries the fresh relations
	db := u.db.WithContext(ctx)
	updated, err := u.masterRepo.FindByID(db, id)
	if err != nil {
		u.log.Warnf("Failed to find master by ID: %+v", err)
		return nil, err
	}
	if updated == nil {
		return nil, ErrMasterNotFound
	}

	rating, err := u.ratingOf(db, id)
	if err != nil {
		return nil, err
	}

	return converter.MasterToResponse(updated, rating), nil
}

// applyUpdate copies the present request fields onto master and re-runs the
// profile rules for every group of fields that was touched.
func (u *masterUsecase) applyUpdate(tx *gorm.DB, master *entity.Master, req *dto.UpdateMasterRequest) error {
	if req.FullName != nil {
		master.FullName = formatFullName(*req.FullName)
	}
	if req.Birthday != nil {
		birthday, err := time.Parse(dateLayout, *req.Birthday)
		if err != nil {
			return ErrInvalidDateFormat
		}
		master.Birthday = &birthday
	}
	if req.Gender != nil {
		master.Gender = *req.Gender
	}
	if req.Experience != nil {
		master.Experience = req.Experience
	}

	if req.ProfessionCategory != nil || req.ProfessionService != nil || req.CustomProfession != nil {
		categoryID := valueOr(req.ProfessionCategory, master.ProfessionCategoryID)
		serviceID := valueOr(req.ProfessionService, master.ProfessionServiceID)
		if categoryID == 0 {
			return newFieldError("profession_category", "This field is required")
		}
		if serviceID == 0 {
			return newFieldError("profession_service", "This field is required")
		}

		custom := master.CustomProfession
		if req.CustomProfession != nil {
			custom = *req.CustomProfession
		} else if master.ProfessionServiceID == nil || *master.ProfessionServiceID != serviceID {
			custom = ""
		}

		if err := u.rules.applyProfession(tx, master, categoryID, serviceID, custom); err != nil {
			return err
		}
	}

	if req.Cities != nil || req.Districts != nil {
		cityIDs := master.CityIDs()
		if req.Cities != nil {
			cityIDs = *req.Cities
		}
		districtIDs := make([]uint, len(master.Districts))
		for i, d := range master.Districts {
			districtIDs[i] = d.ID
		}
		if req.Districts != nil {
			districtIDs = *req.Districts
		}

		if err := u.rules.applyLocations(tx, master, cityIDs, districtIDs); err != nil {
			return err
		}
	}

	if req.Education != nil || req.EducationDetail != nil {
		educationID := valueOr(req.Education, master.EducationID)
		if educationID == 0 {
			return newFieldError("education", "This field is required")
		}

		detail := master.EducationDetail
		if req.EducationDetail != nil {
			detail = *req.EducationDetail
		} else if master.EducationID == nil || *master.EducationID != educationID {
			detail = ""
		}

		if err := u.rules.applyEducation(tx, master, educationID, detail); err != nil {
			return err
		}
	}

	if req.Languages != nil {
		if err := u.rules.applyLanguages(tx, master, *req.Languages); err != nil {
			return err
		}
	}

	setString(&master.FacebookURL, req.FacebookURL)
	setString(&master.InstagramURL, req.InstagramURL)
	setString(&master.TiktokURL, req.TiktokURL)
	setString(&master.LinkedinURL, req.LinkedinURL)
	setString(&master.YoutubeURL, req.YoutubeURL)
	if req.Note != nil {
		master.Note = capitalizeFirst(*req.Note)
	}

	return nil
}

func (u *masterUsecase) DeleteMaster(ctx context.Context, id uint) error {
	caller, ok := actorFromContext(ctx)
	if !ok {
		return ErrForbidden
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	master, err := u.masterRepo.FindByID(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find master by ID: %+v", err)
		return err
	}
	if master == nil {
		return ErrMasterNotFound
	}
	if !master.CanBeModifiedBy(caller.ID, caller.IsStaff) {
		return ErrForbidden
	}

	if err := u.auditService.LogDelete(ctx, tx, &caller.ID, entity.AuditActionMasterDelete, "master", master.ID, masterAuditValue(master)); err != nil {
		return err
	}

	// the cascade takes this account's reviews of other masters with it
	reviewed, err := u.reviewRepo.FindMasterIDsByReviewer(tx, id)
	if err != nil {
		u.log.Warnf("Failed to find masters reviewed by %d: %+v", id, err)
		return err
	}

	if _, err := u.masterRepo.Delete(tx, id); err != nil {
		u.log.Warnf("Failed to delete master: %+v", err)
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	u.publisher.Publish(ctx, entity.ChangeEvent{Kind: entity.KindMaster, ID: id, Action: entity.ChangeDeleted})
	for _, masterID := range reviewed {
		u.publisher.Publish(ctx, entity.ChangeEvent{Kind: entity.KindMaster, ID: masterID, Action: entity.ChangeUpdated})
	}
	return nil
}

func (u *masterUsecase) ratingOf(db *gorm.DB, masterID uint) (entity.Rating, error) {
	stats, err := u.reviewRepo.RatingStats(db, []uint{masterID})
	if err != nil {
		u.log.Warnf("Failed to aggregate ratings: %+v", err)
		return entity.Rating{}, err
	}
	s, ok := stats[masterID]
	if !ok {
		return entity.Rating{}, nil
	}
	return entity.RatingFromStats(&s), nil
}

func masterAuditValue(m *entity.Master) map[string]interface{} {
	return map[string]interface{}{
		"full_name":              m.FullName,
		"profession_category_id": m.ProfessionCategoryID,
		"profession_service_id":  m.ProfessionServiceID,
		"custom_profession":      m.CustomProfession,
		"experience":             m.Experience,
		"city_ids":               m.CityIDs(),
		"education_id":           m.EducationID,
		"is_active_on_main_page": m.IsActiveOnMainPage,
	}
}

func valueOr(v *uint, fallback *uint) uint {
	if v != nil {
		return *v
	}
	if fallback != nil {
		return *fallback
	}
	return 0
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
