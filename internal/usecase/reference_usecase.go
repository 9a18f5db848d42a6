package usecase

import (
	"context"
	"errors"
	"strings"

	"masters-marketplace/internal/converter"
	"masters-marketplace/internal/delivery/dto"
	"masters-marketplace/internal/domain/entity"
	"masters-marketplace/internal/domain/repository"
	"masters-marketplace/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrReferenceNotFound      = errors.New("reference not found")
	ErrReferenceAlreadyExists = errors.New("reference with this name already exists")
)

type ReferenceUsecase interface {
	List(ctx context.Context, kind entity.EntityKind) ([]dto.ReferenceResponse, error)
	ListServicesForCategory(ctx context.Context, categoryID uint) ([]dto.ReferenceResponse, error)
	Create(ctx context.Context, kind entity.EntityKind, req *dto.ReferenceRequest) (*dto.ReferenceResponse, error)
	Update(ctx context.Context, kind entity.EntityKind, id uint, req *dto.ReferenceRequest) (*dto.ReferenceResponse, error)
	Delete(ctx context.Context, kind entity.EntityKind, id uint) error
}

type referenceUsecase struct {
	db            *gorm.DB
	log           *logrus.Logger
	referenceRepo repository.ReferenceRepository
	masterRepo    repository.MasterRepository
	cache         service.ReferenceCache
	auditService  service.AuditService
	publisher     service.ChangePublisher
}

func NewReferenceUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	referenceRepo repository.ReferenceRepository,
	masterRepo repository.MasterRepository,
	cache service.ReferenceCache,
	auditService service.AuditService,
	publisher service.ChangePublisher,
) ReferenceUsecase {
	return &referenceUsecase{
		db:            db,
		log:           log,
		referenceRepo: referenceRepo,
		masterRepo:    masterRepo,
		cache:         cache,
		auditService:  auditService,
		publisher:     publisher,
	}
}

func (u *referenceUsecase) List(ctx context.Context, kind entity.EntityKind) ([]dto.ReferenceResponse, error) {
	refs, err := u.cache.GetList(ctx, service.ListKey(kind), func() ([]entity.Reference, error) {
		return u.referenceRepo.FindAll(u.db.WithContext(ctx), kind)
	})
	if err != nil {
		u.log.Warnf("Failed to list %s: %+v", kind, err)
		return nil, err
	}

	return converter.ReferencesToResponses(kind, refs), nil
}

func (u *referenceUsecase) ListServicesForCategory(ctx context.Context, categoryID uint) ([]dto.ReferenceResponse, error) {
	db := u.db.WithContext(ctx)

	category, err := u.referenceRepo.FindByID(db, entity.KindCategory, categoryID)
	if err != nil {
		u.log.Warnf("Failed to find category: %+v", err)
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}

	refs, err := u.cache.GetList(ctx, service.ServicesForCategoryKey(categoryID), func() ([]entity.Reference, error) {
		return u.referenceRepo.FindServicesByCategory(db, categoryID)
	})
	if err != nil {
		u.log.Warnf("Failed to list services for category: %+v", err)
		return nil, err
	}

	return converter.ReferencesToResponses(entity.KindService, refs), nil
}

func (u *referenceUsecase) Create(ctx context.Context, kind entity.EntityKind, req *dto.ReferenceRequest) (*dto.ReferenceResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	ref := &entity.Reference{
		Name:        strings.TrimSpace(req.Name),
		DisplayName: strings.TrimSpace(req.DisplayName),
	}
	if err := u.checkUnique(tx, kind, ref); err != nil {
		return nil, err
	}
	if err := u.resolveParent(tx, kind, req, ref); err != nil {
		return nil, err
	}

	if err := u.referenceRepo.Create(tx, kind, ref); err != nil {
		return nil, u.translateWriteError(kind, err)
	}

	if err := u.auditService.LogCreate(ctx, tx, auditUserID(ctx), entity.AuditActionReferenceCreate, string(kind), ref.ID, ref); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.publisher.Publish(ctx, entity.ChangeEvent{
		Kind:      kind,
		ID:        ref.ID,
		Action:    entity.ChangeCreated,
		ParentIDs: parentIDs(ref),
	})

	resp := converter.ReferenceToResponse(kind, *ref)
	return &resp, nil
}

func (u *referenceUsecase) Update(ctx context.Context, kind entity.EntityKind, id uint, req *dto.ReferenceRequest) (*dto.ReferenceResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	old, err := u.referenceRepo.FindByID(tx, kind, id)
	if err != nil {
		u.log.Warnf("Failed to find %s: %+v", kind, err)
		return nil, err
	}
	if old == nil {
		return nil, ErrReferenceNotFound
	}

	ref := &entity.Reference{
		ID:          id,
		Name:        strings.TrimSpace(req.Name),
		DisplayName: strings.TrimSpace(req.DisplayName),
	}
	if err := u.checkUnique(tx, kind, ref); err != nil {
		return nil, err
	}
	if err := u.resolveParent(tx, kind, req, ref); err != nil {
		return nil, err
	}

	if err := u.referenceRepo.Update(tx, kind, ref); err != nil {
		return nil, u.translateWriteError(kind, err)
	}

	if err := u.auditService.LogUpdate(ctx, tx, auditUserID(ctx), entity.AuditActionReferenceUpdate, string(kind), id, old, ref); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	// both the old and the new parent lists are stale
	u.publisher.Publish(ctx, entity.ChangeEvent{
		Kind:      kind,
		ID:        id,
		Action:    entity.ChangeUpdated,
		ParentIDs: uniqueIDs(append(parentIDs(old), parentIDs(ref)...)),
	})

	resp := converter.ReferenceToResponse(kind, *ref)
	return &resp, nil
}

func (u *referenceUsecase) Delete(ctx context.Context, kind entity.EntityKind, id uint) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	old, err := u.referenceRepo.FindByID(tx, kind, id)
	if err != nil {
		u.log.Warnf("Failed to find %s: %+v", kind, err)
		return err
	}
	if old == nil {
		return ErrReferenceNotFound
	}

	// Resolve affected masters while the foreign keys still point here
	var masterIDs []uint
	if kind.EmbeddedInDocument() {
		masterIDs, err = u.masterRepo.FindIDsReferencing(tx, kind, id)
		if err != nil {
			u.log.Warnf("Failed to find masters referencing %s: %+v", kind, err)
			return err
		}
	}

	if err := u.auditService.LogDelete(ctx, tx, auditUserID(ctx), entity.AuditActionReferenceDelete, string(kind), id, old); err != nil {
		return err
	}

	if _, err := u.referenceRepo.Delete(tx, kind, id); err != nil {
		u.log.Warnf("Failed to delete %s: %+v", kind, err)
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	u.publisher.Publish(ctx, entity.ChangeEvent{
		Kind:      kind,
		ID:        id,
		Action:    entity.ChangeDeleted,
		ParentIDs: parentIDs(old),
		MasterIDs: masterIDs,
	})
	return nil
}

// checkUnique enforces unique city names.
func (u *referenceUsecase) checkUnique(db *gorm.DB, kind entity.EntityKind, ref *entity.Reference) error {
	if kind != entity.KindCity {
		return nil
	}
	taken, err := u.referenceRepo.CityNameTaken(db, ref.Name, ref.ID)
	if err != nil {
		u.log.Warnf("Failed to check city name: %+v", err)
		return err
	}
	if taken {
		return ErrReferenceAlreadyExists
	}
	return nil
}

// resolveParent checks the parent row named by req and stores it on ref.
func (u *referenceUsecase) resolveParent(db *gorm.DB, kind entity.EntityKind, req *dto.ReferenceRequest, ref *entity.Reference) error {
	switch kind {
	case entity.KindDistrict:
		if req.CityID == nil {
			return nil
		}
		city, err := u.referenceRepo.FindByID(db, entity.KindCity, *req.CityID)
		if err != nil {
			u.log.Warnf("Failed to find city: %+v", err)
			return err
		}
		if city == nil {
			return newFieldError("city_id", "Selected city does not exist")
		}
		ref.ParentID = &city.ID
	case entity.KindService:
		if req.CategoryID == nil {
			return newFieldError("category_id", "This field is required")
		}
		category, err := u.referenceRepo.FindByID(db, entity.KindCategory, *req.CategoryID)
		if err != nil {
			u.log.Warnf("Failed to find category: %+v", err)
			return err
		}
		if category == nil {
			return newFieldError("category_id", "Selected category does not exist")
		}
		ref.ParentID = &category.ID
	}
	return nil
}

func (u *referenceUsecase) translateWriteError(kind entity.EntityKind, err error) error {
	if isDuplicateKeyError(err, "name") {
		return ErrReferenceAlreadyExists
	}
	if isForeignKeyError(err, "") {
		switch kind {
		case entity.KindDistrict:
			return newFieldError("city_id", "Selected city does not exist")
		case entity.KindService:
			return newFieldError("category_id", "Selected category does not exist")
		}
	}
	u.log.Warnf("Failed to write %s: %+v", kind, err)
	return err
}

func parentIDs(ref *entity.Reference) []uint {
	if ref == nil || ref.ParentID == nil {
		return nil
	}
	return []uint{*ref.ParentID}
}
