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
	"masters-marketplace/pkg/pagination"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrReviewNotFound = errors.New("review not found")
	ErrSelfReview     = errors.New("you cannot review yourself")
)

const alreadyReviewedMessage = "You have already reviewed this master"

type ReviewUsecase interface {
	ListReviews(ctx context.Context, masterID uint, order entity.ReviewOrder, page pagination.Params) ([]dto.ReviewResponse, int64, error)
	CreateReview(ctx context.Context, masterID uint, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error)
	UpdateReview(ctx context.Context, masterID, reviewID uint, req *dto.UpdateReviewRequest) (*dto.ReviewResponse, error)
	DeleteReview(ctx context.Context, masterID, reviewID uint) error
}

type reviewUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	masterRepo   repository.MasterRepository
	reviewRepo   repository.ReviewRepository
	auditService service.AuditService
	publisher    service.ChangePublisher
}

func NewReviewUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	masterRepo repository.MasterRepository,
	reviewRepo repository.ReviewRepository,
	auditService service.AuditService,
	publisher service.ChangePublisher,
) ReviewUsecase {
	return &reviewUsecase{
		db:           db,
		log:          log,
		masterRepo:   masterRepo,
		reviewRepo:   reviewRepo,
		auditService: auditService,
		publisher:    publisher,
	}
}

func (u *reviewUsecase) ListReviews(ctx context.Context, masterID uint, order entity.ReviewOrder, page pagination.Params) ([]dto.ReviewResponse, int64, error) {
	db := u.db.WithContext(ctx)

	if err := u.requireActiveMaster(db, masterID); err != nil {
		return nil, 0, err
	}

	reviews, total, err := u.reviewRepo.FindByMaster(db, masterID, order, page.Offset(), page.PageSize)
	if err != nil {
		u.log.Warnf("Failed to find reviews: %+v", err)
		return nil, 0, err
	}

	return converter.ReviewsToResponses(reviews), total, nil
}

func (u *reviewUsecase) CreateReview(ctx context.Context, masterID uint, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	caller, ok := actorFromContext(ctx)
	if !ok {
		return nil, ErrForbidden
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.requireActiveMaster(tx, masterID); err != nil {
		return nil, err
	}
	if caller.ID == masterID {
		return nil, ErrSelfReview
	}

	existing, err := u.reviewRepo.FindByMasterAndReviewer(tx, masterID, caller.ID)
	if err != nil {
		u.log.Warnf("Failed to find review: %+v", err)
		return nil, err
	}
	if existing != nil {
		return nil, newFieldError("master", alreadyReviewedMessage)
	}

	review := &entity.Review{
		MasterID:   masterID,
		ReviewerID: caller.ID,
		Username:   reviewerName(req.Username),
		Rating:     req.Rating,
		Comment:    strings.TrimSpace(req.Comment),
	}
	converter.ApplySubScores(review, req.SubScores)

	if err := u.reviewRepo.Create(tx, review); err != nil {
		if isDuplicateKeyError(err, "master_reviewer") {
			return nil, newFieldError("master", alreadyReviewedMessage)
		}
		u.log.Warnf("Failed to create review: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, &caller.ID, entity.AuditActionReviewCreate, "review", review.ID, converter.ReviewToResponse(review)); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.publishMaster(ctx, masterID)
	return converter.ReviewToResponse(review), nil
}

func (u *reviewUsecase) UpdateReview(ctx context.Context, masterID, reviewID uint, req *dto.UpdateReviewRequest) (*dto.ReviewResponse, error) {
	caller, ok := actorFromContext(ctx)
	if !ok {
		return nil, ErrForbidden
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	review, err := u.findReview(tx, masterID, reviewID)
	if err != nil {
		return nil, err
	}
	if !review.CanBeModifiedBy(caller.ID, caller.IsStaff) {
		return nil, ErrForbidden
	}

	oldValue := converter.ReviewToResponse(review)

	if req.Username != nil {
		review.Username = reviewerName(*req.Username)
	}
	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	if req.Comment != nil {
		review.Comment = strings.TrimSpace(*req.Comment)
	}
	converter.ApplySubScores(review, req.SubScores)

	if err := u.reviewRepo.Update(tx, review); err != nil {
		u.log.Warnf("Failed to update review: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogUpdate(ctx, tx, &caller.ID, entity.AuditActionReviewUpdate, "review", review.ID, oldValue, converter.ReviewToResponse(review)); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.publishMaster(ctx, masterID)
	return converter.ReviewToResponse(review), nil
}

func (u *reviewUsecase) DeleteReview(ctx context.Context, masterID, reviewID uint) error {
	caller, ok := actorFromContext(ctx)
	if !ok {
		return ErrForbidden
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	review, err := u.findReview(tx, masterID, reviewID)
	if err != nil {
		return err
	}
	if !review.CanBeModifiedBy(caller.ID, caller.IsStaff) {
		return ErrForbidden
	}

	if err := u.auditService.LogDelete(ctx, tx, &caller.ID, entity.AuditActionReviewDelete, "review", review.ID, converter.ReviewToResponse(review)); err != nil {
		return err
	}

	if _, err := u.reviewRepo.Delete(tx, review.ID); err != nil {
		u.log.Warnf("Failed to delete review: %+v", err)
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	u.publishMaster(ctx, masterID)
	return nil
}

func (u *reviewUsecase) requireActiveMaster(db *gorm.DB, masterID uint) error {
	master, err := u.masterRepo.FindByID(db, masterID)
	if err != nil {
		u.log.Warnf("Failed to find master by ID: %+v", err)
		return err
	}
	if !master.Indexable() {
		return ErrMasterNotFound
	}
	return nil
}

// findReview loads a review that belongs to masterID.
func (u *reviewUsecase) findReview(db *gorm.DB, masterID, reviewID uint) (*entity.Review, error) {
	review, err := u.reviewRepo.FindByID(db, reviewID)
	if err != nil {
		u.log.Warnf("Failed to find review by ID: %+v", err)
		return nil, err
	}
	if review == nil || review.MasterID != masterID {
		return nil, ErrReviewNotFound
	}
	return review, nil
}

// publishMaster reindexes the reviewed master so its rating stays current.
func (u *reviewUsecase) publishMaster(ctx context.Context, masterID uint) {
	u.publisher.Publish(ctx, entity.ChangeEvent{Kind: entity.KindMaster, ID: masterID, Action: entity.ChangeUpdated})
}

func reviewerName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return entity.DefaultReviewerName
	}
	return name
}
