package usecase

import (
	"context"
	"testing"

	"masters-marketplace/internal/delivery/dto"
	"masters-marketplace/internal/domain/entity"
	"masters-marketplace/internal/repository"
	"masters-marketplace/internal/testutil"
	"masters-marketplace/pkg/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reviewPage = pagination.Params{Page: 1, PageSize: pagination.ReviewPageSize}

func ratingFor(t *testing.T, f *fixture, masterID uint) entity.Rating {
	t.Helper()
	stats, err := repository.NewReviewRepository().RatingStats(f.db, []uint{masterID})
	require.NoError(t, err)
	s, ok := stats[masterID]
	if !ok {
		return entity.Rating{}
	}
	return entity.RatingFromStats(&s)
}

func TestCreateReview(t *testing.T) {
	f := newFixture(t)
	uc := f.reviewUsecase()

	master := testutil.CreateMaster(t, f.db, "Alı Məmmədov", "+994501111111", testutil.Active())
	first := testutil.CreateMaster(t, f.db, "Birinci Müştəri", "+994502222222", testutil.WithRole(entity.RoleCustomer))
	second := testutil.CreateMaster(t, f.db, "İkinci Müştəri", "+994503333333", testutil.WithRole(entity.RoleCustomer))

	got, err := uc.CreateReview(asUser(first.ID), master.ID, &dto.CreateReviewRequest{
		Rating:    4,
		Comment:   "  Çox yaxşı iş gördü.  ",
		SubScores: dto.SubScores{Punctual: intPtr(5)},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultReviewerName, got.Username)
	assert.Equal(t, "Çox yaxşı iş gördü.", got.Comment)
	assert.Equal(t, master.ID, got.MasterID)
	require.NotNil(t, got.Punctual)
	assert.Equal(t, 5, *got.Punctual)

	_, err = uc.CreateReview(asUser(second.ID), master.ID, &dto.CreateReviewRequest{Username: "Aysel", Rating: 5, Comment: "Əla"})
	require.NoError(t, err)

	rating := ratingFor(t, f, master.ID)
	require.NotNil(t, rating.Average)
	assert.Equal(t, 4.5, *rating.Average)
	assert.Equal(t, int64(2), rating.Count)

	events := f.publisher.Events()
	require.Len(t, events, 2)
	assert.Equal(t, entity.ChangeEvent{Kind: entity.KindMaster, ID: master.ID, Action: entity.ChangeUpdated}, events[1])
	assert.Equal(t, int64(2), countAuditLogs(t, f.db, entity.AuditActionReviewCreate))
}

func TestCreateReviewDuplicateKeepsAggregate(t *testing.T) {
	f := newFixture(t)
	uc := f.reviewUsecase()

	master := testutil.CreateMaster(t, f.db, "Alı Məmmədov", "+994501111111", testutil.Active())
	reviewer := testutil.CreateMaster(t, f.db, "Müştəri", "+994502222222", testutil.WithRole(entity.RoleCustomer))

	_, err := uc.CreateReview(asUser(reviewer.ID), master.ID, &dto.CreateReviewRequest{Rating: 4, Comment: "Yaxşı"})
	require.NoError(t, err)

	_, err = uc.CreateReview(asUser(reviewer.ID), master.ID, &dto.CreateReviewRequest{Rating: 1, Comment: "Pis"})
	requireFieldError(t, err, "master")
	fieldErr, _ := AsFieldError(err)
	assert.Equal(t, "You have already reviewed this master", fieldErr.Message)

	rating := ratingFor(t, f, master.ID)
	require.NotNil(t, rating.Average)
	assert.Equal(t, 4.0, *rating.Average)
	assert.Equal(t, int64(1), rating.Count)
	assert.Len(t, f.publisher.Events(), 1)
}

func TestCreateReviewRejections(t *testing.T) {
	f := newFixture(t)
	uc := f.reviewUsecase()

	master := testutil.CreateMaster(t, f.db, "Alı Məmmədov", "+994501111111", testutil.Active())
	inactive := testutil.CreateMaster(t, f.db, "Gizli Usta", "+994502222222")
	reviewer := testutil.CreateMaster(t, f.db, "Müştəri", "+994503333333", testutil.WithRole(entity.RoleCustomer))

	req := &dto.CreateReviewRequest{Rating: 5, Comment: "Əla"}

	_, err := uc.CreateReview(asUser(master.ID), master.ID, req)
	assert.ErrorIs(t, err, ErrSelfReview)

	_, err = uc.CreateReview(asUser(reviewer.ID), inactive.ID, req)
	assert.ErrorIs(t, err, ErrMasterNotFound)

	_, err = uc.CreateReview(context.Background(), master.ID, req)
	assert.ErrorIs(t, err, ErrForbidden)

	assert.Empty(t, f.publisher.Events())
}

func TestUpdateAndDeleteReview(t *testing.T) {
	f := newFixture(t)
	uc := f.reviewUsecase()

	master := testutil.CreateMaster(t, f.db, "Alı Məmmədov", "+994501111111", testutil.Active())
	otherMaster := testutil.CreateMaster(t, f.db, "Rəşad Quliyev", "+994504444444", testutil.Active())
	reviewer := testutil.CreateMaster(t, f.db, "Müştəri", "+994502222222", testutil.WithRole(entity.RoleCustomer))
	stranger := testutil.CreateMaster(t, f.db, "Yad Adam", "+994503333333", testutil.WithRole(entity.RoleCustomer))
	review := testutil.CreateReview(t, f.db, master.ID, reviewer.ID, 3)

	_, err := uc.UpdateReview(asUser(stranger.ID), master.ID, review.ID, &dto.UpdateReviewRequest{Rating: intPtr(1)})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = uc.UpdateReview(asUser(reviewer.ID), otherMaster.ID, review.ID, &dto.UpdateReviewRequest{Rating: intPtr(1)})
	assert.ErrorIs(t, err, ErrReviewNotFound)

	got, err := uc.UpdateReview(asUser(reviewer.ID), master.ID, review.ID, &dto.UpdateReviewRequest{
		Rating:   intPtr(5),
		Username: strPtr("  "),
	})
	require.NoError(t, err)
	assert.Equal(t, 5, got.Rating)
	assert.Equal(t, entity.DefaultReviewerName, got.Username)
	assert.Equal(t, "Yaxşı iş", got.Comment)

	assert.ErrorIs(t, uc.DeleteReview(asUser(stranger.ID), master.ID, review.ID), ErrForbidden)
	require.NoError(t, uc.DeleteReview(asStaff(stranger.ID), master.ID, review.ID))
	assert.ErrorIs(t, uc.DeleteReview(asStaff(stranger.ID), master.ID, review.ID), ErrReviewNotFound)

	assert.Equal(t, entity.Rating{}, ratingFor(t, f, master.ID))
	assert.Len(t, f.publisher.Events(), 2)
	assert.Equal(t, int64(1), countAuditLogs(t, f.db, entity.AuditActionReviewUpdate))
	assert.Equal(t, int64(1), countAuditLogs(t, f.db, entity.AuditActionReviewDelete))
}

func TestListReviews(t *testing.T) {
	f := newFixture(t)
	uc := f.reviewUsecase()

	master := testutil.CreateMaster(t, f.db, "Alı Məmmədov", "+994501111111", testutil.Active())
	inactive := testutil.CreateMaster(t, f.db, "Gizli Usta", "+994502222222")
	var ids []uint
	for i, phone := range []string{"+994503000001", "+994503000002", "+994503000003"} {
		reviewer := testutil.CreateMaster(t, f.db, "Müştəri", phone, testutil.WithRole(entity.RoleCustomer))
		ids = append(ids, testutil.CreateReview(t, f.db, master.ID, reviewer.ID, i+3).ID)
	}

	newest, total, err := uc.ListReviews(context.Background(), master.ID, entity.ReviewOrderNewest, reviewPage)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, newest, 3)
	assert.Equal(t, ids[2], newest[0].ID)

	oldest, _, err := uc.ListReviews(context.Background(), master.ID, entity.ReviewOrderOldest, pagination.Params{Page: 1, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, oldest, 2)
	assert.Equal(t, ids[0], oldest[0].ID)
	assert.Equal(t, ids[1], oldest[1].ID)

	_, _, err = uc.ListReviews(context.Background(), inactive.ID, entity.ReviewOrderNewest, reviewPage)
	assert.ErrorIs(t, err, ErrMasterNotFound)
}
