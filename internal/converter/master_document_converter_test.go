package converter

import (
	"encoding/json"
	"testing"
	"time"

	"masters-marketplace/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMaster() *entity.Master {
	birthday := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)
	experience := 7
	categoryID := uint(3)
	baku := time.FixedZone("AZT", 4*60*60)

	return &entity.Master{
		ID:                   42,
		UserRole:             entity.RoleMaster,
		PhoneNumber:          "+994501234567",
		FullName:             "Alı Məmmədov",
		Birthday:             &birthday,
		Gender:               entity.GenderMale,
		ProfessionCategoryID: &categoryID,
		Experience:           &experience,
		InstagramURL:         "https://instagram.com/ali",
		IsActiveOnMainPage:   true,
		Slug:                 "ali-memmedov",
		CreatedAt:            time.Date(2024, 1, 2, 15, 4, 5, 0, baku),
		ProfessionCategory:   &entity.Category{ID: 3, Name: "repair", DisplayName: "Təmir"},
		ProfessionService:    &entity.Service{ID: 9, CategoryID: 3, Name: "plumber", DisplayName: "Santexnik"},
		Cities: []entity.City{
			{ID: 5, Name: "ganja", DisplayName: "Gəncə"},
			{ID: 1, Name: "baku", DisplayName: "Bakı"},
		},
		Districts: []entity.District{
			{ID: 12, Name: "yasamal", DisplayName: "Yasamal"},
			{ID: 4, Name: "nasimi", DisplayName: "Nəsimi"},
		},
	}
}

func TestMasterToDocument(t *testing.T) {
	doc := MasterToDocument(sampleMaster(), entity.NewRating(9, 2))

	assert.Equal(t, uint(42), doc.ID)
	require.NotNil(t, doc.Birthday)
	assert.Equal(t, "1990-05-17", *doc.Birthday)
	assert.Equal(t, time.UTC, doc.CreatedAt.Location())
	assert.Equal(t, 11, doc.CreatedAt.Hour())
	assert.Nil(t, doc.CustomProfession)
	require.NotNil(t, doc.InstagramURL)
	assert.Equal(t, []uint{1, 5}, []uint{doc.Cities[0].ID, doc.Cities[1].ID})
	assert.Equal(t, []uint{4, 12}, []uint{doc.Districts[0].ID, doc.Districts[1].ID})
	require.NotNil(t, doc.ProfessionService)
	assert.Equal(t, "plumber", doc.ProfessionService.Name)
	require.NotNil(t, doc.AverageRating)
	assert.Equal(t, 4.5, *doc.AverageRating)
	assert.Equal(t, int64(2), doc.ReviewCount)
}

func TestMasterToDocumentIsDeterministic(t *testing.T) {
	first, err := json.Marshal(MasterToDocument(sampleMaster(), entity.NewRating(9, 2)))
	require.NoError(t, err)

	shuffled := sampleMaster()
	shuffled.Cities[0], shuffled.Cities[1] = shuffled.Cities[1], shuffled.Cities[0]
	second, err := json.Marshal(MasterToDocument(shuffled, entity.NewRating(9, 2)))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestMasterToDocumentUnratedWithoutRelations(t *testing.T) {
	m := &entity.Master{ID: 1, FullName: "Test", Slug: "test"}
	doc := MasterToDocument(m, entity.Rating{})

	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Nil(t, decoded["average_rating"])
	assert.Equal(t, float64(0), decoded["review_count"])
	assert.Equal(t, []interface{}{}, decoded["cities"])
	assert.Equal(t, []interface{}{}, decoded["districts"])
	assert.Nil(t, decoded["profession_category"])
}

func TestMastersToResponses(t *testing.T) {
	masters := []entity.Master{*sampleMaster(), {ID: 7, FullName: "Other"}}
	stats := map[uint]entity.RatingStats{42: {MasterID: 42, RatingSum: 14, ReviewCount: 3}}

	responses := MastersToResponses(masters, stats)
	require.Len(t, responses, 2)
	require.NotNil(t, responses[0].AverageRating)
	assert.Equal(t, 4.67, *responses[0].AverageRating)
	assert.Nil(t, responses[1].AverageRating)
	assert.Zero(t, responses[1].ReviewCount)
	assert.NotNil(t, responses[1].Cities)
}
