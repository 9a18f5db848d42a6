// Package testutil provides in-process stand-ins for Postgres and Redis.
package testutil

import (
	"io"
	"testing"
	"time"

	"masters-marketplace/internal/domain/entity"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with the full schema.
// A single connection is used, so never query the root handle while a
// transaction is open.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&entity.City{},
		&entity.District{},
		&entity.Education{},
		&entity.Language{},
		&entity.Category{},
		&entity.Service{},
		&entity.Master{},
		&entity.Review{},
		&entity.AuditLog{},
	))
	return db
}

func NewRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// NewLogger returns a logger that discards output.
func NewLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// Catalog is a small set of reference rows shared by tests.
type Catalog struct {
	Baku        entity.City
	Ganja       entity.City
	Yasamal     entity.District
	Nizami      entity.District
	Repair      entity.Category
	Plumber     entity.Service
	Other       entity.Service
	Beauty      entity.Category
	Barber      entity.Service
	Higher      entity.Education
	None        entity.Education
	Azerbaijani entity.Language
}

func SeedCatalog(t *testing.T, db *gorm.DB) *Catalog {
	t.Helper()

	c := &Catalog{
		Baku:        entity.City{Name: "baku", DisplayName: "Bakı"},
		Ganja:       entity.City{Name: "ganja", DisplayName: "Gəncə"},
		Repair:      entity.Category{Name: "repair", DisplayName: "Təmir"},
		Beauty:      entity.Category{Name: "beauty", DisplayName: "Gözəllik"},
		Higher:      entity.Education{Name: "higher", DisplayName: "Ali"},
		None:        entity.Education{Name: entity.EducationNameNone, DisplayName: "Yoxdur"},
		Azerbaijani: entity.Language{Name: "az", DisplayName: "Azərbaycan dili"},
	}
	require.NoError(t, db.Create(&c.Baku).Error)
	require.NoError(t, db.Create(&c.Ganja).Error)
	require.NoError(t, db.Create(&c.Repair).Error)
	require.NoError(t, db.Create(&c.Beauty).Error)
	require.NoError(t, db.Create(&c.Higher).Error)
	require.NoError(t, db.Create(&c.None).Error)
	require.NoError(t, db.Create(&c.Azerbaijani).Error)

	c.Yasamal = entity.District{CityID: &c.Baku.ID, Name: "yasamal", DisplayName: "Yasamal"}
	c.Nizami = entity.District{CityID: &c.Ganja.ID, Name: "nizami", DisplayName: "Nizami"}
	require.NoError(t, db.Create(&c.Yasamal).Error)
	require.NoError(t, db.Create(&c.Nizami).Error)

	c.Plumber = entity.Service{CategoryID: c.Repair.ID, Name: "plumber", DisplayName: "Santexnik"}
	c.Other = entity.Service{CategoryID: c.Repair.ID, Name: entity.ServiceNameOther, DisplayName: "Digər"}
	c.Barber = entity.Service{CategoryID: c.Beauty.ID, Name: "barber", DisplayName: "Bərbər"}
	require.NoError(t, db.Create(&c.Plumber).Error)
	require.NoError(t, db.Create(&c.Other).Error)
	require.NoError(t, db.Create(&c.Barber).Error)

	return c
}

// MasterOption adjusts a master before it is stored.
type MasterOption func(*entity.Master)

func Active() MasterOption {
	return func(m *entity.Master) { m.IsActiveOnMainPage = true }
}

func WithProfession(category entity.Category, service entity.Service) MasterOption {
	return func(m *entity.Master) {
		m.ProfessionCategoryID = &category.ID
		m.ProfessionServiceID = &service.ID
	}
}

func WithCities(cities ...entity.City) MasterOption {
	return func(m *entity.Master) { m.Cities = cities }
}

func WithDistricts(districts ...entity.District) MasterOption {
	return func(m *entity.Master) { m.Districts = districts }
}

func WithRole(role entity.Role) MasterOption {
	return func(m *entity.Master) { m.UserRole = role }
}

func WithLastLogin(at time.Time) MasterOption {
	return func(m *entity.Master) { m.LastLogin = &at }
}

// CreateMaster stores a master with the given phone number. The slug is
// derived from the phone so names may repeat.
func CreateMaster(t *testing.T, db *gorm.DB, fullName, phone string, opts ...MasterOption) *entity.Master {
	t.Helper()

	m := &entity.Master{
		UserRole:    entity.RoleMaster,
		PhoneNumber: phone,
		Password:    "hash",
		FullName:    fullName,
		Gender:      entity.GenderMale,
		Slug:        "m" + phone[1:],
	}
	for _, opt := range opts {
		opt(m)
	}

	cities, districts := m.Cities, m.Districts
	m.Cities, m.Districts = nil, nil
	require.NoError(t, db.Omit("Cities", "Districts", "Languages").Create(m).Error)

	if len(cities) > 0 {
		require.NoError(t, db.Model(m).Association("Cities").Replace(cities))
	}
	if len(districts) > 0 {
		require.NoError(t, db.Model(m).Association("Districts").Replace(districts))
	}
	m.Cities, m.Districts = cities, districts
	return m
}

// CreateReview stores a review of master by reviewer.
func CreateReview(t *testing.T, db *gorm.DB, masterID, reviewerID uint, rating int) *entity.Review {
	t.Helper()

	r := &entity.Review{
		MasterID:   masterID,
		ReviewerID: reviewerID,
		Username:   entity.DefaultReviewerName,
		Rating:     rating,
		Comment:    "Yaxşı iş",
	}
	require.NoError(t, db.Omit("Master", "Reviewer").Create(r).Error)
	return r
}
