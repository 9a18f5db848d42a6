package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"masters-marketplace/config"
	"masters-marketplace/internal/delivery/http/middleware"
	"masters-marketplace/internal/domain/entity"
	"masters-marketplace/internal/repository"
	"masters-marketplace/internal/service"
	"masters-marketplace/internal/testutil"
	"masters-marketplace/pkg/jwt"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []entity.ChangeEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event entity.ChangeEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) Events() []entity.ChangeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]entity.ChangeEvent(nil), p.events...)
}

type recordingSender struct {
	mu       sync.Mutex
	messages map[string]string
}

func (s *recordingSender) Send(ctx context.Context, phone, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.messages == nil {
		s.messages = map[string]string{}
	}
	s.messages[phone] = message
	return nil
}

type fixture struct {
	db        *gorm.DB
	log       *logrus.Logger
	catalog   *testutil.Catalog
	mr        *miniredis.Miniredis
	redis     *redis.Client
	publisher *recordingPublisher
	audit     service.AuditService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	mr, client := testutil.NewRedis(t)
	log := testutil.NewLogger()

	return &fixture{
		db:        db,
		log:       log,
		catalog:   testutil.SeedCatalog(t, db),
		mr:        mr,
		redis:     client,
		publisher: &recordingPublisher{},
		audit:     service.NewAuditService(log, repository.NewAuditLogRepository()),
	}
}

func (f *fixture) masterUsecase() MasterUsecase {
	return NewMasterUsecase(f.db, f.log,
		repository.NewMasterRepository(),
		repository.NewReviewRepository(),
		repository.NewReferenceRepository(),
		f.audit, f.publisher, "baku")
}

func (f *fixture) reviewUsecase() ReviewUsecase {
	return NewReviewUsecase(f.db, f.log,
		repository.NewMasterRepository(),
		repository.NewReviewRepository(),
		f.audit, f.publisher)
}

func (f *fixture) referenceUsecase() ReferenceUsecase {
	cache := service.NewReferenceCache(f.redis, f.log, config.CacheConfig{TTL: time.Minute, Timeout: time.Second})
	return NewReferenceUsecase(f.db, f.log,
		repository.NewReferenceRepository(),
		repository.NewMasterRepository(),
		cache, f.audit, f.publisher)
}

func (f *fixture) jwtService() *jwt.JWTService {
	return jwt.NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  time.Hour,
		RefreshExpiry: 2 * time.Hour,
	})
}

func (f *fixture) authUsecase(sender service.SMSSender) (AuthUsecase, *service.OTPService) {
	otp := service.NewOTPService(f.redis, f.log, sender, config.OTPConfig{TTL: 180 * time.Second})
	uc := NewAuthUsecase(f.db, f.log,
		repository.NewMasterRepository(),
		repository.NewReferenceRepository(),
		f.audit, otp, f.publisher, f.jwtService(), f.redis, "baku")
	return uc, otp
}

func asUser(id uint) context.Context {
	return middleware.WithClaims(context.Background(), &jwt.Claims{UserID: id, Role: string(entity.RoleMaster), TokenID: "token"})
}

func asStaff(id uint) context.Context {
	return middleware.WithClaims(context.Background(), &jwt.Claims{UserID: id, Role: string(entity.RoleCustomer), IsStaff: true, TokenID: "token"})
}

func countAuditLogs(t *testing.T, db *gorm.DB, action string) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&entity.AuditLog{}).Where("action = ?", action).Count(&n).Error; err != nil {
		t.Fatalf("count audit logs: %v", err)
	}
	return n
}

func uintPtr(v uint) *uint { return &v }

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
