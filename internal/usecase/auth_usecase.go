package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"masters-marketplace/internal/converter"
	"masters-marketplace/internal/delivery/dto"
	"masters-marketplace/internal/delivery/http/middleware"
	"masters-marketplace/internal/domain/entity"
	"masters-marketplace/internal/domain/repository"
	"masters-marketplace/internal/service"
	"masters-marketplace/pkg/jwt"
	"masters-marketplace/pkg/slug"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrPhoneAlreadyExists    = errors.New("phone number already exists")
	ErrInvalidCredentials    = errors.New("invalid phone number or password")
	ErrInvalidToken          = errors.New("invalid or expired token")
	ErrTokenRevoked          = errors.New("token has been revoked")
	ErrUserNotFound          = errors.New("user not found")
	ErrNotMaster             = errors.New("only masters can complete a profile")
	ErrRegistrationCompleted = errors.New("registration is already completed")
	ErrInvalidDateFormat     = errors.New("invalid date format, use YYYY-MM-DD")
)

type AuthUsecase interface {
	RegisterPersonal(ctx context.Context, req *dto.RegisterPersonalRequest) (*dto.AuthResponse, error)
	RegisterProfession(ctx context.Context, req *dto.RegisterProfessionRequest) (*dto.AccountResponse, error)
	RegisterAdditional(ctx context.Context, req *dto.RegisterAdditionalRequest) (*dto.AccountResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	GetCurrentUser(ctx context.Context) (*dto.AccountResponse, error)
	RequestPasswordReset(ctx context.Context, req *dto.PasswordResetRequest) error
	ConfirmPasswordReset(ctx context.Context, req *dto.PasswordResetConfirmRequest) error
}

type authUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	masterRepo   repository.MasterRepository
	rules        *profileRules
	auditService service.AuditService
	otpService   *service.OTPService
	publisher    service.ChangePublisher
	jwtService   *jwt.JWTService
	redisClient  *redis.Client
}

func NewAuthUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	masterRepo repository.MasterRepository,
	referenceRepo repository.ReferenceRepository,
	auditService service.AuditService,
	otpService *service.OTPService,
	publisher service.ChangePublisher,
	jwtService *jwt.JWTService,
	redisClient *redis.Client,
	capitalCity string,
) AuthUsecase {
	return &authUsecase{
		db:           db,
		log:          log,
		masterRepo:   masterRepo,
		rules:        newProfileRules(referenceRepo, capitalCity),
		auditService: auditService,
		otpService:   otpService,
		publisher:    publisher,
		jwtService:   jwtService,
		redisClient:  redisClient,
	}
}

func (u *authUsecase) RegisterPersonal(ctx context.Context, req *dto.RegisterPersonalRequest) (*dto.AuthResponse, error) {
	birthday, err := time.Parse(dateLayout, req.Birthday)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}

	role := entity.RoleMaster
	if req.UserRole != "" {
		role = entity.Role(req.UserRole)
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	existing, err := u.masterRepo.FindByPhone(tx, req.PhoneNumber)
	if err != nil {
		u.log.Warnf("Failed to find user by phone: %+v", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrPhoneAlreadyExists
	}

	master := &entity.Master{
		UserRole:    role,
		PhoneNumber: req.PhoneNumber,
		Password:    string(hashedPassword),
		FullName:    formatFullName(req.FullName),
		Birthday:    &birthday,
		Gender:      req.Gender,
	}

	if err := u.createWithSlug(tx, master); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	tokens, err := u.issueTokens(ctx, master)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Account: converter.MasterToAccount(master),
		Tokens:  *tokens,
	}, nil
}

// createWithSlug inserts master under a generated unique slug. A unique
// violation means a concurrent registration took either the phone or the
// slug; the phone is re-checked and a slug clash is retried.
func (u *authUsecase) createWithSlug(tx *gorm.DB, master *entity.Master) error {
	for attempt := 0; attempt < slugAttempts; attempt++ {
		masterSlug, err := slug.Unique(slug.Make(master.FullName), func(s string) (bool, error) {
			return u.masterRepo.SlugExists(tx, s)
		})
		if err != nil {
			u.log.Warnf("Failed to generate slug: %+v", err)
			return err
		}
		master.Slug = masterSlug

		if err := tx.SavePoint("create_master").Error; err != nil {
			u.log.Warnf("Failed to create savepoint: %+v", err)
			return err
		}

		err = u.masterRepo.Create(tx, master)
		if err == nil {
			return nil
		}
		if !isDuplicateKeyError(err, "phone") && !isDuplicateKeyError(err, "slug") {
			u.log.Warnf("Failed to create user: %+v", err)
			return err
		}

		if err := tx.RollbackTo("create_master").Error; err != nil {
			u.log.Warnf("Failed to roll back to savepoint: %+v", err)
			return err
		}

		existing, err := u.masterRepo.FindByPhone(tx, master.PhoneNumber)
		if err != nil {
			u.log.Warnf("Failed to find user by phone: %+v", err)
			return err
		}
		if existing != nil {
			return ErrPhoneAlreadyExists
		}

		u.log.Warnf("Slug %q was taken concurrently, retrying", master.Slug)
		master.ID = 0
	}

	return fmt.Errorf("register %q: no free slug after %d attempts", master.FullName, slugAttempts)
}

func (u *authUsecase) RegisterProfession(ctx context.Context, req *dto.RegisterProfessionRequest) (*dto.AccountResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	master, err := u.pendingMaster(ctx, tx)
	if err != nil {
		return nil, err
	}

	if err := u.rules.applyProfession(tx, master, req.ProfessionCategory, req.ProfessionService, req.CustomProfession); err != nil {
		return nil, err
	}
	if err := u.rules.applyLocations(tx, master, req.Cities, req.Districts); err != nil {
		return nil, err
	}
	master.Experience = req.Experience

	if err := u.saveProfile(tx, master); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	account := converter.MasterToAccount(master)
	return &account, nil
}

func (u *authUsecase) RegisterAdditional(ctx context.Context, req *dto.RegisterAdditionalRequest) (*dto.AccountResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	master, err := u.pendingMaster(ctx, tx)
	if err != nil {
		return nil, err
	}
	if master.ProfessionServiceID == nil {
		return nil, newFieldError("profession_service", "Complete the profession step first")
	}

	if err := u.rules.applyEducation(tx, master, req.Education, req.EducationDetail); err != nil {
		return nil, err
	}
	if err := u.rules.applyLanguages(tx, master, req.Languages); err != nil {
		return nil, err
	}

	master.FacebookURL = req.FacebookURL
	master.InstagramURL = req.InstagramURL
	master.TiktokURL = req.TiktokURL
	master.LinkedinURL = req.LinkedinURL
	master.YoutubeURL = req.YoutubeURL
	master.Note = capitalizeFirst(req.Note)
	master.IsActiveOnMainPage = true

	if err := u.saveProfile(tx, master); err != nil {
		return nil, err
	}

	if err := u.auditService.LogUpdate(ctx, tx, &master.ID, entity.AuditActionMasterActivate, "master", master.ID,
		map[string]interface{}{"is_active_on_main_page": false},
		map[string]interface{}{"is_active_on_main_page": true},
	); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.publisher.Publish(ctx, entity.ChangeEvent{Kind: entity.KindMaster, ID: master.ID, Action: entity.ChangeUpdated})

	account := converter.MasterToAccount(master)
	return &account, nil
}

// pendingMaster loads the caller for the registration steps that follow the
// personal one. Completed registrations are reported as not found.
func (u *authUsecase) pendingMaster(ctx context.Context, tx *gorm.DB) (*entity.Master, error) {
	caller, ok := actorFromContext(ctx)
	if !ok {
		return nil, ErrUserNotFound
	}

	master, err := u.masterRepo.FindByID(tx, caller.ID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if master == nil {
		return nil, ErrUserNotFound
	}
	if master.UserRole != entity.RoleMaster {
		return nil, ErrNotMaster
	}
	if master.IsActiveOnMainPage {
		return nil, ErrRegistrationCompleted
	}
	return master, nil
}

func (u *authUsecase) saveProfile(tx *gorm.DB, master *entity.Master) error {
	if err := u.masterRepo.Update(tx, master); err != nil {
		u.log.Warnf("Failed to update master: %+v", err)
		return err
	}
	if err := u.masterRepo.ReplaceAssociations(tx, master); err != nil {
		u.log.Warnf("Failed to update master associations: %+v", err)
		return err
	}
	return nil
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	// Find user by phone (read-only, no transaction needed)
	master, err := u.masterRepo.FindByPhone(u.db.WithContext(ctx), req.PhoneNumber)
	if err != nil {
		u.log.Warnf("Failed to find user by phone: %+v", err)
		return nil, err
	}
	if master == nil {
		return nil, ErrInvalidCredentials
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(master.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := u.masterRepo.UpdateLastLogin(u.db.WithContext(ctx), master.ID, now); err != nil {
		u.log.Warnf("Failed to update last login: %+v", err)
		return nil, err
	}
	master.LastLogin = &now

	tokens, err := u.issueTokens(ctx, master)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Account: converter.MasterToAccount(master),
		Tokens:  *tokens,
	}, nil
}

// Logout revokes the caller's access token and, when given, the refresh token.
func (u *authUsecase) Logout(ctx context.Context, refreshToken string) error {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return ErrInvalidToken
	}
	accessTokenID, _ := middleware.GetTokenIDFromContext(ctx)

	keys := []string{jwt.AccessTokenKey(userID, accessTokenID)}

	if refreshToken != "" {
		claims, err := u.jwtService.ValidateToken(refreshToken)
		if err != nil || claims.TokenType != jwt.RefreshToken || claims.UserID != userID {
			return ErrInvalidToken
		}
		keys = append(keys, jwt.RefreshTokenKey(userID, claims.TokenID))
	}

	if err := u.redisClient.Del(ctx, keys...).Err(); err != nil {
		u.log.Warnf("Failed to delete tokens: %+v", err)
		return err
	}
	return nil
}

func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	// Validate refresh token
	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	// Check if refresh token exists in Redis
	refreshKey := jwt.RefreshTokenKey(claims.UserID, claims.TokenID)
	exists, err := u.redisClient.Exists(ctx, refreshKey).Result()
	if err != nil {
		u.log.Warnf("Failed to check refresh token in Redis: %+v", err)
		return nil, err
	}
	if exists == 0 {
		return nil, ErrTokenRevoked
	}

	master, err := u.masterRepo.FindByPhone(u.db.WithContext(ctx), claims.Phone)
	if err != nil {
		u.log.Warnf("Failed to find user by phone: %+v", err)
		return nil, err
	}
	if master == nil || master.ID != claims.UserID {
		return nil, ErrInvalidToken
	}

	// Delete old refresh token
	if err := u.redisClient.Del(ctx, refreshKey).Err(); err != nil {
		u.log.Warnf("Failed to delete old refresh token: %+v", err)
		return nil, err
	}

	return u.issueTokens(ctx, master)
}

func (u *authUsecase) GetCurrentUser(ctx context.Context) (*dto.AccountResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotFound
	}

	master, err := u.masterRepo.FindByID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if master == nil {
		return nil, ErrUserNotFound
	}

	account := converter.MasterToAccount(master)
	return &account, nil
}

func (u *authUsecase) RequestPasswordReset(ctx context.Context, req *dto.PasswordResetRequest) error {
	master, err := u.masterRepo.FindByPhone(u.db.WithContext(ctx), req.PhoneNumber)
	if err != nil {
		u.log.Warnf("Failed to find user by phone: %+v", err)
		return err
	}
	if master == nil {
		return newFieldError("phone_number", "No account is registered with this phone number")
	}

	if err := u.otpService.Issue(ctx, master.PhoneNumber); err != nil {
		u.log.Warnf("Failed to issue otp: %+v", err)
		return err
	}
	return nil
}

func (u *authUsecase) ConfirmPasswordReset(ctx context.Context, req *dto.PasswordResetConfirmRequest) error {
	master, err := u.masterRepo.FindByPhone(u.db.WithContext(ctx), req.PhoneNumber)
	if err != nil {
		u.log.Warnf("Failed to find user by phone: %+v", err)
		return err
	}
	if master == nil {
		return newFieldError("phone_number", "No account is registered with this phone number")
	}

	if err := u.otpService.Verify(ctx, master.PhoneNumber, req.OTPCode); err != nil {
		if errors.Is(err, service.ErrInvalidOTP) {
			return newFieldError("otp_code", "Invalid or expired OTP code")
		}
		u.log.Warnf("Failed to verify otp: %+v", err)
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.masterRepo.UpdatePassword(tx, master.ID, string(hashedPassword)); err != nil {
		u.log.Warnf("Failed to update password: %+v", err)
		return err
	}

	if err := u.auditService.LogUpdate(ctx, tx, &master.ID, entity.AuditActionPasswordReset, "master", master.ID, nil, nil); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	if err := u.otpService.Delete(ctx, master.PhoneNumber); err != nil {
		u.log.Warnf("Failed to delete otp: %+v", err)
	}

	return u.revokeAllUserTokens(ctx, master.ID)
}

func (u *authUsecase) issueTokens(ctx context.Context, master *entity.Master) (*dto.TokenResponse, error) {
	subject := jwt.Subject{
		UserID:  master.ID,
		Phone:   master.PhoneNumber,
		Role:    string(master.UserRole),
		IsStaff: master.IsStaff,
	}

	// Generate tokens
	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(subject)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(subject)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	// Store tokens in Redis
	if err := u.redisClient.Set(ctx, jwt.AccessTokenKey(master.ID, accessTokenID), "valid", u.jwtService.GetAccessExpiry()).Err(); err != nil {
		u.log.Warnf("Failed to store access token in Redis: %+v", err)
		return nil, err
	}

	if err := u.redisClient.Set(ctx, jwt.RefreshTokenKey(master.ID, refreshTokenID), "valid", u.jwtService.GetRefreshExpiry()).Err(); err != nil {
		u.log.Warnf("Failed to store refresh token in Redis: %+v", err)
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
	}, nil
}

// revokeAllUserTokens revokes all tokens for a user (used when the password changes)
func (u *authUsecase) revokeAllUserTokens(ctx context.Context, userID uint) error {
	for _, pattern := range []string{
		fmt.Sprintf("access_token:%d:*", userID),
		fmt.Sprintf("refresh_token:%d:*", userID),
	} {
		keys, err := u.redisClient.Keys(ctx, pattern).Result()
		if err != nil {
			u.log.Warnf("Failed to get token keys: %+v", err)
			return err
		}
		if len(keys) == 0 {
			continue
		}
		if err := u.redisClient.Del(ctx, keys...).Err(); err != nil {
			u.log.Warnf("Failed to delete tokens: %+v", err)
			return err
		}
	}
	return nil
}

const (
	dateLayout = "2006-01-02"

	// Inserts tried when a generated slug is taken by a concurrent registration
	slugAttempts = 3
)
