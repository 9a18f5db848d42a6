package usecase

import (
	"testing"

	"masters-marketplace/internal/delivery/dto"
	"masters-marketplace/internal/delivery/http/middleware"
	"masters-marketplace/internal/domain/entity"
	domainrepo "masters-marketplace/internal/domain/repository"
	"masters-marketplace/internal/service"
	"masters-marketplace/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func personalRequest(name, phone string) *dto.RegisterPersonalRequest {
	return &dto.RegisterPersonalRequest{
		FullName:    name,
		Birthday:    "1990-05-01",
		PhoneNumber: phone,
		Password:    "secret-pass1",
		Password2:   "secret-pass1",
		Gender:      entity.GenderMale,
	}
}

func requireFieldError(t *testing.T, err error, field string) {
	t.Helper()
	fieldErr, ok := AsFieldError(err)
	require.True(t, ok, "expected field error, got %v", err)
	assert.Equal(t, field, fieldErr.Field)
}

func TestRegisterPersonalFormatsNameAndSlug(t *testing.T) {
	f := newFixture(t)
	uc, otp := f.authUsecase(&recordingSender{})
	defer otp.Stop()

	first, err := uc.RegisterPersonal(t.Context(), personalRequest("alı   məmmədov", "+994501111111"))
	require.NoError(t, err)
	assert.Equal(t, "Alı Məmmədov", first.Account.FullName)
	assert.Equal(t, "ali-memmedov", first.Account.Slug)
	assert.Equal(t, string(entity.RoleMaster), first.Account.UserRole)
	assert.False(t, first.Account.IsActiveOnMainPage)
	assert.NotEmpty(t, first.Tokens.AccessToken)
	assert.NotEmpty(t, first.Tokens.RefreshToken)

	second, err := uc.RegisterPersonal(t.Context(), personalRequest("Alı Məmmədov", "+994502222222"))
	require.NoError(t, err)
	assert.Equal(t, "ali-memmedov-1", second.Account.Slug)

	keys := f.mr.Keys()
	assert.Len(t, keys, 4)
}

func TestRegisterPersonalDuplicatePhone(t *testing.T) {
	f := newFixture(t)
	uc, otp := f.authUsecase(&recordingSender{})
	defer otp.Stop()

	_, err := uc.RegisterPersonal(t.Context(), personalRequest("Vüsal Əliyev", "+994501111111"))
	require.NoError(t, err)

	_, err = uc.RegisterPersonal(t.Context(), personalRequest("Başqa Ad", "+994501111111"))
	assert.ErrorIs(t, err, ErrPhoneAlreadyExists)
}

// lateWriterRepo answers the first existence checks as if a concurrent
// registration had not committed yet.
type lateWriterRepo struct {
	domainrepo.MasterRepository
	staleSlugChecks  int
	stalePhoneChecks int
}

func (r *lateWriterRepo) SlugExists(db *gorm.DB, slug string) (bool, error) {
	if r.staleSlugChecks > 0 {
		r.staleSlugChecks--
		return false, nil
	}
	return r.MasterRepository.SlugExists(db, slug)
}

func (r *lateWriterRepo) FindByPhone(db *gorm.DB, phone string) (*entity.Master, error) {
	if r.stalePhoneChecks > 0 {
		r.stalePhoneChecks--
		return nil, nil
	}
	return r.MasterRepository.FindByPhone(db, phone)
}

func TestRegisterPersonalRetriesSlugTakenConcurrently(t *testing.T) {
	f := newFixture(t)
	uc, otp := f.authUsecase(&recordingSender{})
	defer otp.Stop()

	_, err := uc.RegisterPersonal(t.Context(), personalRequest("Alı Məmmədov", "+994501111111"))
	require.NoError(t, err)

	impl := uc.(*authUsecase)
	impl.masterRepo = &lateWriterRepo{MasterRepository: impl.masterRepo, staleSlugChecks: 1}

	second, err := uc.RegisterPersonal(t.Context(), personalRequest("Alı Məmmədov", "+994502222222"))
	require.NoError(t, err)
	assert.Equal(t, "ali-memmedov-1", second.Account.Slug)
}

func TestRegisterPersonalPhoneTakenConcurrently(t *testing.T) {
	f := newFixture(t)
	uc, otp := f.authUsecase(&recordingSender{})
	defer otp.Stop()

	_, err := uc.RegisterPersonal(t.Context(), personalRequest("Vüsal Əliyev", "+994501111111"))
	require.NoError(t, err)

	impl := uc.(*authUsecase)
	impl.masterRepo = &lateWriterRepo{MasterRepository: impl.masterRepo, stalePhoneChecks: 1}

	_, err = uc.RegisterPersonal(t.Context(), personalRequest("Başqa Ad", "+994501111111"))
	assert.ErrorIs(t, err, ErrPhoneAlreadyExists)

	var count int64
	require.NoError(t, f.db.Model(&entity.Master{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRegistrationFlowActivatesMaster(t *testing.T) {
	f := newFixture(t)
	uc, otp := f.authUsecase(&recordingSender{})
	defer otp.Stop()
	c := f.catalog

	registered, err := uc.RegisterPersonal(t.Context(), personalRequest("Alı Məmmədov", "+994501111111"))
	require.NoError(t, err)
	ctx := asUser(registered.Account.ID)

	_, err = uc.RegisterProfession(ctx, &dto.RegisterProfessionRequest{
		ProfessionCategory: c.Repair.ID,
		ProfessionService:  c.Plumber.ID,
		Experience:         intPtr(7),
		Cities:             []uint{c.Baku.ID},
		Districts:          []uint{c.Yasamal.ID},
	})
	require.NoError(t, err)
	assert.Empty(t, f.publisher.Events())

	account, err := uc.RegisterAdditional(ctx, &dto.RegisterAdditionalRequest{
		Education:       c.Higher.ID,
		EducationDetail: "BDU",
		Languages:       []uint{c.Azerbaijani.ID},
		InstagramURL:    "https://instagram.com/ali",
		Note:            "vaxtında işləyirəm",
	})
	require.NoError(t, err)
	assert.True(t, account.IsActiveOnMainPage)

	var stored entity.Master
	require.NoError(t, f.db.Preload("Cities").Preload("Districts").Preload("Languages").First(&stored, registered.Account.ID).Error)
	assert.Equal(t, c.Plumber.ID, *stored.ProfessionServiceID)
	assert.Equal(t, 7, *stored.Experience)
	assert.Equal(t, "Vaxtında işləyirəm", stored.Note)
	require.Len(t, stored.Cities, 1)
	require.Len(t, stored.Districts, 1)
	require.Len(t, stored.Languages, 1)

	events := f.publisher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, entity.ChangeEvent{Kind: entity.KindMaster, ID: registered.Account.ID, Action: entity.ChangeUpdated}, events[0])
	assert.Equal(t, int64(1), countAuditLogs(t, f.db, entity.AuditActionMasterActivate))

	// a completed registration cannot be repeated
	_, err = uc.RegisterAdditional(ctx, &dto.RegisterAdditionalRequest{Education: c.Higher.ID, EducationDetail: "BDU", Languages: []uint{c.Azerbaijani.ID}})
	assert.ErrorIs(t, err, ErrRegistrationCompleted)
}

func TestRegisterProfessionRules(t *testing.T) {
	f := newFixture(t)
	uc, otp := f.authUsecase(&recordingSender{})
	defer otp.Stop()
	c := f.catalog

	registered, err := uc.RegisterPersonal(t.Context(), personalRequest("Nərgiz Həsənova", "+994501111111"))
	require.NoError(t, err)
	ctx := asUser(registered.Account.ID)

	tests := []struct {
		name  string
		req   dto.RegisterProfessionRequest
		field string
	}{
		{
			name:  "service from another category",
			req:   dto.RegisterProfessionRequest{ProfessionCategory: c.Repair.ID, ProfessionService: c.Barber.ID, Experience: intPtr(1), Cities: []uint{c.Baku.ID}},
			field: "profession_service",
		},
		{
			name:  "other without custom profession",
			req:   dto.RegisterProfessionRequest{ProfessionCategory: c.Repair.ID, ProfessionService: c.Other.ID, Experience: intPtr(1), Cities: []uint{c.Baku.ID}},
			field: "custom_profession",
		},
		{
			name:  "custom profession for a regular service",
			req:   dto.RegisterProfessionRequest{ProfessionCategory: c.Repair.ID, ProfessionService: c.Plumber.ID, CustomProfession: "Kafel ustası", Experience: intPtr(1), Cities: []uint{c.Baku.ID}},
			field: "custom_profession",
		},
		{
			name:  "district outside the selected cities",
			req:   dto.RegisterProfessionRequest{ProfessionCategory: c.Repair.ID, ProfessionService: c.Plumber.ID, Experience: intPtr(1), Cities: []uint{c.Ganja.ID}, Districts: []uint{c.Yasamal.ID}},
			field: "districts",
		},
		{
			name:  "district outside the capital",
			req:   dto.RegisterProfessionRequest{ProfessionCategory: c.Repair.ID, ProfessionService: c.Plumber.ID, Experience: intPtr(1), Cities: []uint{c.Ganja.ID}, Districts: []uint{c.Nizami.ID}},
			field: "districts",
		},
		{
			name:  "unknown city",
			req:   dto.RegisterProfessionRequest{ProfessionCategory: c.Repair.ID, ProfessionService: c.Plumber.ID, Experience: intPtr(1), Cities: []uint{9999}},
			field: "cities",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := uc.RegisterProfession(ctx, &req)
			requireFieldError(t, err, tt.field)
		})
	}

	_, err = uc.RegisterProfession(ctx, &dto.RegisterProfessionRequest{
		ProfessionCategory: c.Repair.ID,
		ProfessionService:  c.Other.ID,
		CustomProfession:   "Kafel ustası",
		Experience:         intPtr(2),
		Cities:             []uint{c.Baku.ID, c.Ganja.ID},
		Districts:          []uint{c.Yasamal.ID},
	})
	assert.NoError(t, err)
}

func TestRegisterAdditionalEducationRule(t *testing.T) {
	f := newFixture(t)
	uc, otp := f.authUsecase(&recordingSender{})
	defer otp.Stop()
	c := f.catalog

	registered, err := uc.RegisterPersonal(t.Context(), personalRequest("Nərgiz Həsənova", "+994501111111"))
	require.NoError(t, err)
	ctx := asUser(registered.Account.ID)

	_, err = uc.RegisterAdditional(ctx, &dto.RegisterAdditionalRequest{Education: c.Higher.ID, EducationDetail: "BDU", Languages: []uint{c.Azerbaijani.ID}})
	requireFieldError(t, err, "profession_service")

	_, err = uc.RegisterProfession(ctx, &dto.RegisterProfessionRequest{
		ProfessionCategory: c.Repair.ID,
		ProfessionService:  c.Plumber.ID,
		Experience:         intPtr(2),
		Cities:             []uint{c.Baku.ID},
	})
	require.NoError(t, err)

	_, err = uc.RegisterAdditional(ctx, &dto.RegisterAdditionalRequest{Education: c.None.ID, EducationDetail: "BDU", Languages: []uint{c.Azerbaijani.ID}})
	requireFieldError(t, err, "education_detail")

	_, err = uc.RegisterAdditional(ctx, &dto.RegisterAdditionalRequest{Education: c.Higher.ID, Languages: []uint{c.Azerbaijani.ID}})
	requireFieldError(t, err, "education_detail")

	_, err = uc.RegisterAdditional(ctx, &dto.RegisterAdditionalRequest{Education: c.None.ID, Languages: []uint{c.Azerbaijani.ID}})
	assert.NoError(t, err)
}

func TestRegisterProfessionRejectsCustomer(t *testing.T) {
	f := newFixture(t)
	uc, otp := f.authUsecase(&recordingSender{})
	defer otp.Stop()

	req := personalRequest("Aysel Quliyeva", "+994501111111")
	req.UserRole = string(entity.RoleCustomer)
	registered, err := uc.RegisterPersonal(t.Context(), req)
	require.NoError(t, err)

	_, err = uc.RegisterProfession(asUser(registered.Account.ID), &dto.RegisterProfessionRequest{
		ProfessionCategory: f.catalog.Repair.ID,
		ProfessionService:  f.catalog.Plumber.ID,
		Experience:         intPtr(1),
		Cities:             []uint{f.catalog.Baku.ID},
	})
	assert.ErrorIs(t, err, ErrNotMaster)
}

func TestLoginAndRefresh(t *testing.T) {
	f := newFixture(t)
	uc, otp := f.authUsecase(&recordingSender{})
	defer otp.Stop()

	registered, err := uc.RegisterPersonal(t.Context(), personalRequest("Orxan Babayev", "+994501111111"))
	require.NoError(t, err)

	_, err = uc.Login(t.Context(), &dto.LoginRequest{PhoneNumber: "+994501111111", Password: "wrong-pass1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = uc.Login(t.Context(), &dto.LoginRequest{PhoneNumber: "+994509999999", Password: "secret-pass1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	loggedIn, err := uc.Login(t.Context(), &dto.LoginRequest{PhoneNumber: "+994501111111", Password: "secret-pass1"})
	require.NoError(t, err)
	assert.Equal(t, registered.Account.ID, loggedIn.Account.ID)

	var stored entity.Master
	require.NoError(t, f.db.First(&stored, registered.Account.ID).Error)
	assert.NotNil(t, stored.LastLogin)

	rotated, err := uc.RefreshToken(t.Context(), &dto.RefreshTokenRequest{RefreshToken: loggedIn.Tokens.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, loggedIn.Tokens.RefreshToken, rotated.RefreshToken)

	_, err = uc.RefreshToken(t.Context(), &dto.RefreshTokenRequest{RefreshToken: loggedIn.Tokens.RefreshToken})
	assert.ErrorIs(t, err, ErrTokenRevoked)

	_, err = uc.RefreshToken(t.Context(), &dto.RefreshTokenRequest{RefreshToken: rotated.AccessToken})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutRevokesTokens(t *testing.T) {
	f := newFixture(t)
	uc, otp := f.authUsecase(&recordingSender{})
	defer otp.Stop()

	registered, err := uc.RegisterPersonal(t.Context(), personalRequest("Orxan Babayev", "+994501111111"))
	require.NoError(t, err)

	jwtService := f.jwtService()
	access, err := jwtService.ValidateToken(registered.Tokens.AccessToken)
	require.NoError(t, err)
	refresh, err := jwtService.ValidateToken(registered.Tokens.RefreshToken)
	require.NoError(t, err)

	ctx := middleware.WithClaims(t.Context(), access)
	require.NoError(t, uc.Logout(ctx, registered.Tokens.RefreshToken))

	assert.False(t, f.mr.Exists(jwt.AccessTokenKey(access.UserID, access.TokenID)))
	assert.False(t, f.mr.Exists(jwt.RefreshTokenKey(refresh.UserID, refresh.TokenID)))

	err = uc.Logout(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordReset(t *testing.T) {
	f := newFixture(t)
	sender := &recordingSender{}
	uc, otp := f.authUsecase(sender)
	c := t.Context()

	registered, err := uc.RegisterPersonal(c, personalRequest("Orxan Babayev", "+994501111111"))
	require.NoError(t, err)

	err = uc.RequestPasswordReset(c, &dto.PasswordResetRequest{PhoneNumber: "+994509999999"})
	requireFieldError(t, err, "phone_number")

	require.NoError(t, uc.RequestPasswordReset(c, &dto.PasswordResetRequest{PhoneNumber: "+994501111111"}))
	code, err := f.mr.Get(service.OTPKey("+994501111111"))
	require.NoError(t, err)
	assert.Len(t, code, 6)

	otp.Stop()
	sender.mu.Lock()
	assert.Contains(t, sender.messages["+994501111111"], code)
	sender.mu.Unlock()

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	err = uc.ConfirmPasswordReset(c, &dto.PasswordResetConfirmRequest{
		PhoneNumber: "+994501111111", OTPCode: wrong, NewPassword: "brand-new-pass1", NewPasswordTwo: "brand-new-pass1",
	})
	requireFieldError(t, err, "otp_code")

	require.NoError(t, uc.ConfirmPasswordReset(c, &dto.PasswordResetConfirmRequest{
		PhoneNumber: "+994501111111", OTPCode: code, NewPassword: "brand-new-pass1", NewPasswordTwo: "brand-new-pass1",
	}))

	assert.False(t, f.mr.Exists(service.OTPKey("+994501111111")))
	assert.Empty(t, f.mr.Keys())
	assert.Equal(t, int64(1), countAuditLogs(t, f.db, entity.AuditActionPasswordReset))

	_, err = uc.Login(c, &dto.LoginRequest{PhoneNumber: "+994501111111", Password: "secret-pass1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	loggedIn, err := uc.Login(c, &dto.LoginRequest{PhoneNumber: "+994501111111", Password: "brand-new-pass1"})
	require.NoError(t, err)
	assert.Equal(t, registered.Account.ID, loggedIn.Account.ID)
}
