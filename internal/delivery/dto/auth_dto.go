package dto

// Request DTOs

type RegisterPersonalRequest struct {
	FullName    string `json:"full_name" validate:"required,max=50,az_letters"`
	Birthday    string `json:"birthday" validate:"required,datetime=2006-01-02"` // Format: YYYY-MM-DD
	PhoneNumber string `json:"phone_number" validate:"required,az_phone"`
	Password    string `json:"password" validate:"required,min=8,max=128,password"`
	Password2   string `json:"password2" validate:"required,eqfield=Password"`
	Gender      string `json:"gender" validate:"required,oneof=male female"`
	UserRole    string `json:"user_role" validate:"omitempty,oneof=master customer"`
}

type RegisterProfessionRequest struct {
	ProfessionCategory uint   `json:"profession_category" validate:"required"`
	ProfessionService  uint   `json:"profession_service" validate:"required"`
	CustomProfession   string `json:"custom_profession" validate:"omitempty,max=100"`
	Experience         *int   `json:"experience" validate:"required,gte=0,lte=80"`
	Cities             []uint `json:"cities" validate:"required,min=1"`
	Districts          []uint `json:"districts" validate:"omitempty"`
}

type RegisterAdditionalRequest struct {
	Education       uint   `json:"education" validate:"required"`
	EducationDetail string `json:"education_detail" validate:"omitempty,max=50"`
	Languages       []uint `json:"languages" validate:"required,min=1"`
	FacebookURL     string `json:"facebook_url" validate:"omitempty,max=255,social=facebook"`
	InstagramURL    string `json:"instagram_url" validate:"omitempty,max=255,social=instagram"`
	TiktokURL       string `json:"tiktok_url" validate:"omitempty,max=255,social=tiktok"`
	LinkedinURL     string `json:"linkedin_url" validate:"omitempty,max=255,social=linkedin"`
	YoutubeURL      string `json:"youtube_url" validate:"omitempty,max=255,social=youtube"`
	Note            string `json:"note" validate:"omitempty,max=1500"`
}

type LoginRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,az_phone"`
	Password    string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"omitempty"`
}

type PasswordResetRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,az_phone"`
}

type PasswordResetConfirmRequest struct {
	PhoneNumber    string `json:"phone_number" validate:"required,az_phone"`
	OTPCode        string `json:"otp_code" validate:"required,len=6,numeric"`
	NewPassword    string `json:"new_password" validate:"required,min=8,max=128,password"`
	NewPasswordTwo string `json:"new_password_two" validate:"required,eqfield=NewPassword"`
}

// Response DTOs

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type AccountResponse struct {
	ID                 uint   `json:"id"`
	FullName           string `json:"full_name"`
	PhoneNumber        string `json:"phone_number"`
	UserRole           string `json:"user_role"`
	IsStaff            bool   `json:"is_staff"`
	IsActiveOnMainPage bool   `json:"is_active_on_main_page"`
	Slug               string `json:"slug"`
}

type AuthResponse struct {
	Account AccountResponse `json:"user"`
	Tokens  TokenResponse   `json:"tokens"`
}
