package entity

import "time"

// Master is the account aggregate. Both service providers and customers live in
// this table; only role master with a completed registration is listed.
type Master struct {
	ID                   uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserRole             Role       `gorm:"type:varchar(20);not null;index" json:"user_role"`
	IsStaff              bool       `gorm:"not null;default:false" json:"is_staff"`
	IsSuperuser          bool       `gorm:"not null;default:false" json:"is_superuser"`
	PhoneNumber          string     `gorm:"type:varchar(13);uniqueIndex;not null" json:"phone_number"`
	Password             string     `gorm:"type:text;not null" json:"-"`
	FullName             string     `gorm:"type:varchar(50);not null" json:"full_name"`
	Birthday             *time.Time `json:"birthday,omitempty"`
	Gender               string     `gorm:"type:varchar(10)" json:"gender"`
	ProfessionCategoryID *uint      `gorm:"index" json:"profession_category_id,omitempty"`
	ProfessionServiceID  *uint      `gorm:"index" json:"profession_service_id,omitempty"`
	CustomProfession     string     `gorm:"type:varchar(100)" json:"custom_profession,omitempty"`
	Experience           *int       `json:"experience,omitempty"`
	EducationID          *uint      `json:"education_id,omitempty"`
	EducationDetail      string     `gorm:"type:varchar(50)" json:"education_detail,omitempty"`
	FacebookURL          string     `gorm:"type:varchar(255)" json:"facebook_url,omitempty"`
	InstagramURL         string     `gorm:"type:varchar(255)" json:"instagram_url,omitempty"`
	TiktokURL            string     `gorm:"type:varchar(255)" json:"tiktok_url,omitempty"`
	LinkedinURL          string     `gorm:"type:varchar(255)" json:"linkedin_url,omitempty"`
	YoutubeURL           string     `gorm:"type:varchar(255)" json:"youtube_url,omitempty"`
	Note                 string     `gorm:"type:text" json:"note,omitempty"`
	IsActiveOnMainPage   bool       `gorm:"not null;default:false;index" json:"is_active_on_main_page"`
	Slug                 string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	LastLogin            *time.Time `json:"last_login,omitempty"`
	CreatedAt            time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	ProfessionCategory *Category  `gorm:"foreignKey:ProfessionCategoryID;constraint:OnDelete:SET NULL" json:"profession_category,omitempty"`
	ProfessionService  *Service   `gorm:"foreignKey:ProfessionServiceID;constraint:OnDelete:SET NULL" json:"profession_service,omitempty"`
	Education          *Education `gorm:"foreignKey:EducationID;constraint:OnDelete:SET NULL" json:"education,omitempty"`
	Cities             []City     `gorm:"many2many:master_cities;constraint:OnDelete:CASCADE" json:"cities,omitempty"`
	Districts          []District `gorm:"many2many:master_districts;constraint:OnDelete:CASCADE" json:"districts,omitempty"`
	Languages          []Language `gorm:"many2many:master_languages;constraint:OnDelete:CASCADE" json:"languages,omitempty"`
}

func (Master) TableName() string {
	return "masters"
}

// Indexable reports whether the account belongs in the search index and public listings.
func (m *Master) Indexable() bool {
	return m != nil && m.UserRole == RoleMaster && m.IsActiveOnMainPage
}

// CanBeModifiedBy reports whether actor may mutate this profile.
func (m *Master) CanBeModifiedBy(actorID uint, actorIsStaff bool) bool {
	return actorIsStaff || m.ID == actorID
}

// CityIDs returns the ids of the selected cities in load order.
func (m *Master) CityIDs() []uint {
	ids := make([]uint, len(m.Cities))
	for i, c := range m.Cities {
		ids[i] = c.ID
	}
	return ids
}

// MasterWithRating pairs a master with its derived review aggregate.
type MasterWithRating struct {
	Master Master
	Rating Rating
}
