package entity

// EntityKind names the aggregate a change event refers to.
type EntityKind string

const (
	KindMaster    EntityKind = "master"
	KindCity      EntityKind = "city"
	KindDistrict  EntityKind = "district"
	KindEducation EntityKind = "education"
	KindLanguage  EntityKind = "language"
	KindCategory  EntityKind = "category"
	KindService   EntityKind = "service"
)

// ReferenceKinds lists the lookup tables in display order.
var ReferenceKinds = []EntityKind{KindCity, KindDistrict, KindEducation, KindLanguage, KindCategory, KindService}

// IsReference reports whether the kind is a lookup table.
func (k EntityKind) IsReference() bool {
	switch k {
	case KindCity, KindDistrict, KindEducation, KindLanguage, KindCategory, KindService:
		return true
	}
	return false
}

// EmbeddedInDocument reports whether rows of this kind are copied into search documents.
func (k EntityKind) EmbeddedInDocument() bool {
	switch k {
	case KindCity, KindDistrict, KindCategory, KindService:
		return true
	}
	return false
}

// Names with business meaning
const (
	ServiceNameOther   = "other"
	EducationNameNone  = "none"
	DefaultCapitalCity = "baku"
)

type City struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	DisplayName string `gorm:"type:varchar(100);not null" json:"display_name"`

	Districts []District `gorm:"foreignKey:CityID" json:"districts,omitempty"`
}

func (City) TableName() string {
	return "cities"
}

type District struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	CityID      *uint  `gorm:"index" json:"city_id,omitempty"`
	Name        string `gorm:"type:varchar(100);not null" json:"name"`
	DisplayName string `gorm:"type:varchar(100);not null" json:"display_name"`

	City *City `gorm:"foreignKey:CityID;constraint:OnDelete:SET NULL" json:"city,omitempty"`
}

func (District) TableName() string {
	return "districts"
}

type Education struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"type:varchar(100);not null" json:"name"`
	DisplayName string `gorm:"type:varchar(100);not null" json:"display_name"`
}

func (Education) TableName() string {
	return "educations"
}

type Language struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"type:varchar(100);not null" json:"name"`
	DisplayName string `gorm:"type:varchar(100);not null" json:"display_name"`
}

func (Language) TableName() string {
	return "languages"
}

type Category struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"type:varchar(100);not null" json:"name"`
	DisplayName string `gorm:"type:varchar(100);not null" json:"display_name"`

	Services []Service `gorm:"foreignKey:CategoryID" json:"services,omitempty"`
}

func (Category) TableName() string {
	return "categories"
}

type Service struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	CategoryID  uint   `gorm:"not null;index" json:"category_id"`
	Name        string `gorm:"type:varchar(100);not null" json:"name"`
	DisplayName string `gorm:"type:varchar(100);not null" json:"display_name"`

	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"category,omitempty"`
}

func (Service) TableName() string {
	return "services"
}

// Reference is the flattened view shared by every lookup table.
// ParentID carries District.CityID or Service.CategoryID.
type Reference struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	ParentID    *uint  `json:"parent_id,omitempty"`
}

func (c City) Reference() Reference {
	return Reference{ID: c.ID, Name: c.Name, DisplayName: c.DisplayName}
}

func (d District) Reference() Reference {
	return Reference{ID: d.ID, Name: d.Name, DisplayName: d.DisplayName, ParentID: d.CityID}
}

func (e Education) Reference() Reference {
	return Reference{ID: e.ID, Name: e.Name, DisplayName: e.DisplayName}
}

func (l Language) Reference() Reference {
	return Reference{ID: l.ID, Name: l.Name, DisplayName: l.DisplayName}
}

func (c Category) Reference() Reference {
	return Reference{ID: c.ID, Name: c.Name, DisplayName: c.DisplayName}
}

func (s Service) Reference() Reference {
	categoryID := s.CategoryID
	return Reference{ID: s.ID, Name: s.Name, DisplayName: s.DisplayName, ParentID: &categoryID}
}
