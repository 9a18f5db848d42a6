package entity

import "time"

// DefaultReviewerName is shown when the reviewer leaves the name blank.
const DefaultReviewerName = "Anonim hesab"

// Review is a reviewer's score for a master. One review per (master, reviewer).
type Review struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	MasterID   uint   `gorm:"not null;uniqueIndex:idx_reviews_master_reviewer;index" json:"master_id"`
	ReviewerID uint   `gorm:"not null;uniqueIndex:idx_reviews_master_reviewer" json:"reviewer_id"`
	Username   string `gorm:"type:varchar(20);not null" json:"username"`
	Rating     int    `gorm:"not null" json:"rating"`
	Comment    string `gorm:"type:varchar(1000);not null" json:"comment"`

	Responsible    *int `json:"responsible,omitempty"`
	Neat           *int `json:"neat,omitempty"`
	TimeManagement *int `json:"time_management,omitempty"`
	Communicative  *int `json:"communicative,omitempty"`
	Punctual       *int `json:"punctual,omitempty"`
	Professional   *int `json:"professional,omitempty"`
	Experienced    *int `json:"experienced,omitempty"`
	Efficient      *int `json:"efficient,omitempty"`
	Agile          *int `json:"agile,omitempty"`
	Patient        *int `json:"patient,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Master   *Master `gorm:"foreignKey:MasterID;constraint:OnDelete:CASCADE" json:"-"`
	Reviewer *Master `gorm:"foreignKey:ReviewerID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Review) TableName() string {
	return "reviews"
}

// CanBeModifiedBy reports whether actor may edit or delete the review.
func (r *Review) CanBeModifiedBy(actorID uint, actorIsStaff bool) bool {
	return actorIsStaff || r.ReviewerID == actorID
}

// ReviewOrder selects the listing order of reviews.
type ReviewOrder string

const (
	ReviewOrderNewest ReviewOrder = "newest"
	ReviewOrderOldest ReviewOrder = "oldest"
)

// ParseReviewOrder falls back to newest for anything unrecognised.
func ParseReviewOrder(s string) ReviewOrder {
	if ReviewOrder(s) == ReviewOrderOldest {
		return ReviewOrderOldest
	}
	return ReviewOrderNewest
}
