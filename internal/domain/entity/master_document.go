package entity

import "time"

// DocumentRef is an embedded reference inside a search document.
type DocumentRef struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

// MasterDocument is the denormalized projection of a master stored in the search index.
// Field order is fixed so that the same state always serializes to the same bytes.
type MasterDocument struct {
	ID                 uint          `json:"id"`
	FullName           string        `json:"full_name"`
	CustomProfession   *string       `json:"custom_profession"`
	EducationDetail    *string       `json:"education_detail"`
	Birthday           *string       `json:"birthday"`
	PhoneNumber        string        `json:"phone_number"`
	Gender             string        `json:"gender"`
	IsActiveOnMainPage bool          `json:"is_active_on_main_page"`
	Note               *string       `json:"note"`
	Experience         *int          `json:"experience"`
	FacebookURL        *string       `json:"facebook_url"`
	InstagramURL       *string       `json:"instagram_url"`
	TiktokURL          *string       `json:"tiktok_url"`
	LinkedinURL        *string       `json:"linkedin_url"`
	YoutubeURL         *string       `json:"youtube_url"`
	CreatedAt          time.Time     `json:"created_at"`
	Slug               string        `json:"slug"`
	ProfessionCategory *DocumentRef  `json:"profession_category"`
	ProfessionService  *DocumentRef  `json:"profession_service"`
	Cities             []DocumentRef `json:"cities"`
	Districts          []DocumentRef `json:"districts"`
	AverageRating      *float64      `json:"average_rating"`
	ReviewCount        int64         `json:"review_count"`
}

// MasterSearchResult is one page of search hits.
type MasterSearchResult struct {
	Total     int64
	Documents []MasterDocument
}
