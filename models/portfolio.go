package models

import "time"

// SocialLinks is stored as a single JSONB column on the portfolio row.
type SocialLinks struct {
	Website  string `json:"website,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
	Dribbble string `json:"dribbble,omitempty"`
	Behance  string `json:"behance,omitempty"`
}

type Portfolio struct {
	ID             string       `json:"id"`
	UserID         int          `json:"userId"`
	DisplayName    string       `json:"displayName"`
	Bio            string       `json:"bio"`
	ProfilePicture string       `json:"profilePicture,omitempty"`
	CoverImage     string       `json:"coverImage,omitempty"`
	SocialLinks    *SocialLinks `json:"socialLinks,omitempty"`
	Theme          string       `json:"theme"`
	CustomCSS      string       `json:"customCSS,omitempty"`
	Published      bool         `json:"published"`
	CreatedAt      time.Time    `json:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

type PortfolioRequest struct {
	DisplayName    string       `json:"displayName" binding:"omitempty,max=50"`
	Bio            string       `json:"bio" binding:"omitempty,max=500"`
	ProfilePicture string       `json:"profilePicture"`
	CoverImage     string       `json:"coverImage"`
	SocialLinks    *SocialLinks `json:"socialLinks"`
	Theme          string       `json:"theme" binding:"omitempty,oneof=light dark minimal"`
	CustomCSS      string       `json:"customCSS"`
}

type ThemeRequest struct {
	Theme string `json:"theme" binding:"required,oneof=light dark minimal"`
}
