package models

import (
	"encoding/json"
	"time"
)

type Media struct {
	Type    string `json:"type" binding:"omitempty,oneof=image video link"`
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
	Order   int    `json:"order"`
}

type TimelineItem struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	Order       int        `json:"order"`
}

type Technology struct {
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

type Outcome struct {
	Type string          `json:"type" binding:"omitempty,oneof=metric testimonial"`
	Data json.RawMessage `json:"data,omitempty"`
}

// CaseStudy sub-lists stay nil when the caller never supplied them, so
// absent and present-but-empty survive a round trip through storage.
type CaseStudy struct {
	ID              string         `json:"id"`
	PortfolioID     string         `json:"portfolioId"`
	Title           string         `json:"title"`
	Slug            string         `json:"slug"`
	ProjectOverview string         `json:"projectOverview"`
	MediaGallery    []Media        `json:"mediaGallery,omitempty"`
	Timeline        []TimelineItem `json:"timeline,omitempty"`
	Technologies    []Technology   `json:"technologies,omitempty"`
	Outcomes        []Outcome      `json:"outcomes,omitempty"`
	Published       bool           `json:"published"`
	Featured        bool           `json:"featured"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

type CaseStudyRequest struct {
	Title           string         `json:"title" binding:"required,max=100"`
	ProjectOverview string         `json:"projectOverview" binding:"required,max=2000"`
	MediaGallery    []Media        `json:"mediaGallery"`
	Timeline        []TimelineItem `json:"timeline"`
	Technologies    []Technology   `json:"technologies"`
	Outcomes        []Outcome      `json:"outcomes"`
}
