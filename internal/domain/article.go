package domain

import "time"

// Article statuses.
const (
	ArticleDraft     = "DRAFT"
	ArticlePublished = "PUBLISHED"
	ArticleArchived  = "ARCHIVED"
)

// ArticleStatuses lists every article status.
var ArticleStatuses = []string{ArticleDraft, ArticlePublished, ArticleArchived}

type Article struct {
	ArticleID     string    `json:"id" dynamodbav:"article_id"`
	Title         string    `json:"title" dynamodbav:"title"`
	Content       string    `json:"content" dynamodbav:"content"`
	Description   string    `json:"description" dynamodbav:"description"`
	FeaturedImage *string   `json:"featured_image" dynamodbav:"featured_image"`
	Status        string    `json:"status" dynamodbav:"status"`
	Views         int64     `json:"views" dynamodbav:"views"`
	AuthorID      string    `json:"author_id" dynamodbav:"author_id"`
	CategoryID    *string   `json:"category_id" dynamodbav:"category_id"`
	TagIDs        []string  `json:"tag_ids" dynamodbav:"tag_ids"`
	CreatedAt     time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt     time.Time `json:"updated" dynamodbav:"updated_at"`
}

// HasTag reports whether the article carries tagID.
func (a *Article) HasTag(tagID string) bool {
	for _, t := range a.TagIDs {
		if t == tagID {
			return true
		}
	}
	return false
}

type ArticleInput struct {
	Title         string   `json:"title" validate:"required,max=255"`
	Content       string   `json:"content" validate:"required"`
	Description   string   `json:"description" validate:"max=500"`
	FeaturedImage *string  `json:"featured_image"`
	Status        string   `json:"status" validate:"omitempty,oneof=DRAFT PUBLISHED ARCHIVED"`
	CategoryID    *string  `json:"category_id"`
	TagIDs        []string `json:"tag_ids"`
}

// ArticleStatusInput moves an article to another status.
type ArticleStatusInput struct {
	Status string `json:"status" validate:"required,oneof=DRAFT PUBLISHED ARCHIVED"`
}

// ArticleFilter narrows article listings. Empty fields match everything.
type ArticleFilter struct {
	Status     string
	AuthorID   string
	CategoryID string
	TagID      string
}

// Match reports whether a satisfies every non-empty field of f.
func (f ArticleFilter) Match(a *Article) bool {
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.AuthorID != "" && a.AuthorID != f.AuthorID {
		return false
	}
	if f.CategoryID != "" && (a.CategoryID == nil || *a.CategoryID != f.CategoryID) {
		return false
	}
	if f.TagID != "" && !a.HasTag(f.TagID) {
		return false
	}
	return true
}
