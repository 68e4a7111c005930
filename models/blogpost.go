package models

import "time"

type Post struct {
	ID          string    `bson:"_id" json:"id"`
	Title       string    `bson:"title" json:"title"`
	Slug        string    `bson:"slug" json:"slug"`
	Author      string    `bson:"author" json:"author"`
	Content     string    `bson:"content" json:"content,omitempty"`
	CoverImage  string    `bson:"coverImage,omitempty" json:"coverImage,omitempty"`
	Category    string    `bson:"category,omitempty" json:"category,omitempty"`
	Tags        []string  `bson:"tags,omitempty" json:"tags,omitempty"`
	CreatedBy   string    `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	PublishedAt time.Time `bson:"publishedAt" json:"publishedAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// PostInput is the body accepted when creating a post. Author may be left
// empty, in which case the authenticated username is used.
type PostInput struct {
	Title      string   `json:"title" validate:"required,max=200"`
	Author     string   `json:"author" validate:"omitempty,max=100"`
	Content    string   `json:"content" validate:"required"`
	CoverImage string   `json:"coverImage" validate:"omitempty,url"`
	Category   string   `json:"category" validate:"omitempty,max=64"`
	Tags       []string `json:"tags" validate:"omitempty,dive,required,max=40"`
}

// PostUpdate carries a partial update; nil fields are left untouched.
type PostUpdate struct {
	Title      *string   `json:"title" validate:"omitempty,min=1,max=200"`
	Author     *string   `json:"author" validate:"omitempty,min=1,max=100"`
	Content    *string   `json:"content" validate:"omitempty,min=1"`
	CoverImage *string   `json:"coverImage" validate:"omitempty,url"`
	Category   *string   `json:"category" validate:"omitempty,max=64"`
	Tags       *[]string `json:"tags" validate:"omitempty,dive,required,max=40"`
}

// Empty reports whether the update would change nothing.
func (u PostUpdate) Empty() bool {
	return u.Title == nil && u.Author == nil && u.Content == nil &&
		u.CoverImage == nil && u.Category == nil && u.Tags == nil
}

// PostSummary is what list endpoints return: the post without its body.
type PostSummary struct {
	Post
	Snippet  string `json:"snippet"`
	ReadTime int    `json:"readTime"`
}

// PostView is a post prepared for display.
type PostView struct {
	Post
	Blocks   []BlockTag `json:"blocks"`
	Segments []Segment  `json:"segments"`
	HTML     string     `json:"html"`
	Snippet  string     `json:"snippet"`
	ReadTime int        `json:"readTime"`
}

type PostList struct {
	Posts []PostSummary `json:"posts"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}
