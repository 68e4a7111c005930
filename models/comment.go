package models

import "time"

type Comment struct {
	ID        string    `json:"id" bson:"_id"`
	PostID    string    `json:"postId" bson:"post_id"`
	ParentID  string    `json:"parentId,omitempty" bson:"parent_id,omitempty"`
	Author    string    `json:"author" bson:"author"`
	CreatedBy string    `json:"createdBy" bson:"created_by"`
	Content   string    `json:"content" bson:"content"`
	Likes     int       `json:"likes" bson:"likes"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

type CommentInput struct {
	Content  string `json:"content" validate:"required,max=5000"`
	ParentID string `json:"parentId" validate:"omitempty,uuid"`
}

// CommentThread is a top-level comment with its replies, oldest first.
type CommentThread struct {
	Comment
	Replies []Comment `json:"replies"`
}

type CommentPage struct {
	Comments []CommentThread `json:"comments"`
	Total    int             `json:"total"`
	Page     int             `json:"page"`
	Limit    int             `json:"limit"`
}
