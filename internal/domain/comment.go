package domain

import "time"

// Moderation states of comments and replies. Hidden items are left out of
// public reads.
const (
	DiscussionHidden = 0
	DiscussionActive = 1
)

type Comment struct {
	CommentID string    `json:"id" dynamodbav:"comment_id"`
	ArticleID string    `json:"article_id" dynamodbav:"article_id"`
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	Body      string    `json:"comment" dynamodbav:"body"`
	Likes     int64     `json:"likes" dynamodbav:"likes"`
	Status    int       `json:"status" dynamodbav:"status"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
	Replies   []Reply   `json:"replies,omitempty" dynamodbav:"-"`
}

type Reply struct {
	ReplyID       string    `json:"id" dynamodbav:"reply_id"`
	CommentID     string    `json:"comment_id" dynamodbav:"comment_id"`
	ParentReplyID *string   `json:"parent_reply_id" dynamodbav:"parent_reply_id"`
	UserID        string    `json:"user_id" dynamodbav:"user_id"`
	Content       string    `json:"content" dynamodbav:"content"`
	Likes         int64     `json:"likes" dynamodbav:"likes"`
	Status        int       `json:"status" dynamodbav:"status"`
	CreatedAt     time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt     time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CommentInput struct {
	Comment string `json:"comment" validate:"required,max=5000"`
}

type ReplyInput struct {
	Content       string  `json:"content" validate:"required,max=5000"`
	ParentReplyID *string `json:"parent_reply_id"`
}

// ModerationInput sets the moderation state of a comment or reply.
type ModerationInput struct {
	Status *int `json:"status" validate:"required,oneof=0 1"`
}
