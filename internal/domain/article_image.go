package domain

import "time"

// ArticleImage is an image attached to an article and stored in S3.
type ArticleImage struct {
	ImageID    string    `json:"id" dynamodbav:"image_id"`
	ArticleID  string    `json:"article_id" dynamodbav:"article_id"`
	Object     string    `json:"object" dynamodbav:"object"`
	Size       int64     `json:"size" dynamodbav:"size"`
	Type       string    `json:"type" dynamodbav:"type"`
	Name       string    `json:"name" dynamodbav:"name"`
	Hash       string    `json:"hash" dynamodbav:"hash"`
	Caption    string    `json:"caption" dynamodbav:"caption"`
	UploadedBy string    `json:"uploaded_by" dynamodbav:"uploaded_by"`
	URL        string    `json:"url,omitempty" dynamodbav:"-"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
}
