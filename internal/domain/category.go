package domain

import "time"

type Category struct {
	CategoryID  string    `json:"id" dynamodbav:"category_id"`
	Name        string    `json:"name" dynamodbav:"name"`
	Description string    `json:"description" dynamodbav:"description"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
}

type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

type Tag struct {
	TagID     string    `json:"id" dynamodbav:"tag_id"`
	Name      string    `json:"name" dynamodbav:"name"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
}

type TagInput struct {
	Name string `json:"name" validate:"required,max=50"`
}
