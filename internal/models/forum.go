package models

import "time"

// ForumPost is a community post. BirthClub is derived from the author's due date.
type ForumPost struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"userId" json:"userId,omitempty"`
	Content   string    `bson:"content" json:"content"`
	Anonymous bool      `bson:"anonymous" json:"anonymous"`
	BirthClub string    `bson:"birthClub,omitempty" json:"birthClub,omitempty"`
	Flagged   bool      `bson:"flagged" json:"flagged"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (p *ForumPost) OwnerID() string { return p.UserID }

type Comment struct {
	ID        string    `bson:"_id" json:"id"`
	PostID    string    `bson:"postId" json:"postId"`
	UserID    string    `bson:"userId" json:"userId"`
	Content   string    `bson:"content" json:"content"`
	Flagged   bool      `bson:"flagged" json:"flagged"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (c *Comment) OwnerID() string { return c.UserID }

// Author is the public projection of a post or comment author.
type Author struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
