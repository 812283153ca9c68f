package models

import "time"

type Clinic struct {
	ID        string    `bson:"_id" json:"id" yaml:"-"`
	Name      string    `bson:"name" json:"name" yaml:"name"`
	Address   string    `bson:"address,omitempty" json:"address,omitempty" yaml:"address"`
	City      string    `bson:"city,omitempty" json:"city,omitempty" yaml:"city"`
	Phone     string    `bson:"phone,omitempty" json:"phone,omitempty" yaml:"phone"`
	Type      string    `bson:"type,omitempty" json:"type,omitempty" yaml:"type"`
	Services  []string  `bson:"services" json:"services" yaml:"services"`
	Latitude  *float64  `bson:"latitude,omitempty" json:"latitude,omitempty" yaml:"latitude"`
	Longitude *float64  `bson:"longitude,omitempty" json:"longitude,omitempty" yaml:"longitude"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt" yaml:"-"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt" yaml:"-"`
}

type PregnancyMilestone struct {
	ID          string   `bson:"_id" json:"id" yaml:"-"`
	Week        int      `bson:"week" json:"week" yaml:"week"`
	Title       string   `bson:"title" json:"title" yaml:"title"`
	Description string   `bson:"description" json:"description" yaml:"description"`
	Tips        []string `bson:"tips" json:"tips" yaml:"tips"`
}

type GuidanceEntry struct {
	ID      string   `bson:"_id" json:"id" yaml:"-"`
	Week    int      `bson:"week" json:"week" yaml:"week"`
	Topic   string   `bson:"topic" json:"topic" yaml:"topic"`
	Content string   `bson:"content" json:"content" yaml:"content"`
	Tags    []string `bson:"tags" json:"tags" yaml:"tags"`
	Media   []string `bson:"media" json:"media" yaml:"media"`
}
