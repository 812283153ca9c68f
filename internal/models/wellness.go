package models

import "time"

type WellnessLog struct {
	ID              string    `bson:"_id" json:"id"`
	UserID          string    `bson:"userId" json:"userId"`
	Date            time.Time `bson:"date" json:"date"`
	Mood            string    `bson:"mood,omitempty" json:"mood,omitempty"`
	Symptoms        []string  `bson:"symptoms" json:"symptoms"`
	SleepHours      *float64  `bson:"sleepHours,omitempty" json:"sleepHours,omitempty"`
	HydrationLiters *float64  `bson:"hydrationLiters,omitempty" json:"hydrationLiters,omitempty"`
	NutritionNotes  string    `bson:"nutritionNotes,omitempty" json:"nutritionNotes,omitempty"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updatedAt" json:"updatedAt"`
}

func (l *WellnessLog) OwnerID() string { return l.UserID }
