package models

import "time"

type ReminderType string

const (
	ReminderMedication  ReminderType = "medication"
	ReminderAppointment ReminderType = "appointment"
	ReminderCustom      ReminderType = "custom"
)

// Valid reports whether t is one of the known reminder types.
func (t ReminderType) Valid() bool {
	switch t {
	case ReminderMedication, ReminderAppointment, ReminderCustom:
		return true
	}
	return false
}

type Reminder struct {
	ID           string       `bson:"_id" json:"id"`
	UserID       string       `bson:"userId" json:"userId"`
	Title        string       `bson:"title" json:"title"`
	Description  string       `bson:"description,omitempty" json:"description,omitempty"`
	DateTime     time.Time    `bson:"dateTime" json:"dateTime"`
	ReminderType ReminderType `bson:"reminderType" json:"reminderType"`
	CreatedAt    time.Time    `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time    `bson:"updatedAt" json:"updatedAt"`
}

func (r *Reminder) OwnerID() string { return r.UserID }
