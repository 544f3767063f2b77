package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple-choice"
	OpenEnded      QuestionType = "open-ended"
)

func (t QuestionType) IsValid() bool {
	return t == MultipleChoice || t == OpenEnded
}

type Question struct {
	ID             string       `json:"id" gorm:"primaryKey;size:36"`
	QuestionBankID string       `json:"question_bank_id" gorm:"not null;index;size:36"`
	Text           string       `json:"text" gorm:"type:text;not null"`
	Type           QuestionType `json:"type" gorm:"not null;size:20"`

	// Options and Answer are only set for multiple-choice questions.
	// Answer holds the text of the correct option.
	Options datatypes.JSONSlice[string] `json:"options,omitempty" gorm:"type:jsonb"`
	Answer  *string                     `json:"answer,omitempty" gorm:"type:text"`

	TimeLimit *int      `json:"time_limit,omitempty"` // seconds
	Order     int       `json:"order" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

// Snapshot returns a deep copy safe to embed in a session
func (q Question) Snapshot() Question {
	cp := q
	if q.Options != nil {
		cp.Options = append(datatypes.JSONSlice[string]{}, q.Options...)
	}
	if q.Answer != nil {
		answer := *q.Answer
		cp.Answer = &answer
	}
	if q.TimeLimit != nil {
		limit := *q.TimeLimit
		cp.TimeLimit = &limit
	}
	return cp
}
