package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TestStatus string

const (
	TestNotStarted TestStatus = "Not Started"
	TestCompleted  TestStatus = "Completed"
)

type TestTaker struct {
	ID   string `json:"id" gorm:"primaryKey;size:36"`
	Name string `json:"name" gorm:"not null;size:100"`
	// Contact is an email address or a mobile number
	Contact string `json:"contact" gorm:"not null;size:255"`

	TestSessionID *string    `json:"test_session_id" gorm:"size:36;index"`
	TestStatus    TestStatus `json:"test_status" gorm:"not null;size:20;default:Not Started"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *TestTaker) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.TestStatus == "" {
		t.TestStatus = TestNotStarted
	}
	return nil
}
