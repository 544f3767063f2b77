package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	eventSource  = "test-session-service"
	eventVersion = "1.0"
)

type EventType string

const (
	SessionCreated   EventType = "session.created"
	SessionCompleted EventType = "session.completed"
)

// Event is the envelope published for every lifecycle change
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func NewEvent(eventType EventType, data interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    eventSource,
		Version:   eventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

type SessionCreatedEvent struct {
	SessionID      string `json:"session_id"`
	TestTakerID    string `json:"test_taker_id"`
	QuestionBankID string `json:"question_bank_id"`
	QuestionCount  int    `json:"question_count"`
	TestLink       string `json:"test_link"`
}

type SessionCompletedEvent struct {
	SessionID      string    `json:"session_id"`
	TestTakerID    string    `json:"test_taker_id"`
	Score          int       `json:"score"`
	Passed         bool      `json:"passed"`
	TotalQuestions int       `json:"total_questions"`
	CompletedAt    time.Time `json:"completed_at"`
}
