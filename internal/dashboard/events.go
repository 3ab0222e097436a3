package dashboard

import (
	"fmt"
	"time"
)

type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Event is a single status log entry.
type Event struct {
	ID    string    `json:"id"`
	At    time.Time `json:"at"`
	Level Level     `json:"level"`
	Text  string    `json:"text"`
}

func (e Event) String() string {
	return fmt.Sprintf("[%s] %s", e.At.Format(time.TimeOnly), e.Text)
}

type MessageKind string

const (
	MessageSuccess MessageKind = "success"
	MessageError   MessageKind = "error"
)

// Message is the most recent apply outcome shown above the job list.
type Message struct {
	Kind  MessageKind `json:"kind"`
	Text  string      `json:"text"`
	JobID int64       `json:"job_id"`
	At    time.Time   `json:"at"`
}

// eventLog keeps entries in insertion order; readers get them newest first.
// Entries are never dropped.
type eventLog struct {
	entries []Event
}

func (l *eventLog) add(e Event) {
	l.entries = append(l.entries, e)
}

func (l *eventLog) newestFirst() []Event {
	out := make([]Event, len(l.entries))
	for i, e := range l.entries {
		out[len(l.entries)-1-i] = e
	}
	return out
}
