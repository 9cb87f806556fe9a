// Package history keeps translated transcript pairs grouped into listening
// sessions, with star, delete and search operations and pluggable persistence.
//
// One session is current at a time and accepts new items; saved sessions are
// snapshots kept in insertion order and capped, oldest evicted first.
package history

import (
	"errors"
	"time"
)

const (
	// MaxItems is the number of items kept per session, newest first.
	MaxItems = 100
	// MaxSessions is the number of saved sessions retained.
	MaxSessions = 10
	// DefaultLanguage is the listening language of a session created without one.
	DefaultLanguage = "ja"
)

// ErrNotFound is returned when a session or item does not exist.
var ErrNotFound = errors.New("history: not found")

// Item is one source/translation pair.
type Item struct {
	ID           int       `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	SourceText   string    `json:"sourceText"`
	TargetText   string    `json:"targetText"`
	DetectedLang string    `json:"detectedLang"`
	Starred      bool      `json:"starred"`
}

// Session is a bounded run of items from one listening period.
type Session struct {
	ID        int       `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Items     []Item    `json:"historyData"`
	Language  string    `json:"language"`
}

// Match is a search hit together with the session holding it.
type Match struct {
	Item
	SessionID int `json:"sessionId"`
}

func (s Session) clone() Session {
	s.Items = append([]Item(nil), s.Items...)
	return s
}

func cloneSessions(sessions []Session) []Session {
	out := make([]Session, len(sessions))
	for i, s := range sessions {
		out[i] = s.clone()
	}
	return out
}

func findItem(items []Item, id int) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func maxItemID(items []Item) int {
	max := 0
	for _, item := range items {
		if item.ID > max {
			max = item.ID
		}
	}
	return max
}
