package models

import "time"

// Message is a direct message between two users. Each side can hide it
// independently before it is physically removed.
type Message struct {
	ID               int64
	SenderID         int64
	RecipientID      int64
	Content          string
	SentAt           time.Time
	SenderDeleted    bool
	RecipientDeleted bool
}
