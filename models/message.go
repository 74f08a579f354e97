package models

import (
	"sort"
	"time"
)

// Sender roles.
const (
	RoleLawyer = "lawyer"
	RoleClient = "client"
	RoleAdmin  = "admin"
)

// Message payload types.
const (
	MessageText = "text"
	MessageFile = "file"
)

// Message is one chat message in a booking. ID is generated by the sender and
// stays the same across every transport the message travels on.
type Message struct {
	ID         string       `bson:"id" json:"id"`
	BookingID  string       `bson:"booking_id" json:"bookingId"`
	SenderID   string       `bson:"sender_id" json:"senderId"`
	SenderName string       `bson:"sender_name" json:"sender"`
	SenderRole string       `bson:"sender_role" json:"senderRole"`
	Type       string       `bson:"type" json:"type"`
	Content    string       `bson:"content" json:"content"`
	Files      []FileAttach `bson:"files,omitempty" json:"files,omitempty"`
	Timestamp  time.Time    `bson:"timestamp" json:"timestamp"`
}

// FileAttach describes a file sent in chat.
type FileAttach struct {
	FileURL  string `bson:"file_url" json:"fileUrl"`
	FileType string `bson:"file_type" json:"fileType"`
	FileName string `bson:"file_name" json:"fileName"`
}

// DayGroup is the messages of one calendar day.
type DayGroup struct {
	Day      string    `json:"day"`
	Messages []Message `json:"messages"`
}

// SortMessages orders messages by timestamp, keeping arrival order for ties.
func SortMessages(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
}

// GroupByDay splits messages into calendar days in loc, oldest first.
func GroupByDay(msgs []Message, loc *time.Location) []DayGroup {
	if loc == nil {
		loc = time.Local
	}
	sorted := append([]Message(nil), msgs...)
	SortMessages(sorted)

	var groups []DayGroup
	for _, m := range sorted {
		day := m.Timestamp.In(loc).Format("2006-01-02")
		if n := len(groups); n > 0 && groups[n-1].Day == day {
			groups[n-1].Messages = append(groups[n-1].Messages, m)
			continue
		}
		groups = append(groups, DayGroup{Day: day, Messages: []Message{m}})
	}
	return groups
}
