package model

import "time"

// RoomRecord is the durable, non-expiring summary of a created room.
type RoomRecord struct {
	Index      int       `gorm:"primaryKey;autoIncrement"`
	RoomID     string    `gorm:"type:TEXT;not null;uniqueIndex"`
	CreatedAt  time.Time `gorm:"type:TIMESTAMP with time zone;not null"`
	TTLSeconds int64     `gorm:"column:ttl_seconds"`
}

func (RoomRecord) TableName() string {
	return "rooms"
}

// MessageRecord keeps message metadata only; text never leaves the ephemeral store.
type MessageRecord struct {
	ID        int    `gorm:"primaryKey;autoIncrement"`
	MessageID string `gorm:"type:TEXT;not null"`
	Sender    string `gorm:"type:TEXT;not null"`
	Timestamp int64  `gorm:"not null"`
	RoomID    string `gorm:"type:TEXT;not null;index"`
}

func (MessageRecord) TableName() string {
	return "messages"
}

type AnalyticsSummary struct {
	TotalRooms    int64 `json:"totalRooms"`
	TotalMessages int64 `json:"totalMessages"`
}
