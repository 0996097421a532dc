package models

import "time"

// ChatSenderRole identifies which side of a store conversation sent a message
type ChatSenderRole string

const (
	ChatSenderStore ChatSenderRole = "store"
	ChatSenderAdmin ChatSenderRole = "admin"
)

// ChatMessage is one message in the conversation between a store owner and
// the admin team. Transport is plain request/response polling.
type ChatMessage struct {
	ID           string         `json:"id" db:"id"`
	StoreID      string         `json:"storeId" db:"store_id"`
	SenderUserID string         `json:"senderUserId" db:"sender_user_id"`
	SenderRole   ChatSenderRole `json:"senderRole" db:"sender_role"`
	Body         string         `json:"body" db:"body"`
	ReadAt       *time.Time     `json:"readAt,omitempty" db:"read_at"`
	CreatedAt    time.Time      `json:"createdAt" db:"created_at"`
}

// ChatMessageCreation represents data for sending a chat message
type ChatMessageCreation struct {
	Body string `json:"body" validate:"required,max=2000"`
}
