package entities

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
	MessageVoice MessageType = "voice"
)

// ChatSession is a row of chat_sessions.
type ChatSession struct {
	ID        string    `json:"id,omitempty"`
	Title     string    `json:"title"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChatMessage is a row of chat_messages.
type ChatMessage struct {
	ID          string      `json:"id,omitempty"`
	SessionID   string      `json:"session_id"`
	Role        Role        `json:"role"`
	Content     string      `json:"content"`
	MessageType MessageType `json:"message_type"`
	FileURL     string      `json:"file_url,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}
