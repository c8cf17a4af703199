package domain

import "time"

// Message is one immutable entry in a thread's conversation log. The
// auto-increment ID gives messages a total order independent of wall-clock
// precision; reads sort by it.
type Message struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ThreadID  string    `gorm:"column:thread_id;size:36;not null;index" json:"thread_id"`
	SenderID  string    `gorm:"column:sender_id;size:36;not null" json:"sender_id"`
	Body      string    `gorm:"column:body;type:text;not null" json:"body"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	// Relations
	Thread *Thread `gorm:"foreignKey:ThreadID;constraint:OnDelete:CASCADE" json:"-"`
	Sender *User   `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}

func (Message) TableName() string {
	return "messages"
}

// PostMessageRequest is the body of POST /threads/:id/messages
type PostMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

// MessageResponse is the message shape in API responses and on the live
// channel: {id, thread_id, sender_id, body, created_at, sender:{...}}
type MessageResponse struct {
	ID        uint64        `json:"id"`
	ThreadID  string        `json:"thread_id"`
	SenderID  string        `json:"sender_id"`
	Body      string        `json:"body"`
	CreatedAt time.Time     `json:"created_at"`
	Sender    *UserResponse `json:"sender,omitempty"`
}

// ToResponse converts Message to MessageResponse
func (m *Message) ToResponse() *MessageResponse {
	resp := &MessageResponse{
		ID:        m.ID,
		ThreadID:  m.ThreadID,
		SenderID:  m.SenderID,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
	if m.Sender != nil {
		resp.Sender = m.Sender.ToResponse()
	}
	return resp
}
