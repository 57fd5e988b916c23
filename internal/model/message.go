package model

import "time"

type MessageType string

const (
	MessageTypeText        MessageType = "text"
	MessageTypeFile        MessageType = "file"
	MessageTypeAudio       MessageType = "audio"
	MessageTypeFileAndText MessageType = "file_and_text"
)

type MessageStatus string

const (
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusSeen      MessageStatus = "seen"
)

type AutoReplyType string

const (
	AutoReplyNone     AutoReplyType = "none"
	AutoReplyStandard AutoReplyType = "standard"
	AutoReplyVacation AutoReplyType = "vacation"
)

// Message is one entry in a conversation's append-only log. Ordering is by
// (created_at, id), both assigned server-side. The composite index on
// (conversation_id, sender_uid, status) backs the unread-count queries.
type Message struct {
	ID             uint64        `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID uint64        `gorm:"column:conversation_id;index;index:idx_conv_sender_status" json:"conversationId"`
	SenderUID      string        `gorm:"column:sender_uid;size:128;index:idx_conv_sender_status" json:"senderUid"`
	Body           string        `gorm:"type:text" json:"body"`
	MessageType    MessageType   `gorm:"column:message_type;size:16;not null;default:text" json:"messageType"`
	FileKey        *string       `gorm:"column:file_key;size:256" json:"fileKey,omitempty"`
	AudioKey       *string       `gorm:"column:audio_key;size:256" json:"audioKey,omitempty"`
	Status         MessageStatus `gorm:"column:status;size:16;not null;default:sent;index:idx_conv_sender_status" json:"status"`
	IsRead         bool          `gorm:"column:is_read;not null;default:false" json:"isRead"`
	IsAutoReply    bool          `gorm:"column:is_auto_reply;not null;default:false" json:"isAutoReply"`
	AutoReplyType  AutoReplyType `gorm:"column:auto_reply_type;size:16;not null;default:none" json:"autoReplyType"`
	CreatedAt      time.Time     `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (Message) TableName() string {
	return "messages"
}

// ComputeMessageType derives the wire type from which parts are present.
func ComputeMessageType(body string, fileKey, audioKey *string) MessageType {
	hasFile := fileKey != nil && *fileKey != ""
	hasAudio := audioKey != nil && *audioKey != ""
	switch {
	case hasAudio:
		return MessageTypeAudio
	case hasFile && body != "":
		return MessageTypeFileAndText
	case hasFile:
		return MessageTypeFile
	default:
		return MessageTypeText
	}
}

// FallbackText is shown in conversation lists when a message carries no text.
func (m *Message) FallbackText() string {
	if m.Body != "" {
		return m.Body
	}
	switch m.MessageType {
	case MessageTypeAudio:
		return "🎤 Audio message"
	case MessageTypeFile:
		return "📎 Attachment"
	}
	return m.Body
}
