package models

// ChatConversation groups a user's chat assistant messages. Each user has at
// most one conversation; it is created lazily on first contact.
type ChatConversation struct {
	BaseModel
	UserID string `gorm:"size:36;uniqueIndex" json:"userId"`

	// Relations
	User     User          `gorm:"foreignKey:UserID" json:"-"`
	Messages []ChatMessage `gorm:"foreignKey:ConversationID" json:"-"`
}

// ChatMessage is a single message in a conversation, from either the user or
// the assistant.
type ChatMessage struct {
	BaseModel
	ConversationID string `gorm:"size:36;index" json:"conversationId"`
	Content        string `gorm:"type:text" json:"content"`
	IsFromUser     bool   `gorm:"default:true" json:"isFromUser"`

	// Relations
	Conversation ChatConversation `gorm:"foreignKey:ConversationID" json:"-"`
}
