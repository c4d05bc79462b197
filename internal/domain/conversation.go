// File: internal/domain/conversation.go
package domain

import "time"

const DefaultConversationTitle = "New Conversation"

// Conversation is a chat thread owned by one user. Model and category are
// optional and are cleared when their referent is deleted.
type Conversation struct {
	ID         uint             `gorm:"primarykey" json:"id"`
	UserID     uint             `gorm:"not null;index" json:"user_id"`
	ModelID    *uint            `gorm:"index" json:"model_id"`
	Model      *ModelDescriptor `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
	CategoryID *uint            `gorm:"index" json:"category_id"`
	Category   *Category        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
	Title      string           `gorm:"default:'New Conversation'" json:"title"`
	Messages   []Message        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// CategoryName returns the bound category's name, or "" when none is bound.
func (c *Conversation) CategoryName() string {
	if c == nil || c.Category == nil {
		return ""
	}
	return c.Category.Name
}
