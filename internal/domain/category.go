// File: internal/domain/category.go
package domain

// Category is a conversation topic; its name selects the system prompt.
type Category struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `gorm:"uniqueIndex;not null;size:50" json:"name"`
}
