package dtos

import (
	"time"

	"github.com/iyunix/chat-gateway/internal/domain"
	"github.com/iyunix/chat-gateway/internal/services/prompt"
)

type HistoryMessageDTO struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequestDTO is the JSON body of POST /chat.
type ChatRequestDTO struct {
	UserInput       string              `json:"user_input"`
	RememberHistory bool                `json:"remember_history"`
	History         []HistoryMessageDTO `json:"history"`
	ModelID         *uint               `json:"model_id"`
	ConversationID  *uint               `json:"conversation_id"`
	CategoryID      *uint               `json:"category_id"`
}

// GuestChatRequestDTO is the JSON body of POST /guest/chat. Model is a name.
type GuestChatRequestDTO struct {
	UserInput string              `json:"user_input"`
	History   []HistoryMessageDTO `json:"history"`
	Model     string              `json:"model"`
	Category  *uint               `json:"category"`
}

type ConversationTitleDTO struct {
	Title string `json:"title"`
}

// ToTurns converts request history into prompt turns.
func ToTurns(history []HistoryMessageDTO) []prompt.Turn {
	turns := make([]prompt.Turn, 0, len(history))
	for _, h := range history {
		turns = append(turns, prompt.Turn{Role: h.Role, Content: h.Content})
	}
	return turns
}

type ModelDTO struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	IsAvail   bool   `json:"is_avail"`
	ModelType string `json:"model_type"`
}

type ModelListDTO struct {
	Models []ModelDTO `json:"models"`
}

func ToModelList(models []domain.ModelDescriptor) ModelListDTO {
	out := ModelListDTO{Models: make([]ModelDTO, 0, len(models))}
	for _, m := range models {
		out.Models = append(out.Models, ModelDTO{
			ID:        m.ID,
			Name:      m.Name,
			IsAvail:   m.IsAvailable,
			ModelType: string(m.Kind),
		})
	}
	return out
}

type ConversationMessageDTO struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type ConversationDTO struct {
	ID        uint                     `json:"id"`
	Title     string                   `json:"title"`
	Messages  []ConversationMessageDTO `json:"messages"`
	Model     *string                  `json:"model"`
	Category  *string                  `json:"category"`
	CreatedAt time.Time                `json:"created_at"`
	UpdatedAt time.Time                `json:"updated_at"`
}

type ConversationListDTO struct {
	Conversations []ConversationDTO `json:"conversations"`
}

// ToConversationList expects Model, Category and Messages to be preloaded.
func ToConversationList(convs []domain.Conversation) ConversationListDTO {
	out := ConversationListDTO{Conversations: make([]ConversationDTO, 0, len(convs))}
	for _, c := range convs {
		dto := ConversationDTO{
			ID:        c.ID,
			Title:     c.Title,
			Messages:  make([]ConversationMessageDTO, 0, len(c.Messages)),
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		}
		if c.Model != nil {
			name := c.Model.Name
			dto.Model = &name
		}
		if c.Category != nil {
			name := c.Category.Name
			dto.Category = &name
		}
		for _, m := range c.Messages {
			dto.Messages = append(dto.Messages, ConversationMessageDTO{Role: m.Role, Content: m.Content, CreatedAt: m.CreatedAt})
		}
		out.Conversations = append(out.Conversations, dto)
	}
	return out
}
