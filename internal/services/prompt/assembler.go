// Package prompt turns a category, prior turns and a new user message into
// the two input shapes the providers accept.
package prompt

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/iyunix/chat-gateway/internal/domain"
)

const DefaultSlug = "general"

// Slugs lists every category that has its own system prompt.
var Slugs = []string{
	"general",
	"goal-setting",
	"problem-solving",
	"text-summarization",
	"emotional-support",
	"social-learning",
}

//go:embed templates/*.txt
var embedded embed.FS

// Turn is one prior exchange entry. Any role other than "user" is treated
// as the assistant.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Input carries the same conversation in both provider shapes.
type Input struct {
	// Transcript is the flattened Human/Assistant text used by local models.
	Transcript string
	// Messages is the role-tagged list used by chat-completion APIs.
	Messages []Turn
}

// Assembler holds the category templates. It is read-only after
// construction and safe for concurrent use.
type Assembler struct {
	templates map[string]string
}

// NewAssembler loads the embedded templates and, when dir is set, replaces
// each one that has a <slug>.txt override there. An override that exists but
// cannot be read is an error; a missing one keeps the embedded text.
func NewAssembler(dir string) (*Assembler, error) {
	templates := make(map[string]string, len(Slugs))
	for _, slug := range Slugs {
		templates[slug] = readTemplate(embedded, "templates/"+slug+".txt")
	}

	if dir != "" {
		for _, slug := range Slugs {
			data, err := os.ReadFile(filepath.Join(dir, slug+".txt"))
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("read prompt %s: %w", slug, err)
			}
			templates[slug] = strings.TrimSpace(string(data))
		}
	}
	return &Assembler{templates: templates}, nil
}

// NewAssemblerFromMap builds an assembler from explicit templates. Slugs not
// present get an empty template.
func NewAssemblerFromMap(m map[string]string) *Assembler {
	templates := make(map[string]string, len(Slugs))
	for _, slug := range Slugs {
		templates[slug] = strings.TrimSpace(m[slug])
	}
	return &Assembler{templates: templates}
}

// Slug maps a category name to its template key: lower-cased with spaces
// replaced by dashes.
func Slug(categoryName string) string {
	return strings.ReplaceAll(strings.ToLower(categoryName), " ", "-")
}

// Template returns the system prompt for a category name, falling back to the
// general template for empty or unknown categories.
func (a *Assembler) Template(categoryName string) string {
	if categoryName != "" {
		if t, ok := a.templates[Slug(categoryName)]; ok {
			return t
		}
	}
	return a.templates[DefaultSlug]
}

// Build produces both provider inputs from the same turns.
func (a *Assembler) Build(categoryName string, history []Turn, newMessage string) Input {
	template := a.Template(categoryName)

	var sb strings.Builder
	sb.WriteString(template)
	sb.WriteString("\n\n")

	messages := make([]Turn, 0, len(history)+2)
	messages = append(messages, Turn{Role: "system", Content: template})

	for _, turn := range history {
		if turn.Role == domain.RoleUser {
			sb.WriteString("Human: ")
			messages = append(messages, Turn{Role: domain.RoleUser, Content: turn.Content})
		} else {
			sb.WriteString("Assistant: ")
			messages = append(messages, Turn{Role: domain.RoleAssistant, Content: turn.Content})
		}
		sb.WriteString(turn.Content)
		sb.WriteString("\n")
	}

	sb.WriteString("Human: ")
	sb.WriteString(newMessage)
	sb.WriteString("\nAssistant:")
	messages = append(messages, Turn{Role: domain.RoleUser, Content: newMessage})

	return Input{Transcript: sb.String(), Messages: messages}
}

// TurnsFromMessages converts stored messages to history turns.
func TurnsFromMessages(msgs []domain.Message) []Turn {
	turns := make([]Turn, 0, len(msgs))
	for _, m := range msgs {
		turns = append(turns, Turn{Role: m.Role, Content: m.Content})
	}
	return turns
}

func readTemplate(fsys fs.FS, name string) string {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
