// File: internal/domain/model.go
package domain

// ModelKind tells which provider serves a model.
type ModelKind string

const (
	ModelKindLocal ModelKind = "local"
	ModelKindCloud ModelKind = "cloud"
)

// ModelDescriptor is a known model and its last observed availability.
type ModelDescriptor struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"not null;size:100;index" json:"name"`
	IsAvailable bool      `gorm:"column:is_avail;not null" json:"is_avail"`
	Kind        ModelKind `gorm:"column:model_type;size:20;default:local" json:"model_type"`
}

func (ModelDescriptor) TableName() string {
	return "model_list"
}

// Models returns every table the service migrates, in dependency order.
func Models() []interface{} {
	return []interface{}{&User{}, &Category{}, &ModelDescriptor{}, &Conversation{}, &Message{}}
}
