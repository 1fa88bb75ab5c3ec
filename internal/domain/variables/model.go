// Package variables manages the research-variable definitions captured per
// layer: name, value type, and the selection options for option-typed
// variables.
package variables

import (
	"time"

	"github.com/google/uuid"
)

// Value types a variable can declare.
const (
	TypeText    = "text"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeDate    = "date"
	TypeOption  = "option"
)

type Variable struct {
	ID          uuid.UUID `json:"id"`
	LayerID     uuid.UUID `json:"layerId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Options     []string  `json:"options,omitempty"`
	Required    bool      `json:"required"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
