// Package dashboards is the registry of embedded BI dashboards and the
// minting of the short-lived guest tokens the frontend embeds them with.
package dashboards

import (
	"time"

	"github.com/google/uuid"
)

type Dashboard struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	EmbedID     string     `json:"embedId"`
	LayerID     *uuid.UUID `json:"layerId,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// EmbedToken is the response handed to the frontend for one embed.
type EmbedToken struct {
	Token     string    `json:"token"`
	EmbedID   string    `json:"embedId"`
	ExpiresAt time.Time `json:"expiresAt"`
}
