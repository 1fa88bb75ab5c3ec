// Package layers manages research layers: the named studies whose
// variable groups patients are tracked under.
package layers

import (
	"time"

	"github.com/google/uuid"
)

type Layer struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	BossName    string    `json:"bossName"`
	BossEmail   string    `json:"bossEmail"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
