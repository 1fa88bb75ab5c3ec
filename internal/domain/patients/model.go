// Package patients owns the console's patient registry: the registration
// form's basic info and caregiver data, keyed by the national
// identification number the history streams are queried with.
package patients

import (
	"time"

	"github.com/google/uuid"
)

type Patient struct {
	ID                   uuid.UUID  `json:"id"`
	IdentificationType   string     `json:"identificationType"`
	IdentificationNumber int64      `json:"identificationNumber"`
	Name                 string     `json:"name"`
	BirthDate            *time.Time `json:"birthDate,omitempty"`
	Gender               string     `json:"gender"`
	Email                string     `json:"email"`
	Phone                string     `json:"phone"`
	Address              string     `json:"address"`
	Hometown             string     `json:"hometown"`
	EconomicLevel        string     `json:"economicLevel"`
	EducationLevel       string     `json:"educationLevel"`
	MaritalStatus        string     `json:"maritalStatus"`

	Caregiver *Caregiver `json:"caregiver,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Caregiver is the optional caregiver block of a registration.
type Caregiver struct {
	Name                 string `json:"name"`
	IdentificationNumber int64  `json:"identificationNumber"`
	Age                  int    `json:"age"`
	EducationLevel       string `json:"educationLevel"`
	EconomicLevel        string `json:"economicLevel"`
	ResidenceZone        string `json:"residenceZone"`
	Kinship              string `json:"kinship"`
}

// HasCaregiver reports whether the registration carries caregiver data.
func (p *Patient) HasCaregiver() bool {
	return p.Caregiver != nil && p.Caregiver.Name != ""
}
