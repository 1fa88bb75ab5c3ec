// Package versioning merges the three paginated change-history streams of a
// patient record (basic info, caregiver, research variables) into logical
// version groups, and supports filtering, incremental loading, and CSV export
// over the merged result.
package versioning

import (
	"fmt"
	"time"
)

// Section identifies which of the three tracked data domains a history
// record belongs to.
type Section int

const (
	SectionBasicInfo Section = iota
	SectionCaregiver
	SectionResearchVariables
)

func (s Section) String() string {
	switch s {
	case SectionBasicInfo:
		return "basic_info"
	case SectionCaregiver:
		return "caregiver"
	case SectionResearchVariables:
		return "research_variables"
	}
	return "unknown"
}

// Label returns the user-facing (Spanish) name of the section.
func (s Section) Label() string {
	switch s {
	case SectionBasicInfo:
		return "Información Básica"
	case SectionCaregiver:
		return "Cuidador"
	case SectionResearchVariables:
		return "Variables de Investigación"
	}
	return "Desconocido"
}

// Operation tags produced by the registers backend.
const (
	OpRegisterCreated     = "REGISTER_CREATED_SUCCESSFULL"
	OpUpdateBasicInfo     = "UPDATE_PATIENT_BASIC_INFO"
	OpUpdateCaregiver     = "UPDATE_CAREGIVER"
	OpUpdateResearchLayer = "UPDATE_RESEARCH_LAYER"
)

// operationRank orders operations by significance, lower rank first.
// Tags absent from the map rank above every listed tag; the backend emits
// new tags without versioning its contract, and an unrecognized tag is the
// most informative label a group can carry.
var operationRank = map[string]int{
	OpRegisterCreated:     0,
	OpUpdateBasicInfo:     1,
	OpUpdateCaregiver:     2,
	OpUpdateResearchLayer: 3,
}

func rankOf(op string) int {
	if r, ok := operationRank[op]; ok {
		return r
	}
	return -1
}

// moreSignificant reports whether operation a strictly outranks b.
func moreSignificant(a, b string) bool {
	return rankOf(a) < rankOf(b)
}

var operationLabels = map[string]string{
	OpRegisterCreated:     "Registro Creado",
	OpUpdateBasicInfo:     "Actualización de Información Básica",
	OpUpdateCaregiver:     "Actualización de Cuidador",
	OpUpdateResearchLayer: "Actualización de Variables de Investigación",
}

// OperationLabel returns the user-facing label for an operation tag.
// Unrecognized tags render as their raw value.
func OperationLabel(op string) string {
	if l, ok := operationLabels[op]; ok {
		return l
	}
	return op
}

// HistoryItem is one change record, tagged with the section that produced
// it. ChangedAt keeps the upstream's exact string representation; grouping
// compares these strings verbatim, not parsed timestamps.
type HistoryItem struct {
	ID         string         `json:"id"`
	RegisterID string         `json:"registerId"`
	ChangedBy  string         `json:"changedBy"`
	ChangedAt  string         `json:"changedAt"`
	Operation  string         `json:"operation"`
	PatientID  int64          `json:"patientIdentificationNumber"`
	Section    Section        `json:"section"`
	Payload    map[string]any `json:"payload,omitempty"`
}

// VersionGroup aggregates all HistoryItems sharing the same
// (registerId, changedAt) pair into one logical change event.
type VersionGroup struct {
	RegisterID           string        `json:"registerId"`
	ChangedBy            string        `json:"changedBy"`
	ChangedAt            string        `json:"changedAt"`
	Operation            string        `json:"operation"`
	Items                []HistoryItem `json:"items"`
	HasBasicInfo         bool          `json:"hasBasicInfo"`
	HasCaregiverInfo     bool          `json:"hasCaregiverInfo"`
	HasResearchVariables bool          `json:"hasResearchVariables"`
}

// SectionLabels returns the labels of the sections this group touches, in
// fixed section order.
func (g *VersionGroup) SectionLabels() []string {
	var labels []string
	if g.HasBasicInfo {
		labels = append(labels, SectionBasicInfo.Label())
	}
	if g.HasCaregiverInfo {
		labels = append(labels, SectionCaregiver.Label())
	}
	if g.HasResearchVariables {
		labels = append(labels, SectionResearchVariables.Label())
	}
	return labels
}

// PatientInfo is the header summary derived from the history itself, never
// persisted.
type PatientInfo struct {
	Name                 string `json:"name"`
	IdentificationNumber int64  `json:"identificationNumber"`
	Verified             bool   `json:"verified"`
}

// FallbackPatientName synthesizes the generic display name used when no
// basic-info record carries a usable name.
func FallbackPatientName(patientID int64) string {
	return fmt.Sprintf("Paciente %d", patientID)
}

// FilterState is the visible-subset selection over aggregated groups.
// Zero-value semantics differ per field: all three section booleans off
// means nothing passes, while an empty operation set means everything
// passes.
type FilterState struct {
	BasicInfo         bool
	Caregiver         bool
	ResearchVariables bool
	Operations        map[string]bool
	SearchText        string
}

// DefaultFilter returns the initial filter: all sections enabled, no
// operation restriction, no search text.
func DefaultFilter() FilterState {
	return FilterState{BasicInfo: true, Caregiver: true, ResearchVariables: true}
}

// Stats summarizes a filtered group list for display.
type Stats struct {
	Total             int            `json:"total"`
	BasicInfo         int            `json:"basicInfo"`
	Caregiver         int            `json:"caregiver"`
	ResearchVariables int            `json:"researchVariables"`
	ByOperation       map[string]int `json:"byOperation"`
}

// changedAtLayout is the display format for timestamps, day-first as the
// console renders dates.
const changedAtLayout = "02/01/2006 15:04"

// FormatChangedAt renders an upstream timestamp for display and search.
// Malformed timestamps pass through unchanged.
func FormatChangedAt(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.Format(changedAtLayout)
}

func parseChangedAt(s string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
