package versioning

import (
	"sort"
	"strings"
)

// versionKey is the grouping key for one logical change event. The two
// fields are compared structurally; changedAt stays the upstream's exact
// string so two representations of the same instant land in different
// groups, matching the backend's own versioning semantics.
type versionKey struct {
	registerID string
	changedAt  string
}

// Aggregate merges history items into version groups. It always rebuilds
// the full group list from its input, so calling it twice over the same
// accumulators yields identical output.
func Aggregate(items []HistoryItem) []*VersionGroup {
	byKey := make(map[versionKey]*VersionGroup)
	var order []*VersionGroup

	for _, item := range items {
		key := versionKey{registerID: item.RegisterID, changedAt: item.ChangedAt}
		g, ok := byKey[key]
		if !ok {
			g = &VersionGroup{
				RegisterID: item.RegisterID,
				ChangedBy:  item.ChangedBy,
				ChangedAt:  item.ChangedAt,
				Operation:  item.Operation,
			}
			byKey[key] = g
			order = append(order, g)
		}

		g.Items = append(g.Items, item)
		switch item.Section {
		case SectionBasicInfo:
			g.HasBasicInfo = true
		case SectionCaregiver:
			g.HasCaregiverInfo = true
		case SectionResearchVariables:
			g.HasResearchVariables = true
		}
		if moreSignificant(item.Operation, g.Operation) {
			g.Operation = item.Operation
		}
	}

	// Most recent first. Groups with unparseable timestamps sink to the
	// end; stable sort keeps insertion order deterministic among ties.
	sort.SliceStable(order, func(i, j int) bool {
		ti, iok := parseChangedAt(order[i].ChangedAt)
		tj, jok := parseChangedAt(order[j].ChangedAt)
		if iok != jok {
			return iok
		}
		if !iok {
			return false
		}
		return ti.After(tj)
	})

	return order
}

// ExtractPatientInfo derives the header summary from the combined item
// list: the name on the most recent basic-info record wins. When no record
// carries a usable name the generic fallback is used, and only then does an
// externally supplied display name override it.
func ExtractPatientInfo(items []HistoryItem, patientID int64, externalName string) PatientInfo {
	var candidates []HistoryItem
	for _, item := range items {
		if item.Section != SectionBasicInfo {
			continue
		}
		if name := payloadName(item.Payload); name != "" {
			candidates = append(candidates, item)
		}
	}

	if len(candidates) > 0 {
		sort.SliceStable(candidates, func(i, j int) bool {
			ti, iok := parseChangedAt(candidates[i].ChangedAt)
			tj, jok := parseChangedAt(candidates[j].ChangedAt)
			if iok != jok {
				return iok
			}
			if !iok {
				return false
			}
			return ti.After(tj)
		})
		return PatientInfo{
			Name:                 payloadName(candidates[0].Payload),
			IdentificationNumber: patientID,
			Verified:             true,
		}
	}

	name := FallbackPatientName(patientID)
	if externalName != "" {
		name = externalName
	}
	return PatientInfo{Name: name, IdentificationNumber: patientID}
}

func payloadName(payload map[string]any) string {
	if payload == nil {
		return ""
	}
	name, _ := payload["name"].(string)
	return strings.TrimSpace(name)
}
