package versioning

import (
	"fmt"
	"strings"
)

// ApplyFilters reduces groups to the visible subset and recomputes the
// display statistics over that subset. It is a pure function of its inputs.
//
// All three rules combine with AND: the group must touch an enabled
// section, carry an allowed operation, and match every search token. With
// all three section toggles off nothing passes; that is the intended
// reading of "show no sections", not a request to ignore the filter.
func ApplyFilters(groups []*VersionGroup, f FilterState) ([]*VersionGroup, Stats) {
	tokens := searchTokens(f.SearchText)

	filtered := make([]*VersionGroup, 0, len(groups))
	for _, g := range groups {
		if !sectionMatch(g, f) {
			continue
		}
		if len(f.Operations) > 0 && !f.Operations[g.Operation] {
			continue
		}
		if len(tokens) > 0 && !searchMatch(g, tokens) {
			continue
		}
		filtered = append(filtered, g)
	}

	return filtered, computeStats(filtered)
}

func sectionMatch(g *VersionGroup, f FilterState) bool {
	return (g.HasBasicInfo && f.BasicInfo) ||
		(g.HasCaregiverInfo && f.Caregiver) ||
		(g.HasResearchVariables && f.ResearchVariables)
}

func searchTokens(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// searchMatch requires every token to substring-match at least one of the
// group's searchable fields.
func searchMatch(g *VersionGroup, tokens []string) bool {
	fields := searchFields(g)
	for _, tok := range tokens {
		if !anyFieldContains(fields, tok) {
			return false
		}
	}
	return true
}

func anyFieldContains(fields []string, tok string) bool {
	for _, f := range fields {
		if strings.Contains(f, tok) {
			return true
		}
	}
	return false
}

func searchFields(g *VersionGroup) []string {
	fields := []string{
		strings.ToLower(g.ChangedBy),
		strings.ToLower(g.Operation),
		strings.ToLower(OperationLabel(g.Operation)),
		strings.ToLower(FormatChangedAt(g.ChangedAt)),
		strings.ToLower(g.RegisterID),
	}
	for _, item := range g.Items {
		var scalars []string
		collectPayloadStrings(item.Payload, &scalars)
		for _, s := range scalars {
			fields = append(fields, strings.ToLower(s))
		}
	}
	return fields
}

// collectPayloadStrings walks a payload object gathering its scalar values
// as searchable strings. Arrays flatten to one space-joined string so a
// token can match across adjacent elements the way the rendered list reads.
func collectPayloadStrings(v any, out *[]string) {
	switch t := v.(type) {
	case nil:
	case map[string]any:
		for _, vv := range t {
			collectPayloadStrings(vv, out)
		}
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, formatScalar(e))
		}
		*out = append(*out, strings.Join(parts, " "))
	default:
		*out = append(*out, formatScalar(t))
	}
}

func formatScalar(v any) string {
	return fmt.Sprintf("%v", v)
}

func computeStats(groups []*VersionGroup) Stats {
	st := Stats{
		Total:       len(groups),
		ByOperation: make(map[string]int),
	}
	for _, g := range groups {
		if g.HasBasicInfo {
			st.BasicInfo++
		}
		if g.HasCaregiverInfo {
			st.Caregiver++
		}
		if g.HasResearchVariables {
			st.ResearchVariables++
		}
		st.ByOperation[g.Operation]++
	}
	return st
}
