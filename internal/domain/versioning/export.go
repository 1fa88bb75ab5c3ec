package versioning

import (
	"strings"
	"time"
)

// CSV column headers, fixed order.
var csvColumns = []string{"Fecha", "Operación", "Autor", "Secciones", "Register ID"}

// ExportCSV serializes groups to CSV text. Every field is wrapped in
// double quotes unconditionally and embedded quotes are NOT escaped; the
// consumers of these exports depend on the exact byte shape, so this stays
// as-is rather than switching to a conforming writer.
func ExportCSV(groups []*VersionGroup) string {
	lines := make([]string, 0, len(groups)+1)
	lines = append(lines, csvRow(csvColumns))

	for _, g := range groups {
		lines = append(lines, csvRow([]string{
			FormatChangedAt(g.ChangedAt),
			OperationLabel(g.Operation),
			g.ChangedBy,
			strings.Join(g.SectionLabels(), ", "),
			g.RegisterID,
		}))
	}
	return strings.Join(lines, "\n")
}

func csvRow(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + f + `"`
	}
	return strings.Join(quoted, ",")
}

// ExportFilename builds the download filename: the selection prefix when
// the export covers an explicit selection, the full-history prefix
// otherwise.
func ExportFilename(selected bool, now time.Time) string {
	prefix := "historial-completo"
	if selected {
		prefix = "versiones-seleccionadas"
	}
	return prefix + "-" + now.Format("2006-01-02") + ".csv"
}
