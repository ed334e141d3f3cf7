package converter

import (
	"slices"

	"github.com/nconklindev/xl2json/internal/types"

	"github.com/xuri/excelize/v2"
)

const workbookScope = "Workbook"

// DefinedNames lists the workbook's defined names. Sheet scoped names carry
// the index of their sheet in sheets as localSheetId.
func DefinedNames(f *excelize.File, sheets []string) []types.DefinedName {
	out := []types.DefinedName{}

	for _, dn := range f.GetDefinedName() {
		entry := types.DefinedName{
			Name:     dn.Name,
			Scope:    dn.Scope,
			RefersTo: dn.RefersTo,
		}
		if entry.Scope == "" {
			entry.Scope = workbookScope
		}
		if entry.Scope != workbookScope {
			if idx := slices.Index(sheets, entry.Scope); idx >= 0 {
				entry.LocalSheetID = &idx
			}
		}
		if dn.Comment != "" {
			comment := dn.Comment
			entry.Comment = &comment
		}
		out = append(out, entry)
	}

	return out
}
