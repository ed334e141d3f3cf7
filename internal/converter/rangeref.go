package converter

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// DefaultRange is the range exported when none is configured.
const DefaultRange = "A1:DN500"

// UsedRange selects each sheet's used area instead of a fixed range.
const UsedRange = "used"

// Range is an inclusive, 1-based rectangle of cells.
type Range struct {
	MinCol, MinRow int
	MaxCol, MaxRow int
}

// IsUsedRange reports whether s asks for per-sheet used areas.
func IsUsedRange(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, UsedRange)
}

// ParseRange parses an A1 range such as "A1:DN500". Column letters are
// case-insensitive and "$" anchors are ignored.
func ParseRange(a1 string) (Range, error) {
	a1 = strings.TrimSpace(a1)
	parts := strings.Split(a1, ":")
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return Range{}, fmt.Errorf("%w: range must look like \"A1:DN500\", got %q", ErrInvalidRange, a1)
	}

	minCol, minRow, err := parseCellRef(parts[0])
	if err != nil {
		return Range{}, err
	}
	maxCol, maxRow, err := parseCellRef(parts[1])
	if err != nil {
		return Range{}, err
	}

	if minRow > maxRow || minCol > maxCol {
		return Range{}, fmt.Errorf("%w: range is inverted: %s", ErrInvalidRange, a1)
	}

	return Range{MinCol: minCol, MinRow: minRow, MaxCol: maxCol, MaxRow: maxRow}, nil
}

func parseCellRef(ref string) (int, int, error) {
	cleaned := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(ref), "$", ""))
	col, row, err := excelize.CellNameToCoordinates(cleaned)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: bad cell reference %q: %v", ErrInvalidRange, ref, err)
	}
	return col, row, nil
}

// String renders the range in A1 notation.
func (r Range) String() string {
	start, _ := excelize.CoordinatesToCellName(r.MinCol, r.MinRow)
	end, _ := excelize.CoordinatesToCellName(r.MaxCol, r.MaxRow)
	return start + ":" + end
}

// Contains reports whether the cell at col,row lies inside r.
func (r Range) Contains(col, row int) bool {
	return col >= r.MinCol && col <= r.MaxCol && row >= r.MinRow && row <= r.MaxRow
}

// Cols returns the number of columns spanned.
func (r Range) Cols() int {
	return r.MaxCol - r.MinCol + 1
}

// CellCount returns the number of cells in the range.
func (r Range) CellCount() int {
	return r.Cols() * (r.MaxRow - r.MinRow + 1)
}

// Intersect returns the overlap of r and o. ok is false when they are disjoint.
func (r Range) Intersect(o Range) (Range, bool) {
	out := Range{
		MinCol: max(r.MinCol, o.MinCol),
		MinRow: max(r.MinRow, o.MinRow),
		MaxCol: min(r.MaxCol, o.MaxCol),
		MaxRow: min(r.MaxRow, o.MaxRow),
	}
	if out.MinCol > out.MaxCol || out.MinRow > out.MaxRow {
		return Range{}, false
	}
	return out, true
}

// Union returns the smallest range covering both r and o.
func (r Range) Union(o Range) Range {
	return Range{
		MinCol: min(r.MinCol, o.MinCol),
		MinRow: min(r.MinRow, o.MinRow),
		MaxCol: max(r.MaxCol, o.MaxCol),
		MaxRow: max(r.MaxRow, o.MaxRow),
	}
}

// cellHasContent reports whether the cell holds a value or a formula.
func cellHasContent(f *excelize.File, sheet string, col, row int) (bool, error) {
	addr, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return false, err
	}
	formula, err := f.GetCellFormula(sheet, addr)
	if err != nil {
		return false, err
	}
	if formula != "" {
		return true, nil
	}
	raw, err := f.GetCellValue(sheet, addr, excelize.Options{RawCellValue: true})
	if err != nil {
		return false, err
	}
	return raw != "", nil
}

// usedRange finds the area of a sheet holding data. The declared dimension
// is widened by the rows excelize actually returns since producers do not
// always keep it accurate. ok is false for an empty sheet.
func usedRange(f *excelize.File, sheet string) (Range, bool, error) {
	var (
		used Range
		ok   bool
	)

	dim, err := f.GetSheetDimension(sheet)
	if err != nil {
		return Range{}, false, err
	}
	if dim = strings.TrimSpace(dim); dim != "" {
		if !strings.Contains(dim, ":") {
			dim = dim + ":" + dim
		}
		if parsed, err := ParseRange(dim); err == nil {
			used, ok = parsed, true
			// Producers write a lone "A1" for empty sheets.
			if parsed.CellCount() == 1 {
				if ok, err = cellHasContent(f, sheet, parsed.MinCol, parsed.MinRow); err != nil {
					return Range{}, false, err
				}
			}
		}
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return Range{}, false, err
	}
	maxCol := 0
	for _, row := range rows {
		if len(row) > maxCol {
			maxCol = len(row)
		}
	}
	if len(rows) > 0 && maxCol > 0 {
		fromRows := Range{MinCol: 1, MinRow: 1, MaxCol: maxCol, MaxRow: len(rows)}
		if ok {
			used = used.Union(fromRows)
		} else {
			used, ok = fromRows, true
		}
	}

	return used, ok, nil
}
