package converter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"
	"github.com/xuri/nfp"
)

// GeneralFormat is the number format of unstyled cells.
const GeneralFormat = "General"

const secondsPerDay = 24 * 60 * 60

// builtInNumFmt maps the format ids every spreadsheet application knows
// without declaring them in styles.xml.
var builtInNumFmt = map[int]string{
	0:  "General",
	1:  "0",
	2:  "0.00",
	3:  "#,##0",
	4:  "#,##0.00",
	9:  "0%",
	10: "0.00%",
	11: "0.00E+00",
	12: "# ?/?",
	13: "# ??/??",
	14: "mm-dd-yy",
	15: "d-mmm-yy",
	16: "d-mmm",
	17: "mmm-yy",
	18: "h:mm AM/PM",
	19: "h:mm:ss AM/PM",
	20: "h:mm",
	21: "h:mm:ss",
	22: "m/d/yy h:mm",
	37: "#,##0 ;(#,##0)",
	38: "#,##0 ;[Red](#,##0)",
	39: "#,##0.00;(#,##0.00)",
	40: "#,##0.00;[Red](#,##0.00)",
	41: `_(* #,##0_);_(* \(#,##0\);_(* "-"_);_(@_)`,
	42: `_("$"* #,##0_);_("$"* \(#,##0\);_("$"* "-"_);_(@_)`,
	43: `_(* #,##0.00_);_(* \(#,##0.00\);_(* "-"??_);_(@_)`,
	44: `_("$"* #,##0.00_);_("$"* \(#,##0.00\);_("$"* "-"??_);_(@_)`,
	45: "mm:ss",
	46: "[h]:mm:ss",
	47: "mmss.0",
	48: "##0.0E+0",
	49: "@",
}

// isLangDateFmtID reports the locale dependent built-in ids, all of which
// render dates or times.
func isLangDateFmtID(id int) bool {
	return (id >= 27 && id <= 36) || (id >= 50 && id <= 58)
}

// NumberFormat is the resolved display format of a cell.
type NumberFormat struct {
	Code   string
	IsDate bool
}

// ResolveNumberFormat turns a style's format id and optional custom code
// into a NumberFormat.
func ResolveNumberFormat(id int, custom *string) NumberFormat {
	if custom != nil && strings.TrimSpace(*custom) != "" {
		return NumberFormat{Code: *custom, IsDate: IsDateFormat(*custom)}
	}
	if code, ok := builtInNumFmt[id]; ok {
		return NumberFormat{Code: code, IsDate: IsDateFormat(code)}
	}
	if isLangDateFmtID(id) {
		return NumberFormat{Code: fmt.Sprintf("builtin:%d", id), IsDate: true}
	}
	return NumberFormat{Code: GeneralFormat}
}

// IsDateFormat reports whether code renders numbers as calendar dates or
// clock times. Elapsed-time formats such as [h]:mm:ss are durations and do
// not count.
func IsDateFormat(code string) bool {
	code = strings.TrimSpace(code)
	if code == "" || strings.EqualFold(code, GeneralFormat) || code == "@" {
		return false
	}

	p := nfp.NumberFormatParser()
	sections := p.Parse(code)
	if len(sections) == 0 {
		return false
	}

	hasDate := false
	for _, token := range sections[0].Items {
		switch token.TType {
		case nfp.TokenTypeElapsedDateTimes:
			return false
		case nfp.TokenTypeDateTimes:
			hasDate = true
		}
	}
	return hasDate
}

// cellReader reads typed values and formats from one open workbook. It is
// shared by the per-sheet scanners.
type cellReader struct {
	f        *excelize.File
	date1904 bool

	mu      sync.Mutex
	formats map[int]NumberFormat
}

func newCellReader(f *excelize.File) *cellReader {
	r := &cellReader{f: f, formats: make(map[int]NumberFormat)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		r.date1904 = *props.Date1904
	}
	return r
}

func (r *cellReader) numberFormat(sheet, cell string) (NumberFormat, error) {
	styleID, err := r.f.GetCellStyle(sheet, cell)
	if err != nil {
		return NumberFormat{}, err
	}

	r.mu.Lock()
	nf, ok := r.formats[styleID]
	r.mu.Unlock()
	if ok {
		return nf, nil
	}

	nf = NumberFormat{Code: GeneralFormat}
	if style, err := r.f.GetStyle(styleID); err == nil && style != nil {
		nf = ResolveNumberFormat(style.NumFmt, style.CustomNumFmt)
	}

	r.mu.Lock()
	r.formats[styleID] = nf
	r.mu.Unlock()
	return nf, nil
}

// typedValue converts the raw stored text of a cell into its JSON value.
func (r *cellReader) typedValue(sheet, cell, raw string, nf NumberFormat) (any, error) {
	if raw == "" {
		return nil, nil
	}

	cellType, err := r.f.GetCellType(sheet, cell)
	if err != nil {
		return nil, err
	}
	return NormalizeValue(cellType, raw, nf, r.date1904), nil
}

// NormalizeValue maps a raw cell text of the given type to a JSON friendly
// value: booleans, integers, floats, ISO-8601 date strings or plain strings.
func NormalizeValue(cellType excelize.CellType, raw string, nf NumberFormat, date1904 bool) any {
	if raw == "" {
		return nil
	}

	switch cellType {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "TRUE")
	case excelize.CellTypeError,
		excelize.CellTypeSharedString,
		excelize.CellTypeInlineString,
		excelize.CellTypeFormula,
		excelize.CellTypeDate:
		return raw
	}

	if nf.IsDate {
		if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial >= 0 {
			if serial < 1 {
				// A bare time of day; the epoch does not matter.
				secs := math.Round(serial * secondsPerDay)
				return time.Time{}.Add(time.Duration(secs) * time.Second).Format("15:04:05")
			}
			if t, err := excelize.ExcelDateToTime(serial, date1904); err == nil {
				return t.Format("2006-01-02T15:04:05")
			}
		}
	}

	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}
