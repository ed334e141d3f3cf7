package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xuri/excelize/v2"
)

func TestIsDateFormat(t *testing.T) {
	tests := []struct {
		code     string
		expected bool
	}{
		{"yyyy-mm-dd", true},
		{"mm-dd-yy", true},
		{"d-mmm-yy", true},
		{"h:mm", true},
		{"m/d/yy h:mm", true},
		{"[h]:mm:ss", false},
		{"General", false},
		{"0.00", false},
		{"#,##0", false},
		{"0%", false},
		{"@", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsDateFormat(tt.code))
		})
	}
}

func TestResolveNumberFormat(t *testing.T) {
	custom := "0.000"
	blank := " "

	assert.Equal(t, NumberFormat{Code: "General"}, ResolveNumberFormat(0, nil))
	assert.Equal(t, NumberFormat{Code: "0.00"}, ResolveNumberFormat(2, nil))
	assert.Equal(t, NumberFormat{Code: "mm-dd-yy", IsDate: true}, ResolveNumberFormat(14, nil))
	assert.Equal(t, NumberFormat{Code: "0.000"}, ResolveNumberFormat(164, &custom))
	assert.Equal(t, NumberFormat{Code: "General"}, ResolveNumberFormat(0, &blank))
	assert.Equal(t, NumberFormat{Code: "builtin:31", IsDate: true}, ResolveNumberFormat(31, nil))
	assert.Equal(t, NumberFormat{Code: "General"}, ResolveNumberFormat(200, nil))
}

func TestNormalizeValue(t *testing.T) {
	general := NumberFormat{Code: GeneralFormat}
	date := NumberFormat{Code: "yyyy-mm-dd", IsDate: true}
	clock := NumberFormat{Code: "h:mm", IsDate: true}

	tests := []struct {
		name     string
		cellType excelize.CellType
		raw      string
		nf       NumberFormat
		date1904 bool
		expected any
	}{
		{"Empty", excelize.CellTypeUnset, "", general, false, nil},
		{"Integer", excelize.CellTypeUnset, "42", general, false, int64(42)},
		{"Negative integer", excelize.CellTypeNumber, "-7", general, false, int64(-7)},
		{"Float", excelize.CellTypeUnset, "2.5", general, false, 2.5},
		{"Exponent", excelize.CellTypeUnset, "1E3", general, false, 1000.0},
		{"Bool true", excelize.CellTypeBool, "1", general, false, true},
		{"Bool false", excelize.CellTypeBool, "0", general, false, false},
		{"Shared string", excelize.CellTypeSharedString, "hello", general, false, "hello"},
		{"Numeric looking string", excelize.CellTypeInlineString, "007", general, false, "007"},
		{"Error", excelize.CellTypeError, "#N/A", general, false, "#N/A"},
		{"Formula string", excelize.CellTypeFormula, "done", general, false, "done"},
		{"Date", excelize.CellTypeUnset, "45306", date, false, "2024-01-15T00:00:00"},
		{"Date with time", excelize.CellTypeUnset, "45306.75", date, false, "2024-01-15T18:00:00"},
		{"Time only", excelize.CellTypeUnset, "0.5", clock, false, "12:00:00"},
		{"Time only rounds to seconds", excelize.CellTypeUnset, "0.7500001", clock, false, "18:00:00"},
		{"Midnight", excelize.CellTypeUnset, "0", clock, true, "00:00:00"},
		{"1904 date offset", excelize.CellTypeUnset, "43844", date, true, "2024-01-15T00:00:00"},
		{"Non numeric with date format", excelize.CellTypeUnset, "n/a", date, false, "n/a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeValue(tt.cellType, tt.raw, tt.nf, tt.date1904)
			assert.Equal(t, tt.expected, got)
		})
	}
}
