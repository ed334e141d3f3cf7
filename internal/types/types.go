package types

// ConversionResult summarizes one export run.
type ConversionResult struct {
	ExportID            string `json:"export_id"`
	InputFile           string `json:"input_file"`
	StructureFile       string `json:"structure_file"`
	ValuesFile          string `json:"values_file"`
	Range               string `json:"range_exported"`
	SheetCount          int    `json:"sheet_count"`
	DefinedNameCount    int    `json:"defined_name_count"`
	CellsKept           int    `json:"total_cells_kept"`
	FormulaCells        int    `json:"total_formula_cells"`
	MissingCachedValues int    `json:"total_missing_cached_values"`
}

// Notes are the fixed remarks attached to each export document.
type Notes map[string]string

// DefinedName is one workbook or sheet scoped named range.
type DefinedName struct {
	Name         string  `json:"name"`
	LocalSheetID *int    `json:"localSheetId"`
	Scope        string  `json:"scope"`
	RefersTo     string  `json:"refers_to"`
	Comment      *string `json:"comment"`
}

// StructureCell is a constant or formula cell in the structure document.
type StructureCell struct {
	Addr         string  `json:"addr"`
	Value        any     `json:"value"`
	Formula      *string `json:"formula"`
	NumberFormat string  `json:"number_format"`
}

// StructureSheet holds the kept cells of one sheet.
type StructureSheet struct {
	Name             string          `json:"name"`
	State            string          `json:"state"`
	Dimensions       string          `json:"dimensions"`
	CellCount        int             `json:"cell_count"`
	FormulaCellCount int             `json:"formula_cell_count"`
	Cells            []StructureCell `json:"cells"`
}

// StructureExport is written to <prefix>_structure.json.
type StructureExport struct {
	ExportID          string           `json:"export_id"`
	SourceFile        string           `json:"source_file"`
	RangeExported     string           `json:"range_exported"`
	SheetCount        int              `json:"sheet_count"`
	DefinedNameCount  int              `json:"defined_name_count"`
	DefinedNames      []DefinedName    `json:"defined_names"`
	TotalCellsKept    int              `json:"total_cells_kept"`
	TotalFormulaCells int              `json:"total_formula_cells"`
	Sheets            []StructureSheet `json:"sheets"`
	Notes             Notes            `json:"notes"`
}

// ValueCell is the cached result of a formula cell.
type ValueCell struct {
	Addr         string `json:"addr"`
	Value        any    `json:"value"`
	NumberFormat string `json:"number_format"`
}

// ValuesSheet holds the cached formula results of one sheet.
type ValuesSheet struct {
	Name                    string      `json:"name"`
	State                   string      `json:"state"`
	Dimensions              string      `json:"dimensions"`
	FormulaValueCount       int         `json:"formula_value_count"`
	MissingCachedValueCount int         `json:"missing_cached_value_count"`
	Cells                   []ValueCell `json:"cells"`
}

// ValuesExport is written to <prefix>_values.json.
type ValuesExport struct {
	ExportID                 string        `json:"export_id"`
	SourceFile               string        `json:"source_file"`
	RangeExported            string        `json:"range_exported"`
	SheetCount               int           `json:"sheet_count"`
	TotalFormulaValues       int           `json:"total_formula_values"`
	TotalMissingCachedValues int           `json:"total_missing_cached_values"`
	Sheets                   []ValuesSheet `json:"sheets"`
	Notes                    Notes         `json:"notes"`
}
