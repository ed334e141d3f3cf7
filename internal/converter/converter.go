package converter

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/nconklindev/xl2json/internal/types"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the number of sheets scanned at once.
const DefaultWorkers = 4

// AllowedExtensions are the workbook types that can be exported.
var AllowedExtensions = []string{".xlsx", ".xlsm"}

var (
	structureNotes = types.Notes{
		"structure": "Non-empty constants + formula text for formula cells.",
		"calc":      "No recalculation performed.",
	}
	valuesNotes = types.Notes{
		"values": "Cached values for formula cells only (what Excel last saved).",
	}
)

// Options controls an export run.
type Options struct {
	InputFile string
	// Range is an A1 range or "used" (or empty) for each sheet's used area.
	Range   string
	OutDir  string
	Prefix  string
	Workers int
	Logger  *slog.Logger
}

func (o Options) withDefaults() Options {
	if strings.TrimSpace(o.OutDir) == "" {
		o.OutDir = filepath.Dir(o.InputFile)
	}
	if strings.TrimSpace(o.Prefix) == "" {
		o.Prefix = DefaultPrefix(o.InputFile)
	}
	if o.Workers < 1 {
		o.Workers = DefaultWorkers
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}

// IsSupportedFile reports whether path has a workbook extension.
func IsSupportedFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// Export reads the workbook named in opts and writes <prefix>_structure.json
// and <prefix>_values.json. Progress in [0,1] is sent to progressChan
// without blocking when it is non-nil.
func Export(ctx context.Context, opts Options, progressChan chan<- float64) (*types.ConversionResult, error) {
	opts = opts.withDefaults()
	logger := opts.Logger

	if !IsSupportedFile(opts.InputFile) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Ext(opts.InputFile))
	}
	if _, err := os.Stat(opts.InputFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, opts.InputFile)
		}
		return nil, fmt.Errorf("stat input: %w", err)
	}

	f, err := excelize.OpenFile(opts.InputFile)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	logger.Info("export started", "file", opts.InputFile, "range", displayRange(opts.Range))

	structure, values, err := BuildDocuments(ctx, f, opts, progressChan)
	if err != nil {
		return nil, err
	}

	structurePath, valuesPath, err := WriteDocuments(ctx, opts.OutDir, opts.Prefix, structure, values)
	if err != nil {
		return nil, err
	}

	logger.Info("export finished",
		"structure", structurePath,
		"values", valuesPath,
		"sheets", structure.SheetCount,
		"formula_cells", structure.TotalFormulaCells,
		"missing_cached_values", values.TotalMissingCachedValues,
	)

	return &types.ConversionResult{
		ExportID:            structure.ExportID,
		InputFile:           opts.InputFile,
		StructureFile:       structurePath,
		ValuesFile:          valuesPath,
		Range:               structure.RangeExported,
		SheetCount:          structure.SheetCount,
		DefinedNameCount:    structure.DefinedNameCount,
		CellsKept:           structure.TotalCellsKept,
		FormulaCells:        structure.TotalFormulaCells,
		MissingCachedValues: values.TotalMissingCachedValues,
	}, nil
}

// sheetPlan is a worksheet together with the range that will be scanned.
type sheetPlan struct {
	name  string
	state string
	rng   Range
	empty bool
	// merged holds the merge areas overlapping rng. Only their top-left
	// cell carries content.
	merged []Range
}

// BuildDocuments scans an open workbook and assembles both export documents
// in one pass. Sheets are scanned concurrently and reassembled in workbook order.
func BuildDocuments(ctx context.Context, f *excelize.File, opts Options, progressChan chan<- float64) (*types.StructureExport, *types.ValuesExport, error) {
	opts = opts.withDefaults()
	logger := opts.Logger

	var fixed Range
	useUsed := IsUsedRange(opts.Range)
	if !useUsed {
		rng, err := ParseRange(opts.Range)
		if err != nil {
			return nil, nil, err
		}
		fixed = rng
	}

	allSheets := f.GetSheetList()
	info, err := readSheetInfo(f.Path)
	if err != nil {
		// Workbooks built in memory have no package on disk yet.
		logger.Debug("sheet states unavailable", "error", err)
		info = nil
	}

	var plans []sheetPlan
	total := 0
	for _, name := range allSheets {
		si, known := info[name]
		if known && si.Chart {
			logger.Debug("skipping chart sheet", "sheet", name)
			continue
		}
		plan := sheetPlan{name: name, state: sheetState(f, name, si, known), rng: fixed}
		if useUsed {
			rng, ok, err := usedRange(f, name)
			if err != nil {
				return nil, nil, &SheetError{Sheet: name, Op: "read dimension", Err: err}
			}
			plan.rng, plan.empty = rng, !ok
		}
		if !plan.empty {
			merged, err := mergedRanges(f, name, plan.rng)
			if err != nil {
				return nil, nil, &SheetError{Sheet: name, Op: "read merged cells", Err: err}
			}
			plan.merged = merged
			total += plan.rng.CellCount()
		}
		plans = append(plans, plan)
	}

	reader := newCellReader(f)
	structureSheets := make([]types.StructureSheet, len(plans))
	valueSheets := make([]types.ValuesSheet, len(plans))

	var scanned atomic.Int64
	tick := func(n int) {
		done := scanned.Add(int64(n))
		if progressChan != nil && total > 0 {
			select {
			case progressChan <- float64(done) / float64(total):
			default:
			}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, plan := range plans {
		g.Go(func() error {
			st, vs, err := reader.scanSheet(gctx, plan, tick)
			if err != nil {
				return err
			}
			structureSheets[i] = st
			valueSheets[i] = vs
			logger.Debug("sheet scanned",
				"sheet", plan.name,
				"cells", st.CellCount,
				"formula_cells", st.FormulaCellCount,
				"missing_cached_values", vs.MissingCachedValueCount,
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	exportID := uuid.NewString()
	rangeLabel := displayRange(opts.Range)
	if !useUsed {
		rangeLabel = fixed.String()
	}
	names := DefinedNames(f, allSheets)

	structure := &types.StructureExport{
		ExportID:         exportID,
		SourceFile:       opts.InputFile,
		RangeExported:    rangeLabel,
		SheetCount:       len(plans),
		DefinedNameCount: len(names),
		DefinedNames:     names,
		Sheets:           structureSheets,
		Notes:            structureNotes,
	}
	values := &types.ValuesExport{
		ExportID:      exportID,
		SourceFile:    opts.InputFile,
		RangeExported: rangeLabel,
		SheetCount:    len(plans),
		Sheets:        valueSheets,
		Notes:         valuesNotes,
	}
	for i := range structureSheets {
		structure.TotalCellsKept += structureSheets[i].CellCount
		structure.TotalFormulaCells += structureSheets[i].FormulaCellCount
		values.TotalFormulaValues += valueSheets[i].FormulaValueCount
		values.TotalMissingCachedValues += valueSheets[i].MissingCachedValueCount
	}

	return structure, values, nil
}

// mergedRanges lists the merge areas of sheet that overlap rng. The full
// area is kept so a merge starting left of or above rng still hides its
// covered cells.
func mergedRanges(f *excelize.File, sheet string, rng Range) ([]Range, error) {
	cells, err := f.GetMergeCells(sheet)
	if err != nil {
		return nil, err
	}
	var out []Range
	for _, mc := range cells {
		area, err := ParseRange(mc.GetStartAxis() + ":" + mc.GetEndAxis())
		if err != nil {
			continue
		}
		if _, ok := area.Intersect(rng); ok {
			out = append(out, area)
		}
	}
	return out, nil
}

// coveredByMerge reports whether col,row sits inside a merge area without
// being its top-left cell.
func (p sheetPlan) coveredByMerge(col, row int) bool {
	for _, area := range p.merged {
		if area.Contains(col, row) && (col != area.MinCol || row != area.MinRow) {
			return true
		}
	}
	return false
}

func sheetState(f *excelize.File, name string, si sheetInfo, known bool) string {
	if known {
		return si.State
	}
	visible, err := f.GetSheetVisible(name)
	if err != nil || visible {
		return SheetVisible
	}
	return SheetHidden
}

func displayRange(r string) string {
	if IsUsedRange(r) {
		return UsedRange
	}
	return strings.TrimSpace(r)
}

// scanSheet walks plan.rng row by row, keeping non-empty constants and every
// formula cell. Formula cells also yield their cached value. Cells hidden by
// a merge are skipped since excelize reports the merge's top-left content for
// them.
func (r *cellReader) scanSheet(ctx context.Context, plan sheetPlan, tick func(int)) (types.StructureSheet, types.ValuesSheet, error) {
	st := types.StructureSheet{
		Name:  plan.name,
		State: plan.state,
		Cells: []types.StructureCell{},
	}
	vs := types.ValuesSheet{
		Name:  plan.name,
		State: plan.state,
		Cells: []types.ValueCell{},
	}
	if plan.empty {
		return st, vs, nil
	}

	dims := plan.rng.String()
	st.Dimensions = dims
	vs.Dimensions = dims

	rng := plan.rng
	for row := rng.MinRow; row <= rng.MaxRow; row++ {
		if err := ctx.Err(); err != nil {
			return st, vs, err
		}

		for col := rng.MinCol; col <= rng.MaxCol; col++ {
			if plan.coveredByMerge(col, row) {
				continue
			}
			addr, err := excelize.CoordinatesToCellName(col, row)
			if err != nil {
				return st, vs, &SheetError{Sheet: plan.name, Op: "address", Err: err}
			}

			formula, err := r.f.GetCellFormula(plan.name, addr)
			if err != nil {
				return st, vs, &SheetError{Sheet: plan.name, Op: "read formula " + addr, Err: err}
			}
			raw, err := r.f.GetCellValue(plan.name, addr, excelize.Options{RawCellValue: true})
			if err != nil {
				return st, vs, &SheetError{Sheet: plan.name, Op: "read value " + addr, Err: err}
			}
			if formula == "" && raw == "" {
				continue
			}

			nf, err := r.numberFormat(plan.name, addr)
			if err != nil {
				return st, vs, &SheetError{Sheet: plan.name, Op: "read style " + addr, Err: err}
			}
			value, err := r.typedValue(plan.name, addr, raw, nf)
			if err != nil {
				return st, vs, &SheetError{Sheet: plan.name, Op: "read type " + addr, Err: err}
			}

			if formula != "" {
				text := formula
				if !strings.HasPrefix(text, "=") {
					text = "=" + text
				}
				st.Cells = append(st.Cells, types.StructureCell{
					Addr:         addr,
					Formula:      &text,
					NumberFormat: nf.Code,
				})
				vs.Cells = append(vs.Cells, types.ValueCell{
					Addr:         addr,
					Value:        value,
					NumberFormat: nf.Code,
				})
				if value == nil {
					vs.MissingCachedValueCount++
				}
				continue
			}

			st.Cells = append(st.Cells, types.StructureCell{
				Addr:         addr,
				Value:        value,
				NumberFormat: nf.Code,
			})
		}

		tick(rng.Cols())
	}

	st.CellCount = len(st.Cells)
	st.FormulaCellCount = len(vs.Cells)
	vs.FormulaValueCount = len(vs.Cells)

	return st, vs, nil
}
