package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/nconklindev/xl2json/internal/converter"
	"github.com/nconklindev/xl2json/internal/types"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var rangeFlag string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Show per-sheet counts without writing any files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, closeLog, err := ctx.logger(cmd.ErrOrStderr(), "")
			if err != nil {
				return err
			}
			defer closeLog()

			input := args[0]
			if !converter.IsSupportedFile(input) {
				return fmt.Errorf("%w: %s", converter.ErrUnsupportedFile, input)
			}
			if _, err := os.Stat(input); errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("%w: %s", converter.ErrFileNotFound, input)
			}

			f, err := excelize.OpenFile(input)
			if err != nil {
				return fmt.Errorf("open workbook: %w", err)
			}
			defer f.Close()

			opts := converter.Options{
				InputFile: input,
				Range:     cfg.Export.Range,
				Workers:   cfg.Export.Workers,
				Logger:    logger,
			}
			if cmd.Flags().Changed("range") {
				opts.Range = strings.TrimSpace(rangeFlag)
			}

			structure, values, err := converter.BuildDocuments(cmd.Context(), f, opts, nil)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, inspectReport(structure, values))
			}
			printInspect(cmd, structure, values)
			return nil
		},
	}

	cmd.Flags().StringVarP(&rangeFlag, "range", "r", "", `A1 range to inspect, or "used" (default from config)`)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the counts as JSON")
	return cmd
}

type sheetReport struct {
	Name          string `json:"name"`
	State         string `json:"state"`
	Dimensions    string `json:"dimensions"`
	Cells         int    `json:"cell_count"`
	FormulaCells  int    `json:"formula_cell_count"`
	MissingCached int    `json:"missing_cached_value_count"`
}

type workbookReport struct {
	SourceFile   string              `json:"source_file"`
	Range        string              `json:"range_exported"`
	Sheets       []sheetReport       `json:"sheets"`
	DefinedNames []types.DefinedName `json:"defined_names"`
}

func inspectReport(structure *types.StructureExport, values *types.ValuesExport) workbookReport {
	report := workbookReport{
		SourceFile:   structure.SourceFile,
		Range:        structure.RangeExported,
		Sheets:       make([]sheetReport, 0, len(structure.Sheets)),
		DefinedNames: structure.DefinedNames,
	}
	for i, sheet := range structure.Sheets {
		report.Sheets = append(report.Sheets, sheetReport{
			Name:          sheet.Name,
			State:         sheet.State,
			Dimensions:    sheet.Dimensions,
			Cells:         sheet.CellCount,
			FormulaCells:  sheet.FormulaCellCount,
			MissingCached: values.Sheets[i].MissingCachedValueCount,
		})
	}
	return report
}

func printInspect(cmd *cobra.Command, structure *types.StructureExport, values *types.ValuesExport) {
	out := cmd.OutOrStdout()
	report := inspectReport(structure, values)

	fmt.Fprintf(out, "%s (range %s)\n", report.SourceFile, report.Range)

	rows := make([][]string, 0, len(report.Sheets))
	for _, sheet := range report.Sheets {
		dims := sheet.Dimensions
		if dims == "" {
			dims = "-"
		}
		rows = append(rows, []string{
			sheet.Name,
			sheet.State,
			dims,
			humanize.Comma(int64(sheet.Cells)),
			humanize.Comma(int64(sheet.FormulaCells)),
			humanize.Comma(int64(sheet.MissingCached)),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Sheet", "State", "Dimensions", "Cells", "Formulas", "Missing"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
	))

	if len(report.DefinedNames) == 0 {
		return
	}
	nameRows := make([][]string, 0, len(report.DefinedNames))
	for _, name := range report.DefinedNames {
		local := "-"
		if name.LocalSheetID != nil {
			local = strconv.Itoa(*name.LocalSheetID)
		}
		nameRows = append(nameRows, []string{name.Name, name.Scope, local, name.RefersTo})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Name", "Scope", "Local Sheet", "Refers To"},
		nameRows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
	))
}
