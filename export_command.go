package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/nconklindev/xl2json/internal/converter"
	"github.com/nconklindev/xl2json/internal/logging"
	"github.com/nconklindev/xl2json/internal/types"
)

const (
	progressSteps   = 1000
	barConsoleLevel = "warn"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var rangeFlag string
	var outDirFlag string
	var prefixFlag string
	var workersFlag int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Export a workbook without the interactive UI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			stderr := cmd.ErrOrStderr()
			showBar := !jsonOutput && logging.IsTerminal(stderr)
			consoleLevel := ""
			if showBar {
				// The bar redraws on stderr; only warnings may interrupt it.
				consoleLevel = barConsoleLevel
			}
			logger, closeLog, err := ctx.logger(stderr, consoleLevel)
			if err != nil {
				return err
			}
			defer closeLog()

			opts := converter.Options{
				InputFile: args[0],
				Range:     cfg.Export.Range,
				OutDir:    cfg.Export.OutDir,
				Prefix:    strings.TrimSpace(prefixFlag),
				Workers:   cfg.Export.Workers,
				Logger:    logger,
			}
			if cmd.Flags().Changed("range") {
				opts.Range = strings.TrimSpace(rangeFlag)
			}
			if cmd.Flags().Changed("out-dir") {
				opts.OutDir = strings.TrimSpace(outDirFlag)
			}
			if cmd.Flags().Changed("workers") {
				if workersFlag < 1 {
					return fmt.Errorf("--workers must be at least 1")
				}
				opts.Workers = workersFlag
			}

			var progressChan chan float64
			var done chan struct{}
			var bar *progressbar.ProgressBar
			if showBar {
				bar = newProgressBar(stderr)
				progressChan = make(chan float64, 100)
				done = make(chan struct{})
				go func() {
					defer close(done)
					best := 0
					for p := range progressChan {
						// Sheets report concurrently, so keep the bar from moving backwards.
						if step := int(p * progressSteps); step > best {
							best = step
							_ = bar.Set(best)
						}
					}
				}()
			}

			result, err := converter.Export(cmd.Context(), opts, progressChan)
			if progressChan != nil {
				close(progressChan)
				<-done
				if err == nil {
					_ = bar.Finish()
				} else {
					_ = bar.Exit()
				}
			}
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, result)
			}
			printSummary(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&rangeFlag, "range", "r", "", `A1 range to export, or "used" for each sheet's used area (default from config)`)
	cmd.Flags().StringVarP(&outDirFlag, "out-dir", "o", "", "Directory for the JSON files (default: next to the workbook)")
	cmd.Flags().StringVarP(&prefixFlag, "prefix", "p", "", "Output file prefix (default: workbook name)")
	cmd.Flags().IntVarP(&workersFlag, "workers", "w", 0, "Sheets scanned in parallel (default from config)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")
	return cmd
}

func newProgressBar(w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(progressSteps,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Reading cells"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionClearOnFinish(),
	)
}

func printSummary(w io.Writer, result *types.ConversionResult) {
	rows := [][]string{
		{"Export ID", result.ExportID},
		{"Input", result.InputFile},
		{"Structure JSON", withSize(result.StructureFile)},
		{"Values JSON", withSize(result.ValuesFile)},
		{"Range", result.Range},
		{"Sheets", strconv.Itoa(result.SheetCount)},
		{"Defined names", strconv.Itoa(result.DefinedNameCount)},
		{"Cells kept", humanize.Comma(int64(result.CellsKept))},
		{"Formula cells", humanize.Comma(int64(result.FormulaCells))},
		{"Missing cached values", humanize.Comma(int64(result.MissingCachedValues))},
	}
	fmt.Fprintln(w, renderTable([]string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignLeft}))
	if result.MissingCachedValues > 0 {
		fmt.Fprintln(w, "Some formulas have no cached value. Open the workbook in Excel, recalculate and save, then export again.")
	}
}

func withSize(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return path
	}
	return fmt.Sprintf("%s (%s)", path, humanize.Bytes(uint64(info.Size())))
}
