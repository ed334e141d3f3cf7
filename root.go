package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nconklindev/xl2json/internal/ui"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string
	var logFormatFlag string

	ctx := newCommandContext(&configFlag, &logLevelFlag, &logFormatFlag)

	rootCmd := &cobra.Command{
		Use:           "xl2json [FILE]",
		Short:         "Export an Excel workbook to structure and values JSON",
		Args:          cobra.MaximumNArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd, ctx, args)
		},
	}
	rootCmd.SetVersionTemplate(fmt.Sprintf("xl2json %s\ncommit: %s\nbuilt: %s\n", version, commit, date))

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Log format (console, json)")

	rootCmd.AddCommand(newExportCommand(ctx))
	rootCmd.AddCommand(newInspectCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}

func runInteractive(cmd *cobra.Command, ctx *commandContext, args []string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	// The UI owns the terminal, so logs only go to the configured file.
	logger, closeLog, err := ctx.logger(nil, "")
	if err != nil {
		return err
	}
	defer closeLog()

	model := ui.InitialModel(ui.Defaults{
		Range:   cfg.Export.Range,
		OutDir:  cfg.Export.OutDir,
		Workers: cfg.Export.Workers,
		Logger:  logger,
	})
	if len(args) == 1 {
		model = model.WithFile(args[0])
	}

	p := tea.NewProgram(model,
		tea.WithContext(cmd.Context()),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
