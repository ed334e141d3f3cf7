package ui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nconklindev/xl2json/internal/converter"
	"github.com/nconklindev/xl2json/internal/types"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

type state int

const (
	stateFilePicker state = iota
	stateOptions
	stateProcessing
	stateComplete
	stateError
)

// Form fields, in tab order.
const (
	fieldRange = iota
	fieldOutDir
	fieldPrefix
	fieldCount
)

var fieldLabels = [fieldCount]string{"Range", "Output Dir", "Prefix"}

// Defaults seeds the options form.
type Defaults struct {
	Range   string
	OutDir  string
	Workers int
	Logger  *slog.Logger
}

type Model struct {
	state        state
	defaults     Defaults
	filepicker   filepicker.Model
	selectedFile string
	inputs       [fieldCount]textinput.Model
	focus        int
	notice       string
	formErr      error
	result       *types.ConversionResult
	err          error
	width        int
	height       int
	progress     progress.Model
	progressMax  float64
	progressChan chan float64
	resultChan   chan conversionResultMsg
	cancel       context.CancelFunc
}

type conversionResultMsg struct {
	result *types.ConversionResult
	err    error
}

type conversionCompleteMsg struct {
	result *types.ConversionResult
	err    error
}

type progressMsg float64

type waitForProgressMsg struct{}

func InitialModel(defaults Defaults) Model {
	if strings.TrimSpace(defaults.Range) == "" {
		defaults.Range = converter.DefaultRange
	}
	if defaults.Logger == nil {
		defaults.Logger = slog.New(slog.DiscardHandler)
	}

	fp := filepicker.New()
	fp.AllowedTypes = converter.AllowedExtensions
	fp.CurrentDirectory, _ = os.Getwd()

	// Set filepicker colors to match theme
	fp.Styles.Cursor = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8C42"))
	fp.Styles.Symlink = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB84D"))
	fp.Styles.Directory = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB84D"))
	fp.Styles.File = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	fp.Styles.Permission = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	fp.Styles.Selected = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8C42")).Bold(true)
	fp.Styles.FileSize = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	var inputs [fieldCount]textinput.Model
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 4096
		ti.Width = 60
		ti.TextStyle = UnselectedStyle
		inputs[i] = ti
	}
	inputs[fieldRange].Placeholder = converter.DefaultRange + " or used"

	// Initialize progress bar
	prog := progress.New(progress.WithGradient("#FF8C42", "#FF9F5A"))

	return Model{
		state:      stateFilePicker,
		defaults:   defaults,
		filepicker: fp,
		inputs:     inputs,
		progress:   prog,
	}
}

// WithFile returns a model that skips the picker and opens the options form
// for path, as if it had been dropped.
func (m Model) WithFile(path string) Model {
	if path == "" {
		return m
	}
	if !converter.IsSupportedFile(path) {
		m.notice = "Drop an .xlsx file."
		return m
	}
	m, _ = m.selectFile(path)
	return m
}

func (m Model) Init() tea.Cmd {
	if m.state == stateOptions {
		return tea.Batch(m.filepicker.Init(), textinput.Blink)
	}
	return m.filepicker.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Set filepicker height based on available space
		// Subtract space for title, subtitle, help text, and padding
		height := msg.Height - 14
		if height < 5 {
			height = 5 // Minimum height
		}

		m.filepicker.SetHeight(height)

		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case stateFilePicker:
			if msg.Paste {
				return m.handleDrop(string(msg.Runes))
			}
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			}

		case stateOptions:
			return m.updateOptions(msg)

		case stateProcessing:
			if msg.String() == "ctrl+c" {
				if m.cancel != nil {
					m.cancel()
				}
				return m, tea.Quit
			}

		case stateComplete, stateError:
			switch msg.String() {
			case "ctrl+c", "q", "enter", "esc":
				return m, tea.Quit
			}
		}

	case conversionCompleteMsg:
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.result = msg.result
		m.state = stateComplete
		return m, nil

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case progressMsg:
		if m.state == stateProcessing {
			next := waitForProgress(m.progressChan, m.resultChan)
			// Sheets report concurrently, so only ever move forward.
			if float64(msg) <= m.progressMax {
				return m, next
			}
			m.progressMax = float64(msg)
			return m, tea.Batch(m.progress.SetPercent(m.progressMax), next)
		}
		return m, nil

	case waitForProgressMsg:
		return m, waitForProgress(m.progressChan, m.resultChan)
	}

	// Handle filepicker updates
	if m.state == stateFilePicker {
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)

		if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
			return m.selectFile(path)
		}
		if didSelect, _ := m.filepicker.DidSelectDisabledFile(msg); didSelect {
			m.notice = "Pick an .xlsx file."
		}

		return m, cmd
	}

	if m.state == stateOptions {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleDrop(data string) (tea.Model, tea.Cmd) {
	path, ok := firstDroppedWorkbook(data)
	if !ok {
		return m, nil
	}
	if !converter.IsSupportedFile(path) {
		m.notice = "Drop an .xlsx file."
		return m, nil
	}
	if _, err := os.Stat(path); err != nil {
		m.notice = fmt.Sprintf("File not found: %s", path)
		return m, nil
	}
	return m.selectFile(path)
}

func (m Model) selectFile(path string) (Model, tea.Cmd) {
	m.selectedFile = path
	m.notice = ""
	m.formErr = nil

	outDir := m.defaults.OutDir
	if outDir == "" {
		outDir = filepath.Dir(path)
	}
	m.inputs[fieldRange].SetValue(m.defaults.Range)
	m.inputs[fieldOutDir].SetValue(outDir)
	m.inputs[fieldPrefix].SetValue(converter.DefaultPrefix(path))

	m.defaults.Logger.Info("workbook selected", "file", path)

	m.state = stateOptions
	return m, m.focusField(fieldRange)
}

func (m *Model) focusField(field int) tea.Cmd {
	m.focus = (field + fieldCount) % fieldCount
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == m.focus {
			cmd = m.inputs[i].Focus()
			m.inputs[i].TextStyle = SelectedStyle
		} else {
			m.inputs[i].Blur()
			m.inputs[i].TextStyle = UnselectedStyle
		}
	}
	return cmd
}

func (m Model) updateOptions(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.state = stateFilePicker
		m.formErr = nil
		return m, nil
	case "tab", "down":
		return m, m.focusField(m.focus + 1)
	case "shift+tab", "up":
		return m, m.focusField(m.focus - 1)
	case "enter":
		rng := strings.TrimSpace(m.inputs[fieldRange].Value())
		if !converter.IsUsedRange(rng) {
			if _, err := converter.ParseRange(rng); err != nil {
				m.formErr = err
				return m, m.focusField(fieldRange)
			}
		}
		m.formErr = nil
		m.state = stateProcessing
		return m.convertFile()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) exportOptions() converter.Options {
	return converter.Options{
		InputFile: m.selectedFile,
		Range:     strings.TrimSpace(m.inputs[fieldRange].Value()),
		OutDir:    strings.TrimSpace(m.inputs[fieldOutDir].Value()),
		Prefix:    strings.TrimSpace(m.inputs[fieldPrefix].Value()),
		Workers:   m.defaults.Workers,
		Logger:    m.defaults.Logger,
	}
}

func (m Model) convertFile() (Model, tea.Cmd) {
	m.progressMax = 0
	m.progressChan = make(chan float64, 100)
	m.resultChan = make(chan conversionResultMsg, 1)

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	cmd := tea.Batch(
		func() tea.Msg {
			// Capture channels for the goroutine
			progressChan := m.progressChan
			resultChan := m.resultChan
			opts := m.exportOptions()

			go func() {
				result, err := converter.Export(ctx, opts, progressChan)

				// Send result
				resultChan <- conversionResultMsg{result: result, err: err}

				// Close channels
				close(progressChan)
				close(resultChan)
			}()

			return waitForProgressMsg{}
		},
		waitForProgress(m.progressChan, m.resultChan),
		m.progress.Init(), // Start progress bar animation
	)

	return m, cmd
}

func waitForProgress(progressChan chan float64, resultChan chan conversionResultMsg) tea.Cmd {
	return func() tea.Msg {
		if progressChan == nil {
			return nil
		}

		p, ok := <-progressChan
		if !ok {
			// Progress channel closed, check result
			res, ok := <-resultChan
			if ok {
				return conversionCompleteMsg(res)
			}
			return nil
		}

		return progressMsg(p)
	}
}

func (m Model) View() string {
	switch m.state {
	case stateFilePicker:
		return m.viewFilePicker()
	case stateOptions:
		return m.viewOptions()
	case stateProcessing:
		return m.viewProcessing()
	case stateComplete:
		return m.viewComplete()
	case stateError:
		return m.viewError()
	}
	return ""
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	title := TitleStyle.Render("▦ xl2json - Workbook to Structure + Values JSON")
	s.WriteString(title)
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render("Select an .xlsx file, or drag & drop one onto this window"))
	s.WriteString("\n\n")
	if m.notice != "" {
		s.WriteString(ErrorStyle.Render(m.notice))
		s.WriteString("\n\n")
	}
	s.WriteString(m.filepicker.View())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("Press q to quit"))

	return s.String()
}

func (m Model) viewOptions() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("▦ Export Options"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("File: %s", m.selectedFile)))
	s.WriteString("\n\n")

	for i, input := range m.inputs {
		cursor := " "
		label := LabelStyle.Render(fieldLabels[i])
		if m.focus == i {
			cursor = ">"
			label = SelectedStyle.Render(fmt.Sprintf("%-12s", fieldLabels[i]))
		}
		s.WriteString(fmt.Sprintf("%s %s %s\n", cursor, label, input.View()))
	}

	if m.formErr != nil {
		s.WriteString("\n")
		s.WriteString(ErrorStyle.Render(m.formErr.Error()))
		s.WriteString("\n")
	}

	structurePath, valuesPath := converter.OutputPaths(
		strings.TrimSpace(m.inputs[fieldOutDir].Value()),
		strings.TrimSpace(m.inputs[fieldPrefix].Value()),
	)
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("Writes %s\n       %s", structurePath, valuesPath)))
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("tab/↑/↓: move • enter: run export • esc: back • ctrl+c: quit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewProcessing() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("▦ Exporting..."))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("Reading cells of %s...", filepath.Base(m.selectedFile)))
	s.WriteString("\n\n")
	s.WriteString(m.progress.View())

	return BoxStyle.Render(s.String())
}

func (m Model) viewComplete() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("✓ Export Complete!"))
	s.WriteString("\n\n")

	// Truncate paths if they're too long
	maxPathLen := m.width - 30 // Leave room for padding, borders and sizes
	if maxPathLen < 30 {
		maxPathLen = 30
	}

	s.WriteString(fmt.Sprintf("Input:          %s\n", truncatePath(m.result.InputFile, maxPathLen)))
	s.WriteString(SuccessStyle.Render(fmt.Sprintf("Structure JSON: %s %s",
		truncatePath(m.result.StructureFile, maxPathLen), fileSize(m.result.StructureFile))))
	s.WriteString("\n")
	s.WriteString(SuccessStyle.Render(fmt.Sprintf("Values JSON:    %s %s",
		truncatePath(m.result.ValuesFile, maxPathLen), fileSize(m.result.ValuesFile))))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("Range:          %s\n", m.result.Range))
	s.WriteString(fmt.Sprintf("Sheets:         %d\n", m.result.SheetCount))
	s.WriteString(fmt.Sprintf("Defined names:  %d\n", m.result.DefinedNameCount))
	s.WriteString(fmt.Sprintf("Cells kept:     %d\n", m.result.CellsKept))
	s.WriteString(fmt.Sprintf("Formula cells:  %d\n", m.result.FormulaCells))
	s.WriteString(fmt.Sprintf("Formula cached values missing (null): %d\n", m.result.MissingCachedValues))
	if m.result.MissingCachedValues > 0 {
		s.WriteString(SubtitleStyle.Render("Open the workbook in Excel, recalculate and save, then export again to fill them in."))
		s.WriteString("\n")
	}
	s.WriteString(HelpStyle.Render("Press any key to exit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewError() string {
	var s strings.Builder

	s.WriteString(ErrorStyle.Render("✗ Error"))
	s.WriteString("\n\n")
	s.WriteString(m.err.Error())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("Press any key to exit"))

	return BoxStyle.Render(s.String())
}

func truncatePath(path string, maxLen int) string {
	if len(path) > maxLen {
		return "..." + path[len(path)-maxLen+3:]
	}
	return path
}

func fileSize(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return ""
	}
	return "(" + humanize.Bytes(uint64(info.Size())) + ")"
}
