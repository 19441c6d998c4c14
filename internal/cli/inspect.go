package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/hdf2mic/pkg/config"
	"github.com/matzehuels/hdf2mic/pkg/errors"
	"github.com/matzehuels/hdf2mic/pkg/source"
	"github.com/matzehuels/hdf2mic/pkg/source/hdf5"
)

// newInspectCmd creates the inspect command. It probes every dataset path a
// config refers to and presents the result as a scrollable table.
func newInspectCmd() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "inspect <config.toml>",
		Short: "Probe the datasets a config refers to",
		Long: `Probe every dataset path in a config and report whether it exists,
its shape, and its element type. Useful for checking a config against an
input file before running the conversion.

Examples:
  hdf2mic inspect conversion.toml
  hdf2mic inspect --plain conversion.toml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0], plain)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print a static table instead of the interactive view")
	return cmd
}

// probe is one inspected dataset path.
type probe struct {
	Role  string
	Path  string
	OK    bool
	Shape string
	Dtype string
	Err   string
}

func runInspect(cmd *cobra.Command, configPath string, plain bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	src, err := hdf5.Open(cfg.Files.Input.HDF5)
	if err != nil {
		return err
	}
	defer src.Close()

	probes := collectProbes(cfg, src)

	if plain {
		printKeyValue("input", cfg.Files.Input.HDF5)
		for _, p := range probes {
			status := styleStatusOK.Render("ok")
			detail := fmt.Sprintf("%s %s", p.Shape, p.Dtype)
			if !p.OK {
				status = styleStatusMissing.Render("missing")
				detail = p.Err
			}
			fmt.Printf("%-10s %-40s %s  %s\n", p.Role, p.Path, status, StyleDim.Render(detail))
		}
		return nil
	}

	model := newInspectModel(cfg.Files.Input.HDF5, probes)
	_, err = tea.NewProgram(model, tea.WithContext(cmd.Context())).Run()
	return err
}

// collectProbes resolves every configured dataset path against the source.
func collectProbes(cfg *config.Config, src source.Source) []probe {
	var probes []probe

	add := func(role, path string) {
		if source.Absent(path) {
			return
		}
		p := probe{Role: role, Path: path}
		arr, err := src.Get(path)
		if err != nil {
			p.Err = errors.UserMessage(err)
		} else {
			p.OK = true
			p.Shape = shapeString(arr.Shape)
			p.Dtype = arr.Dtype
		}
		probes = append(probes, p)
	}

	if strings.HasPrefix(cfg.Data.Time, "/") {
		add("time", cfg.Data.Time)
	}
	add("geometry", cfg.Data.Geometry.Dimensions)
	add("geometry", cfg.Data.Geometry.Origin)
	add("geometry", cfg.Data.Geometry.Spacing)
	add("grains", cfg.Data.Grains.Angles)
	add("grains", cfg.Data.Grains.Phases)
	for i, path := range cfg.Data.CellData.Paths {
		add(fmt.Sprintf("celldata/%s", cfg.Data.CellData.Names[i]), path)
	}

	return probes
}

func shapeString(shape []int) string {
	parts := make([]string, len(shape))
	for i, d := range shape {
		parts[i] = fmt.Sprintf("%d", d)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// List styles.
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// inspectModel is the bubbletea model for the dataset table.
type inspectModel struct {
	Input  string
	Probes []probe
	Cursor int
	Height int
	Offset int
}

func newInspectModel(input string, probes []probe) inspectModel {
	return inspectModel{
		Input:  input,
		Probes: probes,
		Height: 15,
	}
}

func (m inspectModel) Init() tea.Cmd {
	return nil
}

func (m inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Probes)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m inspectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Datasets in " + m.Input))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Probes) {
		end = len(m.Probes)
	}

	for i := m.Offset; i < end; i++ {
		p := m.Probes[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		status := styleStatusOK.Render("ok     ")
		detail := fmt.Sprintf("%-12s %s", p.Shape, p.Dtype)
		if !p.OK {
			status = styleStatusMissing.Render("missing")
			detail = p.Err
		}

		line := fmt.Sprintf("%s%-22s %-40s %s  %s", cursor, p.Role, p.Path, status, listDimStyle.Render(detail))
		if i == m.Cursor {
			line = listSelectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}
