package tui

import (
	"context"
	"log/slog"

	list "github.com/charmbracelet/bubbles/list"
	spinner "github.com/charmbracelet/bubbles/spinner"
	table "github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"osmblocks/internal/geom"
	"osmblocks/internal/pipeline"
	"osmblocks/internal/scene"
)

// Builder produces the renderer handoff for a box. *pipeline.Pipeline
// satisfies it.
type Builder interface {
	Build(ctx context.Context, box geom.BoundingBox) (*pipeline.Build, error)
}

// Options configures the viewer program.
type Options struct {
	Ctx     context.Context
	Builder Builder
	Box     geom.BoundingBox
	Scale   geom.Scale
	Source  string // shown in the header, e.g. the endpoint or file
	Logger  *slog.Logger
}

// buildMsg carries the single fetch+extrude result back into Update.
type buildMsg struct {
	build *pipeline.Build
	err   error
}

type Model struct {
	width  int
	height int

	showSidebar bool
	helpVisible bool
	showFill    bool

	status string
	failed bool

	opts    Options
	log     *slog.Logger
	loading bool
	spin    spinner.Model

	viewer *scene.Viewer
	build  *pipeline.Build

	// building list
	l        list.Model
	selected int // object index, -1 for none

	// hover state
	hovering   bool
	hoverIndex int
	hoverMicX  int
	hoverMicY  int

	// feature table
	showAttrs bool
	tbl       table.Model
}

func New(opts Options) Model {
	if opts.Ctx == nil {
		opts.Ctx = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	m := Model{
		helpVisible: true,
		showFill:    true,
		status:      "fetching buildings",
		opts:        opts,
		log:         opts.Logger,
		loading:     true,
		viewer:      scene.NewViewer(),
		selected:    -1,
		hoverIndex:  -1,
	}
	m.spin = spinner.New()
	m.spin.Spinner = spinner.Dot
	m.spin.Style = titleStyle

	d := list.NewDefaultDelegate()
	m.l = list.New(nil, d, 0, 0)
	m.l.Title = "Buildings"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(true)
	// q and esc belong to the app; left and right orbit the camera
	m.l.KeyMap.Quit.SetEnabled(false)
	m.l.KeyMap.PrevPage.SetKeys("pgup")
	m.l.KeyMap.NextPage.SetKeys("pgdown")

	m.tbl = table.New(table.WithFocused(true))
	m.tbl.SetHeight(12)
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, buildCmd(m.opts.Ctx, m.opts.Builder, m.opts.Box))
}

// buildCmd runs the pipeline off the update loop; the result arrives as a buildMsg.
func buildCmd(ctx context.Context, b Builder, box geom.BoundingBox) tea.Cmd {
	return func() tea.Msg {
		build, err := b.Build(ctx, box)
		return buildMsg{build: build, err: err}
	}
}

// Viewer exposes the render context, mainly for tests.
func (m Model) Viewer() *scene.Viewer { return m.viewer }

// Status returns the status line text.
func (m Model) Status() string { return m.status }
