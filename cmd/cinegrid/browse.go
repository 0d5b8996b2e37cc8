package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/vadimtrunov/cinegrid/internal/accumulator"
	"github.com/vadimtrunov/cinegrid/internal/catalog"
	"github.com/vadimtrunov/cinegrid/internal/core"
	"github.com/vadimtrunov/cinegrid/internal/home"
	"github.com/vadimtrunov/cinegrid/internal/layout"
	"github.com/vadimtrunov/cinegrid/internal/wishlist"
)

// newBrowseCmd returns the "browse" subcommand for the full-screen browser.
func newBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the catalog in a full-screen terminal UI",
		Long: "Open the full-screen browser with Home, Popular, Search and Wishlist tabs.\n" +
			"Logs go to cinegrid.log in the data directory.",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runBrowse()
		},
	}
}

// runBrowse initializes services and starts the Bubble Tea browser.
func runBrowse() error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger, closeLog := setupLogging(cfg, true)
	defer closeLog()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc := initServices(cfg, logger)
	cat, err := svc.requireCatalog(ctx)
	if err != nil {
		return err
	}

	m := newBrowseModel(ctx, cat, svc.wishlist, browseOptions{
		Planner:  cfg.Layout.Planner(),
		Locale:   language.Make(cfg.TMDb.Language),
		Debounce: cfg.Search.Debounce,
		Logger:   logger,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())

	// Bridge OS signal cancellation into the Bubble Tea event loop.
	go func() {
		<-ctx.Done()
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run browser: %w", err)
	}
	return nil
}

type tab int

const (
	tabHome tab = iota
	tabPopular
	tabSearch
	tabWishlist
	tabCount
)

var tabNames = [tabCount]string{"Home", "Popular", "Search", "Wishlist"}

func (t tab) String() string { return tabNames[t] }

// homeLoadedMsg carries the landing rows.
type homeLoadedMsg struct {
	rows []home.Row
}

// pageLoadedMsg carries the result of one loader step.
type pageLoadedMsg struct {
	tab tab
	set accumulator.ResultSet
	err error
}

// searchTickMsg fires when the search input has been idle for the debounce delay.
type searchTickMsg struct {
	seq int
}

// detailsLoadedMsg carries a details lookup.
type detailsLoadedMsg struct {
	details *core.MovieDetails
	err     error
}

// Search filter choices, cycled with L and R.
var (
	searchLanguages = []string{core.LanguageAll, "ko", "en", "ja"}
	ratingBuckets   = []core.RatingBucket{
		core.RatingAll, core.RatingAtMost4,
		core.Bucket(5), core.Bucket(6), core.Bucket(7), core.Bucket(8),
	}
)

// browseOptions configures the browser.
type browseOptions struct {
	Planner  layout.Planner
	Locale   language.Tag
	Debounce time.Duration
	Logger   *slog.Logger
}

// browseModel is the Bubble Tea model for the catalog browser.
type browseModel struct {
	ctx      context.Context
	source   core.CatalogSource
	wishlist *wishlist.Store
	opts     browseOptions
	logger   *slog.Logger

	width, height int
	tab           tab
	status        string
	statusErr     bool
	spinner       spinner.Model

	homeRows  []home.Row
	homeReady bool
	homeRow   int
	offsets   []int // slider offset per home row, in cells

	popular       *accumulator.Loader
	popularCursor int

	search       *accumulator.Loader
	input        textinput.Model
	searchSeq    int
	langIdx      int
	ratingIdx    int
	searchCursor int

	wishFilter int
	wishSort   int
	wishCursor int

	details        *core.MovieDetails
	detailsLoading bool
}

func newBrowseModel(ctx context.Context, source core.CatalogSource, wl *wishlist.Store, opts browseOptions) browseModel {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Planner == (layout.Planner{}) {
		opts.Planner = layout.Planner{
			Breakpoint: 100,
			Narrow:     layout.Profile{ItemWidth: 16, ItemHeight: 5, Gap: 1},
			Wide:       layout.Profile{ItemWidth: 22, ItemHeight: 6, Gap: 2},
		}
	}

	ti := textinput.New()
	ti.Placeholder = "Search movies..."
	ti.CharLimit = 100

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styleInfo

	return browseModel{
		ctx:      ctx,
		source:   source,
		wishlist: wl,
		opts:     opts,
		logger:   opts.Logger,
		spinner:  s,
		popular:  accumulator.NewLoader(source, core.FetchQuery{Endpoint: core.EndpointPopular}, opts.Logger),
		search:   accumulator.NewLoader(source, core.FetchQuery{Endpoint: core.EndpointSearch}, opts.Logger),
		input:    ti,
	}
}

// Init loads the landing rows and the first popular page.
func (m browseModel) Init() tea.Cmd {
	return tea.Batch(m.loadHome(), m.loadNext(tabPopular), m.spinner.Tick)
}

// Update handles incoming messages and user input.
func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(10, m.width-6)
		return m, m.maybeLoadMore(m.tab)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case homeLoadedMsg:
		m.handleHomeLoaded(msg)
		return m, nil

	case pageLoadedMsg:
		return m, m.handlePageLoaded(msg)

	case searchTickMsg:
		if msg.seq != m.searchSeq {
			return m, nil
		}
		return m, m.applySearch()

	case detailsLoadedMsg:
		if !m.detailsLoading {
			return m, nil
		}
		m.detailsLoading = false
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		m.details = msg.details
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.tab == tabSearch && m.input.Focused() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// busy reports whether anything is loading.
func (m browseModel) busy() bool {
	return !m.homeReady || m.detailsLoading || m.popular.Loading() || m.search.Loading()
}

func (m *browseModel) handleHomeLoaded(msg homeLoadedMsg) {
	m.homeRows = msg.rows
	m.homeReady = true
	m.offsets = make([]int, len(msg.rows))
	m.homeRow = min(m.homeRow, max(len(msg.rows)-1, 0))

	for _, r := range msg.rows {
		if r.Err == nil {
			return
		}
	}
	if len(msg.rows) > 0 {
		m.setError(msg.rows[0].Err)
	}
}

func (m *browseModel) handlePageLoaded(msg pageLoadedMsg) tea.Cmd {
	switch {
	case errors.Is(msg.err, accumulator.ErrStale),
		errors.Is(msg.err, accumulator.ErrBusy),
		errors.Is(msg.err, accumulator.ErrExhausted):
		return nil
	case msg.err != nil:
		m.setError(msg.err)
		return nil
	}
	return m.maybeLoadMore(msg.tab)
}

func (m browseModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c":
		return m, tea.Quit
	case "tab":
		return m, m.switchTab((m.tab + 1) % tabCount)
	case "shift+tab":
		return m, m.switchTab((m.tab + tabCount - 1) % tabCount)
	case "esc":
		switch {
		case m.details != nil || m.detailsLoading:
			m.details = nil
			m.detailsLoading = false
		case m.status != "":
			m.clearStatus()
		case m.tab == tabSearch && m.input.Focused():
			m.input.Blur()
		}
		return m, nil
	}

	if m.details != nil {
		switch key {
		case "w":
			m.toggle(m.details.Item())
		case "q":
			m.details = nil
		}
		return m, nil
	}

	if m.tab == tabSearch && m.input.Focused() {
		return m.handleSearchInput(msg)
	}

	switch key {
	case "q":
		return m, tea.Quit
	case "1", "2", "3", "4":
		return m, m.switchTab(tab(key[0] - '1'))
	}

	if m.tab == tabHome {
		return m.handleHomeKey(key)
	}
	return m.handleGridKey(key)
}

// switchTab activates t. The search input takes focus on entry.
func (m *browseModel) switchTab(t tab) tea.Cmd {
	m.tab = t
	m.details = nil
	m.detailsLoading = false
	if t == tabSearch {
		return m.input.Focus()
	}
	m.input.Blur()
	if t == tabWishlist {
		m.wishCursor = clampCursor(m.wishCursor, len(m.wishlistItems()))
	}
	return m.maybeLoadMore(t)
}

func (m browseModel) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "down":
		m.input.Blur()
		m.searchSeq++ // drop the pending debounce tick
		return m, m.applySearch()
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, cmd
	}

	m.searchSeq++
	seq := m.searchSeq
	tick := tea.Tick(m.opts.Debounce, func(time.Time) tea.Msg { return searchTickMsg{seq: seq} })
	return m, tea.Batch(cmd, tick)
}

// searchQuery builds the query from the input and the filter choices.
func (m browseModel) searchQuery() core.FetchQuery {
	return core.FetchQuery{
		Endpoint: core.EndpointSearch,
		Text:     strings.TrimSpace(m.input.Value()),
		Language: searchLanguages[m.langIdx],
		Rating:   ratingBuckets[m.ratingIdx],
	}
}

// applySearch points the search loader at the current query. A changed
// query drops the old results and any load still in flight.
func (m *browseModel) applySearch() tea.Cmd {
	q := m.searchQuery()
	if !m.search.SetQuery(q) {
		return nil
	}
	m.searchCursor = 0
	if q.Text == "" {
		return nil
	}
	return tea.Batch(m.loadNext(tabSearch), m.spinner.Tick)
}

func (m browseModel) handleHomeKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "up", "k":
		m.homeRow--
	case "down", "j":
		m.homeRow++
	case "left", "h":
		m.slide(layout.Left)
	case "right", "l":
		m.slide(layout.Right)
	case "w":
		if it, ok := m.homeSelected(); ok {
			m.toggle(it)
		}
	case "enter":
		if it, ok := m.homeSelected(); ok {
			return m, m.openDetails(it)
		}
	case "r":
		m.homeReady = false
		return m, tea.Batch(m.loadHome(), m.spinner.Tick)
	}
	m.homeRow = min(max(m.homeRow, 0), max(len(m.homeRows)-1, 0))
	return m, nil
}

func (m browseModel) handleGridKey(key string) (tea.Model, tea.Cmd) {
	items := m.items(m.tab)
	plan := m.plan()
	cur := m.cursor(m.tab)

	switch key {
	case "left", "h":
		*cur--
	case "right", "l":
		*cur++
	case "up", "k":
		*cur -= plan.ItemsPerRow
	case "down", "j":
		*cur += plan.ItemsPerRow
	case "pgdown", "]":
		*cur = (*cur/plan.ItemsPerPage + 1) * plan.ItemsPerPage
	case "pgup", "[":
		*cur = (*cur/plan.ItemsPerPage - 1) * plan.ItemsPerPage
	case "home", "g":
		*cur = 0
	case "end", "G":
		*cur = len(items) - 1
	case "w":
		if *cur < len(items) {
			m.toggle(items[*cur])
			items = m.items(m.tab)
		}
	case "enter":
		if *cur < len(items) {
			return m, m.openDetails(items[*cur])
		}
	case "/":
		if m.tab == tabSearch {
			return m, m.input.Focus()
		}
	case "L":
		if m.tab == tabSearch {
			m.langIdx = (m.langIdx + 1) % len(searchLanguages)
			return m, m.applySearch()
		}
	case "R":
		if m.tab == tabSearch {
			m.ratingIdx = (m.ratingIdx + 1) % len(ratingBuckets)
			return m, m.applySearch()
		}
	case "f":
		if m.tab == tabWishlist {
			m.wishFilter = (m.wishFilter + 1) % len(wishlist.Filters)
			*cur = 0
		}
	case "s":
		if m.tab == tabWishlist {
			m.wishSort = (m.wishSort + 1) % len(wishlist.Sorts)
			*cur = 0
		}
	}

	*cur = clampCursor(*cur, len(items))
	return m, m.maybeLoadMore(m.tab)
}

func clampCursor(cur, n int) int {
	return min(max(cur, 0), max(n-1, 0))
}

// cursor returns the selection of a grid tab.
func (m *browseModel) cursor(t tab) *int {
	switch t {
	case tabSearch:
		return &m.searchCursor
	case tabWishlist:
		return &m.wishCursor
	default:
		return &m.popularCursor
	}
}

// loader returns the loader behind a tab, or nil for tabs without one.
func (m browseModel) loader(t tab) *accumulator.Loader {
	switch t {
	case tabPopular:
		return m.popular
	case tabSearch:
		return m.search
	}
	return nil
}

// items returns the entries a grid tab shows.
func (m browseModel) items(t tab) []core.CatalogItem {
	if t == tabWishlist {
		return m.wishlistItems()
	}
	if l := m.loader(t); l != nil {
		return l.Snapshot().Items
	}
	return nil
}

func (m browseModel) wishlistItems() []core.CatalogItem {
	return wishlist.Apply(m.wishlist.List(), wishlist.Options{
		Filter: wishlist.Filters[m.wishFilter],
		Sort:   wishlist.Sorts[m.wishSort],
		Locale: m.opts.Locale,
	})
}

// maybeLoadMore requests the next page once the selection is within a
// page of the end of what has been loaded.
func (m *browseModel) maybeLoadMore(t tab) tea.Cmd {
	l := m.loader(t)
	if l == nil || l.Loading() {
		return nil
	}
	if t == tabSearch && l.Query().Text == "" {
		return nil
	}
	set := l.Snapshot()
	if set.Exhausted || *m.cursor(t)+m.plan().ItemsPerPage < len(set.Items) {
		return nil
	}
	return tea.Batch(m.loadNext(t), m.spinner.Tick)
}

func (m browseModel) loadNext(t tab) tea.Cmd {
	l := m.loader(t)
	if l == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		set, err := l.LoadNext(ctx)
		return pageLoadedMsg{tab: t, set: set, err: err}
	}
}

func (m browseModel) loadHome() tea.Cmd {
	ctx, source, logger := m.ctx, m.source, m.logger
	return func() tea.Msg {
		return homeLoadedMsg{rows: home.Load(ctx, source, home.DefaultRows(), logger)}
	}
}

func (m *browseModel) openDetails(item core.CatalogItem) tea.Cmd {
	m.detailsLoading = true
	ctx, source, id := m.ctx, m.source, item.ID
	return tea.Batch(func() tea.Msg {
		d, err := source.Details(ctx, id)
		return detailsLoadedMsg{details: d, err: err}
	}, m.spinner.Tick)
}

// profile returns the card footprint for the current terminal width.
func (m browseModel) profile() layout.Profile {
	return m.opts.Planner.Profile(m.width)
}

// plan sizes the grid for the space left by the surrounding chrome.
func (m browseModel) plan() layout.Plan {
	return m.opts.Planner.Plan(m.width, m.gridHeight(), m.width)
}

// gridHeight is the terminal height minus tabs, pager, status and help lines.
func (m browseModel) gridHeight() int {
	chrome := 7
	if m.tab == tabSearch || m.tab == tabWishlist {
		chrome += 3
	}
	return max(1, m.height-chrome)
}

func rowContentWidth(n int, prof layout.Profile) int {
	if n == 0 {
		return 0
	}
	return n*(prof.ItemWidth+prof.Gap) - prof.Gap
}

// rowOffset returns the slider offset of home row i, clamped to the row's
// current scroll range.
func (m browseModel) rowOffset(i int, prof layout.Profile) int {
	if i >= len(m.offsets) || i >= len(m.homeRows) {
		return 0
	}
	maxScroll := layout.MaxScroll(rowContentWidth(len(m.homeRows[i].Items), prof), m.width)
	return min(m.offsets[i], maxScroll)
}

// firstVisible returns the index of the first card fully inside the window.
func firstVisible(offset int, prof layout.Profile) int {
	footprint := max(prof.ItemWidth+prof.Gap, 1)
	return (offset + footprint - 1) / footprint
}

func (m *browseModel) slide(dir layout.Direction) {
	if m.homeRow >= len(m.homeRows) {
		return
	}
	prof := m.profile()
	maxScroll := layout.MaxScroll(rowContentWidth(len(m.homeRows[m.homeRow].Items), prof), m.width)
	m.offsets[m.homeRow] = layout.Slide(m.rowOffset(m.homeRow, prof), m.width, maxScroll, dir)
}

// homeSelected returns the first visible card of the selected home row.
func (m browseModel) homeSelected() (core.CatalogItem, bool) {
	if m.homeRow >= len(m.homeRows) {
		return core.CatalogItem{}, false
	}
	items := m.homeRows[m.homeRow].Items
	i := firstVisible(m.rowOffset(m.homeRow, m.profile()), m.profile())
	if i >= len(items) {
		return core.CatalogItem{}, false
	}
	return items[i], true
}

func (m *browseModel) toggle(item core.CatalogItem) {
	added, err := m.wishlist.Toggle(item)
	if err != nil {
		m.setError(fmt.Errorf("wishlist: %w", err))
		return
	}
	if added {
		m.setInfo("♥ Added " + item.Title)
	} else {
		m.setInfo("Removed " + item.Title)
	}
	if m.tab == tabWishlist {
		m.wishCursor = clampCursor(m.wishCursor, len(m.wishlistItems()))
	}
}

func (m *browseModel) setError(err error) {
	if errors.Is(err, context.Canceled) {
		m.logger.Debug("request canceled", slog.String("error", err.Error()))
		return
	}
	if catalog.IsUserFacing(err) {
		m.logger.Warn("catalog request failed", slog.String("error", err.Error()))
	} else {
		m.logger.Error("browser error", slog.String("error", err.Error()))
	}
	m.status = describeError(err).Error()
	m.statusErr = true
}

func (m *browseModel) setInfo(text string) {
	m.status = text
	m.statusErr = false
}

func (m *browseModel) clearStatus() {
	m.status = ""
	m.statusErr = false
}
