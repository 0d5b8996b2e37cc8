package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vadimtrunov/cinegrid/internal/core"
	"github.com/vadimtrunov/cinegrid/internal/home"
	"github.com/vadimtrunov/cinegrid/internal/layout"
	"github.com/vadimtrunov/cinegrid/internal/wishlist"
)

// pagerWidth is the number of consecutive page numbers the pager shows.
const pagerWidth = 5

// Browser styles.
var (
	styleTabActive = lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 1)
	styleTab       = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Padding(0, 1)

	styleCard         = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	styleCardSelected = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("13"))
	styleCardTitle    = lipgloss.NewStyle().Bold(true)

	stylePagerActive = lipgloss.NewStyle().Bold(true).Underline(true)
)

// View renders the tab bar, the active tab and the footer.
func (m browseModel) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var body string
	switch {
	case m.detailsLoading:
		body = m.spinner.View() + styleDim.Render(" Loading details...")
	case m.details != nil:
		body = m.renderDetails()
	case m.tab == tabHome:
		body = m.renderHome()
	case m.tab == tabPopular:
		body = m.renderPopular()
	case m.tab == tabSearch:
		body = m.renderSearch()
	case m.tab == tabWishlist:
		body = m.renderWishlist()
	}

	return m.renderTabs() + "\n\n" +
		body + "\n\n" +
		m.renderStatus() + "\n" +
		styleDim.Render(m.helpLine())
}

func (m browseModel) renderTabs() string {
	parts := make([]string, 0, tabCount+1)
	for t := range tabCount {
		label := fmt.Sprintf("%d %s", t+1, t)
		if t == m.tab {
			parts = append(parts, styleTabActive.Render(label))
		} else {
			parts = append(parts, styleTab.Render(label))
		}
	}
	if m.busy() {
		parts = append(parts, m.spinner.View())
	}
	return strings.Join(parts, " ")
}

func (m browseModel) renderStatus() string {
	if m.status == "" {
		return ""
	}
	style := styleInfo
	if m.statusErr {
		style = styleError
	}
	return style.Render(m.status) + styleDim.Render("  (esc to dismiss)")
}

func (m browseModel) helpLine() string {
	switch {
	case m.details != nil:
		return "w wishlist · esc close"
	case m.tab == tabHome:
		return "↑/↓ row · ←/→ slide · enter details · w wishlist · r reload · tab switch · q quit"
	case m.tab == tabSearch && m.input.Focused():
		return "type to search · enter results · tab switch · ctrl+c quit"
	case m.tab == tabSearch:
		return "/ edit · L language · R rating · arrows move · [/] page · enter details · w wishlist · q quit"
	case m.tab == tabWishlist:
		return "f filter · s sort · arrows move · [/] page · enter details · w remove · q quit"
	}
	return "arrows move · [/] page · enter details · w wishlist · tab switch · q quit"
}

// renderCard draws one movie card sized to the profile.
func (m browseModel) renderCard(item core.CatalogItem, prof layout.Profile, selected bool) string {
	mark := "☆"
	if m.wishlist.Contains(item.ID) {
		mark = "♥"
	}
	year := ""
	if y := item.Year(); y > 0 {
		year = strconv.Itoa(y)
	}
	body := strings.Join([]string{
		styleCardTitle.MaxWidth(prof.ItemWidth).Render(item.Title),
		year,
		fmt.Sprintf("%s %.1f", mark, item.VoteAverage),
	}, "\n")

	style := styleCard
	if selected {
		style = styleCardSelected
	}
	return style.
		Width(prof.ItemWidth).
		Height(prof.ItemHeight).
		MaxHeight(prof.ItemHeight).
		Render(body)
}

// renderGrid draws the page of items that holds the cursor.
func (m browseModel) renderGrid(items []core.CatalogItem, cursor int) string {
	plan := m.plan()
	prof := m.profile()
	page := cursor/plan.ItemsPerPage + 1
	start := (page - 1) * plan.ItemsPerPage

	var rows []string
	for r, row := range layout.Rows(layout.PageSlice(items, page, plan.ItemsPerPage), plan.ItemsPerRow) {
		cards := make([]string, 0, 2*len(row))
		for c, it := range row {
			if c > 0 {
				cards = append(cards, strings.Repeat(" ", prof.Gap))
			}
			cards = append(cards, m.renderCard(it, prof, start+r*plan.ItemsPerRow+c == cursor))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return strings.Join(rows, strings.Repeat("\n", prof.Gap+1))
}

// renderPager draws the numbered pager. A trailing marker means more
// pages can still be loaded.
func (m browseModel) renderPager(n, cursor int, exhausted bool) string {
	plan := m.plan()
	current := cursor/plan.ItemsPerPage + 1

	var parts []string
	for _, p := range layout.PageWindow(current, layout.PageCount(n, plan.ItemsPerPage), pagerWidth) {
		switch p {
		case layout.Ellipsis:
			parts = append(parts, styleDim.Render("…"))
		case current:
			parts = append(parts, stylePagerActive.Render(strconv.Itoa(p)))
		default:
			parts = append(parts, styleDim.Render(strconv.Itoa(p)))
		}
	}
	if !exhausted {
		parts = append(parts, styleDim.Render("›"))
	}
	return strings.Join(parts, " ")
}

func (m browseModel) renderHome() string {
	if !m.homeReady {
		return m.spinner.View() + styleDim.Render(" Loading...")
	}

	prof := m.profile()
	var parts []string
	if featured, ok := home.Featured(m.homeRows); ok {
		parts = append(parts, styleHeader.Render("★ "+featured.Title))
	}

	rowHeight := prof.ItemHeight + 2
	visible := max(1, (m.gridHeight()-2)/rowHeight)
	start := max(0, m.homeRow-visible+1)
	for i := start; i < min(len(m.homeRows), start+visible); i++ {
		r := m.homeRows[i]
		title := styleDim.Render(r.Spec.Title)
		if i == m.homeRow {
			title = styleInfo.Bold(true).Render("› " + r.Spec.Title)
		}
		parts = append(parts, title)
		if r.Err != nil {
			parts = append(parts, styleError.Render("  unavailable: "+describeError(r.Err).Error()))
			continue
		}
		parts = append(parts, m.renderSlider(i, prof))
	}
	return strings.Join(parts, "\n")
}

// renderSlider draws the cards of home row i that fit entirely in the window.
func (m browseModel) renderSlider(i int, prof layout.Profile) string {
	items := m.homeRows[i].Items
	offset := m.rowOffset(i, prof)
	footprint := prof.ItemWidth + prof.Gap
	first := firstVisible(offset, prof)

	cards := []string{strings.Repeat(" ", first*footprint-offset)}
	for j := first; j < len(items); j++ {
		if j*footprint+prof.ItemWidth > offset+m.width {
			break
		}
		if j > first {
			cards = append(cards, strings.Repeat(" ", prof.Gap))
		}
		cards = append(cards, m.renderCard(items[j], prof, i == m.homeRow && j == first))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func (m browseModel) renderPopular() string {
	set := m.popular.Snapshot()
	switch {
	case len(set.Items) == 0 && set.Exhausted:
		return styleDim.Render("No results.")
	case len(set.Items) == 0:
		return m.spinner.View() + styleDim.Render(" Loading...")
	}
	return m.renderGrid(set.Items, m.popularCursor) + "\n\n" +
		m.renderPager(len(set.Items), m.popularCursor, set.Exhausted)
}

func (m browseModel) renderSearch() string {
	q := m.search.Query()
	filters := styleDim.Render(fmt.Sprintf("language: %s · rating: %s", searchLanguages[m.langIdx], ratingBuckets[m.ratingIdx]))
	head := m.input.View() + "\n" + filters + "\n\n"

	set := m.search.Snapshot()
	switch {
	case q.Text == "":
		return head + styleDim.Render("Type to search.")
	case len(set.Items) == 0 && m.search.Loading():
		return head + m.spinner.View() + styleDim.Render(" Searching...")
	case len(set.Items) == 0 && set.Exhausted:
		return head + styleDim.Render("No results.")
	case len(set.Items) == 0:
		return head + styleDim.Render("Nothing matched the filters on the pages loaded so far.")
	}
	return head + m.renderGrid(set.Items, m.searchCursor) + "\n\n" +
		m.renderPager(len(set.Items), m.searchCursor, set.Exhausted)
}

func (m browseModel) renderWishlist() string {
	items := m.wishlistItems()
	head := styleDim.Render(fmt.Sprintf("filter: %s · sort: %s · %d of %d",
		wishlist.Filters[m.wishFilter], wishlist.Sorts[m.wishSort], len(items), m.wishlist.Len())) + "\n\n"

	switch {
	case m.wishlist.Len() == 0:
		return head + styleDim.Render("Your wishlist is empty. Press w on any movie to save it.")
	case len(items) == 0:
		return head + styleDim.Render("No entries match the filter.")
	}
	return head + m.renderGrid(items, m.wishCursor) + "\n\n" +
		m.renderPager(len(items), m.wishCursor, true)
}

func (m browseModel) renderDetails() string {
	var sb strings.Builder
	writeDetails(&sb, m.details, m.wishlist.Contains(m.details.ID))
	return lipgloss.NewStyle().Width(max(m.width, 20)).Render(strings.TrimRight(sb.String(), "\n"))
}
