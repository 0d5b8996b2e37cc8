package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vadimtrunov/cinegrid/internal/core"
)

// mdV2Replacer escapes special characters for Telegram MarkdownV2.
var mdV2Replacer = strings.NewReplacer(
	`\`, `\\`,
	"_", "\\_",
	"*", "\\*",
	"[", "\\[",
	"]", "\\]",
	"(", "\\(",
	")", "\\)",
	"~", "\\~",
	"`", "\\`",
	">", "\\>",
	"#", "\\#",
	"+", "\\+",
	"-", "\\-",
	"=", "\\=",
	"|", "\\|",
	"{", "\\{",
	"}", "\\}",
	".", "\\.",
	"!", "\\!",
)

// EscapeMdV2 escapes a string for safe use in Telegram MarkdownV2.
func EscapeMdV2(s string) string {
	return mdV2Replacer.Replace(s)
}

// FormatBold returns MarkdownV2 bold text.
func FormatBold(s string) string {
	return "*" + EscapeMdV2(s) + "*"
}

// FormatItalic returns MarkdownV2 italic text.
func FormatItalic(s string) string {
	return "_" + EscapeMdV2(s) + "_"
}

// RatingStars renders a 0-10 vote average as five stars plus the number.
func RatingStars(vote float64) string {
	filled := int(vote/2 + 0.5)
	filled = min(max(filled, 0), 5)
	return fmt.Sprintf("%s%s %.1f",
		strings.Repeat("★", filled),
		strings.Repeat("☆", 5-filled),
		vote,
	)
}

// itemLine formats one listing line: "3. Title (2021) ★★★★☆ 7.9".
func itemLine(n int, item core.CatalogItem) string {
	var b strings.Builder
	b.WriteString(EscapeMdV2(strconv.Itoa(n) + ". "))
	b.WriteString(FormatBold(item.Title))
	if y := item.Year(); y > 0 {
		b.WriteString(" " + EscapeMdV2(fmt.Sprintf("(%d)", y)))
	}
	b.WriteString(" " + EscapeMdV2(RatingStars(item.VoteAverage)))
	return b.String()
}

// formatListing renders a titled, numbered listing starting at number first.
func formatListing(title string, first int, items []core.CatalogItem) string {
	lines := make([]string, 0, len(items)+1)
	lines = append(lines, FormatBold(title))
	for i, it := range items {
		lines = append(lines, itemLine(first+i, it))
	}
	return strings.Join(lines, "\n")
}

// formatDetails renders a details card.
func formatDetails(d *core.MovieDetails) string {
	var b strings.Builder
	b.WriteString(FormatBold(d.Title))
	if y := d.Year(); y > 0 {
		b.WriteString(" " + EscapeMdV2(fmt.Sprintf("(%d)", y)))
	}
	b.WriteString("\n" + EscapeMdV2(RatingStars(d.VoteAverage)))
	if d.Runtime > 0 {
		b.WriteString(EscapeMdV2(fmt.Sprintf(" · %d min", d.Runtime)))
	}
	if d.Tagline != "" {
		b.WriteString("\n" + FormatItalic(d.Tagline))
	}
	if d.Overview != "" {
		b.WriteString("\n\n" + EscapeMdV2(d.Overview))
	}
	if len(d.Genres) > 0 {
		names := make([]string, len(d.Genres))
		for i, g := range d.Genres {
			names[i] = g.Name
		}
		b.WriteString("\n\n" + EscapeMdV2("Genres: "+strings.Join(names, ", ")))
	}
	if n := min(len(d.Credits.Cast), 5); n > 0 {
		names := make([]string, n)
		for i := range n {
			names[i] = d.Credits.Cast[i].Name
		}
		b.WriteString("\n" + EscapeMdV2("Cast: "+strings.Join(names, ", ")))
	}
	return b.String()
}
