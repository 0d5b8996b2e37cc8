package telegram

import (
	"strings"
	"testing"

	"github.com/vadimtrunov/cinegrid/internal/core"
)

func TestEscapeMdV2(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain text", in: "hello world", want: "hello world"},
		{name: "dots", in: "hello.", want: "hello\\."},
		{name: "exclamation", in: "Done!", want: "Done\\!"},
		{name: "parentheses", in: "(2024)", want: "\\(2024\\)"},
		{name: "brackets", in: "[link]", want: "\\[link\\]"},
		{name: "underscores", in: "foo_bar", want: "foo\\_bar"},
		{name: "stars", in: "*bold*", want: "\\*bold\\*"},
		{name: "mixed", in: "Dune (2021) - 8.0*", want: "Dune \\(2021\\) \\- 8\\.0\\*"},
		{name: "all specials", in: "_*[]()~`>#+-=|{}.!", want: "\\_\\*\\[\\]\\(\\)\\~\\`\\>\\#\\+\\-\\=\\|\\{\\}\\.\\!"},
		{name: "empty", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EscapeMdV2(tt.in)
			if got != tt.want {
				t.Errorf("EscapeMdV2(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatBold(t *testing.T) {
	got := FormatBold("Dune")
	want := "*Dune*"
	if got != want {
		t.Errorf("FormatBold(%q) = %q, want %q", "Dune", got, want)
	}

	got = FormatBold("Dune (2021)")
	want = "*Dune \\(2021\\)*"
	if got != want {
		t.Errorf("FormatBold(%q) = %q, want %q", "Dune (2021)", got, want)
	}
}

func TestFormatItalic(t *testing.T) {
	got := FormatItalic("description")
	want := "_description_"
	if got != want {
		t.Errorf("FormatItalic(%q) = %q, want %q", "description", got, want)
	}
}

func TestRatingStars(t *testing.T) {
	tests := []struct {
		vote float64
		want string
	}{
		{vote: 0, want: "☆☆☆☆☆ 0.0"},
		{vote: 7.9, want: "★★★★☆ 7.9"},
		{vote: 8.5, want: "★★★★☆ 8.5"},
		{vote: 9.0, want: "★★★★★ 9.0"},
		{vote: 10, want: "★★★★★ 10.0"},
		{vote: 12, want: "★★★★★ 12.0"},
		{vote: -1, want: "☆☆☆☆☆ -1.0"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := RatingStars(tt.vote); got != tt.want {
				t.Errorf("RatingStars(%v) = %q, want %q", tt.vote, got, tt.want)
			}
		})
	}
}

func TestItemLine(t *testing.T) {
	item := core.CatalogItem{ID: 1, Title: "Dune: Part Two", ReleaseDate: "2024-02-27", VoteAverage: 8.3}
	want := `3\. *Dune: Part Two* \(2024\) ★★★★☆ 8\.3`
	if got := itemLine(3, item); got != want {
		t.Errorf("itemLine() = %q, want %q", got, want)
	}

	noDate := core.CatalogItem{ID: 2, Title: "Untitled", VoteAverage: 0}
	want = `1\. *Untitled* ☆☆☆☆☆ 0\.0`
	if got := itemLine(1, noDate); got != want {
		t.Errorf("itemLine() without date = %q, want %q", got, want)
	}
}

func TestFormatListing(t *testing.T) {
	items := []core.CatalogItem{
		{ID: 1, Title: "Alien", ReleaseDate: "1979-05-25", VoteAverage: 8.2},
		{ID: 2, Title: "Aliens", ReleaseDate: "1986-07-18", VoteAverage: 7.9},
	}
	got := formatListing("Search: alien · page 2", 21, items)
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), got)
	}
	if lines[0] != "*Search: alien · page 2*" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], `21\. *Alien*`) {
		t.Errorf("first line = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], `22\. *Aliens*`) {
		t.Errorf("second line = %q", lines[2])
	}
}

func TestFormatDetails(t *testing.T) {
	d := &core.MovieDetails{
		CatalogItem: core.CatalogItem{ID: 27205, Title: "Inception", ReleaseDate: "2010-07-15", VoteAverage: 8.4, Overview: "A thief."},
		Tagline:     "Your mind is the scene of the crime.",
		Runtime:     148,
		Genres:      []core.Genre{{ID: 28, Name: "Action"}, {ID: 878, Name: "SF"}},
	}
	got := formatDetails(d)
	for _, want := range []string{
		`*Inception* \(2010\)`,
		`148 min`,
		`_Your mind is the scene of the crime\._`,
		`A thief\.`,
		`Genres: Action, SF`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("formatDetails() missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Cast:") {
		t.Error("expected no cast line without credits")
	}
}
