package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vadimtrunov/cinegrid/internal/accumulator"
	"github.com/vadimtrunov/cinegrid/internal/catalog"
	"github.com/vadimtrunov/cinegrid/internal/core"
	"github.com/vadimtrunov/cinegrid/internal/home"
)

const (
	maxPages    = 10
	homeRowSize = 10
)

// listFlags are the flags shared by the listing commands.
type listFlags struct {
	page   int
	pages  int
	year   int
	lang   string
	rating string
}

func (f *listFlags) register(cmd *cobra.Command, withYear bool) {
	cmd.Flags().IntVar(&f.page, "page", 1, "first page to fetch")
	cmd.Flags().IntVar(&f.pages, "pages", 1, fmt.Sprintf("number of pages to fetch (1-%d)", maxPages))
	cmd.Flags().StringVar(&f.lang, "lang", core.LanguageAll, "original-language filter, e.g. ko or en")
	cmd.Flags().StringVar(&f.rating, "rating", "all", "rating filter: all, <=4, 6 or 6-7")
	if withYear {
		cmd.Flags().IntVar(&f.year, "year", 0, "release year")
	}
}

// query validates the flags and builds the first-page query.
func (f listFlags) query(endpoint core.EndpointKind) (core.FetchQuery, error) {
	if f.page < 1 {
		return core.FetchQuery{}, fmt.Errorf("--page must be at least 1, got %d", f.page)
	}
	if f.pages < 1 || f.pages > maxPages {
		return core.FetchQuery{}, fmt.Errorf("--pages must be between 1 and %d, got %d", maxPages, f.pages)
	}
	if f.year < 0 {
		return core.FetchQuery{}, fmt.Errorf("--year must not be negative, got %d", f.year)
	}
	rating, err := core.ParseRatingBucket(f.rating)
	if err != nil {
		return core.FetchQuery{}, fmt.Errorf("--rating: %w", err)
	}
	lang := strings.ToLower(strings.TrimSpace(f.lang))
	if lang == "" {
		lang = core.LanguageAll
	}
	return core.FetchQuery{
		Endpoint: endpoint,
		Year:     f.year,
		Language: lang,
		Rating:   rating,
		Page:     f.page,
	}, nil
}

func newPopularCmd() *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:   "popular",
		Short: "List popular movies",
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := flags.query(core.EndpointPopular)
			if err != nil {
				return err
			}
			return runListing(cmd, "Popular", q, flags.pages)
		},
	}
	flags.register(cmd, false)
	return cmd
}

func newNowPlayingCmd() *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:     "now-playing",
		Aliases: []string{"now"},
		Short:   "List movies now in theaters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := flags.query(core.EndpointNowPlaying)
			if err != nil {
				return err
			}
			return runListing(cmd, "Now Playing", q, flags.pages)
		},
	}
	flags.register(cmd, false)
	return cmd
}

func newDiscoverCmd() *cobra.Command {
	var (
		flags listFlags
		genre string
	)
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "List popular movies of a genre",
		Example: `  cinegrid discover --genre horror
  cinegrid discover --genre 878 --year 2019 --rating 7`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, ok := catalog.LookupGenre(genre)
			if !ok {
				return fmt.Errorf("unknown genre %q: use a numeric id or one of %s", genre, genreNames())
			}
			q, err := flags.query(core.EndpointDiscover)
			if err != nil {
				return err
			}
			q.GenreID = g.ID
			title := g.Name
			if title == "" {
				title = fmt.Sprintf("Genre %d", g.ID)
			}
			return runListing(cmd, title, q, flags.pages)
		},
	}
	cmd.Flags().StringVarP(&genre, "genre", "g", "", "genre id or name")
	_ = cmd.MarkFlagRequired("genre")
	flags.register(cmd, true)
	return cmd
}

func newSearchCmd() *cobra.Command {
	var flags listFlags
	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Search movies by title",
		Example: `  cinegrid search "blade runner"
  cinegrid search parasite --lang ko`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := flags.query(core.EndpointSearch)
			if err != nil {
				return err
			}
			q.Text = strings.Join(args, " ")
			return runListing(cmd, "Search: "+q.Text, q, flags.pages)
		},
	}
	flags.register(cmd, true)
	return cmd
}

func genreNames() string {
	names := make([]string, len(catalog.KnownGenres))
	for i, g := range catalog.KnownGenres {
		names[i] = strings.ToLower(g.Name)
	}
	return strings.Join(names, ", ")
}

// runListing fetches the requested pages and prints the accumulated set.
func runListing(cmd *cobra.Command, title string, q core.FetchQuery, pages int) error {
	svc, err := prepare()
	if err != nil {
		return err
	}
	cat, err := svc.requireCatalog(cmd.Context())
	if err != nil {
		return err
	}

	set, err := fetchPages(cmd.Context(), cat, q, pages)
	if err != nil {
		return describeError(err)
	}
	writeListing(cmd.OutOrStdout(), title, q, set, svc.wishlist.Contains)
	return nil
}

// fetchPages accumulates up to pages pages starting at q.Page, stopping
// early once the catalog runs out.
func fetchPages(ctx context.Context, source core.CatalogSource, q core.FetchQuery, pages int) (accumulator.ResultSet, error) {
	set := accumulator.ResultSet{NextPage: max(q.Page, 1)}
	for range pages {
		q.Page = set.NextPage
		page, err := source.FetchPage(ctx, q)
		if err != nil {
			return set, err
		}
		set, err = accumulator.Append(set, page.Items, q)
		if err != nil {
			return set, err
		}
		if set.Exhausted {
			break
		}
	}
	return set, nil
}

func writeListing(w io.Writer, title string, q core.FetchQuery, set accumulator.ResultSet, saved func(int) bool) {
	header := title
	if filters := describeFilters(q); filters != "" {
		header += " (" + filters + ")"
	}
	fmt.Fprintln(w, styleHeader.Render(header))

	if len(set.Items) == 0 {
		fmt.Fprintln(w, styleDim.Render("No results."))
	}
	printItems(w, set.Items, 1, saved)

	if set.Exhausted {
		fmt.Fprintln(w, styleDim.Render("End of results."))
	} else {
		fmt.Fprintln(w, styleDim.Render(fmt.Sprintf("More with --page %d.", set.NextPage)))
	}
}

// describeFilters summarizes the client-side filters in effect.
func describeFilters(q core.FetchQuery) string {
	var parts []string
	if q.Language != "" && q.Language != core.LanguageAll {
		parts = append(parts, "lang "+q.Language)
	}
	if !q.Rating.IsAll() {
		parts = append(parts, "rating "+q.Rating.String())
	}
	if q.Year > 0 {
		parts = append(parts, "year "+strconv.Itoa(q.Year))
	}
	return strings.Join(parts, ", ")
}

func newGenresCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "genres",
		Short: "List the catalog's movie genres",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := prepare()
			if err != nil {
				return err
			}
			cat, err := svc.requireCatalog(cmd.Context())
			if err != nil {
				return err
			}
			genres, err := cat.Genres(cmd.Context())
			if err != nil {
				return describeError(err)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, styleHeader.Render("Genres"))
			for _, g := range genres {
				fmt.Fprintf(w, "%6d  %s\n", g.ID, g.Name)
			}
			return nil
		},
	}
}

func newDetailsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "details [id]",
		Short: "Show one movie in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid movie id %q", args[0])
			}

			svc, err := prepare()
			if err != nil {
				return err
			}
			cat, err := svc.requireCatalog(cmd.Context())
			if err != nil {
				return err
			}
			d, err := cat.Details(cmd.Context(), id)
			if err != nil {
				return describeError(err)
			}
			writeDetails(cmd.OutOrStdout(), d, svc.wishlist.Contains(d.ID))
			return nil
		},
	}
}

func writeDetails(w io.Writer, d *core.MovieDetails, saved bool) {
	title := d.Title
	if y := d.Year(); y > 0 {
		title += fmt.Sprintf(" (%d)", y)
	}
	if saved {
		title += " ♥"
	}
	fmt.Fprintln(w, styleHeader.Render(title))

	meta := formatStars(d.VoteAverage)
	if d.Runtime > 0 {
		meta += fmt.Sprintf(" · %d min", d.Runtime)
	}
	if d.OriginalLanguage != "" {
		meta += " · " + d.OriginalLanguage
	}
	fmt.Fprintln(w, styleStar.Render(meta))

	if d.Tagline != "" {
		fmt.Fprintln(w, styleInfo.Render(d.Tagline))
	}
	if d.Overview != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, d.Overview)
	}
	if len(d.Genres) > 0 {
		names := make([]string, len(d.Genres))
		for i, g := range d.Genres {
			names[i] = g.Name
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, styleDim.Render("Genres: ")+strings.Join(names, ", "))
	}
	if n := min(len(d.Credits.Cast), 5); n > 0 {
		names := make([]string, n)
		for i := range n {
			names[i] = d.Credits.Cast[i].Name
		}
		fmt.Fprintln(w, styleDim.Render("Cast:   ")+strings.Join(names, ", "))
	}
	if url := catalog.PosterURL(d.PosterPath, "w500"); url != "" {
		fmt.Fprintln(w, styleDim.Render("Poster: ")+url)
	}
	for _, v := range d.Videos.Results {
		if v.Site == "YouTube" && v.Type == "Trailer" {
			fmt.Fprintln(w, styleDim.Render("Trailer: ")+"https://www.youtube.com/watch?v="+v.Key)
			break
		}
	}
}

func newHomeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "home",
		Short: "Show the featured movie and the landing rows",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := prepare()
			if err != nil {
				return err
			}
			cat, err := svc.requireCatalog(cmd.Context())
			if err != nil {
				return err
			}

			rows := home.Load(cmd.Context(), cat, home.DefaultRows(), svc.logger)
			writeHome(cmd.OutOrStdout(), rows, svc.wishlist.Contains)
			return nil
		},
	}
}

func writeHome(w io.Writer, rows []home.Row, saved func(int) bool) {
	if featured, ok := home.Featured(rows); ok {
		fmt.Fprintln(w, styleHeader.Render("Featured: "+featured.Title))
		if featured.Overview != "" {
			fmt.Fprintln(w, styleDim.Render(featured.Overview))
		}
		if url := catalog.BackdropURL(featured.BackdropPath, "original"); url != "" {
			fmt.Fprintln(w, styleDim.Render("Backdrop: "+url))
		}
		fmt.Fprintln(w)
	}

	for _, r := range rows {
		fmt.Fprintln(w, styleInfo.Bold(true).Render(r.Spec.Title))
		if r.Err != nil {
			fmt.Fprintln(w, styleError.Render("  unavailable: "+describeError(r.Err).Error()))
			continue
		}
		printItems(w, r.Items[:min(len(r.Items), homeRowSize)], 1, saved)
		fmt.Fprintln(w)
	}
}
