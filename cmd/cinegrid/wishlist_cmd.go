package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/vadimtrunov/cinegrid/internal/core"
	"github.com/vadimtrunov/cinegrid/internal/wishlist"
)

// newWishlistCmd returns the "wishlist" subcommand group.
func newWishlistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wishlist",
		Short: "Manage the local wishlist",
	}

	cmd.AddCommand(
		newWishlistListCmd(),
		newWishlistToggleCmd(),
		newWishlistClearCmd(),
	)
	return cmd
}

func newWishlistListCmd() *cobra.Command {
	var filter, sort string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved movies",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := wishlist.ParseFilter(filter)
			if err != nil {
				return err
			}
			s, err := wishlist.ParseSort(sort)
			if err != nil {
				return err
			}
			svc, err := prepare()
			if err != nil {
				return err
			}

			opts := wishlist.Options{Filter: f, Sort: s, Locale: language.Make(svc.cfg.TMDb.Language)}
			writeWishlist(cmd.OutOrStdout(), svc.wishlist.List(), opts)
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", string(wishlist.FilterAll), "all, high-rated or recent")
	cmd.Flags().StringVar(&sort, "sort", string(wishlist.SortDateDesc),
		"date-desc, date-asc, title-asc, title-desc, rating-desc or rating-asc")
	return cmd
}

func writeWishlist(w io.Writer, all []core.CatalogItem, opts wishlist.Options) {
	items := wishlist.Apply(all, opts)
	fmt.Fprintln(w, styleHeader.Render(fmt.Sprintf("Wishlist · %s · %s", opts.Filter, opts.Sort)))
	switch {
	case len(all) == 0:
		fmt.Fprintln(w, styleDim.Render("Your wishlist is empty. Add movies with: cinegrid wishlist toggle <id>"))
	case len(items) == 0:
		fmt.Fprintln(w, styleDim.Render("No entries match the filter."))
	default:
		printItems(w, items, 1, nil)
		fmt.Fprintln(w, styleDim.Render(fmt.Sprintf("%d of %d entries", len(items), len(all))))
	}
}

func newWishlistToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle [id]",
		Short: "Add a movie to the wishlist, or remove it if already saved",
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

			item, added, err := svc.wishlist.ToggleFunc(id, func() (core.CatalogItem, error) {
				cat, err := svc.requireCatalog(cmd.Context())
				if err != nil {
					return core.CatalogItem{}, err
				}
				d, err := cat.Details(cmd.Context(), id)
				if err != nil {
					return core.CatalogItem{}, describeError(err)
				}
				return d.Item(), nil
			})
			if err != nil {
				return err
			}
			if added {
				fmt.Fprintln(cmd.OutOrStdout(), styleSuccess.Render("♥ Added "+item.Title))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), styleSuccess.Render("Removed "+item.Title))
			}
			return nil
		},
	}
}

func newWishlistClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every entry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := prepare()
			if err != nil {
				return err
			}
			n := svc.wishlist.Len()
			if err := svc.wishlist.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), styleSuccess.Render(fmt.Sprintf("✓ Removed %d entries", n)))
			return nil
		},
	}
}
