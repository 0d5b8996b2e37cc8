package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	version = "0.1.0"

	defaultConfigPath = "configs/cinegrid.yaml"
)

var configPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styleError.Render(err.Error()))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cinegrid",
		Short: "Browse the movie catalog from your terminal",
		Long: "cinegrid browses TMDb: popular and now-playing lists, genres and search,\n" +
			"with a local wishlist. Use it as a CLI, a full-screen browser, a Telegram bot\n" +
			"or an MCP tool server.",
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to configuration file")

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	rootCmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(),
		newRegisterCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newPopularCmd(),
		newNowPlayingCmd(),
		newDiscoverCmd(),
		newSearchCmd(),
		newGenresCmd(),
		newDetailsCmd(),
		newHomeCmd(),
		newWishlistCmd(),
		newBrowseCmd(),
		newBotCmd(),
		newMCPServeCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cinegrid v%s\n", version)
		},
	}
}
