package main

import (
	"os"
	"runtime/debug"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/vowhq/vowctl/internal/config"
	"github.com/vowhq/vowctl/internal/logger"
)

func main() {
	Execute()
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "vowctl",
	Short: "Terminal client for the Vow wedding-services marketplace",
	Long: `vowctl talks to the Vow marketplace API: sign in, browse services,
book providers, run provider onboarding with identity verification, and
manage your wedding planning lists.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	defer func() {
		if r := recover(); r != nil {
			pterm.Error.Printf("\nCaught panic: %v\n", r)
			pterm.Error.Printf("%s\n", debug.Stack())
			os.Exit(2)
		}
	}()

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		versionFlag, _ := cmd.Flags().GetBool("version")
		if versionFlag {
			pterm.Info.Println(config.GetVersionInfo())
			os.Exit(0)
		}
	}

	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func init() {
	config.InitFlags()
	rootCmd.PersistentFlags().AddFlagSet(pflag.CommandLine)
	rootCmd.PersistentFlags().BoolP("version", "v", false, "Show version information")

	rootCmd.AddCommand(
		loginCmd,
		logoutCmd,
		whoamiCmd,
		onboardCmd,
		bookCmd,
		servicesCmd,
		bookingsCmd,
		configCmd,
	)
}

// loadConfig loads configuration and initializes logging for a command run.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := logger.InitLogger(&cfg.Logging); err != nil {
		return nil, err
	}
	return cfg, nil
}
