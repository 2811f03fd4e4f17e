package main

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vowhq/vowctl/internal/api"
	"github.com/vowhq/vowctl/internal/app"
	"github.com/vowhq/vowctl/internal/config"
	"github.com/vowhq/vowctl/internal/flows"
	"github.com/vowhq/vowctl/internal/session"
	"github.com/vowhq/vowctl/internal/tui"
	"github.com/vowhq/vowctl/internal/utils"
)

// warnSessionExpired is the CLI's redirect-to-sign-in equivalent.
func warnSessionExpired() {
	pterm.Warning.Println("Your session has expired. Please run `vowctl login` again.")
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the marketplace",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		email, _ := cmd.Flags().GetString("email")
		if email == "" {
			email, err = pterm.DefaultInteractiveTextInput.Show("Email")
			if err != nil {
				return err
			}
		}
		password, err := pterm.DefaultInteractiveTextInput.WithMask("*").Show("Password")
		if err != nil {
			return err
		}

		return app.Run(cfg, func(auth *api.AuthService) error {
			user, err := auth.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if user != nil && user.Name != "" {
				pterm.Success.Printfln("Signed in as %s", user.Name)
			} else {
				pterm.Success.Println("Signed in")
			}
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the local session",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return app.Run(cfg, func(auth *api.AuthService) error {
			if err := auth.Logout(cmd.Context()); err != nil {
				return err
			}
			pterm.Success.Println("Signed out")
			return nil
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return app.Run(cfg, func(store session.Store) error {
			creds, ok := store.Credentials()
			if !ok {
				pterm.Info.Println("Not signed in")
				return nil
			}
			if user, ok := store.User(); ok {
				pterm.Info.Printfln("%s <%s> (%s)", user.Name, user.Email, user.Role)
			}
			if exp, err := session.TokenExpiry(creds.AccessToken); err == nil {
				if time.Now().After(exp) {
					pterm.Warning.Println("Access token expired; it will be refreshed on the next request")
				} else {
					pterm.Info.Printfln("Access token valid until %s", exp.Format(time.RFC1123))
				}
			}
			return nil
		})
	},
}

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Run provider onboarding (business profile + identity verification)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return app.Run(cfg, func(client *api.Client, provider *api.ProviderService) error {
			client.OnSessionExpired(warnSessionExpired)

			machine, err := flows.NewOnboarding(flows.OnboardingDeps{
				Verifier:  provider,
				Registrar: provider,
				Capture:   &cfg.Capture,
			})
			if err != nil {
				return err
			}
			finished, err := tui.RunWizard("Provider onboarding", machine)
			if err != nil {
				return err
			}
			if finished {
				pterm.Success.Println("Onboarding submitted. You will be notified once your profile is approved.")
			} else {
				pterm.Info.Println("Onboarding left unfinished; your answers were not submitted.")
			}
			return nil
		})
	},
}

var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Book a service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return app.Run(cfg, func(client *api.Client, marketplace *api.Marketplace) error {
			client.OnSessionExpired(warnSessionExpired)

			machine, err := flows.NewBooking(marketplace.Bookings)
			if err != nil {
				return err
			}
			finished, err := tui.RunWizard("Book a service", machine)
			if err != nil {
				return err
			}
			if finished {
				pterm.Success.Println("Booking request sent.")
			}
			return nil
		})
	},
}

var servicesCmd = &cobra.Command{
	Use:   "services",
	Short: "List marketplace services",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		category, _ := cmd.Flags().GetString("category")
		district, _ := cmd.Flags().GetString("district")

		return app.Run(cfg, func(client *api.Client, marketplace *api.Marketplace) error {
			client.OnSessionExpired(warnSessionExpired)

			filter := url.Values{}
			if category != "" {
				filter.Set("category", category)
			}
			if district != "" {
				filter.Set("district", district)
			}
			services, err := marketplace.Services.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(services))
			for _, s := range services {
				rows = append(rows, []string{
					s.ID, s.Name, s.Category, s.District, utils.Money(s.Price),
				})
			}
			utils.RenderTable([]string{"ID", "Name", "Category", "District", "Price"}, rows)
			return nil
		})
	},
}

var bookingsCmd = &cobra.Command{
	Use:   "bookings",
	Short: "List your bookings",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return app.Run(cfg, func(client *api.Client, marketplace *api.Marketplace) error {
			client.OnSessionExpired(warnSessionExpired)

			bookings, err := marketplace.Bookings.List(cmd.Context(), nil)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(bookings))
			for _, b := range bookings {
				rows = append(rows, []string{
					b.ID, b.ServiceID, b.EventDate, strconv.Itoa(b.GuestCount), b.Status,
				})
			}
			utils.RenderTable([]string{"ID", "Service", "Date", "Guests", "Status"}, rows)
			return nil
		})
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage vowctl configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		dir := filepath.Join(home, ".config", "vowctl")
		path := filepath.Join(dir, "config.yaml")
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists at %s", path)
		}
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}

		defaults := map[string]any{
			"api": map[string]any{
				"base_url": "https://api.vow.example/api/v1",
				"timeout":  "15s",
			},
			"logging": map[string]any{
				"level":  "info",
				"format": "console",
			},
			"storage": map[string]any{
				"path": config.DefaultSessionPath(),
			},
			"capture": map[string]any{
				"command": "",
			},
		}
		data, err := yaml.Marshal(defaults)
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return err
		}
		pterm.Success.Printfln("Wrote %s", path)
		return nil
	},
}

func init() {
	loginCmd.Flags().String("email", "", "Account email (prompted when omitted)")
	servicesCmd.Flags().String("category", "", "Filter by category")
	servicesCmd.Flags().String("district", "", "Filter by district")
	configCmd.AddCommand(configInitCmd)
}
