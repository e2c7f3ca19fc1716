package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"propertystore/internal/client"
)

var (
	configPath string
	serverURL  string
	jsonOutput bool

	cfg     *Config
	api     *client.HTTPClient
	session *client.Session
)

var rootCmd = &cobra.Command{
	Use:           "crmctl",
	Short:         "Command line client for the PropertyStore CRM",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = LoadConfig(configPath)
		if err != nil {
			return err
		}
		if serverURL != "" {
			cfg.Server = serverURL
		}
		store, err := client.OpenKeyringStore("crmctl", cfg.KeyringDir)
		if err != nil {
			return err
		}
		api = client.NewHTTPClient(cfg.Server, cfg.Timeout)
		session = client.NewSession(store, api)
		return session.Init()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "path to crmctl config")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "API base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(closeCmd)
	rootCmd.AddCommand(dealsCmd)
	rootCmd.AddCommand(funnelCmd)
	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(requestsCmd)
}

// requireLogin stops commands that need a realtor token.
func requireLogin() error {
	if !session.State().Authenticated() {
		return errors.New("not logged in, run: crmctl login")
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			fmt.Fprintln(os.Stderr, "Session expired, please log in again: crmctl login")
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
