package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "records",
		Short:         "Client and contact records web application",
		SilenceUsage:  true,
		// serve is the default action
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
	cmd.AddCommand(newServeCmd(), newMigrateCmd(), newSeedCmd())
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run DB migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap()
			if err != nil {
				return err
			}
			defer app.Close()
			if err := app.migrate(); err != nil {
				return err
			}
			app.log.Info("Migrations completed successfully")
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert demo clients and people and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap()
			if err != nil {
				return err
			}
			defer app.Close()
			if err := app.migrate(); err != nil {
				return err
			}
			if err := app.seed(); err != nil {
				return err
			}
			app.log.Info("Seeding completed successfully")
			return nil
		},
	}
}

func runServe(cmd *cobra.Command) error {
	app, err := bootstrap()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.migrate(); err != nil {
		return err
	}
	if app.cfg.App.Seed {
		if err := app.seed(); err != nil {
			return err
		}
	}
	return app.serve(cmd.Context())
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
