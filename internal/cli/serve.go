package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Its-donkey/newsdesk/internal/metadata"
	"github.com/Its-donkey/newsdesk/internal/mockapi"
	"github.com/Its-donkey/newsdesk/internal/ui/server"
)

func newServeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser console and proxy /api to the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return server.Run(cmd.Context(), server.Options{
				Listen:    app.v.GetString(keyServeListen),
				AssetsDir: app.v.GetString(keyServeAssets),
				APIURL:    app.v.GetString(keyAPIURL),
				Logger:    app.logger,
			})
		},
	}
	cmd.Flags().String("listen", "127.0.0.1:4173", "Address to serve the console on")
	cmd.Flags().String("assets", "web", "Directory holding main.wasm and wasm_exec.js")
	_ = app.v.BindPFlag(keyServeListen, cmd.Flags().Lookup("listen"))
	_ = app.v.BindPFlag(keyServeAssets, cmd.Flags().Lookup("assets"))
	return cmd
}

func newMockCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Run the development backend with canned documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMock(cmd.Context(), app)
		},
	}
	cmd.Flags().String("listen", "127.0.0.1:8000", "Address for the development backend")
	cmd.Flags().String("db", "data/adverts.db", "SQLite file or postgres:// URL for saved adverts")
	cmd.Flags().String("fixtures", "", "YAML fixtures (default: built-in documents)")
	_ = app.v.BindPFlag(keyMockListen, cmd.Flags().Lookup("listen"))
	_ = app.v.BindPFlag(keyMockDB, cmd.Flags().Lookup("db"))
	_ = app.v.BindPFlag(keyMockFixture, cmd.Flags().Lookup("fixtures"))
	return cmd
}

func runMock(ctx context.Context, app *App) error {
	fixtures, err := mockapi.LoadFixtures(app.v.GetString(keyMockFixture))
	if err != nil {
		return err
	}
	store, err := mockapi.OpenAdverts(ctx, app.v.GetString(keyMockDB))
	if err != nil {
		return err
	}
	defer store.Close()

	srv, err := mockapi.New(mockapi.Options{
		Username: app.v.GetString(keyAPIUser),
		Password: app.v.GetString(keyAPIPassword),
		Fixtures: fixtures,
		Adverts:  store,
		Scraper:  metadata.NewService(nil, app.logger),
		Logger:   app.logger,
	})
	if err != nil {
		return fmt.Errorf("start development backend: %w", err)
	}
	return srv.Run(ctx, app.v.GetString(keyMockListen))
}
