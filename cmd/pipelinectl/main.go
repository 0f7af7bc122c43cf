// Command pipelinectl manages the prospect pipeline from a terminal against
// the same storage as the API server.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/wolfman30/prospect-pipeline/internal/app/bootstrap"
	appconfig "github.com/wolfman30/prospect-pipeline/internal/config"
	"github.com/wolfman30/prospect-pipeline/internal/notify"
	"github.com/wolfman30/prospect-pipeline/internal/prospects"
	"github.com/wolfman30/prospect-pipeline/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()
	logger := logging.NewWithWriter(cfg.LogLevel, os.Stderr)

	app := &cliApp{cfg: cfg, logger: logger, openStore: openConfiguredStore, newSender: bootstrap.BuildEmailSender}
	if err := execute(context.Background(), app, newRootCmd(app, os.Stdout)); err != nil {
		os.Exit(1)
	}
}

// execute runs root and releases storage whether or not the command failed.
func execute(ctx context.Context, app *cliApp, root *cobra.Command) error {
	defer app.shutdown()
	return root.ExecuteContext(ctx)
}

// cliApp carries what every subcommand needs.
type cliApp struct {
	cfg    *appconfig.Config
	logger *logging.Logger
	today  string

	openStore func(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*prospects.Store, func(), error)
	newSender func(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (notify.EmailSender, error)

	store *prospects.Store
	close func()
}

func openConfiguredStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*prospects.Store, func(), error) {
	if !cfg.UsePostgres() {
		logger.Warn("no DATABASE_URL set; changes last only for this command")
	}
	storage, err := bootstrap.BuildStorage(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	store := prospects.NewStore(storage.Repository, logger).WithEventLog(storage.Events)
	return store, storage.Close, nil
}

func newRootCmd(app *cliApp, out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "pipelinectl",
		Short: "Manage the coaching prospect pipeline",
		Long: `pipelinectl lists, adds and moves prospects through the coaching funnel:
  cold > warm > ha-scheduled > ha-completed > client > coach-prospect > coach

Storage follows the API server's configuration (DATABASE_URL, STORE_BACKEND).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch cmd.Name() {
			case "help", "completion":
				return nil
			}
			return app.init(cmd.Context())
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&app.today, "today", "", "treat this date (YYYY-MM-DD) as today")

	root.AddCommand(
		newListCmd(app),
		newStatsCmd(app),
		newAddCmd(app),
		newContactCmd(app),
		newAdvanceCmd(app),
		newDeleteCmd(app),
		newTouchesCmd(app),
		newDigestCmd(app),
	)
	return root
}

func (a *cliApp) shutdown() {
	if a.close != nil {
		a.close()
		a.close = nil
	}
}

func (a *cliApp) init(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	store, closeFn, err := a.openStore(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	a.store, a.close = store, closeFn

	loc := a.cfg.Location()
	if a.today == "" {
		a.store.WithClock(prospects.SystemClock{Location: loc})
		return nil
	}
	day, err := prospects.ParseDate(a.today)
	if err != nil || day.IsZero() {
		return fmt.Errorf("--today: %w", prospects.ErrInvalidDate)
	}
	t, err := day.Time(loc)
	if err != nil {
		return err
	}
	a.store.WithClock(prospects.FixedClock(t.Add(12 * time.Hour)))
	return nil
}
