package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"servicehub/internal/config"
	"servicehub/internal/http/handlers"
	applog "servicehub/internal/log"
	"servicehub/internal/repos"
	"servicehub/internal/services"
)

// shutdownTimeout bounds how long in-flight requests get on SIGINT/SIGTERM.
const shutdownTimeout = 10 * time.Second

// env is what every subcommand needs once configuration is loaded.
type env struct {
	cfg config.Config
	db  *sqlx.DB
	svc *handlers.Services
}

func newRootCmd(load func() (config.Config, error)) *cobra.Command {
	var e env
	root := &cobra.Command{
		Use:           "servicehub",
		Short:         "Service marketplace for admins, providers and clients",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := applog.Init(cfg); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			db, err := repos.OpenDB(cfg.DBDSN)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			e = env{cfg: cfg, db: db, svc: handlers.NewServices(db, cfg, nil)}
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if e.db != nil {
				_ = e.db.Close()
			}
			applog.Sync()
		},
		RunE: func(cmd *cobra.Command, _ []string) error { return serve(cmd.Context(), &e) },
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the web server (default)",
		RunE:  func(cmd *cobra.Command, _ []string) error { return serve(cmd.Context(), &e) },
	})
	root.AddCommand(usersCmd(&e), invoicesCmd(&e))
	return root
}

func serve(ctx context.Context, e *env) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := handlers.NewApp(e.cfg, e.svc)
	errc := make(chan error, 1)
	go func() {
		applog.L().Info("server.start", zap.String("port", e.cfg.Port), zap.String("env", e.cfg.Env))
		errc <- app.Listen(":" + e.cfg.Port)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	applog.L().Info("server.stop")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return app.ShutdownWithContext(sctx)
}

func usersCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{Use: "users", Short: "Bulk user administration"}

	cmd.AddCommand(&cobra.Command{
		Use:   "export",
		Short: "Write all users as CSV to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.svc.Users.ExportCSV(cmd.OutOrStdout())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "import FILE",
		Short: "Create users from a CSV file (full_name,email,phone,role,is_approved,location,bio)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			res, err := e.svc.Users.ImportCSV(f)
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}
			applog.L().Info("users.import",
				zap.Int("imported", len(res.Imported)), zap.Int("skipped", res.Skipped), zap.Int("invalid", res.Invalid))
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d, skipped %d duplicates, %d invalid\n",
				len(res.Imported), res.Skipped, res.Invalid)
			return err
		},
	})

	return cmd
}

func invoicesCmd(e *env) *cobra.Command {
	var out, provider string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write invoices to an Excel workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			invs, err := e.svc.Invoices.List(services.InvoiceFilter{ProviderID: provider})
			if err != nil {
				return err
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := services.WriteXLSX(f, invs); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %d invoices to %s\n", len(invs), out)
			return err
		},
	}
	export.Flags().StringVarP(&out, "out", "o", "invoices.xlsx", "output file")
	export.Flags().StringVar(&provider, "provider", "", "only this provider's invoices")

	cmd := &cobra.Command{Use: "invoices", Short: "Invoice reports"}
	cmd.AddCommand(export)
	return cmd
}
