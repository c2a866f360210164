package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/srininfo19-png/Salesdashboard-GRT/internal/api"
	"github.com/srininfo19-png/Salesdashboard-GRT/internal/auth"
	"github.com/srininfo19-png/Salesdashboard-GRT/internal/config"
	"github.com/srininfo19-png/Salesdashboard-GRT/internal/exporter"
	"github.com/srininfo19-png/Salesdashboard-GRT/internal/importer"
	"github.com/srininfo19-png/Salesdashboard-GRT/internal/logging"
	"github.com/srininfo19-png/Salesdashboard-GRT/internal/server"
	"github.com/srininfo19-png/Salesdashboard-GRT/internal/store"
	"github.com/srininfo19-png/Salesdashboard-GRT/internal/util"
)

var (
	// Global flags
	configPath string
	verbose    bool
	dataDir    string
	backend    string

	// serve flags
	port      int
	devMode   bool
	ephemeral bool
	openFlag  bool

	// import/export flags
	noPreserve bool
	showroom   string
	month      string
	counter    string
	sortField  string
	sortOrder  string
	asAdmin    bool

	// hash-password flags
	savePassword bool

	logger *zap.Logger
	cfg    *config.AppConfig
	info   config.LoadConfigInfo
)

var rootCmd = &cobra.Command{
	Use:   "salesdash",
	Short: "Sales performance dashboard",
	Long: `salesdash serves a sales performance dashboard: upload the monthly sales sheet,
see per-salesman totals, cross-sale percentages and rankings, and track training status.

Run without a subcommand to start the server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, info, err = config.LoadConfigWithInfo(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logger, err = logging.New(verbose || devMode || cfg.Server.DevMode)
		if err != nil {
			return err
		}
		if info.Path != "" {
			logger.Debug("config loaded", zap.String("path", info.Path))
		}
		if dataDir != "" {
			cfg.Data.DataDir = dataDir
		}
		if backend != "" {
			cfg.Data.Backend = backend
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard server",
	RunE:  runServe,
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Replace the stored dataset with a .xlsx/.xls sales sheet",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export [out.xlsx]",
	Short: "Write the training report for the current data",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print a bcrypt hash for auth.admin_password_hash",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := auth.HashPassword(args[0], 0)
		if err != nil {
			return err
		}
		if !savePassword {
			fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return nil
		}
		path := configPath
		if path == "" {
			path = config.DefaultPath()
		}
		if err := config.SaveAdminPasswordHash(path, string(hash)); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "admin password hash saved to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: config.toml next to the executable)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "storage backend: sqlite, file or memory")

	for _, cmd := range []*cobra.Command{rootCmd, serveCmd} {
		cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (ignored when config.toml sets server.port)")
		cmd.Flags().BoolVar(&devMode, "dev", false, "development mode")
		cmd.Flags().BoolVar(&ephemeral, "ephemeral", false, "keep data in memory only")
		cmd.Flags().BoolVar(&openFlag, "open", false, "open the dashboard in a browser")
	}

	importCmd.Flags().BoolVar(&noPreserve, "no-preserve", false, "do not re-apply saved training statuses")

	exportCmd.Flags().StringVar(&showroom, "showroom", "", "showroom filter")
	exportCmd.Flags().StringVar(&month, "month", "", "bill month filter")
	exportCmd.Flags().StringVar(&counter, "counter", "", "counter filter")
	exportCmd.Flags().StringVar(&sortField, "sort", "saleRank", "saleRank, crossSaleRank, totalSales or crossSales")
	exportCmd.Flags().StringVar(&sortOrder, "order", "asc", "asc or desc")
	exportCmd.Flags().BoolVar(&asAdmin, "amounts", true, "include sale amounts (false writes ranks only)")

	hashPasswordCmd.Flags().BoolVar(&savePassword, "save", false, "write the hash to auth.admin_password_hash in the config file")

	rootCmd.AddCommand(serveCmd, importCmd, exportCmd, hashPasswordCmd)
}

func openStore() (store.Backend, string, error) {
	dir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, "", fmt.Errorf("create data directory: %w", err)
	}
	st, err := store.Open(cfg.Data.Backend, dir)
	if err != nil {
		return nil, "", err
	}
	return st, dir, nil
}

func newAuthManager() (*auth.Manager, error) {
	return auth.NewManager(auth.Options{
		Username:           cfg.Auth.AdminUsername,
		Password:           cfg.Auth.AdminPassword,
		PasswordHash:       cfg.Auth.AdminPasswordHash,
		SessionTTL:         cfg.Auth.SessionTTL(),
		LoginRatePerMinute: cfg.Auth.LoginRatePerMinute,
	}, logger.Named("auth"))
}

func runServe(cmd *cobra.Command, args []string) error {
	if port > 0 && !info.PortSpecified {
		cfg.Server.Port = port
	}
	if devMode {
		cfg.Server.DevMode = true
	}
	if ephemeral {
		cfg.Data.Backend = store.KindMemory
	}
	if openFlag {
		cfg.Server.OpenBrowser = true
	}

	st, dir, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	am, err := newAuthManager()
	if err != nil {
		return err
	}
	if cfg.Auth.AdminPassword == "" && cfg.Auth.AdminPasswordHash == "" {
		logger.Warn("using the default admin password; set auth.admin_password_hash")
	}

	srv, err := server.NewServer(cfg, st, am, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	logger.Info("starting",
		zap.String("url", url),
		zap.String("backend", cfg.Data.Backend),
		zap.String("data_dir", dir),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx, addr)
	})
	if cfg.Server.OpenBrowser && !cfg.Server.DevMode {
		g.Go(func() error {
			if err := util.OpenBrowserWithFallback(url); err != nil {
				logger.Info("open the dashboard manually", zap.String("url", url))
			}
			return nil
		})
	}
	return g.Wait()
}

func runImport(cmd *cobra.Command, args []string) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	coord := importer.NewCoordinator(st, logger.Named("importer"))
	last := importer.Drain(coord.Import(ctx, importer.ImportOptions{
		FilePath:         args[0],
		PreserveStatuses: !noPreserve,
	}), func(evt importer.ProgressEvent) {
		fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", evt.Type, evt.Message)
	})
	if last.Type != importer.EventDone {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.New(last.Message)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	st, _, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	am, err := newAuthManager()
	if err != nil {
		return err
	}
	h := api.NewHandler(st, am, api.Options{
		ReportFilename:  cfg.Report.Filename,
		ReportSheetName: cfg.Report.SheetName,
	}, logger.Named("api"))

	out, err := os.Create(args[0])
	if err != nil {
		return err
	}

	q := api.DashboardQuery{Sort: sortField, Order: sortOrder}
	q.Showroom, q.BillMonth, q.Counter = showroom, month, counter
	progress := func(p exporter.ProgressEvent) {
		fmt.Fprintf(cmd.OutOrStdout(), "[%3d%%] %s\n", p.Percent, p.Stage)
	}
	if err := h.WriteReport(cmd.Context(), out, q, asAdmin, progress); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "report written to %s\n", args[0])
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
