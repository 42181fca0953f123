// Package main provides the dbpediafacts CLI. It resolves Wikipedia/DBPedia identifiers
// to DBPedia resources, fetches population, area, flag and blazon facts for them,
// and can export the results to a local SQLite database.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"dbpediafacts/pkg/config"
	"dbpediafacts/pkg/db"
	"dbpediafacts/pkg/db/maintenance"
	"dbpediafacts/pkg/dbpedia"
	"dbpediafacts/pkg/logging"
	"dbpediafacts/pkg/request"
	"dbpediafacts/pkg/store"
	"dbpediafacts/pkg/tracker"
	"dbpediafacts/pkg/version"
)

const defaultConfigPath = "configs/dbpediafacts.yaml"

// endpointOverride replaces the SPARQL endpoint; only tests set it.
var endpointOverride string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, a := rootCmd()
	err := cmd.ExecuteContext(ctx)
	a.close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds what every subcommand needs once configuration is loaded.
type app struct {
	cfg     *config.Config
	tracker *tracker.Tracker
	client  *dbpedia.Client
	cleanup func()
}

func (a *app) close() {
	if a.tracker != nil {
		slog.Debug("Request stats", "requests", a.tracker)
	}
	if a.cleanup != nil {
		a.cleanup()
		a.cleanup = nil
	}
}

func (a *app) openDB() (*db.DB, error) {
	d, err := db.Init(a.cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return d, nil
}

func (a *app) openStore() (store.Store, error) {
	d, err := a.openDB()
	if err != nil {
		return nil, err
	}
	return store.NewSQLiteStore(d), nil
}

// rootCmd builds the command tree. The caller closes the returned app after Execute,
// whether or not the command failed.
func rootCmd() (*cobra.Command, *app) {
	var (
		configPath string
		logLevel   string
		trace      bool
		a          = &app{}
	)

	cmd := &cobra.Command{
		Use:           "dbpediafacts",
		Short:         "Fetch population, area, flag and blazon facts from DBPedia",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations["skipSetup"] == "true" {
				return nil
			}
			return a.setup(configPath, logLevel, trace)
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath, "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the server log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&trace, "trace", false, "Log full SPARQL queries and undecodable responses")

	cmd.AddCommand(
		resolveCmd(),
		fetchCmd(a),
		showCmd(a),
		pruneCmd(a),
		initConfigCmd(&configPath),
		versionCmd(),
	)

	return cmd, a
}

func (a *app) setup(configPath, logLevel string, trace bool) error {
	// A missing .env is fine
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Server.Level = logLevel
	}

	cleanup, err := logging.Init(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logging.EnableTrace = trace

	a.cfg = cfg
	a.cleanup = cleanup
	a.tracker = tracker.New()
	a.client = dbpedia.NewClient(request.New(cfg.Request, a.tracker), slog.Default())
	if endpointOverride != "" {
		a.client.SPARQLEndpoint = endpointOverride
	}

	slog.Debug("Configuration loaded", "path", configPath, "version", version.Version)
	return nil
}

func resolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "resolve <identifier>...",
		Short:       "Print the DBPedia resource each identifier resolves to",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipSetup": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, id := range args {
				if err := enc.Encode(dbpedia.Resolve(id)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

type fetchResult struct {
	Identifier string           `json:"identifier"`
	Resource   dbpedia.Resource `json:"resource"`
	Facts      dbpedia.Facts    `json:"facts"`
}

func fetchCmd(a *app) *cobra.Command {
	var (
		save    bool
		csvPath string
	)

	cmd := &cobra.Command{
		Use:   "fetch [identifier]...",
		Short: "Fetch facts for each identifier and print them as JSON lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := args
			if csvPath != "" {
				fromFile, err := maintenance.ReadIdentifiers(csvPath)
				if err != nil {
					return err
				}
				ids = append(ids, fromFile...)
			}
			if len(ids) == 0 {
				return errors.New("no identifiers given")
			}

			var st store.Store
			if save {
				var err error
				if st, err = a.openStore(); err != nil {
					return err
				}
				defer st.Close()
			}
			return a.fetch(cmd.Context(), cmd.OutOrStdout(), st, ids)
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "Save fetched facts to the database")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Also fetch the identifier column of this CSV file")
	return cmd
}

// fetch runs both queries for every identifier. A failing identifier is logged and skipped;
// the returned error reports how many failed.
func (a *app) fetch(ctx context.Context, out io.Writer, st store.Store, ids []string) error {
	enc := json.NewEncoder(out)
	failed := 0

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}

		r := a.client.Resolve(id)
		facts, err := r.FetchAll(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			slog.Error("Fetch failed", "identifier", id, "resource", r.Resource().URL, "error", err)
			failed++
			continue
		}

		if st != nil {
			if err := st.SaveFacts(ctx, r.Resource(), facts); err != nil {
				slog.Error("Save failed", "resource", r.Resource().URL, "error", err)
				failed++
				continue
			}
		}

		if err := enc.Encode(fetchResult{Identifier: id, Resource: r.Resource(), Facts: facts}); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d identifiers failed", failed, len(ids))
	}
	return nil
}

func showCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <identifier>",
		Short: "Print facts previously saved for an identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			res := dbpedia.Resolve(args[0])
			rec, err := st.GetFacts(cmd.Context(), res.URL)
			if err != nil {
				return fmt.Errorf("failed to read facts: %w", err)
			}
			if rec == nil {
				return fmt.Errorf("no saved facts for %s", res.URL)
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(fetchResult{
				Identifier: args[0],
				Resource:   rec.Resource,
				Facts:      rec.Facts,
			})
		},
	}
}

func pruneCmd(a *app) *cobra.Command {
	var olderThan string

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete saved facts that have not been refreshed recently",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			maxAge, err := config.ParseDuration(olderThan)
			if err != nil {
				return fmt.Errorf("invalid --older-than: %w", err)
			}

			d, err := a.openDB()
			if err != nil {
				return err
			}
			defer d.Close()

			n, err := maintenance.Prune(d, maxAge)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d records\n", n)
			return nil
		},
	}

	cmd.Flags().StringVar(&olderThan, "older-than", "30d", "Maximum age of kept records (units: s, m, h, d, w)")
	return cmd
}

func initConfigCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:         "init-config",
		Short:       "Write the default config file if it does not exist",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipSetup": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.GenerateDefault(*configPath); err != nil {
				return fmt.Errorf("failed to generate config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config file generated: %s\n", *configPath)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipSetup": "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dbpediafacts version %s\n", version.Version)
		},
	}
}
