package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/uwnexus/watsnew/internal/profile"
	"github.com/uwnexus/watsnew/plugin/ai"
	"github.com/uwnexus/watsnew/plugin/markdown"
	"github.com/uwnexus/watsnew/server/harvest"
	"github.com/uwnexus/watsnew/server/ingest"
	"github.com/uwnexus/watsnew/internal/observability"
	"github.com/uwnexus/watsnew/server/ledger"
	"github.com/uwnexus/watsnew/server/recommend"
	apiv1 "github.com/uwnexus/watsnew/server/router/api/v1"
	"github.com/uwnexus/watsnew/store"
	"github.com/uwnexus/watsnew/store/db"
)

const version = "0.2.0"

var rootCmd = &cobra.Command{
	Use:   "watsnew",
	Short: "An opportunity recommendation service for UWaterloo students",
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p, st, err := newStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		embedder, err := newEmbedder(p)
		if err != nil {
			return err
		}

		metrics := observability.NewDefaultMetrics()
		lg := ledger.NewMemoryLedger()
		rec := recommend.NewRecommender(st, embedder, lg, metrics)
		metrics.CatalogSize.Set(float64(st.Catalog().Len()))

		e := echo.New()
		e.HideBanner = true
		e.HidePort = true
		svc := apiv1.NewAPIV1Service(p, st, rec, lg, metrics)
		svc.Register(e)

		address := fmt.Sprintf("%s:%d", p.Addr, p.Port)
		errCh := make(chan error, 1)
		go func() {
			if err := e.Start(address); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()
		fmt.Printf("watsnew %s listening on %s (mode=%s, driver=%s, items=%d)\n",
			version, address, p.Mode, p.Driver, st.Catalog().Len())

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed <file.json>",
	Short: "Merge a static catalog JSON file into the snapshot store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		p, st, err := newStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var records []ingest.RawRecord
		if err := json.Unmarshal(raw, &records); err != nil {
			return err
		}

		report, err := mergeRecords(ctx, p, st, records, store.OriginStaticCatalog)
		if err != nil {
			return err
		}
		printReport(report, st)
		return nil
	},
}

var harvestCmd = &cobra.Command{
	Use:   "harvest <campus|global>",
	Short: "Run the web harvester and merge new opportunities into the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var cfg harvest.Config
		switch args[0] {
		case "campus":
			cfg = harvest.CampusConfig()
		case "global":
			cfg = harvest.GlobalConfig()
		default:
			return fmt.Errorf("unknown harvest scope %q, expected \"campus\" or \"global\"", args[0])
		}

		ctx := cmd.Context()
		p, st, err := newStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		harvester := harvest.NewHarvester(harvest.NewWebSearcher())
		records, err := harvester.Run(ctx, cfg)
		if err != nil {
			return err
		}

		report, err := mergeRecords(ctx, p, st, records, cfg.Origin)
		if err != nil {
			return err
		}
		printReport(report, st)
		return nil
	},
}

var harvestClubsCmd = &cobra.Command{
	Use:   "harvest-clubs",
	Short: "Crawl the WUSA club directory and merge new clubs into the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		p, st, err := newStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		records, err := crawlClubs(ctx)
		if err != nil {
			return err
		}

		report, err := mergeRecords(ctx, p, st, records, store.OriginStaticCatalog)
		if err != nil {
			return err
		}
		printReport(report, st)
		return nil
	},
}

func newStore(ctx context.Context) (*profile.Profile, *store.Store, error) {
	p := &profile.Profile{
		Mode:    viper.GetString("mode"),
		Addr:    viper.GetString("addr"),
		Port:    viper.GetInt("port"),
		Data:    viper.GetString("data"),
		Driver:  viper.GetString("driver"),
		DSN:     viper.GetString("dsn"),
		Version: version,
	}
	p.FromEnv()
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}

	driver, err := db.NewDBDriver(p)
	if err != nil {
		return nil, nil, err
	}
	st := store.New(driver, p)
	if err := st.LoadCatalog(ctx); err != nil {
		st.Close()
		return nil, nil, err
	}
	return p, st, nil
}

// newEmbedder returns the configured backend, falling back to the
// deterministic mock in demo mode so the server runs without credentials.
func newEmbedder(p *profile.Profile) (ai.EmbeddingService, error) {
	cfg := ai.NewEmbeddingConfigFromProfile(p)
	if p.Mode == "demo" && p.EmbeddingAPIKey == "" {
		cfg.Provider = "mock"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return ai.NewEmbeddingService(cfg)
}

func mergeRecords(ctx context.Context, p *profile.Profile, st *store.Store, records []ingest.RawRecord, origin store.Origin) (*ingest.Report, error) {
	embedder, err := newEmbedder(p)
	if err != nil {
		return nil, err
	}
	pipeline := ingest.NewPipeline(st, embedder, markdown.NewService(), nil)
	return pipeline.Merge(ctx, records, origin)
}

func printReport(report *ingest.Report, st *store.Store) {
	fmt.Printf("batch %s: %d received, %d added, %d updated, %d dropped, catalog now %d items\n",
		report.BatchID, report.Total, report.Added, report.Updated, report.Dropped, st.Catalog().Len())
}

// crawlClubs fetches the club directory listing and every club detail page,
// pacing requests so the directory is not hammered.
func crawlClubs(ctx context.Context) ([]ingest.RawRecord, error) {
	client := &http.Client{Timeout: 15 * time.Second}
	limiter := rate.NewLimiter(rate.Every(time.Second), 1)

	urls, err := fetchListing(ctx, client, harvest.ClubDirectoryBaseURL)
	if err != nil {
		return nil, err
	}

	var records []ingest.RawRecord
	for _, pageURL := range urls {
		if err := limiter.Wait(ctx); err != nil {
			return records, err
		}
		record, err := fetchClubPage(ctx, client, pageURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skipping %s: %v\n", pageURL, err)
			continue
		}
		record.FetchedAt = time.Now().UTC()
		records = append(records, record)
	}
	return records, nil
}

func fetchListing(ctx context.Context, client *http.Client, baseURL string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/clubs", nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("club directory returned %s", resp.Status)
	}
	return harvest.ParseClubListing(resp.Body, baseURL)
}

func fetchClubPage(ctx context.Context, client *http.Client, pageURL string) (ingest.RawRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return ingest.RawRecord{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return ingest.RawRecord{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ingest.RawRecord{}, fmt.Errorf("club page returned %s", resp.Status)
	}
	return harvest.ParseClubPage(resp.Body, pageURL)
}

func init() {
	rootCmd.PersistentFlags().String("mode", "demo", `mode of the server, can be "prod", "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of the server")
	rootCmd.PersistentFlags().Int("port", 8230, "port of the server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "memory", `catalog snapshot driver, can be "memory", "sqlite" or "postgres"`)
	rootCmd.PersistentFlags().String("dsn", "", "database source name (DSN)")

	for _, name := range []string{"mode", "addr", "port", "data", "driver", "dsn"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}
	viper.SetEnvPrefix("watsnew")
	viper.AutomaticEnv()

	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(harvestCmd)
	rootCmd.AddCommand(harvestClubsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
