// Command basket-replay prices gzipped scan logs, one basket per line with
// comma-separated product codes, and reports revenue per file.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"runtime"

	"github.com/go-faster/errors"

	"github.com/xenking/acme-basket/internal/domain/catalogue"
	"github.com/xenking/acme-basket/internal/domain/money"
	"github.com/xenking/acme-basket/internal/rules"
	"github.com/xenking/acme-basket/internal/storage/postgres"
)

func main() {
	var (
		rulesFile   string
		databaseURL string
		workers     int
		expected    uint
	)

	flag.StringVar(&rulesFile, "rules", "", "pricing rules YAML file (built-in Acme rules when empty)")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL URL to load the catalogue from (optional, or DATABASE_URL env)")
	flag.IntVar(&workers, "workers", runtime.GOMAXPROCS(0), "files priced concurrently")
	flag.UintVar(&expected, "expected-baskets", 1_000_000, "expected baskets per file, sizes the distinct basket estimator")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if flag.NArg() == 0 {
		slog.Error("at least one .gz scan log is required")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, rulesFile, databaseURL, flag.Args(), workers, expected); err != nil {
		slog.Error("replay failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, rulesFile, databaseURL string, files []string, workers int, expected uint) error {
	set, err := rules.Load(rulesFile)
	if err != nil {
		return errors.Wrap(err, "load rules")
	}

	if databaseURL != "" {
		slog.Info("loading catalogue from database")

		pool, err := postgres.NewPool(ctx, databaseURL)
		if err != nil {
			return errors.Wrap(err, "connect to database")
		}
		defer pool.Close()

		cat, err := catalogue.Load(ctx, postgres.NewProductRepository(pool))
		if err != nil {
			return errors.Wrap(err, "load catalogue")
		}
		set.Catalogue = cat
	}

	slog.Info("replaying scan logs",
		slog.Int("files", len(files)),
		slog.Int("products", set.Catalogue.Len()),
		slog.Int("offers", len(set.Offers)),
	)

	reports, err := replayFiles(ctx, set, files, workers, expected)
	if err != nil {
		return err
	}

	var (
		baskets, failed int
		revenue         = money.Zero
	)
	for _, r := range reports {
		baskets += r.Baskets
		failed += r.Failed
		revenue = revenue.Add(r.Revenue)
	}

	slog.Info("replay completed",
		slog.Int("baskets", baskets),
		slog.Int("failed", failed),
		slog.String("revenue", revenue.StringFixed(2)),
	)
	return nil
}
