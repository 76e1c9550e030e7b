package main

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/acme-basket/internal/domain/basket"
	"github.com/xenking/acme-basket/internal/domain/money"
	"github.com/xenking/acme-basket/internal/rules"
)

const (
	distinctFPR   = 0.001
	progressEvery = 1_000_000
)

// fileReport summarises one scan log.
type fileReport struct {
	Path     string
	Baskets  int
	Failed   int
	Distinct int
	Revenue  money.Money
}

// replayFiles prices every file concurrently. The rule set is only read, so
// it is shared by all workers.
func replayFiles(ctx context.Context, set *rules.Set, files []string, workers int, expected uint) ([]fileReport, error) {
	reports := make([]fileReport, len(files))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, path := range files {
		g.Go(func() error {
			r, err := replayFile(ctx, set, path, expected)
			if err != nil {
				return errors.Wrapf(err, "replay %s", path)
			}
			reports[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func replayFile(ctx context.Context, set *rules.Set, path string, expected uint) (fileReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return fileReport{}, errors.Wrap(err, "open")
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return fileReport{}, errors.Wrap(err, "create gzip reader")
	}
	defer func() { _ = gz.Close() }()

	r, err := replay(ctx, set, gz, expected)
	if err != nil {
		return fileReport{}, err
	}
	r.Path = path

	slog.Info("file replayed",
		slog.String("path", path),
		slog.Int("baskets", r.Baskets),
		slog.Int("failed", r.Failed),
		slog.Int("distinct", r.Distinct),
		slog.String("revenue", r.Revenue.StringFixed(2)),
	)
	return r, nil
}

// replay prices each non-empty line of r as its own basket. Lines with an
// unknown code are counted as failed and skipped.
func replay(ctx context.Context, set *rules.Set, r io.Reader, expected uint) (fileReport, error) {
	var (
		report = fileReport{Revenue: money.Zero}
		seen   = bloom.NewWithEstimates(max(expected, 1), distinctFPR)
	)

	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		if err := ctx.Err(); err != nil {
			return fileReport{}, err
		}

		codes := parseLine(scanner.Text())
		if codes == nil {
			continue
		}

		total, err := price(set, codes)
		if err != nil {
			var notFound *basket.ProductNotFoundError
			if errors.As(err, &notFound) {
				report.Failed++
				slog.Debug("basket skipped", slog.Int("line", line), slog.String("code", notFound.Code))
				continue
			}
			return fileReport{}, errors.Wrapf(err, "line %d", line)
		}

		report.Baskets++
		report.Revenue = report.Revenue.Add(total)
		if !seen.TestAndAddString(signature(codes)) {
			report.Distinct++
		}

		if report.Baskets%progressEvery == 0 {
			slog.Info("replay progress", slog.Int("baskets", report.Baskets))
		}
	}
	if err := scanner.Err(); err != nil {
		return fileReport{}, errors.Wrap(err, "scan")
	}

	return report, nil
}

func price(set *rules.Set, codes []string) (money.Money, error) {
	b := basket.New(set.Catalogue, set.Delivery, set.Offers)
	for _, code := range codes {
		if err := b.Add(code); err != nil {
			return money.Zero, err
		}
	}
	return b.Total()
}

// parseLine splits "R01, R01,B01" into codes. Lines without codes yield nil.
func parseLine(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	parts := strings.Split(line, ",")
	codes := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			codes = append(codes, p)
		}
	}
	if len(codes) == 0 {
		return nil
	}
	return codes
}

// signature identifies a basket by its contents regardless of scan order.
func signature(codes []string) string {
	sorted := make([]string, len(codes))
	copy(sorted, codes)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}
