// Package seed loads a tab separated file of movies into an empty catalog.
package seed

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/avast/retry-go"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/Ramsey-B/poppy/pkg/dataline"
)

const minColumns = 5

type Config struct {
	Path         string
	WaitAttempts int
	WaitDelay    time.Duration
}

// Result counts what happened to the rows of one run.
type Result struct {
	Inserted int `json:"inserted"`
	Errors   int `json:"errors"`
	Skipped  int `json:"skipped"`
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Catalog interface {
	Add(ctx context.Context, line string) error
}

type Counter interface {
	CountMovies(ctx context.Context) (int, error)
}

type Seeder struct {
	cfg     Config
	fs      afero.Fs
	db      Pinger
	counter Counter
	catalog Catalog
	logger  ectologger.Logger
}

func NewSeeder(cfg Config, fs afero.Fs, db Pinger, counter Counter, catalog Catalog, logger ectologger.Logger) *Seeder {
	return &Seeder{
		cfg:     cfg,
		fs:      fs,
		db:      db,
		counter: counter,
		catalog: catalog,
		logger:  logger,
	}
}

// Run seeds the catalog from the configured file. A missing file or a
// catalog that already has movies is not an error.
func (s *Seeder) Run(ctx context.Context) (Result, error) {
	log := s.logger.WithContext(ctx).WithField("path", s.cfg.Path)

	exists, err := afero.Exists(s.fs, s.cfg.Path)
	if err != nil {
		return Result{}, errors.Wrapf(err, "failed to stat seed file %s", s.cfg.Path)
	}
	if !exists {
		log.Warn("seed file not found, nothing to load")
		return Result{}, nil
	}

	if err := s.WaitForDB(ctx); err != nil {
		return Result{}, err
	}

	n, err := s.counter.CountMovies(ctx)
	if err != nil {
		return Result{}, errors.Wrap(err, "failed to count movies")
	}
	if n > 0 {
		log.WithField("movies", n).Info("catalog already populated, seed skipped")
		return Result{}, nil
	}

	f, err := s.fs.Open(s.cfg.Path)
	if err != nil {
		return Result{}, errors.Wrapf(err, "failed to open seed file %s", s.cfg.Path)
	}
	defer f.Close()

	res, err := s.Load(ctx, f)
	if err != nil {
		return res, err
	}

	log.WithFields(map[string]any{
		"inserted": res.Inserted,
		"errors":   res.Errors,
		"skipped":  res.Skipped,
	}).Info("seed completed")
	return res, nil
}

// WaitForDB pings the store until it answers or the attempts run out.
func (s *Seeder) WaitForDB(ctx context.Context) error {
	attempts := s.cfg.WaitAttempts
	if attempts < 1 {
		attempts = 1
	}

	err := retry.Do(
		func() error { return s.db.PingContext(ctx) },
		retry.Context(ctx),
		retry.Attempts(uint(attempts)),
		retry.Delay(s.cfg.WaitDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			s.logger.WithContext(ctx).WithError(err).Debugf("database not reachable yet (attempt %d)", n+1)
		}),
	)
	if err != nil {
		return errors.Wrapf(err, "database unreachable after %d attempts", attempts)
	}
	return nil
}

// Load feeds every row of r to the catalog. The first row is treated as a
// header when its age or year column is not an integer.
func (s *Seeder) Load(ctx context.Context, r io.Reader) (Result, error) {
	var res Result

	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	row := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, errors.Wrapf(err, "failed to read seed row %d", row+1)
		}
		row++

		if row == 1 && isHeader(record) {
			continue
		}

		log := s.logger.WithContext(ctx).WithField("row", row)
		if len(record) < minColumns {
			res.Errors++
			log.WithField("columns", len(record)).Warn("not enough columns")
			continue
		}

		if err := s.catalog.Add(ctx, ToLine(record)); err != nil {
			res.Errors++
			log.WithError(err).Warn("failed to load row")
			continue
		}
		res.Inserted++
	}

	return res, nil
}

// ToLine pads or truncates a record to a full data line.
func ToLine(record []string) string {
	fields := make([]string, dataline.FieldCount)
	for i := range fields {
		if i < len(record) {
			fields[i] = strings.TrimSpace(record[i])
		}
	}
	return strings.Join(fields, ",")
}

func isHeader(record []string) bool {
	if len(record) < 4 {
		return true
	}
	for _, col := range record[2:4] {
		if _, err := strconv.Atoi(strings.TrimSpace(col)); err != nil {
			return true
		}
	}
	return false
}

// OS returns the filesystem used outside of tests.
func OS() afero.Fs {
	return afero.NewOsFs()
}
