// README: bench runs smoke checks and a load test against a running API and prints results.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

type benchConfig struct {
	BaseURL       string
	DSN           string
	RedisAddr     string
	MigrationPath string
	AdminToken    string
	Strict        bool
	Timeout       time.Duration
	Concurrency   int
	Duration      time.Duration
}

var benchCfg benchConfig

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Smoke-test and load a running API",
	RunE: func(cmd *cobra.Command, args []string) error {
		bc := benchCfg
		bc.BaseURL = strings.TrimRight(bc.BaseURL, "/")
		if bc.DSN == "" {
			bc.DSN = cfg.DB.DSN
		}
		if bc.RedisAddr == "" {
			bc.RedisAddr = cfg.Redis.Addr
		}
		if bc.AdminToken == "" {
			bc.AdminToken = cfg.HTTP.AdminToken
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), bc.Timeout)
		defer cancel()

		results := NewRunner(bc).RunAll(ctx, cmd.OutOrStdout())
		s := summarize(results)
		fmt.Fprintln(cmd.OutOrStdout(), "\n== Summary ==")
		fmt.Fprintf(cmd.OutOrStdout(), "PASS=%d FAIL=%d PENDING=%d SKIP=%d\n", s.pass, s.fail, s.pending, s.skipped)

		if s.fail > 0 || (bc.Strict && s.pending > 0) {
			return eris.Errorf("bench: %d failed, %d pending", s.fail, s.pending)
		}
		return nil
	},
}

type Runner struct {
	cfg   benchConfig
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name  string
	Focus string
	Run   func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg benchConfig) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context, out io.Writer) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Fprintf(out, "%-7s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Fprintf(out, " (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Fprintf(out, " - %s", res.Note)
		}
		fmt.Fprintln(out)
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}
	return results
}

type summary struct {
	pass, fail, pending, skipped int
}

func summarize(results []Result) summary {
	var s summary
	for _, r := range results {
		switch r.Status {
		case "PASS":
			s.pass++
		case "FAIL":
			s.fail++
		case "PENDING":
			s.pending++
		case "SKIP":
			s.skipped++
		}
	}
	return s
}

func init() {
	f := benchCmd.Flags()
	f.StringVar(&benchCfg.BaseURL, "base-url", "http://localhost:8080", "API base URL")
	f.StringVar(&benchCfg.DSN, "dsn", "", "Postgres DSN (default from config)")
	f.StringVar(&benchCfg.RedisAddr, "redis", "", "Redis address (default from config)")
	f.StringVar(&benchCfg.MigrationPath, "migration", "migrations/0001_init.sql", "migration SQL path")
	f.StringVar(&benchCfg.AdminToken, "admin-token", "", "bearer token for operator endpoints (default from config)")
	f.BoolVar(&benchCfg.Strict, "strict", false, "fail on pending checks")
	f.DurationVar(&benchCfg.Timeout, "timeout", 60*time.Second, "total timeout")
	f.IntVar(&benchCfg.Concurrency, "concurrency", 20, "concurrency for load tests")
	f.DurationVar(&benchCfg.Duration, "duration", 10*time.Second, "duration of each load test")
	rootCmd.AddCommand(benchCmd)
}
