// README: Bench cases; HTTP API checks, ledger schema checks, Redis and load tests.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"fleetfare/internal/config"
)

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	in := demoInput()
	quoteBody := map[string]any{
		"trip_request":   in.Requests[0],
		"user_profile":   in.Profiles["user1"],
		"current_supply": *in.Supply,
	}
	rankBody := map[string]any{
		"driver_profile": in.Driver,
		"user_profiles":  in.Profiles,
		"trip_requests":  in.Requests,
		"current_supply": *in.Supply,
	}
	pc := config.DefaultPricingConfig()

	return []TestCase{
		httpCaseMethod("health", http.MethodGet, base+"/health", nil, []int{200}, nil),
		httpCaseMethod("metrics endpoint", http.MethodGet, base+"/metrics", nil, []int{200}, nil),
		{
			Name:  "quote within price bounds",
			Focus: "Pricing",
			Run: func(ctx context.Context, r *Runner) Result {
				var resp struct {
					Price float64 `json:"price"`
				}
				res, status := r.doJSON(ctx, http.MethodPost, base+"/api/pricing/quote", quoteBody, &resp)
				if res.Status != "" {
					return res
				}
				if status != http.StatusOK {
					return Result{Status: "FAIL", Latency: res.Latency, Note: fmt.Sprintf("status=%d", status)}
				}
				if resp.Price < pc.MinPrice || resp.Price > pc.MaxPrice {
					return Result{Status: "FAIL", Latency: res.Latency, Note: fmt.Sprintf("price=%.2f", resp.Price)}
				}
				return Result{Status: "PASS", Latency: res.Latency, Note: fmt.Sprintf("price=%.2f", resp.Price)}
			},
		},
		httpCase("quote rejects missing trip", base+"/api/pricing/quote", map[string]any{"current_supply": 5}, []int{400}, nil),
		{
			Name:  "rank requests ordered",
			Focus: "Ranking",
			Run: func(ctx context.Context, r *Runner) Result {
				var resp struct {
					Ranked []struct {
						RequestID  string  `json:"request_id"`
						FinalScore float64 `json:"final_score"`
					} `json:"ranked_requests"`
				}
				res, status := r.doJSON(ctx, http.MethodPost, base+"/api/drivers/rank-requests", rankBody, &resp)
				if res.Status != "" {
					return res
				}
				if status != http.StatusOK {
					return Result{Status: "FAIL", Latency: res.Latency, Note: fmt.Sprintf("status=%d", status)}
				}
				if len(resp.Ranked) != len(in.Requests) {
					return Result{Status: "FAIL", Latency: res.Latency, Note: fmt.Sprintf("ranked=%d", len(resp.Ranked))}
				}
				for i := 1; i < len(resp.Ranked); i++ {
					if resp.Ranked[i].FinalScore > resp.Ranked[i-1].FinalScore {
						return Result{Status: "FAIL", Latency: res.Latency, Note: "scores not descending"}
					}
				}
				return Result{Status: "PASS", Latency: res.Latency, Note: "top=" + resp.Ranked[0].RequestID}
			},
		},
		httpCase("best request", base+"/api/drivers/best-request", rankBody, []int{200}, nil),
		httpCaseMethod("ranking weights", http.MethodGet, base+"/api/ranking/weights", nil, []int{200}, nil),
		httpCaseMethod("driver availability", http.MethodPut, base+"/api/drivers/bench-driver/availability",
			map[string]any{"zone": "downtown", "available": true}, []int{200}, []int{503}),
		httpCaseMethod("zone supply", http.MethodGet, base+"/api/supply/downtown", nil, []int{200}, []int{503}),
		{
			Name:  "ledger tables exist",
			Focus: "DB",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "SKIP", Note: "no dsn"}
				}
				tables, err := extractTables(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				var missing []string
				for _, t := range tables {
					var exists bool
					err := r.db.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, "public."+t).Scan(&exists)
					if err != nil {
						return Result{Status: "FAIL", Note: err.Error()}
					}
					if !exists {
						missing = append(missing, t)
					}
				}
				if len(missing) > 0 {
					return Result{Status: "FAIL", Note: "missing " + strings.Join(missing, ",")}
				}
				return Result{Status: "PASS", Note: fmt.Sprintf("tables=%d", len(tables))}
			},
		},
		{
			Name:  "redis reachable",
			Focus: "Redis",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: "SKIP", Note: "no redis"}
				}
				start := time.Now()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS", Latency: time.Since(start)}
			},
		},
		{
			Name:  "perf quote",
			Focus: "Load",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, base+"/api/pricing/quote", quoteBody)
			},
		},
		{
			Name:  "perf rank",
			Focus: "Load",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, base+"/api/drivers/rank-requests", rankBody)
			},
		},
	}
}

// doJSON returns a non-empty Result.Status only when the request itself failed.
func (r *Runner) doJSON(ctx context.Context, method, url string, body, out any) (Result, int) {
	req, err := r.newRequest(ctx, method, url, body)
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}, 0
	}
	start := time.Now()
	resp, err := r.httpc.Do(req)
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}, 0
	}
	defer resp.Body.Close()
	latency := time.Since(start)
	if resp.StatusCode == http.StatusOK && out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return Result{Status: "FAIL", Latency: latency, Note: "decode: " + err.Error()}, resp.StatusCode
		}
	}
	return Result{Latency: latency}, resp.StatusCode
}

func (r *Runner) newRequest(ctx context.Context, method, url string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = strings.NewReader(string(b))
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if r.cfg.AdminToken != "" {
		req.Header.Set("Authorization", "Bearer "+r.cfg.AdminToken)
	}
	return req, nil
}

func httpCase(name, url string, body any, okStatuses, pendingStatuses []int) TestCase {
	return httpCaseMethod(name, http.MethodPost, url, body, okStatuses, pendingStatuses)
}

func httpCaseMethod(name, method, url string, body any, okStatuses, pendingStatuses []int) TestCase {
	return TestCase{
		Name:  name,
		Focus: "HTTP API",
		Run: func(ctx context.Context, r *Runner) Result {
			res, status := r.doJSON(ctx, method, url, body, nil)
			if res.Status != "" {
				return res
			}
			note := fmt.Sprintf("status=%d", status)
			if contains(okStatuses, status) {
				return Result{Status: "PASS", Latency: res.Latency, Note: note}
			}
			if contains(pendingStatuses, status) {
				return Result{Status: "PENDING", Latency: res.Latency, Note: note}
			}
			return Result{Status: "FAIL", Latency: res.Latency, Note: note}
		},
	}
}

func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
	end := time.Now().Add(r.cfg.Duration)
	var count, errCount int64
	var mu sync.Mutex
	wg := sync.WaitGroup{}

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				req, err := r.newRequest(ctx, http.MethodPost, url, payload)
				if err != nil {
					return
				}
				resp, err := r.httpc.Do(req)
				mu.Lock()
				if err != nil || resp.StatusCode >= 500 {
					errCount++
				} else {
					count++
				}
				mu.Unlock()
				if err == nil {
					_, _ = io.Copy(io.Discard, resp.Body)
					resp.Body.Close()
				}
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: "FAIL", Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: "PASS", Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}

func contains(list []int, v int) bool {
	for _, i := range list {
		if i == v {
			return true
		}
	}
	return false
}

var createTableRe = regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)

func extractTables(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	matches := createTableRe.FindAllStringSubmatch(string(b), -1)
	tables := make([]string, 0, len(matches))
	for _, m := range matches {
		tables = append(tables, m[1])
	}
	return tables, nil
}
