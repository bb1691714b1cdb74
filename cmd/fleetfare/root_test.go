package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fleetfare/internal/config"
	"fleetfare/internal/modules/pricing"
)

func testConfig() *config.Config {
	c := &config.Config{
		Pricing: config.DefaultPricingConfig(),
		Ranking: config.RankingConfig{Weights: config.DefaultScoreWeights()},
		Cache:   config.CacheConfig{Size: 64, TTL: time.Minute},
		Supply:  config.SupplyConfig{TTL: time.Minute, SweepInterval: time.Minute},
	}
	c.Model.Path = "../../models/fare_model.json"
	return c
}

func TestRootCommand_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "price", "rank", "demo", "migrate", "bench"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}

	assert.NotNil(t, benchCmd.Flags().Lookup("base-url"))
	assert.NotNil(t, benchCmd.Flags().Lookup("concurrency"))
	assert.NotNil(t, migrateCmd.Flags().Lookup("file"))
}

func TestSplitSQL(t *testing.T) {
	sql := `-- ledger
CREATE TABLE IF NOT EXISTS a (id INT);

-- index
CREATE INDEX IF NOT EXISTS a_idx ON a (id);
`
	stmts := splitSQL(sql)
	require.Len(t, stmts, 2)
	assert.Equal(t, "CREATE TABLE IF NOT EXISTS a (id INT)", stmts[0])
	assert.True(t, strings.HasPrefix(stmts[1], "CREATE INDEX"))
}

func TestExtractTables_Migration(t *testing.T) {
	tables, err := extractTables("../../migrations/0001_init.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{"fare_quotes", "ranking_decisions"}, tables)

	_, err = extractTables(filepath.Join(t.TempDir(), "missing.sql"))
	assert.Error(t, err)
}

func TestMigration_SplitsIntoStatements(t *testing.T) {
	b, err := os.ReadFile("../../migrations/0001_init.sql")
	require.NoError(t, err)
	stmts := splitSQL(string(b))
	assert.GreaterOrEqual(t, len(stmts), 2)
	for _, s := range stmts {
		assert.NotContains(t, s, ";")
	}
}

func TestNewApp_MissingModel(t *testing.T) {
	c := testConfig()
	c.Model.Path = filepath.Join(t.TempDir(), "nope.json")
	_, err := newApp(context.Background(), c, zap.NewNop())
	assert.Error(t, err)
}

func TestRunDemo_RanksAirportFirst(t *testing.T) {
	a, err := newApp(context.Background(), testConfig(), zap.NewNop(), pricing.WithJitter(pricing.NoJitter))
	require.NoError(t, err)
	defer a.Close()
	assert.Nil(t, a.supply)

	var out bytes.Buffer
	require.NoError(t, runDemo(context.Background(), &out, a.ranking))

	text := out.String()
	i3 := strings.Index(text, "user3_1647889200")
	i2 := strings.Index(text, "user2_1647889200")
	i1 := strings.Index(text, "user1_1647889200")
	require.True(t, i3 >= 0 && i2 >= 0 && i1 >= 0, text)
	assert.Less(t, i3, i2)
	assert.Less(t, i2, i1)
	assert.Contains(t, text, "best request: user3_1647889200")
}

func TestDemoInput_IsValid(t *testing.T) {
	in := demoInput()
	require.Len(t, in.Requests, 3)
	require.NotNil(t, in.Supply)
	for _, r := range in.Requests {
		_, ok := in.Profiles[r.UserID]
		assert.True(t, ok, r.UserID)
	}
}
