// README: migrate applies the SQL schema for the quote ledger.
package main

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fleetfare/internal/infra"
)

var migrationPath string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the ledger schema to the configured Postgres database",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.DB.DSN == "" {
			return eris.New("db.dsn is not configured")
		}
		b, err := os.ReadFile(migrationPath)
		if err != nil {
			return eris.Wrapf(err, "read %s", migrationPath)
		}

		ctx := cmd.Context()
		db, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			return err
		}
		defer db.Close()

		tx, err := db.Begin(ctx)
		if err != nil {
			return eris.Wrap(err, "begin migration")
		}
		defer func() { _ = tx.Rollback(ctx) }()

		stmts := splitSQL(string(b))
		for _, stmt := range stmts {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return eris.Wrapf(err, "exec %q", firstLine(stmt))
			}
		}
		if err := tx.Commit(ctx); err != nil {
			return eris.Wrap(err, "commit migration")
		}
		logger.Info("migration applied", zap.String("file", migrationPath), zap.Int("statements", len(stmts)))
		return nil
	},
}

// splitSQL drops comment lines and splits on semicolons.
func splitSQL(sql string) []string {
	lines := strings.Split(sql, "\n")
	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		l := strings.TrimSpace(line)
		if strings.HasPrefix(l, "--") || l == "" {
			continue
		}
		filtered = append(filtered, line)
	}
	parts := strings.Split(strings.Join(filtered, "\n"), ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func init() {
	migrateCmd.Flags().StringVar(&migrationPath, "file", "migrations/0001_init.sql", "migration SQL path")
	rootCmd.AddCommand(migrateCmd)
}
