package cmd

import (
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/kilianp07/studyplan/core/factory"
	"github.com/kilianp07/studyplan/infra/store/migrations"
	"github.com/kilianp07/studyplan/infra/store/postgres"
	"github.com/kilianp07/studyplan/infra/store/sqlite"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	var conf struct {
		Path string `json:"path"`
		DSN  string `json:"dsn"`
	}
	if err := factory.Decode(cfg.Store.Conf, &conf); err != nil {
		return err
	}
	ctx := cmd.Context()
	switch cfg.Store.Type {
	case "sqlite":
		db, err := sqlite.Open(conf.Path)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		if err := migrations.Up(ctx, db, goose.DialectSQLite3); err != nil {
			return err
		}
		v, err := migrations.Version(ctx, db, goose.DialectSQLite3)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "sqlite schema at version %d\n", v)
		return err
	case "postgres":
		if err := postgres.Migrate(ctx, conf.DSN); err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), "postgres schema up to date")
		return err
	default:
		return fmt.Errorf("store type %q has no schema", cfg.Store.Type)
	}
}
