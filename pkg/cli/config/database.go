package config

import (
	"context"

	"github.com/m-mizutani/autonope/pkg/domain/interfaces"
	"github.com/m-mizutani/autonope/pkg/infra/firestore"
	"github.com/m-mizutani/autonope/pkg/infra/memory"
	"github.com/m-mizutani/autonope/pkg/infra/sqlite"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Database holds watermark store configuration
type Database struct {
	Type             string
	SQLitePath       string
	FirestoreProject string
}

// Flags returns CLI flags for database configuration
func (c *Database) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "db-type",
			Usage:       "Watermark store backend (sqlite, firestore, memory)",
			Value:       "sqlite",
			Destination: &c.Type,
			Sources:     cli.EnvVars("AUTONOPE_DB_TYPE"),
		},
		&cli.StringFlag{
			Name:        "db-path",
			Usage:       "SQLite database file path",
			Value:       "db/autonope.db",
			Destination: &c.SQLitePath,
			Sources:     cli.EnvVars("AUTONOPE_DB"),
		},
		&cli.StringFlag{
			Name:        "firestore-project",
			Usage:       "Google Cloud project ID for the firestore backend",
			Destination: &c.FirestoreProject,
			Sources:     cli.EnvVars("AUTONOPE_FIRESTORE_PROJECT"),
		},
	}
}

// Configure opens the configured watermark store
func (c *Database) Configure(ctx context.Context) (interfaces.WatermarkStore, error) {
	switch c.Type {
	case "sqlite":
		return sqlite.New(c.SQLitePath)
	case "firestore":
		if c.FirestoreProject == "" {
			return nil, goerr.New("firestore backend requires a project ID")
		}
		return firestore.New(ctx, c.FirestoreProject)
	case "memory":
		return memory.New(), nil
	default:
		return nil, goerr.New("unknown database type", goerr.V("type", c.Type))
	}
}
