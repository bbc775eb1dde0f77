package config

import "github.com/urfave/cli/v3"

// Monitor holds deployment monitoring gate and scheduling configuration
type Monitor struct {
	ComposeFiles []string
	CheckOnStart bool
}

// Flags returns CLI flags for monitor configuration
func (c *Monitor) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "compose-file",
			Usage:       "docker-compose file scanned for the autonope opt-in label (repeatable)",
			Destination: &c.ComposeFiles,
			Sources:     cli.EnvVars("AUTONOPE_COMPOSE_FILE"),
		},
		&cli.BoolFlag{
			Name:        "check-on-start",
			Usage:       "Run one check cycle per target immediately at startup",
			Value:       true,
			Destination: &c.CheckOnStart,
			Sources:     cli.EnvVars("AUTONOPE_CHECK_ON_START"),
		},
	}
}
