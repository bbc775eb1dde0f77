package config

import "github.com/urfave/cli/v3"

// GitHub holds GitHub API configuration
type GitHub struct {
	Token string `masq:"secret"`
}

// Flags returns CLI flags for GitHub configuration
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub personal access token (optional, raises rate limits)",
			Destination: &c.Token,
			Sources:     cli.EnvVars("AUTONOPE_GITHUB_TOKEN"),
		},
	}
}
