package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/autonope/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

const defaultCheckInterval = "24h"

// Watch holds the path to the watch-target configuration file
type Watch struct {
	Path string
}

// Flags returns CLI flags for watch configuration
func (c *Watch) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Watch target configuration file (TOML)",
			Value:       "config/autonope.toml",
			Destination: &c.Path,
			Sources:     cli.EnvVars("AUTONOPE_CONFIG"),
		},
	}
}

// SlackChannel is a Slack incoming-webhook notification destination
type SlackChannel struct {
	WebhookURL string `toml:"webhook_url" masq:"secret"`
}

// DiscordChannel is a Discord webhook notification destination
type DiscordChannel struct {
	WebhookURL string `toml:"webhook_url" masq:"secret"`
}

// PushoverChannel is a Pushover notification destination
type PushoverChannel struct {
	Token string `toml:"token" masq:"secret"`
	User  string `toml:"user" masq:"secret"`
}

// NotifySettings lists configured notification destinations
type NotifySettings struct {
	Slack    []SlackChannel    `toml:"slack"`
	Discord  []DiscordChannel  `toml:"discord"`
	Pushover []PushoverChannel `toml:"pushover"`
}

// WatchConfig is the loaded and merged watch configuration
type WatchConfig struct {
	Targets []*model.WatchTarget
	Notify  NotifySettings
}

type watchFile struct {
	CheckInterval string         `toml:"check_interval"`
	BreakKeywords []string       `toml:"break_keywords"`
	Targets       []targetEntry  `toml:"targets"`
	Notify        NotifySettings `toml:"notify"`
}

type targetEntry struct {
	Name          string   `toml:"name"`
	Image         string   `toml:"image"`
	BreakKeywords []string `toml:"break_keywords"`
	Interval      string   `toml:"interval"`
}

// Load reads the TOML watch configuration and merges global defaults
// (check_interval, break_keywords) into each target entry. Keywords are
// lowercased here so the scan can compare substrings directly.
func (c *Watch) Load() (*WatchConfig, error) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read watch configuration", goerr.V("path", c.Path))
	}

	var file watchFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse watch configuration", goerr.V("path", c.Path))
	}

	globalInterval := file.CheckInterval
	if globalInterval == "" {
		globalInterval = defaultCheckInterval
	}
	globalKeywords := lowerAll(file.BreakKeywords)

	targets := make([]*model.WatchTarget, 0, len(file.Targets))
	for _, entry := range file.Targets {
		if entry.Name == "" || entry.Image == "" {
			return nil, goerr.New("watch target requires name and image",
				goerr.V("name", entry.Name),
				goerr.V("image", entry.Image),
			)
		}

		intervalStr := entry.Interval
		if intervalStr == "" {
			intervalStr = globalInterval
		}
		interval, err := ParseInterval(intervalStr)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid interval for target", goerr.V("name", entry.Name))
		}

		keywords := globalKeywords
		if len(entry.BreakKeywords) > 0 {
			keywords = lowerAll(entry.BreakKeywords)
		}

		targets = append(targets, model.NewWatchTarget(entry.Name, entry.Image, keywords, interval))
	}

	return &WatchConfig{
		Targets: targets,
		Notify:  file.Notify,
	}, nil
}

var shorthandInterval = regexp.MustCompile(`^(\d+)([dw])$`)

// ParseInterval parses a polling interval. Besides Go duration syntax it
// accepts the legacy shorthand "2d" and "1w".
func ParseInterval(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	if m := shorthandInterval.FindStringSubmatch(s); m != nil {
		qty, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, goerr.Wrap(err, "invalid interval quantity", goerr.V("interval", s))
		}
		switch m[2] {
		case "d":
			return time.Duration(qty) * 24 * time.Hour, nil
		case "w":
			return time.Duration(qty) * 7 * 24 * time.Hour, nil
		}
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, goerr.Wrap(err, "invalid interval", goerr.V("interval", s))
	}
	if d <= 0 {
		return 0, goerr.New("interval must be positive", goerr.V("interval", s))
	}
	return d, nil
}

func lowerAll(keywords []string) []string {
	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		lowered = append(lowered, strings.ToLower(kw))
	}
	return lowered
}
