package compose

import (
	"context"
	"os"

	"github.com/compose-spec/compose-go/v2/loader"
	"github.com/compose-spec/compose-go/v2/types"
	"github.com/m-mizutani/autonope/pkg/domain/interfaces"
	"github.com/m-mizutani/ctxlog"
)

// optInLabel marks a compose service as opted in to release monitoring
const optInLabel = "autonope"

var defaultFiles = []string{"docker-compose.yml", "docker-compose.yaml"}

type gate struct {
	files []string
}

// NewGate creates a Gate that scans docker-compose files in the working
// directory for services carrying the opt-in label. With no explicit file
// list the standard compose file names are tried.
func NewGate(files ...string) interfaces.Gate {
	if len(files) == 0 {
		files = defaultFiles
	}
	return &gate{files: files}
}

// Enabled reports whether any service in any readable compose file opts in
// to monitoring. Missing or unparsable files count as "not enabled", never
// as an error.
func (x *gate) Enabled(ctx context.Context) bool {
	for _, file := range x.files {
		content, err := os.ReadFile(file)
		if err != nil {
			continue
		}

		project, err := loader.LoadWithContext(ctx,
			types.ConfigDetails{
				ConfigFiles: []types.ConfigFile{
					{
						Filename: file,
						Content:  content,
					},
				},
				WorkingDir: ".",
			},
			loader.WithSkipValidation,
		)
		if err != nil {
			ctxlog.From(ctx).Debug("Failed to parse compose file", "file", file, "error", err)
			continue
		}

		for _, svc := range project.Services {
			if _, ok := svc.Labels[optInLabel]; ok {
				return true
			}
		}
	}

	return false
}

// StaticGate always reports the given state. Used by the one-shot check
// command and tests.
type StaticGate bool

func (x StaticGate) Enabled(context.Context) bool { return bool(x) }
