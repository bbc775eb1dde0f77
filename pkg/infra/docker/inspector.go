package docker

import (
	"context"

	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/daemon"
	"github.com/m-mizutani/autonope/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
)

type inspector struct{}

// NewInspector creates an ImageInspector backed by the local Docker daemon
func NewInspector() interfaces.ImageInspector {
	return &inspector{}
}

// Labels returns the config labels of a locally present image. The image
// must already be pulled; this never contacts a remote registry.
func (x *inspector) Labels(ctx context.Context, imageRef string) (map[string]string, error) {
	ref, err := name.ParseReference(imageRef)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse image reference", goerr.V("image", imageRef))
	}

	img, err := daemon.Image(ref, daemon.WithContext(ctx))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read image from docker daemon", goerr.V("image", imageRef))
	}

	cfg, err := img.ConfigFile()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read image config", goerr.V("image", imageRef))
	}

	return cfg.Config.Labels, nil
}
