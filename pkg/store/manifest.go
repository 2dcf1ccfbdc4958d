package store

import (
	"github.com/pelletier/go-toml/v2"

	"github.com/inix-sh/inix/pkg/errors"
)

// ManifestFile is the per-bundle manifest name
const ManifestFile = "template.toml"

// manifest mirrors a bundle's template.toml
type manifest struct {
	Description string   `toml:"description"`
	Packages    []string `toml:"packages"`
	Inputs      []string `toml:"inputs"`
}

func parseManifest(name string, data []byte) (*manifest, error) {
	var m manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, errors.ErrTemplateInvalid, "template %q has an invalid manifest", name)
	}
	return &m, nil
}
