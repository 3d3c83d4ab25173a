package main

import (
	"os"

	"github.com/fwojciec/seedcorpus"
	"gopkg.in/yaml.v3"
)

// Manifest lists the seeds a batch build covers.
type Manifest struct {
	Seeds []ManifestSeed `yaml:"seeds"`
}

// ManifestSeed identifies one seed to build.
type ManifestSeed struct {
	SeedID   int64  `yaml:"seed_id"`
	Language string `yaml:"language"`
	Name     string `yaml:"name"`
}

// loadManifest reads and validates a YAML manifest.
func loadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, seedcorpus.Errorf(seedcorpus.EINVALID, "read manifest: %v", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, seedcorpus.Errorf(seedcorpus.EINVALID, "parse manifest: %v", err)
	}
	if len(m.Seeds) == 0 {
		return nil, seedcorpus.Errorf(seedcorpus.EINVALID, "manifest lists no seeds")
	}
	for i, seed := range m.Seeds {
		if seed.Language == "" {
			return nil, seedcorpus.Errorf(seedcorpus.EINVALID, "manifest seed %d: language required", i)
		}
		if seed.Name == "" {
			return nil, seedcorpus.Errorf(seedcorpus.EINVALID, "manifest seed %d: name required", i)
		}
	}
	return &m, nil
}
