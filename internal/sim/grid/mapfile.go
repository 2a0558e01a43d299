package grid

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MapFile is the on-disk form of a precomputed terrain bitmap. Terrain
// generation is an external pipeline; the engine only consumes its output.
type MapFile struct {
	Name    string `yaml:"name"`
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	WrapX   bool   `yaml:"wrap_x"`
	WrapY   bool   `yaml:"wrap_y"`
	LandRLE string `yaml:"land_rle"`
}

func LoadMapFile(path string) (*Grid, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var mf MapFile
	if err := yaml.Unmarshal(raw, &mf); err != nil {
		return nil, fmt.Errorf("map file %s: %w", path, err)
	}
	land, err := DecodeLand(mf.LandRLE)
	if err != nil {
		return nil, fmt.Errorf("map file %s: land: %w", path, err)
	}
	return New(mf.Width, mf.Height, mf.WrapX, mf.WrapY, land)
}
