package knowledge

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// TopicsFile is the top-level structure of a topics YAML file.
//
// Example:
//
//	topics:
//	  - id: taj_mahal
//	    name: "Taj Mahal"
//	    location: "Agra, India"
//	    description: "An ivory-white marble mausoleum in Agra."
type TopicsFile struct {
	Topics []Topic `yaml:"topics"`
}

// LoadCatalogFile reads and parses a topics YAML file from disk and builds a
// catalogue from it. Returns a descriptive error if the file cannot be
// opened, parsed, or validated.
func LoadCatalogFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("knowledge: open topics file %q: %w", path, err)
	}
	defer f.Close()

	c, err := LoadCatalogFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("knowledge: parse topics file %q: %w", path, err)
	}
	return c, nil
}

// LoadCatalogFromReader parses topics YAML from an [io.Reader] and builds a
// catalogue. The reader is consumed entirely; the caller closes it.
func LoadCatalogFromReader(r io.Reader) (*Catalog, error) {
	var tf TopicsFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true) // reject unknown keys to catch typos
	if err := dec.Decode(&tf); err != nil {
		return nil, fmt.Errorf("knowledge: decode topics yaml: %w", err)
	}
	if len(tf.Topics) == 0 {
		return nil, fmt.Errorf("knowledge: topics file defines no topics")
	}
	return NewCatalog(tf.Topics)
}
