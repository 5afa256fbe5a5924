// Package dataset loads the static post dataset served by the API.
package dataset

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/diamondburned/postlist/postlist"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed posts.json
var defaultJSON []byte

// Format is the encoding of a dataset file.
type Format uint8

const (
	JSON Format = iota
	YAML
)

// FormatFromPath guesses the format from the file extension. Anything that is
// not YAML is treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	default:
		return JSON
	}
}

// Dataset is the whole set of posts, in stored order.
type Dataset struct {
	Posts []postlist.Post `json:"posts" yaml:"posts"`
}

// Default returns the embedded dataset.
func Default() (Dataset, error) {
	return Parse(defaultJSON, JSON)
}

// Load reads the dataset at path. An empty path loads the embedded dataset.
func Load(path string) (Dataset, error) {
	if path == "" {
		return Default()
	}

	b, err := ioutil.ReadFile(path)
	if err != nil {
		return Dataset{}, errors.Wrap(err, "Failed to read dataset")
	}

	return Parse(b, FormatFromPath(path))
}

// Parse decodes and validates a dataset.
func Parse(b []byte, f Format) (Dataset, error) {
	var d Dataset

	switch f {
	case YAML:
		if err := yaml.Unmarshal(b, &d); err != nil {
			return d, errors.Wrap(err, "Failed to decode YAML dataset")
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()

		if err := dec.Decode(&d); err != nil {
			return d, errors.Wrap(err, "Failed to decode JSON dataset")
		}
	}

	if err := d.Validate(); err != nil {
		return d, err
	}

	return d, nil
}

// Validate checks that every post has a unique, non-empty ID.
func (d Dataset) Validate() error {
	var seen = make(map[string]struct{}, len(d.Posts))

	for i, post := range d.Posts {
		if post.ID == "" {
			return errors.Wrapf(postlist.ErrEmptyPostID, "post %d", i)
		}

		if _, ok := seen[post.ID]; ok {
			return errors.Wrapf(postlist.ErrDuplicatePost, "post %q", post.ID)
		}

		seen[post.ID] = struct{}{}
	}

	return nil
}
