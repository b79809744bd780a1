package directory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/getmockd/mockldap/pkg/ldif"
)

// Load reads seed content from a fixture file. The format is picked by file
// extension: .yaml/.yml, .json, or .ldif.
func Load(path string) (Content, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read directory fixture: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		var c Content
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse yaml fixture %s: %w", path, err)
		}
		return c, nil
	case ".json":
		var c Content
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse json fixture %s: %w", path, err)
		}
		return c, nil
	case ".ldif":
		m, err := ldif.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("parse ldif fixture %s: %w", path, err)
		}
		return Content(m), nil
	default:
		return nil, fmt.Errorf("unsupported fixture extension %q", filepath.Ext(path))
	}
}
