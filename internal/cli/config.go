// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bufbuild/layoutkit/json"
)

// DefaultConfigFile is the configuration file looked up in the working
// directory when --config is not given.
const DefaultConfigFile = ".jsonfmt.yaml"

// Config is the contents of a configuration file.
type Config struct {
	Layout json.LayoutOptions `yaml:"layout"`

	// Whether diagnostics are rendered with ANSI colors.
	Color bool `yaml:"color"`
	// Whether diagnostics are rendered one per line.
	Compact bool `yaml:"compact"`
}

// LoadConfig reads the configuration file at path.
//
// If path is empty, reads [DefaultConfigFile] instead, and returns the zero
// config if it does not exist.
func LoadConfig(path string) (Config, error) {
	var config Config

	optional := path == ""
	if optional {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if optional && errors.Is(err, fs.ErrNotExist) {
		return config, nil
	} else if err != nil {
		return config, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return config, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}
