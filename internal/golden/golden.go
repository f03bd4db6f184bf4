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

// Package golden provides a mechanism for managing golden test corpora: a
// directory of test inputs, each with files holding its expected outputs.
package golden

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pmezard/go-difflib/difflib"
)

// A Corpus describes a test data corpus. This is essentially a way for doing
// table-driven tests where the "table" is in your file system.
type Corpus struct {
	// The root of the test data directory. This path is relative to the file
	// that calls [Corpus.Run].
	Root string

	// An environment variable holding a glob of test names. Tests matching it
	// have their output files rewritten instead of checked.
	Refresh string

	// The file extensions (without a dot) of files which define a test case,
	// e.g. "yaml".
	Extensions []string

	// Possible outputs of the test. If the file for a particular output is
	// missing, the output is expected to be empty.
	Outputs []Output
}

// Output represents the output of a test case.
type Output struct {
	// The extension of the output. This is a suffix to the name of the
	// test case's main file; so for a test "foo.yaml" and an extension of
	// "fmt.txt", the runner looks for "foo.yaml.fmt.txt".
	Extension string

	// The comparison function for this output. May be nil, in which case the
	// values will be compared byte-for-byte.
	Compare Compare
}

// Compare is a comparison function between strings, used in [Output].
//
// Returns empty string if the strings match, otherwise returns an error
// message.
type Compare func(got, want string) string

// Run executes test on every case in the corpus, as parallel subtests.
//
// test is given the case's path relative to the calling test file, its text,
// and a slice to fill with the outputs, one per element of c.Outputs.
func (c Corpus) Run(t *testing.T, test func(t *testing.T, path, text string, outputs []string)) {
	testDir := callerDir(0)
	root := filepath.Join(testDir, c.Root)
	t.Logf("golden: searching for files in %q", root)

	// Enumerate the tests to run by walking the filesystem.
	var tests []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && slices.Contains(c.Extensions, strings.TrimPrefix(filepath.Ext(p), ".")) {
			tests = append(tests, p)
		}
		return nil
	})
	if err != nil {
		t.Fatal("golden: error while stating testdata FS:", err)
	}

	// Check if a refresh has been requested.
	var refresh string
	if c.Refresh != "" {
		refresh = os.Getenv(c.Refresh)
		if !doublestar.ValidatePattern(refresh) {
			t.Fatalf("golden: invalid glob %q in %s", refresh, c.Refresh)
		}
	}
	if refresh != "" {
		t.Logf("golden: refreshing test data because %s=%s", c.Refresh, refresh)
	}

	for _, path := range tests {
		name, _ := filepath.Rel(testDir, path)
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			bytes, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("golden: error while loading input file %q: %v", path, err)
			}

			results := make([]string, len(c.Outputs))
			test(t, name, string(bytes), results)

			refresh, _ := doublestar.Match(refresh, filepath.ToSlash(name))
			for i, output := range c.Outputs {
				path := fmt.Sprint(path, ".", output.Extension)
				if refresh {
					c.write(t, path, results[i])
					continue
				}

				bytes, err := os.ReadFile(path)
				if err != nil && !errors.Is(err, os.ErrNotExist) {
					t.Errorf("golden: error while loading output file %q: %v", path, err)
					continue
				}

				cmp := output.Compare
				if cmp == nil {
					cmp = defaultCompare
				}
				if diff := cmp(results[i], string(bytes)); diff != "" {
					t.Errorf("output mismatch for %q:\n%s", path, diff)
				}
			}
		})
	}
}

// write replaces the output file at path with result; empty results delete
// the file.
func (c Corpus) write(t *testing.T, path, result string) {
	if result == "" {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			t.Errorf("golden: error while deleting output file %q: %v", path, err)
		}
		return
	}
	if err := os.WriteFile(path, []byte(result), 0o644); err != nil {
		t.Errorf("golden: error while writing output file %q: %v", path, err)
	}
}

func defaultCompare(got, want string) string {
	if got == want {
		return ""
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	if err != nil {
		return err.Error()
	}

	// Colorize the diff so it's easier to read. We're looking for lines that
	// start with a - or a +.
	lines := strings.Split(diff, "\n")
	for i, s := range lines {
		switch {
		case strings.HasPrefix(s, "+"):
			lines[i] = "\033[1;92m" + s + "\033[0m"
		case strings.HasPrefix(s, "-"):
			lines[i] = "\033[1;91m" + s + "\033[0m"
		}
	}
	return strings.Join(lines, "\n")
}

func callerDir(skip int) string {
	_, file, _, ok := runtime.Caller(skip + 2)
	if !ok {
		panic("golden: could not determine test file's directory")
	}
	return filepath.Dir(file)
}
