// script_test.go — end-to-end fixtures driven by testdata/scripts.yaml.
package dali

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

type scriptCase struct {
	Name    string   `yaml:"name"`
	Source  string   `yaml:"source"`
	Results []string `yaml:"results"`
	Output  string   `yaml:"output"`
	Error   string   `yaml:"error"`
}

type scriptManifest struct {
	Cases []scriptCase `yaml:"cases"`
}

func loadScripts(t *testing.T) []scriptCase {
	t.Helper()
	raw, err := os.ReadFile("testdata/scripts.yaml")
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var m scriptManifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	if len(m.Cases) == 0 {
		t.Fatalf("manifest has no cases")
	}
	return m.Cases
}

func Test_Scripts(t *testing.T) {
	for _, c := range loadScripts(t) {
		c := c
		t.Run(c.Name, func(t *testing.T) {
			ip := NewInterp()
			var out bytes.Buffer
			ip.Stdout = &out

			vals, err := ip.EvalPersistentSource(c.Source)

			if c.Error != "" {
				if err == nil {
					t.Fatalf("want error containing %q, got none", c.Error)
				}
				if !strings.Contains(err.Error(), c.Error) {
					t.Fatalf("error %q does not contain %q", err.Error(), c.Error)
				}
				return
			}
			if err != nil {
				t.Fatalf("eval error: %v", err)
			}

			if c.Output != "" && out.String() != c.Output {
				t.Fatalf("stdout:\n%q\nwant:\n%q", out.String(), c.Output)
			}

			if c.Results != nil {
				got := make([]string, 0, len(vals))
				for _, v := range vals {
					got = append(got, FormatValue(v))
				}
				if len(got) != len(c.Results) {
					t.Fatalf("got %d results %v, want %d %v", len(got), got, len(c.Results), c.Results)
				}
				for i := range got {
					if got[i] != c.Results[i] {
						t.Fatalf("result %d = %q, want %q", i, got[i], c.Results[i])
					}
				}
			}
		})
	}
}
