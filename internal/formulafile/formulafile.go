// Package formulafile reads batches of formulas from disk and writes
// session results back out.
//
// Two input formats are understood. YAML files hold a single mapping from
// formula id to formula text, and the mapping order is kept. Any other file
// is plain text: one formula per line, blank lines and lines starting with
// '#' skipped, each formula identified as L<line number>.
package formulafile

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pborges/pcalc/internal/pcalc"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Format int

const (
	Text Format = iota
	YAML
)

func (f Format) String() string {
	if f == YAML {
		return "yaml"
	}
	return "text"
}

// FormatOf picks the input format from the file extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	}
	return Text
}

// Load reads the formulas in path.
func Load(path string) ([]pcalc.Formula, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	fs, err := Parse(data, FormatOf(path))
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return fs, nil
}

func Parse(data []byte, f Format) ([]pcalc.Formula, error) {
	if f == YAML {
		return parseYAML(data)
	}
	return parseText(data)
}

func parseText(data []byte) ([]pcalc.Formula, error) {
	var out []pcalc.Formula
	sc := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		out = append(out, pcalc.Formula{ID: fmt.Sprintf("L%d", line), Text: text})
	}
	return out, errors.WithStack(sc.Err())
}

func parseYAML(data []byte) ([]pcalc.Formula, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrap(err, "parsing yaml")
	}
	node := &root
	if node.Kind == 0 {
		return nil, nil
	}
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil, nil
		}
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return nil, errors.Errorf("line %d: expected a mapping of id to formula", node.Line)
	}
	out := make([]pcalc.Formula, 0, len(node.Content)/2)
	for i := 0; i < len(node.Content)-1; i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if key.Kind != yaml.ScalarNode || key.Value == "" {
			return nil, errors.Errorf("line %d: formula id must be a non-empty scalar", key.Line)
		}
		if val.Kind != yaml.ScalarNode {
			return nil, errors.Errorf("line %d: formula %q must be a string", val.Line, key.Value)
		}
		out = append(out, pcalc.Formula{ID: key.Value, Text: val.Value})
	}
	return out, nil
}

// ResultEntry is the YAML shape of one result.
type ResultEntry struct {
	Height int      `yaml:"height"`
	Value  *float64 `yaml:"value,omitempty"`
	Error  string   `yaml:"error,omitempty"`
}

// WriteResults writes res as a YAML mapping keyed by formula id, in result
// order.
func WriteResults(w io.Writer, res *pcalc.Results) error {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	for _, r := range res.Items {
		entry := ResultEntry{Height: r.Height}
		if r.Err != nil {
			entry.Error = r.Err.Error()
		} else {
			v := r.Value
			entry.Value = &v
		}
		var val yaml.Node
		if err := val.Encode(entry); err != nil {
			return errors.Wrapf(err, "encoding %s", r.ID)
		}
		doc.Content = append(doc.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: r.ID},
			&val,
		)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(err, "writing results")
	}
	return errors.WithStack(enc.Close())
}

// ReadResults decodes output of WriteResults, keeping id order.
func ReadResults(data []byte) ([]string, map[string]ResultEntry, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, nil, errors.Wrap(err, "parsing results")
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, map[string]ResultEntry{}, nil
	}
	node := root.Content[0]
	if node.Kind != yaml.MappingNode {
		return nil, nil, errors.Errorf("line %d: expected a mapping of results", node.Line)
	}
	ids := make([]string, 0, len(node.Content)/2)
	entries := make(map[string]ResultEntry, len(node.Content)/2)
	for i := 0; i < len(node.Content)-1; i += 2 {
		var e ResultEntry
		if err := node.Content[i+1].Decode(&e); err != nil {
			return nil, nil, errors.Wrapf(err, "result %s", node.Content[i].Value)
		}
		ids = append(ids, node.Content[i].Value)
		entries[node.Content[i].Value] = e
	}
	return ids, entries, nil
}
