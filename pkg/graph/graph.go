package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/flowcanvas/pkg/errors"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// ReadFile reads a graph file, choosing the decoder from its extension.
func ReadFile(path string) (Graph, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Graph{}, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Graph{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "graph file %s not found", path)
	}
	if err != nil {
		return Graph{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	g, err := Read(f, format)
	if err != nil {
		return Graph{}, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Read decodes a graph in the given format. Unknown keys are rejected.
func Read(r io.Reader, format Format) (Graph, error) {
	var (
		g   Graph
		err error
	)
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		err = dec.Decode(&g)
	case FormatTOML:
		err = decodeTOML(r, &g)
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		err = dec.Decode(&g)
	default:
		return Graph{}, errors.New(errors.ErrCodeInvalidFormat, "unsupported graph format %q", format)
	}
	if err == io.EOF {
		return Graph{}, errors.New(errors.ErrCodeInvalidFormat, "empty %s graph", format)
	}
	if err != nil {
		return Graph{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s graph", format)
	}
	return g, nil
}

func decodeTOML(r io.Reader, g *Graph) error {
	md, err := toml.NewDecoder(r).Decode(g)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// Write encodes g in the given format.
func Write(w io.Writer, g Graph, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(g)
	case FormatTOML:
		return toml.NewEncoder(w).Encode(g)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(g); err != nil {
			return err
		}
		return enc.Close()
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unsupported graph format %q", format)
}

// Marshal returns g as indented JSON. The output is deterministic and is
// used as the content hash input for cache keys.
func Marshal(g Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, g, FormatJSON); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
