package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed products.yaml
var productsRawData []byte

// Format names a data set encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ErrUnknownFormat is returned for data set files with an unsupported extension.
var ErrUnknownFormat = errors.New("unknown data set format")

// dataSet is the top-level structure of a data set file.
type dataSet struct {
	Products []Product `json:"products" yaml:"products"`
}

// Catalog provides lazy-loaded, read-only access to a product collection.
type Catalog struct {
	once     sync.Once
	source   func() ([]Product, error)
	products []Product
	refs     []*Product
	err      error
}

// NewCatalog returns a Catalog backed by the embedded data set.
func NewCatalog() *Catalog {
	return &Catalog{source: func() ([]Product, error) {
		return Decode(bytes.NewReader(productsRawData), FormatYAML)
	}}
}

// NewFileCatalog returns a Catalog that reads the data set at path on first
// access. The format follows the file extension.
func NewFileCatalog(path string) *Catalog {
	return &Catalog{source: func() ([]Product, error) {
		return ReadFile(path)
	}}
}

// FromProducts returns a Catalog over an in-memory slice. The slice is copied
// and normalized.
func FromProducts(ps []Product) *Catalog {
	cp := make([]Product, len(ps))
	copy(cp, ps)
	return &Catalog{source: func() ([]Product, error) { return cp, nil }}
}

// Products returns the collection in data set order. The pointers are shared
// between callers; the products behind them must not be modified.
func (c *Catalog) Products() ([]*Product, error) {
	c.once.Do(c.load)
	if c.err != nil {
		return nil, c.err
	}
	out := make([]*Product, len(c.refs))
	copy(out, c.refs)
	return out, nil
}

// Len returns the number of products, or 0 if the collection failed to load.
func (c *Catalog) Len() int {
	c.once.Do(c.load)
	return len(c.products)
}

func (c *Catalog) load() {
	ps, err := c.source()
	if err != nil {
		c.err = fmt.Errorf("catalog: load: %w", err)
		return
	}
	seen := make(map[string]struct{}, len(ps))
	for i := range ps {
		ps[i].Normalize()
		if _, dup := seen[ps[i].ID]; dup {
			c.err = fmt.Errorf("catalog: duplicate product id %q", ps[i].ID)
			return
		}
		seen[ps[i].ID] = struct{}{}
	}
	c.products = ps
	c.refs = make([]*Product, len(ps))
	for i := range ps {
		c.refs[i] = &c.products[i]
	}
}

// FormatFromPath picks a Format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, path)
	}
}

// ReadFile decodes the data set stored at path.
func ReadFile(path string) ([]Product, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open data set: %w", err)
	}
	defer f.Close()
	return Decode(f, format)
}

// Decode reads a data set in the given format.
func Decode(r io.Reader, format Format) ([]Product, error) {
	var ds dataSet
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&ds); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&ds); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return ds.Products, nil
}

// Encode writes products as a data set in the given format.
func Encode(w io.Writer, format Format, ps []Product) error {
	ds := dataSet{Products: ps}
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(ds); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(ds); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
