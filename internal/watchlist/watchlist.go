package watchlist

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when a watchlist name is unknown
var ErrNotFound = errors.New("watchlist not found")

// Watchlist is a named benchmark with its ordered instrument basket
type Watchlist struct {
	Name        string   `yaml:"name" json:"name" validate:"required"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Benchmark   string   `yaml:"benchmark" json:"benchmark" validate:"required"`
	Source      string   `yaml:"source,omitempty" json:"source,omitempty" validate:"omitempty,oneof=yahoo naver postgres"`
	Symbols     []string `yaml:"symbols" json:"symbols" validate:"required,min=1,unique,dive,required"`
}

// File is the on-disk layout
type File struct {
	Watchlists []Watchlist `yaml:"watchlists" validate:"required,min=1,dive"`
}

// Registry holds watchlists in file order
type Registry struct {
	order  []string
	byName map[string]Watchlist
}

// Load reads and validates a watchlist file
// ⭐ SSOT: KnownFields(true)로 오타/미사용 필드 즉시 실패
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read watchlists: %w", err)
	}

	registry, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return registry, nil
}

// Parse decodes and validates watchlist YAML
func Parse(data []byte) (*Registry, error) {
	var file File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // 알 수 없는 필드 발견 시 에러 반환
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode watchlists: %w", err)
	}

	for i := range file.Watchlists {
		file.Watchlists[i] = trimmed(file.Watchlists[i])
	}

	if err := validator.New().Struct(&file); err != nil {
		return nil, fmt.Errorf("validate watchlists: %w", err)
	}

	registry := &Registry{byName: make(map[string]Watchlist, len(file.Watchlists))}
	for _, w := range file.Watchlists {
		if _, dup := registry.byName[w.Name]; dup {
			return nil, fmt.Errorf("duplicate watchlist name %q", w.Name)
		}
		registry.order = append(registry.order, w.Name)
		registry.byName[w.Name] = w
	}

	return registry, nil
}

// Get returns a watchlist by name
func (r *Registry) Get(name string) (Watchlist, error) {
	w, ok := r.byName[name]
	if !ok {
		return Watchlist{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return w, nil
}

// Names returns the watchlist names in file order
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// All returns the watchlists in file order
func (r *Registry) All() []Watchlist {
	all := make([]Watchlist, 0, len(r.order))
	for _, name := range r.order {
		all = append(all, r.byName[name])
	}
	return all
}

func trimmed(w Watchlist) Watchlist {
	w.Name = strings.TrimSpace(w.Name)
	w.Benchmark = strings.TrimSpace(w.Benchmark)
	symbols := make([]string, 0, len(w.Symbols))
	for _, s := range w.Symbols {
		symbols = append(symbols, strings.TrimSpace(s))
	}
	w.Symbols = symbols
	return w
}
