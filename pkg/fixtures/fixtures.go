// Package fixtures holds the named pet data used by the verification
// scenarios. Fixtures load from YAML or JSON; values are kept exactly as
// written because several fixtures are deliberately invalid.
package fixtures

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Well-known fixture ids referenced by the scenario suite.
const (
	ValidCat          = "valid_cat"
	OwnPetSeed        = "own_pet_seed"
	Update            = "update"
	PhotoReplacement  = "photo_replacement"
	NegativeAge       = "negative_age"
	ThreeDigitAge     = "three_digit_age"
	EmptyName         = "empty_name"
	NumericAnimalType = "numeric_animal_type"
	LettersInAge      = "letters_in_age"
	Simple            = "simple"
)

// Fixture is one set of pet field values. Photo is relative to the photos
// directory unless absolute.
type Fixture struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	AnimalType string `json:"animal_type" yaml:"animal_type"`
	Age        string `json:"age" yaml:"age"`
	Photo      string `json:"photo" yaml:"photo"`
}

// PhotoPath resolves the fixture photo against dir. It returns "" when the
// fixture has no photo.
func (f Fixture) PhotoPath(dir string) string {
	if f.Photo == "" {
		return ""
	}
	if filepath.IsAbs(f.Photo) || dir == "" {
		return f.Photo
	}
	return filepath.Join(dir, f.Photo)
}

type document struct {
	Fixtures []Fixture `json:"fixtures" yaml:"fixtures"`
}

// Registry is an immutable set of fixtures indexed by id.
type Registry struct {
	list []Fixture
	idx  map[string]Fixture
}

// New validates list and builds a registry from it.
func New(list []Fixture) (*Registry, error) {
	if len(list) == 0 {
		return nil, errors.New("fixtures list is empty")
	}
	r := &Registry{
		list: make([]Fixture, 0, len(list)),
		idx:  make(map[string]Fixture, len(list)),
	}
	for i, f := range list {
		f.ID = strings.TrimSpace(f.ID)
		f.Photo = strings.TrimSpace(f.Photo)
		if f.ID == "" {
			return nil, fmt.Errorf("fixture[%d]: id is required", i)
		}
		if _, exists := r.idx[f.ID]; exists {
			return nil, fmt.Errorf("duplicate fixture id %q", f.ID)
		}
		r.list = append(r.list, f)
		r.idx[f.ID] = f
	}
	return r, nil
}

// Load reads a fixtures file from fs and overlays it on Defaults, so a file
// only needs the entries it changes.
func Load(fs afero.Fs, path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("fixtures file path is empty")
	}
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures file: %w", err)
	}
	doc, err := parseDocument(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(doc.Fixtures) == 0 {
		return nil, errors.New("fixtures file contains no fixtures entries")
	}
	loaded, err := New(doc.Fixtures)
	if err != nil {
		return nil, err
	}
	return Defaults().merge(loaded), nil
}

func parseDocument(data []byte, ext string) (document, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var doc document
		if err := d.fn(data, &doc); err == nil {
			return doc, nil
		}
	}
	return document{}, errors.New("fixtures file format not recognized (expected YAML or JSON)")
}

type unmarshalFn func([]byte, any) error

func (r *Registry) merge(over *Registry) *Registry {
	list := make([]Fixture, 0, len(r.list)+len(over.list))
	for _, f := range r.list {
		if o, ok := over.idx[f.ID]; ok {
			f = o
		}
		list = append(list, f)
	}
	for _, f := range over.list {
		if _, ok := r.idx[f.ID]; !ok {
			list = append(list, f)
		}
	}
	merged, _ := New(list)
	return merged
}

// Get returns the fixture for id.
func (r *Registry) Get(id string) (Fixture, bool) {
	f, ok := r.idx[id]
	return f, ok
}

// All returns a copy of the fixtures in load order.
func (r *Registry) All() []Fixture {
	return append([]Fixture(nil), r.list...)
}

// Missing lists the ids from want that the registry lacks, sorted.
func (r *Registry) Missing(want ...string) []string {
	var out []string
	for _, id := range want {
		if _, ok := r.idx[id]; !ok {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Defaults returns the built-in fixture set.
func Defaults() *Registry {
	r, err := New([]Fixture{
		{ID: ValidCat, Name: "Murzik", AnimalType: "cat", Age: "4", Photo: "cat.jpg"},
		{ID: OwnPetSeed, Name: "Мурзик", AnimalType: "кот", Age: "4", Photo: "cat.jpg"},
		{ID: Update, Name: "Маркиз", AnimalType: "кот", Age: "5"},
		{ID: PhotoReplacement, Photo: "dog.jpg"},
		{ID: NegativeAge, Name: "Вася", AnimalType: "кот", Age: "-5", Photo: "cat.jpg"},
		{ID: ThreeDigitAge, Name: "Буся", AnimalType: "хомяк", Age: "356", Photo: "hamster.jpg"},
		{ID: EmptyName, Name: "", AnimalType: "кот", Age: "2", Photo: "cat.jpg"},
		{ID: NumericAnimalType, Name: "Жужа", AnimalType: "34562", Age: "5", Photo: "dog.jpg"},
		{ID: LettersInAge, Name: "Локи", AnimalType: "собака", Age: "шесть", Photo: "dog.jpg"},
		{ID: Simple, Name: "Борис", AnimalType: "Собака", Age: "3"},
	})
	if err != nil {
		panic(err)
	}
	return r
}
