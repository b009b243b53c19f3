// Package seedfile reads catalog seed documents written in YAML.
package seedfile

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	santhosh "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/atvirokodosprendimai/gamecatalog/internal/core/domain"
)

//go:embed catalog.schema.json
var schemaJSON []byte

var compiledSchema = sync.OnceValues(func() (*santhosh.Schema, error) {
	compiler := santhosh.NewCompiler()
	compiler.Draft = santhosh.Draft7
	if err := compiler.AddResource("catalog.schema.json", bytes.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	return compiler.Compile("catalog.schema.json")
})

type fileCatalog struct {
	Categories []string        `yaml:"categories"`
	Publishers []filePublisher `yaml:"publishers"`
	Games      []fileGame      `yaml:"games"`
}

type filePublisher struct {
	Name        string  `yaml:"name"`
	Description *string `yaml:"description"`
}

type fileGame struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	StarRating  *float64 `yaml:"starRating"`
	Publisher   string   `yaml:"publisher"`
	Category    string   `yaml:"category"`
}

// SchemaError lists every place the document disagrees with the seed schema.
type SchemaError struct {
	Errors []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("seed file does not match schema: %s", strings.Join(e.Errors, "; "))
}

func Load(path string) (domain.SeedCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.SeedCatalog{}, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (domain.SeedCatalog, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return domain.SeedCatalog{}, fmt.Errorf("decode seed yaml: %w", err)
	}
	if err := validate(raw); err != nil {
		return domain.SeedCatalog{}, err
	}

	var fc fileCatalog
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return domain.SeedCatalog{}, fmt.Errorf("decode seed catalog: %w", err)
	}

	catalog := domain.SeedCatalog{
		Categories: make([]domain.SeedCategory, 0, len(fc.Categories)),
		Publishers: make([]domain.SeedPublisher, 0, len(fc.Publishers)),
		Games:      make([]domain.SeedGame, 0, len(fc.Games)),
	}
	for _, name := range fc.Categories {
		catalog.Categories = append(catalog.Categories, domain.SeedCategory{Name: name})
	}
	for _, p := range fc.Publishers {
		catalog.Publishers = append(catalog.Publishers, domain.SeedPublisher{Name: p.Name, Description: p.Description})
	}
	for _, g := range fc.Games {
		catalog.Games = append(catalog.Games, domain.SeedGame{
			Title:       g.Title,
			Description: g.Description,
			StarRating:  g.StarRating,
			Publisher:   g.Publisher,
			Category:    g.Category,
		})
	}
	return catalog, nil
}

// validate runs the YAML tree through a JSON round trip so the schema sees
// plain JSON values.
func validate(raw any) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile seed schema: %w", err)
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encode seed document: %w", err)
	}
	decoder := json.NewDecoder(bytes.NewReader(encoded))
	decoder.UseNumber()
	var doc any
	if err := decoder.Decode(&doc); err != nil {
		return fmt.Errorf("decode seed document: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		var ve *santhosh.ValidationError
		if errors.As(err, &ve) {
			return &SchemaError{Errors: collectValidationErrors(ve)}
		}
		return &SchemaError{Errors: []string{err.Error()}}
	}
	return nil
}

func collectValidationErrors(ve *santhosh.ValidationError) []string {
	var msgs []string
	for _, cause := range ve.Causes {
		msgs = append(msgs, collectValidationErrors(cause)...)
	}
	if len(ve.Causes) == 0 {
		msgs = append(msgs, ve.InstanceLocation+": "+ve.Message)
	}
	return msgs
}
