package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"carlist-scraper/utils"
)

// PQPCategory holds the quota premium estimates for one COE category.
type PQPCategory struct {
	FiveYear float64 `yaml:"five_year"`
	TenYear  float64 `yaml:"ten_year"`
}

// Params is the depreciation parameter file.
type Params struct {
	PQP struct {
		DefaultCat string                 `yaml:"default_cat"`
		Categories map[string]PQPCategory `yaml:"categories"`
	} `yaml:"pqp"`
}

// LoadParams reads and validates the YAML parameter file at path.
func LoadParams(path string) (*Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, utils.NewError(utils.KindConfig, "read params", err)
	}
	return ParseParams(data)
}

// ParseParams decodes a YAML parameter document. An empty default category
// means "A".
func ParseParams(data []byte) (*Params, error) {
	var p Params
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, utils.NewError(utils.KindConfig, "parse params", err)
	}
	if p.PQP.DefaultCat == "" {
		p.PQP.DefaultCat = "A"
	}
	if _, ok := p.PQP.Categories[p.PQP.DefaultCat]; !ok {
		return nil, utils.NewError(utils.KindConfig, "parse params",
			fmt.Errorf("default category %q has no estimates", p.PQP.DefaultCat))
	}
	return &p, nil
}

// Default returns the estimates for the configured default category.
func (p *Params) Default() PQPCategory {
	return p.PQP.Categories[p.PQP.DefaultCat]
}
