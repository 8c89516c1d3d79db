// Package service holds the static catalog: the region to city fan-out table
// and the subscription plans with their monthly lead limits.
package service

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Region is one geographic region code with its major cities in fan-out order.
type Region struct {
	Code   string   `yaml:"code" json:"code"`
	Name   string   `yaml:"name" json:"name"`
	Cities []string `yaml:"cities" json:"cities"`
}

// Plan maps a subscription tier to its monthly lead limit.
type Plan struct {
	ID        string `yaml:"id" json:"id"`
	LeadLimit int    `yaml:"leadLimit" json:"leadLimit"`
}

type document struct {
	Regions []Region `yaml:"regions"`
	Plans   []Plan   `yaml:"plans"`
}

// Service answers catalog lookups. It is immutable after construction.
type Service struct {
	regions []Region
	byCode  map[string]int
	plans   map[string]int
	def     string
}

// Load reads the catalog from path, or from the embedded default when path is empty.
func Load(path string) (*Service, error) {
	if strings.TrimSpace(path) == "" {
		return Parse(defaultCatalog)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Default returns the embedded catalog. It panics if the embedded file is invalid.
func Default() *Service {
	svc, err := Parse(defaultCatalog)
	if err != nil {
		panic(err)
	}
	return svc
}

// Parse builds a catalog from YAML.
func Parse(data []byte) (*Service, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(doc.Plans) == 0 {
		return nil, errors.New("catalog has no plans")
	}

	svc := &Service{
		regions: make([]Region, 0, len(doc.Regions)),
		byCode:  make(map[string]int, len(doc.Regions)),
		plans:   make(map[string]int, len(doc.Plans)),
		def:     doc.Plans[0].ID,
	}

	for _, r := range doc.Regions {
		code := strings.ToUpper(strings.TrimSpace(r.Code))
		if code == "" {
			return nil, errors.New("catalog region without code")
		}
		if _, dup := svc.byCode[code]; dup {
			return nil, fmt.Errorf("duplicate catalog region %s", code)
		}
		cities := make([]string, 0, len(r.Cities))
		for _, city := range r.Cities {
			if city = strings.TrimSpace(city); city != "" {
				cities = append(cities, city)
			}
		}
		svc.byCode[code] = len(svc.regions)
		svc.regions = append(svc.regions, Region{Code: code, Name: r.Name, Cities: cities})
	}

	for _, p := range doc.Plans {
		if p.ID == "" || p.LeadLimit < 0 {
			return nil, fmt.Errorf("invalid catalog plan %q", p.ID)
		}
		svc.plans[p.ID] = p.LeadLimit
	}

	return svc, nil
}

// Regions returns all regions in catalog order.
func (s *Service) Regions() []Region {
	out := make([]Region, len(s.regions))
	for i, r := range s.regions {
		out[i] = Region{Code: r.Code, Name: r.Name, Cities: append([]string(nil), r.Cities...)}
	}
	return out
}

// HasRegion reports whether code is a known region. Matching ignores case.
func (s *Service) HasRegion(code string) bool {
	_, ok := s.byCode[normalizeCode(code)]
	return ok
}

// Cities returns the fan-out city table for a region, in table order.
// Unknown regions and regions without cities return nil.
func (s *Service) Cities(code string) []string {
	idx, ok := s.byCode[normalizeCode(code)]
	if !ok {
		return nil
	}
	return append([]string(nil), s.regions[idx].Cities...)
}

// PlanLimit returns the monthly lead limit for a plan.
func (s *Service) PlanLimit(planID string) (int, bool) {
	limit, ok := s.plans[planID]
	return limit, ok
}

// DefaultPlan is the plan assigned to accounts created on first use.
func (s *Service) DefaultPlan() string {
	return s.def
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
