package matching

import (
	"fmt"
	"math"
	"os"
	"strings"

	"matching-workers/internal/common/errors"

	"gopkg.in/yaml.v3"
)

const (
	// AllCategories marks a certification that applies to every trade.
	AllCategories = "all"
	// AllRegions marks a language spoken everywhere.
	AllRegions = "all"
)

type Coordinates struct {
	Lat float64 `yaml:"lat" json:"lat"`
	Lng float64 `yaml:"lng" json:"lng"`
}

type Region struct {
	Name          string       `yaml:"name" json:"name"`
	Cities        []string     `yaml:"cities" json:"cities"`
	TransportHubs []string     `yaml:"transportHubs,omitempty" json:"transportHubs,omitempty"`
	Coordinates   *Coordinates `yaml:"coordinates,omitempty" json:"coordinates,omitempty"`
}

type Certification struct {
	Name       string   `yaml:"name" json:"name"`
	Weight     float64  `yaml:"weight" json:"weight"`
	Categories []string `yaml:"categories" json:"categories"`
}

type Language struct {
	Name         string   `yaml:"name" json:"name"`
	Regions      []string `yaml:"regions" json:"regions"`
	SpeakerShare float64  `yaml:"speakerShare" json:"speakerShare"`
}

// Tables is the static reference data the evaluators consult. An Engine
// takes a private copy at construction, so callers may reuse or mutate
// their value afterwards.
type Tables struct {
	Regions        []Region        `yaml:"regions" json:"regions"`
	Certifications []Certification `yaml:"certifications" json:"certifications"`
	Languages      []Language      `yaml:"languages" json:"languages"`
}

// DefaultTables returns the built-in Ghana reference tables.
func DefaultTables() Tables {
	return Tables{
		Regions: []Region{
			{
				Name:          "Greater Accra",
				Cities:        []string{"Accra", "Tema", "Kasoa", "Madina", "Ashaiman"},
				TransportHubs: []string{"Kaneshie", "Circle", "Lapaz", "Achimota"},
				Coordinates:   &Coordinates{Lat: 5.6037, Lng: -0.187},
			},
			{
				Name:          "Ashanti",
				Cities:        []string{"Kumasi", "Obuasi", "Ejisu", "Bekwai"},
				TransportHubs: []string{"Kejetia", "Adum", "Bantama"},
				Coordinates:   &Coordinates{Lat: 6.7167, Lng: -1.6833},
			},
			{
				Name:          "Western",
				Cities:        []string{"Takoradi", "Sekondi", "Tarkwa", "Axim"},
				TransportHubs: []string{"Market Circle", "Paa Grant"},
				Coordinates:   &Coordinates{Lat: 4.8967, Lng: -1.7581},
			},
			{
				Name:          "Eastern",
				Cities:        []string{"Koforidua", "Akosombo", "Nkawkaw", "Akim Oda"},
				TransportHubs: []string{"Koforidua Station", "Galloway"},
				Coordinates:   &Coordinates{Lat: 6.0891, Lng: -0.2594},
			},
		},
		Certifications: []Certification{
			{Name: "Ghana Institute of Plumbers", Weight: 0.9, Categories: []string{"plumbing"}},
			{Name: "Institute of Electrical Engineers", Weight: 0.9, Categories: []string{"electrical"}},
			{Name: "Ghana Standards Authority", Weight: 0.8, Categories: []string{AllCategories}},
			{Name: "National Vocational Training Institute", Weight: 0.7, Categories: []string{AllCategories}},
			{Name: "Council for Technical and Vocational Education", Weight: 0.7, Categories: []string{AllCategories}},
			{Name: "Traditional Apprenticeship", Weight: 0.6, Categories: []string{AllCategories}},
		},
		Languages: []Language{
			{Name: "Twi", Regions: []string{"Ashanti", "Eastern", "Brong Ahafo"}, SpeakerShare: 0.58},
			{Name: "Ga", Regions: []string{"Greater Accra"}, SpeakerShare: 0.16},
			{Name: "Ewe", Regions: []string{"Volta", "Greater Accra"}, SpeakerShare: 0.14},
			{Name: "Dagbani", Regions: []string{"Northern"}, SpeakerShare: 0.07},
			{Name: "English", Regions: []string{AllRegions}, SpeakerShare: 0.67},
			{Name: "Hausa", Regions: []string{"Northern", "Upper East", "Upper West"}, SpeakerShare: 0.04},
		},
	}
}

// LoadTables reads reference tables from a YAML file and validates them.
func LoadTables(path string) (Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, errors.NewReferenceTablesInvalidError(fmt.Sprintf("read %s: %v", path, err))
	}
	return ParseTables(data)
}

func ParseTables(data []byte) (Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Tables{}, errors.NewReferenceTablesInvalidError(fmt.Sprintf("decode yaml: %v", err))
	}
	if err := t.Validate(); err != nil {
		return Tables{}, err
	}
	return t, nil
}

// YAML encodes t in the shape LoadTables reads.
func (t Tables) YAML() ([]byte, error) {
	return yaml.Marshal(t)
}

func (t Tables) Validate() error {
	var problems []string

	seen := make(map[string]struct{}, len(t.Regions))
	for i, r := range t.Regions {
		name := fold(r.Name)
		switch {
		case name == "":
			problems = append(problems, fmt.Sprintf("regions[%d]: name is required", i))
		case name == fold(UnknownRegion):
			problems = append(problems, fmt.Sprintf("regions[%d]: %q is reserved", i, UnknownRegion))
		default:
			if _, dup := seen[name]; dup {
				problems = append(problems, fmt.Sprintf("regions[%d]: duplicate region %q", i, r.Name))
			}
			seen[name] = struct{}{}
		}
		if len(foldAll(r.Cities)) == 0 {
			problems = append(problems, fmt.Sprintf("regions[%d]: at least one city is required", i))
		}
		if c := r.Coordinates; c != nil {
			if !finite(c.Lat) || !finite(c.Lng) || c.Lat < -90 || c.Lat > 90 || c.Lng < -180 || c.Lng > 180 {
				problems = append(problems, fmt.Sprintf("regions[%d]: coordinates out of range", i))
			}
		}
	}

	for i, c := range t.Certifications {
		if fold(c.Name) == "" {
			problems = append(problems, fmt.Sprintf("certifications[%d]: name is required", i))
		}
		if !finite(c.Weight) || c.Weight <= 0 || c.Weight > 1 {
			problems = append(problems, fmt.Sprintf("certifications[%d]: weight must be in (0,1], got %v", i, c.Weight))
		}
		if len(foldAll(c.Categories)) == 0 {
			problems = append(problems, fmt.Sprintf("certifications[%d]: at least one category is required", i))
		}
	}

	for i, l := range t.Languages {
		if fold(l.Name) == "" {
			problems = append(problems, fmt.Sprintf("languages[%d]: name is required", i))
		}
		if !finite(l.SpeakerShare) || l.SpeakerShare < 0 || l.SpeakerShare > 1 {
			problems = append(problems, fmt.Sprintf("languages[%d]: speakerShare must be in [0,1], got %v", i, l.SpeakerShare))
		}
		if len(foldAll(l.Regions)) == 0 {
			problems = append(problems, fmt.Sprintf("languages[%d]: at least one region is required", i))
		}
	}

	if len(problems) > 0 {
		return errors.NewReferenceTablesInvalidError(strings.Join(problems, "; "))
	}
	return nil
}

// Clone returns a deep copy of t.
func (t Tables) Clone() Tables {
	out := Tables{
		Regions:        make([]Region, len(t.Regions)),
		Certifications: make([]Certification, len(t.Certifications)),
		Languages:      make([]Language, len(t.Languages)),
	}
	for i, r := range t.Regions {
		r.Cities = append([]string(nil), r.Cities...)
		r.TransportHubs = append([]string(nil), r.TransportHubs...)
		if r.Coordinates != nil {
			c := *r.Coordinates
			r.Coordinates = &c
		}
		out.Regions[i] = r
	}
	for i, c := range t.Certifications {
		c.Categories = append([]string(nil), c.Categories...)
		out.Certifications[i] = c
	}
	for i, l := range t.Languages {
		l.Regions = append([]string(nil), l.Regions...)
		out.Languages[i] = l
	}
	return out
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
