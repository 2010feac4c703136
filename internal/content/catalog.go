// Package content serves the static health guidance, weekly tips, symptom
// options and facility directory embedded in the binary.
package content

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

const FallbackTipsWeek = 24

//go:embed catalog.yaml
var embeddedCatalog []byte

type Preconception struct {
	Category       string `yaml:"category" json:"category"`
	Recommendation string `yaml:"recommendation" json:"recommendation"`
	Importance     string `yaml:"importance" json:"importance"`
}

type Recommendation struct {
	Category  string `yaml:"category" json:"category"`
	Guidance  string `yaml:"guidance" json:"guidance"`
	Frequency string `yaml:"frequency" json:"frequency"`
}

type Checkup struct {
	Type        string   `yaml:"type" json:"type"`
	Timing      string   `yaml:"timing" json:"timing"`
	Urgent      bool     `yaml:"urgent" json:"urgent"`
	Description string   `yaml:"description" json:"description"`
	Tests       []string `yaml:"tests" json:"tests"`
}

type TrimesterGuidance struct {
	Trimester       int              `yaml:"trimester" json:"trimester"`
	Weeks           string           `yaml:"weeks" json:"weeks"`
	Recommendations []Recommendation `yaml:"recommendations" json:"recommendations"`
	Checkups        []Checkup        `yaml:"checkups" json:"checkups"`
}

type Postpartum struct {
	Category       string `yaml:"category" json:"category"`
	Recommendation string `yaml:"recommendation" json:"recommendation"`
	Timing         string `yaml:"timing" json:"timing"`
}

type Guidelines struct {
	Preconception []Preconception     `yaml:"preconception" json:"preconception"`
	Trimesters    []TrimesterGuidance `yaml:"trimesters" json:"trimesters"`
	Postpartum    []Postpartum        `yaml:"postpartum" json:"postpartum"`
}

type Tip struct {
	Category string `yaml:"category" json:"category"`
	Tip      string `yaml:"tip" json:"tip"`
	Priority string `yaml:"priority" json:"priority"`
}

type Development struct {
	BabySize  string `yaml:"baby_size" json:"baby_size"`
	Weight    string `yaml:"weight" json:"weight"`
	Length    string `yaml:"length" json:"length"`
	Milestone string `yaml:"milestone" json:"milestone"`
}

type WeeklyTips struct {
	Week        int         `yaml:"week" json:"week"`
	Message     string      `yaml:"message" json:"message"`
	Tips        []Tip       `yaml:"tips" json:"tips"`
	Development Development `yaml:"development" json:"development"`
	Symptoms    []string    `yaml:"symptoms" json:"symptoms"`
}

type SymptomOption struct {
	ID    string `yaml:"id" json:"id"`
	Label string `yaml:"label" json:"label"`
}

type Catalog struct {
	EmergencyNumber string          `yaml:"emergency_number" json:"emergency_number"`
	Guidelines      Guidelines      `yaml:"guidelines" json:"guidelines"`
	WeeklyTips      []WeeklyTips    `yaml:"weekly_tips" json:"weekly_tips"`
	Symptoms        []SymptomOption `yaml:"symptoms" json:"symptoms"`
	Facilities      []Facility      `yaml:"facilities" json:"facilities"`

	tipsByWeek     map[int]WeeklyTips
	symptomIDs     map[string]struct{}
	facilitiesByID map[string]Facility
}

var loadEmbedded = sync.OnceValues(func() (*Catalog, error) {
	return Parse(embeddedCatalog)
})

// Load returns the embedded catalog. It is parsed on first use and shared.
func Load() (*Catalog, error) {
	return loadEmbedded()
}

// Parse decodes and validates a catalog document.
func Parse(raw []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		return nil, fmt.Errorf("decode content catalog: %w", err)
	}
	if err := catalog.index(); err != nil {
		return nil, err
	}
	return &catalog, nil
}

func (catalog *Catalog) index() error {
	if catalog.EmergencyNumber == "" {
		return errors.New("content catalog: emergency_number is required")
	}

	seenTrimesters := make(map[int]struct{}, len(catalog.Guidelines.Trimesters))
	for _, guidance := range catalog.Guidelines.Trimesters {
		if guidance.Trimester < 1 || guidance.Trimester > 3 {
			return fmt.Errorf("content catalog: trimester %d out of range", guidance.Trimester)
		}
		if _, dup := seenTrimesters[guidance.Trimester]; dup {
			return fmt.Errorf("content catalog: duplicate trimester %d", guidance.Trimester)
		}
		seenTrimesters[guidance.Trimester] = struct{}{}
	}

	catalog.tipsByWeek = make(map[int]WeeklyTips, len(catalog.WeeklyTips))
	for _, tips := range catalog.WeeklyTips {
		if _, dup := catalog.tipsByWeek[tips.Week]; dup {
			return fmt.Errorf("content catalog: duplicate tips for week %d", tips.Week)
		}
		catalog.tipsByWeek[tips.Week] = tips
	}
	if _, ok := catalog.tipsByWeek[FallbackTipsWeek]; !ok {
		return fmt.Errorf("content catalog: tips for fallback week %d are required", FallbackTipsWeek)
	}

	catalog.symptomIDs = make(map[string]struct{}, len(catalog.Symptoms))
	for _, symptom := range catalog.Symptoms {
		if symptom.ID == "" {
			return errors.New("content catalog: symptom id is required")
		}
		if _, dup := catalog.symptomIDs[symptom.ID]; dup {
			return fmt.Errorf("content catalog: duplicate symptom %q", symptom.ID)
		}
		catalog.symptomIDs[symptom.ID] = struct{}{}
	}

	catalog.facilitiesByID = make(map[string]Facility, len(catalog.Facilities))
	for _, facility := range catalog.Facilities {
		if err := facility.validate(); err != nil {
			return fmt.Errorf("content catalog: %w", err)
		}
		if _, dup := catalog.facilitiesByID[facility.ID]; dup {
			return fmt.Errorf("content catalog: duplicate facility %q", facility.ID)
		}
		catalog.facilitiesByID[facility.ID] = facility
	}
	return nil
}

func (catalog *Catalog) HasSymptom(id string) bool {
	_, ok := catalog.symptomIDs[id]
	return ok
}

func (catalog *Catalog) FacilityByID(id string) (Facility, bool) {
	facility, ok := catalog.facilitiesByID[id]
	return facility, ok
}

func (catalog *Catalog) TrimesterGuidance(trimester int) (TrimesterGuidance, bool) {
	for _, guidance := range catalog.Guidelines.Trimesters {
		if guidance.Trimester == trimester {
			return guidance, true
		}
	}
	return TrimesterGuidance{}, false
}

// TipsForWeek returns the tips for week, or the fallback week when the
// catalog has none for it.
func (catalog *Catalog) TipsForWeek(week int) WeeklyTips {
	if tips, ok := catalog.tipsByWeek[week]; ok {
		return tips
	}
	return catalog.tipsByWeek[FallbackTipsWeek]
}
