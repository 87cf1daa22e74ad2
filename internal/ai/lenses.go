package ai

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ideaforge/ideaforge/internal/types"
)

//go:embed lenses.yaml
var lensesYAML []byte

// LensSpec describes one fixed exploration lens: its display identity and
// the structured shape its harvest responses take. Lenses with section
// keys return a JSON object with one concept array per section; flat
// lenses return a single array of persona-feedback records.
type LensSpec struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Flat        bool     `yaml:"flat"`
	Sections    []string `yaml:"sections"`
	Prompt      string   `yaml:"prompt"`
}

var lensSpecs []LensSpec

func init() {
	var doc struct {
		Lenses []LensSpec `yaml:"lenses"`
	}
	if err := yaml.Unmarshal(lensesYAML, &doc); err != nil {
		panic(fmt.Sprintf("embedded lenses.yaml is invalid: %v", err))
	}
	if len(doc.Lenses) != len(types.Lenses()) {
		panic(fmt.Sprintf("embedded lenses.yaml defines %d lenses, want %d", len(doc.Lenses), len(types.Lenses())))
	}
	lensSpecs = doc.Lenses
}

// LensSpecs returns the fixed lenses in display order.
func LensSpecs() []LensSpec {
	return lensSpecs
}

// SpecFor returns the lens spec for the given lens.
func SpecFor(l types.Lens) LensSpec {
	return lensSpecs[int(l)]
}

// HarvestPrompt renders the lens's harvest prompt for the confirmed
// problem statement, prefixed with the session persona.
func HarvestPrompt(l types.Lens, problemStatement string) string {
	spec := SpecFor(l)
	body := strings.ReplaceAll(spec.Prompt, "{{problem}}", problemStatement)
	return SystemTemplate + "\n\n" + body
}
