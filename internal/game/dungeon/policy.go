package dungeon

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/hallcrawl/internal/game/dice"
)

// InhabitantWeights are the relative odds of each inhabitant kind.
type InhabitantWeights struct {
	Empty    int
	Treasure int
	Foe      int
}

// FoeWeights are the relative odds of an ordinary versus a disguised foe.
type FoeWeights struct {
	Ordinary  int
	Disguised int
}

// TreasureWeights are the relative odds of each drawable treasure item.
type TreasureWeights struct {
	LightSource  int
	SpeedBoots   int
	HealthPotion int
}

// Policy is the content-distribution policy used by the Generator.
type Policy struct {
	// HallwayLength is rolled for every new hallway before the difficulty bonus.
	HallwayLength dice.Expression
	// DifficultyStep adds one segment per DifficultyStep points of difficulty.
	DifficultyStep int
	Inhabitants    InhabitantWeights
	Foes           FoeWeights
	Treasure       TreasureWeights
}

// DefaultPolicy returns the built-in policy: length 1d3 (+1 per 10 difficulty),
// inhabitants {2,1,2}, foes {5,1}, treasure {2,3,5}.
func DefaultPolicy() Policy {
	return Policy{
		HallwayLength:  dice.MustParse("1d3"),
		DifficultyStep: 10,
		Inhabitants:    InhabitantWeights{Empty: 2, Treasure: 1, Foe: 2},
		Foes:           FoeWeights{Ordinary: 5, Disguised: 1},
		Treasure:       TreasureWeights{LightSource: 2, SpeedBoots: 3, HealthPotion: 5},
	}
}

// Validate checks all policy invariants.
//
// Postcondition: Returns nil if the policy is usable, or an error describing all violations.
func (p Policy) Validate() error {
	var errs []string
	if p.HallwayLength.Count < 1 || p.HallwayLength.Sides < 1 {
		errs = append(errs, "hallway.length must roll at least one die with at least one side")
	} else if p.HallwayLength.Min() < 1 {
		errs = append(errs, fmt.Sprintf("hallway.length minimum must be >= 1, got %d", p.HallwayLength.Min()))
	}
	if p.DifficultyStep < 1 {
		errs = append(errs, fmt.Sprintf("hallway.difficulty_step must be >= 1, got %d", p.DifficultyStep))
	}
	if err := validateWeights("inhabitants", p.Inhabitants.Empty, p.Inhabitants.Treasure, p.Inhabitants.Foe); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateWeights("foes", p.Foes.Ordinary, p.Foes.Disguised); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateWeights("treasure", p.Treasure.LightSource, p.Treasure.SpeedBoots, p.Treasure.HealthPotion); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return fmt.Errorf("policy validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateWeights(table string, weights ...int) error {
	total := 0
	for _, w := range weights {
		if w < 0 {
			return fmt.Errorf("%s weights must not be negative", table)
		}
		total += w
	}
	if total == 0 {
		return errors.New(table + " weights must not all be zero")
	}
	return nil
}

// yamlPolicyFile is the top-level YAML structure for policy files.
type yamlPolicyFile struct {
	Policy yamlPolicy `yaml:"policy"`
}

type yamlPolicy struct {
	Hallway struct {
		Length         string `yaml:"length"`
		DifficultyStep int    `yaml:"difficulty_step"`
	} `yaml:"hallway"`
	Inhabitants struct {
		Empty    int `yaml:"empty"`
		Treasure int `yaml:"treasure"`
		Foe      int `yaml:"foe"`
	} `yaml:"inhabitants"`
	Foes struct {
		Ordinary  int `yaml:"ordinary"`
		Disguised int `yaml:"disguised"`
	} `yaml:"foes"`
	Treasure struct {
		LightSource  int `yaml:"light_source"`
		SpeedBoots   int `yaml:"speed_boots"`
		HealthPotion int `yaml:"health_potion"`
	} `yaml:"treasure"`
}

// LoadPolicyFromFile reads and validates a policy YAML file.
//
// Precondition: path must point to a valid YAML policy file.
// Postcondition: Returns a validated Policy or a non-nil error.
func LoadPolicyFromFile(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("reading policy file %s: %w", path, err)
	}
	return LoadPolicyFromBytes(data)
}

// LoadPolicyFromBytes parses and validates a policy from YAML bytes.
//
// Postcondition: Returns a validated Policy or a non-nil error.
func LoadPolicyFromBytes(data []byte) (Policy, error) {
	var file yamlPolicyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Policy{}, fmt.Errorf("parsing policy YAML: %w", err)
	}
	y := file.Policy

	expr, err := dice.Parse(y.Hallway.Length)
	if err != nil {
		return Policy{}, fmt.Errorf("parsing hallway.length: %w", err)
	}
	p := Policy{
		HallwayLength:  expr,
		DifficultyStep: y.Hallway.DifficultyStep,
		Inhabitants:    InhabitantWeights{Empty: y.Inhabitants.Empty, Treasure: y.Inhabitants.Treasure, Foe: y.Inhabitants.Foe},
		Foes:           FoeWeights{Ordinary: y.Foes.Ordinary, Disguised: y.Foes.Disguised},
		Treasure:       TreasureWeights{LightSource: y.Treasure.LightSource, SpeedBoots: y.Treasure.SpeedBoots, HealthPotion: y.Treasure.HealthPotion},
	}
	if err := p.Validate(); err != nil {
		return Policy{}, fmt.Errorf("validating policy: %w", err)
	}
	return p, nil
}
