package pipeline

import "fmt"

// Stage names, also used as keys of Verdict.ValidationSteps.
const (
	StageNormalize  = "normalize"
	StageMarkup     = "markup"
	StageSanitize   = "sanitize"
	StageStyles     = "styles"
	StageScript     = "script"
	StageWrap       = "wrap"
	StageResponsive = "responsive"
)

// Stage categories
const (
	CategoryPrepare   = "prepare"
	CategorySecurity  = "security"
	CategoryStatic    = "static"
	CategoryTransform = "transform"
	CategoryDynamic   = "dynamic"
)

// StageDefinition defines a pipeline stage with its dependencies
type StageDefinition struct {
	Name         string
	Category     string
	Dependencies []string
	// ModeSensitive stages have their errors demoted to warnings in permissive mode.
	ModeSensitive bool
}

// StageRegistry maps stage names to their definitions
var StageRegistry = map[string]StageDefinition{
	StageNormalize: {
		Name:     StageNormalize,
		Category: CategoryPrepare,
	},
	StageMarkup: {
		Name:         StageMarkup,
		Category:     CategorySecurity,
		Dependencies: []string{StageNormalize},
	},
	StageSanitize: {
		Name:         StageSanitize,
		Category:     CategorySecurity,
		Dependencies: []string{StageNormalize},
	},
	StageStyles: {
		Name:         StageStyles,
		Category:     CategoryStatic,
		Dependencies: []string{StageNormalize},
	},
	StageScript: {
		Name:          StageScript,
		Category:      CategoryStatic,
		Dependencies:  []string{StageNormalize},
		ModeSensitive: true,
	},
	StageWrap: {
		Name:         StageWrap,
		Category:     CategoryTransform,
		Dependencies: []string{StageScript},
	},
	StageResponsive: {
		Name:          StageResponsive,
		Category:      CategoryDynamic,
		Dependencies:  []string{StageSanitize, StageStyles, StageWrap},
		ModeSensitive: true,
	},
}

// StageOrder is the order stages execute and are aggregated in.
var StageOrder = []string{
	StageNormalize,
	StageMarkup,
	StageSanitize,
	StageStyles,
	StageScript,
	StageWrap,
	StageResponsive,
}

// DependencyError represents a stage scheduled before one of its dependencies
type DependencyError struct {
	Stage               string
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("stage %s: missing dependencies: %v", e.Stage, e.MissingDependencies)
}

// ValidateOrder checks that every stage in order is known and runs after its dependencies.
func ValidateOrder(order []string) error {
	done := make(map[string]bool, len(order))
	for _, name := range order {
		def, ok := StageRegistry[name]
		if !ok {
			return fmt.Errorf("unknown stage: %s", name)
		}
		var missing []string
		for _, dep := range def.Dependencies {
			if !done[dep] {
				missing = append(missing, dep)
			}
		}
		if len(missing) > 0 {
			return &DependencyError{Stage: name, MissingDependencies: missing}
		}
		done[name] = true
	}
	return nil
}

// StageCategories maps each stage name to its category.
func StageCategories() map[string]string {
	categories := make(map[string]string, len(StageRegistry))
	for name, def := range StageRegistry {
		categories[name] = def.Category
	}
	return categories
}
