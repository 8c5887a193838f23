package leveling

import (
	"time"

	"github.com/example/wordtrack/pkg/models"
)

// Engine evaluates achievement conditions against learner aggregates
type Engine struct {
	catalog []Definition
}

// NewEngine creates an engine over catalog, or DefaultCatalog when empty
func NewEngine(catalog []Definition) *Engine {
	if len(catalog) == 0 {
		catalog = DefaultCatalog()
	}
	return &Engine{catalog: catalog}
}

// Catalog returns the definitions in catalog order
func (e *Engine) Catalog() []Definition {
	out := make([]Definition, len(e.catalog))
	copy(out, e.catalog)
	return out
}

// Evaluate returns the definitions that are still locked and whose condition
// holds. Already unlocked ids are never evaluated again.
func (e *Engine) Evaluate(unlocked map[string]time.Time, agg models.Aggregates) []Definition {
	var newly []Definition
	for _, def := range e.catalog {
		if _, ok := unlocked[def.ID]; ok {
			continue
		}
		if def.Condition.Met(agg) {
			newly = append(newly, def)
		}
	}
	return newly
}

// View joins the catalog with the learner's unlock times
func (e *Engine) View(unlocked map[string]time.Time) []models.Achievement {
	out := make([]models.Achievement, 0, len(e.catalog))
	for _, def := range e.catalog {
		a := models.Achievement{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			Icon:        def.Icon,
			Category:    def.Category,
		}
		if at, ok := unlocked[def.ID]; ok {
			at := at
			a.UnlockedAt = &at
		}
		out = append(out, a)
	}
	return out
}
