package flow

import (
	"sort"

	"funnelworks/internal/model"
	"funnelworks/internal/scoring"
)

// ScoreFunc derives a result from a session's recorded answers or inputs
type ScoreFunc func(s *model.ToolSession) (*model.Result, error)

// Definition parameterises the generic flow for one tool
type Definition struct {
	ToolID     model.ToolID
	Title      string
	Steps      []model.Step // empty for input-driven tools
	InputBased bool
	Score      ScoreFunc
}

// TotalSteps counts the screens before the lead gate. Input tools have one.
func (d *Definition) TotalSteps() int {
	if d.InputBased {
		return 1
	}
	return len(d.Steps)
}

// Info returns the catalog entry for the definition
func (d *Definition) Info() model.ToolInfo {
	return model.ToolInfo{
		ID:         d.ToolID,
		Title:      d.Title,
		StepCount:  d.TotalSteps(),
		InputBased: d.InputBased,
	}
}

// Catalog holds the definitions of every available tool
type Catalog struct {
	defs map[model.ToolID]*Definition
}

// NewCatalog builds the stock tool catalog
func NewCatalog(roi scoring.ROIConfig) *Catalog {
	c := &Catalog{defs: make(map[model.ToolID]*Definition)}

	c.Register(&Definition{
		ToolID: model.ToolConstellationScore,
		Title:  "Constellation Score",
		Steps:  scoring.ConstellationSteps,
		Score: func(s *model.ToolSession) (*model.Result, error) {
			res, err := scoring.ScoreQuiz(scoring.ConstellationSteps, s.Answers)
			if err != nil {
				return nil, err
			}
			return &model.Result{Kind: model.ResultQuiz, Quiz: res}, nil
		},
	})

	c.Register(&Definition{
		ToolID: model.ToolFunnelAlchemy,
		Title:  "Funnel Alchemy",
		Steps:  scoring.AlchemySteps,
		Score: func(s *model.ToolSession) (*model.Result, error) {
			res, err := scoring.ScoreDiagnostic(scoring.AlchemySteps, s.Answers)
			if err != nil {
				return nil, err
			}
			return &model.Result{Kind: model.ResultDiagnostic, Diagnostic: res}, nil
		},
	})

	c.Register(&Definition{
		ToolID:     model.ToolSpellbookROI,
		Title:      "Spellbook ROI",
		InputBased: true,
		Score: func(s *model.ToolSession) (*model.Result, error) {
			if s.Inputs == nil {
				return nil, scoring.ErrInvalidInputs
			}
			res, err := scoring.CalculateROI(roi, *s.Inputs)
			if err != nil {
				return nil, err
			}
			return &model.Result{Kind: model.ResultROI, ROI: res}, nil
		},
	})

	return c
}

// Register adds or replaces a definition
func (c *Catalog) Register(def *Definition) {
	c.defs[def.ToolID] = def
}

// Get looks up a definition by tool id
func (c *Catalog) Get(id model.ToolID) (*Definition, bool) {
	def, ok := c.defs[id]
	return def, ok
}

// List returns catalog entries sorted by tool id
func (c *Catalog) List() []model.ToolInfo {
	out := make([]model.ToolInfo, 0, len(c.defs))
	for _, def := range c.defs {
		out = append(out, def.Info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
