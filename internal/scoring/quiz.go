package scoring

import (
	"fmt"

	"funnelworks/internal/model"
)

// QuizLevel is one band of the threshold-sum quiz
type QuizLevel struct {
	MaxScore       int // inclusive upper bound
	Name           string
	Description    string
	Recommendation string
	Potential      string
}

// QuizLevels are ordered by ascending upper bound; the last band is open-ended.
var QuizLevels = []QuizLevel{
	{
		MaxScore:       14,
		Name:           "Dim Star",
		Description:    "Your funnel psychology is just beginning to awaken",
		Recommendation: "You need immediate psychological intervention. Your current approach is leaving massive money on the table.",
		Potential:      "With proper psychology implementation, you could see 300-500% conversion improvement.",
	},
	{
		MaxScore:       21,
		Name:           "Glowing Ember",
		Description:    "You have basic psychological awareness but lack strategic implementation",
		Recommendation: "You understand the concepts but need advanced psychological architecture to see breakthrough results.",
		Potential:      "Strategic psychology upgrades could deliver 150-250% conversion increases.",
	},
	{
		MaxScore:       28,
		Name:           "Bright Constellation",
		Description:    "You're using psychology strategically but missing the advanced triggers",
		Recommendation: "You're on the right track. Advanced psychological engineering will push you to elite performance.",
		Potential:      "Fine-tuned psychological optimization could add 50-100% to your current results.",
	},
	{
		MaxScore:       -1,
		Name:           "Master Constellation",
		Description:    "You're already operating at an advanced psychological level",
		Recommendation: "You understand deep psychology. You likely just need technical execution and fresh perspective.",
		Potential:      "Expert-level refinements and new psychological angles could add 20-40% improvement.",
	},
}

const (
	quizMinValue = 1
	quizMaxValue = 5
)

// LevelFor returns the quiz band containing score
func LevelFor(score int) QuizLevel {
	for _, lvl := range QuizLevels {
		if lvl.MaxScore < 0 || score <= lvl.MaxScore {
			return lvl
		}
	}
	return QuizLevels[len(QuizLevels)-1]
}

// ScoreQuiz sums the answer values of every step and maps the total to a level.
// Answers must cover every step; insights are returned in step order.
func ScoreQuiz(steps []model.Step, answers map[string]model.Answer) (*model.QuizResult, error) {
	score := 0
	insights := make([]string, 0, len(steps))
	for _, step := range steps {
		a, ok := answers[step.ID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingAnswer, step.ID)
		}
		if a.Value < quizMinValue || a.Value > quizMaxValue {
			return nil, fmt.Errorf("%w: %s=%d", ErrValueOutOfRange, step.ID, a.Value)
		}
		score += a.Value
		insights = append(insights, a.Tag)
	}

	lvl := LevelFor(score)
	return &model.QuizResult{
		Score:          score,
		MaxScore:       len(steps) * quizMaxValue,
		Level:          lvl.Name,
		Description:    lvl.Description,
		Recommendation: lvl.Recommendation,
		Potential:      lvl.Potential,
		Insights:       insights,
	}, nil
}

// ConstellationSteps are the seven questions of the Constellation Score quiz
var ConstellationSteps = []model.Step{
	{
		ID:       "funnel_performance",
		Prompt:   "What's your current funnel conversion rate?",
		Subtitle: "Be honest - this determines your Constellation alignment",
		Options: []model.Option{
			{Text: "Under 10% (or I don't know)", Value: 1, Tag: "Your funnel lacks psychological foundation"},
			{Text: "10-25%", Value: 2, Tag: "Basic conversion principles present"},
			{Text: "25-40%", Value: 3, Tag: "Good foundation, needs optimization"},
			{Text: "40-60%", Value: 4, Tag: "Strong performance with potential"},
			{Text: "Over 60%", Value: 5, Tag: "You're already using advanced psychology"},
		},
	},
	{
		ID:       "psychology_awareness",
		Prompt:   "How well do you understand your buyer's psychology?",
		Subtitle: "This reveals your Constellation's depth",
		Options: []model.Option{
			{Text: "I focus mainly on features and benefits", Value: 1, Tag: "Missing the psychological layer entirely"},
			{Text: "I know some pain points and desires", Value: 2, Tag: "Surface-level psychological understanding"},
			{Text: "I understand decision triggers and objections", Value: 3, Tag: "Good grasp of buyer psychology"},
			{Text: "I map emotional journeys and cognitive biases", Value: 4, Tag: "Advanced psychological insight"},
			{Text: "I engineer subconscious responses and behaviors", Value: 5, Tag: "Master-level psychological design"},
		},
	},
	{
		ID:       "urgency_scarcity",
		Prompt:   "How do you create urgency in your offers?",
		Subtitle: "Urgency alignment affects Constellation brightness",
		Options: []model.Option{
			{Text: "I don't really use urgency", Value: 1, Tag: "Missing critical conversion catalyst"},
			{Text: `Basic countdown timers or "limited time"`, Value: 2, Tag: "Using urgency but not strategically"},
			{Text: "Deadline-driven with real consequences", Value: 3, Tag: "Good urgency implementation"},
			{Text: "Multiple urgency layers (time, quantity, bonus)", Value: 4, Tag: "Advanced urgency orchestration"},
			{Text: "Psychological urgency based on loss aversion", Value: 5, Tag: "Expert urgency psychology"},
		},
	},
	{
		ID:       "social_proof",
		Prompt:   "How do you leverage social proof?",
		Subtitle: "Social validation strengthens Constellation power",
		Options: []model.Option{
			{Text: "Testimonials on my website", Value: 1, Tag: "Basic social proof implementation"},
			{Text: "Customer reviews and case studies", Value: 2, Tag: "Standard social proof usage"},
			{Text: "Specific results and transformation stories", Value: 3, Tag: "Results-focused social proof"},
			{Text: "Authority positioning and media mentions", Value: 4, Tag: "Authority-based social validation"},
			{Text: "Psychological social proof triggers throughout funnel", Value: 5, Tag: "Master-level social proof psychology"},
		},
	},
	{
		ID:       "objection_handling",
		Prompt:   "How do you handle objections in your funnel?",
		Subtitle: "Objection mastery reveals Constellation maturity",
		Options: []model.Option{
			{Text: "I don't really address objections directly", Value: 1, Tag: "Objections are killing your conversion"},
			{Text: "FAQ section covers common questions", Value: 2, Tag: "Basic objection acknowledgment"},
			{Text: "Proactive objection handling in copy", Value: 3, Tag: "Good objection management"},
			{Text: "Objections addressed before they arise", Value: 4, Tag: "Advanced objection prevention"},
			{Text: "Psychological reframing that eliminates objections", Value: 5, Tag: "Master-level objection alchemy"},
		},
	},
	{
		ID:       "value_presentation",
		Prompt:   "How do you present your offer's value?",
		Subtitle: "Value articulation affects Constellation clarity",
		Options: []model.Option{
			{Text: "List of features and what's included", Value: 1, Tag: "Feature-focused, not value-focused"},
			{Text: "Benefits and outcomes they'll receive", Value: 2, Tag: "Benefit-aware but not psychologically driven"},
			{Text: "Transformation and before/after states", Value: 3, Tag: "Transformation-focused approach"},
			{Text: "ROI calculation and value stacking", Value: 4, Tag: "Advanced value demonstration"},
			{Text: "Psychological value anchoring with emotional triggers", Value: 5, Tag: "Expert psychological value presentation"},
		},
	},
	{
		ID:       "funnel_optimization",
		Prompt:   "How do you optimize your funnel performance?",
		Subtitle: "Optimization approach reveals Constellation evolution",
		Options: []model.Option{
			{Text: "I don't really track or optimize", Value: 1, Tag: "Flying blind without data"},
			{Text: "Basic analytics and occasional tweaks", Value: 2, Tag: "Minimal optimization effort"},
			{Text: "Regular A/B testing of elements", Value: 3, Tag: "Data-driven optimization mindset"},
			{Text: "Systematic testing with psychological hypotheses", Value: 4, Tag: "Advanced optimization strategy"},
			{Text: "Behavioral psychology testing with deep analytics", Value: 5, Tag: "Master-level optimization science"},
		},
	},
}
