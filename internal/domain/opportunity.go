package domain

import "time"

// Comment is one top-level reply kept alongside a content item.
type Comment struct {
	Text  string `json:"text"`
	Score int    `json:"score"`
}

// ContentItem is a candidate discussion post that passed the quality filters.
type ContentItem struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	URL         string    `json:"url"`
	Subreddit   string    `json:"subreddit"`
	Score       int       `json:"score"`
	NumComments int       `json:"num_comments"`
	CreatedAt   time.Time `json:"created_at"`
	Comments    []Comment `json:"comments"`
}

// WillingnessToPay is the judged payment propensity of the audience.
type WillingnessToPay string

const (
	WTPHigh   WillingnessToPay = "high"
	WTPMedium WillingnessToPay = "medium"
	WTPLow    WillingnessToPay = "low"
	WTPNone   WillingnessToPay = "none"
)

// Frequency is how often the described pain occurs.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Recommendation is the judgment service's verdict on an item.
type Recommendation string

const (
	RecommendStrong   Recommendation = "strong_opportunity"
	RecommendModerate Recommendation = "moderate"
	RecommendWeak     Recommendation = "weak"
	RecommendSkip     Recommendation = "skip"
)

// Signal holds the fields returned by the judgment service, before scoring.
type Signal struct {
	PainScore         int              `json:"pain_score"`
	BusinessContext   bool             `json:"business_context"`
	WillingnessToPay  WillingnessToPay `json:"willingness_to_pay"`
	Frequency         Frequency        `json:"frequency"`
	PeopleAffected    int              `json:"people_affected"`
	KeyPainIndicators []string         `json:"key_pain_indicators"`
	MeTooCount        int              `json:"me_too_count"`
	ExistingSolutions []string         `json:"existing_solutions"`
	SolutionGaps      []string         `json:"solution_gaps"`
	Recommendation    Recommendation   `json:"recommendation"`
	Reasoning         string           `json:"reasoning"`
}

// SignalRecord is a Signal with its computed opportunity score (0..1000).
type SignalRecord struct {
	Signal
	OpportunityScore int `json:"opportunity_score"`
}

// RankedOpportunity pairs an item with its signal record. It encodes as one
// JSON object with the record nested under "analysis".
type RankedOpportunity struct {
	ContentItem
	Analysis SignalRecord `json:"analysis"`
}
