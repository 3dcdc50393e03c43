package domain

// TimeAvailable is how much time a founder can commit.
type TimeAvailable string

const (
	TimeNightsWeekends TimeAvailable = "nights_weekends"
	TimePartTime       TimeAvailable = "part_time"
	TimeFullTime       TimeAvailable = "full_time"
)

// UserProfile describes the person a dashboard is personalized for.
type UserProfile struct {
	Background    string        `json:"background"`
	Interests     []string      `json:"interests"`
	TimeAvailable TimeAvailable `json:"time_available"`
	// Budget encodes a range such as "1-5k" or "10k+".
	Budget string `json:"budget"`
}

// CategoryMatch is one category's fit for a profile, 0..100.
type CategoryMatch struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Match       int    `json:"match"`
}

// RevenueInput is the subset of a signal the revenue model needs.
type RevenueInput struct {
	PeopleAffected   int              `json:"people_affected"`
	WillingnessToPay WillingnessToPay `json:"willingness_to_pay"`
}

// RevenueScenario is one customer/price projection.
type RevenueScenario struct {
	Customers int `json:"customers"`
	Price     int `json:"price"`
	MRR       int `json:"mrr"`
	Annual    int `json:"annual"`
}

// RevenueProjection bundles the three scenarios with the market size they derive from.
type RevenueProjection struct {
	Conservative      RevenueScenario `json:"conservative"`
	Moderate          RevenueScenario `json:"moderate"`
	Optimistic        RevenueScenario `json:"optimistic"`
	AddressableMarket int             `json:"addressable_market"`
}
