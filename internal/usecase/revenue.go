package usecase

import (
	"math"

	"IdeaValidator/internal/domain"
)

const (
	// DefaultPeopleAffected applies when a request omits people_affected.
	DefaultPeopleAffected = 100
	// MaxPeopleAffected bounds the reach estimate; larger inputs are clamped.
	MaxPeopleAffected = math.MaxInt32
)

type priceTier struct {
	low, mid, high int
}

var priceTiers = map[domain.WillingnessToPay]priceTier{
	domain.WTPHigh:   {low: 79, mid: 149, high: 299},
	domain.WTPMedium: {low: 29, mid: 49, high: 99},
	domain.WTPLow:    {low: 9, mid: 19, high: 39},
	domain.WTPNone:   {},
}

// EstimateRevenue projects conservative, moderate and optimistic revenue
// scenarios. Unknown willingness values use the low tier.
func EstimateRevenue(in domain.RevenueInput) domain.RevenueProjection {
	people := min(max(in.PeopleAffected, 0), MaxPeopleAffected)
	addressable := percent(people, 15)

	tier, ok := priceTiers[in.WillingnessToPay]
	if !ok {
		tier = priceTiers[domain.WTPLow]
	}

	return domain.RevenueProjection{
		Conservative:      scenario(max(10, percent(addressable, 10)), tier.low),
		Moderate:          scenario(max(50, percent(addressable, 20)), tier.mid),
		Optimistic:        scenario(max(100, percent(addressable, 40)), tier.high),
		AddressableMarket: addressable,
	}
}

// percent returns floor(n*pct/100) without forming n*pct.
func percent(n, pct int) int {
	return n/100*pct + n%100*pct/100
}

func scenario(customers, price int) domain.RevenueScenario {
	mrr := customers * price
	return domain.RevenueScenario{
		Customers: customers,
		Price:     price,
		MRR:       mrr,
		Annual:    mrr * 12,
	}
}
