package usecase

import (
	"math"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"IdeaValidator/internal/domain"
)

func TestEstimateRevenue(t *testing.T) {
	convey.Convey("Given an audience that will not pay", t, func() {
		p := EstimateRevenue(domain.RevenueInput{PeopleAffected: 1000, WillingnessToPay: domain.WTPNone})

		convey.Convey("Then customers follow the floor rule and revenue is zero", func() {
			convey.So(p.AddressableMarket, convey.ShouldEqual, 150)
			convey.So(p.Conservative.Customers, convey.ShouldEqual, 15)
			convey.So(p.Moderate.Customers, convey.ShouldEqual, 50)
			convey.So(p.Optimistic.Customers, convey.ShouldEqual, 100)
			for _, s := range []domain.RevenueScenario{p.Conservative, p.Moderate, p.Optimistic} {
				convey.So(s.Price, convey.ShouldEqual, 0)
				convey.So(s.MRR, convey.ShouldEqual, 0)
				convey.So(s.Annual, convey.ShouldEqual, 0)
			}
		})
	})

	convey.Convey("Given a small audience", t, func() {
		p := EstimateRevenue(domain.RevenueInput{PeopleAffected: 20, WillingnessToPay: domain.WTPNone})

		convey.Convey("Then minimum customer counts apply", func() {
			convey.So(p.AddressableMarket, convey.ShouldEqual, 3)
			convey.So(p.Conservative.Customers, convey.ShouldEqual, 10)
			convey.So(p.Moderate.Customers, convey.ShouldEqual, 50)
			convey.So(p.Optimistic.Customers, convey.ShouldEqual, 100)
		})
	})

	convey.Convey("Given a large audience with high willingness to pay", t, func() {
		p := EstimateRevenue(domain.RevenueInput{PeopleAffected: 100_000, WillingnessToPay: domain.WTPHigh})

		convey.So(p.AddressableMarket, convey.ShouldEqual, 15_000)
		convey.So(p.Conservative, convey.ShouldResemble, domain.RevenueScenario{Customers: 1500, Price: 79, MRR: 118_500, Annual: 1_422_000})
		convey.So(p.Moderate, convey.ShouldResemble, domain.RevenueScenario{Customers: 3000, Price: 149, MRR: 447_000, Annual: 5_364_000})
		convey.So(p.Optimistic, convey.ShouldResemble, domain.RevenueScenario{Customers: 6000, Price: 299, MRR: 1_794_000, Annual: 21_528_000})
	})

	convey.Convey("Given every willingness value, including unknown ones", t, func() {
		values := []domain.WillingnessToPay{domain.WTPHigh, domain.WTPMedium, domain.WTPLow, domain.WTPNone, "", "lots"}

		for _, wtp := range values {
			p := EstimateRevenue(domain.RevenueInput{PeopleAffected: DefaultPeopleAffected, WillingnessToPay: wtp})
			for _, s := range []domain.RevenueScenario{p.Conservative, p.Moderate, p.Optimistic} {
				convey.So(s.MRR, convey.ShouldEqual, s.Customers*s.Price)
				convey.So(s.Annual, convey.ShouldEqual, s.MRR*12)
			}
		}

		convey.Convey("Then unknown values are priced like low", func() {
			low := EstimateRevenue(domain.RevenueInput{PeopleAffected: 100, WillingnessToPay: domain.WTPLow})
			unknown := EstimateRevenue(domain.RevenueInput{PeopleAffected: 100, WillingnessToPay: "lots"})
			convey.So(unknown, convey.ShouldResemble, low)
			convey.So(unknown.Moderate.MRR, convey.ShouldEqual, 950)
		})
	})

	convey.Convey("Given an audience beyond the reach bound", t, func() {
		bounded := EstimateRevenue(domain.RevenueInput{PeopleAffected: MaxPeopleAffected, WillingnessToPay: domain.WTPHigh})
		huge := EstimateRevenue(domain.RevenueInput{PeopleAffected: math.MaxInt64 / 10, WillingnessToPay: domain.WTPHigh})

		convey.Convey("Then the estimate is clamped instead of overflowing", func() {
			convey.So(bounded.AddressableMarket, convey.ShouldEqual, 322_122_547)
			convey.So(bounded.Conservative.Customers, convey.ShouldEqual, 32_212_254)
			convey.So(bounded.Optimistic.MRR, convey.ShouldBeGreaterThan, 0)
			convey.So(bounded.Optimistic.Annual, convey.ShouldEqual, bounded.Optimistic.MRR*12)
			convey.So(huge, convey.ShouldResemble, bounded)
		})
	})
}
