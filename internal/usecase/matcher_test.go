package usecase

import (
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"IdeaValidator/internal/config"
	"IdeaValidator/internal/domain"
)

func matchNames(matches []domain.CategoryMatch) []string {
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.Name
	}
	return names
}

func TestMatcherRank(t *testing.T) {
	m := NewMatcher(config.DefaultCatalog())

	convey.Convey("Given a developer interested in developer tools", t, func() {
		profile := domain.UserProfile{
			Background:    "developer",
			Interests:     []string{"Developer Tools"},
			TimeAvailable: domain.TimeFullTime,
			Budget:        "1-5k",
		}
		ranked := m.Rank(profile)

		convey.Convey("Then categories are ordered by fit", func() {
			convey.So(matchNames(ranked), convey.ShouldResemble,
				[]string{"developer_tools", "productivity", "marketing", "general", "sales"})
			convey.So(ranked[0].Match, convey.ShouldEqual, 100)
			convey.So(ranked[0].DisplayName, convey.ShouldEqual, "Developer Tools")
			convey.So(ranked[4].Match, convey.ShouldEqual, 45)
		})
	})

	convey.Convey("Given an empty profile", t, func() {
		ranked := m.Rank(domain.UserProfile{})

		convey.Convey("Then defaults apply and ties keep catalog order", func() {
			convey.So(matchNames(ranked), convey.ShouldResemble,
				[]string{"general", "marketing", "sales", "productivity", "developer_tools"})
			convey.So(ranked[0].Match, convey.ShouldEqual, 30)
			for _, r := range ranked[1:] {
				convey.So(r.Match, convey.ShouldEqual, 25)
			}
		})
	})

	convey.Convey("Given any profile", t, func() {
		profiles := []domain.UserProfile{
			{Background: "marketer", Interests: []string{"marketing", "sales"}, TimeAvailable: domain.TimePartTime, Budget: "10k+"},
			{Background: "astronaut", Budget: "lots"},
			{Background: "SALES", TimeAvailable: "whenever", Budget: "500"},
		}
		for _, p := range profiles {
			ranked := m.Rank(p)
			convey.So(ranked, convey.ShouldHaveLength, 5)
			for i, r := range ranked {
				convey.So(r.Match, convey.ShouldBeBetweenOrEqual, 0, 100)
				if i > 0 {
					convey.So(ranked[i-1].Match, convey.ShouldBeGreaterThanOrEqualTo, r.Match)
				}
			}
		}
	})

	convey.Convey("Given an unknown category name", t, func() {
		p := domain.UserProfile{Background: "designer", TimeAvailable: domain.TimePartTime, Budget: "1-2k"}
		convey.So(m.Score(p, "underwater-basket-weaving"), convey.ShouldEqual, m.Score(p, "general"))
	})
}

func TestParseBudgetUpperBound(t *testing.T) {
	convey.Convey("Given budget range strings", t, func() {
		cases := map[string]int{
			"1-5k":     5000,
			"10k+":     10000,
			"0-1000":   1000,
			"5-10k":    10000,
			" 2K - 3k": 3000,
			"750":      750,
		}
		for in, want := range cases {
			got, err := ParseBudgetUpperBound(in)
			convey.So(err, convey.ShouldBeNil)
			convey.So(got, convey.ShouldEqual, want)
		}

		convey.Convey("Then garbage is rejected", func() {
			for _, in := range []string{"", "lots", "1-", "1-many"} {
				_, err := ParseBudgetUpperBound(in)
				convey.So(err, convey.ShouldNotBeNil)
			}
		})
	})
}

func TestDisplayName(t *testing.T) {
	convey.Convey("Given category keys", t, func() {
		convey.So(DisplayName("developer_tools"), convey.ShouldEqual, "Developer Tools")
		convey.So(DisplayName("general"), convey.ShouldEqual, "General")
		convey.So(DisplayName("SALES"), convey.ShouldEqual, "Sales")
	})
}
