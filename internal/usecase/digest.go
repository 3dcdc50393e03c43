package usecase

import (
	"fmt"
	"html"
	"strings"

	"IdeaValidator/internal/domain"
)

// DefaultDigestSize matches how many opportunities the dashboard shows.
const DefaultDigestSize = 15

// BuildDigest renders the top opportunities of a run as a Telegram HTML
// message. Every interpolated value is escaped and each line carries its own
// balanced tags, so the message can be split on line boundaries.
func BuildDigest(report RunReport, top int) string {
	if top <= 0 {
		top = DefaultDigestSize
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>%s</b>: %d opportunities from %d posts\n",
		html.EscapeString(DisplayName(report.Category)), len(report.Opportunities), report.Fetched)

	if len(report.Opportunities) == 0 {
		sb.WriteString("No opportunities found.\n")
		return sb.String()
	}

	shown := report.Opportunities
	if len(shown) > top {
		shown = shown[:top]
	}
	for i, opp := range shown {
		a := opp.Analysis
		projection := EstimateRevenue(domain.RevenueInput{
			PeopleAffected:   a.PeopleAffected,
			WillingnessToPay: a.WillingnessToPay,
		})
		fmt.Fprintf(&sb, "\n%d. <b>%s</b> (score %d)\n", i+1, html.EscapeString(opp.Title), a.OpportunityScore)
		fmt.Fprintf(&sb, "r/%s · pain %d · WTP %s · %d affected · %s\n",
			html.EscapeString(opp.Subreddit), a.PainScore,
			html.EscapeString(string(a.WillingnessToPay)), a.PeopleAffected,
			html.EscapeString(string(a.Recommendation)))
		fmt.Fprintf(&sb, "Moderate MRR: $%d\n", projection.Moderate.MRR)
		if opp.URL != "" {
			sb.WriteString(html.EscapeString(opp.URL) + "\n")
		}
	}
	return sb.String()
}
