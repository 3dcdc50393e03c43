package usecase

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"IdeaValidator/internal/config"
	"IdeaValidator/internal/domain"
)

const (
	defaultBudget        = "0-1000"
	defaultBackgroundFit = 10
	interestBonus        = 30
	maxMatch             = 100
)

var timeBonus = map[domain.TimeAvailable]int{
	domain.TimeNightsWeekends: 10,
	domain.TimePartTime:       15,
	domain.TimeFullTime:       15,
}

// Matcher ranks catalog categories against a founder profile.
type Matcher struct {
	catalog *config.Catalog
}

// NewMatcher builds a matcher over the given category table.
func NewMatcher(catalog *config.Catalog) *Matcher {
	if catalog == nil {
		catalog = config.DefaultCatalog()
	}
	return &Matcher{catalog: catalog}
}

// Rank scores every category for profile, best first. Equal scores keep
// catalog order.
func (m *Matcher) Rank(profile domain.UserProfile) []domain.CategoryMatch {
	names := m.catalog.Names()
	out := make([]domain.CategoryMatch, 0, len(names))
	for _, name := range names {
		out = append(out, domain.CategoryMatch{
			Name:        name,
			DisplayName: DisplayName(name),
			Match:       m.Score(profile, name),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Match > out[j].Match })
	return out
}

// Score is the 0..100 fit of one category; unknown categories score as the default.
func (m *Matcher) Score(profile domain.UserProfile, category string) int {
	cat := m.catalog.Lookup(category)

	score, ok := cat.Backgrounds[strings.ToLower(strings.TrimSpace(profile.Background))]
	if !ok {
		score = defaultBackgroundFit
	}

	if interested(profile.Interests, cat.Name) {
		score += interestBonus
	}

	if bonus, ok := timeBonus[profile.TimeAvailable]; ok {
		score += bonus
	} else {
		score += 10
	}

	budget := profile.Budget
	if strings.TrimSpace(budget) == "" {
		budget = defaultBudget
	}
	upper, err := ParseBudgetUpperBound(budget)
	if err != nil {
		upper = 0
	}
	switch {
	case upper >= cat.TypicalCost:
		score += 15
	case upper*2 >= cat.TypicalCost:
		score += 10
	default:
		score += 5
	}

	return min(score, maxMatch)
}

func interested(interests []string, category string) bool {
	spaced := strings.ReplaceAll(category, "_", " ")
	for _, in := range interests {
		in = strings.TrimSpace(in)
		if strings.EqualFold(in, category) || strings.EqualFold(in, spaced) {
			return true
		}
	}
	return false
}

var errBudget = errors.New("invalid budget")

// ParseBudgetUpperBound reads the upper bound of a range such as "1-5k" or
// "10k+". A string without "-" is a single bound.
func ParseBudgetUpperBound(budget string) (int, error) {
	s := strings.ToLower(strings.TrimSpace(budget))
	if i := strings.LastIndex(s, "-"); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "+"))
	s = strings.ReplaceAll(s, "k", "000")
	if s == "" {
		return 0, fmt.Errorf("%w: %q", errBudget, budget)
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", errBudget, budget)
	}
	return n, nil
}

// DisplayName turns "developer_tools" into "Developer Tools".
func DisplayName(name string) string {
	words := strings.Fields(strings.ReplaceAll(name, "_", " "))
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
