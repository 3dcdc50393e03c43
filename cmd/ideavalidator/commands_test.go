package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"IdeaValidator/internal/domain"
)

func run(t *testing.T, args ...string) []byte {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.Bytes()
}

func TestRevenueCommand(t *testing.T) {
	var projection domain.RevenueProjection
	require.NoError(t, json.Unmarshal(run(t, "revenue", "--people", "1000", "--wtp", "none"), &projection))
	assert.Equal(t, 150, projection.AddressableMarket)
	assert.Equal(t, 100, projection.Optimistic.Customers)
	assert.Zero(t, projection.Optimistic.Annual)

	require.NoError(t, json.Unmarshal(run(t, "revenue"), &projection))
	assert.Equal(t, 15, projection.AddressableMarket)
	assert.Equal(t, 9, projection.Conservative.Price)

	var upper domain.RevenueProjection
	require.NoError(t, json.Unmarshal(run(t, "revenue", "--people", "1000", "--wtp", " HIGH "), &upper))
	assert.Equal(t, 79, upper.Conservative.Price)
	assert.Equal(t, 299, upper.Optimistic.Price)
}

func TestMatchCommand(t *testing.T) {
	var matches []domain.CategoryMatch
	out := run(t, "match", "--background", "sales", "--interest", "sales", "--time", "part_time", "--budget", "10k+")
	require.NoError(t, json.Unmarshal(out, &matches))
	require.Len(t, matches, 5)
	assert.Equal(t, "sales", matches[0].Name)
	assert.Equal(t, 100, matches[0].Match)
}

func TestCategoriesCommand(t *testing.T) {
	var cats []struct {
		Name       string   `json:"name"`
		Subreddits []string `json:"subreddits"`
	}
	require.NoError(t, json.Unmarshal(run(t, "categories"), &cats))
	require.Len(t, cats, 5)
	assert.Equal(t, "marketing", cats[0].Name)
	assert.Equal(t, []string{"startups", "Entrepreneur", "SaaS"}, cats[4].Subreddits)
}

func TestRevenueCommandRejectsNegativePeople(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"revenue", "--people=-5"})
	assert.Error(t, cmd.Execute())
}
