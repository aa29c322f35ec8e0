package search

import "context"

// StaticTrending serves a fixed trending list until a query-analytics source exists.
type StaticTrending struct{}

var staticTrending = []TrendingQuery{
	{Query: "psilocybin therapy", Count: 1250},
	{Query: "MDMA PTSD", Count: 980},
	{Query: "neuroplasticity", Count: 875},
	{Query: "integration practices", Count: 720},
	{Query: "ketamine depression", Count: 650},
	{Query: "microdosing research", Count: 580},
	{Query: "set and setting", Count: 510},
	{Query: "psychedelic safety", Count: 480},
}

// Trending implements TrendingProvider.
func (StaticTrending) Trending(context.Context) ([]TrendingQuery, error) {
	out := make([]TrendingQuery, len(staticTrending))
	copy(out, staticTrending)
	return out, nil
}
