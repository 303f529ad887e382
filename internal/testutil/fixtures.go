// Package testutil provides shared testing utilities and fixtures
package testutil

import (
	"fmt"
	"strings"
)

// TestBaseURL is the API root used by unit tests
const TestBaseURL = "https://test.example.org/api"

// Record fixtures shaped like InvenioRDM responses
const (
	RecordJSON = `{"id":"abc123","metadata":{"title":"Test Record","resource_type":{"id":"publication-article"}}}`

	CommunityJSON = `{"id":"c-1","slug":"front_matter","metadata":{"title":"Front Matter"}}`

	ResourceTypesJSON = `{"hits":{"hits":[
		{"id":"publication-article","title":{"en":"Journal article"}},
		{"id":"dataset","title":{"en":"Dataset"}},
		{"id":"software"}
	],"total":3}}`

	ValidRecordData = `{"metadata":{"title":"Example Record","creators":[{"person_or_org":{"type":"personal","name":"Doe, John","given_name":"John","family_name":"Doe"}}],"resource_type":{"id":"publication-article"},"publication_date":"2024-01-01"}}`

	ErrorNotFoundJSON = `{"status":404,"message":"The persistent identifier does not exist."}`
)

// Hits builds a {hits:{hits:[...]}} envelope with n records
func Hits(n int) string {
	items := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, fmt.Sprintf(`{"id":"rec-%d","metadata":{"title":"Record %d"}}`, i, i))
	}
	return fmt.Sprintf(`{"hits":{"hits":[%s],"total":%d},"sortBy":"newest"}`, strings.Join(items, ","), n)
}

// CommunityHits builds an envelope with n communities
func CommunityHits(n int) string {
	items := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, fmt.Sprintf(`{"id":"c-%d","slug":"community-%d"}`, i, i))
	}
	return fmt.Sprintf(`{"hits":{"hits":[%s],"total":%d}}`, strings.Join(items, ","), n)
}
