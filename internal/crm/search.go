package crm

import (
	"strings"

	"crm-service/internal/model"
)

// SearchCalls returns the calls whose notes contain the keyword,
// case-insensitively, preserving the order they came from the store. When
// companyFilter is non-empty the result is further restricted to calls whose
// company name equals it case-insensitively.
//
// An empty keyword matches every call: the empty string is a substring of
// everything. That pass-through is intended, so a company filter alone can
// list a company's calls.
func SearchCalls(calls []model.Call, keyword, companyFilter string) []model.Call {
	needle := strings.ToLower(keyword)

	matches := make([]model.Call, 0)
	for _, call := range calls {
		if !strings.Contains(strings.ToLower(call.Notes), needle) {
			continue
		}
		if companyFilter != "" && !strings.EqualFold(call.CompanyName, companyFilter) {
			continue
		}
		matches = append(matches, call)
	}
	return matches
}
