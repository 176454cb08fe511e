package service

import "strings"

// Filter keeps the items where any of the given fields contains query,
// ignoring case. A blank query keeps everything.
func Filter[T any](items []T, query string, fields ...func(T) string) []T {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return items
	}

	matched := make([]T, 0, len(items))
	for _, item := range items {
		for _, field := range fields {
			if strings.Contains(strings.ToLower(field(item)), query) {
				matched = append(matched, item)
				break
			}
		}
	}
	return matched
}
