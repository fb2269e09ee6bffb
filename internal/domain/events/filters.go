package events

import (
	"net/url"
	"strings"

	"github.com/hackhub-dev/server/internal/api/pagination"
	"github.com/hackhub-dev/server/internal/validation"
)

// Filters is an AND intersection of optional listing constraints. Empty fields do not filter.
type Filters struct {
	Category   Category
	Difficulty Difficulty
	Location   LocationType
	Status     Status
	Featured   bool
	Search     string
}

// ParseFilters turns listing query parameters into filters and a page request.
// All invalid parameters are reported together.
func ParseFilters(values url.Values) (Filters, pagination.Page, error) {
	var errs validation.Errors

	page, err := pagination.Parse(values, pagination.Events)
	errs.Merge(err)

	filters := Filters{}

	if category := strings.TrimSpace(values.Get("category")); category != "" {
		if containsString(allowedCategories, category) {
			filters.Category = Category(category)
		} else {
			errs.Add("category", "Invalid category")
		}
	}

	if difficulty := strings.TrimSpace(values.Get("difficulty")); difficulty != "" {
		if containsString(allowedDifficulties, difficulty) {
			filters.Difficulty = Difficulty(difficulty)
		} else {
			errs.Add("difficulty", "Invalid difficulty")
		}
	}

	if location := strings.TrimSpace(values.Get("location")); location != "" {
		if containsString(allowedLocationTypes, location) {
			filters.Location = LocationType(location)
		} else {
			errs.Add("location", "Invalid location")
		}
	}

	if status := strings.TrimSpace(values.Get("status")); status != "" {
		if containsString(listableStatuses, status) {
			filters.Status = Status(status)
		} else {
			errs.Add("status", "Invalid status")
		}
	}

	filters.Featured = values.Get("featured") == "true"
	filters.Search = strings.TrimSpace(values.Get("search"))

	if err := errs.Err(); err != nil {
		return Filters{}, page, err
	}
	return filters, page, nil
}

// SearchFilters narrows a text search. Status and featured are not applied.
type SearchFilters struct {
	Categories []Category
	Difficulty Difficulty
	Location   LocationType
}

// ParseSearch reads the text search parameters q, category, difficulty, location and limit.
func ParseSearch(values url.Values) (string, SearchFilters, int, error) {
	var errs validation.Errors
	filters := SearchFilters{}

	query := strings.TrimSpace(values.Get("q"))
	if query == "" {
		return "", filters, 0, ErrSearchQueryRequired
	}

	for _, raw := range values["category"] {
		for _, category := range strings.Split(raw, ",") {
			category = strings.TrimSpace(category)
			if category == "" {
				continue
			}
			if !containsString(allowedCategories, category) {
				errs.Add("category", "Invalid category")
				continue
			}
			filters.Categories = append(filters.Categories, Category(category))
		}
	}

	if difficulty := strings.TrimSpace(values.Get("difficulty")); difficulty != "" {
		if containsString(allowedDifficulties, difficulty) {
			filters.Difficulty = Difficulty(difficulty)
		} else {
			errs.Add("difficulty", "Invalid difficulty")
		}
	}

	if location := strings.TrimSpace(values.Get("location")); location != "" {
		if containsString(allowedLocationTypes, location) {
			filters.Location = LocationType(location)
		} else {
			errs.Add("location", "Invalid location")
		}
	}

	limit, err := parseLimit(values.Get("limit"))
	if err != nil {
		errs.Merge(err)
	}

	return query, filters, limit, errs.Err()
}

// parseLimit reads an optional feed limit; an absent value yields 0 so callers apply their default.
func parseLimit(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	page, err := pagination.Parse(url.Values{"limit": {raw}}, pagination.Events)
	if err != nil {
		return 0, err
	}
	return page.Limit, nil
}

// ParseFeedLimit reads the limit parameter of the featured and upcoming feeds.
func ParseFeedLimit(values url.Values) (int, error) {
	return parseLimit(values.Get("limit"))
}
