package model

import "strconv"

// PageSize is the fixed number of rows returned by every listing.
const PageSize = 16

// Offset maps a 1-based page number to a row offset. Pages below 1 are
// treated as 1.
func Offset(pageSize, page int) int {
	if page < 1 {
		page = 1
	}
	return pageSize * (page - 1)
}

// ParsePage reads a "page" query value; anything unparsable is page 1.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}
