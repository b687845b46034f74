package pagination

// CalculateOffset calculates the database OFFSET value for a page number
// and limit. Page numbers are 1-based, so page 1 has offset 0.
func CalculateOffset(page, limit int) int {
	return (page - 1) * limit
}

// CalculateTotalPages calculates the total number of pages for a total item
// count and limit, using ceiling division so partial final pages count.
// Always returns at least 1, even when total is 0.
func CalculateTotalPages(total int64, limit int) int {
	if total == 0 {
		return 1
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
