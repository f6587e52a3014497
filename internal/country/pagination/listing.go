package pagination

// Page returns records[(page-1)*size : page*size), truncated at the end of
// records. Out-of-range pages yield an empty slice, never an error.
func Page[T any](records []T, page, size int) []T {
	if page < 1 || size < 1 {
		return []T{}
	}
	start := (page - 1) * size
	if start >= len(records) {
		return []T{}
	}
	end := min(start+size, len(records))
	return records[start:end:end]
}
