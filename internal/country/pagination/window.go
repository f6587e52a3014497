// Package pagination slices the full country set into fixed-size pages and
// computes which page links the pagination strip shows.
package pagination

// SlotKind distinguishes clickable page numbers from collapsed gaps.
type SlotKind int

const (
	SlotPage SlotKind = iota
	SlotGap
)

// Slot is one position in the pagination strip. Every page owns a slot;
// collapsed pages are kept as gap markers rather than omitted.
type Slot struct {
	Number  int
	Kind    SlotKind
	Current bool
}

// IsGap reports whether the slot is a collapsed page.
func (s Slot) IsGap() bool {
	return s.Kind == SlotGap
}

// TotalPages is ceil(totalRecords / pageSize). Non-positive sizes yield 0.
func TotalPages(totalRecords, pageSize int) int {
	if totalRecords <= 0 || pageSize <= 0 {
		return 0
	}
	return (totalRecords + pageSize - 1) / pageSize
}

// Window returns one slot per page. A page is clickable when it is the first,
// the last, or within one of currentPage; all others are gaps. With at most
// one page the window is the single page 1.
//
// currentPage is not clamped; use Clamp first when it comes from user input.
func Window(totalRecords, pageSize, currentPage int) []Slot {
	total := TotalPages(totalRecords, pageSize)
	if total <= 1 {
		return []Slot{{Number: 1, Kind: SlotPage, Current: currentPage == 1}}
	}

	slots := make([]Slot, 0, total)
	for n := 1; n <= total; n++ {
		kind := SlotGap
		if n == 1 || n == total || (n >= currentPage-1 && n <= currentPage+1) {
			kind = SlotPage
		}
		slots = append(slots, Slot{Number: n, Kind: kind, Current: n == currentPage})
	}
	return slots
}

// Clamp forces page into [1, max(1, totalPages)].
func Clamp(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if totalPages < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}
