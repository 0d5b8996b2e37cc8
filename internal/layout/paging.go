package layout

// Ellipsis marks a gap in the page numbers returned by PageWindow.
const Ellipsis = -1

// Rows splits items into consecutive rows of perRow. The last row may be short.
func Rows[T any](items []T, perRow int) [][]T {
	if perRow < 1 {
		perRow = 1
	}
	rows := make([][]T, 0, (len(items)+perRow-1)/perRow)
	for start := 0; start < len(items); start += perRow {
		end := min(start+perRow, len(items))
		rows = append(rows, items[start:end])
	}
	return rows
}

// PageCount returns how many pages of perPage hold n items.
func PageCount(n, perPage int) int {
	if n <= 0 {
		return 0
	}
	if perPage < 1 {
		perPage = 1
	}
	return (n + perPage - 1) / perPage
}

// PageSlice returns the items on the 1-indexed page, or nil when the page
// is out of range.
func PageSlice[T any](items []T, page, perPage int) []T {
	if perPage < 1 {
		perPage = 1
	}
	if page < 1 {
		return nil
	}
	start := (page - 1) * perPage
	if start >= len(items) {
		return nil
	}
	return items[start:min(start+perPage, len(items))]
}

// PageWindow returns the page numbers a pager shows around current: at most
// maxVisible consecutive pages, plus the first and last page separated by
// Ellipsis where numbers are skipped.
func PageWindow(current, total, maxVisible int) []int {
	if total <= 0 {
		return nil
	}
	if maxVisible < 1 {
		maxVisible = 1
	}
	current = min(max(current, 1), total)

	start := max(1, current-maxVisible/2)
	end := min(total, start+maxVisible-1)
	if end-start+1 < maxVisible {
		start = max(1, end-maxVisible+1)
	}

	var pages []int
	if start > 1 {
		pages = append(pages, 1)
		if start > 2 {
			pages = append(pages, Ellipsis)
		}
	}
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	if end < total {
		if end < total-1 {
			pages = append(pages, Ellipsis)
		}
		pages = append(pages, total)
	}
	return pages
}
