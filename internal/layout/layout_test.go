package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlan(t *testing.T) {
	p := DefaultPlanner()

	tests := []struct {
		name           string
		w, h, viewport int
		expect         Plan
	}{
		{"wide", 1000, 700, 1024, Plan{ItemsPerRow: 4, ItemsPerPage: 8}},
		{"narrow", 700, 400, 700, Plan{ItemsPerRow: 5, ItemsPerPage: 10}},
		{"breakpoint is narrow", 256, 188, 768, Plan{ItemsPerRow: 2, ItemsPerPage: 2}},
		{"tiny container", 100, 100, 1024, Plan{ItemsPerRow: 1, ItemsPerPage: 1}},
		{"zero container", 0, 0, 0, Plan{ItemsPerRow: 1, ItemsPerPage: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Plan(tt.w, tt.h, tt.viewport)
			assert.Equal(t, tt.expect, got)
			assert.Equal(t, got, p.Plan(tt.w, tt.h, tt.viewport), "plan must be deterministic")
		})
	}
}

func TestPlan_ZeroFootprint(t *testing.T) {
	var p Planner
	assert.Equal(t, Plan{ItemsPerRow: 10, ItemsPerPage: 100}, p.Plan(10, 10, 0))
}

func TestRows(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	assert.Equal(t, [][]int{{1, 2, 3}, {4, 5, 6}, {7}}, Rows(items, 3))
	assert.Equal(t, [][]int{{1}, {2}, {3}, {4}, {5}, {6}, {7}}, Rows(items, 0))
	assert.Empty(t, Rows([]int(nil), 4))
}

func TestPaging(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, 3, PageCount(len(items), 2))
	assert.Equal(t, 0, PageCount(0, 2))
	assert.Equal(t, []int{3, 4}, PageSlice(items, 2, 2))
	assert.Equal(t, []int{5}, PageSlice(items, 3, 2))
	assert.Nil(t, PageSlice(items, 4, 2))
	assert.Nil(t, PageSlice(items, 0, 2))
}

func TestPageWindow(t *testing.T) {
	const e = Ellipsis
	tests := []struct {
		current, total int
		expect         []int
	}{
		{1, 10, []int{1, 2, 3, 4, 5, e, 10}},
		{4, 10, []int{1, 2, 3, 4, 5, 6, e, 10}},
		{5, 10, []int{1, e, 3, 4, 5, 6, 7, e, 10}},
		{10, 10, []int{1, e, 6, 7, 8, 9, 10}},
		{2, 3, []int{1, 2, 3}},
		{99, 3, []int{1, 2, 3}},
		{1, 0, nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expect, PageWindow(tt.current, tt.total, 5), "current=%d total=%d", tt.current, tt.total)
	}
}

func TestSlide(t *testing.T) {
	maxScroll := MaxScroll(250, 100)
	assert.Equal(t, 150, maxScroll)
	assert.Equal(t, 0, MaxScroll(80, 100))

	off := Slide(0, 100, maxScroll, Right)
	assert.Equal(t, 80, off)
	off = Slide(off, 100, maxScroll, Right)
	assert.Equal(t, 150, off)
	off = Slide(off, 100, maxScroll, Left)
	assert.Equal(t, 70, off)
	off = Slide(off, 100, maxScroll, Left)
	assert.Equal(t, 0, off)

	assert.Equal(t, 0, Slide(0, 100, 0, Right), "content narrower than the window does not scroll")
}
