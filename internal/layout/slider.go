package layout

// Direction of a slider step.
type Direction int

// Slider directions.
const (
	Left Direction = iota
	Right
)

// MaxScroll returns how far a row of contentWidth can scroll inside a
// window of windowWidth.
func MaxScroll(contentWidth, windowWidth int) int {
	return max(0, contentWidth-windowWidth)
}

// Slide moves offset by 80% of the window in dir and clamps the result
// to [0, maxScroll].
func Slide(offset, windowWidth, maxScroll int, dir Direction) int {
	step := windowWidth * 4 / 5
	if dir == Left {
		return max(0, offset-step)
	}
	return max(0, min(maxScroll, offset+step))
}
