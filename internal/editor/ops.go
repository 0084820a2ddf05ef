package editor

// DropIndex resolves a drag-and-drop release to an insertion index.
// midpoints holds each block's vertical midpoint in document order; a
// drop above a block's midpoint inserts before that block, and a drop
// below every midpoint appends. The result is an index into the
// document before the dragged block is removed, matching what
// Session.MoveBlock expects.
func DropIndex(midpoints []int, y int) int {
	for i, m := range midpoints {
		if y < m {
			return i
		}
	}
	return len(midpoints)
}
