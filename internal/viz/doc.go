// Package viz renders lens runs in the terminal.
//
// [Heatmap] draws a field with colored half blocks, [MaskCanvas] draws the
// lit pixels on a Braille [Canvas] with an optional Einstein ring overlay,
// and [App] is the interactive Bubble Tea explorer:
//
//	j/k   - Select slider
//	h/l   - Adjust by one step (H/L for five)
//	Enter - Map with the current parameters
//	B     - Toggle nearest/bilinear kernel
//	T     - Cycle color themes
//	R     - Reset to defaults
//	S     - Save the last run (when a store is attached)
package viz
