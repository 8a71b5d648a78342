package ui

// Frame is the outer box of a bordered panel: its allotted size and
// whether it owns keyboard input. Panels embed it and draw inside Inner.
type Frame struct {
	width, height int
	focused       bool
}

func (f *Frame) SetFocused(focused bool) { f.focused = focused }
func (f Frame) IsFocused() bool          { return f.focused }

// SetSize records the allotted size. Negative values are treated as zero.
func (f *Frame) SetSize(width, height int) {
	f.width, f.height = max(width, 0), max(height, 0)
}

func (f Frame) Width() int  { return f.width }
func (f Frame) Height() int { return f.height }

// Empty reports whether there is no room to draw anything.
func (f Frame) Empty() bool { return f.width == 0 || f.height == 0 }

// InnerWidth is the width left between the left and right borders.
func (f Frame) InnerWidth() int { return max(f.width-2, 0) }

// Rows is the number of body lines once the borders and header are drawn.
func (f Frame) Rows() int { return max(f.height-PanelOverhead, 0) }
