package dom

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/teranos/tip/errors"
)

// Point is a position in CSS pixels
type Point struct {
	X, Y float64
}

// Size is a width/height pair
type Size struct {
	Width, Height float64
}

// Rect is an axis-aligned box
type Rect struct {
	Left, Top, Width, Height float64
}

// Right edge
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom edge
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Center point
func (r Rect) Center() Point {
	return Point{X: r.Left + r.Width/2, Y: r.Top + r.Height/2}
}

// Size of the box
func (r Rect) Size() Size { return Size{Width: r.Width, Height: r.Height} }

// Contains reports whether the point lies inside the box, edges included
func (r Rect) Contains(x, y float64) bool {
	return x >= r.Left && x <= r.Right() && y >= r.Top && y <= r.Bottom()
}

// Translate returns the box moved by dx, dy
func (r Rect) Translate(dx, dy float64) Rect {
	r.Left += dx
	r.Top += dy
	return r
}

// IsZero reports an empty box at the origin
func (r Rect) IsZero() bool {
	return r == Rect{}
}

func (r Rect) String() string {
	return fmt.Sprintf("%g %g %g %g", r.Left, r.Top, r.Width, r.Height)
}

// ParseRect parses "left top width height"
func ParseRect(s string) (Rect, error) {
	fields := strings.Fields(strings.ReplaceAll(s, ",", " "))
	if len(fields) != 4 {
		return Rect{}, errors.Mark(errors.Newf("rect %q: want 4 numbers, got %d", s, len(fields)), errors.ErrInvalidRequest)
	}
	var v [4]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Rect{}, errors.Mark(errors.Wrapf(err, "rect %q", s), errors.ErrInvalidRequest)
		}
		v[i] = n
	}
	if v[2] < 0 || v[3] < 0 {
		return Rect{}, errors.Mark(errors.Newf("rect %q: negative size", s), errors.ErrInvalidRequest)
	}
	return Rect{Left: v[0], Top: v[1], Width: v[2], Height: v[3]}, nil
}
