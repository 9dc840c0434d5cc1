package core

// Display is the physical panel behind the render surface.
// Present swaps the given buffer onto the panel; it must be cheap enough to
// call inline once per tick. Brightness is a percentage where 0 turns the
// panel off and Present then shows a black frame.
type Display interface {
	Present(s *Screen) error
	SetBrightness(percent int)
	Brightness() int
}
