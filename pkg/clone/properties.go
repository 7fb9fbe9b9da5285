package clone

import (
	"go.uber.org/zap"

	"lightprint/pkg/html"
)

// cloneProperties copies element state that import leaves behind: form
// values and checkedness, option selection, canvas pixels, the media
// source and position, and scroll offsets.
func (c *Context) cloneProperties(cp, src *html.Node) {
	kind := KindOf(src)
	switch {
	case kind.CarriesFormState():
		switch src.TagName {
		case "select", "textarea":
			cp.SetValue(src.Value())
		case "option":
			cp.SetSelected(src.Selected())
		case "input":
			cp.SetValue(src.Value())
			cp.SetChecked(src.Checked())
			cp.SetIndeterminate(src.Indeterminate())
		}
	case kind.CarriesBitmap():
		if w, h := src.CanvasSize(); w > 0 && h > 0 {
			if surface := src.ExistingCanvas(); surface != nil {
				cp.Canvas().DrawImage(surface.Image(), 0, 0)
			}
		}
	case kind.CarriesPlayback():
		if current := src.CurrentSrc(); current != "" {
			cp.SetSrc(current)
			cp.SetCurrentTime(src.CurrentTime())
		}
		cp.SetAutoplay(false)
		cp.Pause()
		c.logger.Debug("media copied paused",
			zap.String("path", cp.Path()),
			zap.String("src", cp.CurrentSrc()),
			zap.Float64("time", cp.CurrentTime()))
	}

	if top, left := src.ScrollTop(), src.ScrollLeft(); top != 0 || left != 0 {
		cp.SetScroll(top, left)
	}
}
