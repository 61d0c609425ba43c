package display

type barConfig struct {
	unit      string
	bytes     bool
	color     string
	transient bool
	width     int
}

// BarOption configures a bar created by StartBar.
type BarOption func(*barConfig)

func defaultBarConfig() barConfig {
	return barConfig{
		unit:  "it",
		color: "6",
		width: 30,
	}
}

// WithUnit sets the unit name shown after the counter.
func WithUnit(unit string) BarOption {
	return func(c *barConfig) {
		c.unit = unit
	}
}

// WithBytes shows the counter and rate as humanized byte sizes.
func WithBytes() BarOption {
	return func(c *barConfig) {
		c.bytes = true
		c.unit = "B"
	}
}

// WithColor sets the fill color (any lipgloss color string).
func WithColor(color string) BarOption {
	return func(c *barConfig) {
		c.color = color
	}
}

// WithWidth sets the width of the bar itself in cells.
func WithWidth(w int) BarOption {
	return func(c *barConfig) {
		if w > 0 {
			c.width = w
		}
	}
}

// Transient erases the bar when it is done.
func Transient() BarOption {
	return func(c *barConfig) {
		c.transient = true
	}
}
