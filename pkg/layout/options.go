package layout

// Options tunes sizes and spacing. Zero fields take the DefaultOptions value.
type Options struct {
	FontSize      float64 `koanf:"font_size" validate:"gte=0"`
	CharWidth     float64 `koanf:"char_width" validate:"gte=0"`
	HeaderHeight  float64 `koanf:"header_height" validate:"gte=0"`
	RowHeight     float64 `koanf:"row_height" validate:"gte=0"`
	PaddingX      float64 `koanf:"padding_x" validate:"gte=0"`
	PaddingY      float64 `koanf:"padding_y" validate:"gte=0"`
	MinWidth      float64 `koanf:"min_width" validate:"gte=0"`
	NodeGap       float64 `koanf:"node_gap" validate:"gte=0"`
	LayerGap      float64 `koanf:"layer_gap" validate:"gte=0"`
	LaneGap       float64 `koanf:"lane_gap" validate:"gte=0"`
	ChannelGap    float64 `koanf:"channel_gap" validate:"gte=0"`
	MaxLabelChars int     `koanf:"max_label_chars" validate:"gte=0"`
}

// DefaultOptions returns the spacing used by the CLI.
func DefaultOptions() Options {
	return Options{
		FontSize:      12,
		CharWidth:     0.6,
		HeaderHeight:  26,
		RowHeight:     18,
		PaddingX:      10,
		PaddingY:      6,
		MinWidth:      120,
		NodeGap:       24,
		LayerGap:      48,
		LaneGap:       8,
		ChannelGap:    12,
		MaxLabelChars: 60,
	}
}

// WithDefaults returns o with every zero field replaced by its default.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	set := func(v *float64, def float64) {
		if *v <= 0 {
			*v = def
		}
	}
	set(&o.FontSize, d.FontSize)
	set(&o.CharWidth, d.CharWidth)
	set(&o.HeaderHeight, d.HeaderHeight)
	set(&o.RowHeight, d.RowHeight)
	set(&o.PaddingX, d.PaddingX)
	set(&o.PaddingY, d.PaddingY)
	set(&o.MinWidth, d.MinWidth)
	set(&o.NodeGap, d.NodeGap)
	set(&o.LayerGap, d.LayerGap)
	set(&o.LaneGap, d.LaneGap)
	set(&o.ChannelGap, d.ChannelGap)
	if o.MaxLabelChars <= 0 {
		o.MaxLabelChars = d.MaxLabelChars
	}
	return o
}

// TextWidth returns the estimated rendered width of s.
func (o Options) TextWidth(s string) float64 {
	return float64(len([]rune(s))) * o.CharWidth * o.FontSize
}

// Truncate shortens s to MaxLabelChars runes, marking the cut with "..".
func (o Options) Truncate(s string) string {
	r := []rune(s)
	if o.MaxLabelChars <= 0 || len(r) <= o.MaxLabelChars {
		return s
	}
	keep := max(1, o.MaxLabelChars-2)
	return string(r[:keep]) + ".."
}
