package colors

// ColorScheme defines all configurable color values
type ColorScheme struct {
	// Preset name (e.g., "default", "monochrome")
	Preset string `yaml:"preset"`

	// Primary accent color (used for titles and highlights)
	Accent string `yaml:"accent"`

	// Board colors
	ColumnBorder string `yaml:"column_border"`
	CardBorder   string `yaml:"card_border"`

	// Status colors, also used for columns that carry a named color
	Active   string `yaml:"active"`
	Inactive string `yaml:"inactive"`
	Paused   string `yaml:"paused"`

	// Text colors
	Title  string `yaml:"title"`
	Subtle string `yaml:"subtle"` // Muted/placeholder text
	Normal string `yaml:"normal"`

	// Message colors
	Success string `yaml:"success"`
	Warning string `yaml:"warning"`
	Error   string `yaml:"error"`
}

// GetPreset returns a preset color scheme by name
func GetPreset(name string) *ColorScheme {
	switch name {
	case "monochrome":
		return Monochrome()
	default:
		return Default()
	}
}

// ApplyDefaults fills in missing color values using the preset as base
func (c *ColorScheme) ApplyDefaults() {
	c.MergeMissing(*GetPreset(c.Preset))
}

// MergeMissing copies every value of other into fields c leaves empty
func (c *ColorScheme) MergeMissing(other ColorScheme) {
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&c.Preset, other.Preset)
	fill(&c.Accent, other.Accent)
	fill(&c.ColumnBorder, other.ColumnBorder)
	fill(&c.CardBorder, other.CardBorder)
	fill(&c.Active, other.Active)
	fill(&c.Inactive, other.Inactive)
	fill(&c.Paused, other.Paused)
	fill(&c.Title, other.Title)
	fill(&c.Subtle, other.Subtle)
	fill(&c.Normal, other.Normal)
	fill(&c.Success, other.Success)
	fill(&c.Warning, other.Warning)
	fill(&c.Error, other.Error)
}

// MergeFrom overrides c with every non-empty value of other
func (c *ColorScheme) MergeFrom(other ColorScheme) {
	merged := other
	merged.MergeMissing(*c)
	*c = merged
}

// Named resolves the color names stored on columns ("green", "red", "yellow")
// to scheme colors. Anything else is returned unchanged so hex values work.
func (c *ColorScheme) Named(name string) string {
	switch name {
	case "green":
		return c.Active
	case "red":
		return c.Inactive
	case "yellow":
		return c.Paused
	case "":
		return c.ColumnBorder
	}
	return name
}
