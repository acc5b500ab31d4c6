package colors

// Monochrome returns a black and white color scheme
func Monochrome() *ColorScheme {
	return &ColorScheme{
		Preset: "monochrome",

		Accent: "#FFFFFF",

		ColumnBorder: "#808080",
		CardBorder:   "#4E4E4E",

		Active:   "#FFFFFF",
		Inactive: "#808080",
		Paused:   "#BCBCBC",

		Title:  "#FFFFFF",
		Subtle: "#808080",
		Normal: "#D0D0D0",

		Success: "#FFFFFF",
		Warning: "#BCBCBC",
		Error:   "#FFFFFF",
	}
}
