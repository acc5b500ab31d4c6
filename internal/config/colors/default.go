package colors

// Default returns the default color scheme (purple theme)
func Default() *ColorScheme {
	return &ColorScheme{
		Preset: "default",

		// Primary
		Accent: "#874BFD",

		// Board
		ColumnBorder: "#5F87D7",
		CardBorder:   "#585858",

		// Status
		Active:   "#5FD75F",
		Inactive: "#FF5F5F",
		Paused:   "#FFD700",

		// Text
		Title:  "#D75FD7",
		Subtle: "#585858",
		Normal: "#D0D0D0",

		// Messages
		Success: "#5FD75F",
		Warning: "#FFD700",
		Error:   "#FF0000",
	}
}
