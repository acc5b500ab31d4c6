package config

import "github.com/thenoetrevino/nutriboard/internal/config/colors"

// DefaultColorScheme is the scheme used when the config names no preset
func DefaultColorScheme() colors.ColorScheme {
	return *colors.Default()
}

// MonochromeColorScheme is the "monochrome" preset, for terminals without colour
func MonochromeColorScheme() colors.ColorScheme {
	return *colors.Monochrome()
}
