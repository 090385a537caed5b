package utils

type colors struct {
	c map[string]int
}

var Colors = colors{
	c: map[string]int{
		"Ditto purple": 0xb490d6,
		"Sea green":    0x3bb273,
		"Steel blue":   0x4a7fb5,
		"Carmine":      0xd1495b,
		"Marigold":     0xedae49,
	},
}

// Default returns the color used for plain embeds
func (c colors) Default() int {
	return c.c["Ditto purple"]
}

// Ok returns the color code for success messages
func (c colors) Ok() int {
	return c.c["Sea green"]
}

// Info returns the color code for informational messages
func (c colors) Info() int {
	return c.c["Steel blue"]
}

// Error returns the color code for error messages
func (c colors) Error() int {
	return c.c["Carmine"]
}

// Warning returns the color code for warning messages
func (c colors) Warning() int {
	return c.c["Marigold"]
}
