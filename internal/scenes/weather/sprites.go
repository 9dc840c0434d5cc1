package weather

// sprites are 11x11 forecast icons; non-space characters are lit.
var sprites = map[string][]string{
	"clear": {
		".    .    .",
		" .   .   . ",
		"  .     .  ",
		"    ...    ",
		"   .....   ",
		".. ..... ..",
		"   .....   ",
		"    ...    ",
		"  .     .  ",
		" .   .   . ",
		".    .    .",
	},
	"few-clouds": {
		"    .    . ",
		".   .   .  ",
		" .     .   ",
		"   ...     ",
		"  .....    ",
		". ....     ",
		"  ...   ...",
		"   .  .....",
		" .   ......",
		".    ......",
		"      .....",
	},
	"scattered-clouds": {
		"  .  .  .  ",
		"   .   .   ",
		"    ...    ",
		" . ..... . ",
		"           ",
		"   .....   ",
		"  .......  ",
		" ......... ",
		" ......... ",
		"  .......  ",
		"           ",
	},
	"clouds": {
		"           ",
		"      ..   ",
		"     ....  ",
		"   ....... ",
		"  ........ ",
		" ..........",
		"...........",
		"...........",
		" ..........",
		"  ........ ",
		"   ......  ",
	},
	"showers": {
		"   .....   ",
		"  .......  ",
		" ......... ",
		"...........",
		"...........",
		" ......... ",
		"  .  .  .  ",
		"           ",
		".  .  .  . ",
		"           ",
		"  .  .  .  ",
	},
	"rain": {
		"   .....   ",
		"  .......  ",
		" ......... ",
		"...........",
		"...........",
		" ......... ",
		"  . . . .  ",
		" . . . . . ",
		"  . . . .  ",
		" . . . . . ",
		"  . . . .  ",
	},
	"snow": {
		"     .     ",
		"           ",
		"   . . .   ",
		"  .. . ..  ",
		"    . .    ",
		". .. . .. .",
		"    . .    ",
		"  .. . ..  ",
		"   . . .   ",
		"           ",
		"     .     ",
	},
	"thunder": {
		"   .....   ",
		"  .......  ",
		" ......... ",
		".......... ",
		"   ....    ",
		"   ..      ",
		"  ....     ",
		"    ..     ",
		"   ..      ",
		"   .       ",
		"           ",
	},
	"mist": {
		"   .  .  . ",
		" .. .. .. .",
		"           ",
		"   .  .  . ",
		" .. .. .. .",
		"           ",
		"   .  .  . ",
		" .. .. .. .",
		"           ",
		"   .  .  . ",
		" .. .. .. .",
	},
	"unknown": {
		"  .......  ",
		" ......... ",
		"..      .. ",
		"      ...  ",
		"    ...    ",
		"   ..      ",
		"           ",
		"   ..      ",
		"   ..      ",
		"   ..      ",
		"           ",
	},
}

// Sprite returns the icon for a category, falling back to "unknown".
func Sprite(category string) []string {
	if s, ok := sprites[category]; ok {
		return s
	}
	return sprites["unknown"]
}
