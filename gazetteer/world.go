package gazetteer

// worldEntries is the built-in table for the equirectangular world map.
// Several keys may name the same place; segmentation splits some landmasses
// and the territory grouper rejoins them by name.
var worldEntries = []Entry{
	{X: 0.17, Y: 0.43, Name: "United States", Population: 331},
	{X: 0.18, Y: 0.43, Name: "United States", Population: 331},
	{X: 0.10, Y: 0.20, Name: "Alaska", Population: 0.7},
	{X: 0.09, Y: 0.20, Name: "Alaska", Population: 0.7},
	{X: 0.18, Y: 0.30, Name: "Canada", Population: 38},
	{X: 0.20, Y: 0.30, Name: "Canada", Population: 38},
	{X: 0.17, Y: 0.54, Name: "Mexico", Population: 128},
	{X: 0.17, Y: 0.52, Name: "Mexico", Population: 128},
	{X: 0.24, Y: 0.54, Name: "Cuba", Population: 11},
	{X: 0.22, Y: 0.58, Name: "Central America", Population: 50},
	{X: 0.28, Y: 0.19, Name: "Arctic Islands", Population: 0.1},
	{X: 0.29, Y: 0.22, Name: "Arctic Islands", Population: 0.1},
	{X: 0.58, Y: 0.19, Name: "Arctic Islands", Population: 0.1},
	{X: 0.65, Y: 0.10, Name: "Arctic Islands", Population: 0.1},
	{X: 0.64, Y: 0.09, Name: "Arctic Islands", Population: 0.1},
	{X: 0.62, Y: 0.08, Name: "Arctic Islands", Population: 0.1},
	{X: 0.57, Y: 0.10, Name: "Arctic Islands", Population: 0.1},
	{X: 0.54, Y: 0.11, Name: "Arctic Islands", Population: 0.1},
	{X: 0.50, Y: 0.13, Name: "Arctic Islands", Population: 0.1},
	{X: 0.49, Y: 0.14, Name: "Arctic Islands", Population: 0.1},
	{X: 0.31, Y: 0.11, Name: "Arctic Islands", Population: 0.1},
	{X: 0.29, Y: 0.09, Name: "Arctic Islands", Population: 0.1},
	{X: 0.26, Y: 0.13, Name: "Arctic Islands", Population: 0.1},
	{X: 0.23, Y: 0.13, Name: "Arctic Islands", Population: 0.1},
	{X: 0.22, Y: 0.18, Name: "Arctic Islands", Population: 0.1},
	{X: 0.20, Y: 0.15, Name: "Arctic Islands", Population: 0.1},
	{X: 0.22, Y: 0.10, Name: "Arctic Islands", Population: 0.1},
	{X: 0.24, Y: 0.10, Name: "Arctic Islands", Population: 0.1},
	{X: 0.25, Y: 0.08, Name: "Arctic Islands", Population: 0.1},
	{X: 0.31, Y: 0.10, Name: "Arctic Islands", Population: 0.1},
	{X: 0.29, Y: 0.08, Name: "Arctic Islands", Population: 0.1},
	{X: 0.25, Y: 0.17, Name: "Arctic Islands", Population: 0.1},
	{X: 0.25, Y: 0.18, Name: "Arctic Islands", Population: 0.1},
	{X: 0.21, Y: 0.18, Name: "Arctic Islands", Population: 0.1},
	{X: 0.25, Y: 0.63, Name: "Venezuela", Population: 28},
	{X: 0.26, Y: 0.64, Name: "Venezuela", Population: 28},
	{X: 0.31, Y: 0.69, Name: "Brazil", Population: 212},
	{X: 0.31, Y: 0.70, Name: "Brazil", Population: 212},
	{X: 0.28, Y: 0.81, Name: "Argentina", Population: 45},
	{X: 0.28, Y: 0.80, Name: "Argentina", Population: 45},
	{X: 0.42, Y: 0.28, Name: "Iceland", Population: 0.4},
	{X: 0.50, Y: 0.29, Name: "Scandinavia", Population: 30},
	{X: 0.50, Y: 0.39, Name: "Central Europe", Population: 180},
	{X: 0.50, Y: 0.40, Name: "Central Europe", Population: 180},
	{X: 0.45, Y: 0.37, Name: "England", Population: 68},
	{X: 0.44, Y: 0.36, Name: "England", Population: 68},
	{X: 0.45, Y: 0.36, Name: "England", Population: 68},
	{X: 0.50, Y: 0.46, Name: "Central Europe", Population: 180},
	{X: 0.48, Y: 0.45, Name: "Central Europe", Population: 180},
	{X: 0.48, Y: 0.43, Name: "Central Europe", Population: 180},
	{X: 0.52, Y: 0.56, Name: "Northern Africa", Population: 250},
	{X: 0.53, Y: 0.57, Name: "Northern Africa", Population: 250},
	{X: 0.44, Y: 0.54, Name: "Western Africa", Population: 400},
	{X: 0.45, Y: 0.54, Name: "Western Africa", Population: 400},
	{X: 0.53, Y: 0.68, Name: "Central Africa", Population: 180},
	{X: 0.53, Y: 0.67, Name: "Central Africa", Population: 180},
	{X: 0.52, Y: 0.77, Name: "Southern Africa", Population: 70},
	{X: 0.53, Y: 0.76, Name: "Southern Africa", Population: 70},
	{X: 0.59, Y: 0.74, Name: "Madagascar", Population: 28},
	{X: 0.71, Y: 0.27, Name: "Russia", Population: 146},
	{X: 0.71, Y: 0.26, Name: "Russia", Population: 146},
	{X: 0.65, Y: 0.38, Name: "Kazakhstan", Population: 19},
	{X: 0.64, Y: 0.39, Name: "Kazakhstan", Population: 19},
	{X: 0.74, Y: 0.39, Name: "Mongolia", Population: 3},
	{X: 0.75, Y: 0.46, Name: "China", Population: 1439},
	{X: 0.75, Y: 0.45, Name: "China", Population: 1439},
	{X: 0.81, Y: 0.44, Name: "Korea", Population: 78},
	{X: 0.81, Y: 0.43, Name: "Korea", Population: 78},
	{X: 0.85, Y: 0.44, Name: "Japan", Population: 126},
	{X: 0.84, Y: 0.45, Name: "Japan", Population: 126},
	{X: 0.85, Y: 0.39, Name: "Japan", Population: 126},
	{X: 0.84, Y: 0.39, Name: "Japan", Population: 126},
	{X: 0.81, Y: 0.53, Name: "Taiwan", Population: 24},
	{X: 0.80, Y: 0.53, Name: "Taiwan", Population: 24},
	{X: 0.60, Y: 0.48, Name: "Middle East", Population: 400},
	{X: 0.61, Y: 0.49, Name: "Middle East", Population: 400},
	{X: 0.69, Y: 0.53, Name: "India", Population: 1380},
	{X: 0.70, Y: 0.53, Name: "India", Population: 1380},
	{X: 0.69, Y: 0.61, Name: "India", Population: 1380},
	{X: 0.76, Y: 0.56, Name: "Indochina", Population: 250},
	{X: 0.76, Y: 0.57, Name: "Indochina", Population: 250},
	{X: 0.79, Y: 0.64, Name: "Oceanic Islands", Population: 700},
	{X: 0.78, Y: 0.68, Name: "Oceanic Islands", Population: 700},
	{X: 0.81, Y: 0.57, Name: "Oceanic Islands", Population: 700},
	{X: 0.87, Y: 0.67, Name: "Oceanic Islands", Population: 700},
	{X: 0.79, Y: 0.65, Name: "Oceanic Islands", Population: 700},
	{X: 0.75, Y: 0.65, Name: "Oceanic Islands", Population: 700},
	{X: 0.85, Y: 0.77, Name: "Australia", Population: 26},
	{X: 0.84, Y: 0.78, Name: "Australia", Population: 26},
	{X: 0.86, Y: 0.89, Name: "Australia", Population: 26},
	{X: 0.93, Y: 0.91, Name: "New Zealand", Population: 5},
	{X: 0.93, Y: 0.90, Name: "New Zealand", Population: 5},
	{X: 0.38, Y: 0.18, Name: "Greenland", Population: 0.06},
	{X: 0.38, Y: 0.17, Name: "Greenland", Population: 0.06},
}

// World returns the built-in world gazetteer.
func World() *Gazetteer {
	g, err := New(worldEntries, DefaultPrecision)
	if err != nil {
		panic(err)
	}
	return g
}
