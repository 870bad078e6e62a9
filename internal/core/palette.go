package core

// Palette colors used to tag categories in the presentation layer.
const (
	ColorPrimary       = "#007AFF"
	ColorFood          = "#FF9500"
	ColorTransport     = "#5856D6"
	ColorEntertainment = "#FF2D55"
	ColorShopping      = "#5AC8FA"
	ColorBills         = "#FFCC00"
	ColorOther         = "#8E8E93"
)

var palette = map[Category]string{
	Food:          ColorFood,
	Transport:     ColorTransport,
	Entertainment: ColorEntertainment,
	Shopping:      ColorShopping,
	Bills:         ColorBills,
	Other:         ColorOther,
}

// Color returns the palette color of the category, or the primary color
// for anything outside the closed set (including CategoryAll).
func (c Category) Color() string {
	if col, ok := palette[c]; ok {
		return col
	}
	return ColorPrimary
}

// CategoryInfo pairs a category with its display color.
type CategoryInfo struct {
	Name  Category `json:"name"`
	Color string   `json:"color"`
}

// Palette lists every category with its color, in display order.
func Palette() []CategoryInfo {
	out := make([]CategoryInfo, 0, len(allCategories))
	for _, c := range allCategories {
		out = append(out, CategoryInfo{Name: c, Color: c.Color()})
	}
	return out
}
