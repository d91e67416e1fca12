package domain

import "time"

// CategoryColor is the display color token assigned to a category.
type CategoryColor string

const (
	ColorPurple CategoryColor = "purple"
	ColorGreen  CategoryColor = "green"
	ColorBlue   CategoryColor = "blue"
	ColorOrange CategoryColor = "orange"
	ColorRed    CategoryColor = "red"
)

// ColorStyle is the resolved presentation for a color token.
type ColorStyle struct {
	Background string `json:"background"`
	Text       string `json:"text"`
}

// colorStyles maps every known token to its style. Unknown tokens fall back
// to the neutral default so the UI never renders an unstyled badge.
var colorStyles = map[CategoryColor]ColorStyle{
	ColorPurple: {Background: "#ede9fe", Text: "#6d28d9"},
	ColorGreen:  {Background: "#dcfce7", Text: "#15803d"},
	ColorBlue:   {Background: "#dbeafe", Text: "#1d4ed8"},
	ColorOrange: {Background: "#ffedd5", Text: "#c2410c"},
	ColorRed:    {Background: "#fee2e2", Text: "#b91c1c"},
}

var defaultColorStyle = ColorStyle{Background: "#f3f4f6", Text: "#374151"}

// Valid reports whether c is a known color token.
func (c CategoryColor) Valid() bool {
	_, ok := colorStyles[c]
	return ok
}

// Style resolves the color token to its presentation, falling back to the
// neutral default for unknown tokens.
func (c CategoryColor) Style() ColorStyle {
	if s, ok := colorStyles[c]; ok {
		return s
	}
	return defaultColorStyle
}

// Category groups subscribers for targeted sends.
type Category struct {
	ID              string        `json:"id" db:"id"`
	Name            string        `json:"name" db:"name"`
	Color           CategoryColor `json:"color" db:"color"`
	Description     string        `json:"description" db:"description"`
	SubscriberCount int           `json:"subscriberCount" db:"subscriber_count"`
	CreatedAt       time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time     `json:"updatedAt" db:"updated_at"`
}
