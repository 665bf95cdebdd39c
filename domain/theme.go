package domain

// Theme is the persisted UI color preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Opposite returns the other theme value.
func (t Theme) Opposite() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Valid reports whether t is one of the known theme values.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}
