package authflow

import "context"

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Theme returns the stored theme, dark when unset or unknown.
func (s *Session) Theme(ctx context.Context) Theme {
	v, _, _ := s.store.Get(ctx, KeyTheme)
	if Theme(v) == ThemeLight {
		return ThemeLight
	}
	return ThemeDark
}

func (s *Session) SetTheme(ctx context.Context, t Theme) error {
	if t != ThemeLight {
		t = ThemeDark
	}
	return s.store.Set(ctx, KeyTheme, string(t))
}

// ToggleTheme flips and persists the theme, returning the new one.
func (s *Session) ToggleTheme(ctx context.Context) (Theme, error) {
	next := ThemeLight
	if s.Theme(ctx) == ThemeLight {
		next = ThemeDark
	}
	return next, s.SetTheme(ctx, next)
}
