package config

import (
	"fmt"

	"github.com/Getabako/instagram-workflow-template/internal/render"
)

// FontRegistry builds a registry from the configured candidates. Roles whose
// candidates all fail keep the built-in Go fonts; the returned warnings list
// every candidate that was skipped.
func (c *Config) FontRegistry() (*render.FontRegistry, []error) {
	reg := render.DefaultFonts()
	var warnings []error
	for _, cand := range []struct {
		role  render.Role
		paths []string
		index int
	}{
		{render.RoleTitle, c.Fonts.Title, c.Fonts.TitleIndex},
		{render.RoleContent, c.Fonts.Content, c.Fonts.ContentIndex},
	} {
		for _, path := range cand.paths {
			err := reg.RegisterFile(cand.role, path, cand.index)
			if err == nil {
				break
			}
			warnings = append(warnings, fmt.Errorf("%s font: %w", cand.role, err))
		}
	}
	return reg, warnings
}
