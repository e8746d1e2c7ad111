package domain

import "strings"

// OperatingContext is one organizational role the portal lets the user act
// under. Index is the row position the switch form wants back.
type OperatingContext struct {
	Index int
	Name  string
	Organ string
	Role  string
}

func (c OperatingContext) FullName() string {
	parts := make([]string, 0, 3)
	for _, part := range []string{c.Name, c.Organ, c.Role} {
		if strings.TrimSpace(part) != "" {
			parts = append(parts, strings.TrimSpace(part))
		}
	}

	return strings.Join(parts, " / ")
}

func ParseOperatingContext(index int, label string) OperatingContext {
	ctx := OperatingContext{Index: index}

	parts := strings.Split(strings.TrimSpace(label), " / ")
	if len(parts) > 0 {
		ctx.Name = strings.TrimSpace(parts[0])
	}
	if len(parts) > 1 {
		ctx.Organ = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		ctx.Role = strings.TrimSpace(strings.Join(parts[2:], " / "))
	}

	return ctx
}
