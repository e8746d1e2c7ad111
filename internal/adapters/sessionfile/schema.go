package sessionfile

import "fmt"

const currentSchemaVersion = 1

type fileSchema struct {
	Version    int            `toml:"version"`
	CapturedAt string         `toml:"captured_at"`
	Cookies    []cookieSchema `toml:"cookies"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported session schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type cookieSchema struct {
	Name   string `toml:"name"`
	Value  string `toml:"value"`
	Domain string `toml:"domain,omitempty"`
	Path   string `toml:"path,omitempty"`
}
