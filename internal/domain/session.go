package domain

import (
	"fmt"
	"strings"
	"time"
)

type Credentials struct {
	Username string
	Password string
}

func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Username) == "" {
		return fmt.Errorf("username is required")
	}
	if c.Password == "" {
		return fmt.Errorf("password is required")
	}

	return nil
}

type Cookie struct {
	Name   string
	Value  string
	Domain string
	Path   string
}

type PortalUser struct {
	ID        int64
	Name      string
	Login     string
	ContextID int64
}

type Session struct {
	Cookies    []Cookie
	CapturedAt time.Time
	User       *PortalUser
	Context    *OperatingContext
}

func (s Session) Expired(now time.Time, maxAge time.Duration) bool {
	if s.CapturedAt.IsZero() {
		return true
	}

	if maxAge <= 0 {
		return false
	}

	return now.Sub(s.CapturedAt) > maxAge
}

func (s Session) HasCookies() bool {
	return len(s.Cookies) > 0
}

func (s *Session) Replace(fresh Session) {
	s.Cookies = fresh.Cookies
	s.CapturedAt = fresh.CapturedAt
	s.User = fresh.User
	s.Context = nil
}

func (s Session) CookieHeader() string {
	pairs := make([]string, 0, len(s.Cookies))
	for _, c := range s.Cookies {
		pairs = append(pairs, c.Name+"="+c.Value)
	}

	return strings.Join(pairs, "; ")
}

// SetCookie upserts by cookie name. The portal rotates its session cookie on
// some responses; the newest value must win.
func (s *Session) SetCookie(c Cookie) {
	for i := range s.Cookies {
		if s.Cookies[i].Name == c.Name {
			s.Cookies[i] = c
			return
		}
	}

	s.Cookies = append(s.Cookies, c)
}
