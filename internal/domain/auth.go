package domain

import "strings"

// AuthContext is the web-session cookie set captured on login. It is
// immutable: a new login publishes a replacement, it is never patched.
type AuthContext struct {
	SessionID string
	Cookies   []Cookie
}

type Cookie struct {
	Name  string
	Value string
}

// ParseCookie splits a "name=value" cookie string on the first '='.
func ParseCookie(raw string) Cookie {
	name, value, _ := strings.Cut(raw, "=")
	return Cookie{Name: name, Value: value}
}

func NewAuthContext(sessionID string, rawCookies []string) AuthContext {
	cookies := make([]Cookie, 0, len(rawCookies))
	for _, raw := range rawCookies {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		cookies = append(cookies, ParseCookie(raw))
	}

	return AuthContext{SessionID: sessionID, Cookies: cookies}
}

// CloneCookies returns a copy safe to hand to another consumer.
func (a AuthContext) CloneCookies() []Cookie {
	cookies := make([]Cookie, len(a.Cookies))
	copy(cookies, a.Cookies)
	return cookies
}
