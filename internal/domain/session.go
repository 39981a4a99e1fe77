package domain

import "time"

const (
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

// Connection is the per-account transport identity: the header template and
// the optional outbound proxy every request for the account goes through.
type Connection struct {
	UserAgent string
	ProxyURL  string
}

func (c Connection) HasProxy() bool {
	return c.ProxyURL != ""
}

// Session is one authenticated context per account. A new Session replaces
// the previous one on re-authentication.
type Session struct {
	Address         AccountAddress
	Label           string
	Cookies         string
	Connection      Connection
	AuthenticatedAt time.Time
}

func (s Session) Valid() bool {
	return s.Address != "" && s.Cookies != ""
}

type CSRF struct {
	Token   string
	Cookies string
}
