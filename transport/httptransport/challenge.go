package httptransport

import (
	"strings"
	"sync"
)

type decisionKind int

const (
	decideCredential decisionKind = iota
	decideContinue
	decideCancel
)

type decision struct {
	kind     decisionKind
	user     string
	password string
}

// Challenge is the authentication challenge the HTTP transport passes to
// Events.OnChallenge. When the sink answers ChallengeHandled, the transfer
// waits until exactly one of UseCredential, ContinueWithoutCredential or
// Cancel is called; later calls are ignored.
type Challenge struct {
	// URL is the request URL that was challenged
	URL string

	// Scheme is the authentication scheme, e.g. "Basic"
	Scheme string

	// Realm is the protection space announced by the server, if any
	Realm string

	// Header is the raw WWW-Authenticate header value
	Header string

	// PreviousFailureCount is the number of credentials already rejected for this transfer
	PreviousFailureCount int

	once     sync.Once
	decision chan decision
}

func newChallenge(url, header string, failures int) *Challenge {
	scheme, realm := parseAuthenticate(header)
	return &Challenge{
		URL:                  url,
		Scheme:               scheme,
		Realm:                realm,
		Header:               header,
		PreviousFailureCount: failures,
		decision:             make(chan decision, 1),
	}
}

// UseCredential retries the request with HTTP basic credentials.
func (c *Challenge) UseCredential(user, password string) {
	c.decide(decision{kind: decideCredential, user: user, password: password})
}

// ContinueWithoutCredential delivers the 401 response as the transfer's response.
func (c *Challenge) ContinueWithoutCredential() {
	c.decide(decision{kind: decideContinue})
}

// Cancel aborts the transfer.
func (c *Challenge) Cancel() {
	c.decide(decision{kind: decideCancel})
}

func (c *Challenge) decide(d decision) {
	c.once.Do(func() {
		c.decision <- d
	})
}

// parseAuthenticate extracts the scheme and realm from a WWW-Authenticate value
// such as `Basic realm="uploads", charset="UTF-8"`.
func parseAuthenticate(header string) (scheme, realm string) {
	header = strings.TrimSpace(header)
	scheme, params, _ := strings.Cut(header, " ")
	for _, param := range strings.Split(params, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
		if !ok || !strings.EqualFold(key, "realm") {
			continue
		}
		return scheme, strings.Trim(value, `"`)
	}
	return scheme, ""
}
