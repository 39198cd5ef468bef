package roster

import (
	"fmt"
	"regexp"
	"strings"
)

// Rules are the address patterns the store matches participants against.
type Rules struct {
	// LocalAddress is the local client's own occupant address
	// (room@conference.domain/resource).
	LocalAddress string

	// FocusUserJID is the bare address of the conference focus. A member
	// whose address starts with FocusUserJID + "/" is the focus.
	FocusUserJID string

	// HiddenDomain marks recorder/transcriber style accounts.
	HiddenDomain string

	// GatewayPattern is a substring identifying SIP gateway accounts
	// (e.g. "jigasi@auth.meet.example.com"). Those are always tier-2.
	GatewayPattern string

	// NoTierSignature is a regular expression for clients that never send
	// a tier (legacy mobile SDKs). New members matching it without a tier
	// default to tier-2.
	NoTierSignature string
}

type compiledRules struct {
	Rules
	noTier *regexp.Regexp
}

func compileRules(r Rules) (compiledRules, error) {
	c := compiledRules{Rules: r}
	if r.NoTierSignature != "" {
		re, err := regexp.Compile(r.NoTierSignature)
		if err != nil {
			return c, fmt.Errorf("compile no-tier signature: %w", err)
		}
		c.noTier = re
	}
	return c, nil
}

func (c compiledRules) isLocal(source string) bool {
	return c.LocalAddress != "" && source == c.LocalAddress
}

func (c compiledRules) isFocus(addr string) bool {
	return c.FocusUserJID != "" && strings.HasPrefix(addr, c.FocusUserJID+"/")
}

func (c compiledRules) isHiddenDomain(addr string) bool {
	if c.HiddenDomain == "" {
		return false
	}
	return DomainOf(addr) == c.HiddenDomain
}

func (c compiledRules) isGateway(addr string) bool {
	return c.GatewayPattern != "" && strings.Contains(addr, c.GatewayPattern)
}

func (c compiledRules) lacksTierInfo(addr string) bool {
	return c.noTier != nil && c.noTier.MatchString(addr)
}

// ResourceOf returns the resource part of an address ("" when absent).
func ResourceOf(addr string) string {
	if i := strings.IndexByte(addr, '/'); i >= 0 {
		return addr[i+1:]
	}
	return ""
}

// DomainOf returns the domain part of an address: the text between the
// first '@' and the first '/' (or the end).
func DomainOf(addr string) string {
	at := strings.IndexByte(addr, '@')
	if at <= 0 {
		return ""
	}
	rest := addr[at+1:]
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		return rest[:i]
	}
	return rest
}
