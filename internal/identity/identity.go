// Package identity derives the local occupant's starting tier from the
// meeting token.
package identity

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/roach88/tierview/internal/roster"
)

// ErrInvalidToken is returned when the meeting token cannot be decoded.
var ErrInvalidToken = errors.New("invalid meeting token")

// Source names where the local tier came from.
type Source string

const (
	SourceToken   Source = "token"
	SourceURL     Source = "url"
	SourceDev     Source = "dev-default"
	SourceDefault Source = "default"
)

// User is the context.user block of a meeting token.
type User struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Avatar string `json:"avatar,omitempty"`
	Role   string `json:"role,omitempty"`
}

// Claims is the subset of a meeting token this package reads.
type Claims struct {
	jwt.RegisteredClaims
	Room    string `json:"room,omitempty"`
	Context struct {
		User User `json:"user"`
	} `json:"context"`
}

// ParseToken decodes a meeting token without verifying its signature. The
// conference server verifies tokens; the client only reads them.
func ParseToken(token string) (Claims, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return claims, nil
}

// LocalTier resolves the local occupant's tier:
//
//  1. context.user.role of the meeting token, when it is a valid tier;
//  2. on a localhost development origin, the role URL parameter, else tier-2;
//  3. tier-3.
//
// An undecodable token is reported but resolution still falls through, so
// the returned tier is always valid.
func LocalTier(token, meetingURL string) (roster.Tier, Source, error) {
	var tokenErr error
	if token != "" {
		claims, err := ParseToken(token)
		if err != nil {
			tokenErr = err
		} else if t, ok := roster.ParseTier(strings.TrimSpace(claims.Context.User.Role)); ok {
			return t, SourceToken, nil
		}
	}

	if u, ok := devOrigin(meetingURL); ok {
		if t, ok := roster.ParseTier(u.Query().Get("role")); ok {
			return t, SourceURL, tokenErr
		}
		return roster.Tier2, SourceDev, tokenErr
	}
	return roster.Tier3, SourceDefault, tokenErr
}

// devOrigin reports whether meetingURL is served from localhost on an
// explicit port.
func devOrigin(meetingURL string) (*url.URL, bool) {
	if meetingURL == "" {
		return nil, false
	}
	u, err := url.Parse(meetingURL)
	if err != nil {
		return nil, false
	}
	return u, u.Hostname() == "localhost" && u.Port() != ""
}
