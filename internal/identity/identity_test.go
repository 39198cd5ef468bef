package identity

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tierview/internal/roster"
)

func signToken(t *testing.T, role string) string {
	t.Helper()
	claims := Claims{Room: "standup"}
	claims.Issuer = "meet"
	claims.Context.User = User{ID: "u-1", Name: "Ada", Role: role}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}

func TestParseToken(t *testing.T) {
	claims, err := ParseToken(signToken(t, "tier-1"))
	require.NoError(t, err)
	assert.Equal(t, "standup", claims.Room)
	assert.Equal(t, "u-1", claims.Context.User.ID)
	assert.Equal(t, "tier-1", claims.Context.User.Role)
}

func TestParseToken_Invalid(t *testing.T) {
	_, err := ParseToken("not-a-token")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLocalTier(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		noToken    bool
		url        string
		wantTier   roster.Tier
		wantSource Source
	}{
		{name: "token role", role: "tier-0", url: "https://meet.example.com/room", wantTier: roster.Tier0, wantSource: SourceToken},
		{name: "token role wins on localhost", role: "tier-1", url: "http://localhost:8080/room?role=tier-2", wantTier: roster.Tier1, wantSource: SourceToken},
		{name: "empty role falls back", role: "", url: "https://meet.example.com/room", wantTier: roster.Tier3, wantSource: SourceDefault},
		{name: "invalid role falls back", role: "admin", url: "https://meet.example.com/room", wantTier: roster.Tier3, wantSource: SourceDefault},
		{name: "no token", noToken: true, url: "https://meet.example.com/room", wantTier: roster.Tier3, wantSource: SourceDefault},
		{name: "dev url role", noToken: true, url: "http://localhost:8080/room?role=tier-1", wantTier: roster.Tier1, wantSource: SourceURL},
		{name: "dev url without role", noToken: true, url: "http://localhost:8080/room", wantTier: roster.Tier2, wantSource: SourceDev},
		{name: "dev url bogus role", noToken: true, url: "http://localhost:8080/room?role=undefined", wantTier: roster.Tier2, wantSource: SourceDev},
		{name: "localhost without port", noToken: true, url: "http://localhost/room?role=tier-1", wantTier: roster.Tier3, wantSource: SourceDefault},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := ""
			if !tt.noToken {
				token = signToken(t, tt.role)
			}
			tier, src, err := LocalTier(token, tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTier, tier)
			assert.Equal(t, tt.wantSource, src)
		})
	}
}

func TestLocalTier_BadTokenStillResolves(t *testing.T) {
	tier, src, err := LocalTier("garbage", "http://localhost:3000/")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, roster.Tier2, tier)
	assert.Equal(t, SourceDev, src)
}
