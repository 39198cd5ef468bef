package presence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullStanza = `<presence from="room@conference.example.com/abcd1234" to="me@example.com/x">
  <x xmlns="http://jabber.org/protocol/muc#user">
    <item jid="alice@example.com/web-1" affiliation="none" role="participant"/>
    <status code="100"/>
  </x>
  <nick xmlns="http://jabber.org/protocol/nick">Alice</nick>
  <userId>u-42</userId>
  <stats-id>Bold-Fox</stats-id>
  <status>in a meeting</status>
  <identity>
    <user><id>u-42</id><name>Alice A.</name><avatar>https://img/a.png</avatar></user>
    <group>engineering</group>
  </identity>
  <stat name="version" value="2.1.7"/>
  <stat name="other" value="ignored"/>
  <bot type="poltergeist"/>
  <userType xmlns="http://jitsi.org/jitmeet/userType">tier-1</userType>
  <region id="eu-west" xmlns="http://jitsi.org/jitsi-meet"/>
</presence>`

func TestDecode_AllKnownTags(t *testing.T) {
	root, err := ParseXML([]byte(fullStanza))
	require.NoError(t, err)

	f := Decode(root)

	require.NotNil(t, f.Nick)
	assert.Equal(t, "Alice", *f.Nick)
	require.NotNil(t, f.UserID)
	assert.Equal(t, "u-42", *f.UserID)
	require.NotNil(t, f.StatsID)
	assert.Equal(t, "Bold-Fox", *f.StatsID)
	require.NotNil(t, f.Status)
	assert.Equal(t, "in a meeting", *f.Status)
	require.NotNil(t, f.Version)
	assert.Equal(t, "2.1.7", *f.Version)
	require.NotNil(t, f.BotType)
	assert.Equal(t, "poltergeist", *f.BotType)
	require.NotNil(t, f.Tier)
	assert.Equal(t, "tier-1", *f.Tier)
	require.NotNil(t, f.JID)
	assert.Equal(t, "alice@example.com/web-1", *f.JID)
	assert.False(t, f.Left)

	require.NotNil(t, f.Identity)
	require.NotNil(t, f.Identity.User)
	assert.Equal(t, "u-42", f.Identity.User.ID)
	assert.Equal(t, "Alice A.", f.Identity.User.Name)
	assert.Equal(t, "https://img/a.png", f.Identity.User.Avatar)
	assert.Equal(t, "engineering", f.Identity.Group)
}

func TestDecode_AbsentFieldsStayNil(t *testing.T) {
	root, err := ParseXML([]byte(`<presence><nick>Bob</nick></presence>`))
	require.NoError(t, err)

	f := Decode(root)
	require.NotNil(t, f.Nick)
	assert.Nil(t, f.Tier, "absent tier must not be defaulted by the decoder")
	assert.Nil(t, f.Version)
	assert.Nil(t, f.Status)
	assert.Nil(t, f.JID)
	assert.Nil(t, f.Identity)
}

func TestDecode_UnknownTagsIgnored(t *testing.T) {
	root := Node{Tag: "presence", Children: []Node{
		{Tag: "future-thing", Attrs: map[string]string{"a": "b"}, Children: []Node{{Tag: "nick", Value: "nested"}}},
		{Tag: "videomuted", Value: "false"},
	}}

	f := Decode(root)
	assert.True(t, f.IsEmpty(), "nested nick under unknown tag must not be picked up")
}

func TestDecode_MalformedRootYieldsEmpty(t *testing.T) {
	assert.True(t, Decode(Node{}).IsEmpty())
	assert.True(t, Decode(Node{Children: []Node{{Tag: "nick", Value: "x"}}}).IsEmpty())
}

func TestDecode_Unavailable(t *testing.T) {
	root, err := ParseXML([]byte(`<presence type="unavailable"/>`))
	require.NoError(t, err)

	f := Decode(root)
	assert.True(t, f.Left)
}

func TestDecode_StatWithoutValue(t *testing.T) {
	root := Node{Tag: "presence", Children: []Node{
		{Tag: "stat", Attrs: map[string]string{"name": "version"}},
		{Tag: "stat"},
		{Tag: "bot"},
	}}

	f := Decode(root)
	assert.Nil(t, f.Version)
	assert.Nil(t, f.BotType)
}

func TestDecode_EmptyUserTypeIsAbsent(t *testing.T) {
	root, err := ParseXML([]byte(`<presence><userType xmlns="http://jitsi.org/jitmeet/userType"></userType></presence>`))
	require.NoError(t, err)

	assert.Nil(t, Decode(root).Tier)
}

func TestDecode_ForeignXIgnored(t *testing.T) {
	root, err := ParseXML([]byte(`<presence><x xmlns="vcard-temp:x:update"><item jid="nope@x"/></x></presence>`))
	require.NoError(t, err)

	assert.Nil(t, Decode(root).JID)
}

func TestDecode_LastOccurrenceWins(t *testing.T) {
	root := Node{Tag: "presence", Children: []Node{
		{Tag: "userType", Value: "tier-1"},
		{Tag: "userType", Value: "tier-2"},
	}}

	f := Decode(root)
	require.NotNil(t, f.Tier)
	assert.Equal(t, "tier-2", *f.Tier)
}

func TestDecode_NormalizesText(t *testing.T) {
	root := Node{Tag: "presence", Children: []Node{{Tag: "nick", Value: "Jose\u0301"}}}

	f := Decode(root)
	require.NotNil(t, f.Nick)
	assert.Equal(t, "Jos\u00e9", *f.Nick)
}

func TestDecode_ConcurrentUse(t *testing.T) {
	root, err := ParseXML([]byte(fullStanza))
	require.NoError(t, err)

	want := Decode(root)
	done := make(chan Fields, 8)
	for i := 0; i < 8; i++ {
		go func() { done <- Decode(root) }()
	}
	for i := 0; i < 8; i++ {
		got := <-done
		assert.Equal(t, *want.Tier, *got.Tier)
		assert.Equal(t, *want.JID, *got.JID)
	}
}
