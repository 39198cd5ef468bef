package presence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseXML_Structure(t *testing.T) {
	root, err := ParseXML([]byte(`<presence from="r@c/x"><a k="v">hi &amp; bye<b/></a><c>t</c></presence>`))
	require.NoError(t, err)

	assert.Equal(t, "presence", root.Tag)
	assert.Equal(t, "r@c/x", root.Attr("from"))
	require.Len(t, root.Children, 2)
	assert.Equal(t, "a", root.Children[0].Tag)
	assert.Equal(t, "v", root.Children[0].Attr("k"))
	assert.Equal(t, "hi & bye", root.Children[0].Value)
	require.Len(t, root.Children[0].Children, 1)
	assert.Equal(t, "b", root.Children[0].Children[0].Tag)
	assert.Equal(t, "t", root.Children[1].Value)
}

func TestParseXML_KeepsNamespace(t *testing.T) {
	root, err := ParseXML([]byte(`<presence><x xmlns="http://jabber.org/protocol/muc#user"/></presence>`))
	require.NoError(t, err)

	require.Len(t, root.Children, 1)
	assert.Equal(t, NSMucUser, root.Children[0].Space)
	assert.Empty(t, root.Children[0].Attrs, "xmlns declarations are not attributes")
}

func TestParseXML_Errors(t *testing.T) {
	_, err := ParseXML([]byte(`<presence><nick>`))
	assert.Error(t, err)

	_, err = ParseXML([]byte(``))
	assert.Error(t, err)
}

func TestWalk_PreOrderAndPrune(t *testing.T) {
	root := Node{Tag: "r", Children: []Node{
		{Tag: "a", Children: []Node{{Tag: "a1"}, {Tag: "a2"}}},
		{Tag: "b", Children: []Node{{Tag: "b1"}}},
		{Tag: "c"},
	}}

	var seen []string
	Walk(root, func(n Node, depth int) bool {
		seen = append(seen, n.Tag)
		return n.Tag != "b"
	})
	assert.Equal(t, []string{"a", "a1", "a2", "b", "c"}, seen)
}

func TestFlatten(t *testing.T) {
	root := Node{Tag: "presence", Children: []Node{
		{Tag: "x", Children: []Node{{Tag: "item", Attrs: map[string]string{"jid": "a@b/c"}}}},
		{Tag: "nick", Value: "Ann"},
	}}

	flat := Flatten(root)
	require.Len(t, flat, 3)
	assert.Equal(t, "x", flat[0].Tag)
	assert.Equal(t, "a@b/c", flat[1].Attr("jid"))
	assert.Equal(t, "Ann", flat[2].Value)
	assert.Empty(t, Flatten(Node{Tag: "empty"}))
}

func TestWalk_DeepNesting(t *testing.T) {
	root := Node{Tag: "r"}
	cur := &root
	for i := 0; i < 10000; i++ {
		cur.Children = []Node{{Tag: "n"}}
		cur = &cur.Children[0]
	}

	maxDepth := 0
	Walk(root, func(_ Node, depth int) bool {
		if depth > maxDepth {
			maxDepth = depth
		}
		return true
	})
	assert.Equal(t, 10000, maxDepth)
}

func TestTierNode(t *testing.T) {
	n := TierNode("tier-2")
	assert.Equal(t, "userType", n.Tag)
	assert.Equal(t, "tier-2", n.Value)
	assert.Equal(t, NSUserType, n.Space)

	f := Decode(Node{Tag: "presence", Children: []Node{n}})
	require.NotNil(t, f.Tier)
	assert.Equal(t, "tier-2", *f.Tier)
}
