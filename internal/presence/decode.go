package presence

import (
	"golang.org/x/text/unicode/norm"
)

// Namespaces the decoder cares about.
const (
	NSMucUser  = "http://jabber.org/protocol/muc#user"
	NSUserType = "http://jitsi.org/jitmeet/userType"
)

// Identity is the nested identity block of a presence.
type Identity struct {
	User  *IdentityUser `json:"user,omitempty"`
	Group string        `json:"group,omitempty"`
}

// IdentityUser holds the identity/user sub-tree fields.
type IdentityUser struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// Fields is the flat record decoded from one presence.
//
// A nil pointer means the stanza did not carry the field. Defaulting is
// the roster's job, never the decoder's.
type Fields struct {
	Nick     *string   `json:"nick,omitempty"`
	UserID   *string   `json:"userId,omitempty"`
	StatsID  *string   `json:"statsId,omitempty"`
	Identity *Identity `json:"identity,omitempty"`
	Version  *string   `json:"version,omitempty"`
	BotType  *string   `json:"botType,omitempty"`
	Tier     *string   `json:"userType,omitempty"`
	Status   *string   `json:"status,omitempty"`
	JID      *string   `json:"jid,omitempty"`
	Left     bool      `json:"left,omitempty"`
}

// IsEmpty reports whether nothing was decoded.
func (f Fields) IsEmpty() bool {
	return f == Fields{}
}

// Decode converts one presence tree into Fields.
//
// Only the direct children of the root are inspected, in document order;
// when a tag repeats, the last occurrence wins. Unknown tags are skipped so
// newer clients can add elements freely. A root without a tag is treated as
// malformed and yields empty Fields.
func Decode(root Node) Fields {
	var f Fields
	if root.Tag == "" {
		return f
	}

	if root.Attr("type") == "unavailable" {
		f.Left = true
	}

	for _, n := range root.Children {
		switch n.Tag {
		case "nick":
			f.Nick = text(n.Value)
		case "userId":
			f.UserID = text(n.Value)
		case "stats-id":
			f.StatsID = text(n.Value)
		case "status":
			f.Status = text(n.Value)
		case "identity":
			f.Identity = decodeIdentity(n)
		case "stat":
			if n.Attr("name") == "version" {
				if v, ok := n.Attrs["value"]; ok {
					f.Version = text(v)
				}
			}
		case "bot":
			if t, ok := n.Attrs["type"]; ok {
				f.BotType = text(t)
			}
		case "userType":
			// An empty element carries no tier; treat it as absent.
			if n.Value != "" {
				f.Tier = text(n.Value)
			}
		case "x":
			if n.Space != "" && n.Space != NSMucUser {
				continue
			}
			if jid, ok := itemJID(n); ok {
				f.JID = text(jid)
			}
		}
	}

	return f
}

func decodeIdentity(n Node) *Identity {
	id := &Identity{}
	if user, ok := n.Child("user"); ok {
		id.User = &IdentityUser{}
		for _, c := range user.Children {
			switch c.Tag {
			case "id":
				id.User.ID = norm.NFC.String(c.Value)
			case "name":
				id.User.Name = norm.NFC.String(c.Value)
			case "avatar":
				id.User.Avatar = c.Value
			}
		}
	}
	if group, ok := n.Child("group"); ok {
		id.Group = norm.NFC.String(group.Value)
	}
	return id
}

func itemJID(x Node) (string, bool) {
	var (
		jid   string
		found bool
	)
	Walk(x, func(n Node, _ int) bool {
		if found {
			return false
		}
		if n.Tag == "item" {
			jid, found = n.Attrs["jid"]
			return false
		}
		return true
	})
	return jid, found
}

func text(s string) *string {
	v := norm.NFC.String(s)
	return &v
}
