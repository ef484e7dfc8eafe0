package domain

// ConversationKind closed set of conversation kinds, resolved once per request
type ConversationKind int

const (
	// KindPrivate 1o1 with another account
	KindPrivate ConversationKind = iota + 1
	// KindSelf note to self, also how our devices sync
	KindSelf
	// KindLegacyGroup closed group keyed by a 05 id
	KindLegacyGroup
	// KindGroupV2 group keyed by a 03 id
	KindGroupV2
	// KindCommunity open group hosted on a community server
	KindCommunity
)

func (k ConversationKind) String() string {
	switch k {
	case KindPrivate:
		return "private"
	case KindSelf:
		return "self"
	case KindLegacyGroup:
		return "legacy_group"
	case KindGroupV2:
		return "group_v2"
	case KindCommunity:
		return "community"
	default:
		return "unknown"
	}
}

// ConversationRecord 資料庫中的對話
type ConversationRecord struct {
	ID              string
	IsCommunity     bool
	IsClosedGroup   bool
	WeAreAdmin      bool
	WeAreModerator  bool
	OurBlindedID    string
	CommunityServer string
	CommunityRoom   string
	// AdminSecretKey v2 群組管理員才有
	AdminSecretKey []byte

	LastMessageID      string
	LastMessagePreview string
	LastMessageAt      int64
}

// Conversation record with its resolved kind
type Conversation struct {
	ConversationRecord
	Kind ConversationKind
}

// ResolveKind 依 id 前綴與旗標決定對話種類
func ResolveKind(rec ConversationRecord, id Identity) ConversationKind {
	switch {
	case SameKey(rec.ID, id.AccountID):
		return KindSelf
	case Is03Pubkey(rec.ID):
		return KindGroupV2
	case rec.IsCommunity:
		return KindCommunity
	case rec.IsClosedGroup && Is05Pubkey(rec.ID):
		return KindLegacyGroup
	default:
		return KindPrivate
	}
}

// NewConversation resolve kind and wrap the record
func NewConversation(rec ConversationRecord, id Identity) *Conversation {
	return &Conversation{ConversationRecord: rec, Kind: ResolveKind(rec, id)}
}

// IsUs sender is our account, or our blinded alias in a community
func (c *Conversation) IsUs(sender string, id Identity) bool {
	if SameKey(sender, id.AccountID) {
		return true
	}
	return c.Kind == KindCommunity && SameKey(sender, c.OurBlindedID)
}

// WeAreCommunityModerator admin or moderator of the community
func (c *Conversation) WeAreCommunityModerator() bool {
	return c.Kind == KindCommunity && (c.WeAreModerator || c.WeAreAdmin)
}

// WeAreGroupV2Admin admin of the v2 group
func (c *Conversation) WeAreGroupV2Admin() bool {
	return c.Kind == KindGroupV2 && c.WeAreAdmin
}
