package domain

// DeletedPlaceholder 被全域刪除的訊息顯示的文字 (deleteMessageDeletedGlobally)
const DeletedPlaceholder = "This message was deleted."

// ControlKind non empty when the message is a control message rather than user content
type ControlKind string

const (
	// ControlNone user content
	ControlNone ControlKind = ""
	// ControlExpirationTimerUpdate disappearing message setting changed
	ControlExpirationTimerUpdate ControlKind = "expiration_timer_update"
	// ControlDataExtraction screenshot / media saved notification
	ControlDataExtraction ControlKind = "data_extraction"
	// ControlMessageRequestResponse message request accepted
	ControlMessageRequestResponse ControlKind = "message_request_response"
	// ControlGroupUpdate group membership or name change
	ControlGroupUpdate ControlKind = "group_update"
)

// Attachment 附件, Path 為 object storage 內的 key
type Attachment struct {
	ID          string `bson:"id" json:"id"`
	ContentType string `bson:"content_type" json:"content_type"`
	Path        string `bson:"path" json:"path"`
	Size        int64  `bson:"size" json:"size"`
}

// Quote 引用的訊息
type Quote struct {
	ID     int64  `bson:"id" json:"id"`
	Author string `bson:"author" json:"author"`
	Text   string `bson:"text" json:"text"`
}

// LinkPreview 連結預覽
type LinkPreview struct {
	URL   string `bson:"url" json:"url"`
	Title string `bson:"title" json:"title"`
	Image string `bson:"image,omitempty" json:"image,omitempty"`
}

// Message 本機儲存的訊息
type Message struct {
	ID             string `bson:"_id" json:"id"`
	ConversationID string `bson:"conversation_id" json:"conversation_id"`
	// Source 寄件人 account id, community 內可能是 blinded id
	Source     string `bson:"source" json:"source"`
	SentAt     int64  `bson:"sent_at" json:"sent_at"`
	ReceivedAt int64  `bson:"received_at" json:"received_at"`
	// MessageHash swarm 儲存後才有
	MessageHash string `bson:"message_hash,omitempty" json:"message_hash,omitempty"`
	// ServerID community server 指派的 id, 0 表示沒有
	ServerID int64 `bson:"server_id,omitempty" json:"server_id,omitempty"`

	Body        string              `bson:"body" json:"body"`
	Quote       *Quote              `bson:"quote,omitempty" json:"quote,omitempty"`
	Attachments []Attachment        `bson:"attachments,omitempty" json:"attachments,omitempty"`
	Preview     []LinkPreview       `bson:"preview,omitempty" json:"preview,omitempty"`
	Reactions   map[string][]string `bson:"reacts,omitempty" json:"reacts,omitempty"`

	ControlKind ControlKind `bson:"control_kind,omitempty" json:"control_kind,omitempty"`
	IsDeleted   bool        `bson:"is_deleted" json:"is_deleted"`
	Unread      bool        `bson:"unread" json:"unread"`
}

// IsControlMessage expiration update, data extraction, request response or group update
func (m *Message) IsControlMessage() bool {
	return m.ControlKind != ControlNone
}

// Timestamp sent_at, received_at if the former is missing
func (m *Message) Timestamp() int64 {
	if m.SentAt != 0 {
		return m.SentAt
	}
	return m.ReceivedAt
}

// AttachmentPaths object keys of every attachment
func (m *Message) AttachmentPaths() []string {
	paths := make([]string, 0, len(m.Attachments))
	for _, a := range m.Attachments {
		if a.Path != "" {
			paths = append(paths, a.Path)
		}
	}
	return paths
}

// MarkAsDeleted 清空內容只留下 tombstone
func (m *Message) MarkAsDeleted() {
	m.IsDeleted = true
	m.Body = DeletedPlaceholder
	m.Quote = nil
	m.Attachments = nil
	m.Preview = nil
	m.Reactions = nil
	m.Unread = false
}

// PreviewText 給對話列表的最後一則訊息摘要
func (m *Message) PreviewText() string {
	if m.IsDeleted {
		return DeletedPlaceholder
	}
	if m.Body == "" && len(m.Attachments) > 0 {
		return "Attachment"
	}
	return m.Body
}

// MessageHashes non empty hashes of messages
func MessageHashes(msgs []Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if m.MessageHash != "" {
			out = append(out, m.MessageHash)
		}
	}
	return out
}

// MessageIDs ids of messages
func MessageIDs(msgs []Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.ID)
	}
	return out
}
