package domain

// Action websocket request / push action
type Action string

const (
	// GetEligibility websocket action get_eligibility
	GetEligibility Action = "get_eligibility"
	// DeleteMessages websocket action delete_messages
	DeleteMessages Action = "delete_messages"
	// ClearMessages websocket action clear_messages
	ClearMessages Action = "clear_messages"

	// NotifyDeleted push: success toast
	NotifyDeleted Action = "notify_deleted"
	// NotifyError push: generic error toast
	NotifyError Action = "notify_error"
	// NotifyResetSelection push: close dialog and clear selection
	NotifyResetSelection Action = "notify_reset_selection"
)

// WSRequest websocket Request
type WSRequest struct {
	Action         string   `json:"action"`
	ConversationID string   `json:"conversation_id"`
	MessageIDs     []string `json:"message_ids"`
	DeletionType   string   `json:"deletion_type"`
}

// WSResponse websocket Response
type WSResponse struct {
	Action  string                 `json:"action"`
	Success bool                   `json:"success"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	Error   string                 `json:"error,omitempty"`
}
