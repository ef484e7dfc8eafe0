package domain

import "fmt"

// DeletionType user choice in the delete dialog
type DeletionType string

const (
	// DeleteDeviceOnly only this device
	DeleteDeviceOnly DeletionType = "deleteMessageDeviceOnly"
	// DeleteAllMyDevices every device of our account (note to self only)
	DeleteAllMyDevices DeletionType = "deleteMessageDevicesAll"
	// DeleteEveryone every participant
	DeleteEveryone DeletionType = "deleteMessageEveryone"
)

// ParseDeletionType reject unknown values
func ParseDeletionType(s string) (DeletionType, error) {
	switch t := DeletionType(s); t {
	case DeleteDeviceOnly, DeleteAllMyDevices, DeleteEveryone:
		return t, nil
	default:
		return "", fmt.Errorf("unknown deletion type %q", s)
	}
}

// DeletionMode how a message disappears locally
type DeletionMode string

const (
	// ModeComplete remove the row
	ModeComplete DeletionMode = "complete"
	// ModeMarkDeleted keep a tombstone
	ModeMarkDeleted DeletionMode = "markDeleted"
)

// Identity who we are, injected instead of read from globals
type Identity struct {
	AccountID string
	DeviceID  string
}

// DeletionOption one radio entry of the dialog
type DeletionOption struct {
	Type     DeletionType `json:"type"`
	Label    string       `json:"label"`
	Disabled bool         `json:"disabled"`
}

// Eligibility what the selection allows
type Eligibility struct {
	AnyAreDeleted               bool `json:"any_are_deleted"`
	AnyAreControlMessages       bool `json:"any_are_control_messages"`
	CanDeleteForEveryoneAsSelf  bool `json:"can_delete_for_everyone_as_self"`
	CanDeleteForEveryoneAsAdmin bool `json:"can_delete_for_everyone_as_admin"`
	CanDeleteForEveryone        bool `json:"can_delete_for_everyone"`
	CanDeleteFromAllDevices     bool `json:"can_delete_from_all_devices"`
	CanDeleteDeviceOnly         bool `json:"can_delete_device_only"`

	Default *DeletionType    `json:"default,omitempty"`
	Options []DeletionOption `json:"options"`
}

// Allows report whether a type may be executed
func (e *Eligibility) Allows(t DeletionType) bool {
	switch t {
	case DeleteDeviceOnly:
		return e.CanDeleteDeviceOnly
	case DeleteAllMyDevices:
		return e.CanDeleteFromAllDevices
	case DeleteEveryone:
		return e.CanDeleteForEveryone
	default:
		return false
	}
}

// ResultStatus outcome of one deletion request
type ResultStatus string

const (
	// StatusSuccess everything requested happened
	StatusSuccess ResultStatus = "success"
	// StatusFailed remote side failed, nothing local changed
	StatusFailed ResultStatus = "failed"
	// StatusNoop nothing to do
	StatusNoop ResultStatus = "noop"
)

// DeletionResult explicit outcome instead of a thrown error
type DeletionResult struct {
	Status  ResultStatus `json:"status"`
	Deleted int          `json:"deleted"`
	Reason  string       `json:"reason,omitempty"`
}

// Succeeded n messages handled
func Succeeded(n int) DeletionResult {
	return DeletionResult{Status: StatusSuccess, Deleted: n}
}

// Failed remote failure with a reason for logs
func Failed(reason string) DeletionResult {
	return DeletionResult{Status: StatusFailed, Reason: reason}
}

// Noop nothing happened
func Noop(reason string) DeletionResult {
	return DeletionResult{Status: StatusNoop, Reason: reason}
}
