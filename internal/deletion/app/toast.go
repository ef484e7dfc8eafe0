package app

import (
	"fmt"

	"unsend_service/internal/deletion/domain"
)

// toast ids and localized strings pushed to the client
const (
	ToastDeleted       = "deleted"
	ToastDeletionError = "deletionError"
	ToastErrorGeneric  = "errorGeneric"

	errorGenericText = "An error occurred. Please try again later."
)

// deleteMessageDeleted 依數量回傳 "Message deleted" 或 "N messages deleted"
func deleteMessageDeleted(count int) string {
	if count == 1 {
		return "Message deleted"
	}
	return fmt.Sprintf("%d messages deleted", count)
}

// deleteMessageFailed partial failure warning
func deleteMessageFailed(count int) string {
	if count == 1 {
		return "Failed to delete message"
	}
	return fmt.Sprintf("Failed to delete %d messages", count)
}

// deleteMessageTitle dialog title
func deleteMessageTitle(count int) string {
	if count == 1 {
		return "Delete Message"
	}
	return "Delete Messages"
}

// deleteMessageDescriptionDevice note to self dialog body
func deleteMessageDescriptionDevice(count int) string {
	if count == 1 {
		return "Are you sure you want to delete this message?"
	}
	return "Are you sure you want to delete these messages?"
}

var deletionLabels = map[domain.DeletionType]string{
	domain.DeleteDeviceOnly:   "Delete on this device only",
	domain.DeleteAllMyDevices: "Delete on all my devices",
	domain.DeleteEveryone:     "Delete for everyone",
}
