package app

import (
	"context"

	"unsend_service/internal/deletion/domain"
	"unsend_service/pkg"
	errprocess "unsend_service/pkg/err"
	"unsend_service/pkg/logger"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// DeletionDialog 確認對話框的內容
type DeletionDialog struct {
	ConversationID string              `json:"conversation_id"`
	Title          string              `json:"title"`
	Description    string              `json:"description,omitempty"`
	Count          int                 `json:"count"`
	Eligibility    *domain.Eligibility `json:"eligibility"`
}

// NewDeletionDialog dialog for count selected messages
func NewDeletionDialog(convo *domain.Conversation, count int, elig *domain.Eligibility) DeletionDialog {
	dialog := DeletionDialog{
		ConversationID: convo.ID,
		Title:          deleteMessageTitle(count),
		Count:          count,
		Eligibility:    elig,
	}
	// note to self 沒有選項, 只顯示說明
	if convo.Kind == domain.KindSelf {
		dialog.Description = deleteMessageDescriptionDevice(count)
	}
	return dialog
}

// Confirmer shows the dialog, ok is false when the user dismissed it
type Confirmer interface {
	Confirm(ctx context.Context, dialog DeletionDialog) (choice domain.DeletionType, ok bool)
}

// ConfirmFunc adapter to use a plain function as Confirmer
type ConfirmFunc func(ctx context.Context, dialog DeletionDialog) (domain.DeletionType, bool)

// Confirm calls f
func (f ConfirmFunc) Confirm(ctx context.Context, dialog DeletionDialog) (domain.DeletionType, bool) {
	return f(ctx, dialog)
}

// ChosenType answers every dialog with a type picked beforehand (REST / websocket requests)
func ChosenType(t domain.DeletionType) Confirmer {
	return ConfirmFunc(func(context.Context, DeletionDialog) (domain.DeletionType, bool) {
		return t, true
	})
}

// DeleteCallback delete the given message ids, failures are reported through the Notifier
type DeleteCallback func(ctx context.Context, messageIDs ...string) error

// DeleteMessagesCb nil when there is no conversation to delete from
func (uc *DeletionUseCase) DeleteMessagesCb(identity domain.Identity, conversationID string, confirm Confirmer) DeleteCallback {
	if conversationID == "" {
		return nil
	}
	return func(ctx context.Context, messageIDs ...string) error {
		_, err := uc.DeleteSelected(ctx, identity, conversationID, messageIDs, confirm)
		return err
	}
}

// DeleteSelected eligibility, dialog, execution and selection reset for one request.
// Only invariant errors are returned, everything else ends as a notification.
func (uc *DeletionUseCase) DeleteSelected(
	ctx context.Context,
	identity domain.Identity,
	conversationID string,
	messageIDs []string,
	confirm Confirmer,
) (domain.DeletionResult, error) {
	ids := pkg.Uniq(pkg.CompactStrings(messageIDs))
	if len(ids) == 0 {
		return domain.Noop("no message selected"), nil
	}

	elig, convo, msgs, err := uc.Eligibility(ctx, identity, conversationID, ids)
	if err != nil {
		if errors.Is(err, errprocess.ErrNotFound) {
			logger.Log.Info("conversation not found, nothing to delete", zap.String("conversation", conversationID))
			return domain.Noop("conversation not found"), nil
		}
		logger.Log.Error("load deletion eligibility", zap.String("conversation", conversationID), zap.Error(err))
		uc.notifier.PushGenericError(ctx, identity.AccountID)
		return domain.Failed(err.Error()), nil
	}

	choice, ok := confirm.Confirm(ctx, NewDeletionDialog(convo, len(ids), elig))
	if !ok {
		return domain.Noop("dialog closed"), nil
	}
	if _, err := domain.ParseDeletionType(string(choice)); err != nil {
		return domain.DeletionResult{}, errprocess.Invariant("doDeleteSelectedMessages: invalid choice %q", choice)
	}
	if convo.Kind != domain.KindLegacyGroup && !elig.Allows(choice) {
		return domain.DeletionResult{}, errprocess.Invariant("deletion type %s is not allowed for this selection", choice)
	}

	res, err := uc.DoDeleteSelectedMessages(ctx, identity, convo, msgs, choice)
	if err != nil {
		return domain.DeletionResult{}, err
	}
	if res.Status != domain.StatusNoop {
		uc.notifier.ResetSelection(ctx, identity.AccountID, conversationID)
	}
	return res, nil
}
