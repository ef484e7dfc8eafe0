package handlers

import (
	"context"
	"strings"

	"unsend_service/internal/deletion/app"
	"unsend_service/internal/deletion/domain"
	"unsend_service/pkg"
	errprocess "unsend_service/pkg/err"
	"unsend_service/pkg/logger"
	"unsend_service/pkg/middlewares"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// DeletionService 由 app.DeletionUseCase 實作
type DeletionService interface {
	Eligibility(ctx context.Context, identity domain.Identity, conversationID string, messageIDs []string) (*domain.Eligibility, *domain.Conversation, []domain.Message, error)
	DeleteSelected(ctx context.Context, identity domain.Identity, conversationID string, messageIDs []string, confirm app.Confirmer) (domain.DeletionResult, error)
	ClearAllMessages(ctx context.Context, identity domain.Identity, conversationID string) (domain.DeletionResult, error)
}

// DeleteMessagesReq body of the delete route
type DeleteMessagesReq struct {
	MessageIDs   []string `json:"message_ids"`
	DeletionType string   `json:"deletion_type" example:"deleteMessageEveryone"`
}

// DeletionHandler REST 刪除訊息
type DeletionHandler struct {
	Service DeletionService
	// Owner 服務代表的帳號, 空字串表示不限制
	Owner string
}

// NewDeletionHandler create DeletionHandler
func NewDeletionHandler(service DeletionService, owner string) *DeletionHandler {
	return &DeletionHandler{Service: service, Owner: owner}
}

func (h *DeletionHandler) identity(c *fiber.Ctx) (domain.Identity, error) {
	account, device, ok := middlewares.AccountFromCtx(c)
	if !ok {
		return domain.Identity{}, fiber.NewError(fiber.StatusUnauthorized, "missing account")
	}
	if h.Owner != "" && !domain.SameKey(account, h.Owner) {
		return domain.Identity{}, fiber.NewError(fiber.StatusForbidden, "account is not served here")
	}
	return domain.Identity{AccountID: account, DeviceID: device}, nil
}

// GetEligibility 選取訊息可用的刪除方式
// @Summary Deletion options for a selection
// @Description Computes which deletion types are allowed for the selected messages
// @Tags Deletion
// @Produce json
// @Param conversationId path string true "Conversation id"
// @Param ids query string true "Comma separated message ids"
// @Success 200 {object} app.DeletionDialog
// @Failure 400 {object} string "missing ids"
// @Failure 404 {object} string "conversation not found"
// @Router /api/conversations/{conversationId}/deletion [get]
func (h *DeletionHandler) GetEligibility(c *fiber.Ctx) error {
	identity, err := h.identity(c)
	if err != nil {
		return err
	}
	conversationID := c.Params("conversationId")
	ids := pkg.Uniq(pkg.CompactStrings(strings.Split(c.Query("ids"), ",")))
	if len(ids) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "ids is required"})
	}

	elig, convo, _, err := h.Service.Eligibility(c.UserContext(), identity, conversationID, ids)
	if err != nil {
		if errors.Is(err, errprocess.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "conversation not found"})
		}
		logger.Log.Error("get eligibility", zap.String("conversation", conversationID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": errorGeneric})
	}
	return c.JSON(app.NewDeletionDialog(convo, len(ids), elig))
}

// DeleteMessages 執行刪除
// @Summary Delete selected messages
// @Description Runs the chosen deletion type, the outcome is also pushed on the websocket
// @Tags Deletion
// @Accept json
// @Produce json
// @Param conversationId path string true "Conversation id"
// @Param request body DeleteMessagesReq true "Selection and deletion type"
// @Success 200 {object} domain.DeletionResult
// @Failure 400 {object} string "invalid request"
// @Failure 502 {object} domain.DeletionResult "remote deletion failed"
// @Router /api/conversations/{conversationId}/messages/delete [post]
func (h *DeletionHandler) DeleteMessages(c *fiber.Ctx) error {
	identity, err := h.identity(c)
	if err != nil {
		return err
	}
	conversationID := c.Params("conversationId")

	var req DeleteMessagesReq
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	t, err := domain.ParseDeletionType(req.DeletionType)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	res, err := h.Service.DeleteSelected(c.UserContext(), identity, conversationID, req.MessageIDs, app.ChosenType(t))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "deletion not allowed for this selection"})
	}
	return c.Status(resultStatus(res)).JSON(res)
}

// ClearMessages 清空對話 (僅本機)
// @Summary Clear every message of a conversation on this device
// @Tags Deletion
// @Produce json
// @Param conversationId path string true "Conversation id"
// @Success 200 {object} domain.DeletionResult
// @Failure 404 {object} string "conversation not found"
// @Router /api/conversations/{conversationId}/messages/clear [post]
func (h *DeletionHandler) ClearMessages(c *fiber.Ctx) error {
	identity, err := h.identity(c)
	if err != nil {
		return err
	}
	conversationID := c.Params("conversationId")

	res, err := h.Service.ClearAllMessages(c.UserContext(), identity, conversationID)
	if err != nil {
		if errors.Is(err, errprocess.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "conversation not found"})
		}
		logger.Log.Error("clear messages", zap.String("conversation", conversationID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": errorGeneric})
	}
	return c.Status(resultStatus(res)).JSON(res)
}

const errorGeneric = "errorGeneric"

func resultStatus(res domain.DeletionResult) int {
	if res.Status == domain.StatusFailed {
		return fiber.StatusBadGateway
	}
	return fiber.StatusOK
}
