package app

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"unsend_service/internal/deletion/domain"
	"unsend_service/internal/deletion/repository"
	errprocess "unsend_service/pkg/err"
	"unsend_service/pkg/logger"
	"unsend_service/pkg/middlewares"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

const pingInterval = 10 * time.Minute

// wsConn 同一連線的寫入需要互斥 (訂閱推播與回應同時寫)
type wsConn struct {
	*websocket.Conn
	mu sync.Mutex
}

func (c *wsConn) writeText(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.WriteMessage(websocket.TextMessage, b)
}

func (c *wsConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.WriteMessage(websocket.PingMessage, []byte("ping"))
}

// DeletionWebsocketHandler 推播通知並接受刪除請求
type DeletionWebsocketHandler struct {
	deletionUC *DeletionUseCase
	pubsub     repository.PubSub
}

// NewDeletionWebsocketHandler create DeletionWebsocketHandler
func NewDeletionWebsocketHandler(deletionUC *DeletionUseCase, pubsub repository.PubSub) *DeletionWebsocketHandler {
	return &DeletionWebsocketHandler{
		deletionUC: deletionUC,
		pubsub:     pubsub,
	}
}

// HandleConnection 是 WebSocket 連線的進入點
func (h *DeletionWebsocketHandler) HandleConnection(ctx context.Context, raw *websocket.Conn) {
	conn := &wsConn{Conn: raw}
	accountID, _ := conn.Locals(middlewares.TokenAccountID).(string)
	deviceID, _ := conn.Locals(middlewares.TokenDeviceID).(string)
	identity := domain.Identity{AccountID: accountID, DeviceID: deviceID}
	logger.Log.Info("websocket connected", zap.String("account", domain.Shorten(accountID)), zap.String("device", deviceID))

	ticker := time.NewTicker(pingInterval)
	ctxClose, cancel := context.WithCancel(ctx)

	defer func() {
		ticker.Stop()
		logger.Log.Info("websocket close", zap.String("account", domain.Shorten(accountID)))
		conn.Close()
		cancel()
	}()

	//fiber 會自動回 pong, 另外接出來記錄
	conn.SetPongHandler(func(appData string) error {
		logger.Log.Debug("received pong", zap.String("data", appData))
		return nil
	})

	//訂閱自己的通知
	if err := h.pubsub.Subscribe(ctxClose, repository.NotifyChannel(accountID), func(resp domain.WSResponse) {
		h.sendResponse(conn, resp)
	}); err != nil {
		logger.Log.Error("subscribe notifications", zap.Error(err))
		return
	}

	// 定期發送 Ping
	go func() {
		for {
			select {
			case <-ticker.C:
				if err := conn.ping(); err != nil {
					logger.Log.Error("ping error", zap.Error(err))
					return
				}
			case <-ctxClose.Done():
				return
			}
		}
	}()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Log.Info("connection closed", zap.Error(err))
			} else {
				//直接斷線 1006
				logger.Log.Error("websocket read error", zap.Error(err))
			}
			return
		}
		if mt != websocket.TextMessage {
			h.sendError(conn, "unknown message types")
			continue
		}
		h.sendResponse(conn, h.textMessageAction(ctxClose, identity, message))
	}
}

func (h *DeletionWebsocketHandler) textMessageAction(ctx context.Context, identity domain.Identity, msg []byte) domain.WSResponse {
	var req domain.WSRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		return domain.WSResponse{Action: "error", Error: "invalid json"}
	}

	resp := domain.WSResponse{Action: req.Action, Payload: map[string]interface{}{}}
	switch domain.Action(req.Action) {
	case domain.GetEligibility:
		elig, convo, _, err := h.deletionUC.Eligibility(ctx, identity, req.ConversationID, req.MessageIDs)
		if err != nil {
			resp.Error = wsError(err)
			break
		}
		resp.Success = true
		resp.Payload["dialog"] = NewDeletionDialog(convo, len(req.MessageIDs), elig)

	case domain.DeleteMessages:
		t, err := domain.ParseDeletionType(req.DeletionType)
		if err != nil {
			resp.Error = err.Error()
			break
		}
		res, err := h.deletionUC.DeleteSelected(ctx, identity, req.ConversationID, req.MessageIDs, ChosenType(t))
		if err != nil {
			resp.Error = "deletion not allowed for this selection"
			break
		}
		resp.Success = res.Status != domain.StatusFailed
		resp.Payload["result"] = res

	case domain.ClearMessages:
		res, err := h.deletionUC.ClearAllMessages(ctx, identity, req.ConversationID)
		if err != nil {
			resp.Error = wsError(err)
			break
		}
		resp.Success = res.Status != domain.StatusFailed
		resp.Payload["result"] = res

	default:
		resp.Error = "unknown action"
	}

	if resp.Error != "" {
		logger.Log.Error("websocket err",
			zap.String("account", domain.Shorten(identity.AccountID)),
			zap.String("action", req.Action),
			zap.String("err", resp.Error),
		)
	}
	return resp
}

func wsError(err error) string {
	if errors.Is(err, errprocess.ErrNotFound) {
		return "conversation not found"
	}
	return ToastErrorGeneric
}

// sendResponse - 發送 JSON 給前端
func (h *DeletionWebsocketHandler) sendResponse(conn *wsConn, resp domain.WSResponse) {
	b, _ := json.Marshal(resp)
	if err := conn.writeText(b); err != nil {
		logger.Log.Error("write message error", zap.Error(err))
	}
}

func (h *DeletionWebsocketHandler) sendError(conn *wsConn, errorMsg string) {
	h.sendResponse(conn, domain.WSResponse{
		Action:  "error",
		Success: false,
		Payload: map[string]interface{}{
			"error": errorMsg,
		},
	})
}
