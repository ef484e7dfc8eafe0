package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"unsend_service/internal/deletion/app"
	"unsend_service/internal/deletion/domain"
	errprocess "unsend_service/pkg/err"
	"unsend_service/pkg/logger"
	"unsend_service/pkg/middlewares"
	"unsend_service/pkg/token"

	cerrors "github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	us   = "05" + strings.Repeat("a", 64)
	peer = "05" + strings.Repeat("b", 64)
)

func init() {
	logger.SetNewNop()
	token.SetSecret("handler-test-secret")
}

// MockDeletionService Mock DeletionService
type MockDeletionService struct {
	mock.Mock
}

func (m *MockDeletionService) Eligibility(ctx context.Context, identity domain.Identity, conversationID string, messageIDs []string) (*domain.Eligibility, *domain.Conversation, []domain.Message, error) {
	args := m.Called(ctx, identity, conversationID, messageIDs)
	if args.Get(0) == nil {
		return nil, nil, nil, args.Error(3)
	}
	return args.Get(0).(*domain.Eligibility), args.Get(1).(*domain.Conversation), nil, args.Error(3)
}

func (m *MockDeletionService) DeleteSelected(ctx context.Context, identity domain.Identity, conversationID string, messageIDs []string, confirm app.Confirmer) (domain.DeletionResult, error) {
	// 由 confirmer 取出選擇的刪除方式
	choice, _ := confirm.Confirm(ctx, app.DeletionDialog{})
	args := m.Called(ctx, identity, conversationID, messageIDs, choice)
	return args.Get(0).(domain.DeletionResult), args.Error(1)
}

func (m *MockDeletionService) ClearAllMessages(ctx context.Context, identity domain.Identity, conversationID string) (domain.DeletionResult, error) {
	args := m.Called(ctx, identity, conversationID)
	return args.Get(0).(domain.DeletionResult), args.Error(1)
}

func newTestApp(svc DeletionService, owner string) *fiber.App {
	r := fiber.New()
	h := NewDeletionHandler(svc, owner)
	api := r.Group("/api", middlewares.JWTMiddleware())
	api.Get("/conversations/:conversationId/deletion", h.GetEligibility)
	api.Post("/conversations/:conversationId/messages/delete", h.DeleteMessages)
	api.Post("/conversations/:conversationId/messages/clear", h.ClearMessages)
	return r
}

func authQuery(t *testing.T, account string) string {
	tok, err := token.GenerateJWT(account, "desktop", "test")
	require.NoError(t, err)
	return "auth=" + tok
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, v), string(body))
}

var me = domain.Identity{AccountID: us, DeviceID: "desktop"}

func TestGetEligibility(t *testing.T) {
	svc := new(MockDeletionService)
	r := newTestApp(svc, us)

	convo := domain.NewConversation(domain.ConversationRecord{ID: peer}, me)
	elig := &domain.Eligibility{CanDeleteDeviceOnly: true, CanDeleteForEveryone: true}
	svc.On("Eligibility", mock.Anything, me, peer, []string{"m1", "m2"}).Return(elig, convo, nil, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/conversations/"+peer+"/deletion?ids=m1,m2,m1,&"+authQuery(t, us), nil)
	resp, err := r.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var dialog app.DeletionDialog
	decode(t, resp, &dialog)
	assert.Equal(t, peer, dialog.ConversationID)
	assert.Equal(t, 2, dialog.Count)
	assert.Equal(t, "Delete Messages", dialog.Title)
	assert.True(t, dialog.Eligibility.CanDeleteForEveryone)
	svc.AssertExpectations(t)
}

func TestGetEligibility_Errors(t *testing.T) {
	svc := new(MockDeletionService)
	r := newTestApp(svc, us)
	auth := authQuery(t, us)

	svc.On("Eligibility", mock.Anything, me, "missing", []string{"m1"}).
		Return(nil, nil, nil, cerrors.Wrap(errprocess.ErrNotFound, "conversation missing")).Once()
	svc.On("Eligibility", mock.Anything, me, "broken", []string{"m1"}).
		Return(nil, nil, nil, errors.New("pg down")).Once()

	cases := []struct {
		path string
		want int
	}{
		{"/api/conversations/" + peer + "/deletion?" + auth, http.StatusBadRequest},
		{"/api/conversations/missing/deletion?ids=m1&" + auth, http.StatusNotFound},
		{"/api/conversations/broken/deletion?ids=m1&" + auth, http.StatusInternalServerError},
		{"/api/conversations/" + peer + "/deletion?ids=m1", http.StatusUnauthorized},
		{"/api/conversations/" + peer + "/deletion?ids=m1&" + authQuery(t, peer), http.StatusForbidden},
	}
	for _, c := range cases {
		resp, err := r.Test(httptest.NewRequest(http.MethodGet, c.path, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, c.want, resp.StatusCode, c.path)
	}
	svc.AssertExpectations(t)
}

func deleteRequest(t *testing.T, conversationID, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/conversations/"+conversationID+"/messages/delete?"+authQuery(t, us), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestDeleteMessages(t *testing.T) {
	svc := new(MockDeletionService)
	r := newTestApp(svc, "")

	svc.On("DeleteSelected", mock.Anything, me, peer, []string{"m1"}, domain.DeleteEveryone).Return(domain.Succeeded(1), nil).Once()

	resp, err := r.Test(deleteRequest(t, peer, `{"message_ids":["m1"],"deletion_type":"deleteMessageEveryone"}`), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var res domain.DeletionResult
	decode(t, resp, &res)
	assert.Equal(t, domain.Succeeded(1), res)
	svc.AssertExpectations(t)
}

func TestDeleteMessages_Failures(t *testing.T) {
	svc := new(MockDeletionService)
	r := newTestApp(svc, "")

	svc.On("DeleteSelected", mock.Anything, me, "failing", []string{"m1"}, domain.DeleteEveryone).Return(domain.Failed("swarm"), nil).Once()
	svc.On("DeleteSelected", mock.Anything, me, "invalid", []string{"m1"}, domain.DeleteAllMyDevices).
		Return(domain.DeletionResult{}, errprocess.Invariant("not note to self")).Once()

	cases := []struct {
		conversation string
		body         string
		want         int
	}{
		{"failing", `{"message_ids":["m1"],"deletion_type":"deleteMessageEveryone"}`, http.StatusBadGateway},
		{"invalid", `{"message_ids":["m1"],"deletion_type":"deleteMessageDevicesAll"}`, http.StatusBadRequest},
		{peer, `{"message_ids":["m1"],"deletion_type":"deleteEverything"}`, http.StatusBadRequest},
		{peer, `{"message_ids":`, http.StatusBadRequest},
	}
	for _, c := range cases {
		resp, err := r.Test(deleteRequest(t, c.conversation, c.body), -1)
		require.NoError(t, err)
		assert.Equal(t, c.want, resp.StatusCode, c.body)
	}
	svc.AssertExpectations(t)
}

func TestClearMessages(t *testing.T) {
	svc := new(MockDeletionService)
	r := newTestApp(svc, us)
	auth := authQuery(t, us)

	svc.On("ClearAllMessages", mock.Anything, me, peer).Return(domain.Succeeded(3), nil).Once()
	svc.On("ClearAllMessages", mock.Anything, me, "missing").Return(domain.DeletionResult{}, cerrors.Wrap(errprocess.ErrNotFound, "missing")).Once()

	resp, err := r.Test(httptest.NewRequest(http.MethodPost, "/api/conversations/"+peer+"/messages/clear?"+auth, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = r.Test(httptest.NewRequest(http.MethodPost, "/api/conversations/missing/messages/clear?"+auth, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	svc.AssertExpectations(t)
}

func TestConnectCheckAndDebugFlag(t *testing.T) {
	r := fiber.New()
	r.Get("/", ConnectCheck)
	r.Post("/debug", DebugLogFlag)

	resp, err := r.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "deletion service start!", string(body))

	resp, err = r.Test(httptest.NewRequest(http.MethodPost, "/debug?status=maybe", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = r.Test(httptest.NewRequest(http.MethodPost, "/debug?status=false", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
