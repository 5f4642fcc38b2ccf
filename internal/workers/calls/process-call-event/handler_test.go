package processcallevent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "call-intake-workers/internal/common/errors"
	"call-intake-workers/internal/common/logger"
	"call-intake-workers/internal/models"
	"call-intake-workers/internal/reconciler"
	"call-intake-workers/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockProcessor struct {
	ProcessFunc func(ctx context.Context, event *models.CallEvent) (*reconciler.Result, error)
}

func (m *MockProcessor) Process(ctx context.Context, event *models.CallEvent) (*reconciler.Result, error) {
	return m.ProcessFunc(ctx, event)
}

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second, MaxBodyBytes: 1 << 16}
}

func createTestInput() map[string]interface{} {
	return map[string]interface{}{
		"call_id":       "call-001",
		"to_number":     "+15551234567",
		"from_number":   "555-987-6543",
		"event_type":    "call_analyzed",
		"transcript":    "Hi, this is John Smith. I need help with a leaking pipe.",
		"call_duration": 125.0,
	}
}

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name           string
		input          map[string]interface{}
		processor      *MockProcessor
		expectError    bool
		errorCode      apperrors.ErrorCode
		validateOutput func(t *testing.T, output *Output)
	}{
		{
			name:  "success",
			input: createTestInput(),
			processor: &MockProcessor{ProcessFunc: func(ctx context.Context, event *models.CallEvent) (*reconciler.Result, error) {
				assert.Equal(t, "call-001", event.CallID)
				assert.Equal(t, "call_analyzed", event.EventType)
				require.NotNil(t, event.CallDuration)
				assert.InDelta(t, 125.0, *event.CallDuration, 1e-9)
				return &reconciler.Result{
					Success:            true,
					CallID:             event.CallID,
					BusinessID:         "biz-1",
					EventKind:          "call_analyzed",
					Action:             reconciler.ActionCreated,
					Status:             models.CallStatusCompleted,
					NotificationStatus: models.NotificationSent,
					Confidence:         models.Ptr(0.5),
				}, nil
			}},
			validateOutput: func(t *testing.T, output *Output) {
				assert.True(t, output.Success)
				assert.Equal(t, "biz-1", output.BusinessID)
				assert.Equal(t, "created", output.Action)
				assert.Equal(t, "completed", output.Status)
				assert.Equal(t, "sent", output.NotificationStatus)
				assert.InDelta(t, 0.5, *output.Confidence, 1e-9)
			},
		},
		{
			name:        "schema violation never reaches the processor",
			input:       map[string]interface{}{"event_type": "call_started"},
			processor:   &MockProcessor{ProcessFunc: nil},
			expectError: true,
			errorCode:   apperrors.ErrCodeValidationFailed,
		},
		{
			name: "processor error is passed through",
			input: map[string]interface{}{
				"call_id":     "call-002",
				"to_number":   "5550000000",
				"call_status": "completed",
			},
			processor: &MockProcessor{ProcessFunc: func(ctx context.Context, event *models.CallEvent) (*reconciler.Result, error) {
				return &reconciler.Result{CallID: event.CallID}, apperrors.NewBusinessNotFoundError("+15550000000")
			}},
			expectError: true,
			errorCode:   apperrors.ErrCodeBusinessNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHandler(createTestConfig(), tt.processor, nil, logger.NewTestLogger(t))
			output, err := handler.Execute(context.Background(), tt.input)

			if tt.expectError {
				require.Error(t, err)
				assert.Equal(t, tt.errorCode, apperrors.AsStandard(err).Code)
				assert.Nil(t, output)
				return
			}
			require.NoError(t, err)
			tt.validateOutput(t, output)
		})
	}
}

func newIntegrationHandler(t *testing.T) *Handler {
	mem := store.NewMemoryStore()
	mem.PutBusiness(models.Business{ID: "biz-1", Name: "Acme Plumbing", PhoneNumber: "+15551234567", IsActive: true})
	log := logger.NewTestLogger(t)
	rec := reconciler.New(reconciler.Config{CostPerMinute: 0.10}, mem, nil, nil, nil, nil, log)
	return NewHandler(createTestConfig(), rec, nil, log)
}

func post(t *testing.T, h http.Handler, body []byte) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/call-events", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return rr, resp
}

func TestHandler_ServeHTTP(t *testing.T) {
	h := newIntegrationHandler(t)

	body, err := json.Marshal(createTestInput())
	require.NoError(t, err)
	rr, resp := post(t, h, body)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "created", resp["action"])
	assert.Equal(t, "completed", resp["status"])

	// redelivery of the same event updates in place
	rr, resp = post(t, h, body)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "updated", resp["action"])
}

func TestHandler_ServeHTTPErrors(t *testing.T) {
	h := newIntegrationHandler(t)

	tests := []struct {
		name         string
		body         string
		expectedCode int
		errorCode    string
	}{
		{name: "malformed json", body: `{"call_id":`, expectedCode: http.StatusBadRequest, errorCode: "VALIDATION_FAILED"},
		{name: "missing to_number", body: `{"call_id":"c1","event_type":"call_started"}`, expectedCode: http.StatusBadRequest, errorCode: "VALIDATION_FAILED"},
		{name: "unknown event type", body: `{"call_id":"c1","to_number":"5551234567","event_type":"call_paused"}`, expectedCode: http.StatusBadRequest, errorCode: "VALIDATION_FAILED"},
		{name: "no event shape", body: `{"call_id":"c1","to_number":"5551234567"}`, expectedCode: http.StatusBadRequest, errorCode: "UNKNOWN_EVENT"},
		{name: "unknown business", body: `{"call_id":"c1","to_number":"5550000000","event_type":"call_started"}`, expectedCode: http.StatusNotFound, errorCode: "BUSINESS_NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, resp := post(t, h, []byte(tt.body))
			assert.Equal(t, tt.expectedCode, rr.Code)
			assert.Equal(t, false, resp["success"])
			assert.Equal(t, tt.errorCode, resp["errorCode"])
		})
	}
}

func TestHandler_ServeHTTPMethodNotAllowed(t *testing.T) {
	h := newIntegrationHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/webhooks/call-events", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, http.MethodPost, rr.Header().Get("Allow"))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusConflict, HTTPStatus(apperrors.NewBusinessMismatchError("c", "a", "b")))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(apperrors.NewStoreError("upsert_call", errors.New("down"))))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(apperrors.NewLockTimeoutError("c", errors.New("wait"))))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(apperrors.NewInternalError(errors.New("boom"))))
}
