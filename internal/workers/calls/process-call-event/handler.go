// internal/workers/calls/process-call-event/handler.go
package processcallevent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "call-intake-workers/internal/common/errors"
	"call-intake-workers/internal/common/logger"
	"call-intake-workers/internal/common/metrics"
	"call-intake-workers/internal/common/observability"
	"call-intake-workers/internal/common/validation"
	"call-intake-workers/internal/models"
	"call-intake-workers/internal/reconciler"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "process-call-event"
)

// Processor reconciles one decoded call event.
type Processor interface {
	Process(ctx context.Context, event *models.CallEvent) (*reconciler.Result, error)
}

type Handler struct {
	config       *Config
	processor    Processor
	errorHandler *apperrors.ErrorHandler
	obs          *observability.Observability
	logger       logger.Logger
}

func NewHandler(cfg *Config, p Processor, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       cfg,
		processor:    p,
		errorHandler: apperrors.NewErrorHandler(log),
		obs:          obs,
		logger:       log,
	}
}

// Handle is the Zeebe job entry point. The job is always completed, failed or thrown.
func (h *Handler) Handle(client worker.JobClient, job entities.Job) error {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input map[string]interface{}
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		stdErr := apperrors.NewValidationError(fmt.Sprintf("parse job variables: %v", err))
		h.recordFailure(ctx, "zeebe", stdErr, start)
		h.errorHandler.HandleJobError(ctx, client, job, stdErr)
		return stdErr
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		stdErr := apperrors.AsStandard(err)
		h.recordFailure(ctx, "zeebe", stdErr, start)
		h.errorHandler.HandleJobError(ctx, client, job, stdErr)
		return stdErr
	}

	if err := h.completeJob(ctx, client, job, output); err != nil {
		return err
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.obs.RecordEvent(ctx, "zeebe", "success", time.Since(start))
	return nil
}

// Execute validates a raw payload and reconciles it. Errors are *errors.StandardError.
func (h *Handler) Execute(ctx context.Context, input map[string]interface{}) (*Output, error) {
	result, err := validation.ValidateCallEvent(input)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if !result.Valid {
		return nil, apperrors.NewValidationError(strings.Join(result.GetErrorMessages(), "; ")).
			WithMetadata("fields", result.GetErrorMessages())
	}

	event, err := decodeEvent(input)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	res, err := h.processor.Process(ctx, event)
	if err != nil {
		return nil, err
	}
	return toOutput(res), nil
}

// ServeHTTP accepts one call event as a JSON body and answers with the per-event result.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{ErrorCode: "METHOD_NOT_ALLOWED", Message: "use POST"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.config.Timeout)
	defer cancel()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.config.MaxBodyBytes))
	if err != nil {
		h.writeError(ctx, w, apperrors.NewValidationError(fmt.Sprintf("read body: %v", err)), start)
		return
	}
	var input map[string]interface{}
	if err := json.Unmarshal(body, &input); err != nil {
		h.writeError(ctx, w, apperrors.NewValidationError(fmt.Sprintf("parse body: %v", err)), start)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.writeError(ctx, w, apperrors.AsStandard(err), start)
		return
	}
	h.obs.RecordEvent(ctx, "http", "success", time.Since(start))
	writeJSON(w, http.StatusOK, output)
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, stdErr *apperrors.StandardError, start time.Time) {
	h.recordFailure(ctx, "http", stdErr, start)
	resp := ErrorResponse{
		ErrorCode: string(stdErr.Code),
		Message:   stdErr.Message,
		Retryable: stdErr.Retryable,
	}
	if stdErr.Details != "" {
		resp.Details = []string{stdErr.Details}
	}
	if fields, ok := stdErr.Metadata["fields"].([]string); ok {
		resp.Details = fields
	}
	writeJSON(w, HTTPStatus(stdErr), resp)
}

func (h *Handler) recordFailure(ctx context.Context, transport string, stdErr *apperrors.StandardError, start time.Time) {
	if transport == "zeebe" {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
		metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	}
	h.obs.RecordEvent(ctx, transport, "error", time.Since(start))
}

// HTTPStatus maps error codes to webhook responses. Retryable failures answer 503 so
// senders redeliver.
func HTTPStatus(stdErr *apperrors.StandardError) int {
	switch stdErr.Code {
	case apperrors.ErrCodeValidationFailed, apperrors.ErrCodeUnknownEvent:
		return http.StatusBadRequest
	case apperrors.ErrCodeBusinessNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeBusinessMismatch:
		return http.StatusConflict
	}
	if stdErr.Retryable {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey": job.Key,
		"callId": output.CallID,
		"action": output.Action,
	})
	return nil
}

func decodeEvent(input map[string]interface{}) (*models.CallEvent, error) {
	raw, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	var event models.CallEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("field %s: expected %s", typeErr.Field, typeErr.Type)
		}
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &event, nil
}

func toOutput(res *reconciler.Result) *Output {
	return &Output{
		Success:            res.Success,
		CallID:             res.CallID,
		BusinessID:         res.BusinessID,
		EventKind:          res.EventKind,
		Action:             res.Action,
		Status:             string(res.Status),
		NotificationStatus: string(res.NotificationStatus),
		Confidence:         res.Confidence,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
