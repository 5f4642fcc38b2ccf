// internal/reconciler/reconciler.go
package reconciler

import (
	"context"
	"errors"
	"time"

	apperrors "call-intake-workers/internal/common/errors"
	"call-intake-workers/internal/common/logger"
	"call-intake-workers/internal/common/metrics"
	"call-intake-workers/internal/common/phone"
	"call-intake-workers/internal/extraction"
	"call-intake-workers/internal/lock"
	"call-intake-workers/internal/models"
	"call-intake-workers/internal/notify"
	"call-intake-workers/internal/store"
)

// AnalyticsRecorder receives the outcome of every successfully reconciled event.
type AnalyticsRecorder interface {
	Record(ctx context.Context, businessID string, created bool, outcome *models.NotificationOutcome) error
}

type Config struct {
	CostPerMinute float64
	// NotifyTimeout bounds notification dispatch. It also ages out stale pending claims.
	NotifyTimeout time.Duration
}

// Result is the per-event answer returned to the event sender.
type Result struct {
	Success            bool                      `json:"success"`
	CallID             string                    `json:"call_id"`
	BusinessID         string                    `json:"business_id,omitempty"`
	EventKind          string                    `json:"event_kind"`
	Action             string                    `json:"action,omitempty"`
	Status             models.CallStatus         `json:"status,omitempty"`
	NotificationStatus models.NotificationStatus `json:"notification_status,omitempty"`
	Confidence         *float64                  `json:"confidence,omitempty"`
	Error              *apperrors.StandardError  `json:"error,omitempty"`
}

// Reconciler folds call events into one record per call_id.
type Reconciler struct {
	store     store.RecordStore
	analytics AnalyticsRecorder
	notifier  notify.Notifier
	locker    lock.Locker
	engine    *extraction.Engine
	cfg       Config
	logger    logger.Logger
	now       func() time.Time
}

// New wires a Reconciler. A nil locker falls back to an in-process keyed mutex, a nil
// notifier disables dispatch and a nil analytics recorder disables counters.
func New(cfg Config, s store.RecordStore, a AnalyticsRecorder, n notify.Notifier, l lock.Locker, e *extraction.Engine, log logger.Logger) *Reconciler {
	if l == nil {
		l = lock.NewKeyedMutex(0)
	}
	if e == nil {
		e = extraction.NewEngine(nil)
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = 15 * time.Second
	}
	return &Reconciler{
		store:     s,
		analytics: a,
		notifier:  n,
		locker:    l,
		engine:    e,
		cfg:       cfg,
		logger:    log.WithFields(map[string]interface{}{"component": "reconciler"}),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// committed is what happened under the call lock.
type committed struct {
	record     *models.CallRecord
	created    bool
	action     string
	notify     bool
	extraction *extraction.Result
}

// Process reconciles one event. It returns a non-nil Result in every case; the error
// is a *errors.StandardError whose Retryable flag tells the sender whether to redeliver.
func (r *Reconciler) Process(ctx context.Context, payload *models.CallEvent) (*Result, error) {
	res := &Result{EventKind: "unknown"}
	if payload != nil {
		res.CallID = payload.CallID
	}

	ev, err := Resolve(payload)
	if err != nil {
		return r.fail(res, r.logger, err)
	}
	res.EventKind = ev.Kind.String()
	log := r.logger.WithFields(logger.CallFields(payload.CallID, "", res.EventKind))

	biz, err := r.store.FindBusinessByNormalizedPhone(ctx, phone.Normalize(payload.ToNumber))
	if err != nil {
		if errors.Is(err, store.ErrBusinessNotFound) {
			return r.fail(res, log, apperrors.NewBusinessNotFoundError(phone.Normalize(payload.ToNumber)))
		}
		return r.fail(res, log, apperrors.NewStoreError("find_business", err))
	}
	res.BusinessID = biz.ID
	log = log.WithFields(map[string]interface{}{"businessId": biz.ID})

	c, err := r.commit(ctx, ev, biz, log)
	if err != nil {
		return r.fail(res, log, err)
	}
	res.Action = c.action
	if c.extraction != nil {
		res.Confidence = models.Ptr(c.extraction.Confidence)
		metrics.RecordExtraction(c.extraction.Confidence, c.extraction.Fields())
	}

	var outcome *models.NotificationOutcome
	if c.notify {
		outcome = r.dispatch(ctx, c.record, biz, log)
		c.record.NotificationStatus = outcome.Status
		c.record.NotificationSent = outcome.Status == models.NotificationSent
	}

	if r.analytics != nil {
		if err := r.analytics.Record(ctx, biz.ID, c.created, outcome); err != nil {
			log.Warn("Analytics update failed", map[string]interface{}{"error": err.Error()})
		}
	}

	if c.record != nil {
		res.Status = c.record.Status
		res.NotificationStatus = c.record.NotificationStatus
	}
	res.Success = true
	metrics.CallEvents.WithLabelValues(res.EventKind, res.Action).Inc()
	log.Info("Call event reconciled", map[string]interface{}{
		"action":             res.Action,
		"status":             string(res.Status),
		"notificationStatus": string(res.NotificationStatus),
	})
	return res, nil
}

// commit reads, plans and writes while holding the call lock, including the
// notification claim, so concurrent deliveries for one call_id never interleave.
func (r *Reconciler) commit(ctx context.Context, ev Event, biz *models.Business, log logger.Logger) (*committed, error) {
	callID := ev.Payload.CallID
	unlock, err := r.locker.Lock(ctx, lock.CallKey(callID))
	if err != nil {
		return nil, apperrors.NewLockTimeoutError(callID, err)
	}
	defer unlock()

	existing, err := r.store.GetCallByCallID(ctx, callID)
	if err != nil {
		if !errors.Is(err, store.ErrCallNotFound) {
			return nil, apperrors.NewStoreError("get_call", err)
		}
		existing = nil
	}
	if existing != nil && existing.BusinessID != biz.ID {
		return nil, apperrors.NewBusinessMismatchError(callID, existing.BusinessID, biz.ID)
	}

	p := r.buildPlan(ev, existing, biz)
	if p.update == nil {
		if p.skipAction == ActionIgnoredStale {
			log.Warn("Stale event ignored for terminal call", map[string]interface{}{
				"currentStatus": string(existing.Status),
			})
		}
		return &committed{record: existing, action: p.skipAction}, nil
	}

	if p.statusOnly {
		rec, err := r.store.UpdateCallStatus(ctx, callID, *p.update.Status)
		if err != nil {
			return nil, apperrors.NewStoreError("update_call_status", err)
		}
		return &committed{record: rec, action: ActionUpdated}, nil
	}

	now := r.now()
	notifyNow := p.notify && r.notifier != nil && claimable(existing, now, r.cfg.NotifyTimeout)
	if notifyNow {
		p.update.NotificationStatus = models.Ptr(models.NotificationPending)
		p.update.NotificationClaimedAt = models.Ptr(now)
	}

	rec, created, err := r.store.UpsertCall(ctx, callID, *p.update)
	if err != nil {
		if errors.Is(err, store.ErrBusinessMismatch) {
			return nil, apperrors.NewBusinessMismatchError(callID, "", biz.ID)
		}
		return nil, apperrors.NewStoreError("upsert_call", err)
	}

	action := ActionUpdated
	if created {
		action = ActionCreated
	}
	if p.notify && !notifyNow {
		log.Debug("Notification already claimed", map[string]interface{}{
			"notificationStatus": string(rec.NotificationStatus),
		})
	}
	return &committed{record: rec, created: created, action: action, notify: notifyNow, extraction: p.extraction}, nil
}

// dispatch runs after the lock is released. Its failure never undoes the record write.
func (r *Reconciler) dispatch(ctx context.Context, rec *models.CallRecord, biz *models.Business, log logger.Logger) *models.NotificationOutcome {
	dctx, cancel := context.WithTimeout(ctx, r.cfg.NotifyTimeout)
	defer cancel()

	outcome := r.notifier.SendAllNotifications(dctx, rec, biz)
	if outcome == nil {
		outcome = &models.NotificationOutcome{Status: models.NotificationFailed}
	}

	sent := outcome.Status == models.NotificationSent
	_, _, err := r.store.UpsertCall(ctx, rec.CallID, models.CallUpdate{
		BusinessID:         biz.ID,
		NotificationStatus: models.Ptr(outcome.Status),
		NotificationSent:   models.Ptr(sent),
	})
	if err != nil {
		log.Error("Failed to store notification outcome", map[string]interface{}{
			"notificationStatus": string(outcome.Status),
			"error":              err.Error(),
		})
	}
	if outcome.Status == models.NotificationFailed {
		for _, ch := range outcome.Channels {
			if ch.Status == models.NotificationFailed {
				stdErr := apperrors.NewNotificationSendFailedError(string(ch.Channel), errors.New(ch.Error))
				log.Warn("Notification not delivered", map[string]interface{}{
					"errorCode": string(stdErr.Code),
					"details":   stdErr.Details,
				})
			}
		}
	}
	return outcome
}

func (r *Reconciler) fail(res *Result, log logger.Logger, err error) (*Result, error) {
	stdErr := apperrors.AsStandard(err)
	res.Success = false
	res.Error = stdErr
	metrics.CallEventErrors.WithLabelValues(string(stdErr.Code)).Inc()
	log.Error("Call event failed", map[string]interface{}{
		"eventKind": res.EventKind,
		"errorCode": string(stdErr.Code),
		"details":   stdErr.Details,
		"retryable": stdErr.Retryable,
	})
	return res, stdErr
}
