// internal/reconciler/plan.go
package reconciler

import (
	"math"
	"strings"
	"time"

	"call-intake-workers/internal/common/phone"
	"call-intake-workers/internal/extraction"
	"call-intake-workers/internal/models"
)

const (
	ActionCreated         = "created"
	ActionUpdated         = "updated"
	ActionDuplicate       = "duplicate"
	ActionIgnoredStale    = "ignored_stale"
	ActionIgnoredTerminal = "ignored_terminal"
)

// plan is the write one event makes against the current record.
type plan struct {
	update     *models.CallUpdate // nil means no write
	statusOnly bool               // Ended on an existing record
	notify     bool
	extraction *extraction.Result
	skipAction string // set when update is nil
}

// buildPlan is the state machine. existing is nil when no record exists yet.
func (r *Reconciler) buildPlan(ev Event, existing *models.CallRecord, biz *models.Business) plan {
	p := ev.Payload

	switch ev.Kind {
	case KindStarted:
		if existing == nil {
			u := r.baseUpdate(p, biz, models.EventSourceExplicit)
			u.Status = models.Ptr(models.CallStatusInProgress)
			return plan{update: &u}
		}
		if existing.Status.IsTerminal() {
			return plan{skipAction: ActionIgnoredStale}
		}
		return plan{skipAction: ActionDuplicate}

	case KindEnded:
		if existing != nil && existing.Status == models.CallStatusFailed {
			return plan{skipAction: ActionIgnoredTerminal}
		}
		u := r.baseUpdate(p, biz, models.EventSourceExplicit)
		u.Status = models.Ptr(models.CallStatusCompleted)
		if existing != nil && !hasMetadata(p) {
			return plan{update: &u, statusOnly: true}
		}
		return plan{update: &u}

	case KindAnalyzed:
		u := r.baseUpdate(p, biz, models.EventSourceExplicit)
		u.Status = models.Ptr(models.CallStatusCompleted)
		res := r.applyExtraction(&u, p)
		return plan{update: &u, extraction: res, notify: res != nil && res.CallSummary != nil}

	case KindLegacy:
		explicit := existing != nil && existing.EventSource == models.EventSourceExplicit
		source := models.EventSourceLegacy
		if explicit {
			source = models.EventSourceExplicit
		}
		u := r.baseUpdate(p, biz, source)
		var res *extraction.Result
		if ev.LegacyStatus == models.CallStatusCompleted {
			res = r.applyExtraction(&u, p)
		}
		if !explicit {
			u.Status = models.Ptr(ev.LegacyStatus)
			return plan{update: &u, extraction: res, notify: ev.LegacyStatus == models.CallStatusCompleted}
		}
		// status of an explicit record only moves on explicit events
		fillOnly(&u, existing)
		notify := ev.LegacyStatus == models.CallStatusCompleted && existing.Status == models.CallStatusCompleted
		return plan{update: &u, extraction: res, notify: notify}
	}
	return plan{skipAction: ActionDuplicate}
}

func (r *Reconciler) baseUpdate(p *models.CallEvent, biz *models.Business, source models.EventSource) models.CallUpdate {
	u := models.CallUpdate{
		BusinessID:  biz.ID,
		ToNumber:    models.Ptr(phone.Normalize(p.ToNumber)),
		EventSource: models.Ptr(source),
	}
	if strings.TrimSpace(p.FromNumber) != "" {
		u.FromNumber = models.Ptr(phone.Normalize(p.FromNumber))
	}
	if strings.TrimSpace(p.RecordingURL) != "" {
		u.RecordingURL = models.Ptr(strings.TrimSpace(p.RecordingURL))
	}
	if p.CallDuration != nil && *p.CallDuration >= 0 {
		u.DurationSeconds = models.Ptr(int(math.Round(*p.CallDuration)))
		u.Cost = models.Ptr(callCost(*p.CallDuration, r.cfg.CostPerMinute))
	}
	return u
}

// applyExtraction merges present extracted fields into u. Absent fields stay nil so
// they never erase stored values.
func (r *Reconciler) applyExtraction(u *models.CallUpdate, p *models.CallEvent) *extraction.Result {
	text := p.TranscriptSource()
	if text == "" {
		return nil
	}
	res := r.engine.Extract(text)
	u.TranscriptText = models.Ptr(text)
	u.CallerName = res.Name
	u.CallbackNumber = res.CallbackNumber
	u.Address = res.Address
	u.Reason = res.Reason
	u.CallSummary = res.CallSummary
	u.Confidence = models.Ptr(res.Confidence)
	return &res
}

// fillOnly drops every field of u the explicit record already holds, so a legacy
// delivery can only fill gaps.
func fillOnly(u *models.CallUpdate, rec *models.CallRecord) {
	drop := func(dst **string, have *string) {
		if have != nil {
			*dst = nil
		}
	}
	drop(&u.CallerName, rec.CallerName)
	drop(&u.CallbackNumber, rec.CallbackNumber)
	drop(&u.Address, rec.Address)
	drop(&u.Reason, rec.Reason)
	drop(&u.CallSummary, rec.CallSummary)
	drop(&u.RecordingURL, rec.RecordingURL)
	drop(&u.TranscriptText, rec.TranscriptText)
	drop(&u.FromNumber, rec.FromNumber)
	if rec.DurationSeconds != nil {
		u.DurationSeconds = nil
		u.Cost = nil
	}
	if rec.Confidence != nil {
		u.Confidence = nil
	}
}

func hasMetadata(p *models.CallEvent) bool {
	return p.CallDuration != nil || strings.TrimSpace(p.RecordingURL) != "" || strings.TrimSpace(p.FromNumber) != ""
}

// callCost prices a call by the minute, rounded to four decimals.
func callCost(seconds, perMinute float64) float64 {
	return math.Round(seconds/60*perMinute*10000) / 10000
}

// claimable reports whether this delivery may dispatch notifications for rec. A
// pending claim younger than ttl belongs to a delivery still in flight. Claim age is
// measured from NotificationClaimedAt so later writes to the record never extend it.
func claimable(rec *models.CallRecord, now time.Time, ttl time.Duration) bool {
	if rec == nil {
		return true
	}
	switch rec.NotificationStatus {
	case models.NotificationSent:
		return false
	case models.NotificationPending:
		claimedAt := rec.UpdatedAt
		if rec.NotificationClaimedAt != nil {
			claimedAt = *rec.NotificationClaimedAt
		}
		return now.Sub(claimedAt) >= ttl
	default:
		return true
	}
}
