// internal/notify/templates.go
package notify

import (
	"fmt"
	"strings"

	"call-intake-workers/internal/models"
)

func defaultTemplates() map[models.NotificationChannel]models.NotificationTemplate {
	return map[models.NotificationChannel]models.NotificationTemplate{
		models.ChannelSMS: {
			Channel: models.ChannelSMS,
			Body:    "New call for {{businessName}} from {{callerName}} ({{callbackNumber}}): {{summary}}",
		},
		models.ChannelEmail: {
			Channel: models.ChannelEmail,
			Subject: "New call from {{callerName}}: {{summary}}",
			Body: "A new call was received for {{businessName}}.\n\n" +
				"Caller: {{callerName}}\n" +
				"Callback number: {{callbackNumber}}\n" +
				"Address: {{address}}\n" +
				"Reason: {{reason}}\n" +
				"Summary: {{summary}}\n" +
				"Recording: {{recordingUrl}}\n" +
				"Call ID: {{callId}}\n",
		},
		models.ChannelSlack: {
			Channel: models.ChannelSlack,
			Body:    ":telephone_receiver: *New call* from {{callerName}} ({{callbackNumber}})\n>{{summary}}\nAddress: {{address}}",
		},
	}
}

func templateData(call *models.CallRecord, biz *models.Business) map[string]interface{} {
	callback := deref(call.CallbackNumber, deref(call.FromNumber, "unknown number"))
	return map[string]interface{}{
		"businessName":   biz.Name,
		"callId":         call.CallID,
		"callerName":     deref(call.CallerName, "Unknown caller"),
		"callbackNumber": callback,
		"address":        deref(call.Address, "not provided"),
		"reason":         deref(call.Reason, "not provided"),
		"summary":        deref(call.CallSummary, "Customer inquiry"),
		"recordingUrl":   deref(call.RecordingURL, ""),
	}
}

func deref(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}

// renderTemplate replaces {{key}} placeholders and drops any left unresolved.
func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl
	for k, v := range data {
		value := ""
		switch t := v.(type) {
		case string:
			value = t
		case nil:
		default:
			value = fmt.Sprintf("%v", t)
		}
		result = strings.ReplaceAll(result, "{{"+k+"}}", value)
	}

	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		result = result[:start] + result[start+end+2:]
	}
	return result
}
