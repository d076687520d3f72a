package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/LikhithKalle/FARMA-Project/internal/flow"
	"github.com/LikhithKalle/FARMA-Project/internal/metrics"
	"github.com/LikhithKalle/FARMA-Project/internal/models"
	"github.com/LikhithKalle/FARMA-Project/internal/twiliosms"
)

// SMSKeyPrefix namespaces SMS conversations in the session store.
const SMSKeyPrefix = "sms:"

// SMS metric labels.
const (
	smsInbound  = "inbound"
	smsOutbound = "outbound"

	smsAccepted   = "accepted"
	smsRejected   = "rejected"
	smsDuplicate  = "duplicate"
	smsFailed     = "failed"
	smsDelivered  = "delivered"
	smsSendFailed = "send_failed"
)

// smsHandler handles Twilio's inbound message webhook. The reply is sent
// through the REST API and the webhook itself is acknowledged with empty TwiML.
func (s *Server) smsHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		slog.Warn("Server.smsHandler: failed to parse webhook form", "error", err)
		metrics.SMSMessages.WithLabelValues(smsInbound, smsRejected).Inc()
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid form body"))
		return
	}

	params := make(map[string]string, len(r.PostForm))
	for k, v := range r.PostForm {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}
	if !s.opts.SMS.ValidateRequest(s.webhookURL(r), params, r.Header.Get("X-Twilio-Signature")) {
		slog.Warn("Server.smsHandler: invalid Twilio signature", "remoteAddr", r.RemoteAddr)
		metrics.SMSMessages.WithLabelValues(smsInbound, smsRejected).Inc()
		writeJSONResponse(w, http.StatusForbidden, models.Error("Invalid signature"))
		return
	}

	from, err := twiliosms.CanonicalNumber(params["From"])
	if err != nil {
		slog.Warn("Server.smsHandler: invalid sender", "from", params["From"], "error", err)
		metrics.SMSMessages.WithLabelValues(smsInbound, smsRejected).Inc()
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Missing or invalid From"))
		return
	}
	key := SMSKeyPrefix + from
	ctx := r.Context()

	messageID := params["MessageSid"]
	if messageID != "" {
		fresh, err := s.st.RecordInbound(ctx, messageID, key)
		if err != nil {
			slog.Error("Server.smsHandler: failed to record inbound message", "messageID", messageID, "error", err)
		} else if !fresh {
			slog.Info("Server.smsHandler: duplicate webhook delivery ignored", "messageID", messageID)
			metrics.SMSMessages.WithLabelValues(smsInbound, smsDuplicate).Inc()
			writeTwiML(w)
			return
		}
	}

	resp, err := s.processor.ProcessChannel(ctx, key, params["Body"], s.opts.SMSLanguage)
	if err != nil {
		slog.Error("Server.smsHandler: failed to process message", "key", key, "error", err)
		metrics.SMSMessages.WithLabelValues(smsInbound, smsFailed).Inc()
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to process message"))
		return
	}
	metrics.SMSMessages.WithLabelValues(smsInbound, smsAccepted).Inc()

	if err := s.opts.SMS.SendMessage(ctx, from, flow.FormatText(resp)); err != nil {
		slog.Error("Server.smsHandler: failed to send reply", "to", from, "error", err)
		metrics.SMSMessages.WithLabelValues(smsOutbound, smsSendFailed).Inc()
	} else {
		metrics.SMSMessages.WithLabelValues(smsOutbound, smsDelivered).Inc()
	}

	if messageID != "" {
		if err := s.st.MarkProcessed(ctx, messageID); err != nil {
			slog.Warn("Server.smsHandler: failed to mark message processed", "messageID", messageID, "error", err)
		}
	}
	writeTwiML(w)
}

// webhookURL reconstructs the URL Twilio signed.
func (s *Server) webhookURL(r *http.Request) string {
	if s.opts.PublicURL != "" {
		return strings.TrimRight(s.opts.PublicURL, "/") + r.URL.RequestURI()
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
