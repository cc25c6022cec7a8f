// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ServicePro Contributors

package auth

import "github.com/prometheus/client_golang/prometheus"

// Status constants for credential metrics.
const (
	StatusSuccess        = "success"
	StatusError          = "error"
	StatusInvalid        = "invalid"
	StatusExpired        = "expired"
	StatusAlreadyUsed    = "already_used"
	StatusNotFound       = "not_found"
	StatusUnknownAccount = "unknown_account"
)

// SessionsIssued counts issued session tokens.
// Use RegisterMetrics to register this with a Prometheus registry.
var SessionsIssued = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "authcore_sessions_issued_total",
		Help: "Total number of session tokens issued",
	},
	[]string{"status"},
)

// SessionsVerified counts session token verifications by outcome.
var SessionsVerified = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "authcore_session_verifications_total",
		Help: "Total number of session token verifications",
	},
	[]string{"status"},
)

// RecoveryRequests counts recovery requests by outcome.
var RecoveryRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "authcore_recovery_requests_total",
		Help: "Total number of password recovery requests",
	},
	[]string{"status"},
)

// RecoveryRedeems counts recovery redemptions by outcome.
var RecoveryRedeems = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "authcore_recovery_redeems_total",
		Help: "Total number of password recovery redemptions",
	},
	[]string{"status"},
)

// RecoveryTokensReaped counts recovery tokens deleted by the reaper.
var RecoveryTokensReaped = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "authcore_recovery_tokens_reaped_total",
		Help: "Total number of expired recovery tokens deleted",
	},
)

// RegisterMetrics registers credential metrics with the given registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(
		SessionsIssued,
		SessionsVerified,
		RecoveryRequests,
		RecoveryRedeems,
		RecoveryTokensReaped,
	)
}

// RecordSessionIssued increments the issue counter.
func RecordSessionIssued(status string) {
	SessionsIssued.WithLabelValues(status).Inc()
}

// RecordSessionVerified increments the verification counter.
func RecordSessionVerified(status string) {
	SessionsVerified.WithLabelValues(status).Inc()
}

// RecordRecoveryRequest increments the request counter.
func RecordRecoveryRequest(status string) {
	RecoveryRequests.WithLabelValues(status).Inc()
}

// RecordRecoveryRedeem increments the redeem counter.
func RecordRecoveryRedeem(status string) {
	RecoveryRedeems.WithLabelValues(status).Inc()
}

// RecordTokensReaped adds to the reaped-token counter.
func RecordTokensReaped(count int64) {
	if count > 0 {
		RecoveryTokensReaped.Add(float64(count))
	}
}
