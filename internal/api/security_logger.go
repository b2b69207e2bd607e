package api

import (
	"crypto/sha256"
	"encoding/hex"
	"log"
	"time"
)

// SecurityLogger writes audit lines that never include raw filter scripts
type SecurityLogger struct {
	logger *log.Logger
}

// NewSecurityLogger creates a new security logger writing to logger
func NewSecurityLogger(logger *log.Logger) *SecurityLogger {
	return &SecurityLogger{logger: logger}
}

// LogRandomizeOperation logs one randomization request
func (sl *SecurityLogger) LogRandomizeOperation(
	requestID string,
	version string,
	seed int64,
	filterScript string,
	trainers int,
	draws uint64,
	duration time.Duration,
) {
	sl.logger.Printf(
		"randomize_operation request_id=%s version=%s seed=%d script_hash=%s trainers=%d draws=%d duration=%v engine_version=%s timestamp=%s",
		requestID,
		version,
		seed,
		sl.hashScript(filterScript),
		trainers,
		draws,
		duration,
		EngineVersion,
		time.Now().UTC().Format(time.RFC3339),
	)
}

// LogSecurityEvent logs security-related events (failed validations, suspicious activity)
func (sl *SecurityLogger) LogSecurityEvent(
	requestID string,
	eventType string,
	description string,
	context map[string]interface{},
	remoteAddr string,
) {
	sl.logger.Printf(
		"security_event request_id=%s type=%s description=%q context=%+v remote_addr=%s engine_version=%s timestamp=%s",
		requestID,
		eventType,
		description,
		sl.sanitizeContext(context),
		remoteAddr,
		EngineVersion,
		time.Now().UTC().Format(time.RFC3339),
	)
}

// LogAuditEvent logs audit events for compliance and debugging
func (sl *SecurityLogger) LogAuditEvent(
	requestID string,
	action string,
	resource string,
	outcome string,
	details map[string]interface{},
) {
	sl.logger.Printf(
		"audit_event request_id=%s action=%s resource=%s outcome=%s details=%+v engine_version=%s timestamp=%s",
		requestID,
		action,
		resource,
		outcome,
		sl.sanitizeContext(details),
		EngineVersion,
		time.Now().UTC().Format(time.RFC3339),
	)
}

// LogSystemStartup logs system startup information
func (sl *SecurityLogger) LogSystemStartup(addr string, config map[string]interface{}) {
	sl.logger.Printf(
		"system_startup addr=%s config=%+v engine_version=%s git_commit=%s build_time=%s timestamp=%s",
		addr,
		sl.sanitizeContext(config),
		EngineVersion,
		GitCommit,
		BuildTime,
		time.Now().UTC().Format(time.RFC3339),
	)
}

// LogSystemShutdown logs system shutdown information
func (sl *SecurityLogger) LogSystemShutdown(reason string, uptime time.Duration) {
	sl.logger.Printf(
		"system_shutdown reason=%s uptime=%v engine_version=%s timestamp=%s",
		reason,
		uptime,
		EngineVersion,
		time.Now().UTC().Format(time.RFC3339),
	)
}

// hashScript returns the first 16 hex chars of the script's SHA256
func (sl *SecurityLogger) hashScript(script string) string {
	if script == "" {
		return "none"
	}
	hash := sha256.Sum256([]byte(script))
	return hex.EncodeToString(hash[:])[:16]
}

// sanitizeContext replaces scripts with their hash
func (sl *SecurityLogger) sanitizeContext(context map[string]interface{}) map[string]interface{} {
	if context == nil {
		return nil
	}

	sanitized := make(map[string]interface{}, len(context))
	for key, value := range context {
		switch key {
		case "filter_script", "script":
			if s, ok := value.(string); ok {
				sanitized[key+"_hash"] = sl.hashScript(s)
			} else {
				sanitized[key+"_hash"] = "non_string_value"
			}
		default:
			sanitized[key] = value
		}
	}
	return sanitized
}
