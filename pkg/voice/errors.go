package voice

import "errors"

// Sentinel errors for pipeline failure modes the web layer must tell apart.
var (
	// ErrNotConfigured means no provider credential is present.
	// The voice feature is unavailable; nothing was attempted.
	ErrNotConfigured = errors.New("voice: synthesis provider not configured")

	// ErrDisabled means the provider rejected the credential on an earlier
	// call and the pipeline latched itself off. Operator intervention is
	// required; retrying will not help.
	ErrDisabled = errors.New("voice: synthesis disabled after credential rejection")

	// ErrEmptyText means there was nothing speakable left after
	// truncation and sanitization.
	ErrEmptyText = errors.New("voice: no speakable text")
)
