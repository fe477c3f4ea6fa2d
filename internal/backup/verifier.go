package backup

import (
	"context"

	"github.com/campushq-io/campushq/internal/audit"
	"github.com/campushq-io/campushq/internal/crypto"
	"github.com/campushq-io/campushq/internal/metrics"
	"github.com/campushq-io/campushq/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// VerifyResult reports the outcome of an artifact verification.
type VerifyResult struct {
	// IntegrityOK is true when the blob's recomputed hash matches the
	// recorded one. When false the artifact must be treated as unusable.
	IntegrityOK bool
	// SignatureOK is true when a recorded signature verifies over the
	// recorded hash. Always true when no signature is recorded.
	SignatureOK bool
	// SignatureChecked is true when a signature was present and verified
	// (pass or fail).
	SignatureChecked bool
}

// OK reports whether the artifact is fully trustworthy.
func (r VerifyResult) OK() bool {
	return r.IntegrityOK && r.SignatureOK
}

// Verifier recomputes artifact hashes and checks platform signatures. It is
// side-effect free except for emitting audit events.
type Verifier struct {
	pub    *crypto.Verifier
	sink   *audit.Sink
	logger zerolog.Logger
}

// NewVerifier creates a Verifier with the platform's public verification key.
func NewVerifier(pub *crypto.Verifier, sink *audit.Sink, logger zerolog.Logger) *Verifier {
	return &Verifier{
		pub:    pub,
		sink:   sink,
		logger: logger.With().Str("component", "integrity_verifier").Logger(),
	}
}

// Verify recomputes the hash of blob and compares it to recordedHash, then
// verifies the recorded signature if one is present. Every attempt, pass or
// fail, emits an audit event carrying only a truncated hash prefix.
func (v *Verifier) Verify(ctx context.Context, tenantID, backupID uuid.UUID, blob []byte, recordedHash string, sig *models.SignatureMeta) VerifyResult {
	result := VerifyResult{
		IntegrityOK: crypto.HashEqual(crypto.HashHex(blob), recordedHash),
		SignatureOK: true,
	}

	if sig != nil && sig.Algorithm != "" && sig.Value != "" {
		result.SignatureChecked = true
		result.SignatureOK = v.pub.Verify(recordedHash, sig.Value)
	}

	action := models.AuditActionVerifyPassed
	if !result.OK() {
		action = models.AuditActionVerifyFailed
	}
	v.sink.Emit(ctx, models.NewAuditEvent(tenantID, action, "backup").
		WithEntity(backupID).
		WithNote("hash "+hashPrefix(recordedHash)))

	if !result.IntegrityOK {
		metrics.VerifyFailed("integrity")
		v.logger.Warn().
			Str("backup_id", backupID.String()).
			Str("hash_prefix", hashPrefix(recordedHash)).
			Msg("artifact hash mismatch")
	}
	if result.SignatureChecked && !result.SignatureOK {
		metrics.VerifyFailed("signature")
		v.logger.Warn().
			Str("backup_id", backupID.String()).
			Msg("artifact signature mismatch")
	}

	return result
}
