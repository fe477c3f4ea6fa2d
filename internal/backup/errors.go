package backup

import "errors"

// Sentinel errors for the backup and restore flows. Handlers map these to
// stable machine-readable codes; none of them is ever retried automatically.
var (
	// ErrValidation indicates bad or missing caller input, including any
	// attempt to supply a tenant id in a request payload.
	ErrValidation = errors.New("validation failed")
	// ErrCrossTenant indicates an ownership mismatch between the resource and
	// the caller's tenant scope. Always audited.
	ErrCrossTenant = errors.New("cross-tenant access denied")
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrIncompleteArtifact indicates the backup has not completed yet.
	ErrIncompleteArtifact = errors.New("backup artifact not complete")
	// ErrMissingHash indicates a record lacking a content hash; such an
	// artifact is unconditionally unsafe.
	ErrMissingHash = errors.New("backup record has no content hash")
	// ErrRetentionExpired indicates a backup past its retention window; the
	// artifact is no longer handed out.
	ErrRetentionExpired = errors.New("backup retention expired")
	// ErrIntegrity indicates the stored blob no longer matches its recorded hash.
	ErrIntegrity = errors.New("artifact integrity check failed")
	// ErrSignature indicates a recorded signature that does not verify.
	ErrSignature = errors.New("artifact signature check failed")
	// ErrIncompatible indicates an academic-subtype mismatch on restore.
	ErrIncompatible = errors.New("snapshot incompatible with target tenant")
	// ErrStorage indicates an I/O failure against the snapshot store.
	ErrStorage = errors.New("snapshot storage failure")
	// ErrLegalAckRequired indicates an operator restore attempted without the
	// required legal acknowledgment on file.
	ErrLegalAckRequired = errors.New("legal acknowledgment required")
)

// Code returns the stable machine-readable code for a taxonomy error, or
// "UNEXPECTED" for anything else.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "VALIDATION"
	case errors.Is(err, ErrCrossTenant):
		return "CROSS_TENANT"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrIncompleteArtifact):
		return "INCOMPLETE"
	case errors.Is(err, ErrMissingHash):
		return "MISSING_HASH"
	case errors.Is(err, ErrRetentionExpired):
		return "RETENTION_EXPIRED"
	case errors.Is(err, ErrIntegrity):
		return "INTEGRITY_FAILED"
	case errors.Is(err, ErrSignature):
		return "SIGNATURE_FAILED"
	case errors.Is(err, ErrIncompatible):
		return "INCOMPATIBLE"
	case errors.Is(err, ErrStorage):
		return "STORAGE"
	case errors.Is(err, ErrLegalAckRequired):
		return "LEGAL_ACK_REQUIRED"
	default:
		return "UNEXPECTED"
	}
}
