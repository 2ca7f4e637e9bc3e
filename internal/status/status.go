package status

import "errors"

// Error kinds for the booking/payment workflow. Services wrap these with
// fmt.Errorf("...: %w", ...) and handlers translate them to HTTP responses.
var (
	// ErrValidation covers missing or malformed input; recoverable by the
	// caller correcting the request.
	ErrValidation = errors.New("validation: invalid input")

	// ErrUnauthenticated means no resolvable identity was present.
	ErrUnauthenticated = errors.New("auth: no authenticated identity")

	// ErrForbidden means the identity is known but the role policy denies
	// the action.
	ErrForbidden = errors.New("auth: action not permitted for role")

	// ErrPersistence means the data store rejected a read or write. The
	// caller must not assume the write happened.
	ErrPersistence = errors.New("persistence: store rejected operation")

	// ErrExternalService means the payment gateway was unreachable or
	// returned a transport-level failure. Retryable by re-initiating.
	ErrExternalService = errors.New("external: payment gateway unavailable")

	// ErrReconciliation marks the partial-failure case: the gateway
	// reported success but recording it locally failed. The reconciler
	// retries it; until then the pair is inconsistent.
	ErrReconciliation = errors.New("reconciliation: payment recorded but booking update failed")

	// ErrSignatureMismatch means a gateway callback or webhook carried a
	// signature that did not verify against the shared secret.
	ErrSignatureMismatch = errors.New("payment: signature verification failed")

	// ErrConfirmationInFlight means another confirmation for the same
	// booking currently holds the per-booking lock.
	ErrConfirmationInFlight = errors.New("payment: confirmation already in progress for booking")
)
