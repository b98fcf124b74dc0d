package importer

// RetryWithBackoff exposes retryWithBackoff for testing.
var RetryWithBackoff = retryWithBackoff

// IsRetryableError exposes isRetryableError for testing.
var IsRetryableError = isRetryableError

// Test constants exposed for verification.
const (
	TestMaxRetries     = maxRetries
	TestInitialBackoff = initialBackoff
)
