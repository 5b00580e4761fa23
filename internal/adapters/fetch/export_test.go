package fetch

import "time"

// SetRetryWait shortens the retry backoff for tests.
func (f *Fetcher) SetRetryWait(minWait, maxWait time.Duration) {
	f.retryWaitMin = minWait
	f.retryWaitMax = maxWait
}
