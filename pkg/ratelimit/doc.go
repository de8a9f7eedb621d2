// Package ratelimit gates outbound search and image requests.
//
// Two algorithms are provided: a token bucket that refills to capacity once
// per period, and a sliding window over the last N requests. New picks a
// per-minute token bucket, or no limiting at all for a zero budget.
package ratelimit
