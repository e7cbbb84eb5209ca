// Package feed implements the external live-comment feed client.
//
// Builds paginated Graph API comment requests, normalizes the raw records
// into domain comments, and surfaces upstream rejections as APIError. The
// client never retries; the polling scheduler owns that policy.
package feed
