// Package session records active sessions in redis as compact versioned
// binary blobs.
//
// The session record is bookkeeping, not authority: tokens carry their own
// signed claims and verify without any store round trip. The record exists
// so deployments can list a principal's active sessions, observe refresh
// activity, and drop the bookkeeping at logout. A deployment without redis
// simply runs without records; nothing in the login or validate paths
// depends on one existing.
package session
