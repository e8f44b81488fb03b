// Package limiters tracks consecutive failed login attempts and enforces
// temporary account lockout.
//
// Two Guard implementations exist: MemoryGuard for single-process
// deployments and RedisGuard for shared deployments where every instance
// must see the same counters. The lockout window is anchored at the most
// recent failure: each RecordFailure restarts it, and a counter only
// expires once a full window passes with no failures at all. Expiry is
// lazy — nothing sweeps in the background; a counter past its window
// simply stops counting the next time it is consulted.
package limiters
