// Package credential verifies login passwords against stored credential
// hashes.
//
// Two [Verifier] implementations exist: [Argon2] for production records
// (PHC-encoded argon2id, constant-time comparison) and [Plain] for demo
// seeds where the stored credential is the password itself. Which one runs
// is a configuration decision made once at engine build time — never a
// runtime environment check inside the login path.
package credential
