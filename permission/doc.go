// Package permission models capabilities as a set of opaque strings.
//
// The dashboard's permission vocabulary is open-ended (feature teams add
// capability names without touching this core), so the set type carries
// names rather than enum values or bit positions. The single reserved name
// is [Wildcard]: a set containing it grants every capability.
//
// Sets are copied into token claims at issuance and are immutable from
// then on; a later permission change in the directory does not affect
// already-issued tokens.
package permission
