// Package roster keeps the authoritative set of conference participants.
//
// A Store folds decoded presences (see package presence) into Member
// records and reports what changed as a ChangeSet. Tiers are resolved in a
// fixed order for members seen for the first time:
//
//  1. an explicit, valid userType wins
//  2. legacy clients that never announce a tier default to tier-2
//  3. a tier persisted earlier in the same session is restored
//  4. everyone else starts at tier-3
//
// SIP gateway accounts are forced to tier-2 after all of the above, on
// join and on every later update.
//
// Role and affiliation are never stored: tier-0 is moderator/owner,
// everything else participant/none. Snapshot recounts tier-1 and tier-2
// members on every call so the counts cannot drift from the members.
//
// The Store is single-writer. The coordinator owns it and calls it from
// its event loop.
package roster
