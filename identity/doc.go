// Package identity links transient UI-bound objects to stable structured
// string identifiers that survive serialization and widget recreation.
//
// Two identifier shapes exist, both colon-delimited with fixed arity:
//
//	widget id:     <type_code>:<unique>:<container_unique>:<location>
//	observable id: obs:<unique>:<owner_unique>:<slot>
//
// A property id is an observable id with a trailing property-name segment
// appended. Classification is purely syntactic: a malformed string simply
// fails to parse, it never causes an error or a panic.
//
// The Registry keeps the bidirectional object<->id mapping. Resolving a
// stale or unknown id yields nil; callers treat absence as "the object no
// longer exists" and skip whatever they were about to do.
package identity
