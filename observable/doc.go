// Package observable provides the mutable, property-based entities that the
// command core operates on.
//
// An Observable exposes named properties and notifies registered observers
// synchronously when a property value changes. Notification for a property
// is suppressed while a notification for that same property is already in
// progress, which breaks observer cycles without queueing.
//
// Observables carry a process-unique string identity assigned at
// construction. The identity can be overwritten during deserialization to
// restore an id issued in a previous session.
//
// Common usage pattern:
//
//	doc := observable.New()
//	doc.Set("sample_rate", 48000)
//
//	observerID := doc.Observe("sample_rate", func(change observable.Change) {
//		// react to the new value
//	})
//	defer doc.Unobserve("sample_rate", observerID)
package observable
