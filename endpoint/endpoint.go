// Package endpoint provides the platform implementations of the mute
// capability interfaces: device enumeration, volume control and the two
// notification subscriptions. Each platform backend adapts its native
// notification mechanism onto mute.Callback; anything it cannot express
// (per-command originator tags, device roles) is synthesized so the core
// never sees platform differences.
package endpoint
