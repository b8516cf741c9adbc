// Package model defines the shared data types of the synchronization core:
// price quotes, alert rules, and user profiles.
//
// Types mirror the wire format of the backend gateway. Prices use
// decimal.Decimal so compare and percent-change arithmetic stays exact.
package model
