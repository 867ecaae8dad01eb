// Package models defines the core domain models for SplitFlow.
//
// # Models
//
//   - Recipient: one stakeholder entry (name, wallet address, percentage share)
//   - Split: a named, submitted configuration of recipients
//   - Transaction: sample incoming payment shown on the dashboard
//   - Session: the per-browser view state (wallet flag, open form, splits)
//
// Wallet connection and contract deployment are simulated. Nothing here talks
// to a chain; addresses are plain strings and are never validated.
//
// # Design Principles
//
// 1. **Append-only splits**: a Split is created once and never edited or removed
// 2. **Form state is separate**: recipients being edited belong to the form,
// and are copied into a Split on submission
// 3. **No structural invariant on shares**: the sum-to-100 rule is a submit
// guard on the form, not a property of the Split type
package models
