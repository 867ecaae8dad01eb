package models

import "time"

// View names the page a session currently shows.
type View string

const (
	ViewLanding     View = "landing"
	ViewCreateSplit View = "create_split"
	ViewDashboard   View = "dashboard"
)

// DashboardTab names the detail tab shown for the selected split.
type DashboardTab string

const (
	TabRecipients   DashboardTab = "recipients"
	TabTransactions DashboardTab = "transactions"
)

// Valid reports whether t is a known tab.
func (t DashboardTab) Valid() bool {
	return t == TabRecipients || t == TabTransactions
}

// Draft is the in-progress state of the create-split form.
type Draft struct {
	Name       string      `json:"name"`
	Recipients []Recipient `json:"recipients"`
}

// Session holds the view state of one browser or API client.
// It replaces what a single-page app would keep in component state.
type Session struct {
	// ID is the unique identifier for the session (UUID format).
	ID string

	// Connected is set once the (simulated) wallet is connected.
	// There is no way to clear it.
	Connected bool

	// ShowCreateSplit is true while the create-split form is open.
	ShowCreateSplit bool

	// Draft is the open form. Nil unless ShowCreateSplit is set.
	Draft *Draft

	// Splits is append-only, in creation order.
	Splits []Split

	// Selected is the index into Splits shown on the dashboard.
	Selected int

	// Tab is the active dashboard detail tab.
	Tab DashboardTab

	CreatedAt time.Time
	UpdatedAt time.Time
}
