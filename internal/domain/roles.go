package domain

import "strings"

// Role is the single role a staff user holds.
type Role string

const (
	RoleManager    Role = "manager"
	RoleAgent      Role = "agent"
	RoleAccountant Role = "accountant"
)

// Capability names an action guarded by role.
type Capability string

const (
	CapViewRecords       Capability = "view_records"
	CapManageCustomers   Capability = "manage_customers"
	CapManageBookings    Capability = "manage_bookings"
	CapRecordPayments    Capability = "record_payments"
	CapLogCommunications Capability = "log_communications"
	CapManageTrips       Capability = "manage_trips"
	CapManageExpenses    Capability = "manage_expenses"
	CapViewReports       Capability = "view_reports"
	CapManageUsers       Capability = "manage_users"
	CapUseAssistant      Capability = "use_assistant"
)

var capabilities = map[Role]map[Capability]bool{
	RoleManager: {
		CapViewRecords:       true,
		CapManageCustomers:   true,
		CapManageBookings:    true,
		CapRecordPayments:    true,
		CapLogCommunications: true,
		CapManageTrips:       true,
		CapManageExpenses:    true,
		CapViewReports:       true,
		CapManageUsers:       true,
		CapUseAssistant:      true,
	},
	RoleAgent: {
		CapViewRecords:       true,
		CapManageCustomers:   true,
		CapManageBookings:    true,
		CapRecordPayments:    true,
		CapLogCommunications: true,
		CapUseAssistant:      true,
	},
	RoleAccountant: {
		CapViewRecords:       true,
		CapRecordPayments:    true,
		CapLogCommunications: true,
		CapUseAssistant:      true,
	},
}

var allCapabilities = []Capability{
	CapViewRecords, CapManageCustomers, CapManageBookings, CapRecordPayments, CapLogCommunications,
	CapManageTrips, CapManageExpenses, CapViewReports, CapManageUsers, CapUseAssistant,
}

// Capabilities lists what the role may do, in a stable order.
func (r Role) Capabilities() []Capability {
	out := []Capability{}
	for _, c := range allCapabilities {
		if r.Can(c) {
			out = append(out, c)
		}
	}
	return out
}

// Roles lists every role in display order.
func Roles() []Role {
	return []Role{RoleManager, RoleAgent, RoleAccountant}
}

// ParseRole accepts a role name case-insensitively.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	_, ok := capabilities[r]
	return r, ok
}

func (r Role) Valid() bool {
	_, ok := capabilities[r]
	return ok
}

// Can reports whether the role grants the capability. Unknown roles grant nothing.
func (r Role) Can(c Capability) bool {
	return capabilities[r][c]
}

// Label is the human-readable role name.
func (r Role) Label() string {
	switch r {
	case RoleManager:
		return "Manager"
	case RoleAgent:
		return "Agent"
	case RoleAccountant:
		return "Accountant"
	default:
		return string(r)
	}
}
