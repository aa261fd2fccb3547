// Package access is the single place where role-based permissions are
// decided. Every mutating operation asks Check (or CheckClient) before it
// touches storage.
package access

import (
	"github.com/BruksfildServices01/agent-crm/internal/httperr"
	"github.com/BruksfildServices01/agent-crm/internal/models"
)

type Capability string

const (
	CapViewClients   Capability = "view_clients"
	CapCreateClient  Capability = "create_client"
	CapEditClient    Capability = "edit_client"
	CapDeleteClient  Capability = "delete_client"
	CapClearClients  Capability = "clear_clients"
	CapCommentClient Capability = "comment_client"
	CapRecordCall    Capability = "record_call"
	CapAssignClient  Capability = "assign_client"
	CapImportClients Capability = "import_clients"
	CapExportClients Capability = "export_clients"
	CapCreateAgent   Capability = "create_agent"
	CapViewAgents    Capability = "view_agents"
	CapViewAudit     Capability = "view_audit"
)

const (
	ReasonLoginRequired = "Please log in first."
	ReasonAdminOnly     = "Access denied."
	ReasonNotAssigned   = "This client is not assigned to you."
	ReasonUnknownRole   = "Unknown role."
)

// Principal is the caller of an operation. The superuser has no user row,
// so its UserID is zero.
type Principal struct {
	UserID    uint
	Username  string
	Role      string
	Superuser bool
}

func (p Principal) Authenticated() bool {
	return p.Role != ""
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

func (p Principal) IsAgent() bool {
	return p.Role == models.RoleAgent
}

// Policy carries the configurable parts of the permission table.
type Policy struct {
	// AgentSeesAll lets agents see and work on every client, not only
	// their assigned ones.
	AgentSeesAll bool
	// ImportAnyAuthenticated lets any logged-in user import clients.
	ImportAnyAuthenticated bool
}

// Decision is either Allowed or Denied with a human-readable reason.
type Decision struct {
	Allowed bool
	Reason  string
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(reason string) Decision {
	return Decision{Reason: reason}
}

// Err converts a denial into a permission_denied business error.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return httperr.New(httperr.CodePermissionDenied, d.Reason)
}

func Check(p Principal, capability Capability, policy Policy) Decision {
	if !p.Authenticated() {
		return Deny(ReasonLoginRequired)
	}

	switch p.Role {
	case models.RoleAdmin:
		return Allow()
	case models.RoleAgent:
		return checkAgent(capability, policy)
	default:
		return Deny(ReasonUnknownRole)
	}
}

func checkAgent(capability Capability, policy Policy) Decision {
	switch capability {
	case CapViewClients, CapCreateClient, CapEditClient,
		CapCommentClient, CapRecordCall, CapExportClients:
		return Allow()
	case CapImportClients:
		if policy.ImportAnyAuthenticated {
			return Allow()
		}
		return Deny(ReasonAdminOnly)
	default:
		return Deny(ReasonAdminOnly)
	}
}

// CheckClient applies Check and then the ownership rule for one client.
func CheckClient(p Principal, capability Capability, client *models.Client, policy Policy) Decision {
	d := Check(p, capability, policy)
	if !d.Allowed || p.IsAdmin() || policy.AgentSeesAll {
		return d
	}

	if client != nil && client.AssignedAgentID != nil && *client.AssignedAgentID == p.UserID {
		return d
	}
	return Deny(ReasonNotAssigned)
}

// AgentScope returns the agent id listings must be restricted to, or nil
// when the caller sees every client.
func AgentScope(p Principal, policy Policy) *uint {
	if p.IsAdmin() || policy.AgentSeesAll {
		return nil
	}
	id := p.UserID
	return &id
}
