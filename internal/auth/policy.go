package auth

import (
	"github.com/frahmantamala/labtrack/internal"
)

type Operation string

const (
	OpAssetCreate   Operation = "asset:create"
	OpAssetUpdate   Operation = "asset:update"
	OpAssetDelete   Operation = "asset:delete"
	OpTicketCreate  Operation = "ticket:create"
	OpTicketRead    Operation = "ticket:read"
	OpTicketUpdate  Operation = "ticket:update"
	OpTicketAssign  Operation = "ticket:assign"
	OpTicketDelete  Operation = "ticket:delete"
	OpCommentCreate Operation = "comment:create"
	OpCommentDelete Operation = "comment:delete"
	OpUserList      Operation = "user:list"
)

type Decision int

const (
	Deny Decision = iota
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// Resource carries the ownership facts an operation is evaluated against.
// Zero values mean "not applicable".
type Resource struct {
	CreatorID  int64
	AssigneeID *int64
	AuthorID   int64
}

func TicketResource(createdBy int64, assignedTo *int64) Resource {
	return Resource{CreatorID: createdBy, AssigneeID: assignedTo}
}

func CommentResource(authorID int64) Resource {
	return Resource{AuthorID: authorID}
}

type ownershipRule func(actor *User, res Resource) bool

// operations open to any authenticated actor
var anyActor = map[Operation]bool{
	OpTicketCreate: true,
}

// operations decided by role alone
var roleGrants = map[Operation][]Role{
	OpAssetCreate:  {RoleAdmin, RoleEngineer},
	OpAssetUpdate:  {RoleAdmin, RoleEngineer},
	OpAssetDelete:  {RoleAdmin},
	OpTicketAssign: {RoleAdmin},
	OpTicketDelete: {RoleAdmin},
	OpUserList:     {RoleAdmin},
}

// operations where Admin always passes and everyone else needs ownership
var ownershipRules = map[Operation]ownershipRule{
	OpTicketRead:    isTicketParticipant,
	OpTicketUpdate:  isTicketParticipant,
	OpCommentCreate: isTicketParticipant,
	OpCommentDelete: isCommentAuthor,
}

func isTicketParticipant(actor *User, res Resource) bool {
	if res.CreatorID != 0 && res.CreatorID == actor.ID {
		return true
	}
	return res.AssigneeID != nil && *res.AssigneeID == actor.ID
}

func isCommentAuthor(actor *User, res Resource) bool {
	return res.AuthorID != 0 && res.AuthorID == actor.ID
}

// Policy is the single place where authorization decisions are made.
type Policy struct{}

func NewPolicy() *Policy {
	return &Policy{}
}

// Evaluate is a pure function of operation, actor and ownership facts.
func (p *Policy) Evaluate(op Operation, actor *User, res Resource) Decision {
	if actor == nil || actor.ID <= 0 {
		return Deny
	}
	if anyActor[op] {
		return Allow
	}
	if granted, ok := roleGrants[op]; ok {
		for _, r := range granted {
			if actor.Role == r {
				return Allow
			}
		}
		return Deny
	}
	if rule, ok := ownershipRules[op]; ok {
		if actor.IsAdmin() || rule(actor, res) {
			return Allow
		}
	}
	return Deny
}

// Authorize returns a FORBIDDEN AppError when the operation is denied.
func (p *Policy) Authorize(op Operation, actor *User, res Resource) error {
	if p.Evaluate(op, actor, res) == Allow {
		return nil
	}
	if op == OpTicketAssign {
		return internal.ErrAssignNeedsAdmin
	}
	return internal.ErrAccessDenied
}

// IsRoleOnly reports whether op can be decided without loading the resource,
// which is what the routing layer checks.
func (p *Policy) IsRoleOnly(op Operation) bool {
	_, ok := roleGrants[op]
	return ok || anyActor[op]
}

// TicketListScope returns the user id ticket listings must be restricted to
// (creator or assignee). Admins see everything.
func (p *Policy) TicketListScope(actor *User) (int64, bool) {
	if actor.IsAdmin() {
		return 0, false
	}
	return actor.ID, true
}
