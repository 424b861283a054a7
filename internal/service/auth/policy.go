package auth

import (
	"github.com/bookstore-service/bookstore/internal/model"
)

type Op string

const (
	OpRequestBorrow   Op = "request_borrow"
	OpApproveRequest  Op = "approve_request"
	OpRejectRequest   Op = "reject_request"
	OpReturnBook      Op = "return_book"
	OpMarkOverdue     Op = "mark_overdue"
	OpMarkLost        Op = "mark_lost"
	OpListRequests    Op = "list_requests"
	OpViewAnyRecords  Op = "view_any_records"
	OpManageInventory Op = "manage_inventory"
)

// policy is the whole authorization model: one table, no dispatch. Ownership
// checks (a reader acting on its own record) live in the borrow service.
var policy = map[Op]map[model.Role]bool{
	OpRequestBorrow: {
		model.RoleReader: true, model.RoleLibrarian: true, model.RoleAdmin: true,
	},
	OpReturnBook: {
		model.RoleReader: true, model.RoleLibrarian: true, model.RoleAdmin: true,
	},
	OpApproveRequest: {
		model.RoleLibrarian: true, model.RoleAdmin: true,
	},
	OpRejectRequest: {
		model.RoleLibrarian: true, model.RoleAdmin: true,
	},
	OpMarkOverdue: {
		model.RoleLibrarian: true, model.RoleAdmin: true,
	},
	OpMarkLost: {
		model.RoleLibrarian: true, model.RoleAdmin: true,
	},
	OpListRequests: {
		model.RoleLibrarian: true, model.RoleAdmin: true,
	},
	OpViewAnyRecords: {
		model.RoleLibrarian: true, model.RoleAdmin: true,
	},
	OpManageInventory: {
		model.RoleLibrarian: true, model.RoleAdmin: true,
	},
}

func Authorize(role model.Role, op Op) bool {
	allowed, ok := policy[op]
	if !ok {
		return false
	}
	return allowed[role]
}
