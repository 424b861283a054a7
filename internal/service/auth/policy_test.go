package auth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bookstore-service/bookstore/internal/model"
)

func TestAuthorize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		role model.Role
		op   Op
		want bool
	}{
		{name: "reader requests borrow", role: model.RoleReader, op: OpRequestBorrow, want: true},
		{name: "reader returns book", role: model.RoleReader, op: OpReturnBook, want: true},
		{name: "reader approves request", role: model.RoleReader, op: OpApproveRequest, want: false},
		{name: "reader rejects request", role: model.RoleReader, op: OpRejectRequest, want: false},
		{name: "reader sweeps overdue", role: model.RoleReader, op: OpMarkOverdue, want: false},
		{name: "reader marks lost", role: model.RoleReader, op: OpMarkLost, want: false},
		{name: "reader lists requests", role: model.RoleReader, op: OpListRequests, want: false},
		{name: "reader views any records", role: model.RoleReader, op: OpViewAnyRecords, want: false},
		{name: "librarian approves request", role: model.RoleLibrarian, op: OpApproveRequest, want: true},
		{name: "librarian rejects request", role: model.RoleLibrarian, op: OpRejectRequest, want: true},
		{name: "librarian sweeps overdue", role: model.RoleLibrarian, op: OpMarkOverdue, want: true},
		{name: "librarian manages inventory", role: model.RoleLibrarian, op: OpManageInventory, want: true},
		{name: "admin approves request", role: model.RoleAdmin, op: OpApproveRequest, want: true},
		{name: "admin requests borrow", role: model.RoleAdmin, op: OpRequestBorrow, want: true},
		{name: "unknown role", role: model.Role("guest"), op: OpRequestBorrow, want: false},
		{name: "unknown op", role: model.RoleAdmin, op: Op("drop_tables"), want: false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, Authorize(tt.role, tt.op))
		})
	}
}
