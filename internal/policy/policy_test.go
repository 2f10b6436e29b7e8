package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nix1947/statementTracker/internal/auth"
)

var (
	anonymous *auth.Actor
	owner     = &auth.Actor{ID: "owner", IsActive: true}
	stranger  = &auth.Actor{ID: "stranger", IsActive: true}
	admin     = &auth.Actor{ID: "admin", IsActive: true, IsStaff: true}
	disabled  = &auth.Actor{ID: "disabled", IsStaff: true}
)

func TestAllowMatrix(t *testing.T) {
	cases := []struct {
		name    string
		actor   *auth.Actor
		op      Operation
		ownerID string
		want    bool
	}{
		{"registration is open", anonymous, UserCreate, "", true},

		{"anonymous cannot list transactions", anonymous, TxList, "", false},
		{"user lists transactions", stranger, TxList, "", true},
		{"user creates transactions", stranger, TxCreate, "", true},

		{"owner reads own transaction", owner, TxRetrieve, "owner", true},
		{"stranger cannot read others", stranger, TxRetrieve, "owner", false},
		{"admin reads any transaction", admin, TxRetrieve, "owner", true},
		{"owner updates own transaction", owner, TxUpdate, "owner", true},
		{"stranger cannot delete others", stranger, TxDelete, "owner", false},

		{"verify is admin only", owner, TxVerify, "owner", false},
		{"admin verifies", admin, TxVerify, "owner", true},
		{"reconcile is admin only", stranger, TxReconcile, "owner", false},
		{"admin reconciles", admin, TxReconcile, "owner", true},
		{"disabled staff cannot reconcile", disabled, TxReconcile, "owner", false},

		{"user list is admin only", stranger, UserList, "", false},
		{"admin lists users", admin, UserList, "", true},
		{"self retrieve", owner, UserRetrieve, "owner", true},
		{"cannot retrieve other user", stranger, UserRetrieve, "owner", false},
		{"admin retrieves any user", admin, UserRetrieve, "owner", true},
		{"self update", owner, UserUpdate, "owner", true},
		{"user delete is admin only", owner, UserDelete, "owner", false},

		{"banks need authentication", anonymous, BankCreate, "", false},
		{"any authenticated user manages banks", stranger, BankDelete, "", true},

		{"unknown operation denied", admin, Operation("bogus"), "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Allow(tc.actor, tc.op, tc.ownerID))
		})
	}
}
