// Package policy decides who may do what. It is a pure function of the
// actor, the operation and the resource owner, with no request plumbing,
// so the whole access matrix is testable in isolation.
package policy

import "github.com/nix1947/statementTracker/internal/auth"

type Operation string

const (
	TxList      Operation = "transaction.list"
	TxRetrieve  Operation = "transaction.retrieve"
	TxCreate    Operation = "transaction.create"
	TxUpdate    Operation = "transaction.update"
	TxDelete    Operation = "transaction.delete"
	TxVerify    Operation = "transaction.verify"
	TxReconcile Operation = "transaction.reconcile"

	UserCreate   Operation = "user.create"
	UserList     Operation = "user.list"
	UserRetrieve Operation = "user.retrieve"
	UserUpdate   Operation = "user.update"
	UserDelete   Operation = "user.delete"

	BankList     Operation = "bank.list"
	BankRetrieve Operation = "bank.retrieve"
	BankCreate   Operation = "bank.create"
	BankUpdate   Operation = "bank.update"
	BankDelete   Operation = "bank.delete"
)

// Allow reports whether actor may perform op on the resource owned by
// ownerID. ownerID is the transaction's created_by, the target user's id,
// or empty for resources without an owner (banks, lists). A nil actor is
// an unauthenticated caller.
func Allow(actor *auth.Actor, op Operation, ownerID string) bool {
	switch op {
	case UserCreate:
		// Registration is open.
		return true

	case UserList, UserDelete, TxVerify, TxReconcile:
		return actor.Admin()

	case UserRetrieve, UserUpdate:
		return actor.Admin() || (actor.Authenticated() && actor.ID == ownerID)

	case TxList, TxCreate:
		return actor.Authenticated()

	case TxRetrieve, TxUpdate, TxDelete:
		// Staff reach every row; everyone else only their own.
		return actor.Admin() || (actor.Authenticated() && actor.ID == ownerID)

	case BankList, BankRetrieve, BankCreate, BankUpdate, BankDelete:
		return actor.Authenticated()
	}
	return false
}
