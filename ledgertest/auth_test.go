package ledgertest

import (
	"context"
	"reflect"
	"testing"

	"github.com/iov-one/ledger"
)

func TestAuthNoSigners(t *testing.T) {
	var a Auth

	if got := a.GetConditions(context.Background()); got != nil {
		t.Fatalf("unexpected conditions: %+v", got)
	}

	if a.HasAddress(context.Background(), NewCondition().Address()) {
		t.Fatal("random condition must not be present")
	}
}

func TestAuthUsingSignerAndSigners(t *testing.T) {
	ctx := context.Background()
	conds := []ledger.Condition{
		NewCondition(),
		NewCondition(),
		NewCondition(),
	}

	a := Auth{
		Signer:  conds[2],
		Signers: conds[:2],
	}

	if got := a.GetConditions(ctx); !reflect.DeepEqual(got, conds) {
		for i, c := range got {
			t.Logf("condition %d: %s", i, c)
		}
		t.Fatalf("unexpected conditions")
	}

	for i, c := range conds {
		if !a.HasAddress(ctx, c.Address()) {
			t.Errorf("condition %d (%s) address should be present", i, c)
		}
	}

	if a.HasAddress(ctx, NewCondition().Address()) {
		t.Fatal("random condition must not be present")
	}
}

func TestCtxAuth(t *testing.T) {
	perms := []ledger.Condition{
		NewCondition(),
		NewCondition(),
	}
	ctx := context.Background()

	a := CtxAuth{Key: "auth"}
	if got := a.GetConditions(ctx); got != nil {
		t.Fatalf("want nil, got %+v", got)
	}
	ctx = a.SetConditions(ctx, perms...)

	if got := a.GetConditions(ctx); !reflect.DeepEqual(got, perms) {
		for i, c := range got {
			t.Logf("condition %d: %s", i, c)
		}
		t.Fatal("unexpected conditions")
	}

	for i, p := range perms {
		if !a.HasAddress(ctx, p.Address()) {
			t.Errorf("condition %d (%s) address should be present", i, p)
		}
	}

	if a.HasAddress(ctx, NewCondition().Address()) {
		t.Fatal("random condition must not be present")
	}
}

func TestNewConditionIsUnique(t *testing.T) {
	a, b := NewCondition(), NewCondition()
	if a.Equals(b) {
		t.Fatal("conditions must differ")
	}
	if err := a.Validate(); err != nil {
		t.Fatalf("invalid condition: %s", err)
	}
}

func TestRoles(t *testing.T) {
	admin := NewAddress()
	r := Roles{"admin": {admin}}
	if !r.HasRole(context.Background(), nil, "admin", admin) {
		t.Fatal("admin role must be granted")
	}
	if r.HasRole(context.Background(), nil, "pool_manager", admin) {
		t.Fatal("pool_manager role must not be granted")
	}
}
