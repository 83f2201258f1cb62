package unit

import (
	"context"
	"errors"
	"testing"

	authorization "tracechain/contexts/identity-access/authorization-service"
	domainerrors "tracechain/contexts/identity-access/authorization-service/domain/errors"
	authzhttp "tracechain/contexts/identity-access/authorization-service/transport/http"
)

func TestAuthorizationGrantThenCheck(t *testing.T) {
	module := authorization.NewInMemoryModule("admin-1", nil)

	grant, err := module.Handler.GrantAccessHandler(
		context.Background(),
		"admin-1",
		authzhttp.GrantAccessRequest{AccountID: "acct-m"},
	)
	if err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	if !grant.Authorized {
		t.Fatalf("expected authorized grant response")
	}

	check, err := module.Handler.CheckAccessHandler(context.Background(), "acct-m")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !check.Authorized {
		t.Fatalf("expected acct-m to be authorized")
	}
}

func TestAuthorizationGrantRequiresAdmin(t *testing.T) {
	module := authorization.NewInMemoryModule("admin-1", nil)

	_, err := module.Handler.GrantAccessHandler(
		context.Background(),
		"acct-m",
		authzhttp.GrantAccessRequest{AccountID: "acct-d"},
	)
	if !errors.Is(err, domainerrors.ErrAdminOnly) {
		t.Fatalf("expected admin only, got %v", err)
	}

	check, err := module.Handler.CheckAccessHandler(context.Background(), "acct-d")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if check.Authorized {
		t.Fatalf("denied grant must not authorize the account")
	}
}

func TestAuthorizationGrantIsIdempotent(t *testing.T) {
	module := authorization.NewInMemoryModule("admin-1", nil)

	for i := 0; i < 2; i++ {
		if _, err := module.Handler.GrantAccessHandler(
			context.Background(),
			"admin-1",
			authzhttp.GrantAccessRequest{AccountID: "acct-m"},
		); err != nil {
			t.Fatalf("grant attempt %d failed: %v", i+1, err)
		}
	}

	check, err := module.Handler.CheckAccessHandler(context.Background(), "acct-m")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !check.Authorized {
		t.Fatalf("expected acct-m to stay authorized")
	}
}

func TestAuthorizationRevoke(t *testing.T) {
	module := authorization.NewInMemoryModule("admin-1", nil)

	if _, err := module.Handler.GrantAccessHandler(
		context.Background(),
		"admin-1",
		authzhttp.GrantAccessRequest{AccountID: "acct-m"},
	); err != nil {
		t.Fatalf("grant failed: %v", err)
	}

	revoke, err := module.Handler.RevokeAccessHandler(
		context.Background(),
		"admin-1",
		authzhttp.RevokeAccessRequest{AccountID: "acct-m"},
	)
	if err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	if revoke.Authorized {
		t.Fatalf("expected revoked response")
	}

	check, err := module.Handler.CheckAccessHandler(context.Background(), "acct-m")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if check.Authorized {
		t.Fatalf("expected acct-m to lose access")
	}
}

func TestAuthorizationRevokeUnknownAccountIsNoOp(t *testing.T) {
	module := authorization.NewInMemoryModule("admin-1", nil)

	if _, err := module.Handler.RevokeAccessHandler(
		context.Background(),
		"admin-1",
		authzhttp.RevokeAccessRequest{AccountID: "acct-never"},
	); err != nil {
		t.Fatalf("revoking an unknown account must succeed: %v", err)
	}
}

func TestAuthorizationAdminImplicitlyAuthorized(t *testing.T) {
	module := authorization.NewInMemoryModule("admin-1", nil)

	check, err := module.Handler.CheckAccessHandler(context.Background(), "admin-1")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !check.Authorized {
		t.Fatalf("admin must always be authorized")
	}

	admin := module.Handler.GetAdminHandler(context.Background())
	if admin.AdminID != "admin-1" {
		t.Fatalf("expected admin-1, got %s", admin.AdminID)
	}
}

func TestAuthorizationBlankAccountsRejected(t *testing.T) {
	module := authorization.NewInMemoryModule("admin-1", nil)

	_, err := module.Handler.GrantAccessHandler(
		context.Background(),
		"admin-1",
		authzhttp.GrantAccessRequest{AccountID: "   "},
	)
	if !errors.Is(err, domainerrors.ErrInvalidAccountID) {
		t.Fatalf("expected invalid account id, got %v", err)
	}

	check, err := module.Handler.CheckAccessHandler(context.Background(), "")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if check.Authorized {
		t.Fatalf("blank account must never be authorized")
	}
}
