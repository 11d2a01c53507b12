package user

import "testing"

func TestValidRole(t *testing.T) {
	if !ValidRole(RoleRegular) || !ValidRole(RoleOperator) {
		t.Fatalf("expected built-in roles valid")
	}
	if ValidRole("admin") || ValidRole("") {
		t.Fatalf("expected unknown roles invalid")
	}
}

func TestDisplayName(t *testing.T) {
	if got := DisplayName("  Alice ", "a@example.com"); got != "Alice" {
		t.Fatalf("explicit name: %q", got)
	}
	if got := DisplayName("", "bob@example.com"); got != "bob" {
		t.Fatalf("email prefix fallback: %q", got)
	}
	if got := DisplayName("", "no-at-sign"); got != "no-at-sign" {
		t.Fatalf("raw email fallback: %q", got)
	}
}
