package domain

import "testing"

func TestReferralActionOutcome(t *testing.T) {
	cases := []struct {
		action     ReferralAction
		status     ReferralStatus
		commission bool
		ok         bool
	}{
		{ReferralActionAccept, ReferralStatusAccepted, true, true},
		{ReferralActionReject, ReferralStatusRejected, false, true},
		{ReferralAction("approve"), "", false, false},
		{ReferralAction(""), "", false, false},
	}
	for _, tc := range cases {
		status, commission, ok := tc.action.Outcome()
		if status != tc.status || commission != tc.commission || ok != tc.ok {
			t.Errorf("%q: got (%s, %v, %v) want (%s, %v, %v)", tc.action, status, commission, ok, tc.status, tc.commission, tc.ok)
		}
	}
}

func TestReferralStatusTerminal(t *testing.T) {
	if ReferralStatusPending.Terminal() {
		t.Fatal("pending must not be terminal")
	}
	for _, s := range []ReferralStatus{ReferralStatusAccepted, ReferralStatusRejected, ReferralStatusTimeout} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	if ReferralStatus("archived").Valid() {
		t.Error("unknown status reported valid")
	}
}

func TestActorFromUser(t *testing.T) {
	firm := "firm-1"
	u := &User{ID: 7, Role: RoleFirmManager, FirmID: &firm}
	a := ActorFromUser(u)
	if !a.Authenticated() || !a.IsManager() || a.IsSuperuser() || !a.HasFirm() {
		t.Fatalf("unexpected actor flags: %+v", a)
	}
	firm = "changed"
	if *a.FirmID != "firm-1" {
		t.Fatal("actor must not alias the user's firm pointer")
	}
	if Anonymous().Authenticated() || Anonymous().IsManager() {
		t.Fatal("anonymous actor must carry no capabilities")
	}
	admin := ActorFromUser(&User{ID: 1, Role: RoleAdmin})
	if !admin.IsSuperuser() || !admin.IsManager() || admin.HasFirm() {
		t.Fatalf("unexpected admin flags: %+v", admin)
	}
}

func TestServicePriceRangeValid(t *testing.T) {
	s := Service{}
	if !s.PriceRangeValid() {
		t.Fatal("open range must be valid")
	}
	s.PriceMin = nullDec("100")
	if !s.PriceRangeValid() {
		t.Fatal("min-only range must be valid")
	}
	s.PriceMax = nullDec("50")
	if s.PriceRangeValid() {
		t.Fatal("min > max must be invalid")
	}
	s.PriceMax = nullDec("100")
	if !s.PriceRangeValid() {
		t.Fatal("min == max must be valid")
	}
}
