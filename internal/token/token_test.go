package token

import (
	"strings"
	"testing"
)

func TestResolveBareTokens(t *testing.T) {
	tests := []struct {
		in   string
		kind Kind
		tok  string
	}{
		{"cust_abc123", KindCustomer, "cust_abc123"},
		{"biz_abc123", KindBusiness, "biz_abc123"},
		{"  cust_abc123  ", KindCustomer, "cust_abc123"},
		{"gift_abc123", KindUnknown, "gift_abc123"},
		{"", KindUnknown, ""},
		{"not a token at all", KindUnknown, "not a token at all"},
	}
	for _, tt := range tests {
		got := Resolve(tt.in)
		if got.Kind != tt.kind {
			t.Errorf("Resolve(%q).Kind = %v, want %v", tt.in, got.Kind, tt.kind)
		}
		if got.Token != tt.tok {
			t.Errorf("Resolve(%q).Token = %q, want %q", tt.in, got.Token, tt.tok)
		}
	}
}

func TestResolveURLEqualsBare(t *testing.T) {
	bare := Resolve("cust_X")
	viaURL := Resolve("https://example.com/scan?token=cust_X")
	if viaURL.Kind != bare.Kind || viaURL.Token != bare.Token {
		t.Errorf("URL form %+v differs from bare form %+v", viaURL, bare)
	}
}

func TestResolvePrefixBeatsPath(t *testing.T) {
	// Classification is driven by the token prefix, not the URL path.
	got := Resolve("https://x/customer?token=biz_abc")
	if got.Kind != KindBusiness {
		t.Errorf("Kind = %v, want KindBusiness", got.Kind)
	}
	if got.Token != "biz_abc" {
		t.Errorf("Token = %q, want biz_abc", got.Token)
	}
}

func TestResolveUnknownTokenParamNotRetried(t *testing.T) {
	// The URL itself contains cust_ in the path, but the token parameter
	// has no recognized prefix; the result stays unknown.
	got := Resolve("https://x/cust_path?token=weird_9")
	if got.Kind != KindUnknown {
		t.Errorf("Kind = %v, want KindUnknown", got.Kind)
	}
	if got.Token != "weird_9" {
		t.Errorf("Token = %q, want weird_9", got.Token)
	}
}

func TestResolveIsPure(t *testing.T) {
	inputs := []string{
		"cust_abc",
		"biz_abc",
		"https://example.com/?token=cust_abc&join=7&discount_id=3",
		"garbage",
	}
	for _, in := range inputs {
		a := Resolve(in)
		b := Resolve(in)
		if a != b {
			t.Errorf("Resolve(%q) not deterministic: %+v vs %+v", in, a, b)
		}
	}
}

func TestResolveQueryExtras(t *testing.T) {
	got := Resolve("https://example.com/c?token=cust_abc&join=42&discount_id=7")
	if got.Kind != KindCustomer {
		t.Fatalf("Kind = %v, want KindCustomer", got.Kind)
	}
	if got.JoinBusinessID != 42 {
		t.Errorf("JoinBusinessID = %d, want 42", got.JoinBusinessID)
	}
	if got.DiscountID != 7 {
		t.Errorf("DiscountID = %d, want 7", got.DiscountID)
	}

	// Malformed numeric parameters degrade to zero rather than erroring.
	got = Resolve("https://example.com/c?token=cust_abc&join=abc&discount_id=-1")
	if got.JoinBusinessID != 0 || got.DiscountID != 0 {
		t.Errorf("malformed ids should be zero, got %+v", got)
	}
}

func TestMinting(t *testing.T) {
	ct := NewCustomerToken()
	bt := NewBusinessToken()
	if !strings.HasPrefix(ct, CustomerPrefix) {
		t.Errorf("customer token %q lacks prefix", ct)
	}
	if !strings.HasPrefix(bt, BusinessPrefix) {
		t.Errorf("business token %q lacks prefix", bt)
	}
	if len(ct) != len(CustomerPrefix)+32 {
		t.Errorf("customer token suffix length = %d, want 32", len(ct)-len(CustomerPrefix))
	}
	if NewCustomerToken() == NewCustomerToken() {
		t.Error("two minted tokens collided")
	}
	// Minted tokens must round-trip through the resolver.
	if got := Resolve(ct); got.Kind != KindCustomer || got.Token != ct {
		t.Errorf("minted token did not resolve: %+v", got)
	}
}
