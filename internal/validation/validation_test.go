package validation

import "testing"

func intPtr(n int) *int { return &n }

func TestProductRequest_Valid(t *testing.T) {
	v := New()

	req := ProductRequest{
		Name:        "Lavender Plant",
		Description: "Fragrant lavender plant, attracts pollinators.",
		Category:    "plants",
		ImageURL:    "https://example.com/lavender.png",
		Price:       325.00,
		Stock:       intPtr(0), // zero stock is a valid state
	}
	if err := v.Struct(req); err != nil {
		t.Fatalf("expected valid, got error: %v", err)
	}
}

func TestProductRequest_Invalid(t *testing.T) {
	v := New()

	cases := map[string]ProductRequest{
		"blank name": {
			Name: "   ", Description: "d", Category: "seeds",
			ImageURL: "u", Price: 10, Stock: intPtr(1),
		},
		"bad category": {
			Name: "n", Description: "d", Category: "tools",
			ImageURL: "u", Price: 10, Stock: intPtr(1),
		},
		"zero price": {
			Name: "n", Description: "d", Category: "seeds",
			ImageURL: "u", Price: 0, Stock: intPtr(1),
		},
		"negative stock": {
			Name: "n", Description: "d", Category: "seeds",
			ImageURL: "u", Price: 10, Stock: intPtr(-1),
		},
		"missing stock": {
			Name: "n", Description: "d", Category: "seeds",
			ImageURL: "u", Price: 10,
		},
	}
	for name, req := range cases {
		if err := v.Struct(req); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestCheckoutRequest_PhoneFormats(t *testing.T) {
	v := New()

	valid := []string{"+63 912 345 6789", "09123456789", "(02) 8888-7777"}
	for _, phone := range valid {
		req := CheckoutRequest{CustomerInfo: CustomerInfo{
			Name: "Maria Santos", Address: "12 Mabini St", PhoneNumber: phone,
		}}
		if err := v.Struct(req); err != nil {
			t.Errorf("expected %q valid: %v", phone, err)
		}
	}

	invalid := []string{"", "12345", "call me maybe", "+63#9123456789"}
	for _, phone := range invalid {
		req := CheckoutRequest{CustomerInfo: CustomerInfo{
			Name: "Maria Santos", Address: "12 Mabini St", PhoneNumber: phone,
		}}
		if err := v.Struct(req); err == nil {
			t.Errorf("expected %q invalid", phone)
		}
	}
}

func TestCheckoutRequest_RequiredFields(t *testing.T) {
	v := New()

	req := CheckoutRequest{CustomerInfo: CustomerInfo{
		Name: "", Address: "  ", PhoneNumber: "09123456789",
	}}
	if err := v.Struct(req); err == nil {
		t.Fatal("expected validation errors for blank name/address")
	}
}

func TestStatusUpdateRequest(t *testing.T) {
	v := New()

	if err := v.Struct(StatusUpdateRequest{Status: "Shipped", TrackingNumber: "TRK-9"}); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	if err := v.Struct(StatusUpdateRequest{}); err == nil {
		t.Fatal("expected error for missing status")
	}
}
