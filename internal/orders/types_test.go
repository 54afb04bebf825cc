package orders

import (
	"regexp"
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusPlaced, StatusProcessing, true},
		{StatusProcessing, StatusShipped, true},
		{StatusShipped, StatusOutForDelivery, true},
		{StatusOutForDelivery, StatusDelivered, true},
		{StatusPlaced, StatusCancelled, true},
		{StatusProcessing, StatusCancelled, true},
		{StatusShipped, StatusCancelled, false},
		{StatusOutForDelivery, StatusCancelled, false},
		{StatusDelivered, StatusProcessing, false},
		{StatusCancelled, StatusDelivered, false},
		{StatusPlaced, StatusShipped, false},
		{StatusProcessing, StatusDelivered, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestBucket(t *testing.T) {
	onDelivery := []string{StatusPlaced, StatusProcessing, StatusShipped, StatusOutForDelivery}
	for _, s := range onDelivery {
		if Bucket(s) != BucketOnDelivery {
			t.Errorf("Bucket(%q) = %q, want on-delivery", s, Bucket(s))
		}
	}
	if Bucket(StatusDelivered) != BucketReceived {
		t.Errorf("Delivered should be received")
	}
	if Bucket(StatusCancelled) != BucketCancelled {
		t.Errorf("Cancelled should be cancelled")
	}
	if Bucket("garbage") != "" {
		t.Errorf("unknown status should have no bucket")
	}
}

func TestCancellable(t *testing.T) {
	if !Cancellable(StatusPlaced) || !Cancellable(StatusProcessing) {
		t.Fatalf("placed and processing must be cancellable")
	}
	for _, s := range []string{StatusShipped, StatusOutForDelivery, StatusDelivered, StatusCancelled} {
		if Cancellable(s) {
			t.Errorf("%q must not be cancellable", s)
		}
	}
}

func TestNewOrderNumber(t *testing.T) {
	re := regexp.MustCompile(`^PFL-\d{6}-[0-9A-Z]{4}$`)
	now := time.Date(2024, 5, 3, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 20; i++ {
		n := NewOrderNumber(now)
		if !re.MatchString(n) {
			t.Fatalf("order number %q does not match format", n)
		}
	}
	// timestamp part is the trailing six digits of epoch millis
	got := NewOrderNumber(now)
	want := "714723200000"[6:] // UnixMilli = 1714723200000
	if got[4:10] != want {
		t.Fatalf("timestamp part %q, want %q", got[4:10], want)
	}
}

func TestKnownStatus(t *testing.T) {
	for _, s := range []string{StatusPlaced, StatusProcessing, StatusShipped, StatusOutForDelivery, StatusDelivered, StatusCancelled} {
		if !KnownStatus(s) {
			t.Errorf("%q should be known", s)
		}
	}
	if KnownStatus("Pending") {
		t.Errorf("Pending is not a storefront status")
	}
}
