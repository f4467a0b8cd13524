package engine

import (
	"testing"
	"time"
)

func TestThrottle_SuppressesWithinWindow(t *testing.T) {
	th := NewThrottle(2 * time.Minute)
	base := int64(1_700_000_000_000)

	if !th.Allow("browser:com.android.chrome", "evil.ir", base) {
		t.Fatal("first signal suppressed")
	}
	if th.Allow("browser:com.android.chrome", "evil.ir", base+30_000) {
		t.Fatal("duplicate within window not suppressed")
	}
	if !th.Allow("browser:com.android.chrome", "evil.ir", base+121_000) {
		t.Fatal("signal after window elapsed still suppressed")
	}
}

func TestThrottle_IndependentKeys(t *testing.T) {
	th := NewThrottle(2 * time.Minute)
	base := int64(1_700_000_000_000)

	if !th.Allow("browser:com.android.chrome", "evil.ir", base) {
		t.Fatal("first signal suppressed")
	}
	if !th.Allow("browser:org.mozilla.firefox", "evil.ir", base+1) {
		t.Fatal("same signal from different source suppressed")
	}
	if !th.Allow("browser:com.android.chrome", "other.ir", base+2) {
		t.Fatal("different signal from same source suppressed")
	}
	if th.Len() != 3 {
		t.Fatalf("tracked %d keys, want 3", th.Len())
	}
}

func TestThrottle_UsesEventTimeNotWallClock(t *testing.T) {
	th := NewThrottle(time.Minute)
	// An event carrying an older timestamp than the anchor must still be
	// suppressed; the anchor only moves forward on allowed events.
	if !th.Allow("sms", "key", 200_000) {
		t.Fatal("first signal suppressed")
	}
	if th.Allow("sms", "key", 150_000) {
		t.Fatal("reordered older event not suppressed")
	}
}
