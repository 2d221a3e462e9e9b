package token

import "testing"

func TestNewResetToken(t *testing.T) {
	raw, fp, err := NewResetToken()
	if err != nil {
		t.Fatalf("NewResetToken: %v", err)
	}
	if len(raw) != 43 || len(fp) != 43 {
		t.Fatalf("unexpected lengths: raw=%d fp=%d", len(raw), len(fp))
	}
	if raw == fp {
		t.Fatalf("fingerprint must differ from token")
	}
	if Fingerprint(raw) != fp {
		t.Fatalf("fingerprint is not deterministic")
	}

	raw2, _, _ := NewResetToken()
	if raw == raw2 {
		t.Fatalf("expected unique tokens")
	}
}
