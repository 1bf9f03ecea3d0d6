package logger

import "testing"

func TestSanitizeKVsRedactsSecrets(t *testing.T) {
	got := sanitizeKVs([]interface{}{"user_id", 7, "Authorization", "Bearer abc", "jwt_token", "x", "dangling"})

	want := []interface{}{"user_id", 7, "Authorization", "[REDACTED]", "jwt_token", "[REDACTED]", "dangling"}
	if len(got) != len(want) {
		t.Fatalf("unexpected length: got=%d want=%d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: got=%v want=%v", i, got[i], want[i])
		}
	}
}
