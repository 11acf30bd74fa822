package ownership

import "testing"

func TestName(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{Name[Unique](), "Unique"},
		{Name[Shared](), "Shared"},
		{Name[ThreadLocal](), "ThreadLocal"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("Name = %q, want %q", tt.got, tt.want)
		}
	}
}

func TestIsThreadLocal(t *testing.T) {
	if !IsThreadLocal[ThreadLocal]() {
		t.Error("ThreadLocal should report true")
	}
	if IsThreadLocal[Shared]() || IsThreadLocal[Unique]() {
		t.Error("Shared and Unique should report false")
	}
}
