package profiler_test

import (
	"strings"
	"testing"
	"time"

	"github.com/wippyai/gdnative/gdlog"
	"github.com/wippyai/gdnative/headless"
	"github.com/wippyai/gdnative/profiler"
	"github.com/wippyai/gdnative/sys"
)

func install(t *testing.T, opts ...headless.Option) *headless.Engine {
	t.Helper()
	eng := headless.New(opts...)
	bound, err := sys.Bind(eng.API())
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	sys.Install(bound)
	t.Cleanup(func() {
		sys.Uninstall()
		_ = eng.Close()
	})
	return eng
}

func TestSignatureFormat(t *testing.T) {
	if got := profiler.New("player.go", 12, "jump").String(); got != "player.go::12::jump" {
		t.Errorf("New = %q", got)
	}
	site := gdlog.Site{File: "/src/enemy.go", Line: 7, Function: "main.Enemy.Think"}
	if got := profiler.FromSite(site, "think").String(); got != "/src/enemy.go::7::think" {
		t.Errorf("FromSite = %q", got)
	}
	here := profiler.Here("here").String()
	if !strings.Contains(here, "profiler_test.go::") || !strings.HasSuffix(here, "::here") {
		t.Errorf("Here = %q", here)
	}
	if !(profiler.Signature{}).IsZero() || profiler.Raw("a::1::b").IsZero() {
		t.Error("IsZero")
	}
}

func TestSignatureRejectsSeparator(t *testing.T) {
	tests := []struct {
		name string
		file string
		tag  string
	}{
		{"file", "a::b.go", "tag"},
		{"tag", "a.go", "Class::method"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("no panic")
				}
			}()
			profiler.New(tt.file, 1, tt.tag)
		})
	}
}

func TestAddData(t *testing.T) {
	eng := install(t)
	sig := profiler.New("x.go", 1, "work")

	sig.AddData(1500 * time.Nanosecond)
	sig.AddData(3 * time.Millisecond)
	sig.AddData(-time.Second)
	got := eng.Profile(sig.String())
	want := []uint64{1, 3000, 0}
	if len(got) != len(want) {
		t.Fatalf("samples = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestProfile(t *testing.T) {
	eng := install(t)
	sig := profiler.New("x.go", 2, "answer")

	if got := profiler.Profile(sig, func() int { return 42 }); got != 42 {
		t.Errorf("Profile returned %d", got)
	}
	ran := false
	sig.Profile(func() { ran = true })
	if !ran {
		t.Error("Profile did not run fn")
	}
	if n := len(eng.Profile(sig.String())); n != 2 {
		t.Errorf("%d samples, want 2", n)
	}
}

func TestAddDataWithoutProfiler(t *testing.T) {
	sig := profiler.New("x.go", 3, "idle")
	sig.AddData(time.Millisecond)

	eng := install(t, headless.WithoutNativeScript11())
	sig.AddData(time.Millisecond)
	if sigs := eng.ProfileSignatures(); len(sigs) != 0 {
		t.Errorf("signatures = %v, want none", sigs)
	}
}
