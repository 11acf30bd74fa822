package gdlog_test

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/gdnative/gdlog"
	"github.com/wippyai/gdnative/headless"
)

func TestCoreLevels(t *testing.T) {
	eng := headless.New()
	defer eng.Close()
	log := gdlog.New(eng.API(), zapcore.DebugLevel)

	log.Debug("debug line")
	log.Info("ready", zap.Int("count", 2), zap.String("class", "Player"))
	log.Warn("careful")
	log.Error("broken", zap.Error(fmt.Errorf("boom")))

	logs := eng.Logs()
	if len(logs) != 4 {
		t.Fatalf("got %d entries: %+v", len(logs), logs)
	}
	wantLevels := []headless.Level{headless.LevelInfo, headless.LevelInfo, headless.LevelWarning, headless.LevelError}
	for i, want := range wantLevels {
		if logs[i].Level != want {
			t.Errorf("entry %d level = %s, want %s", i, logs[i].Level, want)
		}
	}
	if got := logs[1].Message; got != "ready class=Player count=2" {
		t.Errorf("message = %q", got)
	}
	errEntry := logs[3]
	if errEntry.Message != "broken error=boom" {
		t.Errorf("message = %q", errEntry.Message)
	}
	if filepath.Base(errEntry.File) != "core_test.go" || errEntry.Line == 0 {
		t.Errorf("caller = %s:%d", errEntry.File, errEntry.Line)
	}
	if !strings.Contains(errEntry.Function, "TestCoreLevels") {
		t.Errorf("function = %q", errEntry.Function)
	}
}

func TestLevelFiltering(t *testing.T) {
	eng := headless.New()
	defer eng.Close()
	log := gdlog.New(eng.API(), zapcore.WarnLevel)

	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("shown")

	if logs := eng.Logs(); len(logs) != 1 || logs[0].Message != "shown" {
		t.Fatalf("logs = %+v", logs)
	}
}

func TestSiteOverridesCaller(t *testing.T) {
	eng := headless.New()
	defer eng.Close()
	log := gdlog.New(eng.API(), zapcore.InfoLevel)

	site := gdlog.Site{File: "/src/player.go", Line: 42, Function: "game.(*Player).Jump"}
	log.With(zap.String("class", "Player")).Error("method panicked", gdlog.Field(site), zap.String("method", "jump"))

	errs := eng.LogsAt(headless.LevelError)
	if len(errs) != 1 {
		t.Fatalf("errors = %+v", errs)
	}
	e := errs[0]
	if e.File != site.File || e.Line != site.Line || e.Function != site.Function {
		t.Errorf("site = %s:%d %s", e.File, e.Line, e.Function)
	}
	if e.Message != "method panicked class=Player method=jump" {
		t.Errorf("message = %q", e.Message)
	}
}

func TestNamedLogger(t *testing.T) {
	eng := headless.New()
	defer eng.Close()
	gdlog.New(eng.API(), zapcore.InfoLevel).Named("export").Info("registered")

	if !eng.HasLog(headless.LevelInfo, "export: registered") {
		t.Errorf("logs = %+v", eng.Logs())
	}
}

func jump() {}

func TestSites(t *testing.T) {
	here := gdlog.Caller(0)
	if filepath.Base(here.File) != "core_test.go" || !strings.HasSuffix(here.Function, "TestSites") {
		t.Errorf("Caller(0) = %+v", here)
	}

	fs := gdlog.FuncSite(jump)
	if !strings.HasSuffix(fs.Function, ".jump") || fs.Line == 0 {
		t.Errorf("FuncSite = %+v", fs)
	}
	if !gdlog.FuncSite(nil).IsZero() {
		t.Error("FuncSite(nil) should be zero")
	}

	tests := []struct {
		site gdlog.Site
		want string
	}{
		{gdlog.Site{}, "<unknown>"},
		{gdlog.Site{File: "/a/b/c.go", Line: 3}, "c.go:3"},
		{gdlog.Site{File: "/a/b/c.go", Line: 3, Function: "pkg.F"}, "c.go:3 (pkg.F)"},
	}
	for _, tt := range tests {
		if got := tt.site.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
