package state

import (
	"context"
	"log"
	"testing"
	"time"

	"github.com/muesli/termenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"rtx/config"
	"rtx/style"
)

func TestContextWithEnv(t *testing.T) {
	env := EnvFromContext(ContextWithEnv(context.Background()))

	if env.start.IsZero() {
		t.Error("start time not set")
	}
	if env.Profile != termenv.Ascii {
		t.Errorf("Profile = %v, want Ascii until terminal is probed", env.Profile)
	}
	if env.Style.Key() != style.Default.Key() {
		t.Error("Style does not start from defaults")
	}
}

func TestContextWithEnv_Independent(t *testing.T) {
	a := EnvFromContext(ContextWithEnv(context.Background()))
	b := EnvFromContext(ContextWithEnv(context.Background()))
	a.Overwrite = true
	if b.Overwrite {
		t.Error("environments share state")
	}
}

func TestEnvFromContext_Missing(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic when env is not in context")
		}
	}()
	EnvFromContext(context.Background())
}

func TestLocalEnv_Uptime(t *testing.T) {
	env := &LocalEnv{start: time.Now().Add(-time.Minute)}
	if up := env.Uptime(); up < time.Minute || up > 2*time.Minute {
		t.Errorf("Uptime() = %v, want about a minute", up)
	}
}

func TestLocalEnv_RedirectStdLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	env := &LocalEnv{Cfg: &config.Config{Version: 1}, Log: zap.New(core)}

	for i := range 2 {
		env.RedirectStdLog()
		if env.restoreStdLog == nil {
			t.Fatalf("pass %d: restore function not set", i)
		}
		log.Print("from standard logger")
		env.RestoreStdLog()
	}

	if n := logs.FilterMessage("from standard logger").Len(); n != 2 {
		t.Errorf("got %d redirected entries, want 2", n)
	}
}

func TestLocalEnv_NoLogger(t *testing.T) {
	env := &LocalEnv{}

	// neither call may panic
	env.RedirectStdLog()
	if env.restoreStdLog != nil {
		t.Error("restore function set without logger")
	}
	env.RestoreStdLog()
}
