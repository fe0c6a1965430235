package ember

import (
	"fmt"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDebugTreeDepthWarning(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := zap.New(core)

	root := NewGroup("root", 0)
	current := root
	for i := 0; i < debugMaxTreeDepth+5; i++ {
		child := NewGroup(fmt.Sprintf("depth_%d", i), 0)
		current.AddChild(child)
		current = child
	}

	debugCheckTreeDepth(current, log)
	entries := logs.FilterMessage("scene graph too deep").All()
	if len(entries) != 1 {
		t.Fatalf("warnings = %d, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["depth"]; got != int64(debugMaxTreeDepth+6) {
		t.Errorf("depth field = %v", got)
	}

	debugCheckTreeDepth(root, log)
	if logs.Len() != 1 {
		t.Error("shallow node warned")
	}
}

func TestDebugChildCountWarning(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := zap.New(core)

	parent := NewGroup("many_children", 0)
	for i := 0; i < debugMaxChildCount; i++ {
		parent.AddChild(NewGroup("c", 0))
	}
	debugCheckChildCount(parent, log)
	if logs.Len() != 0 {
		t.Fatal("warned at the threshold")
	}
	parent.AddChild(NewGroup("c", 0))
	debugCheckChildCount(parent, log)
	if logs.FilterField(zap.String("node", "many_children")).Len() != 1 {
		t.Error("no warning past the threshold")
	}
}

func TestDebugLoopStatsLogged(t *testing.T) {
	h := newTestHost()
	cfg, logs := observedConfig()
	cfg.Debug = true
	cfg.Framerate = 50
	g := NewGame(h, cfg, Callbacks{Create: func() {}})
	for range debugStatsInterval {
		h.frame(20)
	}
	entries := logs.FilterMessage("loop stats").All()
	if len(entries) != 1 {
		t.Fatalf("loop stats logged %d times, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["ticks"] != uint64(debugStatsInterval) {
		t.Errorf("ticks field = %v", fields["ticks"])
	}
	if g.Stats().Ticks != debugStatsInterval {
		t.Errorf("Stats().Ticks = %d", g.Stats().Ticks)
	}
}

func TestDebugOffLogsNoStats(t *testing.T) {
	h := newTestHost()
	cfg, logs := observedConfig()
	cfg.Framerate = 50
	NewGame(h, cfg, Callbacks{Create: func() {}})
	for range debugStatsInterval {
		h.frame(20)
	}
	if logs.FilterMessage("loop stats").Len() != 0 {
		t.Error("stats logged outside debug mode")
	}
}
