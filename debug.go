package ember

import (
	"go.uber.org/zap"
)

// LoopStats counts what the fixed-step loop has done since boot.
type LoopStats struct {
	// Ticks is the number of unpaused loop iterations.
	Ticks uint64
	// SubSteps is the total number of fixed World updates.
	SubSteps uint64
	// LastSubSteps is the number of World updates in the latest tick.
	LastSubSteps int
	// DroppedMS is the time discarded by the accumulator clamp.
	DroppedMS float64
	// PausedTicks counts iterations spent in the paused callback.
	PausedTicks uint64
}

// debugStatsInterval is how many ticks pass between loop stat logs in
// debug mode.
const debugStatsInterval = 600

// logStats writes the loop counters at debug level.
func (g *Game) logStats() {
	s := g.stats
	g.log.Debug("loop stats",
		zap.Uint64("ticks", s.Ticks),
		zap.Uint64("substeps", s.SubSteps),
		zap.Uint64("paused_ticks", s.PausedTicks),
		zap.Float64("dropped_ms", s.DroppedMS),
		zap.Float64("fps", g.time.FPS()),
		zap.Int("draw_commands", g.stage.CommandCount()),
		zap.Int("tweens", g.world.tweens.len()))
}

// debugMaxTreeDepth is the depth past which debug mode warns on Add.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node, log *zap.Logger) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		log.Warn("scene graph too deep",
			zap.String("node", n.Name),
			zap.Int("depth", depth),
			zap.Int("threshold", debugMaxTreeDepth))
	}
}

// debugMaxChildCount is the fan-out past which debug mode warns on Add.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node, log *zap.Logger) {
	if len(n.children) > debugMaxChildCount {
		log.Warn("node has many children",
			zap.String("node", n.Name),
			zap.Int("children", len(n.children)),
			zap.Int("threshold", debugMaxChildCount))
	}
}
