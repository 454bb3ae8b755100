package lifecycle

import (
	"github.com/skyfall/arcade/internal/core/event"
	"go.uber.org/zap"
)

// FX starts presentation for a destroyed entity. Calls must not block and
// must not call back into the coordinator.
type FX interface {
	PlayDestruction(ref event.Ref)
}

// LogFX records destructions in the log. Used when no presentation layer is
// attached.
type LogFX struct {
	Log *zap.Logger
}

func (f LogFX) PlayDestruction(ref event.Ref) {
	f.Log.Debug("destruction fx",
		zap.Uint64("entity", uint64(ref.ID)),
		zap.String("category", ref.Category))
}
