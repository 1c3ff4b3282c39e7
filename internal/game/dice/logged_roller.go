package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged die rolling.
// All rolls are logged at debug level with die id, color, and face.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Source returns the underlying randomness provider.
func (r *Roller) Source() Source { return r.src }

// Roll rolls d once and logs the result.
//
// Precondition: d must be non-nil.
// Postcondition: result is one of d.Faces.
func (r *Roller) Roll(d *Die) int {
	v := d.Roll(r.src)
	r.logger.Debug("die roll",
		zap.String("die", d.ID),
		zap.String("color", string(d.Color)),
		zap.Int("face", v),
	)
	return v
}
