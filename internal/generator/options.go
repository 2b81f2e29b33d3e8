package generator

// Options configures the rejection-sampling search a Generator runs.
type Options struct {
	// MaxIterations bounds how many random bounding-box attempts Generate
	// will make before giving up.
	MaxIterations int
	// MaxShiftAttempts bounds how many local perturbations Generate tries
	// against a single chosen bounding box before moving to another.
	MaxShiftAttempts int
	// MaxBadAttempts bounds how many failed move-stack replays, counted
	// since the last reseed, Generate tolerates before abandoning the
	// current move stack and reseeding the mine layout from scratch.
	MaxBadAttempts int
}

// DefaultOptions returns the generator's standard search bounds.
func DefaultOptions() *Options {
	return &Options{
		MaxIterations:    1000,
		MaxShiftAttempts: 25,
		MaxBadAttempts:   100,
	}
}
