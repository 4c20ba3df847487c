package cpu

// ReadTSC returns the processor's time-stamp counter: cycles since reset,
// used by kernel/time to derive a monotonic clock once calibrated against
// the HPET.
func ReadTSC() uint64
