// Package analysis provides frequency analysis of recorded trajectories.
//
//   - [FFT]: discrete Fourier transform of a real series
//   - [PowerSpectrum]: squared magnitude of the positive-frequency bins
//   - [DominantFrequency]: strongest non-DC frequency of a sampled series
//
// A spring pendulum swings and bounces at different rates; the dominant
// frequency of a mass's x coordinate gives the swing:
//
//	xs, _ := res.Trajectory.Mass(0)
//	f, err := analysis.DominantFrequency(xs, cfg.Dt())
package analysis
