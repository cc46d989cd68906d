// Package viz draws recorded spring networks in the terminal.
//
//   - [Canvas]: Braille-based pixel canvas, 2x4 dots per cell
//   - [Scene]: fixtures, springs and the recorded path of every mass
//   - [ReplayModel]: Bubble Tea viewer stepping through a recorded run
//
// # Key Bindings
//
//	Space - Pause/Resume playback
//	[ ]   - Step backward/forward
//	+ -   - Playback speed
//	T     - Toggle trails
//	R     - Restart
//	Q     - Quit
//
// The viewer camera follows the network with a critically damped spring,
// so the view eases toward new bounds instead of jumping.
package viz
