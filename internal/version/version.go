// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Corner grade table, per-corner time loss, zoom-to-corner
// 0.2.0 - Track map and elevation views, speed/delta ribbon coloring
// 0.1.0 - Initial release: trace charts, lap delta, shared cursor, headless modes
