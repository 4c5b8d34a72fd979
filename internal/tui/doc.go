// Package tui is the terminal view host. It renders the synchronizer's visual
// output with bubbletea and drives the cooperative reload from frame ticks:
// every frame runs the slices queued before it, so a long reload advances a
// budgeted step per frame while the terminal stays responsive.
package tui
