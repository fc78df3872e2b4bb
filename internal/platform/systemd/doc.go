// Package systemd controls units through systemctl.
//
// Stop only returns once the unit is confirmed inactive, so callers may
// assume nothing is writing to the unit's state afterwards.
package systemd
