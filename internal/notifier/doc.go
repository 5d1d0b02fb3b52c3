// Package notifier pushes a digest of detected changes to external
// services (Discord, Slack, Telegram, email and friends) through
// shoutrrr service URLs.
//
// Notifications are best effort: a failed push is logged and reported
// but never fails the run, because the status files already carry the
// authoritative result.
package notifier
