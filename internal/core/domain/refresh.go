package domain

import "time"

// ReloadAll is the reload target that tells every client to reload.
const ReloadAll = "*"

// ReloadType identifies a message sent to connected browsers.
type ReloadType string

const (
	// ReloadTypeFull asks clients to reload the page.
	ReloadTypeFull ReloadType = "full-reload"
	// ReloadTypeCSS asks clients to refresh stylesheets in place.
	ReloadTypeCSS ReloadType = "css"
)

// ReloadMessage is broadcast to connected clients.
type ReloadMessage struct {
	Type ReloadType `json:"type"`
	Path string     `json:"path,omitempty"`
}

// RefreshPolicy controls what is announced after a rebuild and when.
type RefreshPolicy struct {
	// Always reloads every client instead of only the changed path.
	Always bool
	// Delay is waited after the build completes and before the broadcast.
	Delay time.Duration
}

// Target returns the path a reload for changed should be broadcast for.
func (p RefreshPolicy) Target(changed string) string {
	if p.Always {
		return ReloadAll
	}
	return changed
}

// FullReload builds the reload message for a changed path.
func (p RefreshPolicy) FullReload(changed string) ReloadMessage {
	return ReloadMessage{Type: ReloadTypeFull, Path: p.Target(changed)}
}
