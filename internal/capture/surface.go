package capture

import "github.com/leshachaplin/tracklog/internal/domain"

// Window is the host window's input surface.
type Window interface {
	OnPointerMove(fn func(domain.PointerNotification))
	OnClick(fn func(domain.PointerNotification))
	OnResize(fn func(domain.ResizeNotification))
	OnMessage(fn func(domain.HostMessage))
}

// Workspace is the editor workspace: its mutation feed, a block kind lookup
// and a serialization of the whole document.
type Workspace interface {
	domain.BlockResolver
	OnMutation(fn func(domain.Mutation))
	Snapshot() string
}
