package domain

import "strings"

// pathTopFrames is how many frames at the top of a composition path
// (html, document, window) are left out of the rendered ancestor path.
const pathTopFrames = 3

// Frame is one element of a DOM composition path.
type Frame struct {
	Tag   string `json:"tag"`
	ID    string `json:"id"`
	Class string `json:"class"`
}

func (f Frame) String() string {
	var sb strings.Builder
	sb.WriteString(strings.ToLower(f.Tag))
	if f.ID != "" {
		sb.WriteString("#")
		sb.WriteString(f.ID)
	}
	for _, class := range strings.Fields(f.Class) {
		sb.WriteString(".")
		sb.WriteString(class)
	}
	return sb.String()
}

// PointerNotification is a raw mouse notification from the host window.
// Path is ordered from the target element up to the window.
type PointerNotification struct {
	X           int     `json:"x"`
	Y           int     `json:"y"`
	SrcID       string  `json:"srcId"`
	SrcClass    string  `json:"srcClass"`
	SrcNodeName string  `json:"srcNodeName"`
	OuterHTML   string  `json:"outerHtml"`
	Path        []Frame `json:"path"`
}

type ResizeNotification struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// HostMessage arrives on the generic host-to-guest message channel.
type HostMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type PointerEvent struct {
	Base

	X               int
	Y               int
	SourceElementID string
	SourceClassName string
	SourceTagName   string

	// Set for clicks only.
	DOMSnapshot string
	Path        string
}

func NewPointerEvent(kind string, n PointerNotification) *PointerEvent {
	e := &PointerEvent{
		Base:            newBase(kind),
		X:               n.X,
		Y:               n.Y,
		SourceElementID: n.SrcID,
		SourceClassName: n.SrcClass,
		SourceTagName:   n.SrcNodeName,
	}
	if kind == KindClick {
		e.DOMSnapshot = n.OuterHTML
		e.Path = AncestorPath(n.Path)
	}
	return e
}

func (e *PointerEvent) Render() Record {
	r := e.header()
	r["x"] = e.X
	r["y"] = e.Y
	r["sourceElementId"] = e.SourceElementID
	r["sourceClassName"] = e.SourceClassName
	r["sourceTagName"] = e.SourceTagName
	if e.kind == KindClick {
		r["domSnapshot"] = e.DOMSnapshot
		r["path"] = e.Path
	}
	return r
}

// AncestorPath renders a composition path outermost first, joined by "/".
// The top pathTopFrames frames are dropped.
func AncestorPath(frames []Frame) string {
	if len(frames) <= pathTopFrames {
		return ""
	}
	frames = frames[:len(frames)-pathTopFrames]

	parts := make([]string, 0, len(frames))
	for i := len(frames) - 1; i >= 0; i-- {
		parts = append(parts, frames[i].String())
	}
	return strings.Join(parts, "/")
}
