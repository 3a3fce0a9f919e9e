package realtime

// Frame is the websocket envelope used by the realtime gateway.
type Frame struct {
	Type   string  `json:"type"`
	Change *Change `json:"change,omitempty"`
	Error  string  `json:"error,omitempty"`
	Code   string  `json:"code,omitempty"`
}

const (
	FrameSubscribed = "subscribed"
	FrameChange     = "change"
	FrameError      = "error"
)
