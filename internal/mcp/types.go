package mcp

import "github.com/1broseidon/framewm/internal/frame"

// EmptyInput is the input for tools that take no arguments.
type EmptyInput struct{}

// StatusOutput is the output for the get_status tool.
type StatusOutput struct {
	Display       string `json:"display"`
	ConfigPath    string `json:"config_path,omitempty"`
	FrameCount    int    `json:"frame_count"`
	Animations    bool   `json:"animations"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// ListFramesOutput is the output for the list_frames tool.
type ListFramesOutput struct {
	Frames []frame.State `json:"frames"`
}

// FrameInput addresses one framed client window.
type FrameInput struct {
	ClientID uint32 `json:"client_id" jsonschema:"X11 window id of the client, as reported by list_frames"`
}

// FrameActionOutput is the output for tools that act on one frame.
type FrameActionOutput struct {
	ClientID uint32 `json:"client_id"`
	Action   string `json:"action"`
	OK       bool   `json:"ok"`
}

// ReloadOutput is the output for the reload_config tool.
type ReloadOutput struct {
	Reloaded bool `json:"reloaded"`
}
