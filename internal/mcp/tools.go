package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/framewm/internal/frame"
)

func (s *Server) handleGetStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	status, err := s.daemon.GetStatus()
	if err != nil {
		return nil, StatusOutput{}, err
	}
	return nil, StatusOutput{
		Display:       status.Display,
		ConfigPath:    status.ConfigPath,
		FrameCount:    status.FrameCount,
		Animations:    status.Animations,
		UptimeSeconds: status.UptimeSeconds,
	}, nil
}

func (s *Server) handleListFrames(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ListFramesOutput, error) {
	frames, err := s.daemon.ListFrames()
	if err != nil {
		return nil, ListFramesOutput{}, err
	}
	if frames == nil {
		frames = []frame.State{}
	}
	return nil, ListFramesOutput{Frames: frames}, nil
}

func (s *Server) handleCloseFrame(_ context.Context, _ *mcpsdk.CallToolRequest, args FrameInput) (*mcpsdk.CallToolResult, FrameActionOutput, error) {
	return s.frameAction("close", args, s.daemon.CloseFrame)
}

func (s *Server) handleToggleMaximize(_ context.Context, _ *mcpsdk.CallToolRequest, args FrameInput) (*mcpsdk.CallToolResult, FrameActionOutput, error) {
	return s.frameAction("toggle_maximize", args, s.daemon.ToggleMaximize)
}

func (s *Server) handleMinimizeFrame(_ context.Context, _ *mcpsdk.CallToolRequest, args FrameInput) (*mcpsdk.CallToolResult, FrameActionOutput, error) {
	return s.frameAction("minimize", args, s.daemon.MinimizeFrame)
}

func (s *Server) frameAction(action string, args FrameInput, fn func(uint32) error) (*mcpsdk.CallToolResult, FrameActionOutput, error) {
	if args.ClientID == 0 {
		return nil, FrameActionOutput{}, fmt.Errorf("client_id is required")
	}
	if err := fn(args.ClientID); err != nil {
		return nil, FrameActionOutput{}, fmt.Errorf("%s %d: %w", action, args.ClientID, err)
	}
	return nil, FrameActionOutput{ClientID: args.ClientID, Action: action, OK: true}, nil
}

func (s *Server) handleReload(_ context.Context, _ *mcpsdk.CallToolRequest, _ EmptyInput) (*mcpsdk.CallToolResult, ReloadOutput, error) {
	if err := s.daemon.Reload(); err != nil {
		return nil, ReloadOutput{}, err
	}
	return nil, ReloadOutput{Reloaded: true}, nil
}
