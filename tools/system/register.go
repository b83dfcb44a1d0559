package system

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/tailored-agentic-units/deskagent/core/protocol"
	"github.com/tailored-agentic-units/deskagent/tools"
)

// Entries returns the system introspection tool catalogue bound to s.
func (s *System) Entries() []tools.Entry {
	return []tools.Entry{
		{
			Tool: protocol.Tool{
				Name:        "get_system_info",
				Description: "Show the operating system, computer name, user, processor and memory.",
				Parameters:  tools.Object(map[string]any{}),
			},
			Handler: func(ctx context.Context, _ json.RawMessage) (tools.Result, error) {
				return s.Info(ctx), nil
			},
		},
		{
			Tool: protocol.Tool{
				Name:        "get_running_processes",
				Description: "List running processes sorted by memory use.",
				Parameters: tools.Object(map[string]any{
					"max_count": tools.Integer("Maximum number of processes to return (default 20)"),
				}),
			},
			Handler: func(ctx context.Context, raw json.RawMessage) (tools.Result, error) {
				a := struct {
					MaxCount int `json:"max_count"`
				}{MaxCount: defaultProcessCount}
				if err := tools.Decode(raw, &a); err != nil {
					return tools.Result{}, err
				}
				return s.Processes(ctx, a.MaxCount), nil
			},
		},
		{
			Tool: protocol.Tool{
				Name:        "check_disk_space",
				Description: "Show total, used and free space for every drive.",
				Parameters:  tools.Object(map[string]any{}),
			},
			Handler: func(ctx context.Context, _ json.RawMessage) (tools.Result, error) {
				return s.DiskSpace(ctx), nil
			},
		},
		{
			Tool: protocol.Tool{
				Name:        "find_file",
				Description: "Search a folder tree for files whose name matches a wildcard pattern such as *.txt.",
				Parameters: tools.Object(map[string]any{
					"file_name":   tools.String("File name or wildcard pattern"),
					"search_path": tools.String(`Folder to search (default C:\ on Windows, the home folder elsewhere)`),
					"max_results": tools.Integer("Stop after this many matches (default 50)"),
				}, "file_name"),
			},
			Handler: func(ctx context.Context, raw json.RawMessage) (tools.Result, error) {
				a := struct {
					FileName   string `json:"file_name"`
					SearchPath string `json:"search_path"`
					MaxResults int    `json:"max_results"`
				}{MaxResults: defaultMaxResults}
				if err := tools.Decode(raw, &a); err != nil {
					return tools.Result{}, err
				}
				if a.FileName == "" {
					return tools.Failure("file_name is required"), nil
				}
				return s.FindFile(ctx, a.FileName, a.SearchPath, a.MaxResults), nil
			},
		},
		{
			Tool: protocol.Tool{
				Name:        "show_windows_version",
				Description: "Show the detailed Windows version, build and installed hotfixes.",
				Parameters:  tools.Object(map[string]any{}),
			},
			Handler: func(ctx context.Context, _ json.RawMessage) (tools.Result, error) {
				return s.WindowsVersion(ctx), nil
			},
		},
		{
			Tool: protocol.Tool{
				Name:        "open_windows_tool",
				Description: "Open a Windows administration tool: " + strings.Join(ToolNames(), ", ") + ".",
				Parameters: tools.Object(map[string]any{
					"tool_name": tools.Enum("Tool to open", ToolNames()...),
				}, "tool_name"),
			},
			Handler: func(_ context.Context, raw json.RawMessage) (tools.Result, error) {
				var a struct {
					ToolName string `json:"tool_name"`
				}
				if err := tools.Decode(raw, &a); err != nil {
					return tools.Result{}, err
				}
				return s.OpenTool(a.ToolName), nil
			},
		},
	}
}
