package filesystem

import (
	"context"
	"encoding/json"

	"github.com/tailored-agentic-units/deskagent/core/protocol"
	"github.com/tailored-agentic-units/deskagent/tools"
)

type pathArgs struct {
	FolderPath    string `json:"folder_path"`
	FilePath      string `json:"file_path"`
	DirectoryPath string `json:"directory_path"`
}

type transferArgs struct {
	SourcePath      string `json:"source_path"`
	DestinationPath string `json:"destination_path"`
}

// Entries returns the filesystem tool catalogue bound to f.
func (f *Files) Entries() []tools.Entry {
	return []tools.Entry{
		{
			Tool: protocol.Tool{
				Name:        "create_folder",
				Description: "Create a folder, including any missing parent folders. Succeeds if it already exists.",
				Parameters: tools.Object(map[string]any{
					"folder_path": tools.String("Path of the folder to create"),
				}, "folder_path"),
			},
			Handler: f.pathHandler(func(a pathArgs) tools.Result {
				return f.CreateFolder(a.FolderPath)
			}, "folder_path"),
		},
		{
			Tool: protocol.Tool{
				Name:        "delete_folder",
				Description: "Delete a folder. Without recursive only an empty folder is removed.",
				Parameters: tools.Object(map[string]any{
					"folder_path": tools.String("Path of the folder to delete"),
					"recursive":   tools.Boolean("Delete the folder and everything inside it (default false)"),
				}, "folder_path"),
			},
			Handler: func(_ context.Context, raw json.RawMessage) (tools.Result, error) {
				var a struct {
					FolderPath string `json:"folder_path"`
					Recursive  bool   `json:"recursive"`
				}
				if err := tools.Decode(raw, &a); err != nil {
					return tools.Result{}, err
				}
				if a.FolderPath == "" {
					return tools.Failure("folder_path is required"), nil
				}
				return f.DeleteFolder(a.FolderPath, a.Recursive), nil
			},
		},
		{
			Tool: protocol.Tool{
				Name:        "delete_file",
				Description: "Delete a single regular file.",
				Parameters: tools.Object(map[string]any{
					"file_path": tools.String("Path of the file to delete"),
				}, "file_path"),
			},
			Handler: f.pathHandler(func(a pathArgs) tools.Result {
				return f.DeleteFile(a.FilePath)
			}, "file_path"),
		},
		{
			Tool: protocol.Tool{
				Name:        "copy_file",
				Description: "Copy a file, creating the destination folder if needed.",
				Parameters:  transferSchema(),
			},
			Handler: f.transferHandler(f.CopyFile),
		},
		{
			Tool: protocol.Tool{
				Name:        "move_file",
				Description: "Move or rename a file, creating the destination folder if needed.",
				Parameters:  transferSchema(),
			},
			Handler: f.transferHandler(f.MoveFile),
		},
		{
			Tool: protocol.Tool{
				Name:        "list_directory",
				Description: "List the folders and files in a directory with file sizes.",
				Parameters: tools.Object(map[string]any{
					"directory_path": tools.String("Directory to list"),
					"show_hidden":    tools.Boolean("Include names starting with a dot (default false)"),
				}, "directory_path"),
			},
			Handler: func(_ context.Context, raw json.RawMessage) (tools.Result, error) {
				var a struct {
					DirectoryPath string `json:"directory_path"`
					ShowHidden    bool   `json:"show_hidden"`
				}
				if err := tools.Decode(raw, &a); err != nil {
					return tools.Result{}, err
				}
				if a.DirectoryPath == "" {
					return tools.Failure("directory_path is required"), nil
				}
				return f.ListDirectory(a.DirectoryPath, a.ShowHidden), nil
			},
		},
		{
			Tool: protocol.Tool{
				Name:        "create_text_file",
				Description: "Create or overwrite a UTF-8 text file, creating parent folders if needed.",
				Parameters: tools.Object(map[string]any{
					"file_path": tools.String("Path of the file to write"),
					"content":   tools.String("Text to write (default empty)"),
				}, "file_path"),
			},
			Handler: func(_ context.Context, raw json.RawMessage) (tools.Result, error) {
				var a struct {
					FilePath string `json:"file_path"`
					Content  string `json:"content"`
				}
				if err := tools.Decode(raw, &a); err != nil {
					return tools.Result{}, err
				}
				if a.FilePath == "" {
					return tools.Failure("file_path is required"), nil
				}
				return f.CreateTextFile(a.FilePath, a.Content), nil
			},
		},
		{
			Tool: protocol.Tool{
				Name:        "read_text_file",
				Description: "Read a UTF-8 text file. Output is capped at 10000 characters.",
				Parameters: tools.Object(map[string]any{
					"file_path": tools.String("Path of the file to read"),
					"max_lines": tools.Integer("Read at most this many lines"),
				}, "file_path"),
			},
			Handler: func(_ context.Context, raw json.RawMessage) (tools.Result, error) {
				var a struct {
					FilePath string `json:"file_path"`
					MaxLines int    `json:"max_lines"`
				}
				if err := tools.Decode(raw, &a); err != nil {
					return tools.Result{}, err
				}
				if a.FilePath == "" {
					return tools.Failure("file_path is required"), nil
				}
				return f.ReadTextFile(a.FilePath, a.MaxLines), nil
			},
		},
		{
			Tool: protocol.Tool{
				Name:        "get_file_info",
				Description: "Report a file's size, timestamps and read-only flag.",
				Parameters: tools.Object(map[string]any{
					"file_path": tools.String("Path of the file"),
				}, "file_path"),
			},
			Handler: f.pathHandler(func(a pathArgs) tools.Result {
				return f.GetFileInfo(a.FilePath)
			}, "file_path"),
		},
		{
			Tool: protocol.Tool{
				Name:        "check_file_exists",
				Description: "Check whether a file or folder exists.",
				Parameters: tools.Object(map[string]any{
					"file_path": tools.String("Path to check"),
				}, "file_path"),
			},
			Handler: f.pathHandler(func(a pathArgs) tools.Result {
				return f.CheckFileExists(a.FilePath)
			}, "file_path"),
		},
		{
			Tool: protocol.Tool{
				Name:        "get_file_size",
				Description: "Report a file's size in bytes.",
				Parameters: tools.Object(map[string]any{
					"file_path": tools.String("Path of the file"),
				}, "file_path"),
			},
			Handler: f.pathHandler(func(a pathArgs) tools.Result {
				return f.GetFileSize(a.FilePath)
			}, "file_path"),
		},
		{
			Tool: protocol.Tool{
				Name:        "get_desktop_path",
				Description: "Find the current user's desktop folder.",
				Parameters:  tools.Object(map[string]any{}),
			},
			Handler: func(context.Context, json.RawMessage) (tools.Result, error) {
				return f.GetDesktopPath(), nil
			},
		},
	}
}

func (f *Files) pathHandler(fn func(pathArgs) tools.Result, required string) tools.Handler {
	return func(_ context.Context, raw json.RawMessage) (tools.Result, error) {
		var a pathArgs
		if err := tools.Decode(raw, &a); err != nil {
			return tools.Result{}, err
		}
		value := map[string]string{
			"folder_path":    a.FolderPath,
			"file_path":      a.FilePath,
			"directory_path": a.DirectoryPath,
		}[required]
		if value == "" {
			return tools.Failure("%s is required", required), nil
		}
		return fn(a), nil
	}
}

func (f *Files) transferHandler(fn func(src, dst string) tools.Result) tools.Handler {
	return func(_ context.Context, raw json.RawMessage) (tools.Result, error) {
		var a transferArgs
		if err := tools.Decode(raw, &a); err != nil {
			return tools.Result{}, err
		}
		if a.SourcePath == "" || a.DestinationPath == "" {
			return tools.Failure("source_path and destination_path are required"), nil
		}
		return fn(a.SourcePath, a.DestinationPath), nil
	}
}

func transferSchema() map[string]any {
	return tools.Object(map[string]any{
		"source_path":      tools.String("Path of the existing file"),
		"destination_path": tools.String("Target path"),
	}, "source_path", "destination_path")
}
