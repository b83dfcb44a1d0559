// Package expert defines computer_expert_agent, the desktop operations
// assistant hosted by deskagent.
package expert

import (
	"fmt"
	"strings"

	"github.com/tailored-agentic-units/deskagent/agent"
)

// Name identifies the agent in the registry and in configuration.
const Name = "computer_expert_agent"

const description = "computer operation expert: guides users step by step through computer tasks and can call Windows tools and the tutorial"

// Tool groups offered to the model, in the order they are described in the
// system prompt.
var (
	SystemTools = []string{
		"get_system_info",
		"open_windows_tool",
		"get_running_processes",
		"check_disk_space",
		"find_file",
		"show_windows_version",
	}

	FileTools = []string{
		"create_folder",
		"delete_folder",
		"delete_file",
		"copy_file",
		"move_file",
		"list_directory",
		"create_text_file",
		"read_text_file",
		"get_file_info",
		"check_file_exists",
		"get_file_size",
		"get_desktop_path",
	}

	ReferenceTools = []string{
		"read_tutorial",
	}

	InputTools = []string{
		"get_mouse_position",
		"move_mouse",
		"move_mouse_relative",
		"click_mouse",
		"right_click_mouse",
		"double_click_mouse",
		"drag_mouse",
		"press_key",
		"type_text",
		"hotkey",
		"scroll_mouse",
		"safe_click_sequence",
		"safe_type_and_click",
	}

	ScreenTools = []string{
		"get_screen_size",
		"take_screenshot",
		"locate_on_screen",
		"locate_all_on_screen",
		"wait_for_image",
		"click_on_image",
		"wait_and_click_image",
		"capture_screen_region",
		"find_text_on_screen",
		"get_screen_color_at",
		"wait_for_color_change",
	}
)

const promptBody = `You are a computer operation expert who guides users step by step through computer tasks.

## Skills
### Skill 1: Guide computer operations
- Work out the specific task the user needs to perform.
- Give clear, step-by-step instructions so the user can finish it.
- Explain the purpose and likely result of each step.

### Skill 2: Troubleshooting
- Identify the concrete problem the user has run into.
- Offer a specific solution or suggestion that resolves it.

### Skill 3: Software installation and configuration
- Recommend suitable software for the user's needs.
- Give detailed installation steps and configuration guidance.
- Explain what the software does and how to use it.

## Constraints
- Offer exactly one method.
- Only give steps for Windows.
- Only answer questions about operating a computer.
- Assume basic computer literacy, keep steps detailed, and avoid jargon.

## Important
- For questions about Windows operations, troubleshooting, or files, call read_tutorial first and use the tutorial as reference.
- Use the tools below as the task requires, and base answers on the tutorial and on tool results.
- Pointer and keyboard actions act on the real desktop. Make sure each one is safe before running it.
- Keep pointer coordinates inside the screen. Call get_screen_size when unsure of the bounds.
`

// Definition returns the computer_expert_agent definition.
func Definition() agent.Definition {
	return agent.Definition{
		Name:         Name,
		Description:  description,
		SystemPrompt: SystemPrompt(),
		Tools:        Tools(),
	}
}

// Tools returns every tool name the agent offers.
func Tools() []string {
	var names []string
	for _, group := range [][]string{SystemTools, FileTools, ReferenceTools, InputTools, ScreenTools} {
		names = append(names, group...)
	}
	return names
}

// SystemPrompt returns the role prompt followed by the tool catalogue.
func SystemPrompt() string {
	var b strings.Builder
	b.WriteString(promptBody)
	b.WriteString("\n## Tools\n")

	groups := []struct {
		title string
		names []string
	}{
		{"Windows system", SystemTools},
		{"Files", FileTools},
		{"Tutorial", ReferenceTools},
		{"Mouse and keyboard", InputTools},
		{"Screen and vision", ScreenTools},
	}
	for _, g := range groups {
		fmt.Fprintf(&b, "- %s: %s\n", g.title, strings.Join(g.names, ", "))
	}
	return b.String()
}
