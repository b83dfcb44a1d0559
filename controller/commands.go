package controller

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tailored-agentic-units/deskagent/observability"
)

var commandHelp = [][2]string{
	{"/debug [on|off]", "toggle debug mode, or show it without an argument"},
	{"/reset", "start a new conversation context"},
	{"/tools", "list the available tools"},
	{"/help", "show this help"},
	{"exit, quit, 退出, 结束", "leave the assistant"},
}

// command handles a local command. Commands never reach the agent.
func (c *Controller) command(ctx context.Context, input string) {
	fields := strings.Fields(input)
	name, args := strings.ToLower(fields[0]), fields[1:]

	c.observe(ctx, EventCommand, observability.LevelVerbose, map[string]any{
		"command": name,
		"args":    len(args),
	})

	switch name {
	case "/debug":
		c.debugCommand(args)
	case "/reset":
		if err := c.reset(ctx, "command"); err != nil {
			c.printError(err.Error())
			return
		}
		c.printNotice("Started a new conversation context.")
	case "/tools":
		c.listTools()
	case "/help":
		c.help()
	default:
		c.printNotice(fmt.Sprintf("Unknown command %s. Type /help for the list of commands.", name))
	}
}

func (c *Controller) debugCommand(args []string) {
	if len(args) == 0 {
		c.printNotice(debugStatus(c.Debug()))
		return
	}

	switch strings.ToLower(args[0]) {
	case "on":
		c.SetDebug(true)
		c.printNotice("Debug mode enabled.")
	case "off":
		c.SetDebug(false)
		c.printNotice("Debug mode disabled.")
	case "query", "status":
		c.printNotice(debugStatus(c.Debug()))
	default:
		c.printNotice("Usage: /debug [on|off]")
	}
}

func debugStatus(on bool) string {
	if on {
		return "Debug mode is on."
	}
	return "Debug mode is off."
}

func (c *Controller) listTools() {
	offered := c.runner.Tools()
	if len(offered) == 0 {
		c.printNotice("No tools are available.")
		return
	}

	names := make([]string, 0, len(offered))
	for _, t := range offered {
		names = append(names, t.Name)
	}
	sort.Strings(names)

	fmt.Fprintln(c.out, titleStyle.Render(fmt.Sprintf("%d tools:", len(names))))
	for _, name := range names {
		fmt.Fprintln(c.out, "  "+name)
	}
}

func (c *Controller) help() {
	fmt.Fprintln(c.out, titleStyle.Render("Commands:"))
	for _, h := range commandHelp {
		fmt.Fprintf(c.out, "  %-24s %s\n", h[0], dimStyle.Render(h[1]))
	}
}
