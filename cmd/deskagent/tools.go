package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/deskagent/desktop"
	"github.com/tailored-agentic-units/deskagent/expert"
	"github.com/tailored-agentic-units/deskagent/mcpserver"
	"github.com/tailored-agentic-units/deskagent/tools"
)

var nameStyle = lipgloss.NewStyle().Bold(true)

func newToolsCmd(driver desktop.Driver, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools offered to the agent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, driver, opts)
			if err != nil {
				return err
			}

			names, err := a.agents.Tools(expert.Name)
			if err != nil {
				return err
			}
			offered, err := tools.Subset(names)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d tools\n", len(offered))
			for _, t := range offered {
				summary, _, _ := strings.Cut(t.Description, "\n")
				fmt.Fprintf(out, "  %s  %s\n", nameStyle.Render(fmt.Sprintf("%-26s", t.Name)), summary)
			}
			return nil
		},
	}
}

func newMCPCmd(driver desktop.Driver, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the tools over MCP on stdin and stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, driver, opts)
			if err != nil {
				return err
			}

			names, err := a.agents.Tools(expert.Name)
			if err != nil {
				return err
			}

			s := mcpserver.New(version, mcpserver.Registry{}, names...)
			a.logger.Info("serving MCP on stdio", "tools", len(names))
			return mcpserver.Serve(cmd.Context(), s, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
