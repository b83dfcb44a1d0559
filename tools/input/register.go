package input

import (
	"context"
	"encoding/json"

	"github.com/tailored-agentic-units/deskagent/core/protocol"
	"github.com/tailored-agentic-units/deskagent/tools"
)

func buttonSchema() map[string]any {
	return tools.Enum("Mouse button (default left)", "left", "right", "middle")
}

// Entries returns the pointer and keyboard tool catalogue bound to in.
func (in *Input) Entries() []tools.Entry {
	optionalPoint := map[string]any{
		"x": tools.Integer("X coordinate; omit with y to use the current position"),
		"y": tools.Integer("Y coordinate; omit with x to use the current position"),
	}

	return []tools.Entry{
		{
			Tool: protocol.Tool{
				Name:        "get_mouse_position",
				Description: "Report the current mouse pointer position.",
				Parameters:  tools.Object(map[string]any{}),
			},
			Handler: func(context.Context, json.RawMessage) (tools.Result, error) {
				return in.Position(), nil
			},
		},
		{
			Tool: protocol.Tool{
				Name:        "move_mouse",
				Description: "Move the mouse pointer to an absolute screen position.",
				Parameters: tools.Object(map[string]any{
					"x":        tools.Integer("Target X coordinate"),
					"y":        tools.Integer("Target Y coordinate"),
					"duration": tools.Number("Seconds the movement takes (default 0.2)"),
				}, "x", "y"),
			},
			Handler: func(ctx context.Context, raw json.RawMessage) (tools.Result, error) {
				a := struct {
					X        int     `json:"x"`
					Y        int     `json:"y"`
					Duration float64 `json:"duration"`
				}{Duration: defaultMoveDuration.Seconds()}
				if err := tools.Decode(raw, &a); err != nil {
					return tools.Result{}, err
				}
				return in.Move(ctx, a.X, a.Y, tools.Seconds(a.Duration)), nil
			},
		},
		{
			Tool: protocol.Tool{
				Name:        "move_mouse_relative",
				Description: "Move the mouse pointer relative to its current position.",
				Parameters: tools.Object(map[string]any{
					"dx":       tools.Integer("Horizontal offset"),
					"dy":       tools.Integer("Vertical offset"),
					"duration": tools.Number("Seconds the movement takes (default 0.2)"),
				}, "dx", "dy"),
			},
			Handler: func(ctx context.Context, raw json.RawMessage) (tools.Result, error) {
				a := struct {
					DX       int     `json:"dx"`
					DY       int     `json:"dy"`
					Duration float64 `json:"duration"`
				}{Duration: defaultMoveDuration.Seconds()}
				if err := tools.Decode(raw, &a); err != nil {
					return tools.Result{}, err
				}
				return in.MoveRelative(ctx, a.DX, a.DY, tools.Seconds(a.Duration)), nil
			},
		},
		{
			Tool: protocol.Tool{
				Name:        "click_mouse",
				Description: "Click a mouse button at a position, or at the current position if none is given.",
				Parameters: tools.Object(map[string]any{
					"x":      optionalPoint["x"],
					"y":      optionalPoint["y"],
					"button": buttonSchema(),
					"clicks": tools.Integer("Number of clicks (default 1)"),
				}),
			},
			Handler: func(ctx context.Context, raw json.RawMessage) (tools.Result, error) {
				a := struct {
					X      *int   `json:"x"`
					Y      *int   `json:"y"`
					Button string `json:"button"`
					Clicks int    `json:"clicks"`
				}{Button: "left", Clicks: 1}
				if err := tools.Decode(raw, &a); err != nil {
					return tools.Result{}, err
				}
				return in.Click(ctx, a.X, a.Y, a.Button, a.Clicks), nil
			},
		},
		{
			Tool: protocol.Tool{
				Name:        "right_click_mouse",
				Description: "Right-click at a position, or at the current position if none is given.",
				Parameters:  tools.Object(optionalPoint),
			},
			Handler: in.pointHandler("right", 1),
		},
		{
			Tool: protocol.Tool{
				Name:        "double_click_mouse",
				Description: "Double-click the left button at a position, or at the current position if none is given.",
				Parameters:  tools.Object(optionalPoint),
			},
			Handler: in.pointHandler("left", 2),
		},
		{
			Tool: protocol.Tool{
				Name:        "drag_mouse",
				Description: "Press a button at the start point, drag to the end point and release.",
				Parameters: tools.Object(map[string]any{
					"start_x":  tools.Integer("Start X coordinate"),
					"start_y":  tools.Integer("Start Y coordinate"),
					"end_x":    tools.Integer("End X coordinate"),
					"end_y":    tools.Integer("End Y coordinate"),
					"duration": tools.Number("Seconds the drag takes (default 0.5)"),
					"button":   buttonSchema(),
				}, "start_x", "start_y", "end_x", "end_y"),
			},
			Handler: func(ctx context.Context, raw json.RawMessage) (tools.Result, error) {
				a := struct {
					StartX   int     `json:"start_x"`
					StartY   int     `json:"start_y"`
					EndX     int     `json:"end_x"`
					EndY     int     `json:"end_y"`
					Duration float64 `json:"duration"`
					Button   string  `json:"button"`
				}{Duration: defaultDragDuration.Seconds(), Button: "left"}
				if err := tools.Decode(raw, &a); err != nil {
					return tools.Result{}, err
				}
				return in.Drag(ctx, a.StartX, a.StartY, a.EndX, a.EndY, tools.Seconds(a.Duration), a.Button), nil
			},
		},
		{
			Tool: protocol.Tool{
				Name: "press_key",
				Description: "Press and release one key, such as enter, esc, tab, space, backspace, delete, " +
					"up, down, left, right, home, end, pageup, pagedown or f1 to f12.",
				Parameters: tools.Object(map[string]any{
					"key": tools.String("Key name"),
				}, "key"),
			},
			Handler: func(_ context.Context, raw json.RawMessage) (tools.Result, error) {
				var a struct {
					Key string `json:"key"`
				}
				if err := tools.Decode(raw, &a); err != nil {
					return tools.Result{}, err
				}
				return in.PressKey(a.Key), nil
			},
		},
		{
			Tool: protocol.Tool{
				Name:        "type_text",
				Description: "Type text at the current keyboard focus.",
				Parameters: tools.Object(map[string]any{
					"text":     tools.String("Text to type"),
					"interval": tools.Number("Seconds between characters (default 0.05)"),
				}, "text"),
			},
			Handler: func(ctx context.Context, raw json.RawMessage) (tools.Result, error) {
				a := struct {
					Text     string  `json:"text"`
					Interval float64 `json:"interval"`
				}{Interval: defaultTypeInterval.Seconds()}
				if err := tools.Decode(raw, &a); err != nil {
					return tools.Result{}, err
				}
				return in.TypeText(ctx, a.Text, tools.Seconds(a.Interval)), nil
			},
		},
		{
			Tool: protocol.Tool{
				Name:        "hotkey",
				Description: "Press a key combination, for example [\"ctrl\", \"c\"] to copy.",
				Parameters: tools.Object(map[string]any{
					"keys": tools.Array("Keys in press order; the last key is tapped while the others are held", tools.String("")),
				}, "keys"),
			},
			Handler: func(_ context.Context, raw json.RawMessage) (tools.Result, error) {
				var a struct {
					Keys []string `json:"keys"`
				}
				if err := tools.Decode(raw, &a); err != nil {
					return tools.Result{}, err
				}
				return in.Hotkey(a.Keys), nil
			},
		},
		{
			Tool: protocol.Tool{
				Name:        "scroll_mouse",
				Description: "Scroll the mouse wheel. Positive amounts scroll up, negative amounts scroll down.",
				Parameters: tools.Object(map[string]any{
					"amount": tools.Integer("Scroll amount"),
				}, "amount"),
			},
			Handler: func(_ context.Context, raw json.RawMessage) (tools.Result, error) {
				var a struct {
					Amount int `json:"amount"`
				}
				if err := tools.Decode(raw, &a); err != nil {
					return tools.Result{}, err
				}
				return in.Scroll(a.Amount), nil
			},
		},
		{
			Tool: protocol.Tool{
				Name:        "safe_click_sequence",
				Description: "Perform several clicks in order with a short pause before each one.",
				Parameters: tools.Object(map[string]any{
					"clicks": tools.Array("Clicks to perform", tools.Object(map[string]any{
						"x":      tools.Integer("X coordinate"),
						"y":      tools.Integer("Y coordinate"),
						"button": buttonSchema(),
					}, "x", "y")),
				}, "clicks"),
			},
			Handler: func(ctx context.Context, raw json.RawMessage) (tools.Result, error) {
				var a struct {
					Clicks []ClickStep `json:"clicks"`
				}
				if err := tools.Decode(raw, &a); err != nil {
					return tools.Result{}, err
				}
				return in.ClickSequence(ctx, a.Clicks), nil
			},
		},
		{
			Tool: protocol.Tool{
				Name:        "safe_type_and_click",
				Description: "Click a position to focus it, pause briefly, then type text.",
				Parameters: tools.Object(map[string]any{
					"text":    tools.String("Text to type"),
					"click_x": tools.Integer("X coordinate to click"),
					"click_y": tools.Integer("Y coordinate to click"),
					"button":  buttonSchema(),
				}, "text", "click_x", "click_y"),
			},
			Handler: func(ctx context.Context, raw json.RawMessage) (tools.Result, error) {
				a := struct {
					Text   string `json:"text"`
					X      int    `json:"click_x"`
					Y      int    `json:"click_y"`
					Button string `json:"button"`
				}{Button: "left"}
				if err := tools.Decode(raw, &a); err != nil {
					return tools.Result{}, err
				}
				return in.TypeAndClick(ctx, a.Text, a.X, a.Y, a.Button), nil
			},
		},
	}
}

func (in *Input) pointHandler(button string, clicks int) tools.Handler {
	return func(ctx context.Context, raw json.RawMessage) (tools.Result, error) {
		var a struct {
			X *int `json:"x"`
			Y *int `json:"y"`
		}
		if err := tools.Decode(raw, &a); err != nil {
			return tools.Result{}, err
		}
		return in.Click(ctx, a.X, a.Y, button, clicks), nil
	}
}
