package screen

import (
	"context"
	"encoding/json"
	"image/color"

	"github.com/tailored-agentic-units/deskagent/core/protocol"
	"github.com/tailored-agentic-units/deskagent/tools"
	"github.com/tailored-agentic-units/deskagent/vision"
)

type searchArgs struct {
	ImagePath  string  `json:"image_path"`
	Confidence float64 `json:"confidence"`
	Grayscale  bool    `json:"grayscale"`
	Timeout    float64 `json:"timeout"`
	Button     string  `json:"button"`
	Clicks     int     `json:"clicks"`
}

func defaultSearchArgs() searchArgs {
	return searchArgs{
		Confidence: vision.DefaultConfidence,
		Timeout:    defaultTimeout.Seconds(),
		Button:     "left",
		Clicks:     1,
	}
}

func (a searchArgs) options() vision.Options {
	return vision.Options{Confidence: a.Confidence, Grayscale: a.Grayscale}
}

func searchSchema(extra map[string]any) map[string]any {
	props := map[string]any{
		"image_path": tools.String("Path of the template image to look for"),
		"confidence": tools.Number("Minimum similarity between 0 and 1 (default 0.7)"),
	}
	for k, v := range extra {
		props[k] = v
	}
	return tools.Object(props, "image_path")
}

func buttonSchema() map[string]any {
	return tools.Enum("Mouse button (default left)", "left", "right", "middle")
}

// Entries returns the screen and image search tool catalogue bound to s.
func (s *Screen) Entries() []tools.Entry {
	return []tools.Entry{
		{
			Tool: protocol.Tool{
				Name:        "get_screen_size",
				Description: "Report the screen width and height in pixels.",
				Parameters:  tools.Object(map[string]any{}),
			},
			Handler: func(context.Context, json.RawMessage) (tools.Result, error) {
				return s.Size(), nil
			},
		},
		{
			Tool: protocol.Tool{
				Name:        "take_screenshot",
				Description: "Capture the screen, or a region of it, and optionally save it as an image file.",
				Parameters: tools.Object(map[string]any{
					"save_path": tools.String("File to save the screenshot to (png or jpg)"),
					"region":    tools.Array("Region as [x, y, width, height]", tools.Integer("")),
				}),
			},
			Handler: func(_ context.Context, raw json.RawMessage) (tools.Result, error) {
				var a struct {
					SavePath string `json:"save_path"`
					Region   []int  `json:"region"`
				}
				if err := tools.Decode(raw, &a); err != nil {
					return tools.Result{}, err
				}
				var region *Region
				switch len(a.Region) {
				case 0:
				case 4:
					region = &Region{X: a.Region[0], Y: a.Region[1], Width: a.Region[2], Height: a.Region[3]}
				default:
					return tools.Failure("region must be [x, y, width, height]"), nil
				}
				return s.Screenshot(a.SavePath, region), nil
			},
		},
		{
			Tool: protocol.Tool{
				Name:        "locate_on_screen",
				Description: "Find where an image appears on screen.",
				Parameters: searchSchema(map[string]any{
					"grayscale": tools.Boolean("Compare in grayscale (faster, less exact)"),
				}),
			},
			Handler: s.searchHandler(func(ctx context.Context, a searchArgs) tools.Result {
				return s.Locate(ctx, a.ImagePath, a.options())
			}),
		},
		{
			Tool: protocol.Tool{
				Name:        "locate_all_on_screen",
				Description: "Find every place an image appears on screen.",
				Parameters: searchSchema(map[string]any{
					"grayscale": tools.Boolean("Compare in grayscale (faster, less exact)"),
				}),
			},
			Handler: s.searchHandler(func(ctx context.Context, a searchArgs) tools.Result {
				return s.LocateAll(ctx, a.ImagePath, a.options())
			}),
		},
		{
			Tool: protocol.Tool{
				Name:        "wait_for_image",
				Description: "Wait until an image appears on screen.",
				Parameters: searchSchema(map[string]any{
					"timeout": tools.Number("Seconds to wait (default 10)"),
				}),
			},
			Handler: s.searchHandler(func(ctx context.Context, a searchArgs) tools.Result {
				return s.WaitForImage(ctx, a.ImagePath, tools.Seconds(a.Timeout), a.options())
			}),
		},
		{
			Tool: protocol.Tool{
				Name:        "click_on_image",
				Description: "Find an image on screen and click its center.",
				Parameters: searchSchema(map[string]any{
					"button": buttonSchema(),
					"clicks": tools.Integer("Number of clicks (default 1)"),
				}),
			},
			Handler: s.searchHandler(func(ctx context.Context, a searchArgs) tools.Result {
				return s.ClickImage(ctx, a.ImagePath, a.options(), a.Button, a.Clicks)
			}),
		},
		{
			Tool: protocol.Tool{
				Name:        "wait_and_click_image",
				Description: "Wait until an image appears on screen, then click its center.",
				Parameters: searchSchema(map[string]any{
					"timeout": tools.Number("Seconds to wait (default 10)"),
					"button":  buttonSchema(),
				}),
			},
			Handler: s.searchHandler(func(ctx context.Context, a searchArgs) tools.Result {
				return s.WaitAndClickImage(ctx, a.ImagePath, tools.Seconds(a.Timeout), a.options(), a.Button)
			}),
		},
		{
			Tool: protocol.Tool{
				Name:        "capture_screen_region",
				Description: "Capture a rectangle of the screen and optionally save it as an image file.",
				Parameters: tools.Object(map[string]any{
					"x":         tools.Integer("Left edge"),
					"y":         tools.Integer("Top edge"),
					"width":     tools.Integer("Width in pixels"),
					"height":    tools.Integer("Height in pixels"),
					"save_path": tools.String("File to save the capture to"),
				}, "x", "y", "width", "height"),
			},
			Handler: func(_ context.Context, raw json.RawMessage) (tools.Result, error) {
				var a struct {
					X        int    `json:"x"`
					Y        int    `json:"y"`
					Width    int    `json:"width"`
					Height   int    `json:"height"`
					SavePath string `json:"save_path"`
				}
				if err := tools.Decode(raw, &a); err != nil {
					return tools.Result{}, err
				}
				return s.CaptureRegion(a.X, a.Y, a.Width, a.Height, a.SavePath), nil
			},
		},
		{
			Tool: protocol.Tool{
				Name:        "find_text_on_screen",
				Description: "Look for text on screen. Requires OCR, which is not available.",
				Parameters: tools.Object(map[string]any{
					"text": tools.String("Text to look for"),
				}, "text"),
			},
			Handler: func(_ context.Context, raw json.RawMessage) (tools.Result, error) {
				var a struct {
					Text string `json:"text"`
				}
				if err := tools.Decode(raw, &a); err != nil {
					return tools.Result{}, err
				}
				return s.FindText(a.Text), nil
			},
		},
		{
			Tool: protocol.Tool{
				Name:        "get_screen_color_at",
				Description: "Read the RGB color of one screen pixel.",
				Parameters: tools.Object(map[string]any{
					"x": tools.Integer("X coordinate"),
					"y": tools.Integer("Y coordinate"),
				}, "x", "y"),
			},
			Handler: func(_ context.Context, raw json.RawMessage) (tools.Result, error) {
				var a struct {
					X int `json:"x"`
					Y int `json:"y"`
				}
				if err := tools.Decode(raw, &a); err != nil {
					return tools.Result{}, err
				}
				return s.ColorAt(a.X, a.Y), nil
			},
		},
		{
			Tool: protocol.Tool{
				Name:        "wait_for_color_change",
				Description: "Wait until the color of a screen pixel changes.",
				Parameters: tools.Object(map[string]any{
					"x":             tools.Integer("X coordinate"),
					"y":             tools.Integer("Y coordinate"),
					"initial_color": tools.Array("Color to compare against as [r, g, b]; defaults to the current color", tools.Integer("")),
					"timeout":       tools.Number("Seconds to wait (default 10)"),
				}, "x", "y"),
			},
			Handler: func(ctx context.Context, raw json.RawMessage) (tools.Result, error) {
				a := struct {
					X       int     `json:"x"`
					Y       int     `json:"y"`
					Initial []int   `json:"initial_color"`
					Timeout float64 `json:"timeout"`
				}{Timeout: defaultTimeout.Seconds()}
				if err := tools.Decode(raw, &a); err != nil {
					return tools.Result{}, err
				}
				var initial *color.RGBA
				switch len(a.Initial) {
				case 0:
				case 3:
					initial = &color.RGBA{R: uint8(a.Initial[0]), G: uint8(a.Initial[1]), B: uint8(a.Initial[2]), A: 0xff}
				default:
					return tools.Failure("initial_color must be [r, g, b]"), nil
				}
				return s.WaitForColorChange(ctx, a.X, a.Y, initial, tools.Seconds(a.Timeout)), nil
			},
		},
	}
}

func (s *Screen) searchHandler(fn func(context.Context, searchArgs) tools.Result) tools.Handler {
	return func(ctx context.Context, raw json.RawMessage) (tools.Result, error) {
		a := defaultSearchArgs()
		if err := tools.Decode(raw, &a); err != nil {
			return tools.Result{}, err
		}
		if a.ImagePath == "" {
			return tools.Failure("image_path is required"), nil
		}
		return fn(ctx, a), nil
	}
}
