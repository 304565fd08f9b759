package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"

	"github.com/screentime-labs/tracker/backend/internal/heatmap"
)

const outputName = "website_usage_heatmap.png"

func main() {
	input := "website_data.json"
	if len(os.Args) > 1 {
		input = os.Args[1]
	}

	if err := run(input); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(input string) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}

	var records []heatmap.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("parse %s: %w", input, err)
	}

	if len(records) == 0 {
		fmt.Println("no website data to visualize")
		return nil
	}

	img, err := heatmap.Render(records)
	if err != nil {
		return err
	}

	output := filepath.Join(filepath.Dir(input), outputName)
	if err := gg.SavePNG(output, img); err != nil {
		return fmt.Errorf("save %s: %w", output, err)
	}

	fmt.Printf("saved %s\n", output)
	return nil
}
