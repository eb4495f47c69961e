// Command payload-export reads a single CommServer log line and writes
// just its protobuf payload bytes — never the frame header — to a binary
// output file.
package main

import (
	"fmt"
	"os"

	"commtester/internal/protobuf"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: payload-export <input_txt> <output_bin>")
		return 2
	}
	inputPath, outputPath := args[0], args[1]

	data, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	line := firstLine(data)
	payload, err := protobuf.ExportPayload(line, protobuf.NewStandInOracle())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := os.WriteFile(outputPath, payload, 0644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func firstLine(data []byte) string {
	for i, b := range data {
		if b == '\n' {
			return string(data[:i])
		}
	}
	return string(data)
}
