package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bookfeed/internal/app"
	"bookfeed/internal/book"
)

// newSeedCmd loads manual book submissions from a JSON array or a JSON-lines
// file through the same path as POST /v1/books.
func newSeedCmd(build appBuilder) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Add books from a JSON or JSON-lines file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return errors.New("--file is required")
			}
			inputs, err := readSeedFile(file)
			if err != nil {
				return err
			}
			return withApp(cmd, build, func(ctx context.Context, a *app.App) (any, error) {
				added := make([]book.Summary, 0, len(inputs))
				for i, in := range inputs {
					b, err := a.Books.Add(ctx, in)
					if err != nil {
						return nil, fmt.Errorf("record %d (isbn %q): %w", i+1, in.ISBN, err)
					}
					added = append(added, b.Summary())
				}
				return map[string]any{"count": len(added), "result": added}, nil
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "path to a JSON array or JSON-lines file")
	return cmd
}

func readSeedFile(path string) ([]book.AddInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	if data[0] == '[' {
		var inputs []book.AddInput
		if err := json.Unmarshal(data, &inputs); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return inputs, nil
	}

	var inputs []book.AddInput
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for line := 1; sc.Scan(); line++ {
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var in book.AddInput
		if err := json.Unmarshal(raw, &in); err != nil {
			return nil, fmt.Errorf("parse %s line %d: %w", path, line, err)
		}
		inputs = append(inputs, in)
	}
	return inputs, sc.Err()
}
