package main

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestSetupLogger(t *testing.T) {
	t.Run("valid log levels", func(t *testing.T) {
		testCases := []struct {
			input    string
			expected slog.Level
		}{
			{"debug", slog.LevelDebug},
			{"info", slog.LevelInfo},
			{"warn", slog.LevelWarn},
			{"error", slog.LevelError},
		}

		for _, tc := range testCases {
			t.Run(tc.input, func(t *testing.T) {
				app := &cli.App{
					Name: "test",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:  "log-level",
							Value: tc.input,
						},
					},
					Before: setupLogger,
					Action: func(c *cli.Context) error {
						return nil
					},
				}

				err := app.Run([]string{"test", "--log-level", tc.input})
				require.NoError(t, err)
			})
		}
	})

	t.Run("case insensitive log levels", func(t *testing.T) {
		testCases := []string{
			"DEBUG",
			"Info",
			"WaRn",
			"ERROR",
		}

		for _, tc := range testCases {
			t.Run(tc, func(t *testing.T) {
				app := &cli.App{
					Name: "test",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:  "log-level",
							Value: "info",
						},
					},
					Before: setupLogger,
					Action: func(c *cli.Context) error {
						return nil
					},
				}

				err := app.Run([]string{"test", "--log-level", tc})
				require.NoError(t, err)
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		app := &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "log-level",
					Value: "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				return nil
			},
		}

		err := app.Run([]string{"test", "--log-level", "invalid"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestCommandArgumentValidation(t *testing.T) {
	app := &cli.App{
		Name: "granary",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: "info"},
			&cli.StringFlag{Name: "db"},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{Name: "insert", Action: insertCommand},
			{Name: "insert-file", Action: insertFileCommand},
			{Name: "batch", Action: batchCommand},
			{Name: "search", Action: searchCommand},
			{Name: "ask", Action: askCommand},
		},
	}

	t.Run("insert with no text fails", func(t *testing.T) {
		err := app.Run([]string{"granary", "insert"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no text")
	})

	t.Run("insert-file with no path fails", func(t *testing.T) {
		err := app.Run([]string{"granary", "insert-file"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "file path")
	})

	t.Run("batch with no directory fails", func(t *testing.T) {
		err := app.Run([]string{"granary", "batch"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "directory")
	})

	t.Run("search with no query fails", func(t *testing.T) {
		err := app.Run([]string{"granary", "search"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no query")
	})

	t.Run("ask with no question fails", func(t *testing.T) {
		err := app.Run([]string{"granary", "ask"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no question")
	})
}
