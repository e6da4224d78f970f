// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/poiesic/conceptmap"
	"github.com/poiesic/conceptmap/config"
	"github.com/urfave/cli/v2"
)

// openConceptMap builds the analyzer for a command. Tests replace it.
var openConceptMap = func(cfg *config.Config) (*conceptmap.ConceptMap, error) {
	return conceptmap.Open(conceptmap.WithConfig(cfg), conceptmap.WithLogger(slog.Default()))
}

func main() {
	// Flag EnvVars are resolved while parsing, so the env file has to be
	// loaded before the app runs.
	if err := loadEnvFile(envFileFromArgs(os.Args[1:])); err != nil {
		log.Fatal(err)
	}

	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "conceptmap",
		Usage: "Build weighted concept maps from free text",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"CONCEPTMAP_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file (default: ./" + config.DefaultFile + " if present)",
				EnvVars: []string{"CONCEPTMAP_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Load environment variables from this file",
				Value: ".env",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "analyze",
				Usage:     "Extract concepts and relations from one document",
				ArgsUsage: "[TEXT]",
				Action:    analyzeCommand,
				Flags: append(modelFlags(),
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Read the document from a file instead of TEXT or stdin",
					},
					&cli.StringFlag{
						Name:  "conllu",
						Usage: "Analyze a CoNLL-U file produced by any UD tagger instead of annotating",
					},
					&cli.StringFlag{
						Name:    "strategy",
						Aliases: []string{"s"},
						Usage:   "Relation strategy (dependency, cooccurrence)",
						EnvVars: []string{"CONCEPTMAP_STRATEGY"},
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format (text, json, dot)",
						Value: formatText,
					},
					&cli.IntFlag{
						Name:  "top",
						Usage: "Number of top terms to print in text format (0 for all)",
						Value: 10,
					},
					&cli.IntFlag{
						Name:  "scale",
						Usage: "Node size per concept occurrence",
					},
				),
			},
			{
				Name:      "batch",
				Usage:     "Analyze many documents concurrently, one graph file per input",
				ArgsUsage: "FILE...",
				Action:    batchCommand,
				Flags: append(modelFlags(),
					&cli.StringFlag{
						Name:    "strategy",
						Aliases: []string{"s"},
						Usage:   "Relation strategy (dependency, cooccurrence)",
						EnvVars: []string{"CONCEPTMAP_STRATEGY"},
					},
					&cli.StringFlag{
						Name:     "out",
						Aliases:  []string{"o"},
						Usage:    "Directory for the graph files",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Graph file format (json, dot)",
						Value: formatJSON,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of documents submitted together",
						Value: 16,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N documents",
						Value: 16,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent documents (0 uses the config value)",
					},
				),
			},
			{
				Name:      "annotate",
				Usage:     "Print the annotated tokens of a document as CoNLL-U",
				ArgsUsage: "[TEXT]",
				Action:    annotateCommand,
				Flags: append(modelFlags(),
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Read the document from a file instead of TEXT or stdin",
					},
				),
			},
			{
				Name:   "fetch-model",
				Usage:  "Download the language model used for a language",
				Action: fetchModelCommand,
				Flags:  modelFlags(),
			},
		},
	}
}

// modelFlags are the flags shared by every command that needs a model.
func modelFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "lang",
			Usage:   "Document language (es, en)",
			EnvVars: []string{"CONCEPTMAP_LANG"},
		},
		&cli.StringFlag{
			Name:    "backend",
			Usage:   "Annotation backend (spacy, llm)",
			EnvVars: []string{"CONCEPTMAP_BACKEND"},
		},
		&cli.StringFlag{
			Name:    "model",
			Usage:   "Model name for the document language",
			EnvVars: []string{"CONCEPTMAP_MODEL"},
		},
		&cli.StringFlag{
			Name:    "python",
			Usage:   "Python interpreter with spaCy installed",
			EnvVars: []string{"CONCEPTMAP_PYTHON"},
		},
		&cli.StringFlag{
			Name:    "llm-host",
			Usage:   "OpenAI-compatible API host URL for the llm backend",
			EnvVars: []string{"CONCEPTMAP_LLM_HOST"},
		},
		&cli.StringFlag{
			Name:    "llm-model",
			Usage:   "Chat model for the llm backend",
			EnvVars: []string{"CONCEPTMAP_LLM_MODEL"},
		},
		&cli.StringFlag{
			Name:    "llm-token",
			Usage:   "API token for the llm backend",
			EnvVars: []string{"CONCEPTMAP_LLM_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "cache-dir",
			Usage:   "BadgerDB directory for cached annotations",
			EnvVars: []string{"CONCEPTMAP_CACHE_DIR"},
		},
		&cli.BoolFlag{
			Name:  "no-cache",
			Usage: "Disable the annotation cache",
		},
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// globalValueFlags are the global flags that take a separate value argument.
var globalValueFlags = map[string]bool{
	"log-level": true,
	"l":         true,
	"config":    true,
	"c":         true,
}

// envFileFromArgs finds the --env-file value among the global arguments.
// It stops at the first command name.
func envFileFromArgs(args []string) string {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			break
		}
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if name != "env-file" {
			if !hasValue && globalValueFlags[name] {
				i++
			}
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// loadEnvFile loads path into the environment without overriding variables
// already set. An empty path loads .env when it exists.
func loadEnvFile(path string) error {
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}
