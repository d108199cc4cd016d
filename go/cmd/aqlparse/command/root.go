// Copyright 2025 The AQL Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package command

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aqlang/aql/go/parser"
	"github.com/aqlang/aql/go/parser/ast"
)

// ParseCommand holds the configuration for the aqlparse root command.
type ParseCommand struct {
	fs afero.Fs
	vp *viper.Viper
}

// Root returns the aqlparse command wired to the operating system filesystem.
func Root() *cobra.Command {
	return NewRoot(afero.NewOsFs())
}

// NewRoot creates the root command. The filesystem is injectable so tests can
// run against an in-memory one.
func NewRoot(fs afero.Fs) *cobra.Command {
	pc := &ParseCommand{
		fs: fs,
		vp: viper.New(),
	}

	root := &cobra.Command{
		Use:   "aqlparse [query]",
		Short: "Parse AQL queries into syntax trees",
		Long: `aqlparse parses an AQL statement (or, with --expr, a single expression)
and prints the resulting syntax tree. The query is taken from the argument,
from a file with --file, or from standard input when neither is given.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          pc.run,
	}

	root.Flags().BoolP("expr", "e", false, "parse a single expression instead of a statement")
	root.Flags().StringP("file", "f", "", "read the query from this file")
	root.Flags().String("format", "json", "output format, one of: json, text")
	root.Flags().Int("max-depth", parser.DefaultMaxDepth, "maximum nesting depth accepted before parsing fails")

	pc.vp.SetEnvPrefix("AQLPARSE")
	pc.vp.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	pc.vp.AutomaticEnv()
	if err := pc.vp.BindPFlags(root.Flags()); err != nil {
		panic(fmt.Sprintf("binding flags: %v", err))
	}

	return root
}

func (pc *ParseCommand) run(cmd *cobra.Command, args []string) error {
	input, err := pc.readInput(cmd, args)
	if err != nil {
		return err
	}

	opts := []parser.Option{parser.WithMaxDepth(pc.vp.GetInt("max-depth"))}

	var tree ast.Expr
	if pc.vp.GetBool("expr") {
		tree, err = parser.ParseExpression(input, nil, opts...)
	} else {
		tree, err = parser.ParseStatement(input, nil, opts...)
	}
	if err != nil {
		return fmt.Errorf("%s error: %w", parser.ErrorClass(err), err)
	}

	return pc.writeTree(cmd.OutOrStdout(), tree)
}

func (pc *ParseCommand) readInput(cmd *cobra.Command, args []string) (string, error) {
	if file := pc.vp.GetString("file"); file != "" {
		data, err := afero.ReadFile(pc.fs, file)
		if err != nil {
			return "", fmt.Errorf("reading query file: %w", err)
		}
		return string(data), nil
	}
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading standard input: %w", err)
	}
	return string(data), nil
}

func (pc *ParseCommand) writeTree(w io.Writer, tree ast.Expr) error {
	switch format := pc.vp.GetString("format"); format {
	case "json":
		data, err := json.MarshalIndent(tree, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding syntax tree: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "text":
		_, err := fmt.Fprintln(w, tree.String())
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
