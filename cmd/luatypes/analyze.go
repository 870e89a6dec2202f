package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/luatype/analyzer/ast"
	luacontext "github.com/luatype/analyzer/internal/context"
	"github.com/luatype/analyzer/internal/finalize"
	"github.com/luatype/analyzer/internal/luasrc"
	"github.com/luatype/analyzer/internal/model"
	"github.com/luatype/analyzer/internal/project"
)

var (
	analyzeAliasFile string
	analyzeOutput    string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [dir]",
	Short: "Infer types for every .lua module under dir and emit YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzeAliasFile, "aliases", "", "path to a YAML require-alias map")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "write result to file instead of stdout")
}

type pendingModule struct {
	id    string
	chunk *ast.Chunk
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	root := args[0]

	walker := project.New(".lua")
	sources, err := walker.Discover(ctx, root)
	if err != nil {
		return fmt.Errorf("failed to discover modules under %s: %w", root, err)
	}
	if len(sources) == 0 {
		return fmt.Errorf("no .lua modules found under %s", root)
	}

	actx := luacontext.New()
	if analyzeAliasFile != "" {
		aliases, err := project.LoadAliases(ctx, walker, analyzeAliasFile)
		if err != nil {
			return err
		}
		actx.SetAliases(aliases)
	}

	bar := newProgressBar(len(sources))
	var pending []pendingModule
	for _, src := range sources {
		raw, err := walker.Read(ctx, src.URL)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", src.URL, err)
		}
		chunk, err := luasrc.ParseSource(raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skipping %s: %v\n", src.ID, err)
			_ = bar.Add(1)
			continue
		}
		pending = append(pending, pendingModule{id: src.ID, chunk: chunk})
		_ = bar.Add(1)
	}

	// Modules are ingested in the sorted order Discover returned. A require
	// is resolved during ingestion against the returns of modules already
	// ingested, so a require of a module that comes later in this order
	// resolves to the empty set.
	resolved := make([]*model.ResolvedModule, 0, len(pending))
	for _, m := range pending {
		if rm := actx.IngestModule(m.id, m.chunk); rm != nil {
			resolved = append(resolved, rm)
		}
	}

	out := finalize.New(actx).Run(resolved)

	for _, d := range actx.Diagnostics() {
		fmt.Fprintf(os.Stderr, "%s [%s]: %s\n", d.Kind, d.Module, d.Message)
	}

	encoded, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	if analyzeOutput == "" {
		_, err = os.Stdout.Write(encoded)
		return err
	}
	return os.WriteFile(analyzeOutput, encoded, 0o644)
}

func newProgressBar(count int) *progressbar.ProgressBar {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return progressbar.NewOptions(count, progressbar.OptionSetWriter(io.Discard))
	}
	return progressbar.Default(int64(count), "analyzing")
}
