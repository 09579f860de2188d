package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/calcdocs/internal/graph"
	"github.com/roach88/calcdocs/internal/ir"
	"github.com/roach88/calcdocs/internal/qpcr"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	RunFlags
	Node   string
	Sample string
	Target string
}

// TraceResult holds one document's lineage.
type TraceResult struct {
	RunID  string `json:"run_id"`
	Node   string `json:"node"`
	Sample string `json:"sample,omitempty"`
	Target string `json:"target"`

	// Lineage is the flattened dependency list, root last.
	Lineage []graph.Document `json:"lineage"`

	// RawSources counts distinct raw records the root depends on.
	RawSources int `json:"raw_sources"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace [batch.yaml]",
		Short: "Show the lineage of one calculated document",
		Long: `Build one named document for a sample and target and print every
document it was derived from.

Text output is a tree rooted at the document; a document reached along
several paths is expanded once. JSON output is the flattened list,
dependencies first.

Examples:
  calcdocs trace plate.yaml --config run.cue --node "rq" --sample S1 --target T1
  calcdocs trace plate.yaml --config run.cue --node "slope" --target T1 --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd, args)
		},
	}

	opts.RunFlags.register(cmd)
	cmd.Flags().StringVar(&opts.Node, "node", "", "document name, e.g. \"quantity mean\" (required)")
	_ = cmd.MarkFlagRequired("node")
	cmd.Flags().StringVar(&opts.Sample, "sample", "", "sample name (not needed for standard curve documents)")
	cmd.Flags().StringVar(&opts.Target, "target", "", "target name (required)")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	in, err := loadInput(ctx, &opts.RunFlags, args)
	if err != nil {
		return failLoad(formatter, err)
	}
	cfg, err := loadConfig(cmd, &opts.RunFlags)
	if err != nil {
		return failLoad(formatter, err)
	}

	wells, err := qpcr.ParseWells(in.Records)
	if err != nil {
		return failRun(formatter, err)
	}

	sess, err := newSession(&opts.RunFlags, in.RunID, cfg, opts.Logger())
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeGeneric, "metrics setup failed", err)
	}
	defer func() { _ = sess.close() }()

	calc, err := qpcr.NewCalculator(sess.run, qpcr.NewView(wells), *cfg)
	if err != nil {
		return failRun(formatter, err)
	}
	name := ir.NormalizeName(strings.TrimSpace(opts.Node))

	res, err := calc.Root(name, opts.Sample, opts.Target)
	if errors.Is(err, qpcr.ErrUnknownDocument) {
		_ = formatter.Error(ErrCodeUnknownNode, err.Error(), calc.RootNames())
		return WrapExitError(ExitCommandError, ErrCodeUnknownNode, err)
	}
	if err != nil {
		return failRun(formatter, err)
	}

	root, ok := res.Node()
	if !ok {
		return formatter.fail(ExitFailure, ErrCodeNotComputable,
			fmt.Sprintf("%s for sample %q target %q", name, opts.Sample, opts.Target),
			fmt.Errorf("%s", res.Reason()))
	}

	nodes, err := sess.run.Flatten(root)
	if err != nil {
		return failRun(formatter, err)
	}

	result := TraceResult{
		RunID:      in.RunID,
		Node:       name,
		Sample:     opts.Sample,
		Target:     opts.Target,
		Lineage:    graph.ToDocuments(nodes),
		RawSources: countRawSources(nodes),
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "%s (%s, %s): %d documents, %d raw records\n\n",
		result.Node, result.Sample, result.Target, len(result.Lineage), result.RawSources)
	writeTree(formatter.Writer, sess.run.Graph(), root, "", make(map[ir.NodeID]bool))
	return nil
}

func countRawSources(nodes []*ir.Node) int {
	seen := make(map[string]bool)
	for _, n := range nodes {
		for _, s := range n.Sources {
			if s.Kind() == ir.SourceRaw {
				seen[s.SourceID()] = true
			}
		}
	}
	return len(seen)
}

// writeTree prints n and its sources depth first. Calculated sources
// already printed are shown by id only.
func writeTree(w io.Writer, g *graph.Graph, n *ir.Node, indent string, printed map[ir.NodeID]bool) {
	fmt.Fprintf(w, "%s%s = %g [%s]\n", indent, n.Name, n.Value, n.ID)
	printed[n.ID] = true

	for _, s := range n.Sources {
		child := indent + "  "
		if s.Kind() == ir.SourceRaw {
			fmt.Fprintf(w, "%s<- %s (%s)\n", child, s.SourceID(), s.Feature)
			continue
		}
		id := s.NodeID()
		dep, ok := g.Node(id)
		if !ok || printed[id] {
			fmt.Fprintf(w, "%s<- %s (%s, see above)\n", child, id, s.Feature)
			continue
		}
		fmt.Fprintf(w, "%s<- (%s)\n", child, s.Feature)
		writeTree(w, g, dep, child+"   ", printed)
	}
}
