package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/osmtools/chargesync/internal/sources/osm"
	"github.com/osmtools/chargesync/internal/sources/tesla"
	"github.com/osmtools/chargesync/pkg/errors"
	"github.com/osmtools/chargesync/pkg/logging"
	"github.com/osmtools/chargesync/pkg/reconciler"
	"github.com/osmtools/chargesync/pkg/rules"
)

var (
	osmPath      string
	snapshotPath string
	rulesPath    string
	outputPath   string
	threshold    float64
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile a vendor snapshot against an OSM export",
	Long: `Reconcile loads an OSM export and a vendor snapshot, matches each open
vendor location to an existing node (override table first, nearest neighbor
second), merges vendor data under the field precedence rules, and writes a
changefile of created and updated nodes to stdout or --output.

The match trace and the orphan report go to the log on stderr; the primary
document is never mixed with diagnostics.`,
	RunE: runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	reconcileCmd.Flags().StringVar(&osmPath, "osm", "", "existing OSM export (XML)")
	reconcileCmd.Flags().StringVar(&snapshotPath, "snapshot", "", "vendor snapshot (JSON)")
	reconcileCmd.Flags().StringVar(&rulesPath, "rules", "", "reconciliation rules document (YAML)")
	reconcileCmd.Flags().StringVarP(&outputPath, "output", "o", "", "changefile destination (default stdout)")
	reconcileCmd.Flags().Float64Var(&threshold, "threshold", 0, "match distance cutoff in decimal degrees (default from rules, else 0.002)")

	cobra.CheckErr(reconcileCmd.MarkFlagRequired("osm"))
	cobra.CheckErr(reconcileCmd.MarkFlagRequired("snapshot"))
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	log := logging.Default()

	r := rules.Empty()
	if rulesPath != "" {
		var err error
		r, err = rules.Load(rulesPath)
		if err != nil {
			log.Error().Err(err).Str("rules", rulesPath).Msg("Failed to load rules")
			return err
		}
	}

	existing, err := osm.Load(osmPath)
	if err != nil {
		log.Error().Err(err).Str("osm", osmPath).Msg("Failed to load OSM export")
		return err
	}
	log.Info().Int("nodes", len(existing)).Str("osm", osmPath).Msg("Loaded existing records")

	snapshot, err := tesla.Load(snapshotPath)
	if err != nil {
		log.Error().Err(err).Str("snapshot", snapshotPath).Msg("Failed to load vendor snapshot")
		return err
	}
	log.Info().Int("locations", len(snapshot)).Str("snapshot", snapshotPath).Msg("Loaded vendor snapshot")

	opts := []reconciler.Option{reconciler.WithRules(r)}
	if threshold > 0 {
		opts = append(opts, reconciler.WithThreshold(threshold))
	}
	engine, err := reconciler.New(opts...)
	if err != nil {
		return err
	}

	incoming := make([]reconciler.Incoming, 0, len(snapshot))
	for i := range snapshot {
		incoming = append(incoming, snapshot[i].Incoming())
	}

	result, err := engine.Run(existing, incoming)
	if err != nil {
		log.Error().Err(err).Msg("Reconciliation aborted")
		return err
	}
	log.Info().Str("summary", result.Summary.String()).Msg("Reconciliation complete")

	var out io.Writer = cmd.OutOrStdout()
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return errors.WrapIO("create", outputPath, err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil {
				log.Error().Err(cerr).Str("output", outputPath).Msg("Failed to close output")
			}
		}()
		out = f
	}

	if err := osm.Write(out, result.Emitted); err != nil {
		return errors.WrapIO("write", outputPath, err)
	}
	return nil
}
