package cli

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gantry/internal/demo"
	"github.com/matzehuels/gantry/pkg/engine"
	"github.com/matzehuels/gantry/pkg/graph"
	"github.com/matzehuels/gantry/pkg/store"
)

// newDemoCmd creates the demo command: train the built-in item-mean
// recommender and print recommendations.
func newDemoCmd(cfgPath *string) *cobra.Command {
	var (
		ratingsPath string
		damping     float64
		topN        int
		user        int64
		saveName    string
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Train and query the built-in item-mean recommender",
		Long: `Builds an engine for the demo recommender domain: ratings feed an
item-mean model, a scorer reads the model, and a top-N recommender ranks
items. Without --ratings a small built-in dataset is used.

The trained engine carries the model but not the training data (the model's
dependency on the rating source is transient), so snapshots saved with
--save stay small.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			var src demo.RatingSource = demo.SliceSource(demo.SampleRatings())
			if ratingsPath != "" {
				src = demo.FileSource{Path: ratingsPath}
			}

			st := startStatus(cmd.Context(), "Training model...")
			eng, err := demo.Build(src, damping, topN, engine.WithLogger(logger))
			if err != nil {
				st.fail("Build failed")
				return err
			}
			st.succeed("Assembled %d components", len(graph.Sorted(eng.Graph()))-1)

			asm, err := eng.Create(nil)
			if err != nil {
				return fmt.Errorf("create assembly: %w", err)
			}
			rec, err := asm.Get(typeOfRecommender())
			if err != nil {
				return fmt.Errorf("get recommender: %w", err)
			}

			printInfo("Top %d items for user %d:", topN, user)
			for i, item := range rec.(*demo.TopNRecommender).Recommend(user) {
				printDetail("%2d. item %-6d %.3f", i+1, item.Item, item.Score)
			}

			if saveName != "" {
				return saveEngine(cmd, cfgPath, eng, saveName)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&ratingsPath, "ratings", "r", "", "CSV ratings file (user,item,value); built-in sample if omitted")
	cmd.Flags().Float64Var(&damping, "damping", 5.0, "damping toward the global mean for sparse items")
	cmd.Flags().IntVarP(&topN, "top-n", "n", 5, "number of recommendations")
	cmd.Flags().Int64VarP(&user, "user", "u", 1, "user to recommend for")
	cmd.Flags().StringVar(&saveName, "save", "", "save the trained engine to the snapshot store under this name")

	return cmd
}

// saveEngine writes an engine snapshot to the configured store.
func saveEngine(cmd *cobra.Command, cfgPath *string, eng *engine.Engine, name string) error {
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	st, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	var buf bytes.Buffer
	if err := eng.Write(&buf); err != nil {
		return fmt.Errorf("encode engine: %w", err)
	}

	snap := store.New(name, buf.Bytes())
	if err := st.Save(cmd.Context(), snap); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	printSuccess("Saved snapshot %q", name)
	printDetail("id: %s · %d bytes", snap.ID, len(snap.Data))
	return nil
}
