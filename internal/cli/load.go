package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"reflect"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gantry/internal/demo"
	"github.com/matzehuels/gantry/pkg/engine"
)

func typeOfRecommender() reflect.Type {
	return reflect.TypeOf((*demo.TopNRecommender)(nil))
}

// demoEngineOptions returns engine options with the demo component registry,
// which is needed to resolve type names when decoding snapshots.
func demoEngineOptions(cmd *cobra.Command) ([]engine.Option, error) {
	reg, err := demo.Registry()
	if err != nil {
		return nil, fmt.Errorf("build registry: %w", err)
	}
	return []engine.Option{
		engine.WithRegistry(reg),
		engine.WithLogger(loggerFromContext(cmd.Context())),
	}, nil
}

// loadEngine resolves ref to a persisted engine. A readable file path is
// loaded directly; anything else is treated as a snapshot ID in the
// configured store. An empty ref opens an interactive snapshot picker.
func loadEngine(cmd *cobra.Command, cfgPath *string, ref string) (*engine.Engine, error) {
	opts, err := demoEngineOptions(cmd)
	if err != nil {
		return nil, err
	}

	if ref != "" {
		if _, err := os.Stat(ref); err == nil {
			f, err := os.Open(ref)
			if err != nil {
				return nil, fmt.Errorf("open snapshot: %w", err)
			}
			defer f.Close()
			return engine.Load(f, opts...)
		}
	}

	data, err := loadFromStore(cmd.Context(), cfgPath, ref)
	if err != nil {
		return nil, err
	}
	return engine.Load(bytes.NewReader(data), opts...)
}

// loadFromStore fetches snapshot bytes by ID, or via the interactive picker
// when ref is empty.
func loadFromStore(ctx context.Context, cfgPath *string, ref string) ([]byte, error) {
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return nil, err
	}
	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	var id uuid.UUID
	if ref == "" {
		id, err = pickSnapshot(ctx, st)
		if err != nil {
			return nil, err
		}
	} else {
		id, err = uuid.Parse(ref)
		if err != nil {
			return nil, fmt.Errorf("%q is neither a file nor a snapshot ID", ref)
		}
	}

	snap, err := st.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", id, err)
	}
	return snap.Data, nil
}
