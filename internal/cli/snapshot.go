package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gantry/pkg/store"
)

// newSnapshotCmd creates the snapshot management command.
func newSnapshotCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage the snapshot store",
	}

	cmd.AddCommand(newSnapshotListCmd(cfgPath))
	cmd.AddCommand(newSnapshotExportCmd(cfgPath))
	cmd.AddCommand(newSnapshotImportCmd(cfgPath))
	cmd.AddCommand(newSnapshotDeleteCmd(cfgPath))

	return cmd
}

// withStore opens the configured store, runs fn, and closes it.
func withStore(cmd *cobra.Command, cfgPath *string, fn func(store.Store) error) error {
	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	st, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func newSnapshotListCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, cfgPath, func(st store.Store) error {
				snaps, err := st.List(cmd.Context())
				if err != nil {
					return fmt.Errorf("list snapshots: %w", err)
				}
				if len(snaps) == 0 {
					printInfo("No snapshots stored")
					return nil
				}
				for _, s := range snaps {
					fmt.Printf("%s  %s  %s\n",
						StyleDim.Render(s.ID.String()),
						StyleDim.Render(s.CreatedAt.Local().Format("2006-01-02 15:04")),
						StyleValue.Render(s.Name),
					)
				}
				return nil
			})
		},
	}
}

func newSnapshotExportCmd(cfgPath *string) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export [id]",
		Short: "Export a snapshot to a file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, cfgPath, func(st store.Store) error {
				id, err := resolveID(cmd, st, args)
				if err != nil {
					return err
				}
				snap, err := st.Load(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("load snapshot: %w", err)
				}

				path := output
				if path == "" {
					path = snap.Name + ".gantry"
				}
				if err := os.WriteFile(path, snap.Data, 0644); err != nil {
					return fmt.Errorf("write snapshot: %w", err)
				}
				printSuccess("Exported snapshot %q", snap.Name)
				printFile(path)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <name>.gantry)")
	return cmd
}

func newSnapshotImportCmd(cfgPath *string) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import an engine snapshot file into the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Validate before storing: a snapshot that cannot decode is
			// useless to every other command.
			eng, err := loadEngine(cmd, cfgPath, args[0])
			if err != nil {
				return err
			}
			if !eng.IsInstantiable() {
				printWarning("Snapshot has unresolved placeholders")
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read snapshot: %w", err)
			}
			if name == "" {
				name = args[0]
			}

			return withStore(cmd, cfgPath, func(st store.Store) error {
				snap := store.New(name, data)
				if err := st.Save(cmd.Context(), snap); err != nil {
					return fmt.Errorf("save snapshot: %w", err)
				}
				printSuccess("Imported snapshot %q", name)
				printDetail("id: %s", snap.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "snapshot name (default the file path)")
	return cmd
}

func newSnapshotDeleteCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a snapshot",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, cfgPath, func(st store.Store) error {
				id, err := resolveID(cmd, st, args)
				if err != nil {
					return err
				}
				if err := st.Delete(cmd.Context(), id); err != nil {
					if errors.Is(err, store.ErrNotFound) {
						return fmt.Errorf("no snapshot with ID %s", id)
					}
					return fmt.Errorf("delete snapshot: %w", err)
				}
				printSuccess("Deleted snapshot %s", id)
				return nil
			})
		},
	}
}

// resolveID parses the ID argument or falls back to the interactive picker.
func resolveID(cmd *cobra.Command, st store.Store, args []string) (uuid.UUID, error) {
	if len(args) > 0 {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return uuid.Nil, fmt.Errorf("parse snapshot ID %q: %w", args[0], err)
		}
		return id, nil
	}
	return pickSnapshot(cmd.Context(), st)
}
