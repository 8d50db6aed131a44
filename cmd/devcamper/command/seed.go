package command

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/utafrali/devcamper/internal/app"
	"github.com/utafrali/devcamper/internal/seed"
)

var (
	seedDir     string
	seedConfirm bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load or wipe fixture data",
}

var seedImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import users, bootcamps, courses and reviews",
	Long: `Import reads users.json, bootcamps.json, courses.json and reviews.json
from --dir, or the bundled fixtures when --dir is empty, and writes them in
one transaction. Bootcamps without a location are geocoded.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var fsys fs.FS = seed.DefaultData()
		if seedDir != "" {
			if _, err := os.Stat(seedDir); err != nil {
				return fmt.Errorf("seed directory: %w", err)
			}
			fsys = os.DirFS(seedDir)
		}

		return withSeeder(cmd.Context(), func(ctx context.Context, s *seed.Seeder) error {
			sum, err := s.Import(ctx, fsys)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Data imported: %d users, %d bootcamps, %d courses, %d reviews\n",
				sum.Users, sum.Bootcamps, sum.Courses, sum.Reviews)
			return nil
		})
	},
}

var seedDestroyCmd = &cobra.Command{
	Use:   "destroy",
	Short: "Delete every review, course, bootcamp and user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !seedConfirm {
			return errors.New("refusing to delete all data without --yes")
		}
		return withSeeder(cmd.Context(), func(ctx context.Context, s *seed.Seeder) error {
			sum, err := s.Destroy(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Data destroyed: %d users, %d bootcamps, %d courses, %d reviews\n",
				sum.Users, sum.Bootcamps, sum.Courses, sum.Reviews)
			return nil
		})
	},
}

// withSeeder opens the database and geocoder and hands a Seeder to fn.
func withSeeder(ctx context.Context, fn func(context.Context, *seed.Seeder) error) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	pool, err := app.OpenDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	rdb := app.ConnectRedis(ctx, cfg, log)
	if rdb != nil {
		defer rdb.Close()
	}

	return fn(ctx, seed.New(pool, app.NewGeocoder(cfg, rdb, log), cfg.DBTimeout, log))
}

func init() {
	seedImportCmd.Flags().StringVarP(&seedDir, "dir", "d", "", "directory holding the JSON fixture files")
	seedDestroyCmd.Flags().BoolVarP(&seedConfirm, "yes", "y", false, "confirm deletion of all data")

	seedCmd.AddCommand(seedImportCmd, seedDestroyCmd)
	rootCmd.AddCommand(seedCmd)
}
