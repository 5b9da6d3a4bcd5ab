package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/koustreak/warehouser/internal/database"
	"github.com/koustreak/warehouser/internal/filestore"
	"github.com/koustreak/warehouser/internal/filestore/minio"
	"github.com/koustreak/warehouser/internal/manager"
	"github.com/koustreak/warehouser/internal/metrics"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

func uriCmd() *cobra.Command {
	var showPassword bool

	cmd := &cobra.Command{
		Use:   "uri",
		Short: "Print the connection URI built from the settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			uri := cfg.URI()
			if !showPassword {
				uri = database.Redact(uri)
			}
			fmt.Fprintln(cmd.OutOrStdout(), uri)
			return nil
		},
	}

	cmd.Flags().BoolVar(&showPassword, "show-password", false, "print the password instead of ***")
	return cmd
}

func pingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Open a connection and check the database answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			m, err := manager.New(ctx, cfg, nil, manager.WithLogger(log))
			if err != nil {
				return err
			}
			defer m.Close()

			if err := m.DB().Ping(ctx); err != nil {
				return fmt.Errorf("ping failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok %s\n", m)
			return nil
		},
	}
}

func reflectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reflect [table...]",
		Short: "Describe tables of the connected database",
		Long:  "Describe the named tables, or every base table when none is given. Key columns are marked with *.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			m, err := manager.New(ctx, cfg, nil, manager.WithLogger(log))
			if err != nil {
				return err
			}
			defer m.Close()

			if err := m.Reflect(ctx, args...); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, t := range m.Metadata().Tables() {
				cols := make([]string, len(t.Columns))
				for i, c := range t.Columns {
					cols[i] = c.Name
					if c.PrimaryKey {
						cols[i] += "*"
					}
				}
				fmt.Fprintf(out, "%s(%s)\n", t.Name, strings.Join(cols, ", "))
			}
			return nil
		},
	}
}

func upsertCmd() *cobra.Command {
	var (
		table         string
		file          string
		partitionSize int
		lenient       bool
		textfile      string
	)

	cmd := &cobra.Command{
		Use:   "upsert",
		Short: "Insert or update rows read from a YAML file",
		Long: "Read a YAML list of rows (column: value maps), reflect the target table " +
			"and upsert the rows on its primary key.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			rows, err := readRows(ctx, file)
			if err != nil {
				return err
			}

			mt := metrics.New("warehouser")
			m, err := manager.New(ctx, cfg, nil,
				manager.WithLogger(log),
				manager.WithMetrics(mt),
				manager.WithPartitionSize(partitionSize),
				manager.WithSafe(!lenient),
			)
			if err != nil {
				return err
			}
			defer m.Close()

			if err := m.Reflect(ctx, table); err != nil {
				return err
			}

			n, upsertErr := m.Upsert(ctx, table, rows)
			if textfile != "" {
				if err := mt.WriteTextfile(textfile); err != nil {
					log.ErrorWith("writing metrics textfile", err, map[string]any{"path": textfile})
				}
			}
			if upsertErr != nil {
				return fmt.Errorf("upserted %d of %d rows: %w", n, len(rows), upsertErr)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "upserted %d rows into %s\n", n, table)
			return nil
		},
	}

	cmd.Flags().StringVarP(&table, "table", "t", "", "target table")
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file (or s3://bucket/key) holding a list of rows")
	cmd.Flags().IntVar(&partitionSize, "partition-size", manager.DefaultPartitionSize, "rows per transaction")
	cmd.Flags().BoolVar(&lenient, "lenient", false, "drop row keys the table does not have instead of failing")
	cmd.Flags().StringVar(&textfile, "metrics-textfile", "", "write metrics in node_exporter textfile format to this path")
	_ = cmd.MarkFlagRequired("table")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// readRows loads a YAML list of rows from a local path or an s3://bucket/key
// location, the latter through the WAREHOUSER_S3_* settings.
func readRows(ctx context.Context, path string) ([]map[string]any, error) {
	r, err := openRows(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows file: %w", err)
	}
	defer r.Close()

	var rows []map[string]any
	if err := yaml.NewDecoder(r).Decode(&rows); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse rows file: %w", err)
	}
	return rows, nil
}

func openRows(ctx context.Context, path string) (io.ReadCloser, error) {
	loc, remote, err := filestore.ParseLocation(path)
	if err != nil {
		return nil, err
	}
	if !remote {
		return os.Open(path)
	}

	store, err := minio.New(ctx, filestore.ConfigFromEnv())
	if err != nil {
		return nil, err
	}
	defer store.Close()

	obj, err := store.GetObject(ctx, loc.Bucket, loc.Key)
	if err != nil {
		return nil, err
	}
	log.DebugWith("reading rows from object store", map[string]any{
		"location": loc.String(),
		"size":     obj.Info().Size,
	})
	return obj, nil
}
