package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Shivanand-hulikatti/sola-table/internal/model"
)

// SeedFile is the YAML document accepted by the seed command.
type SeedFile struct {
	Tables []SeedEntry `yaml:"tables"`
}

// SeedEntry describes one record to create. Kind falls back to --kind.
type SeedEntry struct {
	Kind                     model.Kind `yaml:"kind,omitempty"`
	Organizer                string     `yaml:"organizer"`
	model.CreateTableRequest `yaml:",inline"`
}

// LoadSeedFile reads and parses a seed file.
func LoadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var f SeedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if len(f.Tables) == 0 {
		return nil, fmt.Errorf("seed file %s has no tables", path)
	}
	return &f, nil
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create records from a YAML file",
		Long: `Create every record listed in a YAML file. Entries are created in order and
the command stops at the first invalid entry.

Example file:
  tables:
    - kind: meetup
      organizer: alice
      title: Board games
      description: Friday night board games
      max_participants: 6
      country: Korea
      city: Seoul
      location: Gangnam station exit 11
      price: 15000
      date: 1792584000
      category: Games
      image_url: https://example.com/board.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defaultKind, err := parseKind(rootOpts.Kind)
			if err != nil {
				return err
			}
			seed, err := LoadSeedFile(file)
			if err != nil {
				return err
			}
			svc, err := rootOpts.service(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			created := make([]*model.Table, 0, len(seed.Tables))
			for i, entry := range seed.Tables {
				kind := entry.Kind
				if kind == "" {
					kind = defaultKind
				}
				t, err := svc.Create(cmd.Context(), kind, entry.Organizer, entry.CreateTableRequest)
				if err != nil {
					return fmt.Errorf("entry %d: %w", i+1, err)
				}
				created = append(created, t)
			}
			return writeJSON(cmd.OutOrStdout(), created)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the YAML seed file (required)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
