package cli

import (
	"github.com/spf13/cobra"

	"github.com/Shivanand-hulikatti/sola-table/internal/model"
)

// CreateOptions holds flags for the create command.
type CreateOptions struct {
	*RootOptions
	Organizer string
	Request   model.CreateTableRequest
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a record",
		Example: `  tablectl create --organizer alice --title "Board games" --description "Friday night" \
    --max-participants 6 --country Korea --city Seoul --location "Gangnam exit 11" \
    --price 15000 --date 1792584000 --category Games --image-url https://example.com/b.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(opts.Kind)
			if err != nil {
				return err
			}
			svc, err := opts.service(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			t, err := svc.Create(cmd.Context(), kind, opts.Organizer, opts.Request)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), t)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Organizer, "organizer", "", "organizer identity (required)")
	f.StringVar(&opts.Request.Title, "title", "", "title")
	f.StringVar(&opts.Request.Description, "description", "", "description")
	f.IntVar(&opts.Request.MaxParticipants, "max-participants", 0, "capacity (1-255)")
	f.StringVar(&opts.Request.Country, "country", "", "country")
	f.StringVar(&opts.Request.City, "city", "", "city")
	f.StringVar(&opts.Request.Location, "location", "", "location")
	f.Uint64Var(&opts.Request.Price, "price", 0, "price in the smallest currency unit")
	f.Int64Var(&opts.Request.Date, "date", 0, "event date as unix seconds")
	f.StringVar(&opts.Request.Category, "category", "", "category")
	f.StringVar(&opts.Request.ImageURL, "image-url", "", "image URL")
	_ = cmd.MarkFlagRequired("organizer")

	return cmd
}

// NewJoinCommand creates the join command.
func NewJoinCommand(rootOpts *RootOptions) *cobra.Command {
	var participant string

	cmd := &cobra.Command{
		Use:   "join <id>",
		Short: "Join a record as participant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(rootOpts.Kind)
			if err != nil {
				return err
			}
			svc, err := rootOpts.service(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			t, err := svc.Join(cmd.Context(), kind, args[0], participant)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), t)
		},
	}

	cmd.Flags().StringVar(&participant, "participant", "", "participant identity (required)")
	_ = cmd.MarkFlagRequired("participant")

	return cmd
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a single record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(rootOpts.Kind)
			if err != nil {
				return err
			}
			svc, err := rootOpts.service(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			t, err := svc.Get(cmd.Context(), kind, args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), t)
		},
	}
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print all records of a kind",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(rootOpts.Kind)
			if err != nil {
				return err
			}
			svc, err := rootOpts.service(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			tables, err := svc.List(cmd.Context(), kind)
			if err != nil {
				return err
			}
			if tables == nil {
				tables = []model.Table{}
			}
			return writeJSON(cmd.OutOrStdout(), tables)
		},
	}
}
