package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func AttachmentsCmd() *cobra.Command {
	attachmentsCmd := &cobra.Command{
		Use:   "attachments",
		Short: "Inspect and remove post attachments",
	}

	attachmentsCmd.AddCommand(attachmentsListCmd(), attachmentsDeleteCmd())
	return attachmentsCmd
}

func attachmentsListCmd() *cobra.Command {
	var page, size int

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all attachments, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			result, err := a.AttachmentService.ListAll(page, size)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tPOST\tNAME\tSIZE\tCREATED")
			for _, att := range result.Items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					att.ID,
					att.PostID,
					att.OriginalName,
					humanize.Bytes(uint64(att.Size)),
					att.CreatedAt.Format("2006-01-02 15:04:05"),
				)
			}
			err = tw.Flush()
			if err != nil {
				return err
			}

			fmt.Printf("page %d of %d (%s attachments)\n", result.Page, result.TotalPages, humanize.Comma(result.Total))
			return nil
		},
	}

	listCmd.Flags().IntVar(&page, "page", 1, "1-based page number")
	listCmd.Flags().IntVar(&size, "size", 0, "page size (default ADMIN_PAGE_SIZE, max 100)")
	return listCmd
}

func attachmentsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <attachment-id>",
		Short: "Delete an attachment and its stored file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			err = a.AttachmentService.Delete(args[0])
			if err != nil {
				return err
			}

			fmt.Println("deleted", args[0])
			return nil
		},
	}
}
