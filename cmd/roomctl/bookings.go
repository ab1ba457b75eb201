package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"roombook/pkg/client"

	"github.com/spf13/cobra"
)

func newBookingsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "Manage your bookings",
	}
	cmd.AddCommand(newBookingsMineCmd(opts))
	cmd.AddCommand(newBookingsCancelCmd(opts))
	return cmd
}

func newBookingsMineCmd(opts *options) *cobra.Command {
	var scope string

	c := &cobra.Command{
		Use:   "mine",
		Short: "List your bookings, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			httpClient, err := opts.httpClient()
			if err != nil {
				return err
			}

			bookings := client.NewBookingClient(httpClient)
			resp, err := bookings.Mine(cmd.Context(), scope)
			if err != nil {
				return err
			}
			if !resp.IsSuccess() {
				return apiError(resp)
			}
			list, err := bookings.DecodeBookings(resp)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(out(cmd), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tROOM\tSTART\tEND\tSTATUS")
			for _, b := range list {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					b.ID, b.Title, b.MeetingRoom.Value,
					b.StartTime.Local().Format(time.DateTime), b.EndTime.Local().Format(time.DateTime),
					b.Status.Value)
			}
			return w.Flush()
		},
	}

	c.Flags().StringVar(&scope, "scope", "all", "all, upcoming or past")
	return c
}

func newBookingsCancelCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel ID",
		Short: "Cancel one of your bookings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid booking id %q", args[0])
			}

			httpClient, err := opts.httpClient()
			if err != nil {
				return err
			}
			bookings := client.NewBookingClient(httpClient)
			resp, err := bookings.Cancel(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !resp.IsSuccess() {
				return apiError(resp)
			}

			fmt.Fprintf(out(cmd), "booking %d cancelled\n", id)
			return nil
		},
	}
}
