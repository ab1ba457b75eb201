package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"roombook/pkg/client"

	"github.com/spf13/cobra"
)

func newRoomsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "Browse meeting rooms",
	}
	cmd.AddCommand(newRoomsListCmd(opts))
	return cmd
}

func newRoomsListCmd(opts *options) *cobra.Command {
	var filter client.RoomFilter
	var activeOnly bool

	c := &cobra.Command{
		Use:   "list",
		Short: "List rooms, optionally filtered",
		RunE: func(cmd *cobra.Command, args []string) error {
			httpClient, err := opts.httpClient()
			if err != nil {
				return err
			}
			if activeOnly {
				active := true
				filter.Active = &active
			}

			rooms := client.NewRoomClient(httpClient)
			resp, err := rooms.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if !resp.IsSuccess() {
				return apiError(resp)
			}
			list, err := rooms.DecodeRooms(resp)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(out(cmd), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tCAPACITY\tLOCATION\tEQUIPMENT\tACTIVE")
			for _, r := range list {
				fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%t\n",
					r.ID, r.Title, r.Capacity, r.Location, strings.Join(r.Equipment, ", "), r.IsActive)
			}
			return w.Flush()
		},
	}

	c.Flags().StringVarP(&filter.Query, "query", "q", "", "search title, location and equipment")
	c.Flags().StringVar(&filter.Capacity, "capacity", "", "capacity band: small, medium or large")
	c.Flags().BoolVar(&activeOnly, "active", false, "only rooms open for booking")
	return c
}
