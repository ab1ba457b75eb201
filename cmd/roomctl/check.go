package main

import (
	"fmt"
	"time"

	"roombook/pkg/client"

	"github.com/spf13/cobra"
)

func newCheckCmd(opts *options) *cobra.Command {
	var roomID int64
	var startRaw, endRaw string

	c := &cobra.Command{
		Use:   "check",
		Short: "Check whether a room is free for a time window",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := time.Parse(time.RFC3339, startRaw)
			if err != nil {
				return fmt.Errorf("--start must be RFC 3339: %w", err)
			}
			end, err := time.Parse(time.RFC3339, endRaw)
			if err != nil {
				return fmt.Errorf("--end must be RFC 3339: %w", err)
			}
			if !end.After(start) {
				return fmt.Errorf("--end must be after --start")
			}

			httpClient, err := opts.httpClient()
			if err != nil {
				return err
			}
			rooms := client.NewRoomClient(httpClient)
			resp, err := rooms.Availability(cmd.Context(), roomID, start, end)
			if err != nil {
				return err
			}
			if !resp.IsSuccess() {
				return apiError(resp)
			}
			result, err := rooms.DecodeAvailability(resp)
			if err != nil {
				return err
			}

			if result.Available {
				fmt.Fprintf(out(cmd), "room %d is free from %s to %s\n", roomID, start.Format(time.RFC3339), end.Format(time.RFC3339))
				return nil
			}
			fmt.Fprintf(out(cmd), "room %d is taken (conflicts with booking %v)\n", roomID, result.ConflictID)
			return nil
		},
	}

	c.Flags().Int64Var(&roomID, "room", 0, "room id")
	c.Flags().StringVar(&startRaw, "start", "", "window start, RFC 3339")
	c.Flags().StringVar(&endRaw, "end", "", "window end, RFC 3339")
	_ = c.MarkFlagRequired("room")
	_ = c.MarkFlagRequired("start")
	_ = c.MarkFlagRequired("end")
	return c
}
