package main

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tour_booking/internal/app"
	"github.com/Freeeeeet/tour_booking/internal/model"
	"github.com/spf13/cobra"
)

func bookingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "booking",
		Short: "Manage bookings",
	}

	cmd.AddCommand(bookingActionCmd("confirm", "Confirm a pending booking", func(ctx context.Context, a *app.App, id int64) (*model.Booking, error) {
		return a.Bookings.Confirm(ctx, id)
	}))
	cmd.AddCommand(bookingActionCmd("complete", "Mark a confirmed booking as completed", func(ctx context.Context, a *app.App, id int64) (*model.Booking, error) {
		return a.Bookings.Complete(ctx, id)
	}))
	cmd.AddCommand(bookingActionCmd("cancel", "Cancel a booking and release its place", func(ctx context.Context, a *app.App, id int64) (*model.Booking, error) {
		result, err := a.Bookings.Cancel(ctx, id)
		return result.Booking, err
	}))
	cmd.AddCommand(bookingActionCmd("show", "Show a booking", func(ctx context.Context, a *app.App, id int64) (*model.Booking, error) {
		return a.Bookings.GetByID(ctx, id)
	}))

	return cmd
}

func bookingActionCmd(use, short string, action func(ctx context.Context, a *app.App, id int64) (*model.Booking, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <booking-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				booking, err := action(ctx, a, id)
				if err != nil {
					return err
				}
				cmd.Printf("Booking %d (%s): %s, %s\n", booking.ID, booking.Reference, booking.Status, booking.Requester.Name)
				return nil
			})
		},
	}
}

func jobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Run a background job once",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "run <horizon|reminders|dispatch>",
		Short: "Run one background job immediately, honouring the job lock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				for _, job := range a.Jobs() {
					if job.Name != args[0] {
						continue
					}
					scheduler := app.NewScheduler(a.Locker, a.Logger)
					if !scheduler.RunOnce(ctx, job) {
						cmd.Printf("Job %s skipped: already running\n", job.Name)
					}
					return nil
				}
				return fmt.Errorf("unknown job %q", args[0])
			})
		},
	})

	return cmd
}
