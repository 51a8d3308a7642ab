package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Freeeeeet/tour_booking/internal/app"
	"github.com/Freeeeeet/tour_booking/internal/model"
	"github.com/Freeeeeet/tour_booking/internal/service"
	"github.com/spf13/cobra"
)

func parseOptionalDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return model.ParseDate(value)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", arg, err)
	}
	return id, nil
}

func slotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Manage bookable slots",
	}

	cmd.AddCommand(generateCmd())
	cmd.AddCommand(listSlotsCmd())
	cmd.AddCommand(createSlotCmd())
	cmd.AddCommand(setAvailableCmd("open", true))
	cmd.AddCommand(setAvailableCmd("close", false))
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <slot-id>",
		Short: "Delete a slot without bookings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Slots.DeleteSlot(ctx, id); err != nil {
					return err
				}
				cmd.Printf("Slot %d deleted\n", id)
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every slot that has no bookings",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				result, err := a.Slots.ClearSlots(ctx)
				cmd.Printf("Deleted %d slots, kept %d with bookings\n", result.Deleted, result.Kept)
				return err
			})
		},
	})

	return cmd
}

func generateCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate slots from the working template (defaults to the booking window)",
		RunE: func(cmd *cobra.Command, args []string) error {
			fromDate, err := parseOptionalDate(from)
			if err != nil {
				return err
			}
			toDate, err := parseOptionalDate(to)
			if err != nil {
				return err
			}

			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				var result service.GenerateResult
				if fromDate.IsZero() && toDate.IsZero() {
					result, err = a.Slots.ExtendHorizon(ctx)
				} else {
					windowFrom, windowTo := a.Template.BookingWindow(a.Clock.Now())
					if fromDate.IsZero() {
						fromDate = windowFrom
					}
					if toDate.IsZero() {
						toDate = windowTo
					}
					result, err = a.Slots.Generate(ctx, fromDate, toDate)
				}
				if err != nil {
					return err
				}
				cmd.Printf("Created %d slots, skipped %d existing\n", result.Created, result.Skipped)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "First date, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "Last date, YYYY-MM-DD")
	return cmd
}

func listSlotsCmd() *cobra.Command {
	var from, to string
	var serviceID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List open slots grouped by day",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := service.AvailabilityQuery{}
			var err error
			if q.From, err = parseOptionalDate(from); err != nil {
				return err
			}
			if q.To, err = parseOptionalDate(to); err != nil {
				return err
			}
			if serviceID > 0 {
				q.ServiceID = &serviceID
			}

			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				for day, err := range a.Availability.Days(ctx, q) {
					if err != nil {
						return err
					}
					cmd.Printf("%s %s\n", day.Date.Format(time.DateOnly), day.Date.Weekday())
					for _, slot := range day.Slots {
						cmd.Printf("  #%-6d %s-%s  %d/%d\n",
							slot.ID, slot.StartTime, slot.EndTime, slot.CurrentBookings, slot.MaxBookings)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "First date, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "Last date, YYYY-MM-DD")
	cmd.Flags().Int64Var(&serviceID, "service", 0, "Only slots for this service")
	return cmd
}

func createSlotCmd() *cobra.Command {
	var date, start, end string
	var maxBookings int
	var serviceID int64

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a single slot outside the template",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := model.ParseDate(date)
			if err != nil {
				return err
			}
			startTime, err := model.ParseTimeOfDay(start)
			if err != nil {
				return err
			}
			endTime, err := model.ParseTimeOfDay(end)
			if err != nil {
				return err
			}
			var svc *int64
			if serviceID > 0 {
				svc = &serviceID
			}

			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if maxBookings <= 0 {
					maxBookings = a.Template.MaxBookings
				}
				slot, err := a.Slots.CreateSlot(ctx, d, startTime, endTime, maxBookings, svc)
				if err != nil {
					return err
				}
				cmd.Printf("Slot %d created: %s %s-%s\n", slot.ID, slot.Date.Format(time.DateOnly), slot.StartTime, slot.EndTime)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Date, YYYY-MM-DD")
	cmd.Flags().StringVar(&start, "start", "", "Start time, HH:MM")
	cmd.Flags().StringVar(&end, "end", "", "End time, HH:MM")
	cmd.Flags().IntVar(&maxBookings, "max", 0, "Capacity (defaults to MAX_BOOKINGS_PER_SLOT)")
	cmd.Flags().Int64Var(&serviceID, "service", 0, "Restrict the slot to a service")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func setAvailableCmd(use string, available bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <slot-id>",
		Short: fmt.Sprintf("Mark a slot as %s for booking", map[bool]string{true: "open", false: "closed"}[available]),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Slots.SetAvailable(ctx, id, available); err != nil {
					return err
				}
				cmd.Printf("Slot %d availability set to %t\n", id, available)
				return nil
			})
		},
	}
}
