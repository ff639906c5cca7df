package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/jvrace/internal/domain/raceid"
)

var errInvalidRaceID = errors.New("invalid race id")

// raceIDView is the printed form of a race id.
type raceIDView struct {
	RaceID     string `json:"race_id"`
	Display    string `json:"display"`
	Date       string `json:"date"`
	VenueCode  string `json:"venue_code"`
	VenueName  string `json:"venue_name"`
	Kai        int    `json:"kai"`
	Nichi      int    `json:"nichi"`
	RaceNumber int    `json:"race_number"`
}

func (c *cli) raceIDCmd() *cobra.Command {
	var short, date, venue string
	cmd := &cobra.Command{
		Use:   "raceid [race-id]",
		Short: "Decode a 16-digit race id or build one from a 12-digit external id",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id string
			switch {
			case short != "":
				if len(args) > 0 {
					return fmt.Errorf("%w: pass either an id or --short", errInvalidRaceID)
				}
				built, ok := raceid.BuildFromShortID(short, date, venue)
				if !ok {
					return fmt.Errorf("%w: --short %q --date %q --venue %q", errInvalidRaceID, short, date, venue)
				}
				id = built
			case len(args) == 1:
				id = args[0]
			default:
				return fmt.Errorf("%w: missing race id", errInvalidRaceID)
			}

			f, ok := raceid.Parse(id)
			if !ok {
				return fmt.Errorf("%w: %q", errInvalidRaceID, id)
			}
			return printJSON(c.stdout, raceIDView{
				RaceID:     id,
				Display:    raceid.HumanReadable(id),
				Date:       f.Date(),
				VenueCode:  f.VenueCode,
				VenueName:  f.VenueName(),
				Kai:        f.Kai,
				Nichi:      f.Nichi,
				RaceNumber: f.RaceNumber,
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&short, "short", "", "12-digit external id (YYYY + venue + kai + nichi + race)")
	f.StringVar(&date, "date", "", "race date for --short (YYYY-MM-DD or YYYY/M/D)")
	f.StringVar(&venue, "venue", "", "venue name for --short, e.g. 中山")
	cmd.MarkFlagsRequiredTogether("short", "date", "venue")
	return cmd
}
