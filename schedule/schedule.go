package schedule

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"

	"transit.dev/raptor/model"
)

var (
	// The feed references entities that don't exist, or contradicts
	// itself. Fatal at build time.
	ErrFeedInconsistent = errors.New("feed inconsistent")

	// A construction parameter is out of its legal range.
	ErrInvalidParameter = errors.New("invalid parameter")

	// An agency names a time zone the system zone database doesn't know.
	ErrUnresolvableZone = errors.New("unresolvable agency time zone")
)

// The query-optimised timetable. Immutable once built: the router, the
// transfer graph and any number of concurrent queries borrow references
// into it.
type Schedule struct {
	agencies []*Agency
	stops    *StopManager
	routes   []*Route
}

func (s *Schedule) Agencies() []*Agency {
	return s.agencies
}

func (s *Schedule) Stops() []*Stop {
	return s.stops.Stops()
}

func (s *Schedule) Stations() []*Station {
	return s.stops.Stations()
}

func (s *Schedule) Routes() []*Route {
	return s.routes
}

func (s *Schedule) StopByID(id string) (*Stop, bool) {
	return s.stops.StopByID(id)
}

type BuildOptions struct {
	// Limits calendar expansion, and with it the number of trip
	// instantiations. Zero means the whole feed period.
	Window DateWindow
}

// Materialises a Schedule from a parsed feed.
//
// Stop times become absolute instants in the owning agency's zone, one
// concrete trip is instantiated per service date, and trips are grouped
// into routes by (stop sequence, GTFS route id).
func Build(feed *model.Feed, opts BuildOptions) (*Schedule, error) {
	agencies, agencyByID, err := buildAgencies(feed.Agencies)
	if err != nil {
		return nil, err
	}

	stops, err := buildStops(feed.Stops)
	if err != nil {
		return nil, err
	}

	services, err := ExpandCalendars(feed.Calendars, feed.CalendarDates, opts.Window)
	if err != nil {
		return nil, err
	}

	routes, err := buildRoutes(feed, stops, services, agencies, agencyByID)
	if err != nil {
		return nil, err
	}

	return &Schedule{
		agencies: agencies,
		stops:    stops,
		routes:   routes,
	}, nil
}

func buildAgencies(rows []model.Agency) ([]*Agency, map[string]*Agency, error) {
	agencies := make([]*Agency, 0, len(rows))
	byID := make(map[string]*Agency, len(rows))
	for _, a := range rows {
		loc, err := time.LoadLocation(a.Timezone)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: '%s' for agency '%s'", ErrUnresolvableZone, a.Timezone, a.ID)
		}
		agency := &Agency{
			ID:       a.ID,
			Name:     a.Name,
			URL:      a.URL,
			Location: loc,
		}
		agencies = append(agencies, agency)
		byID[a.ID] = agency
	}
	if len(agencies) == 0 {
		return nil, nil, fmt.Errorf("%w: no agencies", ErrFeedInconsistent)
	}
	return agencies, byID, nil
}

// Partitions stops.txt by location type and assembles the stop manager:
// stops with their boarding areas, stations with their entrances, and the
// station to child stop mapping.
func buildStops(rows []model.Stop) (*StopManager, error) {
	var platforms, stationRows []model.Stop
	boardingAreas := map[string][]BoardingArea{}
	entrances := map[string][]Entrance{}

	for _, row := range rows {
		switch row.LocationType {
		case model.LocationTypeStop:
			platforms = append(platforms, row)
		case model.LocationTypeStation:
			stationRows = append(stationRows, row)
		case model.LocationTypeEntranceExit:
			if row.ParentStation == "" {
				return nil, fmt.Errorf("%w: entrance '%s' has no parent_station", ErrFeedInconsistent, row.ID)
			}
			entrances[row.ParentStation] = append(entrances[row.ParentStation], Entrance{
				ID:   row.ID,
				Name: row.Name,
				Lat:  row.Lat,
				Lon:  row.Lon,
			})
		case model.LocationTypeBoardingArea:
			if row.ParentStation == "" {
				return nil, fmt.Errorf("%w: boarding area '%s' has no parent stop", ErrFeedInconsistent, row.ID)
			}
			boardingAreas[row.ParentStation] = append(boardingAreas[row.ParentStation], BoardingArea{
				ID:   row.ID,
				Name: row.Name,
				Lat:  row.Lat,
				Lon:  row.Lon,
			})
		case model.LocationTypeGenericNode:
			// Pathway nodes play no part in routing.
		}
	}

	stops := make([]*Stop, 0, len(platforms))
	children := map[string][]string{}
	for _, row := range platforms {
		stops = append(stops, &Stop{
			ID:            row.ID,
			Name:          row.Name,
			Lat:           row.Lat,
			Lon:           row.Lon,
			PlatformCode:  row.PlatformCode,
			BoardingAreas: boardingAreas[row.ID],
		})
		delete(boardingAreas, row.ID)
		if row.ParentStation != "" {
			children[row.ParentStation] = append(children[row.ParentStation], row.ID)
		}
	}
	for parent := range boardingAreas {
		return nil, fmt.Errorf("%w: boarding areas reference unknown stop '%s'", ErrFeedInconsistent, parent)
	}

	stations := make([]*Station, 0, len(stationRows))
	for _, row := range stationRows {
		stations = append(stations, &Station{
			ID:        row.ID,
			Name:      row.Name,
			Entrances: entrances[row.ID],
		})
		delete(entrances, row.ID)
	}
	for parent := range entrances {
		return nil, fmt.Errorf("%w: entrances reference unknown station '%s'", ErrFeedInconsistent, parent)
	}

	return NewStopManager(stops, stations, children)
}

// A bucket of trips sharing a grouping key. Buckets under the same key are
// compared by id and stop sequence; the digest alone never merges them.
type routeBucket struct {
	routeID string
	stopIDs []string
	trips   []*Trip
}

func buildRoutes(
	feed *model.Feed,
	stops *StopManager,
	services map[string][]time.Time,
	agencies []*Agency,
	agencyByID map[string]*Agency,
) ([]*Route, error) {

	routeByID := make(map[string]model.Route, len(feed.Routes))
	for _, r := range feed.Routes {
		routeByID[r.ID] = r
	}

	// Group stop_times rows by trip and order them by stop_sequence.
	stopTimesByTrip := map[string][]model.StopTime{}
	for _, st := range feed.StopTimes {
		stopTimesByTrip[st.TripID] = append(stopTimesByTrip[st.TripID], st)
	}
	for _, rows := range stopTimesByTrip {
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].StopSequence < rows[j].StopSequence
		})
	}

	buckets := map[string][]*routeBucket{}

	for _, mt := range feed.Trips {
		dates, found := services[mt.ServiceID]
		if !found {
			return nil, fmt.Errorf("%w: trip '%s' references unknown service '%s'", ErrFeedInconsistent, mt.ID, mt.ServiceID)
		}
		mroute, found := routeByID[mt.RouteID]
		if !found {
			return nil, fmt.Errorf("%w: trip '%s' references unknown route '%s'", ErrFeedInconsistent, mt.ID, mt.RouteID)
		}
		rows := stopTimesByTrip[mt.ID]
		if len(rows) == 0 {
			return nil, fmt.Errorf("%w: trip '%s' has no stop times", ErrFeedInconsistent, mt.ID)
		}

		agency, err := resolveAgency(mroute, agencies, agencyByID)
		if err != nil {
			return nil, err
		}

		stopIDs := lo.Map(rows, func(row model.StopTime, _ int) string {
			return row.StopID
		})
		key := routeGroupKey(mt.RouteID, stopIDs)

		// One concrete trip per date the service is active.
		for _, date := range dates {
			trip, err := instantiateTrip(mt, rows, date, agency.Location, stops)
			if err != nil {
				return nil, err
			}

			var bucket *routeBucket
			for _, b := range buckets[key] {
				if b.routeID == mt.RouteID && slices.Equal(b.stopIDs, stopIDs) {
					bucket = b
					break
				}
			}
			if bucket == nil {
				bucket = &routeBucket{routeID: mt.RouteID, stopIDs: stopIDs}
				buckets[key] = append(buckets[key], bucket)
			}
			bucket.trips = append(bucket.trips, trip)
		}
	}

	routes := []*Route{}
	for _, bs := range buckets {
		for _, b := range bs {
			sort.SliceStable(b.trips, func(i, j int) bool {
				return b.trips[i].Departure().Before(b.trips[j].Departure())
			})
			mroute := routeByID[b.routeID]
			agency, err := resolveAgency(mroute, agencies, agencyByID)
			if err != nil {
				return nil, err
			}
			routes = append(routes, &Route{
				ID:        b.routeID,
				ShortName: mroute.ShortName,
				LongName:  mroute.LongName,
				Agency:    agency,
				Trips:     slices.Clip(b.trips),
			})
		}
	}

	// Map iteration order is random; fix an ordering so repeated builds
	// agree.
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].ID != routes[j].ID {
			return routes[i].ID < routes[j].ID
		}
		si := lo.Map(routes[i].StopSequence(), func(s *Stop, _ int) string { return s.ID })
		sj := lo.Map(routes[j].StopSequence(), func(s *Stop, _ int) string { return s.ID })
		return strings.Join(si, ",") < strings.Join(sj, ",")
	})

	return routes, nil
}

func resolveAgency(route model.Route, agencies []*Agency, byID map[string]*Agency) (*Agency, error) {
	if route.AgencyID == "" {
		// agency_id is optional when the feed has a single agency.
		if len(agencies) == 1 {
			return agencies[0], nil
		}
		return nil, fmt.Errorf("%w: route '%s' has no agency_id", ErrFeedInconsistent, route.ID)
	}
	agency, found := byID[route.AgencyID]
	if !found {
		return nil, fmt.Errorf("%w: route '%s' references unknown agency '%s'", ErrFeedInconsistent, route.ID, route.AgencyID)
	}
	return agency, nil
}

func instantiateTrip(
	mt model.Trip,
	rows []model.StopTime,
	date time.Time,
	loc *time.Location,
	stops *StopManager,
) (*Trip, error) {

	stopTimes := make([]StopTime, len(rows))
	for i, row := range rows {
		stop, found := stops.StopByID(row.StopID)
		if !found {
			return nil, fmt.Errorf("%w: stop time references unknown stop '%s'", ErrFeedInconsistent, row.StopID)
		}

		ah, am, as := row.ArrivalHMS()
		arrival := AbsoluteTime(date, ah, am, as, loc)
		departure := arrival
		if row.Departure != row.Arrival {
			dh, dm, ds := row.DepartureHMS()
			departure = AbsoluteTime(date, dh, dm, ds, loc)
		}

		stopTimes[i] = StopTime{
			Arrival:   arrival,
			Departure: departure,
			Stop:      stop,
		}
	}

	return &Trip{
		ID:        mt.ID,
		ShapeID:   mt.ShapeID,
		RouteID:   mt.RouteID,
		StopTimes: stopTimes,
	}, nil
}
