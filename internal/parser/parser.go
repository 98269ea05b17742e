package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/saviobatista/route-planner/internal/types"
)

// CommandType identifies a planner command
type CommandType string

const (
	// Route building
	CmdAirport CommandType = "AIRPORT"
	CmdSearch  CommandType = "SEARCH"
	CmdAdd     CommandType = "ADD"
	CmdRemove  CommandType = "REMOVE"
	CmdRename  CommandType = "RENAME"
	CmdMove    CommandType = "MOVE"
	CmdDrag    CommandType = "DRAG"
	CmdDrop    CommandType = "DROP"
	CmdRefuel  CommandType = "REFUEL"

	// Mode lifecycle
	CmdCalc  CommandType = "CALC"
	CmdSave  CommandType = "SAVE"
	CmdOpen  CommandType = "OPEN"
	CmdEdit  CommandType = "EDIT"
	CmdDone  CommandType = "DONE"
	CmdReset CommandType = "RESET"
	CmdList  CommandType = "LIST"

	// Output
	CmdSummary CommandType = "SUMMARY"
	CmdView    CommandType = "VIEW"
	CmdDump    CommandType = "DUMP"
)

// Command is one parsed planner input line. Which fields are set depends
// on Type.
type Command struct {
	Type CommandType

	// Ref names an existing waypoint: "#<index>" or a waypoint id.
	Ref   string
	Name  string
	Query string

	Latitude  float64
	Longitude float64
	Index     *int // explicit insertion index
	From, To  int

	Refuel *types.Refuel

	AircraftProfileID string
	CruiseAltitude    float64
	DepartureTime     time.Time

	FlightID string
	Limit    int
}

const defaultListLimit = 20

var minFields = map[CommandType]int{
	CmdAirport: 4,
	CmdSearch:  2,
	CmdAdd:     3,
	CmdRemove:  2,
	CmdRename:  3,
	CmdMove:    3,
	CmdDrag:    4,
	CmdDrop:    4,
	CmdRefuel:  4,
	CmdCalc:    3,
	CmdSave:    2,
	CmdOpen:    2,
	CmdEdit:    1,
	CmdDone:    1,
	CmdReset:   1,
	CmdList:    1,
	CmdSummary: 1,
	CmdView:    1,
	CmdDump:    1,
}

// ParseCommand parses a comma separated command line such as
// "ADD,41.5,-72.5,Lake" or "MOVE,2,1". now is used as the departure time
// when CALC does not give one.
func ParseCommand(raw string, now time.Time) (*Command, error) {
	fields := strings.Split(strings.TrimSpace(raw), ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if fields[0] == "" {
		return nil, fmt.Errorf("empty command")
	}

	cmd := &Command{Type: CommandType(strings.ToUpper(fields[0]))}
	need, ok := minFields[cmd.Type]
	if !ok {
		return nil, fmt.Errorf("unknown command: %s", fields[0])
	}
	if len(fields) < need {
		return nil, fmt.Errorf("invalid %s command: expected at least %d fields, got %d", cmd.Type, need, len(fields))
	}

	var err error
	switch cmd.Type {
	case CmdAirport:
		cmd.Name = fields[1]
		if cmd.Latitude, cmd.Longitude, err = parseLatLon(fields[2], fields[3]); err != nil {
			return nil, err
		}
		if cmd.Index, err = optionalIndex(fields, 4); err != nil {
			return nil, err
		}

	case CmdSearch:
		cmd.Query = fields[1]
		if cmd.Index, err = optionalIndex(fields, 2); err != nil {
			return nil, err
		}

	case CmdAdd:
		if cmd.Latitude, cmd.Longitude, err = parseLatLon(fields[1], fields[2]); err != nil {
			return nil, err
		}
		if len(fields) > 3 {
			cmd.Name = fields[3]
		}
		if cmd.Index, err = optionalIndex(fields, 4); err != nil {
			return nil, err
		}

	case CmdRemove:
		cmd.Ref = fields[1]

	case CmdRename:
		cmd.Ref = fields[1]
		cmd.Name = fields[2]

	case CmdMove:
		if cmd.From, err = strconv.Atoi(fields[1]); err != nil {
			return nil, fmt.Errorf("invalid move source: %w", err)
		}
		if cmd.To, err = strconv.Atoi(fields[2]); err != nil {
			return nil, fmt.Errorf("invalid move target: %w", err)
		}

	case CmdDrag, CmdDrop:
		cmd.Ref = fields[1]
		if cmd.Latitude, cmd.Longitude, err = parseLatLon(fields[2], fields[3]); err != nil {
			return nil, err
		}

	case CmdRefuel:
		cmd.Ref = fields[1]
		r := &types.Refuel{IsStop: fields[2] == "1", ToFull: fields[3] == "1"}
		if len(fields) > 4 && fields[4] != "" {
			gals, err := strconv.ParseFloat(fields[4], 64)
			if err != nil {
				return nil, fmt.Errorf("invalid refuel gallons: %w", err)
			}
			r.RefuelGals = &gals
		}
		cmd.Refuel = r

	case CmdCalc:
		cmd.AircraftProfileID = fields[1]
		if cmd.CruiseAltitude, err = strconv.ParseFloat(fields[2], 64); err != nil {
			return nil, fmt.Errorf("invalid cruise altitude: %w", err)
		}
		cmd.DepartureTime = now
		if len(fields) > 3 && fields[3] != "" {
			if cmd.DepartureTime, err = time.Parse(time.RFC3339, fields[3]); err != nil {
				return nil, fmt.Errorf("invalid departure time: %w", err)
			}
		}

	case CmdSave:
		cmd.Name = fields[1]

	case CmdOpen:
		cmd.FlightID = fields[1]

	case CmdList:
		cmd.Limit = defaultListLimit
		if len(fields) > 1 && fields[1] != "" {
			if cmd.Limit, err = strconv.Atoi(fields[1]); err != nil || cmd.Limit <= 0 {
				return nil, fmt.Errorf("invalid list limit: %s", fields[1])
			}
		}
	}

	return cmd, nil
}

// RefIndex returns the index encoded in a "#<index>" reference.
func RefIndex(ref string) (int, bool) {
	if !strings.HasPrefix(ref, "#") {
		return 0, false
	}
	i, err := strconv.Atoi(ref[1:])
	if err != nil {
		return 0, false
	}
	return i, true
}

func parseLatLon(latStr, lonStr string) (float64, float64, error) {
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude: %w", err)
	}
	if !finite(lat) || !finite(lon) {
		return 0, 0, fmt.Errorf("coordinates must be finite: %v,%v", lat, lon)
	}
	if lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("latitude out of range: %v", lat)
	}
	if lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("longitude out of range: %v", lon)
	}
	return lat, lon, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func optionalIndex(fields []string, i int) (*int, error) {
	if len(fields) <= i || fields[i] == "" {
		return nil, nil
	}
	idx, err := strconv.Atoi(fields[i])
	if err != nil {
		return nil, fmt.Errorf("invalid insertion index: %w", err)
	}
	return &idx, nil
}
