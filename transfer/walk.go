package transfer

import (
	"math"
	"time"

	"github.com/pkg/errors"
)

// Converts distances, or pairs of coordinates, into walking durations.
type WalkingTimeCalculator interface {
	WalkingTime(lat1, lon1, lat2, lon2 float64) time.Duration
	WalkingTimeForDistance(distanceKm float64) time.Duration
}

// Great-circle distance in kilometres between two points, by the haversine
// formula.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// Walking times at a constant speed along a straight line, optionally
// scaled to account for streets not being straight lines.
type LinearWalkingTime struct {
	speedKmh float64
	scaling  float64
}

func NewLinearWalkingTime(speedKmh float64) (*LinearWalkingTime, error) {
	return NewLinearWalkingTimeScaled(speedKmh, 1)
}

func NewLinearWalkingTimeScaled(speedKmh, scaling float64) (*LinearWalkingTime, error) {
	if speedKmh <= 0 {
		return nil, errors.Errorf("walking speed must be positive, got %v", speedKmh)
	}
	if scaling <= 0 {
		return nil, errors.Errorf("scaling factor must be positive, got %v", scaling)
	}
	return &LinearWalkingTime{speedKmh: speedKmh, scaling: scaling}, nil
}

func (c *LinearWalkingTime) WalkingTime(lat1, lon1, lat2, lon2 float64) time.Duration {
	return c.WalkingTimeForDistance(HaversineKm(lat1, lon1, lat2, lon2))
}

// Rounded up to whole seconds.
func (c *LinearWalkingTime) WalkingTimeForDistance(distanceKm float64) time.Duration {
	seconds := math.Ceil(c.scaling * distanceKm / c.speedKmh * 3600)
	return time.Duration(seconds) * time.Second
}
