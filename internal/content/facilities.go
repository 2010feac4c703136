package content

import (
	"fmt"
	"math"
	"sort"
)

const (
	DefaultSearchRadiusKm = 10.0
	earthRadiusKm         = 6371.0
)

// DefaultOrigin is central Accra, used when the caller sends no position.
var DefaultOrigin = Point{Latitude: 5.5574, Longitude: -0.1976}

type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (point Point) Valid() bool {
	return point.Latitude >= -90 && point.Latitude <= 90 && point.Longitude >= -180 && point.Longitude <= 180
}

type Facility struct {
	ID             string   `yaml:"id" json:"id"`
	Name           string   `yaml:"name" json:"name"`
	Type           string   `yaml:"type" json:"type"`
	Address        string   `yaml:"address" json:"address"`
	Phone          string   `yaml:"phone" json:"phone,omitempty"`
	EmergencyPhone string   `yaml:"emergency_phone" json:"emergency_phone,omitempty"`
	Latitude       float64  `yaml:"latitude" json:"latitude"`
	Longitude      float64  `yaml:"longitude" json:"longitude"`
	Services       []string `yaml:"services" json:"services"`
}

func (facility Facility) validate() error {
	if facility.ID == "" || facility.Name == "" {
		return fmt.Errorf("facility %q needs an id and a name", facility.Name)
	}
	if !facility.Point().Valid() {
		return fmt.Errorf("facility %s has invalid coordinates", facility.ID)
	}
	return nil
}

func (facility Facility) Point() Point {
	return Point{Latitude: facility.Latitude, Longitude: facility.Longitude}
}

type NearbyFacility struct {
	Facility
	DistanceKm float64 `json:"distance_km"`
}

// NearbyFacilities returns facilities within radiusKm of origin, closest
// first. A non-positive radius uses DefaultSearchRadiusKm.
func (catalog *Catalog) NearbyFacilities(origin Point, radiusKm float64) []NearbyFacility {
	if radiusKm <= 0 {
		radiusKm = DefaultSearchRadiusKm
	}

	nearby := make([]NearbyFacility, 0, len(catalog.Facilities))
	for _, facility := range catalog.Facilities {
		distance := HaversineKm(origin, facility.Point())
		if distance > radiusKm {
			continue
		}
		nearby = append(nearby, NearbyFacility{Facility: facility, DistanceKm: math.Round(distance*100) / 100})
	}

	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].DistanceKm < nearby[j].DistanceKm
	})
	return nearby
}

// HaversineKm is the great-circle distance between two points.
func HaversineKm(from Point, to Point) float64 {
	lat1 := degreesToRadians(from.Latitude)
	lat2 := degreesToRadians(to.Latitude)
	dLat := lat2 - lat1
	dLon := degreesToRadians(to.Longitude - from.Longitude)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
