package model

type RegionCode string

// RegionUnknown collects tenders whose region could not be resolved.
const RegionUnknown RegionCode = "CL-XX"

type Point struct {
	X float64
	Y float64
}

type LatLng struct {
	Lat float64
	Lng float64
}

// Geometry is a closed polygon in the 200x650 map view box.
type Geometry struct {
	Points []Point
	Label  Point
}

type Region struct {
	Code RegionCode
	Name string
	// APIName is the spelling the remote API expects in the region filter.
	APIName  string
	Numeral  string
	Geometry Geometry
	Center   LatLng
}
