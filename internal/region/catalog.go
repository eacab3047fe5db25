package region

import (
	"github.com/nurpe/licitaciones-portal/internal/model"
)

func pts(coords ...float64) []model.Point {
	points := make([]model.Point, 0, len(coords)/2)
	for i := 0; i+1 < len(coords); i += 2 {
		points = append(points, model.Point{X: coords[i], Y: coords[i+1]})
	}
	return points
}

// catalog is ordered north to south.
var catalog = []model.Region{
	{
		Code: "CL-AP", Name: "Arica y Parinacota", APIName: "AricaParinacota", Numeral: "XV",
		Geometry: model.Geometry{Points: pts(50, 20, 80, 20, 85, 25, 80, 35, 50, 35), Label: model.Point{X: 65, Y: 27.5}},
		Center:   model.LatLng{Lat: -18.4783, Lng: -70.3126},
	},
	{
		Code: "CL-TA", Name: "Tarapacá", APIName: "Tarapaca", Numeral: "I",
		Geometry: model.Geometry{Points: pts(45, 40, 90, 40, 95, 50, 90, 70, 45, 70), Label: model.Point{X: 67.5, Y: 55}},
		Center:   model.LatLng{Lat: -20.2307, Lng: -70.1351},
	},
	{
		Code: "CL-AN", Name: "Antofagasta", APIName: "Antofagasta", Numeral: "II",
		Geometry: model.Geometry{Points: pts(40, 75, 100, 75, 105, 85, 100, 120, 40, 120), Label: model.Point{X: 70, Y: 97.5}},
		Center:   model.LatLng{Lat: -23.6509, Lng: -70.4005},
	},
	{
		Code: "CL-AT", Name: "Atacama", APIName: "Atacama", Numeral: "III",
		Geometry: model.Geometry{Points: pts(35, 125, 110, 125, 115, 135, 110, 160, 35, 160), Label: model.Point{X: 72.5, Y: 142.5}},
		Center:   model.LatLng{Lat: -27.3668, Lng: -70.3321},
	},
	{
		Code: "CL-CO", Name: "Coquimbo", APIName: "Coquimbo", Numeral: "IV",
		Geometry: model.Geometry{Points: pts(30, 165, 120, 165, 125, 175, 120, 200, 30, 200), Label: model.Point{X: 75, Y: 182.5}},
		Center:   model.LatLng{Lat: -29.9533, Lng: -71.3395},
	},
	{
		Code: "CL-VS", Name: "Valparaíso", APIName: "Valparaiso", Numeral: "V",
		Geometry: model.Geometry{Points: pts(25, 205, 130, 205, 135, 215, 130, 235, 25, 235), Label: model.Point{X: 77.5, Y: 220}},
		Center:   model.LatLng{Lat: -33.0472, Lng: -71.6127},
	},
	{
		Code: "CL-RM", Name: "Metropolitana", APIName: "Metropolitana", Numeral: "RM",
		Geometry: model.Geometry{Points: pts(20, 240, 140, 240, 145, 250, 140, 265, 20, 265), Label: model.Point{X: 80, Y: 252.5}},
		Center:   model.LatLng{Lat: -33.4489, Lng: -70.6693},
	},
	{
		Code: "CL-LI", Name: "O'Higgins", APIName: "OHiggins", Numeral: "VI",
		Geometry: model.Geometry{Points: pts(15, 270, 150, 270, 155, 280, 150, 300, 15, 300), Label: model.Point{X: 82.5, Y: 285}},
		Center:   model.LatLng{Lat: -34.1708, Lng: -70.7444},
	},
	{
		Code: "CL-ML", Name: "Maule", APIName: "Maule", Numeral: "VII",
		Geometry: model.Geometry{Points: pts(10, 305, 160, 305, 165, 315, 160, 340, 10, 340), Label: model.Point{X: 85, Y: 322.5}},
		Center:   model.LatLng{Lat: -35.4264, Lng: -71.6554},
	},
	{
		Code: "CL-NB", Name: "Ñuble", APIName: "Nuble", Numeral: "XVI",
		Geometry: model.Geometry{Points: pts(5, 345, 170, 345, 175, 355, 170, 370, 5, 370), Label: model.Point{X: 87.5, Y: 357.5}},
		Center:   model.LatLng{Lat: -36.6067, Lng: -72.1033},
	},
	{
		Code: "CL-BI", Name: "Biobío", APIName: "Biobio", Numeral: "VIII",
		Geometry: model.Geometry{Points: pts(0, 375, 180, 375, 185, 385, 180, 410, 0, 410), Label: model.Point{X: 90, Y: 392.5}},
		Center:   model.LatLng{Lat: -36.8201, Lng: -73.0444},
	},
	{
		Code: "CL-AR", Name: "Araucanía", APIName: "Araucania", Numeral: "IX",
		Geometry: model.Geometry{Points: pts(10, 415, 160, 415, 165, 425, 160, 450, 10, 450), Label: model.Point{X: 85, Y: 432.5}},
		Center:   model.LatLng{Lat: -38.7397, Lng: -72.5984},
	},
	{
		Code: "CL-LR", Name: "Los Ríos", APIName: "LosRios", Numeral: "XIV",
		Geometry: model.Geometry{Points: pts(20, 455, 140, 455, 145, 465, 140, 485, 20, 485), Label: model.Point{X: 80, Y: 470}},
		Center:   model.LatLng{Lat: -39.8233, Lng: -73.2458},
	},
	{
		Code: "CL-LL", Name: "Los Lagos", APIName: "LosLagos", Numeral: "X",
		Geometry: model.Geometry{Points: pts(30, 490, 120, 490, 125, 500, 120, 530, 30, 530), Label: model.Point{X: 75, Y: 510}},
		Center:   model.LatLng{Lat: -41.4718, Lng: -72.9396},
	},
	{
		Code: "CL-AI", Name: "Aysén", APIName: "Aysen", Numeral: "XI",
		Geometry: model.Geometry{Points: pts(40, 535, 100, 535, 105, 545, 100, 580, 40, 580), Label: model.Point{X: 70, Y: 557.5}},
		Center:   model.LatLng{Lat: -45.5752, Lng: -72.0662},
	},
	{
		Code: "CL-MA", Name: "Magallanes", APIName: "Magallanes", Numeral: "XII",
		Geometry: model.Geometry{Points: pts(50, 585, 80, 585, 85, 595, 80, 620, 50, 620), Label: model.Point{X: 65, Y: 602.5}},
		Center:   model.LatLng{Lat: -53.1638, Lng: -70.9171},
	},
}

// Official long names the backend sometimes sends instead of the short ones.
var aliases = map[model.RegionCode][]string{
	"CL-LI": {"Libertador General Bernardo O'Higgins", "Libertador Bernardo O'Higgins"},
	"CL-RM": {"Metropolitana de Santiago", "Santiago"},
	"CL-AI": {"Aysén del General Carlos Ibáñez del Campo", "Aisén"},
	"CL-MA": {"Magallanes y de la Antártica Chilena", "Magallanes y Antártica Chilena"},
	"CL-AR": {"La Araucanía"},
	"CL-BI": {"Bío-Bío", "Bío Bío"},
}

// Width and height of the view box the geometry is authored in.
const (
	ViewWidth  = 200
	ViewHeight = 650
)

// Catalog returns the regions ordered north to south. The slice is a copy.
func Catalog() []model.Region {
	out := make([]model.Region, len(catalog))
	copy(out, catalog)
	return out
}

func ByCode(code model.RegionCode) (model.Region, bool) {
	for _, r := range catalog {
		if r.Code == code {
			return r, true
		}
	}
	return model.Region{}, false
}

// Name returns the display name for code, or the code itself when unknown.
func Name(code model.RegionCode) string {
	if r, ok := ByCode(code); ok {
		return r.Name
	}
	if code == model.RegionUnknown {
		return "Sin región"
	}
	return string(code)
}
