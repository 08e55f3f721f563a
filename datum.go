package geodesy

import (
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// DatumTransform moves geographic coordinates from one datum to another by
// going through Cartesian space: forward conversion on Source, the Helmert
// transform, then inverse conversion on Target.
type DatumTransform struct {
	Source  EllipsoidParameters
	Target  EllipsoidParameters
	Helmert Helmert
}

// Transform converts latitude/longitude arrays from the source datum to the
// target datum. The output is in the same unit as the input.
func (t DatumTransform) Transform(lat, long []float64, unit AngleUnit) ([]float64, []float64, error) {
	xyz, err := GeographicToCartesian(lat, long, unit, t.Source)
	if err != nil {
		return nil, nil, err
	}
	xyz, err = t.Helmert.Apply(xyz)
	if err != nil {
		return nil, nil, err
	}
	return CartesianToGeographic(xyz[0], xyz[1], xyz[2], unit, t.Target)
}

// TransformLatLng converts a single coordinate.
func (t DatumTransform) TransformLatLng(ll s2.LatLng) s2.LatLng {
	lat, long := t.transformRadians(ll.Lat.Radians(), ll.Lng.Radians())
	return s2.LatLng{Lat: s1.Angle(lat), Lng: s1.Angle(long)}
}

func (t DatumTransform) transformRadians(lat, long float64) (float64, float64) {
	v := t.Source.Params().toCartesian(lat, long)
	v = t.Helmert.ApplyVector(v)
	return t.Target.Params().toGeographic(v, nil)
}

// TransformDatum converts WGS84 latitude/longitude arrays to OSGB36.
func TransformDatum(lat, long []float64, unit AngleUnit) ([]float64, []float64, error) {
	return wgs84ToOSGB36Datum.Transform(lat, long, unit)
}
