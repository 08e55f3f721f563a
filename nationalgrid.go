package geodesy

import (
	"fmt"
	"math"

	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// GridCoord is a planar grid coordinate in meters.
type GridCoord struct {
	Easting  float64
	Northing float64
}

// NationalGrid projects geographic coordinates given on a source ellipsoid
// onto the Transverse Mercator grid of a datum, using the Ordnance Survey
// series expansion. The series is accurate close to the central meridian
// and degrades away from it.
type NationalGrid struct {
	toGrid   DatumTransform
	fromGrid DatumTransform
	datum    Datum
	tm       *TransverseMercator
}

// NewNationalGrid builds a grid on datum for coordinates given on source.
// toGrid maps source Cartesian coordinates onto the datum; fromGrid is the
// separately parameterised reverse transform used by Unproject.
func NewNationalGrid(source EllipsoidParameters, datum Datum, toGrid, fromGrid Helmert) (*NationalGrid, error) {
	tm, err := NewTransverseMercator(datum)
	if err != nil {
		return nil, fmt.Errorf("grid datum: %w", err)
	}
	return &NationalGrid{
		toGrid:   DatumTransform{Source: source, Target: datum, Helmert: toGrid},
		fromGrid: DatumTransform{Source: datum, Target: source, Helmert: fromGrid},
		datum:    datum,
		tm:       tm,
	}, nil
}

// Datum returns the grid datum.
func (g *NationalGrid) Datum() Datum { return g.datum }

// Project converts latitude/longitude arrays on the source ellipsoid to
// eastings and northings.
func (g *NationalGrid) Project(lat, long []float64, unit AngleUnit) (easting, northing []float64, err error) {
	if len(lat) != len(long) {
		return nil, nil, fmt.Errorf("%w: %d latitudes, %d longitudes", ErrShapeMismatch, len(lat), len(long))
	}
	latRad := make([]float64, len(lat))
	longRad := make([]float64, len(long))
	for i := range lat {
		latRad[i] = unit.toRadians(lat[i])
		longRad[i] = unit.toRadians(long[i])
	}

	latRad, longRad, err = g.toGrid.Transform(latRad, longRad, Radians)
	if err != nil {
		return nil, nil, err
	}

	easting = make([]float64, len(lat))
	northing = make([]float64, len(lat))
	for i := range latRad {
		c := g.gridCoord(latRad[i], longRad[i])
		easting[i], northing[i] = c.Easting, c.Northing
	}
	return easting, northing, nil
}

// ProjectLatLng converts a single coordinate on the source ellipsoid.
func (g *NationalGrid) ProjectLatLng(ll s2.LatLng) GridCoord {
	lat, long := g.toGrid.transformRadians(ll.Lat.Radians(), ll.Lng.Radians())
	return g.gridCoord(lat, long)
}

// Unproject converts a grid coordinate back to the source ellipsoid. It
// inverts the projection with the Krüger series and applies the reverse
// datum transform, so it is only as exact as that transform's parameters.
func (g *NationalGrid) Unproject(c GridCoord) (s2.LatLng, error) {
	ll, err := g.tm.ConvertToGeodetic(c)
	if err != nil {
		return s2.LatLng{}, err
	}
	return g.fromGrid.TransformLatLng(ll), nil
}

// OrbProjection returns the projection as an orb.Projection taking
// longitude/latitude points in degrees to easting/northing points.
func (g *NationalGrid) OrbProjection() orb.Projection {
	return func(p orb.Point) orb.Point {
		c := g.ProjectLatLng(s2.LatLngFromDegrees(p.Lat(), p.Lon()))
		return orb.Point{c.Easting, c.Northing}
	}
}

// ProjectGeometry returns a projected copy of a longitude/latitude geometry.
func (g *NationalGrid) ProjectGeometry(geom orb.Geometry) orb.Geometry {
	return project.Geometry(orb.Clone(geom), g.OrbProjection())
}

// gridCoord evaluates the series for a latitude/longitude in radians on
// the grid datum.
func (g *NationalGrid) gridCoord(lat, long float64) GridCoord {
	d := g.datum
	o := d.origin
	sinLat, cosLat := math.Sincos(lat)
	tanLat := sinLat / cosLat
	tan2 := tanLat * tanLat
	tan4 := tan2 * tan2
	cos3 := cosLat * cosLat * cosLat
	cos5 := cos3 * cosLat * cosLat

	nu := d.primeVerticalRadius(sinLat)
	rho := d.meridionalRadius(sinLat)
	eta2 := nu/rho - 1

	I := d.meridionalArc(lat, o.Lat.Radians()) + o.FalseNorthing
	II := nu / 2 * sinLat * cosLat
	III := nu / 24 * sinLat * cos3 * (5 - tan2 + 9*eta2)
	IIIA := nu / 720 * sinLat * cos5 * (61 - 58*tan2 + tan4)
	IV := nu * cosLat
	V := nu / 6 * cos3 * (nu/rho - tan2)
	VI := nu / 120 * cos5 * (5 - 18*tan2 + tan4 + 14*eta2 - 58*tan2*eta2)

	dl := long - o.Long.Radians()
	dl2 := dl * dl
	dl3 := dl2 * dl
	dl4 := dl2 * dl2
	dl5 := dl4 * dl
	dl6 := dl3 * dl3

	return GridCoord{
		Easting:  o.FalseEasting + IV*dl + V*dl3 + VI*dl5,
		Northing: I + II*dl2 + III*dl4 + IIIA*dl6,
	}
}

// meridionalArc is the scaled distance along the meridian from latitude
// lat0 to lat.
func (e Ellipsoid) meridionalArc(lat, lat0 float64) float64 {
	n := e.n
	n2 := n * n
	n3 := n2 * n
	dLat := lat - lat0
	sLat := lat + lat0

	m := (1+n+5.0/4*n2+5.0/4*n3)*dLat -
		(3*n+3*n2+21.0/8*n3)*math.Sin(dLat)*math.Cos(sLat) +
		(15.0/8*n2+15.0/8*n3)*math.Sin(2*dLat)*math.Cos(2*sLat) -
		35.0/24*n3*math.Sin(3*dLat)*math.Cos(3*sLat)
	return e.b * e.scaleFactor * m
}

// Project converts WGS84 latitude/longitude arrays to Ordnance Survey
// National Grid eastings and northings.
func Project(lat, long []float64, unit AngleUnit) (easting, northing []float64, err error) {
	return osNationalGrid.Project(lat, long, unit)
}
