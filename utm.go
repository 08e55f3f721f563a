package geodesy

import (
	"errors"
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// Hemisphere represents the hemisphere, north or south
type Hemisphere byte

// Hemisphere constants
const (
	HemisphereInvalid Hemisphere = iota
	HemisphereNorth
	HemisphereSouth
)

// UTMCoord is a UTM coordinate
type UTMCoord struct {
	Zone       int
	Hemisphere Hemisphere
	Easting    float64
	Northing   float64
}

// UTM is a UTM coordinate converter
type UTM struct {
	override int
	zones    [61]*TransverseMercator
}

const epsilonRadians = 1.75e-7 // approx 1.0e-5 degrees (~1 meter) in radians

const (
	utmMinLat           = (-80.5 * math.Pi) / 180.0
	utmMaxLat           = (84.5 * math.Pi) / 180.0
	utmMinEasting       = 100000.0
	utmMaxEasting       = 900000.0
	utmMinNorthing      = 0.0
	utmMaxNorthing      = 10000000.0
	utmScaleFactor      = 0.9996
	utmFalseEasting     = 500000.0
	utmSouthernNorthing = 10000000.0
)

// NewUTM constructs a UTM converter on the ellipsoid of e. override forces
// conversions into that zone when it is within one zone of the computed
// one; 0 means no override.
func NewUTM(e EllipsoidParameters, override int) (*UTM, error) {
	if override < 0 || override > 60 {
		return nil, errors.New("zone override out of range")
	}
	p := e.Params()
	invF := 1 / p.Flattening()
	if invF < 250 || invF > 350 {
		return nil, errors.New("inverse flattening must be between 250 and 350")
	}
	ell, err := NewEllipsoid(p.A(), p.B(), utmScaleFactor)
	if err != nil {
		return nil, err
	}

	u := &UTM{override: override}
	for zone := 1; zone <= 60; zone++ {
		d, err := NewDatum(ell, 0, Origin{
			Long:         utmCentralMeridian(zone),
			FalseEasting: utmFalseEasting,
		})
		if err != nil {
			return nil, err
		}
		if u.zones[zone], err = NewTransverseMercator(d); err != nil {
			return nil, err
		}
	}
	return u, nil
}

func utmCentralMeridian(zone int) s1.Angle {
	if zone >= 31 {
		return s1.Angle(6*zone-183) * s1.Degree
	}
	return s1.Angle(6*zone+177) * s1.Degree
}

// baseZone is the regular six degree zone for a longitude in [0, 2Pi).
func baseZone(longitude float64) int {
	var zone int
	if longitude < math.Pi {
		zone = int(31 + ((longitude+1.0e-10)*180.0/math.Pi)/6.0)
	} else {
		zone = int(((longitude+1.0e-10)*180.0/math.Pi)/6.0 - 29)
	}
	if zone > 60 {
		zone = 1
	}
	return zone
}

// specialZone applies the southern Norway and Svalbard exceptions.
func specialZone(zone int, latitude, longitude float64) int {
	latDeg := int(latitude * 180.0 / math.Pi)
	longDeg := int(longitude * 180.0 / math.Pi)
	switch {
	case latDeg > 55 && latDeg < 64 && longDeg > -1 && longDeg < 3:
		return 31
	case latDeg > 55 && latDeg < 64 && longDeg > 2 && longDeg < 12:
		return 32
	case latDeg > 71 && longDeg > 32 && longDeg < 42:
		return 37
	case latDeg > 71 && longDeg > 20 && longDeg < 33:
		return 35
	case latDeg > 71 && longDeg > 8 && longDeg < 21:
		return 33
	case latDeg > 71 && longDeg > -1 && longDeg < 9:
		return 31
	}
	return zone
}

// applyOverride accepts an override within one zone of the computed zone,
// wrapping between 60 and 1.
func applyOverride(zone, override int) (int, error) {
	switch {
	case zone == 1 && override == 60, zone == 60 && override == 1:
		return override, nil
	case zone-1 <= override && override <= zone+1:
		return override, nil
	}
	return 0, errors.New("zone out of range")
}

// ConvertFromGeodetic converts geodetic (latitude and longitude) coordinates
// to UTM projection (zone, hemisphere, easting and northing) coordinates.
// A non-zero zoneOverride takes precedence over the converter's own.
func (u *UTM) ConvertFromGeodetic(ll s2.LatLng, zoneOverride int) (UTMCoord, error) {
	longitude := ll.Lng.Radians()
	latitude := ll.Lat.Radians()
	if latitude < utmMinLat-epsilonRadians || latitude >= utmMaxLat+epsilonRadians {
		return UTMCoord{}, errors.New("latitude out of range")
	}
	if longitude < -math.Pi-epsilonRadians || longitude > 2*math.Pi+epsilonRadians {
		return UTMCoord{}, errors.New("longitude out of range")
	}
	if latitude > -1.0e-9 && latitude < 0 {
		latitude = 0
	}
	if longitude < 0 {
		longitude += 2 * math.Pi
	}

	zone := baseZone(longitude)
	if zoneOverride == 0 {
		zoneOverride = u.override
	}
	if zoneOverride != 0 {
		var err error
		if zone, err = applyOverride(zone, zoneOverride); err != nil {
			return UTMCoord{}, err
		}
	} else {
		zone = specialZone(zone, latitude, longitude)
	}

	hemisphere := HemisphereNorth
	falseNorthing := 0.0
	if latitude < 0 {
		hemisphere = HemisphereSouth
		falseNorthing = utmSouthernNorthing
	}

	c, err := u.zones[zone].ConvertFromGeodetic(s2.LatLng{Lat: s1.Angle(latitude), Lng: s1.Angle(longitude)})
	if err != nil {
		return UTMCoord{}, err
	}
	c.Northing += falseNorthing
	if c.Easting < utmMinEasting || c.Easting > utmMaxEasting {
		return UTMCoord{}, errors.New("easting out of range")
	}
	if c.Northing < utmMinNorthing || c.Northing > utmMaxNorthing {
		return UTMCoord{}, errors.New("northing out of range")
	}

	return UTMCoord{
		Zone:       zone,
		Hemisphere: hemisphere,
		Easting:    c.Easting,
		Northing:   c.Northing,
	}, nil
}

// ConvertToGeodetic converts UTM projection (zone, hemisphere, easting and
// northing) coordinates to geodetic (latitude and longitude) coordinates.
func (u *UTM) ConvertToGeodetic(c UTMCoord) (s2.LatLng, error) {
	if c.Zone < 1 || c.Zone > 60 {
		return s2.LatLng{}, errors.New("zone out of range")
	}
	if c.Hemisphere != HemisphereSouth && c.Hemisphere != HemisphereNorth {
		return s2.LatLng{}, errors.New("hemisphere out of range")
	}
	if c.Easting < utmMinEasting || c.Easting > utmMaxEasting {
		return s2.LatLng{}, errors.New("easting out of range")
	}
	if c.Northing < utmMinNorthing || c.Northing > utmMaxNorthing {
		return s2.LatLng{}, errors.New("northing out of range")
	}

	northing := c.Northing
	if c.Hemisphere == HemisphereSouth {
		northing -= utmSouthernNorthing
	}
	ll, err := u.zones[c.Zone].ConvertToGeodetic(GridCoord{Easting: c.Easting, Northing: northing})
	if err != nil {
		return s2.LatLng{}, err
	}

	latitude := ll.Lat.Radians()
	if latitude < utmMinLat-epsilonRadians || latitude >= utmMaxLat+epsilonRadians {
		return s2.LatLng{}, errors.New("latitude out of range")
	}
	return ll, nil
}
