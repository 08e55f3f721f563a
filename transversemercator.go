package geodesy

import (
	"errors"
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

const krugerTerms = 6

// TransverseMercator converts between geodetic coordinates and Transverse
// Mercator grid coordinates using Krüger's series in n, which stays exact
// to well under a millimeter over the whole zone. It works for any datum
// and needs no per-datum coefficients.
type TransverseMercator struct {
	eps float64 // eccentricity

	k0R4    float64 // scale factor * R4
	k0R4inv float64 // 1/(scale factor * R4)

	aCoeff [krugerTerms]float64
	bCoeff [krugerTerms]float64

	originLat     float64
	originLong    float64
	falseEasting  float64
	falseNorthing float64

	// Maximum distance of a grid coordinate from the false origin
	deltaEasting  float64
	deltaNorthing float64

	// grid position of the true origin before false offsets
	originEasting  float64
	originNorthing float64
}

// NewTransverseMercator constructs a projection from the datum's ellipsoid,
// origin and scale factor.
func NewTransverseMercator(d Datum) (*TransverseMercator, error) {
	if d.a <= 0 {
		return nil, errors.New("semi-major axis must be greater than zero")
	}
	if 1/d.Flattening() < 150 {
		return nil, errors.New("inverse ellipsoid flattening out of range")
	}
	const minScaleFactor = 0.1
	const maxScaleFactor = 10.0
	if d.scaleFactor < minScaleFactor || d.scaleFactor > maxScaleFactor {
		return nil, errors.New("scale factor out of range")
	}

	f := d.Flattening()
	t := &TransverseMercator{
		eps:           math.Sqrt(2*f - f*f),
		originLat:     d.origin.Lat.Radians(),
		originLong:    d.origin.Long.Radians(),
		falseEasting:  d.origin.FalseEasting,
		falseNorthing: d.origin.FalseNorthing,
		deltaEasting:  20000000.0,
		deltaNorthing: 10000000.0,
	}

	r4oa := krugerCoefficients(d.n, &t.aCoeff, &t.bCoeff)
	t.k0R4 = r4oa * d.scaleFactor * d.a
	t.k0R4inv = 1.0 / t.k0R4

	// The true origin may not sit at (0, 0) on the unshifted grid.
	var err error
	t.originEasting, t.originNorthing, err = t.unshifted(t.originLat, t.originLong)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// krugerCoefficients fills the series coefficients for Helmert's n and
// returns R4/a, the meridional isoperimetric radius over the semi-major
// axis.
//
// aCoeff holds omega (rectifying latitude) as a trig series in chi
// (conformal latitude) and bCoeff the reverse, for k = 2, 4, ... 12.
func krugerCoefficients(n float64, aCoeff, bCoeff *[krugerTerms]float64) float64 {
	n2 := n * n
	n3 := n2 * n
	n4 := n3 * n
	n5 := n4 * n
	n6 := n5 * n
	n7 := n6 * n
	n8 := n7 * n
	n10 := n8 * n2

	aCoeff[0] = -18975107.0*n8/50803200.0 + 72161.0*n7/387072.0 +
		7891.0*n6/37800.0 - 127.0*n5/288.0 + 41.0*n4/180.0 +
		5.0*n3/16.0 - 2.0*n2/3.0 + n/2.0
	aCoeff[1] = 148003883.0*n8/174182400.0 + 13769.0*n7/28800.0 -
		1983433.0*n6/1935360.0 + 281.0*n5/630.0 + 557.0*n4/1440.0 -
		3.0*n3/5.0 + 13.0*n2/48.0
	aCoeff[2] = 79682431.0*n8/79833600.0 - 67102379.0*n7/29030400.0 +
		167603.0*n6/181440.0 + 15061.0*n5/26880.0 - 103.0*n4/140.0 +
		61.0*n3/240.0
	aCoeff[3] = -40176129013.0*n8/7664025600.0 + 97445.0*n7/49896.0 +
		6601661.0*n6/7257600.0 - 179.0*n5/168.0 + 49561.0*n4/161280.0
	aCoeff[4] = 2605413599.0*n8/622702080.0 + 14644087.0*n7/9123840.0 -
		3418889.0*n6/1995840.0 + 34729.0*n5/80640.0
	aCoeff[5] = 175214326799.0*n8/58118860800.0 - 30705481.0*n7/10378368.0 +
		212378941.0*n6/319334400.0

	bCoeff[0] = -7944359.0*n8/67737600.0 + 5406467.0*n7/38707200.0 -
		96199.0*n6/604800.0 + 81.0*n5/512.0 + n4/360.0 -
		37.0*n3/96.0 + 2.0*n2/3.0 - n/2.0
	bCoeff[1] = -24749483.0*n8/348364800.0 - 51841.0*n7/1209600.0 +
		1118711.0*n6/3870720.0 - 46.0*n5/105.0 + 437.0*n4/1440.0 -
		n3/15.0 - n2/48.0
	bCoeff[2] = 6457463.0*n8/17740800.0 - 9261899.0*n7/58060800.0 -
		5569.0*n6/90720.0 + 209.0*n5/4480.0 + 37.0*n4/840.0 -
		17.0*n3/480.0
	bCoeff[3] = -324154477.0*n8/7664025600.0 - 466511.0*n7/2494800.0 +
		830251.0*n6/7257600.0 + 11.0*n5/504.0 - 4397.0*n4/161280.0
	bCoeff[4] = -22894433.0*n8/124540416.0 + 8005831.0*n7/63866880.0 +
		108847.0*n6/3991680.0 - 4583.0*n5/161280.0
	bCoeff[5] = 2204645983.0*n8/12915302400.0 + 16363163.0*n7/518918400.0 -
		20648693.0*n6/638668800.0

	r4 := 1 + n2/4 + n4/64 + n6/256 + 25*n8/16384.0 + 49*n10/65536.0
	return r4 / (1 + n)
}

// wrapLongitude brings a longitude difference into (-Pi, Pi].
func wrapLongitude(lambda float64) float64 {
	if lambda > math.Pi {
		lambda -= 2 * math.Pi
	}
	if lambda < -math.Pi {
		lambda += 2 * math.Pi
	}
	return lambda
}

func checkLatLong(latitude, deltaLong float64) error {
	// distance from the central meridian, or from the antimeridian, or from
	// either pole, whichever is closest
	testAngle := math.Abs(deltaLong)
	testAngle = math.Min(testAngle, math.Abs(deltaLong-math.Pi))
	testAngle = math.Min(testAngle, math.Abs(deltaLong+math.Pi))
	testAngle = math.Min(testAngle, math.Pi/2-latitude)
	testAngle = math.Min(testAngle, math.Pi/2+latitude)

	const maxDeltaLong = (math.Pi * 70) / 180.0
	if testAngle > maxDeltaLong {
		return errors.New("longitude out of range")
	}
	return nil
}

// unshifted projects without the false origin applied.
func (t *TransverseMercator) unshifted(latitude, longitude float64) (easting, northing float64, err error) {
	lambda := wrapLongitude(longitude - t.originLong)
	if err := checkLatLong(latitude, lambda); err != nil {
		return 0, 0, err
	}

	sinLam, cosLam := math.Sincos(lambda)
	sinPhi, cosPhi := math.Sincos(latitude)

	// geodetic latitude to conformal latitude, only its sine and cosine
	// are needed
	p := math.Exp(t.eps * math.Atanh(t.eps*sinPhi))
	part1 := (1 + sinPhi) / p
	part2 := (1 - sinPhi) * p
	denom := part1 + part2
	cosChi := 2 * cosPhi / denom
	sinChi := (part1 - part2) / denom

	// spherical transverse Mercator on the conformal sphere
	u := math.Atanh(cosChi * sinLam)
	v := math.Atan2(sinChi, cosChi*cosLam)

	var c2ku, s2ku, c2kv, s2kv [krugerTerms]float64
	hyperbolicSeries(2*u, &c2ku, &s2ku)
	trigSeries(2*v, &c2kv, &s2kv)

	xStar, yStar := 0.0, 0.0
	for k := krugerTerms - 1; k >= 0; k-- {
		xStar += t.aCoeff[k] * s2ku[k] * c2kv[k]
		yStar += t.aCoeff[k] * c2ku[k] * s2kv[k]
	}
	xStar += u
	yStar += v

	return t.k0R4 * xStar, t.k0R4 * yStar, nil
}

// ConvertFromGeodetic projects a geodetic coordinate on the datum.
func (t *TransverseMercator) ConvertFromGeodetic(ll s2.LatLng) (GridCoord, error) {
	easting, northing, err := t.unshifted(ll.Lat.Radians(), wrapLongitude(ll.Lng.Radians()))
	if err != nil {
		return GridCoord{}, err
	}
	return GridCoord{
		Easting:  easting + t.falseEasting - t.originEasting,
		Northing: northing + t.falseNorthing - t.originNorthing,
	}, nil
}

// ConvertToGeodetic converts a grid coordinate back to a geodetic
// coordinate on the datum.
func (t *TransverseMercator) ConvertToGeodetic(c GridCoord) (s2.LatLng, error) {
	if c.Easting < t.falseEasting-t.deltaEasting || c.Easting > t.falseEasting+t.deltaEasting {
		return s2.LatLng{}, errors.New("easting out of range")
	}
	if c.Northing < t.falseNorthing-t.deltaNorthing || c.Northing > t.falseNorthing+t.deltaNorthing {
		return s2.LatLng{}, errors.New("northing out of range")
	}

	xStar := t.k0R4inv * (c.Easting - t.falseEasting + t.originEasting)
	yStar := t.k0R4inv * (c.Northing - t.falseNorthing + t.originNorthing)

	var c2kx, s2kx, c2ky, s2ky [krugerTerms]float64
	hyperbolicSeries(2*xStar, &c2kx, &s2kx)
	trigSeries(2*yStar, &c2ky, &s2ky)

	u, v := 0.0, 0.0
	for k := krugerTerms - 1; k >= 0; k-- {
		u += t.bCoeff[k] * s2kx[k] * c2ky[k]
		v += t.bCoeff[k] * c2kx[k] * s2ky[k]
	}
	u += xStar
	v += yStar

	coshU := math.Cosh(u)
	sinhU := math.Sinh(u)
	sinV, cosV := math.Sincos(v)

	var lambda float64
	if math.Abs(cosV) < 10e-12 && math.Abs(coshU) < 10e-12 {
		lambda = 0
	} else {
		lambda = math.Atan2(sinhU, cosV)
	}

	latitude := geodeticLatitude(sinV/coshU, t.eps)
	if math.Abs(latitude) > math.Pi/2 {
		return s2.LatLng{}, errors.New("northing out of range")
	}
	longitude := wrapLongitude(t.originLong + lambda)
	if longitude == -math.Pi {
		longitude = math.Pi
	}
	return s2.LatLng{Lat: s1.Angle(latitude), Lng: s1.Angle(longitude)}, nil
}

// geodeticLatitude recovers geodetic latitude from the sine of the
// conformal latitude by fixed-point iteration.
func geodeticLatitude(sinChi, e float64) float64 {
	sOld := 1.0e99
	s := sinChi
	onePlusSinChi := 1.0 + sinChi
	oneMinusSinChi := 1.0 - sinChi

	for n := 0; n < 30; n++ {
		p := math.Exp(e * math.Atanh(e*s))
		pSq := p * p
		s = (onePlusSinChi*pSq - oneMinusSinChi) /
			(onePlusSinChi*pSq + oneMinusSinChi)

		if math.Abs(s-sOld) < 1.0e-12 {
			break
		}
		sOld = s
	}
	return math.Asin(s)
}

// hyperbolicSeries fills c[k] = cosh(2(k+1)x), s[k] = sinh(2(k+1)x) from
// twoX = 2x using multiple-angle identities.
func hyperbolicSeries(twoX float64, c, s *[krugerTerms]float64) {
	c[0] = math.Cosh(twoX)
	s[0] = math.Sinh(twoX)
	c[1] = 2.0*c[0]*c[0] - 1.0
	s[1] = 2.0 * c[0] * s[0]
	c[2] = c[0]*c[1] + s[0]*s[1]
	s[2] = c[1]*s[0] + c[0]*s[1]
	c[3] = 2.0*c[1]*c[1] - 1.0
	s[3] = 2.0 * c[1] * s[1]
	c[4] = c[0]*c[3] + s[0]*s[3]
	s[4] = c[3]*s[0] + c[0]*s[3]
	c[5] = 2.0*c[2]*c[2] - 1.0
	s[5] = 2.0 * c[2] * s[2]
}

// trigSeries fills c[k] = cos(2(k+1)y), s[k] = sin(2(k+1)y).
func trigSeries(twoY float64, c, s *[krugerTerms]float64) {
	c[0] = math.Cos(twoY)
	s[0] = math.Sin(twoY)
	c[1] = 2.0*c[0]*c[0] - 1.0
	s[1] = 2.0 * c[0] * s[0]
	c[2] = c[1]*c[0] - s[1]*s[0]
	s[2] = c[1]*s[0] + c[0]*s[1]
	c[3] = 2.0*c[1]*c[1] - 1.0
	s[3] = 2.0 * c[1] * s[1]
	c[4] = c[3]*c[0] - s[3]*s[0]
	s[4] = c[3]*s[0] + c[0]*s[3]
	c[5] = 2.0*c[2]*c[2] - 1.0
	s[5] = 2.0 * c[2] * s[2]
}
