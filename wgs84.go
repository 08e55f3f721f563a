package geodesy

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
)

// Reference bodies and transforms. They are built once in init and only
// handed out by value.
var (
	wgs84              Ellipsoid
	airy1830           Ellipsoid
	osgb36             Datum
	wgs84ToOSGB36      Helmert
	osgb36ToWGS84      Helmert
	wgs84ToOSGB36Datum DatumTransform
	osNationalGrid     *NationalGrid
)

func init() {
	var err error
	wgs84, err = NewEllipsoid(6378137, 6356752.3142, 0.9996)
	if err != nil {
		panic(fmt.Sprintf("error constructing WGS84 ellipsoid: %s", err))
	}

	airy1830, err = NewEllipsoid(6377563.396, 6356256.910, 0.9996012717)
	if err != nil {
		panic(fmt.Sprintf("error constructing Airy 1830 ellipsoid: %s", err))
	}
	osgb36, err = NewDatum(airy1830, 24.7, Origin{
		Lat:           49 * s1.Degree,
		Long:          -2 * s1.Degree,
		FalseEasting:  400000,
		FalseNorthing: -100000,
	})
	if err != nil {
		panic(fmt.Sprintf("error constructing OSGB36 datum: %s", err))
	}

	wgs84ToOSGB36 = NewHelmert(20.4894e-6,
		-ToRadians(0, 0, 0.1502),
		-ToRadians(0, 0, 0.2470),
		-ToRadians(0, 0, 0.8421),
		r3.Vector{X: -446.448, Y: 125.157, Z: -542.060})
	osgb36ToWGS84 = NewHelmert(-20.4894e-6,
		ToRadians(0, 0, 0.1502),
		ToRadians(0, 0, 0.2470),
		ToRadians(0, 0, 0.8421),
		r3.Vector{X: 446.448, Y: -125.157, Z: 542.060})

	wgs84ToOSGB36Datum = DatumTransform{Source: wgs84, Target: osgb36, Helmert: wgs84ToOSGB36}

	osNationalGrid, err = NewNationalGrid(wgs84, osgb36, wgs84ToOSGB36, osgb36ToWGS84)
	if err != nil {
		panic(fmt.Sprintf("error constructing OS national grid: %s", err))
	}
}

// WGS84 returns the ellipsoid used by GPS coordinates.
func WGS84() Ellipsoid { return wgs84 }

// Airy1830 returns the bare Airy 1830 ellipsoid with no height offset.
func Airy1830() Ellipsoid { return airy1830 }

// OSGB36 returns the Ordnance Survey 1936 datum on the Airy 1830
// ellipsoid, with the National Grid true origin at 49°N 2°W.
func OSGB36() Datum { return osgb36 }

// WGS84ToOSGB36 returns the Helmert transform from WGS84 to OSGB36
// Cartesian coordinates.
func WGS84ToOSGB36() Helmert { return wgs84ToOSGB36 }

// OSGB36ToWGS84 returns the reverse transform, built from the negated
// published parameters.
func OSGB36ToWGS84() Helmert { return osgb36ToWGS84 }

// OSNationalGrid returns the WGS84 to Ordnance Survey National Grid
// projection. It is safe for concurrent use.
func OSNationalGrid() *NationalGrid { return osNationalGrid }
