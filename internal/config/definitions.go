package config

import (
	"io"
	"os"
	"sort"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/tzneal/geodesy"
)

// Definitions describes extra ellipsoids, datums, Helmert transforms and
// grids. Angles are in degrees, rotations in arc-seconds and Helmert scale
// in parts per million.
type Definitions struct {
	Ellipsoids []EllipsoidDef `yaml:"ellipsoids"`
	Datums     []DatumDef     `yaml:"datums"`
	Helmerts   []HelmertDef   `yaml:"helmerts"`
	Grids      []GridDef      `yaml:"grids"`
}

// EllipsoidDef defines a named ellipsoid.
type EllipsoidDef struct {
	Name        string  `yaml:"name"`
	A           float64 `yaml:"a"`
	B           float64 `yaml:"b"`
	ScaleFactor float64 `yaml:"scale_factor"`
}

// DatumDef defines a named datum on a named ellipsoid.
type DatumDef struct {
	Name          string  `yaml:"name"`
	Ellipsoid     string  `yaml:"ellipsoid"`
	HeightOffset  float64 `yaml:"height_offset"`
	OriginLat     float64 `yaml:"origin_lat"`
	OriginLong    float64 `yaml:"origin_long"`
	FalseEasting  float64 `yaml:"false_easting"`
	FalseNorthing float64 `yaml:"false_northing"`
}

// HelmertDef defines a named seven parameter transform.
type HelmertDef struct {
	Name     string  `yaml:"name"`
	ScalePPM float64 `yaml:"scale_ppm"`
	RX       float64 `yaml:"rx_arcsec"`
	RY       float64 `yaml:"ry_arcsec"`
	RZ       float64 `yaml:"rz_arcsec"`
	TX       float64 `yaml:"tx"`
	TY       float64 `yaml:"ty"`
	TZ       float64 `yaml:"tz"`
}

// GridDef combines a source ellipsoid, a grid datum and the transforms
// between them into a national grid.
type GridDef struct {
	Name     string `yaml:"name"`
	Source   string `yaml:"source"`
	Datum    string `yaml:"datum"`
	ToGrid   string `yaml:"to_grid"`
	FromGrid string `yaml:"from_grid"`
}

// LoadDefinitions reads a YAML definitions file.
func LoadDefinitions(path string) (*Definitions, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening definitions")
	}
	defer f.Close()
	return ParseDefinitions(f)
}

// ParseDefinitions decodes YAML definitions from r.
func ParseDefinitions(r io.Reader) (*Definitions, error) {
	var defs Definitions
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&defs); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decoding definitions")
	}
	return &defs, nil
}

// Registry holds named reference bodies and grids. A new registry already
// knows the wgs84 ellipsoid, the osgb36 datum, the wgs84-osgb36 and
// osgb36-wgs84 transforms and the osgb36 grid.
type Registry struct {
	ellipsoids map[string]geodesy.Ellipsoid
	datums     map[string]geodesy.Datum
	helmerts   map[string]geodesy.Helmert
	grids      map[string]*geodesy.NationalGrid
}

// NewRegistry returns a registry holding the built-in definitions.
func NewRegistry() *Registry {
	return &Registry{
		ellipsoids: map[string]geodesy.Ellipsoid{
			"wgs84":    geodesy.WGS84(),
			"airy1830": geodesy.Airy1830(),
		},
		datums: map[string]geodesy.Datum{
			"osgb36": geodesy.OSGB36(),
		},
		helmerts: map[string]geodesy.Helmert{
			"wgs84-osgb36": geodesy.WGS84ToOSGB36(),
			"osgb36-wgs84": geodesy.OSGB36ToWGS84(),
		},
		grids: map[string]*geodesy.NationalGrid{
			"osgb36": geodesy.OSNationalGrid(),
		},
	}
}

// Add builds every definition, in dependency order, and adds it to the
// registry. All invalid definitions are reported together; valid ones are
// still added.
func (r *Registry) Add(defs *Definitions) error {
	var result *multierror.Error

	for _, d := range defs.Ellipsoids {
		e, err := geodesy.NewEllipsoid(d.A, d.B, d.ScaleFactor)
		if err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "ellipsoid %q", d.Name))
			continue
		}
		r.ellipsoids[d.Name] = e
	}

	for _, d := range defs.Datums {
		e, ok := r.ellipsoids[d.Ellipsoid]
		if !ok {
			result = multierror.Append(result, errors.Errorf("datum %q: unknown ellipsoid %q", d.Name, d.Ellipsoid))
			continue
		}
		datum, err := geodesy.NewDatum(e, d.HeightOffset, geodesy.Origin{
			Lat:           s1.Angle(d.OriginLat) * s1.Degree,
			Long:          s1.Angle(d.OriginLong) * s1.Degree,
			FalseEasting:  d.FalseEasting,
			FalseNorthing: d.FalseNorthing,
		})
		if err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "datum %q", d.Name))
			continue
		}
		r.datums[d.Name] = datum
	}

	for _, d := range defs.Helmerts {
		r.helmerts[d.Name] = geodesy.NewHelmert(d.ScalePPM*1e-6,
			geodesy.ToRadians(0, 0, d.RX),
			geodesy.ToRadians(0, 0, d.RY),
			geodesy.ToRadians(0, 0, d.RZ),
			r3.Vector{X: d.TX, Y: d.TY, Z: d.TZ})
	}

	for _, d := range defs.Grids {
		g, err := r.buildGrid(d)
		if err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "grid %q", d.Name))
			continue
		}
		r.grids[d.Name] = g
	}

	return result.ErrorOrNil()
}

func (r *Registry) buildGrid(d GridDef) (*geodesy.NationalGrid, error) {
	var source geodesy.EllipsoidParameters
	if e, ok := r.ellipsoids[d.Source]; ok {
		source = e
	} else if datum, ok := r.datums[d.Source]; ok {
		source = datum
	} else {
		return nil, errors.Errorf("unknown source %q", d.Source)
	}
	datum, ok := r.datums[d.Datum]
	if !ok {
		return nil, errors.Errorf("unknown datum %q", d.Datum)
	}
	toGrid, ok := r.helmerts[d.ToGrid]
	if !ok {
		return nil, errors.Errorf("unknown transform %q", d.ToGrid)
	}
	fromGrid, ok := r.helmerts[d.FromGrid]
	if !ok {
		return nil, errors.Errorf("unknown transform %q", d.FromGrid)
	}
	return geodesy.NewNationalGrid(source, datum, toGrid, fromGrid)
}

// Grid returns a named grid.
func (r *Registry) Grid(name string) (*geodesy.NationalGrid, error) {
	g, ok := r.grids[name]
	if !ok {
		return nil, errors.Errorf("unknown grid %q (have %v)", name, r.GridNames())
	}
	return g, nil
}

// Ellipsoid returns a named ellipsoid.
func (r *Registry) Ellipsoid(name string) (geodesy.Ellipsoid, bool) {
	e, ok := r.ellipsoids[name]
	return e, ok
}

// GridNames lists the known grids in sorted order.
func (r *Registry) GridNames() []string {
	names := make([]string, 0, len(r.grids))
	for name := range r.grids {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
