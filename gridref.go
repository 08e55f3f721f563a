package geodesy

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Extent of the lettered 100 km squares of the national grid.
const (
	gridRefMaxEasting  = 700000.0
	gridRefMaxNorthing = 1300000.0
)

// gridRefScale converts a digit count per axis to the size of the
// resulting square in meters.
func gridRefScale(digitsPerAxis int) float64 {
	return math.Pow(10, float64(5-digitsPerAxis))
}

// FormatGridRef writes c as a lettered Ordnance Survey grid reference such
// as "TQ 30086 80526". digits is the total count of numeric digits and must
// be even and at most 10; 0 gives only the 100 km square letters.
func FormatGridRef(c GridCoord, digits int) (string, error) {
	if digits < 0 || digits > 10 || digits%2 != 0 {
		return "", errors.New("grid reference digits must be 0, 2, 4, 6, 8 or 10")
	}
	if !(c.Easting >= 0 && c.Easting < gridRefMaxEasting) {
		return "", errors.New("easting out of range")
	}
	if !(c.Northing >= 0 && c.Northing < gridRefMaxNorthing) {
		return "", errors.New("northing out of range")
	}

	e100k := int(c.Easting / 100000)
	n100k := int(c.Northing / 100000)

	// first letter is the 500 km square, second the 100 km square, both on a
	// 5x5 grid of the alphabet without I
	l1 := (19 - n100k) - (19-n100k)%5 + (e100k+10)/5
	l2 := (19-n100k)*5%25 + e100k%5

	var buf strings.Builder
	buf.WriteByte(gridLetter(l1))
	buf.WriteByte(gridLetter(l2))

	n := digits / 2
	if n == 0 {
		return buf.String(), nil
	}
	scale := gridRefScale(n)
	east := int(math.Mod(c.Easting, 100000) / scale)
	north := int(math.Mod(c.Northing, 100000) / scale)
	fmt.Fprintf(&buf, " %0*d %0*d", n, east, n, north)
	return buf.String(), nil
}

// ParseGridRef reads a lettered grid reference, with or without spaces, and
// returns the south-west corner of the square it names.
func ParseGridRef(ref string) (GridCoord, error) {
	var buf strings.Builder
	for _, r := range ref {
		switch {
		case unicode.IsSpace(r):
			continue
		case r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)):
			return GridCoord{}, errors.New("invalid character")
		}
		buf.WriteRune(unicode.ToUpper(r))
	}
	s := buf.String()
	if len(s) < 2 {
		return GridCoord{}, errors.New("wrong number of letters")
	}

	l1, err := gridLetterIndex(s[0])
	if err != nil {
		return GridCoord{}, err
	}
	l2, err := gridLetterIndex(s[1])
	if err != nil {
		return GridCoord{}, err
	}

	e100k := ((l1-2)%5)*5 + l2%5
	n100k := (19 - (l1/5)*5) - l2/5
	if e100k < 0 || e100k > 6 || n100k < 0 || n100k > 12 {
		return GridCoord{}, errors.New("grid square out of range")
	}

	digits := s[2:]
	if len(digits) > 10 || len(digits)%2 != 0 {
		return GridCoord{}, errors.New("wrong number of digits")
	}
	c := GridCoord{Easting: float64(e100k) * 100000, Northing: float64(n100k) * 100000}
	n := len(digits) / 2
	if n == 0 {
		return c, nil
	}
	east, err := strconv.Atoi(digits[:n])
	if err != nil {
		return GridCoord{}, errors.New("invalid easting digits")
	}
	north, err := strconv.Atoi(digits[n:])
	if err != nil {
		return GridCoord{}, errors.New("invalid northing digits")
	}
	scale := gridRefScale(n)
	c.Easting += float64(east) * scale
	c.Northing += float64(north) * scale
	return c, nil
}

// gridLetter maps 0..24 onto A..Z skipping I.
func gridLetter(i int) byte {
	if i > 7 {
		i++
	}
	return byte('A' + i)
}

func gridLetterIndex(b byte) (int, error) {
	if b < 'A' || b > 'Z' || b == 'I' {
		return 0, fmt.Errorf("invalid letter %q", b)
	}
	i := int(b - 'A')
	if i > 7 {
		i--
	}
	return i, nil
}
