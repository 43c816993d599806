package geo

import "math"

// RotateCorners rotates a quad counter-clockwise by degrees around its centre.
//
// Longitude is treated as the x axis and latitude as the y axis, which is a planar
// approximation adequate for overlay-sized areas. Latitudes are clamped to the valid range.
func RotateCorners(corners [4]Coordinate, degrees float64) [4]Coordinate {
	if degrees == 0 {
		return corners
	}

	var cx, cy float64
	for _, c := range corners {
		cx += c.Lon
		cy += c.Lat
	}
	cx /= 4
	cy /= 4

	rad := degrees * (math.Pi / 180.0)
	sin, cos := math.Sincos(rad)

	const maxLat = 90.0

	var out [4]Coordinate
	for i, c := range corners {
		x := c.Lon - cx
		y := c.Lat - cy

		lat := cy + x*sin + y*cos
		if lat > maxLat {
			lat = maxLat
		} else if lat < -maxLat {
			lat = -maxLat
		}

		out[i] = Coordinate{
			Lon: cx + x*cos - y*sin,
			Lat: lat,
			Alt: c.Alt,
		}
	}

	return out
}
