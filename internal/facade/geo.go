package facade

import "math"

const earthRadiusMeters = 6371000.0

// Haversine returns the great-circle distance between two coordinates in
// meters. Good enough for snapping and nearest lookups; routing weights come
// precomputed from the dataset.
func Haversine(a, b Coordinate) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := latB - latA
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

// mortonCode interleaves the quantized latitude and longitude into a single
// sortable key. Nodes close on the Z-order curve are usually close on the
// map, which is what the spatial index exploits for candidate generation.
func mortonCode(c Coordinate) uint64 {
	// clamp, then scale each axis to 32 bits
	lat := math.Min(math.Max(c.Lat, -90), 90)
	lon := math.Min(math.Max(c.Lon, -180), 180)
	x := uint32((lon + 180) / 360 * math.MaxUint32)
	y := uint32((lat + 90) / 180 * math.MaxUint32)
	return interleave(x)<<1 | interleave(y)
}

// interleave spreads the 32 bits of v over the even bit positions of a
// 64-bit word.
func interleave(v uint32) uint64 {
	x := uint64(v)
	x = (x | x<<16) & 0x0000ffff0000ffff
	x = (x | x<<8) & 0x00ff00ff00ff00ff
	x = (x | x<<4) & 0x0f0f0f0f0f0f0f0f
	x = (x | x<<2) & 0x3333333333333333
	x = (x | x<<1) & 0x5555555555555555
	return x
}
