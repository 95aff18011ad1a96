package maps

import (
	"errors"

	"github.com/paulmach/orb"
)

// DecodePolyline はGoogleのエンコード済みポリライン（精度1e5）を [経度, 緯度] の列に変換する
func DecodePolyline(encoded string) (orb.LineString, error) {
	var (
		path     orb.LineString
		lat, lng int
		index    int
	)
	for index < len(encoded) {
		dlat, next, err := decodeValue(encoded, index)
		if err != nil {
			return nil, err
		}
		dlng, next, err := decodeValue(encoded, next)
		if err != nil {
			return nil, err
		}
		index = next
		lat += dlat
		lng += dlng
		path = append(path, orb.Point{float64(lng) / 1e5, float64(lat) / 1e5})
	}
	return path, nil
}

func decodeValue(encoded string, index int) (int, int, error) {
	var result, shift int
	for {
		if index >= len(encoded) {
			return 0, index, errors.New("ポリラインが途中で終わっています")
		}
		b := int(encoded[index]) - 63
		index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}
	if result&1 != 0 {
		return ^(result >> 1), index, nil
	}
	return result >> 1, index, nil
}
