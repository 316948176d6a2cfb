package service

import (
	"maestroai/internal/domain"
	"maestroai/internal/imaging"
)

// decodeScreen turns a client screen encoding into image bytes. Only the image
// header is read: payloads that are not a supported image or that exceed
// maxPixels are rejected without allocating pixel buffers.
func decodeScreen(screen domain.Screen, maxPixels int) ([]byte, error) {
	data, err := imaging.Decode(screen)
	if err != nil {
		return nil, err
	}
	if _, _, err := imaging.Inspect(data, maxPixels); err != nil {
		return nil, err
	}
	return data, nil
}
