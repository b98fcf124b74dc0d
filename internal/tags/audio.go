package tags

import (
	"errors"
	"fmt"
	"os"
	"time"

	goflac "github.com/go-flac/go-flac"
	"github.com/llehouerou/go-mp3"
)

// readDuration computes the stream duration without TagLib.
func readDuration(path, ext string) (time.Duration, error) {
	switch ext {
	case ExtMP3:
		return readMP3Duration(path)
	case ExtFLAC:
		return readFLACDuration(path)
	}
	return 0, fmt.Errorf("%w: no duration reader for %q", ErrUnsupportedFormat, ext)
}

// readMP3Duration decodes frame headers to count samples.
func readMP3Duration(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return 0, err
	}

	sampleRate := decoder.SampleRate()
	if sampleRate == 0 {
		return 0, errors.New("mp3: invalid sample rate")
	}
	sampleCount := max(decoder.SampleCount(), 0)

	return time.Duration(float64(sampleCount) / float64(sampleRate) * float64(time.Second)), nil
}

// readFLACDuration reads the total sample count from the STREAMINFO block.
func readFLACDuration(path string) (time.Duration, error) {
	flacFile, err := goflac.ParseFile(path)
	if err != nil {
		return 0, err
	}

	for _, meta := range flacFile.Meta {
		if meta.Type != goflac.StreamInfo || len(meta.Data) < 18 {
			continue
		}
		return streamInfoDuration(meta.Data), nil
	}
	return 0, errors.New("flac: no STREAMINFO block")
}

// streamInfoDuration decodes the 20-bit sample rate and 36-bit sample count
// packed in bytes 10-17 of a STREAMINFO block.
func streamInfoDuration(data []byte) time.Duration {
	sampleRate := int(data[10])<<12 | int(data[11])<<4 | int(data[12])>>4
	totalSamples := int64(data[13]&0x0F)<<32 | int64(data[14])<<24 | int64(data[15])<<16 | int64(data[16])<<8 | int64(data[17])
	if sampleRate == 0 {
		return 0
	}
	return time.Duration(float64(totalSamples) / float64(sampleRate) * float64(time.Second))
}
