package storage

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

const noDuration = time.Duration(0)

// ProbeMP4Duration reads the movie header (mvhd) box of an MP4 container and
// returns the declared playback duration. The reader is left at an arbitrary
// position; callers must rewind before reusing it.
func ProbeMP4Duration(r io.ReadSeeker) (time.Duration, error) {
	moov, err := findBox(r, 0, -1, "moov")
	if err != nil {
		return 0, err
	}

	mvhd, err := findBox(r, moov.payloadOffset, moov.payloadSize, "mvhd")
	if err != nil {
		return 0, err
	}

	if _, err := r.Seek(mvhd.payloadOffset, io.SeekStart); err != nil {
		return 0, err
	}

	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, fmt.Errorf("mvhd header: %w", err)
	}
	version := header[0]

	// creation and modification times precede timescale/duration; their
	// width depends on the box version.
	var timescale uint32
	var duration uint64
	switch version {
	case 0:
		var fields [16]byte
		if _, err := io.ReadFull(r, fields[:]); err != nil {
			return 0, fmt.Errorf("mvhd v0 fields: %w", err)
		}
		timescale = binary.BigEndian.Uint32(fields[8:12])
		duration = uint64(binary.BigEndian.Uint32(fields[12:16]))
	case 1:
		var fields [28]byte
		if _, err := io.ReadFull(r, fields[:]); err != nil {
			return 0, fmt.Errorf("mvhd v1 fields: %w", err)
		}
		timescale = binary.BigEndian.Uint32(fields[16:20])
		duration = binary.BigEndian.Uint64(fields[20:28])
	default:
		return 0, fmt.Errorf("mvhd: unsupported version %d", version)
	}

	if timescale == 0 {
		return 0, fmt.Errorf("mvhd: zero timescale")
	}

	seconds := float64(duration) / float64(timescale)
	return time.Duration(seconds * float64(time.Second)), nil
}

type boxInfo struct {
	payloadOffset int64
	payloadSize   int64
}

// findBox scans a box sequence starting at offset for the named box type.
// size < 0 means scan until EOF.
func findBox(r io.ReadSeeker, offset, size int64, name string) (boxInfo, error) {
	end := int64(-1)
	if size >= 0 {
		end = offset + size
	}

	for end < 0 || offset < end {
		if _, err := r.Seek(offset, io.SeekStart); err != nil {
			return boxInfo{}, err
		}

		var header [8]byte
		if _, err := io.ReadFull(r, header[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return boxInfo{}, err
		}

		boxSize := int64(binary.BigEndian.Uint32(header[0:4]))
		boxType := string(header[4:8])
		headerLen := int64(8)

		switch boxSize {
		case 0:
			// Box extends to end of file.
			cur, err := r.Seek(0, io.SeekEnd)
			if err != nil {
				return boxInfo{}, err
			}
			boxSize = cur - offset
		case 1:
			var large [8]byte
			if _, err := io.ReadFull(r, large[:]); err != nil {
				return boxInfo{}, err
			}
			boxSize = int64(binary.BigEndian.Uint64(large[:]))
			headerLen = 16
		}

		if boxSize < headerLen {
			return boxInfo{}, fmt.Errorf("mp4: malformed box %q at %d", boxType, offset)
		}

		if boxType == name {
			return boxInfo{payloadOffset: offset + headerLen, payloadSize: boxSize - headerLen}, nil
		}

		offset += boxSize
	}

	return boxInfo{}, fmt.Errorf("mp4: box %q not found", name)
}
