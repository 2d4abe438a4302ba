package storage

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func box(name string, payload []byte) []byte {
	buf := make([]byte, 8, 8+len(payload))
	binary.BigEndian.PutUint32(buf[0:4], uint32(8+len(payload)))
	copy(buf[4:8], name)
	return append(buf, payload...)
}

func mvhdV0(timescale, duration uint32) []byte {
	payload := make([]byte, 20)
	// version 0, zero flags, creation and modification times
	binary.BigEndian.PutUint32(payload[12:16], timescale)
	binary.BigEndian.PutUint32(payload[16:20], duration)
	return box("mvhd", payload)
}

func mvhdV1(timescale uint32, duration uint64) []byte {
	payload := make([]byte, 32)
	payload[0] = 1
	binary.BigEndian.PutUint32(payload[20:24], timescale)
	binary.BigEndian.PutUint64(payload[24:32], duration)
	return box("mvhd", payload)
}

func TestProbeMP4Duration(t *testing.T) {
	tests := []struct {
		name string
		file []byte
		want time.Duration
	}{
		{
			name: "version 0 header",
			file: bytes.Join([][]byte{
				box("ftyp", []byte("isom0000")),
				box("moov", mvhdV0(1000, 90500)),
			}, nil),
			want: 90500 * time.Millisecond,
		},
		{
			name: "version 1 header",
			file: bytes.Join([][]byte{
				box("ftyp", []byte("isom0000")),
				box("moov", mvhdV1(600, 1800)),
			}, nil),
			want: 3 * time.Second,
		},
		{
			name: "moov after mdat",
			file: bytes.Join([][]byte{
				box("ftyp", []byte("isom0000")),
				box("mdat", bytes.Repeat([]byte{0xab}, 64)),
				box("moov", mvhdV0(90000, 450000)),
			}, nil),
			want: 5 * time.Second,
		},
		{
			name: "mvhd behind sibling boxes",
			file: bytes.Join([][]byte{
				box("moov", bytes.Join([][]byte{
					box("iods", make([]byte, 4)),
					mvhdV0(1000, 2000),
				}, nil)),
			}, nil),
			want: 2 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ProbeMP4Duration(bytes.NewReader(tt.file))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProbeMP4DurationErrors(t *testing.T) {
	tests := []struct {
		name string
		file []byte
	}{
		{"empty input", nil},
		{"no moov box", box("ftyp", []byte("isom0000"))},
		{"moov without mvhd", box("moov", box("iods", make([]byte, 4)))},
		{"zero timescale", box("moov", mvhdV0(0, 1000))},
		{"truncated mvhd", box("moov", box("mvhd", []byte{0, 0, 0, 0}))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ProbeMP4Duration(bytes.NewReader(tt.file))
			require.Error(t, err)
		})
	}
}
