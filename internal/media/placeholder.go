package media

import (
	"bytes"
	"encoding/binary"
	"image"
	"strings"

	"github.com/fogleman/gg"
)

// maxCaptionChars keeps the diagnostic caption short enough to render
// inside small placeholder frames.
const maxCaptionChars = 120

// PlaceholderImage renders a dark frame with the diagnostic caption drawn
// across the center. It is used as the image output of a failed run so that
// downstream consumers always receive a decodable image.
func PlaceholderImage(width, height int, caption string) image.Image {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	dc := gg.NewContext(width, height)
	dc.SetRGB(0.06, 0.06, 0.06)
	dc.Clear()

	caption = truncateCaption(strings.TrimSpace(caption))
	if caption == "" {
		return dc.Image()
	}

	dc.SetRGB(0.85, 0.85, 0.85)
	dc.DrawStringWrapped(caption, float64(width)/2, float64(height)/2,
		0.5, 0.5, float64(width)-8, 1.4, gg.AlignCenter)
	return dc.Image()
}

// truncateCaption shortens an overlong caption on a rune boundary so
// multi-byte diagnostics are never cut mid-sequence.
func truncateCaption(caption string) string {
	runes := []rune(caption)
	if len(runes) <= maxCaptionChars {
		return caption
	}
	return string(runes[:maxCaptionChars-3]) + "..."
}

// PlaceholderVideo returns a minimal empty MP4 container for the video
// output of a failed run. The stub carries no tracks or samples, but it is
// a structurally valid ISO-BMFF file so video consumers never see a
// mistyped payload; callers surface the diagnostic through the run's info
// text instead.
func PlaceholderVideo() []byte {
	ftyp := mp4Box("ftyp", ftypPayload())
	moov := mp4Box("moov", mp4Box("mvhd", mvhdPayload()))
	mdat := mp4Box("mdat", nil)

	out := make([]byte, 0, len(ftyp)+len(moov)+len(mdat))
	out = append(out, ftyp...)
	out = append(out, moov...)
	return append(out, mdat...)
}

// mp4Box assembles an ISO-BMFF box from its four-character type and
// payload.
func mp4Box(boxType string, payload []byte) []byte {
	b := make([]byte, 8, 8+len(payload))
	binary.BigEndian.PutUint32(b, uint32(8+len(payload)))
	copy(b[4:], boxType)
	return append(b, payload...)
}

func ftypPayload() []byte {
	var b bytes.Buffer
	b.WriteString("isom")
	binary.Write(&b, binary.BigEndian, uint32(0x200))
	b.WriteString("isom")
	b.WriteString("mp41")
	return b.Bytes()
}

// mvhdPayload builds a version 0 movie header with zero duration, a unity
// transform matrix and no tracks.
func mvhdPayload() []byte {
	var b bytes.Buffer
	for _, v := range []uint32{
		0,          // version and flags
		0, 0,       // creation and modification time
		1000,       // timescale
		0,          // duration
		0x00010000, // rate 1.0
		0x01000000, // volume 1.0 plus reserved
		0, 0,       // reserved
		0x00010000, 0, 0, // unity matrix
		0, 0x00010000, 0,
		0, 0, 0x40000000,
		0, 0, 0, 0, 0, 0, // pre defined
		1, // next track ID
	} {
		binary.Write(&b, binary.BigEndian, v)
	}
	return b.Bytes()
}
