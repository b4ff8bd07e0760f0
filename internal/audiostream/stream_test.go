package audiostream

import "testing"

func TestContentTypeByCodec(t *testing.T) {
	cases := []struct {
		codec Codec
		want  string
	}{
		{CodecMP3, "audio/mpeg"},
		{CodecOpus, "audio/ogg"},
		{CodecOgg, "audio/ogg"},
	}

	for _, c := range cases {
		if got := c.codec.ContentType(); got != c.want {
			t.Errorf("Codec(%d).ContentType() = %q, want %q", c.codec, got, c.want)
		}
	}
}

// Open shells out to ffmpeg, whose presence and behaviour on a bogus
// path are environment-dependent; this only asserts Open never panics
// and always pairs a false ok with a nil Producer.
func TestOpenNeverPanics(t *testing.T) {
	p, ok := Open("/no/such/file.flac", 0, nil, 0, 0, CodecMP3)
	if !ok && p != nil {
		t.Fatal("expected nil Producer when ok is false")
	}
	if p != nil {
		p.Close()
	}
}
