package fileio

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestDetectDataType(t *testing.T) {
	for _, v := range []struct {
		Head     []byte
		Expected DataType
	}{
		{[]byte{0x1f, 0x8b, 0x08, 0x00, 0x00, 0x00}, DataTypeGzip},
		{[]byte{0x50, 0x4b, 0x03, 0x04, 0x00, 0x00}, DataTypeZip},
		{[]byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}, DataTypeXZ},
		{[]byte{0x42, 0x5a, 0x68, 0x39, 0x31, 0x41}, DataTypeBZip2},
		{[]byte("Run,Sa"), DataTypeNoCompression},
		{[]byte{0x1f}, DataTypeNoCompression},
	} {
		if dt := DetectDataType(v.Head); dt != v.Expected {
			t.Errorf("Head %v: got data type %d, expected %d", v.Head, dt, v.Expected)
		}
	}
}

func TestMaybeDecompressGzip(t *testing.T) {
	payload := "Run,SampleName\nSRR1,GSM1\n"

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(payload)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	rc, err := MaybeDecompressReadCloser(io.NopCloser(&buf))
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()

	out, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != payload {
		t.Errorf("Got %q, expected %q", out, payload)
	}
}

func TestMaybeDecompressPlainShortInput(t *testing.T) {
	rc, err := MaybeDecompressReadCloser(io.NopCloser(bytes.NewBufferString("a,b")))
	if err != nil {
		t.Fatal(err)
	}

	out, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "a,b" {
		t.Errorf("Got %q", out)
	}
}

func TestDetermineDelimiter(t *testing.T) {
	tsv := []byte("Run\tSampleName\tavgLength\nSRR1\tGSM1\t50\nSRR2\tGSM1\t60\n")
	if d := DetermineDelimiter(tsv); d != '\t' {
		t.Errorf("Expected tab, got %q", d)
	}

	csv := []byte("Run,SampleName,avgLength\nSRR1,GSM1,50\nSRR2,GSM1,60\n")
	if d := DetermineDelimiter(csv); d != ',' {
		t.Errorf("Expected comma, got %q", d)
	}
}

func TestSplitGSPath(t *testing.T) {
	bucket, object, err := SplitGSPath("gs://my-bucket/resources/hs.kidx")
	if err != nil {
		t.Fatal(err)
	}
	if bucket != "my-bucket" || object != "resources/hs.kidx" {
		t.Errorf("Got bucket %q object %q", bucket, object)
	}

	if _, _, err := SplitGSPath("gs://only-bucket"); err == nil {
		t.Error("Expected an error for a path without an object name")
	}
}

func TestExistsLocal(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "present.txt")
	if err := os.WriteFile(present, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	ok, err := Exists(context.Background(), present, nil)
	if err != nil || !ok {
		t.Errorf("Expected %s to exist (err: %v)", present, err)
	}

	ok, err = Exists(context.Background(), filepath.Join(dir, "absent.txt"), nil)
	if err != nil || ok {
		t.Errorf("Expected absent file to be reported missing (err: %v)", err)
	}
}

func TestDetermineDelimiterFrom(t *testing.T) {
	tsv := []byte("Run\tReleaseDate\tScientificName\nSRR1\t2011-06-29\tHomo sapiens\nSRR2\t2011-06-30\tMus musculus\n")
	if d := DetermineDelimiterFrom(tsv, ',', '\t'); d != '\t' {
		t.Errorf("Expected tab, got %q", d)
	}

	if d := DetermineDelimiterFrom([]byte("single column\n"), ',', '\t'); d != ',' {
		t.Errorf("Expected fallback to comma, got %q", d)
	}
}

func TestMaybeDecompressEmptyInput(t *testing.T) {
	rc, err := MaybeDecompressReadCloser(io.NopCloser(bytes.NewReader(nil)))
	if err != nil {
		t.Fatalf("Expected empty input to be accepted, got %v", err)
	}

	out, err := io.ReadAll(rc)
	if err != nil || len(out) != 0 {
		t.Errorf("Expected no data, got %q (err: %v)", out, err)
	}
}

func TestMaybeDecompressUnixCompressRejected(t *testing.T) {
	head := []byte{0x1f, 0x9d, 0x90, 0x52, 0x75, 0x6e}
	if _, err := MaybeDecompressReadCloser(io.NopCloser(bytes.NewReader(head))); err == nil {
		t.Error("Expected .Z input to be rejected rather than misread")
	}
}
