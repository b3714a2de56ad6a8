package dictionary

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestBuildCountsLowercaseRuns(t *testing.T) {
	d, err := Build(strings.NewReader("The cat, the HAT!\nthe_end 42cats don't"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	tests := map[string]int{
		"the":  3,
		"cat":  1,
		"hat":  1,
		"end":  1,
		"cats": 1,
		"don":  1,
		"t":    1,
		"dog":  0,
	}
	for word, want := range tests {
		if got := d.Frequency(word); got != want {
			t.Errorf("Frequency(%q) = %d, want %d", word, got, want)
		}
	}
	if d.Contains("THE") {
		t.Error("dictionary should only hold lowercase words")
	}
	if d.Total() != 9 {
		t.Errorf("Total() = %d, want 9", d.Total())
	}
}

func TestBuildEmpty(t *testing.T) {
	d, err := Build(strings.NewReader("123 ... !!!"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if d.Len() != 0 {
		t.Errorf("Len() = %d, want 0", d.Len())
	}
	if words := d.Words(); len(words) != 0 {
		t.Errorf("Words() = %v", words)
	}
}

func TestNewDropsInvalidEntries(t *testing.T) {
	d := New(map[string]int{
		"good": 2,
		"Bad":  1,
		"zero": 0,
		"neg":  -4,
		"two2": 3,
		"":     1,
		"fine": 1,
	})
	if got, want := d.Words(), []string{"fine", "good"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Words() = %v, want %v", got, want)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	orig := New(map[string]int{"zebra": 1, "apple": 40, "mango": 7})

	var buf bytes.Buffer
	n, err := orig.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if n != int64(buf.Len()) {
		t.Errorf("WriteTo reported %d bytes, buffer has %d", n, buf.Len())
	}
	if want := "apple\t40\nmango\t7\nzebra\t1\n"; buf.String() != want {
		t.Errorf("serialized = %q, want %q", buf.String(), want)
	}

	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !reflect.DeepEqual(got.Counts(), orig.Counts()) {
		t.Errorf("round trip = %v, want %v", got.Counts(), orig.Counts())
	}
	if got.Total() != orig.Total() {
		t.Errorf("Total() = %d, want %d", got.Total(), orig.Total())
	}
}

func TestReadAcceptsSpacesAndBlankLines(t *testing.T) {
	d, err := Read(strings.NewReader("hello 5\n\n  world\t\t2  \n"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if d.Frequency("hello") != 5 || d.Frequency("world") != 2 {
		t.Errorf("unexpected counts %v", d.Counts())
	}
}

func TestReadRejectsMalformed(t *testing.T) {
	inputs := []string{
		"hello\n",
		"hello 1 2\n",
		"Hello 1\n",
		"hello x\n",
		"hello 0\n",
		"hello 1\nhello 2\n",
	}
	for _, in := range inputs {
		if _, err := Read(strings.NewReader(in)); err == nil {
			t.Errorf("Read(%q) succeeded, want error", in)
		}
	}
}

func TestCountsIsCopy(t *testing.T) {
	d := New(map[string]int{"word": 1})
	c := d.Counts()
	c["word"] = 100
	c["other"] = 1
	if d.Frequency("word") != 1 || d.Contains("other") {
		t.Error("mutating Counts() changed the dictionary")
	}
}

func TestIsWord(t *testing.T) {
	tests := map[string]bool{
		"abc":  true,
		"z":    true,
		"":     false,
		"aBc":  false,
		"ab1":  false,
		"café": false,
		"a b":  false,
	}
	for in, want := range tests {
		if got := IsWord(in); got != want {
			t.Errorf("IsWord(%q) = %v, want %v", in, got, want)
		}
	}
}

func BenchmarkBuild(b *testing.B) {
	corpus := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 2000)
	b.SetBytes(int64(len(corpus)))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Build(strings.NewReader(corpus)); err != nil {
			b.Fatal(err)
		}
	}
}
