package record

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDeriveURL(t *testing.T) {
	links := []string{
		"https://www.loc.gov/item/sn85059812/",
		"https://www.loc.gov/item/sn84026749/",
		"",
	}
	for _, link := range links {
		if got := DeriveURL(link); got != link+"?fo=json" {
			t.Errorf("DeriveURL(%q) = %q", link, got)
		}
	}
}

func TestParseJSONFullRecord(t *testing.T) {
	body := `{
		"item": {
			"created_published": ["New York [N.Y.] : Benj. H. Day, 1833-1916."],
			"date": "1833",
			"dates_of_publication": ["Began Sept. 3, 1833."],
			"description": ["Daily"],
			"essay": ["<p>The Sun was founded by <b>Benjamin Day</b>.</p>"],
			"essay_contributor": "Library of Congress",
			"language": ["english"],
			"latlong": null,
			"location": ["new york", "new york city"],
			"raw_lccn": " sn83030272 ",
			"url": "https://www.loc.gov/item/sn83030272/",
			"item": {
				"subjects": ["New York (N.Y.)--Newspapers."],
				"title": "The sun. [volume]"
			}
		}
	}`

	rec, err := ParseJSON([]byte(body))
	if err != nil {
		t.Fatalf("ParseJSON() error: %v", err)
	}

	want := map[string]string{
		"created_published":    `["New York [N.Y.] : Benj. H. Day, 1833-1916."]`,
		"date":                 "1833",
		"dates_of_publication": `["Began Sept. 3, 1833."]`,
		"description":          `["Daily"]`,
		"essay":                `["<p>The Sun was founded by <b>Benjamin Day</b>.</p>"]`,
		"essay_contributor":    "Library of Congress",
		"language":             `["english"]`,
		"latlong":              "",
		"location":             `["new york","new york city"]`,
		"raw_lccn":             " sn83030272 ",
		"subjects":             `["New York (N.Y.)--Newspapers."]`,
		"title":                "The sun. [volume]",
		"url":                  "https://www.loc.gov/item/sn83030272/",
	}
	if diff := cmp.Diff(want, rec.values); diff != "" {
		t.Errorf("ParseJSON() mismatch (-want +got):\n%s", diff)
	}
	if rec.Key() != "sn83030272" {
		t.Errorf("Key() = %q", rec.Key())
	}
}

func TestParseJSONMissingFieldsUseSentinel(t *testing.T) {
	tests := []struct {
		name string
		body string
		want map[string]string
	}{
		{
			name: "no item",
			body: `{"other": 1}`,
		},
		{
			name: "item is not an object",
			body: `{"item": "oops"}`,
		},
		{
			name: "no nested item",
			body: `{"item": {"date": "1901", "raw_lccn": "sn1"}}`,
			want: map[string]string{"date": "1901", "raw_lccn": "sn1"},
		},
		{
			name: "nested item without title",
			body: `{"item": {"item": {"subjects": []}}}`,
			want: map[string]string{"subjects": "[]"},
		},
		{
			name: "numbers keep their text",
			body: `{"item": {"date": 1901, "latlong": 40.5}}`,
			want: map[string]string{"date": "1901", "latlong": "40.5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := ParseJSON([]byte(tt.body))
			if err != nil {
				t.Fatalf("ParseJSON() error: %v", err)
			}
			for _, name := range Fields() {
				want, ok := tt.want[name]
				if !ok {
					want = Sentinel
				}
				if got := rec.Get(name); got != want {
					t.Errorf("%s = %q, want %q", name, got, want)
				}
			}
		})
	}
}

func TestParseJSONInvalid(t *testing.T) {
	tests := []struct {
		body string
		err  error
	}{
		{"<html>not json</html>", ErrInvalidJSON},
		{"", ErrInvalidJSON},
		{`{"item": {}} trailing`, ErrInvalidJSON},
		{`[1, 2]`, ErrNotObject},
		{`null`, ErrNotObject},
	}

	for _, tt := range tests {
		if _, err := ParseJSON([]byte(tt.body)); !errors.Is(err, tt.err) {
			t.Errorf("ParseJSON(%q) error = %v, want %v", tt.body, err, tt.err)
		}
	}
}

func TestRecordRowRoundTrip(t *testing.T) {
	header := append(Fields(), "extra")
	row := make([]string, len(header))
	for i := range row {
		row[i] = header[i] + "-value"
	}

	rec := FromRow(header, row)
	if diff := cmp.Diff(row[:len(Fields())], rec.Values()); diff != "" {
		t.Errorf("Values() mismatch (-want +got):\n%s", diff)
	}

	short := FromRow([]string{"raw_lccn", "essay"}, []string{"sn1"})
	if short.LCCN() != "sn1" || short.Essay() != Sentinel {
		t.Errorf("FromRow with short row = %q / %q", short.LCCN(), short.Essay())
	}

	changed := rec.With("essay", "clean")
	if changed.Essay() != "clean" || rec.Essay() != "essay-value" {
		t.Errorf("With() must not mutate the original record")
	}
}

func TestEssayMarkup(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`["<p>One</p>","<p>Two</p>"]`, "<p>One</p>\n<p>Two</p>"},
		{"<p>Plain markup</p>", "<p>Plain markup</p>"},
		{"[not json", "[not json"},
		{`[1, 2]`, `[1, 2]`},
		{Sentinel, Sentinel},
	}
	for _, tt := range tests {
		if got := EssayMarkup(tt.in); got != tt.want {
			t.Errorf("EssayMarkup(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAnalyzedValues(t *testing.T) {
	rec := New(map[string]string{"raw_lccn": "sn1", "essay": "Clean text"})
	a := Analyzed{
		Record:        rec,
		People:        []string{"Benjamin Day", "Moses Beach"},
		Organizations: nil,
	}

	values := a.Values()
	header := AnalyzedFields()
	if len(values) != len(header) {
		t.Fatalf("len(Values()) = %d, want %d", len(values), len(header))
	}
	if header[len(header)-2] != "people" || header[len(header)-1] != "organization" {
		t.Errorf("unexpected trailing columns: %v", header[len(header)-2:])
	}
	if values[len(values)-2] != `["Benjamin Day","Moses Beach"]` {
		t.Errorf("people = %q", values[len(values)-2])
	}
	if values[len(values)-1] != "[]" {
		t.Errorf("organization = %q", values[len(values)-1])
	}
}
