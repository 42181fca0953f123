package maintenance

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dbpediafacts/pkg/db"
)

func TestReadIdentifiers(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
		wantErr error
	}{
		{
			name:    "SingleColumn",
			content: "identifier\nfr:Paris\nNew York\n",
			want:    []string{"fr:Paris", "New York"},
		},
		{
			name:    "BOMAndExtraColumns",
			content: "\ufeffcode,Identifier\n75056,https://fr.wikipedia.org/wiki/Paris\n69123,fr:Lyon\n",
			want:    []string{"https://fr.wikipedia.org/wiki/Paris", "fr:Lyon"},
		},
		{
			name:    "BlankAndShortRows",
			content: "code,identifier\n1,\n2\n3,  de:Köln  \n",
			want:    []string{"de:Köln"},
		},
		{
			name:    "MissingColumn",
			content: "code,name\n1,Paris\n",
			wantErr: ErrNoIdentifierColumn,
		},
		{
			name:    "Empty",
			content: "",
			wantErr: ErrNoIdentifierColumn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readIdentifiers(strings.NewReader(tt.content))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadIdentifiers_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.csv")
	if err := os.WriteFile(path, []byte("identifier\nfr:Paris\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ids, err := ReadIdentifiers(path)
	if err != nil {
		t.Fatalf("ReadIdentifiers failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "fr:Paris" {
		t.Errorf("unexpected identifiers %q", ids)
	}

	if _, err := ReadIdentifiers(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestPrune(t *testing.T) {
	d, err := db.Init(filepath.Join(t.TempDir(), "maint_test.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	old := time.Now().Add(-40 * 24 * time.Hour).UTC().Format("2006-01-02 15:04:05")
	recent := time.Now().Add(-1 * 24 * time.Hour).UTC().Format("2006-01-02 15:04:05")
	if _, err := d.Exec("INSERT INTO facts (resource_url, updated_at) VALUES (?, ?)", "http://fr.dbpedia.org/resource/Old", old); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Exec("INSERT INTO facts (resource_url, updated_at) VALUES (?, ?)", "http://fr.dbpedia.org/resource/New", recent); err != nil {
		t.Fatal(err)
	}

	// Zero max age keeps everything
	n, err := Prune(d, 0)
	if err != nil || n != 0 {
		t.Fatalf("Prune(0) = %d, %v", n, err)
	}

	n, err = Prune(d, 30*24*time.Hour)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 row removed, got %d", n)
	}

	var url string
	if err := d.QueryRow("SELECT resource_url FROM facts").Scan(&url); err != nil {
		t.Fatal(err)
	}
	if url != "http://fr.dbpedia.org/resource/New" {
		t.Errorf("wrong row kept: %s", url)
	}
}
