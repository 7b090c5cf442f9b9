package store

import (
	"errors"
	"testing"

	"github.com/Dicklesworthstone/hierarchy_viewer/pkg/model"
)

func TestLinkMetadata_Lifecycle(t *testing.T) {
	s := openTestStore(t, "a", "b")
	l := link("a", "b", model.LinkParentChild, "")
	if err := s.CreateLink(l); err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}

	weight := model.LinkMetadata{LinkID: l.ID, Key: "weight", Value: "2.5", ValueType: model.MetadataNumber}
	if err := s.CreateLinkMetadata(weight); err != nil {
		t.Fatalf("CreateLinkMetadata failed: %v", err)
	}
	if err := s.CreateLinkMetadata(model.LinkMetadata{LinkID: l.ID, Key: "note", Value: "bolted"}); err != nil {
		t.Fatalf("CreateLinkMetadata failed: %v", err)
	}
	if err := s.CreateLinkMetadata(weight); !errors.Is(err, ErrMetadataExists) {
		t.Errorf("duplicate key err = %v, want ErrMetadataExists", err)
	}

	meta, err := s.GetLinkMetadata(l.ID)
	if err != nil {
		t.Fatalf("GetLinkMetadata failed: %v", err)
	}
	if len(meta) != 2 || meta[0].Key != "note" || meta[0].ValueType != model.MetadataString || meta[1].Value != "2.5" {
		t.Errorf("metadata = %+v", meta)
	}

	weight.Value = "3"
	if err := s.UpdateLinkMetadata(weight); err != nil {
		t.Fatalf("UpdateLinkMetadata failed: %v", err)
	}
	if meta, _ := s.GetLinkMetadata(l.ID); meta[1].Value != "3" {
		t.Errorf("updated value = %q, want 3", meta[1].Value)
	}

	if err := s.DeleteLinkMetadata(l.ID, "note"); err != nil {
		t.Fatalf("DeleteLinkMetadata failed: %v", err)
	}
	if err := s.DeleteLinkMetadata(l.ID, "note"); !errors.Is(err, ErrMetadataNotFound) {
		t.Errorf("second delete err = %v, want ErrMetadataNotFound", err)
	}
	if err := s.UpdateLinkMetadata(model.LinkMetadata{LinkID: l.ID, Key: "note", Value: "x"}); !errors.Is(err, ErrMetadataNotFound) {
		t.Errorf("update missing err = %v, want ErrMetadataNotFound", err)
	}
}

func TestLinkMetadata_Rules(t *testing.T) {
	s := openTestStore(t, "a", "b")
	l := link("a", "b", model.LinkRelated, "")
	if err := s.CreateLink(l); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		meta model.LinkMetadata
		want error
	}{
		{"unknown link", model.LinkMetadata{LinkID: "nope", Key: "k", Value: "v"}, ErrLinkNotFound},
		{"bad number", model.LinkMetadata{LinkID: l.ID, Key: "k", Value: "many", ValueType: model.MetadataNumber}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.CreateLinkMetadata(tt.meta)
			if err == nil {
				t.Fatal("CreateLinkMetadata succeeded, want error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := s.GetLinkMetadata("nope"); !errors.Is(err, ErrLinkNotFound) {
		t.Errorf("get err = %v, want ErrLinkNotFound", err)
	}
}

func TestLinkMetadata_RemovedWithLinkAndAsset(t *testing.T) {
	s := openTestStore(t, "a", "b", "c")
	ab := link("a", "b", model.LinkParentChild, "")
	bc := link("b", "c", model.LinkParentChild, "")
	for _, l := range []*model.AssetLink{ab, bc} {
		if err := s.CreateLink(l); err != nil {
			t.Fatal(err)
		}
		if err := s.CreateLinkMetadata(model.LinkMetadata{LinkID: l.ID, Key: "k", Value: "v"}); err != nil {
			t.Fatal(err)
		}
	}

	if err := s.DeleteLink(ab.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteAsset("db", "c"); err != nil {
		t.Fatal(err)
	}

	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM asset_link_metadata`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("orphaned metadata rows = %d, want 0", n)
	}
}
