// Package store keeps packed sheets in a single bbolt resource file.
//
// The file has three buckets: "pictures" maps a sheet name to its PNG atlas,
// "sheets" maps it to its YAML manifest, and "tags" maps a tag to the YAML
// list of sheet names carrying it.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"slices"
	"time"

	"github.com/retroblast-engine/aseanim/asset"
	bolt "go.etcd.io/bbolt"
	"gopkg.in/yaml.v3"
)

var ErrNotFound = errors.New("store: not found")

var (
	picturesBucket = []byte("pictures")
	sheetsBucket   = []byte("sheets")
	tagsBucket     = []byte("tags")
)

// Store is an open resource file.
type Store struct {
	db *bolt.DB
}

// Open opens the resource file at path, creating it and its buckets if
// needed.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0666, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{picturesBucket, sheetsBucket, tagsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the resource file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores a under name, replacing any previous sheet of that name. The
// sheet ends up in exactly the tags given: it is added to each of them and
// dropped from any other tag it had.
func (s *Store) Put(name string, a *asset.Asset, tags ...string) error {
	var pic bytes.Buffer
	if err := png.Encode(&pic, a.Layout.Image); err != nil {
		return fmt.Errorf("store: encode %s: %w", name, err)
	}
	manifest, err := a.Manifest(name, "").Bytes()
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", name, err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(picturesBucket).Put([]byte(name), pic.Bytes()); err != nil {
			return err
		}
		if err := tx.Bucket(sheetsBucket).Put([]byte(name), manifest); err != nil {
			return err
		}

		buck := tx.Bucket(tagsBucket)
		if err := untag(buck, name, tags); err != nil {
			return err
		}
		for _, tag := range tags {
			names, err := readTag(buck, tag)
			if err != nil {
				return err
			}
			if slices.Contains(names, name) {
				continue
			}
			if err := writeTag(buck, tag, append(names, name)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Get loads the sheet called name.
func (s *Store) Get(name string) (*asset.Asset, error) {
	var pic, manifest []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		// Values are only valid inside the transaction.
		pic = bytes.Clone(tx.Bucket(picturesBucket).Get([]byte(name)))
		manifest = bytes.Clone(tx.Bucket(sheetsBucket).Get([]byte(name)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	if pic == nil || manifest == nil {
		return nil, fmt.Errorf("%w: sheet %q", ErrNotFound, name)
	}

	img, err := png.Decode(bytes.NewReader(pic))
	if err != nil {
		return nil, fmt.Errorf("store: picture %q: %w", name, err)
	}
	m, err := asset.ParseManifest(manifest)
	if err != nil {
		return nil, fmt.Errorf("store: sheet %q: %w", name, err)
	}
	a, err := asset.FromManifest(m, img)
	if err != nil {
		return nil, fmt.Errorf("store: sheet %q: %w", name, err)
	}
	return a, nil
}

// Delete removes the sheet called name and drops it from every tag.
func (s *Store) Delete(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(sheetsBucket).Get([]byte(name)) == nil {
			return fmt.Errorf("%w: sheet %q", ErrNotFound, name)
		}
		if err := tx.Bucket(picturesBucket).Delete([]byte(name)); err != nil {
			return err
		}
		if err := tx.Bucket(sheetsBucket).Delete([]byte(name)); err != nil {
			return err
		}

		return untag(tx.Bucket(tagsBucket), name, nil)
	})
}

// Sheets returns the names of every stored sheet, sorted.
func (s *Store) Sheets() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(sheetsBucket).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	return names, nil
}

// SheetsWithTag returns the names of the sheets stored with tag, in the order
// they were added. Unknown tags have no sheets.
func (s *Store) SheetsWithTag(tag string) ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		names, err = readTag(tx.Bucket(tagsBucket), tag)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	return names, nil
}

// untag removes name from every tag that is not in keep. Tags left without
// sheets are deleted.
func untag(buck *bolt.Bucket, name string, keep []string) error {
	type update struct {
		tag   string
		names []string
	}
	var updates []update
	err := buck.ForEach(func(k, v []byte) error {
		if slices.Contains(keep, string(k)) {
			return nil
		}
		var names []string
		if err := yaml.Unmarshal(v, &names); err != nil {
			return fmt.Errorf("tag %q: %w", k, err)
		}
		if i := slices.Index(names, name); i >= 0 {
			updates = append(updates, update{string(k), slices.Delete(names, i, i+1)})
		}
		return nil
	})
	if err != nil {
		return err
	}

	// The bucket can't be modified while ForEach runs.
	for _, u := range updates {
		if len(u.names) == 0 {
			if err := buck.Delete([]byte(u.tag)); err != nil {
				return err
			}
			continue
		}
		if err := writeTag(buck, u.tag, u.names); err != nil {
			return err
		}
	}
	return nil
}

func readTag(buck *bolt.Bucket, tag string) ([]string, error) {
	data := buck.Get([]byte(tag))
	if data == nil {
		return nil, nil
	}
	var names []string
	if err := yaml.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("tag %q: %w", tag, err)
	}
	return names, nil
}

func writeTag(buck *bolt.Bucket, tag string, names []string) error {
	data, err := yaml.Marshal(names)
	if err != nil {
		return err
	}
	return buck.Put([]byte(tag), data)
}
