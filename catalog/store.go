package catalog

import (
	"fmt"
	"strconv"

	"github.com/hashicorp/go-memdb"
)

const (
	tableChannels   = "channels"
	tableCategories = "categories"
)

// Store holds the fetched catalog in memory. Lookups go through memdb
// indexes; Channels() preserves the provider's original ordering, which
// is also the submission order for probing.
type Store struct {
	db      *memdb.MemDB
	ordered []Channel
}

func schema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableChannels: {
				Name: tableChannels,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Key"},
					},
					"category": {
						Name:    "category",
						Indexer: &memdb.StringFieldIndex{Field: "CategoryID"},
					},
				},
			},
			tableCategories: {
				Name: tableCategories,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
					"name": {
						Name:    "name",
						Indexer: &memdb.StringFieldIndex{Field: "Name"},
					},
				},
			},
		},
	}
}

type channelRecord struct {
	Key        string
	CategoryID string
	Channel    Channel
}

func NewStore(channels []Channel, categories []Category) (*Store, error) {
	db, err := memdb.NewMemDB(schema())
	if err != nil {
		return nil, fmt.Errorf("error creating catalog db: %v", err)
	}

	txn := db.Txn(true)
	for _, ch := range channels {
		record := &channelRecord{
			Key:        strconv.Itoa(ch.ID),
			CategoryID: ch.CategoryID,
			Channel:    ch,
		}
		if err := txn.Insert(tableChannels, record); err != nil {
			txn.Abort()
			return nil, fmt.Errorf("error inserting channel %d: %v", ch.ID, err)
		}
	}
	for _, cat := range categories {
		cat := cat
		if err := txn.Insert(tableCategories, &cat); err != nil {
			txn.Abort()
			return nil, fmt.Errorf("error inserting category %s: %v", cat.ID, err)
		}
	}
	txn.Commit()

	return &Store{db: db, ordered: channels}, nil
}

// Channels returns every channel in catalog order.
func (s *Store) Channels() []Channel {
	return s.ordered
}

func (s *Store) ChannelByID(id int) (Channel, bool) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tableChannels, "id", strconv.Itoa(id))
	if err != nil || raw == nil {
		return Channel{}, false
	}
	return raw.(*channelRecord).Channel, true
}

// CategoryName resolves a category id for rendering. Unknown ids map to
// an empty string so callers can fall back to the raw id.
func (s *Store) CategoryName(categoryID string) string {
	txn := s.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tableCategories, "id", categoryID)
	if err != nil || raw == nil {
		return ""
	}
	return raw.(*Category).Name
}

// FilterByCategoryName returns the channels belonging to the named
// category, preserving catalog order.
func (s *Store) FilterByCategoryName(name string) []Channel {
	txn := s.db.Txn(false)
	defer txn.Abort()

	ids := make(map[string]struct{})
	it, err := txn.Get(tableCategories, "name", name)
	if err != nil {
		return nil
	}
	for raw := it.Next(); raw != nil; raw = it.Next() {
		ids[raw.(*Category).ID] = struct{}{}
	}
	if len(ids) == 0 {
		return nil
	}

	var filtered []Channel
	for _, ch := range s.ordered {
		if _, ok := ids[ch.CategoryID]; ok {
			filtered = append(filtered, ch)
		}
	}
	return filtered
}
