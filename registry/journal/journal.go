// Package journal keeps an append-only, queryable audit trail of room
// lifecycle events (attach, detach, produce, kill) for operational
// debugging. It is a supplement to the live registry, never a second
// source of truth: nothing here is consulted to decide signaling
// behavior, only to answer "what happened in this room" after the fact.
package journal

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/go-memdb"
)

// Kind enumerates the events recorded in the journal.
type Kind string

const (
	Attached Kind = "attached"
	Detached Kind = "detached"
	Produced Kind = "produced"
	Killed   Kind = "killed"
)

// Entry is one immutable row in the journal.
type Entry struct {
	Seq           uint64
	RoomID        string
	ParticipantID string
	Kind          Kind
	Detail        string
	At            time.Time
}

const tblEntries = "entries"

const (
	idxSeq  = "id"
	idxRoom = "room"
)

var schema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		tblEntries: {
			Name: tblEntries,
			Indexes: map[string]*memdb.IndexSchema{
				idxSeq: {
					Name:    idxSeq,
					Unique:  true,
					Indexer: &memdb.UintFieldIndex{Field: "Seq"},
				},
				idxRoom: {
					Name:    idxRoom,
					Unique:  false,
					Indexer: &memdb.StringFieldIndex{Field: "RoomID"},
				},
			},
		},
	},
}

// Journal is a memdb-backed append-only event log.
type Journal struct {
	db *memdb.MemDB

	mu  sync.Mutex
	seq uint64
}

// New creates an empty Journal.
func New() *Journal {
	db, err := memdb.NewMemDB(schema)
	if err != nil {
		panic(err)
	}
	return &Journal{db: db}
}

// Record appends a new Entry. Record never fails: a journal write error
// would indicate a schema bug, not a runtime condition, so it panics
// rather than asking callers to handle an error they can't meaningfully
// act on.
func (j *Journal) Record(roomID, participantID string, kind Kind, detail string) {
	j.mu.Lock()
	j.seq++
	seq := j.seq
	j.mu.Unlock()

	entry := &Entry{
		Seq:           seq,
		RoomID:        roomID,
		ParticipantID: participantID,
		Kind:          kind,
		Detail:        detail,
		At:            time.Now(),
	}

	txn := j.db.Txn(true)
	if err := txn.Insert(tblEntries, entry); err != nil {
		txn.Abort()
		panic(fmt.Errorf("journal: insert entry: %w", err))
	}
	txn.Commit()
}

// ForRoom returns every entry recorded for roomID, oldest first.
func (j *Journal) ForRoom(roomID string) []*Entry {
	txn := j.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tblEntries, idxRoom, roomID)
	if err != nil {
		panic(fmt.Errorf("journal: query room: %w", err))
	}

	var entries []*Entry
	for raw := it.Next(); raw != nil; raw = it.Next() {
		entries = append(entries, raw.(*Entry))
	}
	// The index iterates in key-byte order, which for the uvarint-encoded
	// Seq is not numeric order once Seq grows past one byte.
	sort.Slice(entries, func(a, b int) bool { return entries[a].Seq < entries[b].Seq })
	return entries
}
