// Package schemacache implements the bidirectional hash/id/schema registry
// owned by a single session (spec §4.E). It is deliberately small and
// unsynchronized: callers serialize access the same way the session itself
// is single-threaded per spec §5.
package schemacache

import (
	"fmt"

	"github.com/SylphxAI/flux/errs"
	"github.com/SylphxAI/flux/schema"
)

// MaxSchemaFields caps the number of fields a registrable schema may carry
// (spec §6, MAX_SCHEMA_FIELDS).
const MaxSchemaFields = 1024

// entry pairs a cached schema with the id it was assigned and an
// access-order marker used for LRU eviction under capacity (spec §4.I
// Steady state).
type entry struct {
	id     uint32
	schema schema.Schema
	// seq is bumped on every lookup/register hit; the lowest seq among
	// entries is the eviction candidate.
	seq uint64
}

// Cache is the {hash -> id} / {id -> schema} registry for one session.
type Cache struct {
	byHash   map[uint64]*entry
	byID     map[uint32]*entry
	nextID   uint32
	capacity int
	clock    uint64
}

// New returns an empty Cache. capacity bounds the number of simultaneously
// cached schemas; 0 means unbounded. When capacity is reached, Register
// evicts the least-recently-used entry to make room (spec §4.I).
func New(capacity int) *Cache {
	return &Cache{
		byHash:   make(map[uint64]*entry),
		byID:     make(map[uint32]*entry),
		nextID:   1, // 0 is reserved for "no schema" (spec §3)
		capacity: capacity,
	}
}

// Registration is the result of Register: the assigned id and whether the
// caller must emit a schema definition on the wire (SCHEMA_INCLUDED).
type Registration struct {
	ID           uint32
	NeedsDefine  bool
	EvictedID    uint32
	DidEvict     bool
}

// Register looks up s by its hash. On hit, it verifies bytewise equality
// (guarding against hash collision) and returns the existing id. On miss,
// it allocates the next id, evicting the LRU entry first if at capacity,
// and reports that a definition must be written to the wire.
func (c *Cache) Register(s schema.Schema) (Registration, error) {
	if len(s.Fields) > MaxSchemaFields {
		return Registration{}, fmt.Errorf("%w: %d fields exceeds max %d", errs.ErrBufferOverflow, len(s.Fields), MaxSchemaFields)
	}

	c.clock++

	if e, ok := c.byHash[s.Hash]; ok {
		if !schema.Equal(e.schema, s) {
			return Registration{}, fmt.Errorf("%w: hash %#x collides with cached schema id %d", errs.ErrSchemaCollision, s.Hash, e.id)
		}

		e.seq = c.clock

		return Registration{ID: e.id, NeedsDefine: false}, nil
	}

	reg := Registration{NeedsDefine: true}
	if c.capacity > 0 && len(c.byID) >= c.capacity {
		evicted, ok := c.evictLRU()
		if ok {
			reg.DidEvict = true
			reg.EvictedID = evicted
		}
	}

	id := c.nextID
	c.nextID++

	e := &entry{id: id, schema: s, seq: c.clock}
	c.byHash[s.Hash] = e
	c.byID[id] = e
	reg.ID = id

	return reg, nil
}

// Lookup returns the schema registered under id.
func (c *Cache) Lookup(id uint32) (schema.Schema, error) {
	if id == 0 {
		return schema.Schema{}, fmt.Errorf("%w: schema id 0 is reserved", errs.ErrSchemaNotFound)
	}

	c.clock++

	e, ok := c.byID[id]
	if !ok {
		return schema.Schema{}, fmt.Errorf("%w: id %d", errs.ErrSchemaNotFound, id)
	}

	e.seq = c.clock

	return e.schema, nil
}

// Len reports the number of currently cached schemas.
func (c *Cache) Len() int {
	return len(c.byID)
}

func (c *Cache) evictLRU() (uint32, bool) {
	var (
		victim   *entry
		minSeq   uint64
		found    bool
	)

	for _, e := range c.byID {
		if !found || e.seq < minSeq {
			victim = e
			minSeq = e.seq
			found = true
		}
	}

	if !found {
		return 0, false
	}

	delete(c.byHash, victim.schema.Hash)
	delete(c.byID, victim.id)

	return victim.id, true
}
