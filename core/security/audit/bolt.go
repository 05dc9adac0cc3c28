/*
   Copyright The containerd Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package audit

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"
)

var bucketKeyAuditLog = []byte("audit-log")

// BoltSink persists every Ring entry to a bbolt database, keyed by its
// sequence number. Writes are best-effort: a failed persist is silently
// discarded, and the Ring has already stored the in-memory entry before
// any sink is called.
type BoltSink struct {
	db *bolt.DB
}

// NewBoltSink opens (creating if needed) the audit bucket in db.
func NewBoltSink(db *bolt.DB) (*BoltSink, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketKeyAuditLog)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating audit bucket: %w", err)
	}
	return &BoltSink{db: db}, nil
}

// Write implements Sink.
func (s *BoltSink) Write(e Entry) {
	_ = s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucketKeyAuditLog)
		if bkt == nil {
			return nil
		}
		data, err := json.Marshal(e)
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, e.Seq)
		return bkt.Put(key, data)
	})
}

// All returns every persisted entry in sequence order.
func (s *BoltSink) All() ([]Entry, error) {
	var out []Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucketKeyAuditLog)
		if bkt == nil {
			return nil
		}
		return bkt.ForEach(func(k, v []byte) error {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}
			out = append(out, e)
			return nil
		})
	})
	return out, err
}
