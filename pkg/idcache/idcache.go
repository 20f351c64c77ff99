// Copyright 2025 KrakLabs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package idcache holds a read-only, mmap-backed lookup table from symbol
// name to SymbolId, rebuilt from the document store after every successful
// indexing run. Open maps the file read-only and copies its names and ids
// into process memory in one pass. It exists purely as a fast path in front of the document
// store's name search; a cache miss (or a cache older than the store) is
// expected to fall through to docstore.FindSymbolsByName.
package idcache

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"sort"

	"github.com/blevesearch/mmap-go"

	"github.com/symbolgraph/sg/pkg/model"
)

// Entry is one (name, SymbolId) pair as written to disk, sorted by name so
// Open reads the names back already in binary-search order.
type Entry struct {
	Name string
	ID   model.SymbolId
}

// Build writes path as a sequence of length-prefixed records sorted by
// name: a big-endian u32 name length, the name bytes, then an 8-byte
// big-endian SymbolId.
func Build(path string, entries []Entry) error {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("idcache: create %s: %w", tmp, err)
	}
	w := bufio.NewWriter(f)
	var lenBuf [4]byte
	var idBuf [8]byte
	for _, e := range sorted {
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(e.Name)))
		if _, err := w.Write(lenBuf[:]); err != nil {
			f.Close()
			return err
		}
		if _, err := w.WriteString(e.Name); err != nil {
			f.Close()
			return err
		}
		binary.BigEndian.PutUint64(idBuf[:], uint64(e.ID))
		if _, err := w.Write(idBuf[:]); err != nil {
			f.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("idcache: flush %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Cache is an opened, mmap-backed lookup table. Zero value not usable;
// construct with Open.
type Cache struct {
	file   *os.File
	data   mmap.MMap
	offsets []int // byte offset of each record, parallel to names
	names   []string
	ids     []model.SymbolId
}

// Open mmaps path read-only and scans its records once (a single linear
// pass that copies every name and id into memory; lookups thereafter are
// binary search over the in-memory names and ids).
func Open(path string) (*Cache, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("idcache: open %s: %w", path, err)
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("idcache: mmap %s: %w", path, err)
	}

	c := &Cache{file: f, data: data}
	off := 0
	for off+4 <= len(data) {
		n := int(binary.BigEndian.Uint32(data[off : off+4]))
		nameStart := off + 4
		nameEnd := nameStart + n
		idEnd := nameEnd + 8
		if idEnd > len(data) {
			break
		}
		c.offsets = append(c.offsets, off)
		c.names = append(c.names, string(data[nameStart:nameEnd]))
		c.ids = append(c.ids, model.SymbolId(binary.BigEndian.Uint64(data[nameEnd:idEnd])))
		off = idEnd
	}
	return c, nil
}

// Lookup returns every SymbolId registered under name (names are not
// required to be unique: overloaded/shadowed definitions share a name).
func (c *Cache) Lookup(name string) []model.SymbolId {
	lo := sort.SearchStrings(c.names, name)
	var out []model.SymbolId
	for i := lo; i < len(c.names) && c.names[i] == name; i++ {
		out = append(out, c.ids[i])
	}
	return out
}

// Close unmaps the backing file.
func (c *Cache) Close() error {
	if err := c.data.Unmap(); err != nil {
		return fmt.Errorf("idcache: unmap: %w", err)
	}
	return c.file.Close()
}
