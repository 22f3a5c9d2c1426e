package inodeset // import "github.com/BKWSU-UK/proxmox-privconvert/conv/inodeset"

import (
	mapset "github.com/deckarep/golang-set"
)

type key struct {
	dev uint64
	ino uint64
}

// Set remembers which (device, inode) pairs have already been converted
// during a run, so that hardlinked entries are mutated at most once. Entries
// are never removed individually; Release drops the whole set when the run
// ends. Not safe for concurrent use: the conversion engine is
// single-threaded on purpose.
type Set struct {
	entries mapset.Set
}

func New() *Set {
	return &Set{entries: mapset.NewThreadUnsafeSet()}
}

func (s *Set) Seen(dev, ino uint64) bool {
	return s.entries.Contains(key{dev: dev, ino: ino})
}

func (s *Set) Mark(dev, ino uint64) {
	s.entries.Add(key{dev: dev, ino: ino})
}

func (s *Set) Len() int {
	return s.entries.Cardinality()
}

func (s *Set) Release() {
	s.entries = mapset.NewThreadUnsafeSet()
}
