// Package mmap maps dataset files read-only into memory.
//
//	m, err := mmap.Open("customers.txt")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.AccessSequential)
//	records, err := parse(m.Reader())
//
// On Unix the file is mapped with mmap(2) and madvise(2) hints are honored.
// Other platforms read the file into memory and ignore hints.
package mmap
