package main

import (
	"fmt"
	"log"
	"os"

	"github.com/theflywheel/bfi"
)

func main() {
	// Clean up previous example
	os.Remove("example.bfi")

	// Open or create a Bloom filter index
	idx, err := bfi.OpenFile("example.bfi", bfi.Format128)
	if err != nil {
		log.Fatalf("Failed to open index: %v", err)
	}
	defer idx.Close()

	fmt.Println("Bloom filter index opened successfully")

	// Insert some data: pk -> attribute set
	catalog := map[uint32][]string{
		1: {"red", "size:m"},
		2: {"blue", "size:l"},
		3: {"red", "size:l"},
		4: {"green", "size:s"},
	}
	for pk, attrs := range catalog {
		values := make([][]byte, len(attrs))
		for i, a := range attrs {
			values[i] = []byte(a)
		}
		if err := idx.Insert(pk, values); err != nil {
			log.Fatalf("Failed to insert pk %d: %v", pk, err)
		}
	}

	fmt.Printf("Inserted %d records\n", len(catalog))

	// Lookup: which pks have "red"?
	matches, err := idx.Lookup([][]byte{[]byte("red")})
	if err != nil {
		log.Fatalf("Failed to lookup: %v", err)
	}
	fmt.Printf("Records matching \"red\": %v\n", matches)

	// Superset query: which pks have both "red" and "size:l"?
	matches, err = idx.Lookup([][]byte{[]byte("red"), []byte("size:l")})
	if err != nil {
		log.Fatalf("Failed to lookup: %v", err)
	}
	fmt.Printf("Records matching \"red\" AND \"size:l\": %v\n", matches)

	// Update a record
	if err := idx.Insert(2, [][]byte{[]byte("blue"), []byte("size:xl")}); err != nil {
		log.Fatalf("Failed to update pk 2: %v", err)
	}

	// Delete a record
	if err := idx.Delete(4); err != nil {
		log.Fatalf("Failed to delete pk 4: %v", err)
	}

	stat, err := idx.Stat()
	if err != nil {
		log.Fatalf("Failed to stat: %v", err)
	}
	fmt.Printf("Index now has %d live record(s), %d tombstone(s), across %d page(s)\n",
		stat.Records, stat.Deleted, stat.Pages)

	fmt.Println("Example completed successfully")
}
