/*
Package database provides a persistence manager for Go structs.

A Manager owns one store. Reads go through a read context that hands out at
most one live handle per record identity. All writes are executed one after
another by a single writer goroutine, each within its own WriteTx, and are
committed to the storage atomically. Synchronous calls wait for their write
to be committed, bounded by Options.WriteTimeout.

Records are Go structs embedding record.Base and a sync.Mutex:

	type Person struct {
		record.Base
		sync.Mutex

		Name string `json:"name"`
	}

Go methods cannot have type parameters, so typed operations are package
level functions:

	m, err := database.NewInMemory("example")
	if err != nil {
		return err
	}
	p, err := database.CreateOne[Person](m, "person", func(p *Person) {
		p.Name = "Jeffrey Sinclair"
	})
	...
	found, err := database.GetOne[Person](m, "person", func(q *query.Query) {
		q.Where(query.Where("name", query.SameAs, "Jeffrey Sinclair"))
	})
*/
package database
