// Copyright 2024 The sqlbind authors.
// Licensed under Apache 2.0, see LICENCE file for details.

package example

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/sqlbind/sqlbind"
	"github.com/sqlbind/sqlbind/sqlite3"
)

// ID stores a UUID as its canonical text form rather than the JSON
// fallback a bare uuid.UUID would get.
type ID struct {
	uuid.UUID
}

func (id ID) BindParam(b sqlbind.Binder) error {
	return b.Text(id.String())
}

func (id *ID) ScanColumn(r sqlbind.Reader) (bool, error) {
	if r.IsNull() {
		return false, nil
	}
	u, err := uuid.Parse(r.Text())
	if err != nil {
		return false, err
	}
	id.UUID = u
	return true, nil
}

type Machine struct {
	ID     ID     `db:"id"`
	Name   string `db:"name"`
	Cores  int    `db:"cores"`
	Labels any    `db:"labels"`
}

func example() error {
	conn, err := sqlite3.Open(":memory:")
	if err != nil {
		return err
	}
	db := sqlbind.NewDB(conn)
	defer db.Close()

	ctx := context.Background()
	err = db.Query(ctx, `
		CREATE TABLE machine (
			id text PRIMARY KEY,
			name text,
			cores integer,
			labels text
		);`).Run()
	if err != nil {
		return err
	}

	m := Machine{
		ID:     ID{uuid.New()},
		Name:   "worker-0",
		Cores:  16,
		Labels: map[string]string{"zone": "eu-west-1a"},
	}
	err = db.Query(ctx,
		"INSERT INTO machine (id, name, cores, labels) VALUES (:id, :name, :cores, :labels)",
		m).Run()
	if err != nil {
		return err
	}

	var got Machine
	err = db.Query(ctx,
		"SELECT id, name, cores, labels FROM machine WHERE name = ?",
		"worker-0").Get(&got)
	if err != nil {
		return err
	}
	fmt.Printf("%s has %d cores\n", got.ID, got.Cores)

	// Stream names one at a time.
	var name string
	return db.Query(ctx, "SELECT name FROM machine ORDER BY name").
		Each(&name, func() bool {
			fmt.Println(name)
			return true
		})
}
