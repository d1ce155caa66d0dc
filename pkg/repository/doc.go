/*
Package repository defines the Content Repository interface: the single
owner of every persisted entity in the audit core (content keys, peers,
audits, transfer failures, stats snapshots, census data). Callers across
strategy producers, the worker pool, audit tasks, and the stats and
retention loops depend only on this interface, never on a concrete storage
backend or its row types, per spec.md §9's "derive-macro ORM entities"
re-expression note.

The default implementation is a relational (PostgreSQL) backend under
repository/postgres, but nothing outside that subpackage assumes a
particular storage technology.
*/
package repository
