package entity

// AuditTask is the in-memory unit of work produced by a strategy, carried
// through the collator, and executed by a worker fiber. It exclusively
// belongs to whichever component currently holds it, from production to
// completion.
type AuditTask struct {
	Strategy Strategy
	Content  ContentKey
}
