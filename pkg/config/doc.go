/*
Package config binds the audit binary's CLI surface (spec.md §6) to an
immutable Config value. Flags are read once at startup via cobra/pflag,
matching the teacher's cobra.OnInitialize wiring; there is no hot-reload.
*/
package config
